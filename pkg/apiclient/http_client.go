package apiclient

import (
	"net"
	"net/http"
	"net/url"
	"time"
)

// defaults. can be moved to configs later
const (
	// HTTP client timeouts
	defaultClientTimeout         = 10 * time.Second // absolute deadline for the whole request
	defaultResponseHeaderTimeout = 5 * time.Second  // time to first byte of headers
	defaultIdleConnTimeout       = 90 * time.Second
	defaultTLSHandshakeTimeout   = 5 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second

	defaultMaxConnsPerHost     = 64
	defaultMaxIdleConns        = 128
	defaultMaxIdleConnsPerHost = 64

	defaultDialerTimeout   = 2 * time.Second
	defaultDialerKeepAlive = 30 * time.Second
)

// TransportConfig captures tunables for the HTTP client/transport.
// All fields are optional. zero-values will be replaced by defaults.
type TransportConfig struct {
	// Client-level deadline (caps total request time).
	ClientTimeout time.Duration

	// Transport timeouts.
	ResponseHeaderTimeout time.Duration
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration

	// Transport pool sizing.
	MaxConnsPerHost     int
	MaxIdleConns        int
	MaxIdleConnsPerHost int

	// Dialer options.
	DialerTimeout   time.Duration
	DialerKeepAlive time.Duration

	// Optional overrides.
	ForceAttemptHTTP2 bool                                  // default true
	Proxy             func(*http.Request) (*url.URL, error) // default http.ProxyFromEnvironment
}

// TransportOption ----- Functional options pattern -----
type TransportOption func(*TransportConfig)

func WithClientTimeout(d time.Duration) TransportOption {
	return func(c *TransportConfig) { c.ClientTimeout = d }
}
func WithResponseHeaderTimeout(d time.Duration) TransportOption {
	return func(c *TransportConfig) { c.ResponseHeaderTimeout = d }
}
func WithIdleConnTimeout(d time.Duration) TransportOption {
	return func(c *TransportConfig) { c.IdleConnTimeout = d }
}
func WithMaxConnsPerHost(n int) TransportOption {
	return func(c *TransportConfig) { c.MaxConnsPerHost = n }
}
func WithDialerTimeout(d time.Duration) TransportOption {
	return func(c *TransportConfig) { c.DialerTimeout = d }
}
func WithProxy(p func(*http.Request) (*url.URL, error)) TransportOption {
	return func(c *TransportConfig) { c.Proxy = p }
}

// DefaultTransportConfig returns a copy of the library defaults.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ClientTimeout:         defaultClientTimeout,
		ResponseHeaderTimeout: defaultResponseHeaderTimeout,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
		MaxConnsPerHost:       defaultMaxConnsPerHost,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		DialerTimeout:         defaultDialerTimeout,
		DialerKeepAlive:       defaultDialerKeepAlive,
		ForceAttemptHTTP2:     true,
		Proxy:                 http.ProxyFromEnvironment,
	}
}

// newHTTPClient builds an *http.Client with safe defaults overridden by opts.
// All zero/empty values are filled with defaults to avoid accidental infinite hangs.
func newHTTPClient(opts ...TransportOption) *http.Client {
	cfg := DefaultTransportConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	sanitizeTransportConfig(&cfg)

	tr := &http.Transport{
		Proxy: cfg.Proxy,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialerTimeout,
			KeepAlive: cfg.DialerKeepAlive,
		}).DialContext,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ExpectContinueTimeout: cfg.ExpectContinueTimeout,

		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     cfg.ForceAttemptHTTP2,
	}

	return &http.Client{
		Transport: tr,
		Timeout:   cfg.ClientTimeout,
	}
}

// sanitizeTransportConfig keeps the client healthy if callers pass odd values.
func sanitizeTransportConfig(c *TransportConfig) {
	// Timeouts
	if c.ClientTimeout <= 0 {
		c.ClientTimeout = defaultClientTimeout
	}
	if c.ResponseHeaderTimeout <= 0 {
		c.ResponseHeaderTimeout = defaultResponseHeaderTimeout
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = defaultIdleConnTimeout
	}
	if c.TLSHandshakeTimeout <= 0 {
		c.TLSHandshakeTimeout = defaultTLSHandshakeTimeout
	}
	if c.ExpectContinueTimeout <= 0 {
		c.ExpectContinueTimeout = defaultExpectContinueTimeout
	}
	if c.DialerTimeout <= 0 {
		c.DialerTimeout = defaultDialerTimeout
	}
	if c.DialerKeepAlive <= 0 {
		c.DialerKeepAlive = defaultDialerKeepAlive
	}

	// Pool sizes
	if c.MaxConnsPerHost <= 0 {
		c.MaxConnsPerHost = defaultMaxConnsPerHost
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = defaultMaxIdleConns
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}

	if c.Proxy == nil {
		c.Proxy = http.ProxyFromEnvironment
	}
}
