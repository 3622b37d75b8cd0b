// Package apiclient is the typed HTTP client for the back-office API. It
// speaks the standard success/error envelope and surfaces failures raw —
// *ResponseError for replies, url.Error for connection-level faults — leaving
// classification to the error pipeline.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/common"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	// Retry budget for idempotent reads; writes are never retried here.
	retryMaxElapsed time.Duration
}

func New(baseURL string, logger *zap.Logger, opts ...TransportOption) *Client {
	return &Client{
		baseURL:         baseURL,
		http:            newHTTPClient(opts...),
		logger:          logger,
		retryMaxElapsed: 10 * time.Second,
	}
}

// Get fetches path and decodes the envelope's data field into out. Idempotent,
// so network faults and 5xx replies are retried with exponential backoff.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	operation := func() error {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.retryMaxElapsed
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(pkg.HeaderTraceId, uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Connection-level failure; returned raw (a *url.Error) so the
		// classifier can distinguish timeouts from network faults.
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respErr := &ResponseError{Status: resp.StatusCode, Method: method, Path: path}
		var envelope common.ErrorResponse
		if json.Unmarshal(raw, &envelope) == nil && envelope.Code != "" {
			respErr.Body = &envelope
		}
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return respErr
	}

	if out == nil {
		return nil
	}
	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response envelope: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

// retryable reports whether err is worth retrying for an idempotent request:
// connection-level faults, timeouts, and 5xx-class replies.
func retryable(err error) bool {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Status >= http.StatusInternalServerError
	}
	return true // network or timeout
}
