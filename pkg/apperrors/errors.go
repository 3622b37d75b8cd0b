package apperrors

import (
	"fmt"
	"net/http"
	"time"
)

// Issue is a single field-level validation failure.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Value   any    `json:"value,omitempty"`
}

// AppError is the one error representation that crosses boundaries. Every raw
// failure is converted into exactly one AppError by Classify before it is
// logged, serialized, or shown to a user.
type AppError struct {
	Kind        Kind           `json:"kind"`
	Code        string         `json:"code"`
	Status      int            `json:"status"`
	Message     string         `json:"message"`
	Operational bool           `json:"operational"`
	Timestamp   time.Time      `json:"timestamp"`
	Context     map[string]any `json:"context,omitempty"`

	// Variant-specific fields.
	Issues       []Issue `json:"issues,omitempty"`       // KindValidation
	Table        string  `json:"table,omitempty"`        // KindDatabase
	Operation    string  `json:"operation,omitempty"`    // KindDatabase
	Service      string  `json:"service,omitempty"`      // KindService
	BusinessRule string  `json:"businessRule,omitempty"` // KindBusinessRule

	Cause error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithContext attaches a single context entry, keeping existing keys intact.
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	if _, ok := e.Context[key]; !ok {
		e.Context[key] = value
	}
	return e
}

// mergeContext merges ctx into the error without overwriting existing keys.
func (e *AppError) mergeContext(ctx map[string]any) *AppError {
	for k, v := range ctx {
		e.WithContext(k, v)
	}
	return e
}

func newError(kind Kind, code string, status int, message string, operational bool) *AppError {
	return &AppError{
		Kind:        kind,
		Code:        code,
		Status:      status,
		Message:     message,
		Operational: operational,
		Timestamp:   time.Now().UTC(),
	}
}

// NewValidation builds a 400 validation error from field issues.
func NewValidation(message string, issues []Issue) *AppError {
	e := newError(KindValidation, CodeValidation, http.StatusBadRequest, message, true)
	e.Issues = issues
	return e
}

// NewNotFound builds a 404 for a missing resource.
func NewNotFound(message string) *AppError {
	return newError(KindNotFound, CodeNotFound, http.StatusNotFound, message, true)
}

// NewConflict builds a 409.
func NewConflict(message string) *AppError {
	return newError(KindConflict, CodeConflict, http.StatusConflict, message, true)
}

// NewBadRequest builds a 400 without field issues.
func NewBadRequest(message string) *AppError {
	return newError(KindBadRequest, CodeBadRequest, http.StatusBadRequest, message, true)
}

// NewRateLimited builds a 429 for throttled requests.
func NewRateLimited(message string) *AppError {
	return newError(KindAPI, CodeRateLimitExceeded, http.StatusTooManyRequests, message, true)
}

// NewInternal builds a non-operational 500 wrapping cause.
func NewInternal(message string, cause error) *AppError {
	e := newError(KindInternal, CodeInternal, http.StatusInternalServerError, message, false)
	e.Cause = cause
	return e
}

// NewBusinessRule builds a 422 domain-rule violation tagged with the rule name.
func NewBusinessRule(rule, message string) *AppError {
	e := newError(KindBusinessRule, CodeBusinessRule, http.StatusUnprocessableEntity, message, true)
	e.BusinessRule = rule
	return e
}

// NewService builds a 502 failure of a named upstream dependency.
func NewService(service, message string, cause error) *AppError {
	e := newError(KindService, CodeService, http.StatusBadGateway, message, false)
	e.Service = service
	e.Cause = cause
	return e
}

// NewDatabase builds a database error with an explicit semantic status.
func NewDatabase(code string, status int, message, table, operation string, cause error) *AppError {
	e := newError(KindDatabase, code, status, message, status < http.StatusInternalServerError)
	e.Table = table
	e.Operation = operation
	e.Cause = cause
	return e
}

// NewNetwork builds a connection-level failure (no response received).
func NewNetwork(message string, cause error) *AppError {
	e := newError(KindNetwork, CodeNetwork, 0, message, true)
	e.Cause = cause
	return e
}

// NewTimeout builds a 408 for a response that did not arrive in time.
func NewTimeout(message string, cause error) *AppError {
	e := newError(KindTimeout, CodeTimeout, http.StatusRequestTimeout, message, true)
	e.Cause = cause
	return e
}

// NewUnknown wraps an unclassifiable failure as a non-operational 500.
func NewUnknown(message string, cause error) *AppError {
	e := newError(KindUnknown, CodeUnknown, http.StatusInternalServerError, message, false)
	e.Cause = cause
	return e
}
