package common

import (
	"time"

	"github.com/meridianlabs/backoffice/pkg/apperrors"
)

// SuccessResponse is the envelope for every successful API reply.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// ErrorResponse is the envelope for every failed API reply. Variant-specific
// fields are present only for the matching error kind.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`

	Issues       []apperrors.Issue `json:"issues,omitempty"`
	BusinessRule string            `json:"businessRule,omitempty"`
	Service      string            `json:"service,omitempty"`
	Table        string            `json:"table,omitempty"`

	// Stack is populated only in non-production configurations.
	Stack string `json:"stack,omitempty"`
}

// NewSuccessResponse wraps data in the standard success envelope.
func NewSuccessResponse(message string, data any) SuccessResponse {
	return SuccessResponse{Success: true, Message: message, Data: data}
}

// NewErrorResponse serializes a typed error into the standard error envelope.
func NewErrorResponse(err *apperrors.AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Success:      false,
		Message:      err.Message,
		Code:         err.Code,
		Timestamp:    err.Timestamp,
		RequestID:    requestID,
		Issues:       err.Issues,
		BusinessRule: err.BusinessRule,
		Service:      err.Service,
		Table:        err.Table,
	}
}
