package apiclient

import (
	"fmt"

	"github.com/meridianlabs/backoffice/pkg/apperrors"
	"github.com/meridianlabs/backoffice/pkg/common"
)

// ResponseError is returned whenever the server replied with a non-2xx
// status. Body holds the decoded error envelope when the server sent one.
type ResponseError struct {
	Status int
	Method string
	Path   string
	Body   *common.ErrorResponse
}

func (e *ResponseError) Error() string {
	if e.Body != nil && e.Body.Message != "" {
		return fmt.Sprintf("%s %s: %d %s (%s)", e.Method, e.Path, e.Status, e.Body.Message, e.Body.Code)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
}

// StatusCode, BodyMessage and BodyCode satisfy the error factory's
// ResponseCarrier shape.

func (e *ResponseError) StatusCode() int { return e.Status }

func (e *ResponseError) BodyMessage() string {
	if e.Body == nil {
		return ""
	}
	return e.Body.Message
}

func (e *ResponseError) BodyCode() string {
	if e.Body == nil {
		return ""
	}
	return e.Body.Code
}

func (e *ResponseError) BodyIssues() []apperrors.Issue {
	if e.Body == nil {
		return nil
	}
	return e.Body.Issues
}
