package apperrors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ResponseCarrier is satisfied by transport errors that carry an HTTP
// response. The apiclient package returns one for every non-2xx reply.
type ResponseCarrier interface {
	error
	StatusCode() int
	BodyMessage() string
	BodyCode() string
}

// Classify deterministically folds any raw failure into exactly one AppError.
// It is total: any input, including nil, yields a typed error, and it never
// panics. Re-classifying an AppError is a no-op apart from a non-destructive
// context merge.
func Classify(err error, ctx map[string]any) *AppError {
	if err == nil {
		return NewUnknown("unknown error", nil).mergeContext(ctx)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.mergeContext(ctx)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return classifyValidation(verrs).mergeContext(ctx)
	}

	var jsonSyntax *json.SyntaxError
	var jsonType *json.UnmarshalTypeError
	if errors.As(err, &jsonSyntax) || errors.As(err, &jsonType) {
		e := newError(KindBadRequest, CodeInvalidJSON, http.StatusBadRequest, "malformed request body", true)
		e.Cause = err
		return e.mergeContext(ctx)
	}

	var rc ResponseCarrier
	if errors.As(err, &rc) {
		return classifyResponse(rc).mergeContext(ctx)
	}

	if isTimeout(err) {
		return NewTimeout("request timed out", err).mergeContext(ctx)
	}
	if isNetwork(err) {
		return NewNetwork("network error: no response received", err).mergeContext(ctx)
	}

	if dbErr := classifyDatabase(err); dbErr != nil {
		return dbErr.mergeContext(ctx)
	}

	return NewUnknown(err.Error(), err).mergeContext(ctx)
}

func classifyValidation(verrs validator.ValidationErrors) *AppError {
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed validation on '%s'", fe.Tag()),
			Code:    fe.Tag(),
			Value:   fe.Value(),
		})
	}
	e := NewValidation("validation failed", issues)
	e.Cause = verrs
	return e
}

func classifyResponse(rc ResponseCarrier) *AppError {
	status := rc.StatusCode()

	// Body message wins, then the transport status text, then the error itself.
	message := rc.BodyMessage()
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = rc.Error()
	}

	var e *AppError
	if m, ok := statusTable[status]; ok {
		e = newError(m.Kind, m.Code, status, message, m.Operational)
	} else {
		e = newError(KindAPI, codeForStatus(status), status, message, status < http.StatusInternalServerError)
	}
	// A machine code sent by the server survives re-classification on the
	// receiving side, as do field-level validation issues.
	if code := rc.BodyCode(); code != "" {
		e.Code = code
	}
	if ic, ok := rc.(interface{ BodyIssues() []Issue }); ok {
		e.Issues = ic.BodyIssues()
	}
	e.Cause = rc
	return e
}

func classifyDatabase(err error) *AppError {
	if errors.Is(err, pgx.ErrNoRows) {
		return NewDatabase(CodeRecordNotFound, http.StatusNotFound, "record not found", "", "", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	if m, ok := pgTable[pgErr.Code]; ok {
		return NewDatabase(m.Code, m.Status, m.Message, pgErr.TableName, pgErr.ConstraintName, err)
	}
	return NewDatabase(CodeDatabase, http.StatusInternalServerError, "database error", pgErr.TableName, pgErr.ConstraintName, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isNetwork(err error) bool {
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}
