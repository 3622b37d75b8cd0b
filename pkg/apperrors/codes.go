package apperrors

import (
	"fmt"
	"net/http"
)

// Kind is the closed set of error categories every failure is folded into.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
	KindUnavailable  Kind = "unavailable"
	KindAPI          Kind = "api"
	KindNetwork      Kind = "network"
	KindTimeout      Kind = "timeout"
	KindDatabase     Kind = "database"
	KindService      Kind = "service"
	KindBusinessRule Kind = "business_rule"
	KindUnknown      Kind = "unknown"
)

// Machine-readable error codes carried over the wire and resolved to user
// messages at the presentation boundary.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeBadRequest        = "BAD_REQUEST"
	CodeInvalidJSON       = "INVALID_JSON"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL_ERROR"
	CodeUnavailable       = "SERVICE_UNAVAILABLE"
	CodeNetwork           = "NETWORK_ERROR"
	CodeTimeout           = "TIMEOUT"
	CodeDatabase          = "DATABASE_ERROR"
	CodeDuplicateEntry    = "DUPLICATE_ENTRY"
	CodeForeignKey        = "FOREIGN_KEY_VIOLATION"
	CodeRecordNotFound    = "RECORD_NOT_FOUND"
	CodeDatabaseBadInput  = "DATABASE_INVALID_INPUT"
	CodeService           = "SERVICE_ERROR"
	CodeBusinessRule      = "BUSINESS_RULE_VIOLATION"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeUnknown           = "UNKNOWN_ERROR"
)

type statusMapping struct {
	Kind        Kind
	Code        string
	Operational bool
}

// statusTable is the closed transport status -> variant table. Statuses not
// listed here fall back to a generic API error with a derived code.
var statusTable = map[int]statusMapping{
	http.StatusBadRequest:          {KindBadRequest, CodeBadRequest, true},
	http.StatusUnauthorized:        {KindUnauthorized, CodeUnauthorized, true},
	http.StatusForbidden:           {KindForbidden, CodeForbidden, true},
	http.StatusNotFound:            {KindNotFound, CodeNotFound, true},
	http.StatusConflict:            {KindConflict, CodeConflict, true},
	http.StatusUnprocessableEntity: {KindBusinessRule, CodeBusinessRule, true},
	http.StatusTooManyRequests:     {KindAPI, CodeRateLimitExceeded, true},
	http.StatusInternalServerError: {KindInternal, CodeInternal, false},
	http.StatusBadGateway:          {KindUnavailable, CodeUnavailable, false},
	http.StatusServiceUnavailable:  {KindUnavailable, CodeUnavailable, false},
	http.StatusGatewayTimeout:      {KindUnavailable, CodeUnavailable, false},
}

// pgMapping maps Postgres error codes to semantic database failures.
type pgMapping struct {
	Status  int
	Code    string
	Message string
}

// pgTable is the closed vendor-code table. Unlisted codes map to a generic
// 500 database error.
var pgTable = map[string]pgMapping{
	"23505": {http.StatusConflict, CodeDuplicateEntry, "duplicate value violates unique constraint"},
	"23503": {http.StatusBadRequest, CodeForeignKey, "foreign key violation"},
	"23502": {http.StatusBadRequest, CodeDatabaseBadInput, "null value violates not-null constraint"},
	"23514": {http.StatusBadRequest, CodeDatabaseBadInput, "check constraint violation"},
	"22P02": {http.StatusBadRequest, CodeDatabaseBadInput, "invalid input syntax"},
	"22001": {http.StatusBadRequest, CodeDatabaseBadInput, "value too long for column"},
	"22003": {http.StatusBadRequest, CodeDatabaseBadInput, "numeric value out of range"},
}

// codeForStatus derives a machine code for transport statuses outside the
// closed table, e.g. 418 -> HTTP_418.
func codeForStatus(status int) string {
	return fmt.Sprintf("HTTP_%d", status)
}
