package apperrors

// userMessages is the closed code -> user-facing message table. It lives at
// the presentation boundary, not inside the factory; unmapped codes fall back
// to the error's own message, then to a generic string.
var userMessages = map[string]string{
	CodeValidation:        "Some fields are invalid. Please check your input and try again.",
	CodeBadRequest:        "The request could not be processed. Please check your input.",
	CodeInvalidJSON:       "The request could not be processed. Please check your input.",
	CodeUnauthorized:      "Your session has expired. Please sign in again.",
	CodeForbidden:         "You do not have permission to perform this action.",
	CodeNotFound:          "The requested item could not be found.",
	CodeConflict:          "This change conflicts with the current state. Please refresh and retry.",
	CodeDuplicateEntry:    "An entry with the same value already exists.",
	CodeRecordNotFound:    "The requested item could not be found.",
	CodeBusinessRule:      "This action is not allowed by business rules.",
	CodeNetwork:           "Could not reach the server. Please check your connection.",
	CodeTimeout:           "The server took too long to respond. Please try again.",
	CodeUnavailable:       "The service is temporarily unavailable. Please try again later.",
	CodeRateLimitExceeded: "Too many requests. Please slow down and try again.",
	CodeInternal:          "Something went wrong on our side. Please try again later.",
}

const genericUserMessage = "An unexpected error occurred. Please try again."

// UserMessage resolves an AppError to the message shown to end users.
func UserMessage(err *AppError) string {
	if err == nil {
		return genericUserMessage
	}
	if msg, ok := userMessages[err.Code]; ok {
		return msg
	}
	if err.Message != "" {
		return err.Message
	}
	return genericUserMessage
}
