package apperrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	assert.Equal(t, userMessages[CodeConflict], UserMessage(NewConflict("stale")), "mapped code wins over the raw message")

	unmappedWithMessage := newError(KindAPI, "HTTP_418", 418, "teapot", true)
	assert.Equal(t, "teapot", UserMessage(unmappedWithMessage))

	unmappedBare := newError(KindAPI, "HTTP_418", 418, "", true)
	assert.Equal(t, genericUserMessage, UserMessage(unmappedBare))

	assert.Equal(t, genericUserMessage, UserMessage(nil))
}
