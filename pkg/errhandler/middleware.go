package errhandler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/apperrors"
	"github.com/meridianlabs/backoffice/pkg/common"
)

// Request bodies larger than this are truncated in error context.
const maxLoggedBodyBytes = 8 << 10

var exposeErrorDetails = false

func init() {
	if gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode {
		exposeErrorDetails = true
	}
}

// Middleware returns the terminal error-handling step of request processing.
// Handlers record failures with c.Error(err) and abort; this middleware
// classifies the last recorded error, logs it with request metadata, and
// writes the standard error envelope with the typed status. Panics are
// recovered into internal errors.
func Middleware(h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Method != http.MethodGet && c.Request.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBodyBytes))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
		}

		defer func() {
			if r := recover(); r != nil {
				typed := h.Handle(apperrors.NewInternal(fmt.Sprintf("panic: %v", r), nil), requestContext(c, body))
				writeError(c, typed)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		typed := h.Handle(c.Errors.Last().Err, requestContext(c, body))
		writeError(c, typed)
	}
}

func requestContext(c *gin.Context, body []byte) map[string]any {
	ctx := map[string]any{
		"method": c.Request.Method,
		"url":    c.Request.URL.String(),
		"route":  c.FullPath(),
	}
	if traceID := c.GetString(pkg.TraceId); traceID != "" {
		ctx[pkg.RequestId] = traceID
	}
	if c.Request.Method != http.MethodGet {
		if len(body) > 0 {
			ctx["body"] = string(body)
		}
		if raw := c.Request.URL.RawQuery; raw != "" {
			ctx["query"] = raw
		}
	}
	return ctx
}

func writeError(c *gin.Context, typed *apperrors.AppError) {
	resp := common.NewErrorResponse(typed, c.GetString(pkg.TraceId))
	if exposeErrorDetails && !typed.Operational {
		resp.Stack = string(debug.Stack())
	}
	status := typed.Status
	if status < http.StatusBadRequest { // network/timeout kinds never originate server-side
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, resp)
}
