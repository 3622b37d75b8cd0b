package errhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/meridianlabs/backoffice/pkg/apperrors"
	"github.com/meridianlabs/backoffice/pkg/common"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(notifier Notifier) (*gin.Engine, *captureNotifier) {
	cn, _ := notifier.(*captureNotifier)
	if cn == nil {
		cn = &captureNotifier{}
	}
	h, _ := newObservedHandler(Config{Logging: true, LogLevel: zapcore.ErrorLevel, Notify: true}, cn)
	r := gin.New()
	r.Use(Middleware(h))
	return r, cn
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, common.ErrorResponse) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp common.ErrorResponse
	if w.Code >= 400 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestMiddleware_WritesTypedEnvelope(t *testing.T) {
	r, _ := newTestRouter(nil)
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperrors.NewNotFound("user not found"))
	})

	w, resp := doRequest(t, r, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, apperrors.CodeNotFound, resp.Code)
	assert.Equal(t, "user not found", resp.Message)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestMiddleware_ValidationIssuesSerialized(t *testing.T) {
	r, _ := newTestRouter(nil)
	r.POST("/items", func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{})
	})

	w, resp := doRequest(t, r, http.MethodPost, "/items", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidation, resp.Code)
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, "name", resp.Issues[0].Field)
	assert.Equal(t, "required", resp.Issues[0].Code)
}

func TestMiddleware_MalformedJSON(t *testing.T) {
	r, _ := newTestRouter(nil)
	r.POST("/items", func(c *gin.Context) {
		var req map[string]any
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{})
	})

	w, resp := doRequest(t, r, http.MethodPost, "/items", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeInvalidJSON, resp.Code)
}

func TestMiddleware_RecoversPanics(t *testing.T) {
	r, notifier := newTestRouter(&captureNotifier{})
	r.GET("/boom", func(c *gin.Context) {
		panic("unexpected")
	})

	w, resp := doRequest(t, r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.CodeInternal, resp.Code)
	assert.NotEmpty(t, resp.Stack, "non-operational errors expose a stack outside production")
	require.Len(t, notifier.criticals, 1)
}

func TestMiddleware_StatuslessKindsCoercedTo500(t *testing.T) {
	r, _ := newTestRouter(nil)
	r.GET("/upstream", func(c *gin.Context) {
		_ = c.Error(apperrors.NewNetwork("no response received", nil))
	})

	w, resp := doRequest(t, r, http.MethodGet, "/upstream", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.CodeNetwork, resp.Code)
}

func TestMiddleware_HandlerResponseWins(t *testing.T) {
	r, _ := newTestRouter(nil)
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, common.NewSuccessResponse("", gin.H{"ok": true}))
		_ = c.Error(apperrors.NewInternal("late failure", nil))
	})

	w, _ := doRequest(t, r, http.MethodGet, "/ok", "")
	assert.Equal(t, http.StatusOK, w.Code, "a written response is never overwritten")
}
