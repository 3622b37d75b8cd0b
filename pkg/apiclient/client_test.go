package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/apperrors"
	"github.com/meridianlabs/backoffice/pkg/common"
)

func newTestClient(srv *httptest.Server) *Client {
	c := New(srv.URL, zap.NewNop())
	c.retryMaxElapsed = 2 * time.Second
	return c
}

func TestGet_DecodesEnvelopeData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get(pkg.HeaderTraceId))
		_ = json.NewEncoder(w).Encode(common.NewSuccessResponse("", map[string]any{"id": "p1", "sku": "SKU-1"}))
	}))
	defer srv.Close()

	var out struct {
		ID  string `json:"id"`
		SKU string `json:"sku"`
	}
	err := newTestClient(srv).Get(context.Background(), "/api/v1/products/p1", &out)
	require.NoError(t, err)
	assert.Equal(t, "p1", out.ID)
	assert.Equal(t, "SKU-1", out.SKU)
}

func TestPost_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SKU-1", body["sku"])
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(common.NewSuccessResponse("created", map[string]any{"id": "p1"}))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(srv).Post(context.Background(), "/api/v1/products", map[string]any{"sku": "SKU-1"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "p1", out["id"])
}

func TestDo_NonOKReturnsResponseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(common.ErrorResponse{
			Message: "sku already exists",
			Code:    apperrors.CodeDuplicateEntry,
		})
	}))
	defer srv.Close()

	err := newTestClient(srv).Post(context.Background(), "/api/v1/products", map[string]any{}, nil)
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusConflict, respErr.Status)
	require.NotNil(t, respErr.Body)
	assert.Equal(t, apperrors.CodeDuplicateEntry, respErr.Body.Code)
	assert.Equal(t, "sku already exists", respErr.BodyMessage())
}

func TestDo_NonEnvelopeErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestClient(srv).Post(context.Background(), "/x", map[string]any{}, nil)
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusBadGateway, respErr.Status)
	assert.Nil(t, respErr.Body, "plain-text body leaves the envelope unset")
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(common.NewSuccessResponse("", map[string]any{"ok": true}))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(srv).Get(context.Background(), "/x", &out)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestGet_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := newTestClient(srv).Get(context.Background(), "/x", nil)
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPost_NeverRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestClient(srv).Post(context.Background(), "/x", map[string]any{}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_ConnectionFailureReturnsRawURLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening

	err := newTestClient(srv).Post(context.Background(), "/x", map[string]any{}, nil)
	var urlErr *url.Error
	require.ErrorAs(t, err, &urlErr)

	typed := apperrors.Classify(err, nil)
	assert.Equal(t, apperrors.KindNetwork, typed.Kind)
}
