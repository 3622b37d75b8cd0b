package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meridianlabs/backoffice/pkg/apperrors"
	"github.com/meridianlabs/backoffice/pkg/common"
	"github.com/meridianlabs/backoffice/pkg/errhandler"
	"github.com/meridianlabs/backoffice/pkg/models"
	"github.com/meridianlabs/backoffice/pkg/repositories"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/services"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/views"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubProductService returns canned results per call.
type stubProductService struct {
	product models.Product
	err     error
}

func (s *stubProductService) Create(context.Context, string, views.ProductRequest) (models.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) Get(context.Context, uuid.UUID) (models.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) List(context.Context, repositories.ProductFilter) ([]models.Product, int, error) {
	return []models.Product{s.product}, 1, s.err
}

func (s *stubProductService) Update(context.Context, string, uuid.UUID, views.ProductRequest) (models.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) AdjustStock(context.Context, string, uuid.UUID, int) (models.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) Delete(context.Context, string, uuid.UUID) error {
	return s.err
}

func newProductRouter(svc services.ProductService) *gin.Engine {
	h := errhandler.New(zap.NewNop(), errhandler.Config{Logging: true, LogLevel: zapcore.ErrorLevel}, nil)
	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(errhandler.Middleware(h))
	NewProductHandler(zap.NewNop(), svc).RegisterRoutes(group)
	return r
}

func serve(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestProductCreate_Success(t *testing.T) {
	svc := &stubProductService{product: models.Product{ID: uuid.New(), SKU: "SKU-1", Name: "Widget", PriceCents: 1999}}
	w := serve(t, newProductRouter(svc), http.MethodPost, "/api/v1/products",
		`{"sku":"SKU-1","name":"Widget","priceCents":1999,"stock":5}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success bool              `json:"success"`
		Data    views.ProductView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "SKU-1", resp.Data.SKU)
}

func TestProductCreate_ValidationEnvelope(t *testing.T) {
	w := serve(t, newProductRouter(&stubProductService{}), http.MethodPost, "/api/v1/products",
		`{"sku":"SKU-1","stock":5}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperrors.CodeValidation, resp.Code)

	fields := make(map[string]string)
	for _, issue := range resp.Issues {
		fields[issue.Field] = issue.Code
	}
	assert.Equal(t, "required", fields["name"])
	assert.Equal(t, "required", fields["pricecents"])
}

func TestProductCreate_DuplicateSKU(t *testing.T) {
	svc := &stubProductService{err: &pgconn.PgError{Code: "23505", TableName: "products", ConstraintName: "products_sku_key"}}
	w := serve(t, newProductRouter(svc), http.MethodPost, "/api/v1/products",
		`{"sku":"SKU-1","name":"Widget","priceCents":1999}`)

	require.Equal(t, http.StatusConflict, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperrors.CodeDuplicateEntry, resp.Code)
	assert.Equal(t, "products", resp.Table)
}

func TestProductGet_InvalidID(t *testing.T) {
	w := serve(t, newProductRouter(&stubProductService{}), http.MethodGet, "/api/v1/products/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeBadRequest, decodeError(t, w).Code)
}

func TestProductGet_NotFound(t *testing.T) {
	svc := &stubProductService{err: pgx.ErrNoRows}
	w := serve(t, newProductRouter(svc), http.MethodGet, "/api/v1/products/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CodeRecordNotFound, decodeError(t, w).Code)
}

func TestProductList_Success(t *testing.T) {
	svc := &stubProductService{product: models.Product{ID: uuid.New(), SKU: "SKU-1"}}
	w := serve(t, newProductRouter(svc), http.MethodGet, "/api/v1/products?page=2&size=10", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data views.ProductListView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Page)
	assert.Equal(t, 10, resp.Data.Size)
	require.Len(t, resp.Data.Products, 1)
}
