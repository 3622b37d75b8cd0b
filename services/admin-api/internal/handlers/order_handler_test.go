package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/apperrors"
	"github.com/meridianlabs/backoffice/pkg/errhandler"
	"github.com/meridianlabs/backoffice/pkg/models"
	"github.com/meridianlabs/backoffice/pkg/repositories"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/services"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/views"
)

type stubOrderService struct {
	order models.Order
	err   error
}

func (s *stubOrderService) Get(context.Context, uuid.UUID) (models.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) List(context.Context, repositories.OrderFilter) ([]models.Order, int, error) {
	return []models.Order{s.order}, 1, s.err
}

func (s *stubOrderService) Transition(context.Context, string, uuid.UUID, pkg.OrderStatus) (models.Order, error) {
	return s.order, s.err
}

func newOrderRouter(svc services.OrderService) *gin.Engine {
	h := errhandler.New(zap.NewNop(), errhandler.Config{Logging: true, LogLevel: zapcore.ErrorLevel}, nil)
	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(errhandler.Middleware(h))
	NewOrderHandler(zap.NewNop(), svc).RegisterRoutes(group)
	return r
}

func TestOrderTransition_Success(t *testing.T) {
	svc := &stubOrderService{order: models.Order{ID: uuid.New(), Status: pkg.OrderStatusPaid}}
	w := serve(t, newOrderRouter(svc), http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status",
		`{"status":"PAID"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data views.OrderView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PAID", resp.Data.Status)
}

func TestOrderTransition_RejectedByStateMachine(t *testing.T) {
	svc := &stubOrderService{err: apperrors.NewBusinessRule("order_status_transition", "order cannot move from DELIVERED to CANCELLED")}
	w := serve(t, newOrderRouter(svc), http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status",
		`{"status":"CANCELLED"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperrors.CodeBusinessRule, resp.Code)
	assert.Equal(t, "order_status_transition", resp.BusinessRule)
}

func TestOrderTransition_UnknownStatusRejected(t *testing.T) {
	w := serve(t, newOrderRouter(&stubOrderService{}), http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status",
		`{"status":"LOST"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperrors.CodeValidation, resp.Code)
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, "oneof", resp.Issues[0].Code)
}
