package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/common"
	"github.com/meridianlabs/backoffice/pkg/repositories"
	"github.com/meridianlabs/backoffice/pkg/utils"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/services"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/views"
)

type OrderHandler struct {
	logger  *zap.Logger
	service services.OrderService
}

func NewOrderHandler(logger *zap.Logger, svc services.OrderService) *OrderHandler {
	return &OrderHandler{logger: logger, service: svc}
}

// RegisterRoutes registers order routes on the provided Gin group.
func (h *OrderHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/orders", h.List)
	r.GET("/orders/:id", h.Get)
	r.PATCH("/orders/:id/status", h.Transition)
}

func (h *OrderHandler) List(c *gin.Context) {
	filter := repositories.OrderFilter{
		Status: pkg.OrderStatus(c.Query("status")),
		Page:   queryInt(c, "page", 1),
		Size:   queryInt(c, "size", 20),
	}
	if raw := c.Query("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err == nil {
			filter.UserID = userID
		}
	}

	orders, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	view := views.OrderListView{
		Orders: make([]views.OrderView, 0, len(orders)),
		Total:  total,
		Page:   filter.Page,
		Size:   filter.Size,
	}
	for _, o := range orders {
		view.Orders = append(view.Orders, views.NewOrderView(o))
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("", view))
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	order, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("", views.NewOrderView(order)))
}

func (h *OrderHandler) Transition(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req views.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	order, err := h.service.Transition(c.Request.Context(), traceID, id, pkg.OrderStatus(req.Status))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("order status updated", views.NewOrderView(order)))
}
