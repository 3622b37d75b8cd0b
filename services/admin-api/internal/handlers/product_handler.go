package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/apperrors"
	"github.com/meridianlabs/backoffice/pkg/common"
	"github.com/meridianlabs/backoffice/pkg/repositories"
	"github.com/meridianlabs/backoffice/pkg/utils"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/services"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/views"
)

type ProductHandler struct {
	logger  *zap.Logger
	service services.ProductService
}

func NewProductHandler(logger *zap.Logger, svc services.ProductService) *ProductHandler {
	return &ProductHandler{logger: logger, service: svc}
}

// RegisterRoutes registers product routes on the provided Gin group.
func (h *ProductHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/products", h.List)
	r.POST("/products", h.Create)
	r.GET("/products/:id", h.Get)
	r.PUT("/products/:id", h.Update)
	r.POST("/products/:id/stock", h.AdjustStock)
	r.DELETE("/products/:id", h.Delete)
}

func (h *ProductHandler) List(c *gin.Context) {
	filter := repositories.ProductFilter{
		Status: pkg.ProductStatus(c.Query("status")),
		Search: c.Query("search"),
		Page:   queryInt(c, "page", 1),
		Size:   queryInt(c, "size", 20),
	}
	products, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	view := views.ProductListView{
		Products: make([]views.ProductView, 0, len(products)),
		Total:    total,
		Page:     filter.Page,
		Size:     filter.Size,
	}
	for _, p := range products {
		view.Products = append(view.Products, views.NewProductView(p))
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("", view))
}

func (h *ProductHandler) Create(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)

	var req views.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	product, err := h.service.Create(c.Request.Context(), traceID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse("product created", views.NewProductView(product)))
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	product, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("", views.NewProductView(product)))
}

func (h *ProductHandler) Update(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req views.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	product, err := h.service.Update(c.Request.Context(), traceID, id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("product updated", views.NewProductView(product)))
}

func (h *ProductHandler) AdjustStock(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req views.StockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	product, err := h.service.AdjustStock(c.Request.Context(), traceID, id, req.Delta)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("stock adjusted", views.NewProductView(product)))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), traceID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("product deleted", nil))
}

func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewBadRequest("invalid id in path")
	}
	return id, nil
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
