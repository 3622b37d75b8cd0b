package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/common"
	"github.com/meridianlabs/backoffice/pkg/repositories"
	"github.com/meridianlabs/backoffice/pkg/utils"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/services"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/views"
)

type UserHandler struct {
	logger  *zap.Logger
	service services.UserService
}

func NewUserHandler(logger *zap.Logger, svc services.UserService) *UserHandler {
	return &UserHandler{logger: logger, service: svc}
}

// RegisterRoutes registers user routes on the provided Gin group.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/users", h.List)
	r.POST("/users", h.Create)
	r.GET("/users/:id", h.Get)
	r.PATCH("/users/:id", h.Update)
	r.POST("/users/:id/ban", h.Ban)
	r.POST("/users/:id/unban", h.Unban)
}

func (h *UserHandler) List(c *gin.Context) {
	filter := repositories.UserFilter{
		Role:   pkg.UserRole(c.Query("role")),
		Status: pkg.UserStatus(c.Query("status")),
		Page:   queryInt(c, "page", 1),
		Size:   queryInt(c, "size", 20),
	}
	users, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	view := views.UserListView{
		Users: make([]views.UserView, 0, len(users)),
		Total: total,
		Page:  filter.Page,
		Size:  filter.Size,
	}
	for _, u := range users {
		view.Users = append(view.Users, views.NewUserView(u))
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("", view))
}

func (h *UserHandler) Create(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)

	var req views.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), traceID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse("user created", views.NewUserView(user)))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	user, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("", views.NewUserView(user)))
}

func (h *UserHandler) Update(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req views.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.service.Update(c.Request.Context(), traceID, id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("user updated", views.NewUserView(user)))
}

func (h *UserHandler) Ban(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	user, err := h.service.Ban(c.Request.Context(), traceID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("user banned", views.NewUserView(user)))
}

func (h *UserHandler) Unban(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	user, err := h.service.Unban(c.Request.Context(), traceID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("user unbanned", views.NewUserView(user)))
}
