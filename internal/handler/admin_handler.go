package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitsair-platform/service-groupdesk/internal/application"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/middleware"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/response"
)

// AdminHandler handles user administration requests.
type AdminHandler struct {
	service *application.UserService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.UserService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	users := r.Group("/api/admin/users")
	users.Use(authMW, middleware.RequireRole(auth.RoleAdmin))
	{
		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.PATCH("/:id/enabled", h.SetEnabled)
		users.PATCH("/:id/password", h.ResetPassword)
	}

	// The assignment dropdown needs the RC roster without admin rights.
	rcs := r.Group("/api/users")
	rcs.Use(authMW)
	{
		rcs.GET("/route-controllers", h.ListRouteControllers)
	}
}

// CreateUser handles POST /api/admin/users.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req application.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), c.Query("role"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListRouteControllers handles GET /api/users/route-controllers.
func (h *AdminHandler) ListRouteControllers(c *gin.Context) {
	result, err := h.service.RouteControllers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetEnabled handles PATCH /api/admin/users/:id/enabled.
func (h *AdminHandler) SetEnabled(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}

	var body struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetEnabled(c.Request.Context(), id, *body.Enabled)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ResetPassword handles PATCH /api/admin/users/:id/password.
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}

	var body struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), id, body.Password); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
