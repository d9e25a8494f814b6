package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitsair-platform/service-groupdesk/internal/application"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/middleware"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/response"
)

// AuthHandler handles login and profile requests.
type AuthHandler struct {
	service *application.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *application.UserService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes registers auth routes on the given router group.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	r.POST("/api/auth/login", h.Login)

	me := r.Group("/api/auth")
	me.Use(middleware.AuthMiddleware(jwtManager))
	{
		me.GET("/me", h.Me)
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req application.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	response.Success(c, gin.H{
		"id":       identity.UserID,
		"username": identity.Username,
		"role":     identity.Role,
	})
}
