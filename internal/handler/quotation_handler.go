package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitsair-platform/service-groupdesk/internal/application"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/quotation"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/middleware"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/response"
)

// QuotationHandler handles HTTP requests for quotation operations.
type QuotationHandler struct {
	service *application.QuotationService
}

// NewQuotationHandler creates a new QuotationHandler.
func NewQuotationHandler(service *application.QuotationService) *QuotationHandler {
	return &QuotationHandler{service: service}
}

// RegisterRoutes registers all quotation routes on the given router group.
func (h *QuotationHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	gdOrAdmin := middleware.RequireRole(auth.RoleGroupDesk, auth.RoleAdmin)

	quotations := r.Group("/api/quotations")
	quotations.Use(authMW)
	{
		quotations.POST("", h.Create)
		quotations.GET("", h.List)
		quotations.GET("/:id", h.Get)
		quotations.PATCH("/:id/send-to-agent", gdOrAdmin, h.Send)
		quotations.PATCH("/:id/accept", gdOrAdmin, h.Accept)
		quotations.PATCH("/:id/resend", gdOrAdmin, h.Resend)
		quotations.PATCH("/:id/resend-simple", gdOrAdmin, h.ResendSimple)
		quotations.PATCH("/:id/status", gdOrAdmin, h.OverrideStatus)
	}

	requests := r.Group("/api/group-requests")
	requests.Use(authMW)
	{
		requests.GET("/:id/quotations", h.ListByRequest)
	}
}

// Create handles POST /api/quotations.
func (h *QuotationHandler) Create(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Create(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// List handles GET /api/quotations.
func (h *QuotationHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	result, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// Get handles GET /api/quotations/:id.
func (h *QuotationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid quotation ID")
		return
	}

	result, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListByRequest handles GET /api/group-requests/:id/quotations.
func (h *QuotationHandler) ListByRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}

	result, err := h.service.ListByRequest(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Send handles PATCH /api/quotations/:id/send-to-agent.
func (h *QuotationHandler) Send(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid quotation ID")
		return
	}

	result, err := h.service.Send(c.Request.Context(), identity, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Accept handles PATCH /api/quotations/:id/accept.
func (h *QuotationHandler) Accept(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid quotation ID")
		return
	}

	result, err := h.service.Accept(c.Request.Context(), identity, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Resend handles PATCH /api/quotations/:id/resend (full resend, new fare).
func (h *QuotationHandler) Resend(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid quotation ID")
		return
	}

	var req application.ResendQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Resend(c.Request.Context(), identity, id, quotation.ResendFull, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ResendSimple handles PATCH /api/quotations/:id/resend-simple.
func (h *QuotationHandler) ResendSimple(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid quotation ID")
		return
	}

	result, err := h.service.Resend(c.Request.Context(), identity, id, quotation.ResendSimple, application.ResendQuotationRequest{})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// OverrideStatus handles PATCH /api/quotations/:id/status.
func (h *QuotationHandler) OverrideStatus(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid quotation ID")
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	target, err := quotation.ParseStatus(body.Status)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.OverrideStatus(c.Request.Context(), identity, id, target)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
