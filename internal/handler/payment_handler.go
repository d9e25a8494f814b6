package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitsair-platform/service-groupdesk/internal/application"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/middleware"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/response"
)

// maxAttachmentSize caps uploaded settlement documents at 10 MiB.
const maxAttachmentSize = 10 << 20

// PaymentHandler handles HTTP requests for payment operations.
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers all payment routes on the given router group.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	gdOrAdmin := middleware.RequireRole(auth.RoleGroupDesk, auth.RoleAdmin)

	payments := r.Group("/api/payments")
	payments.Use(authMW)
	{
		payments.GET("", h.List)
		payments.GET("/:id", h.Get)
		payments.PATCH("/:id/mark-paid", gdOrAdmin, h.MarkPaid)
		payments.POST("/:id/attachments", gdOrAdmin, h.UploadAttachment)
		payments.GET("/:id/attachments", h.ListAttachments)
	}

	attachments := r.Group("/api/attachments")
	attachments.Use(authMW)
	{
		attachments.GET("/:id/download", h.DownloadAttachment)
	}

	requests := r.Group("/api/group-requests")
	requests.Use(authMW)
	{
		requests.GET("/:id/payments", h.ListByRequest)
	}
}

// List handles GET /api/payments.
func (h *PaymentHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	result, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// Get handles GET /api/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	result, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListByRequest handles GET /api/group-requests/:id/payments.
func (h *PaymentHandler) ListByRequest(c *gin.Context) {
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

// MarkPaid handles PATCH /api/payments/:id/mark-paid.
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	result, err := h.service.MarkPaid(c.Request.Context(), identity, id, c.Query("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UploadAttachment handles POST /api/payments/:id/attachments (multipart).
func (h *PaymentHandler) UploadAttachment(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if fileHeader.Size > maxAttachmentSize {
		response.BadRequest(c, "file exceeds the 10 MiB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "failed to read file")
		return
	}
	defer file.Close()

	result, err := h.service.UploadAttachment(
		c.Request.Context(),
		identity,
		id,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListAttachments handles GET /api/payments/:id/attachments.
func (h *PaymentHandler) ListAttachments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	result, err := h.service.ListAttachments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DownloadAttachment handles GET /api/attachments/:id/download.
func (h *PaymentHandler) DownloadAttachment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attachment ID")
		return
	}

	meta, rc, err := h.service.OpenAttachment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Filename))
	c.DataFromReader(http.StatusOK, meta.Size, contentType, rc, nil)
}
