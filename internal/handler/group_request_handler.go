package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitsair-platform/service-groupdesk/internal/application"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/grouprequest"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/middleware"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/response"
)

// GroupRequestHandler handles HTTP requests for group request operations.
type GroupRequestHandler struct {
	service *application.GroupRequestService
}

// NewGroupRequestHandler creates a new GroupRequestHandler.
func NewGroupRequestHandler(service *application.GroupRequestService) *GroupRequestHandler {
	return &GroupRequestHandler{service: service}
}

// RegisterRoutes registers all group request routes on the given router group.
func (h *GroupRequestHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	gdOrAdmin := middleware.RequireRole(auth.RoleGroupDesk, auth.RoleAdmin)

	// Public submission form, no auth.
	r.POST("/api/public/group-requests", h.CreatePublic)

	requests := r.Group("/api/group-requests")
	requests.Use(authMW)
	{
		requests.POST("", gdOrAdmin, h.Create)
		requests.GET("", h.List)
		requests.GET("/:id", h.Get)
		requests.GET("/:id/details", h.GetDetail)
		requests.PUT("/:id", gdOrAdmin, h.Update)
		requests.DELETE("/:id", gdOrAdmin, h.Delete)
		requests.PATCH("/:id/send-to-rc", gdOrAdmin, h.AssignToRouteController)
		requests.PATCH("/:id/mark-ticketed", gdOrAdmin, h.MarkTicketed)
		requests.PATCH("/:id/pnr", gdOrAdmin, h.IssuePNR)
		requests.PATCH("/:id/cancel", h.Cancel)
		requests.PATCH("/:id/segments/:index/date", h.UpdateSegmentDate)
		requests.PATCH("/:id/segments/:index/extras", h.UpdateSegmentExtras)
		requests.POST("/:id/notify-agent", gdOrAdmin, h.NotifyAgent)
	}

	dashboard := r.Group("/api/dashboard")
	dashboard.Use(authMW)
	{
		dashboard.GET("", h.DashboardStats)
	}
}

// CreatePublic handles POST /api/public/group-requests.
func (h *GroupRequestHandler) CreatePublic(c *gin.Context) {
	var req application.CreateGroupRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreatePublic(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Create handles POST /api/group-requests.
func (h *GroupRequestHandler) Create(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateGroupRequestRequest
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

// List handles GET /api/group-requests.
func (h *GroupRequestHandler) List(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.List(c.Request.Context(), identity, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// Get handles GET /api/group-requests/:id.
func (h *GroupRequestHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}

	result, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetDetail handles GET /api/group-requests/:id/details.
func (h *GroupRequestHandler) GetDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}

	result, err := h.service.GetDetail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Update handles PUT /api/group-requests/:id.
func (h *GroupRequestHandler) Update(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}

	var req application.UpdateGroupRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Update(c.Request.Context(), identity, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Delete handles DELETE /api/group-requests/:id.
func (h *GroupRequestHandler) Delete(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), identity, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AssignToRouteController handles PATCH /api/group-requests/:id/send-to-rc.
// The route controller is named by the assignedRc query parameter; a
// rc_username JSON body field is accepted as a fallback.
func (h *GroupRequestHandler) AssignToRouteController(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}

	rcUsername := assigneeFromRequest(c)
	if rcUsername == "" {
		response.BadRequest(c, "assignedRc is required")
		return
	}

	result, err := h.service.AssignToRouteController(c.Request.Context(), identity, id, rcUsername)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func assigneeFromRequest(c *gin.Context) string {
	if rc := strings.TrimSpace(c.Query("assignedRc")); rc != "" {
		return rc
	}
	var body struct {
		RCUsername string `json:"rc_username"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.RCUsername)
}

// MarkTicketed handles PATCH /api/group-requests/:id/mark-ticketed.
func (h *GroupRequestHandler) MarkTicketed(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}

	result, err := h.service.MarkTicketed(c.Request.Context(), identity, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// IssuePNR handles PATCH /api/group-requests/:id/pnr.
func (h *GroupRequestHandler) IssuePNR(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}

	var body struct {
		PNR string `json:"pnr" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.IssuePNR(c.Request.Context(), identity, id, body.PNR)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Cancel handles PATCH /api/group-requests/:id/cancel.
func (h *GroupRequestHandler) Cancel(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.service.Cancel(c.Request.Context(), identity, id, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateSegmentDate handles PATCH /api/group-requests/:id/segments/:index/date.
func (h *GroupRequestHandler) UpdateSegmentDate(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "invalid segment index")
		return
	}

	var body struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateSegmentDate(c.Request.Context(), identity, id, index, body.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateSegmentExtras handles PATCH /api/group-requests/:id/segments/:index/extras.
func (h *GroupRequestHandler) UpdateSegmentExtras(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "invalid segment index")
		return
	}

	var extras grouprequest.SegmentExtras
	if err := c.ShouldBindJSON(&extras); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateSegmentExtras(c.Request.Context(), identity, id, index, extras)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// NotifyAgent handles POST /api/group-requests/:id/notify-agent.
func (h *GroupRequestHandler) NotifyAgent(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid group request ID")
		return
	}

	if err := h.service.NotifyAgentSegments(c.Request.Context(), identity, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"status": "queued"})
}

// DashboardStats handles GET /api/dashboard.
func (h *GroupRequestHandler) DashboardStats(c *gin.Context) {
	result, err := h.service.DashboardStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
