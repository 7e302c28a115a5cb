package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/digimarket/internal/server/http/dto"
)

const defaultAuditLimit = 50

// AuditHandler serves the audit trail.
type AuditHandler struct {
	facade AuditFacade
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(facade AuditFacade) *AuditHandler {
	return &AuditHandler{facade: facade}
}

// Recent handles GET /api/admin/audit?limit=N.
func (h *AuditHandler) Recent(c *gin.Context) {
	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c)
			return
		}
		limit = n
	}

	entries, err := h.facade.AuditLog(c.Request.Context(), CurrentActor(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]dto.LogEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, dto.LogEntryResponse{
			ID:        e.ID,
			EventType: e.EventType,
			UserID:    e.UserID,
			Message:   e.Message,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

// HealthHandler reports readiness.
type HealthHandler struct {
	facade HealthFacade
}

// NewHealthHandler constructs HealthHandler.
func NewHealthHandler(facade HealthFacade) *HealthHandler {
	return &HealthHandler{facade: facade}
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.facade.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable"})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}
