package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/api/dto"
	"github.com/youcodecowboy/groovy-demo-sub007/internal/application"
	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/middleware"
)

// AuditHandlers contains handlers for querying the audit log
type AuditHandlers struct {
	service *application.AuditService
	logger  *logging.Logger
}

// NewAuditHandlers creates a new AuditHandlers
func NewAuditHandlers(service *application.AuditService, logger *logging.Logger) *AuditHandlers {
	return &AuditHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers audit routes on the router
func (h *AuditHandlers) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/audit")
	{
		audit.GET("/events", h.QueryEvents)
		audit.GET("/stats", h.GetStats)
	}
}

// QueryEvents handles querying the audit log with filters
func (h *AuditHandlers) QueryEvents(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	query := domain.AuditQuery{
		Actor:      c.Query("actor"),
		EntityType: c.Query("entityType"),
		EntityID:   c.Query("entityId"),
		Action:     c.Query("action"),
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			responder.RespondBadRequest("from must be RFC3339")
			return
		}
		query.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			responder.RespondBadRequest("to must be RFC3339")
			return
		}
		query.To = &to
	}
	if v := c.Query("limit"); v != "" {
		if limit, err := strconv.ParseInt(v, 10, 64); err == nil {
			query.Limit = limit
		}
	}

	events, err := h.service.Query(c.Request.Context(), query)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, dto.AuditListResponse{
		Events: events,
		Count:  len(events),
	})
}

// GetStats handles aggregate audit log statistics
func (h *AuditHandlers) GetStats(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
