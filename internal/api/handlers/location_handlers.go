package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/api/dto"
	"github.com/youcodecowboy/groovy-demo-sub007/internal/application"
	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/middleware"
)

// LocationHandlers contains handlers for the location registry
type LocationHandlers struct {
	service *application.LocationService
	logger  *logging.Logger
}

// NewLocationHandlers creates a new LocationHandlers
func NewLocationHandlers(service *application.LocationService, logger *logging.Logger) *LocationHandlers {
	return &LocationHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers location routes on the router
func (h *LocationHandlers) RegisterRoutes(router *gin.RouterGroup) {
	locations := router.Group("/locations")
	{
		locations.POST("", h.CreateLocation)
		locations.GET("", h.ListLocations)
		locations.GET("/:locationId", h.GetLocation)
		locations.PUT("/:locationId/stage", h.AssignStage)
		locations.PUT("/:locationId/active", h.SetActive)
	}
}

// CreateLocation handles location creation
func (h *LocationHandlers) CreateLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.CreateLocationRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	location, err := h.service.CreateLocation(c.Request.Context(), application.CreateLocationCommand{
		Name:            req.Name,
		Type:            domain.LocationType(req.Type),
		Capacity:        req.Capacity,
		AssignedStageID: req.AssignedStageID,
		Actor:           middleware.GetActor(c),
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, location)
}

// ListLocations handles listing locations
func (h *LocationHandlers) ListLocations(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	activeOnly := c.Query("active") == "true"
	locations, err := h.service.ListLocations(c.Request.Context(), activeOnly)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, dto.LocationListResponse{
		Locations: locations,
		Count:     len(locations),
	})
}

// GetLocation handles getting a location by ID
func (h *LocationHandlers) GetLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	locationID := c.Param("locationId")
	middleware.AddSpanAttributes(c, map[string]interface{}{"location.id": locationID})

	location, err := h.service.GetLocation(c.Request.Context(), locationID)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// AssignStage handles associating a location with a workflow stage
func (h *LocationHandlers) AssignStage(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.AssignStageRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	location, err := h.service.AssignStage(c.Request.Context(), c.Param("locationId"), req.StageID, middleware.GetActor(c))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// SetActive handles activating or deactivating a location
func (h *LocationHandlers) SetActive(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.SetLocationActiveRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	location, err := h.service.SetActive(c.Request.Context(), c.Param("locationId"), req.IsActive, middleware.GetActor(c))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, location)
}
