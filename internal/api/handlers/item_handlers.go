package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/api/dto"
	"github.com/youcodecowboy/groovy-demo-sub007/internal/application"
	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/middleware"
)

// ItemHandlers contains handlers for item lifecycle operations
type ItemHandlers struct {
	service  *application.ItemService
	location *application.LocationService
	logger   *logging.Logger
}

// NewItemHandlers creates a new ItemHandlers
func NewItemHandlers(service *application.ItemService, location *application.LocationService, logger *logging.Logger) *ItemHandlers {
	return &ItemHandlers{
		service:  service,
		location: location,
		logger:   logger,
	}
}

// RegisterRoutes registers item routes on the router
func (h *ItemHandlers) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/items")
	{
		items.POST("", h.CreateItems)
		items.GET("", h.ListItems)
		items.GET("/:itemId", h.GetItem)
		items.GET("/:itemId/history", h.GetHistory)
		items.GET("/:itemId/exceptions", h.GetExceptions)
		items.POST("/:itemId/advance", h.AdvanceStage)
		items.POST("/:itemId/advance-to", h.AdvanceToStage)
		items.POST("/:itemId/complete", h.CompleteItem)
		items.POST("/:itemId/pause", h.PauseItem)
		items.POST("/:itemId/resume", h.ResumeItem)
		items.POST("/:itemId/error", h.MarkError)
		items.POST("/:itemId/exceptions", h.ReportException)
		items.POST("/:itemId/exceptions/resolve", h.ResolveException)
		items.PUT("/:itemId/location", h.PlaceItem)
		items.DELETE("/:itemId/location", h.RemoveFromLocation)
	}

	completed := router.Group("/completed-items")
	{
		completed.GET("", h.ListCompletedItems)
		completed.GET("/:itemId", h.GetCompletedItem)
		completed.GET("/:itemId/history", h.GetHistory)
	}
}

// CreateItems handles item creation, one or many at once
func (h *ItemHandlers) CreateItems(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.CreateItemsRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"workflow.id": req.WorkflowID,
	})

	result, err := h.service.CreateItems(c.Request.Context(), application.CreateItemsCommand{
		WorkflowID:   req.WorkflowID,
		StartStageID: req.StartStageID,
		Quantity:     req.Quantity,
		AssignedTo:   req.AssignedTo,
		LocationID:   req.LocationID,
		Production:   req.Production(),
		Metadata:     req.Metadata,
		Actor:        middleware.GetActor(c),
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListItems handles listing live items with filters
func (h *ItemHandlers) ListItems(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	filter := domain.ItemFilter{
		WorkflowID: c.Query("workflowId"),
		StageID:    c.Query("stageId"),
		Status:     domain.ItemStatus(c.Query("status")),
		AssignedTo: c.Query("assignedTo"),
		LocationID: c.Query("locationId"),
	}
	if v := c.Query("defective"); v != "" {
		defective := v == "true"
		filter.IsDefective = &defective
	}
	if v := c.Query("flagged"); v != "" {
		flagged := v == "true"
		filter.IsFlagged = &flagged
	}
	if v := c.Query("limit"); v != "" {
		if limit, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.Limit = limit
		}
	}

	items, err := h.service.GetItems(c.Request.Context(), filter)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemListResponse{
		Items: dto.FromItems(items),
		Count: len(items),
	})
}

// GetItem handles getting a live item by ID
func (h *ItemHandlers) GetItem(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	itemID := c.Param("itemId")
	middleware.AddSpanAttributes(c, map[string]interface{}{"item.id": itemID})

	item, err := h.service.GetItem(c.Request.Context(), itemID)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, dto.FromItem(item))
}

// GetHistory handles getting an item's full history, live or archived
func (h *ItemHandlers) GetHistory(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	itemID := c.Param("itemId")
	history, err := h.service.GetItemHistory(c.Request.Context(), itemID)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, dto.FromHistory(history))
}

// GetExceptions handles listing an item's exception records
func (h *ItemHandlers) GetExceptions(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	exceptions, err := h.service.GetItemExceptions(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, exceptions)
}

// AdvanceStage handles advancing an item along its single allowed next
// stage, completing it when the current stage is terminal
func (h *ItemHandlers) AdvanceStage(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.AdvanceStageRequest
	if err := middleware.BindOptional(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	itemID := c.Param("itemId")
	middleware.AddSpanAttributes(c, map[string]interface{}{"item.id": itemID})

	result, err := h.service.AdvanceStage(c.Request.Context(), application.AdvanceStageCommand{
		ItemID:        itemID,
		ScanConfirmed: req.ScanConfirmed,
		LocationID:    req.LocationID,
		Notes:         req.Notes,
		Actor:         middleware.GetActor(c),
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AdvanceToStage handles advancing an item to an explicit target stage
func (h *ItemHandlers) AdvanceToStage(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.AdvanceToStageRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	itemID := c.Param("itemId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"item.id":     itemID,
		"stage.id":    req.ToStageID,
		"location.id": req.LocationID,
	})

	result, err := h.service.AdvanceToStage(c.Request.Context(), application.AdvanceToStageCommand{
		ItemID:        itemID,
		ToStageID:     req.ToStageID,
		ScanConfirmed: req.ScanConfirmed,
		LocationID:    req.LocationID,
		Notes:         req.Notes,
		Actor:         middleware.GetActor(c),
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CompleteItem handles completing an item at its current stage
func (h *ItemHandlers) CompleteItem(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.CompleteItemRequest
	if err := middleware.BindOptional(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	result, err := h.service.CompleteItem(c.Request.Context(), application.CompleteItemCommand{
		ItemID: c.Param("itemId"),
		Notes:  req.Notes,
		Actor:  middleware.GetActor(c),
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PauseItem handles pausing an item
func (h *ItemHandlers) PauseItem(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.PauseItemRequest
	if err := middleware.BindOptional(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	if err := h.service.PauseItem(c.Request.Context(), application.PauseItemCommand{
		ItemID: c.Param("itemId"),
		Reason: req.Reason,
		Actor:  middleware.GetActor(c),
	}); err != nil {
		responder.RespondWithError(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ResumeItem handles resuming a paused or errored item
func (h *ItemHandlers) ResumeItem(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	if err := h.service.ResumeItem(c.Request.Context(), application.ResumeItemCommand{
		ItemID: c.Param("itemId"),
		Actor:  middleware.GetActor(c),
	}); err != nil {
		responder.RespondWithError(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkError handles putting an item into the error state
func (h *ItemHandlers) MarkError(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.MarkErrorRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	if err := h.service.MarkItemError(c.Request.Context(), application.MarkItemErrorCommand{
		ItemID: c.Param("itemId"),
		Reason: req.Reason,
		Actor:  middleware.GetActor(c),
	}); err != nil {
		responder.RespondWithError(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReportException handles opening a defective or flagged exception
func (h *ItemHandlers) ReportException(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.ReportExceptionRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	exception, err := h.service.ReportException(c.Request.Context(), application.ReportExceptionCommand{
		ItemID: c.Param("itemId"),
		Kind:   domain.ExceptionKind(req.Kind),
		Reason: req.Reason,
		Actor:  middleware.GetActor(c),
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, exception)
}

// ResolveException handles resolving open exceptions of a kind
func (h *ItemHandlers) ResolveException(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.ResolveExceptionRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	if err := h.service.ResolveException(c.Request.Context(), application.ResolveExceptionCommand{
		ItemID:     c.Param("itemId"),
		Kind:       domain.ExceptionKind(req.Kind),
		Resolution: req.Resolution,
		Actor:      middleware.GetActor(c),
	}); err != nil {
		responder.RespondWithError(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PlaceItem handles placing an item into a location
func (h *ItemHandlers) PlaceItem(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.PlaceItemRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	location, err := h.location.PlaceItem(c.Request.Context(), application.PlaceItemCommand{
		ItemID:     c.Param("itemId"),
		LocationID: req.LocationID,
		Actor:      middleware.GetActor(c),
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// RemoveFromLocation handles taking an item out of its location
func (h *ItemHandlers) RemoveFromLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	if err := h.location.RemoveItem(c.Request.Context(), application.RemoveItemCommand{
		ItemID: c.Param("itemId"),
		Actor:  middleware.GetActor(c),
	}); err != nil {
		responder.RespondWithError(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCompletedItems handles listing the archived population
func (h *ItemHandlers) ListCompletedItems(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	filter := domain.CompletedItemFilter{
		WorkflowID:   c.Query("workflowId"),
		FinalStageID: c.Query("finalStageId"),
		AssignedTo:   c.Query("assignedTo"),
	}
	if v := c.Query("limit"); v != "" {
		if limit, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.Limit = limit
		}
	}

	items, err := h.service.GetCompletedItems(c.Request.Context(), filter)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, dto.CompletedItemListResponse{
		Items: items,
		Count: len(items),
	})
}

// GetCompletedItem handles getting an archived item by the original ID
func (h *ItemHandlers) GetCompletedItem(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	item, err := h.service.GetCompletedItem(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, item)
}
