package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/api/dto"
	"github.com/youcodecowboy/groovy-demo-sub007/internal/application"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/middleware"
)

// WorkflowHandlers contains handlers for workflow authoring operations
type WorkflowHandlers struct {
	service *application.WorkflowService
	logger  *logging.Logger
}

// NewWorkflowHandlers creates a new WorkflowHandlers
func NewWorkflowHandlers(service *application.WorkflowService, logger *logging.Logger) *WorkflowHandlers {
	return &WorkflowHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers workflow routes on the router
func (h *WorkflowHandlers) RegisterRoutes(router *gin.RouterGroup) {
	workflows := router.Group("/workflows")
	{
		workflows.POST("", h.CreateWorkflow)
		workflows.GET("", h.ListWorkflows)
		workflows.GET("/:workflowId", h.GetWorkflow)
		workflows.POST("/:workflowId/stages", h.AppendStage)
		workflows.PUT("/:workflowId/stages", h.ReplaceStages)
		workflows.POST("/:workflowId/activate", h.Activate)
		workflows.POST("/:workflowId/deactivate", h.Deactivate)
	}
}

// CreateWorkflow handles workflow creation
func (h *WorkflowHandlers) CreateWorkflow(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.CreateWorkflowRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	workflow, err := h.service.CreateWorkflow(c.Request.Context(), application.CreateWorkflowCommand{
		Name:   req.Name,
		Stages: dto.ToStages(req.Stages),
		Actor:  middleware.GetActor(c),
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, workflow)
}

// ListWorkflows handles listing workflows
func (h *WorkflowHandlers) ListWorkflows(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	activeOnly := c.Query("active") == "true"
	workflows, err := h.service.ListWorkflows(c.Request.Context(), activeOnly)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, dto.WorkflowListResponse{
		Workflows: workflows,
		Count:     len(workflows),
	})
}

// GetWorkflow handles getting a workflow by ID
func (h *WorkflowHandlers) GetWorkflow(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	workflowID := c.Param("workflowId")
	middleware.AddSpanAttributes(c, map[string]interface{}{"workflow.id": workflowID})

	workflow, err := h.service.GetWorkflow(c.Request.Context(), workflowID)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, workflow)
}

// AppendStage handles appending a stage to a workflow
func (h *WorkflowHandlers) AppendStage(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.AppendStageRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	workflow, err := h.service.AppendStage(c.Request.Context(), application.AppendStageCommand{
		WorkflowID: c.Param("workflowId"),
		Stage:      req.Stage.ToStage(),
		Actor:      middleware.GetActor(c),
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, workflow)
}

// ReplaceStages handles replacing the whole stage graph of an
// unreferenced workflow
func (h *WorkflowHandlers) ReplaceStages(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req dto.ReplaceStagesRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		responder.RespondWithError(err)
		return
	}

	workflow, err := h.service.ReplaceStages(c.Request.Context(), application.ReplaceStagesCommand{
		WorkflowID: c.Param("workflowId"),
		Stages:     dto.ToStages(req.Stages),
		Actor:      middleware.GetActor(c),
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, workflow)
}

// Activate handles activating a workflow
func (h *WorkflowHandlers) Activate(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	workflow, err := h.service.ActivateWorkflow(c.Request.Context(), c.Param("workflowId"), middleware.GetActor(c))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, workflow)
}

// Deactivate handles deactivating a workflow
func (h *WorkflowHandlers) Deactivate(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	workflow, err := h.service.DeactivateWorkflow(c.Request.Context(), c.Param("workflowId"), middleware.GetActor(c))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, workflow)
}
