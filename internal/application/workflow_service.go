package application

import (
	"context"
	"fmt"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	apperrors "github.com/youcodecowboy/groovy-demo-sub007/pkg/errors"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
)

// WorkflowService handles workflow authoring and lifecycle. Once live
// items reference a workflow its stage graph is append-only.
type WorkflowService struct {
	workflowRepo domain.WorkflowRepository
	auditRepo    domain.AuditRepository
	logger       *logging.Logger
}

// NewWorkflowService creates a new workflow service
func NewWorkflowService(workflowRepo domain.WorkflowRepository, auditRepo domain.AuditRepository, logger *logging.Logger) *WorkflowService {
	return &WorkflowService{
		workflowRepo: workflowRepo,
		auditRepo:    auditRepo,
		logger:       logger,
	}
}

// CreateWorkflow creates an active workflow after validating its stage
// graph
func (s *WorkflowService) CreateWorkflow(ctx context.Context, cmd CreateWorkflowCommand) (*domain.Workflow, error) {
	workflow, err := domain.NewWorkflow(cmd.Name, cmd.Stages)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}

	if err := s.workflowRepo.Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	s.audit(ctx, cmd.Actor, "workflow.created", workflow.WorkflowID,
		fmt.Sprintf("workflow %q created with %d stages", workflow.Name, len(workflow.Stages)))

	return workflow, nil
}

// GetWorkflow retrieves a workflow by its business ID
func (s *WorkflowService) GetWorkflow(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	return s.workflowRepo.FindByWorkflowID(ctx, workflowID)
}

// ListWorkflows retrieves workflows, optionally only active ones
func (s *WorkflowService) ListWorkflows(ctx context.Context, activeOnly bool) ([]*domain.Workflow, error) {
	return s.workflowRepo.FindAll(ctx, activeOnly)
}

// AppendStage adds a stage to the end of a workflow. Appending is always
// allowed: existing stage IDs and orders are untouched, so in-flight
// items keep a valid current stage.
func (s *WorkflowService) AppendStage(ctx context.Context, cmd AppendStageCommand) (*domain.Workflow, error) {
	workflow, err := s.workflowRepo.FindByWorkflowID(ctx, cmd.WorkflowID)
	if err != nil {
		return nil, err
	}

	if err := workflow.AppendStage(cmd.Stage); err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}

	if err := s.workflowRepo.Update(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	s.audit(ctx, cmd.Actor, "workflow.stage_appended", workflow.WorkflowID,
		fmt.Sprintf("stage %s appended", cmd.Stage.StageID))

	return workflow, nil
}

// ReplaceStages replaces the whole stage graph. Only allowed while no
// live items reference the workflow; afterwards the graph is append-only.
func (s *WorkflowService) ReplaceStages(ctx context.Context, cmd ReplaceStagesCommand) (*domain.Workflow, error) {
	workflow, err := s.workflowRepo.FindByWorkflowID(ctx, cmd.WorkflowID)
	if err != nil {
		return nil, err
	}

	count, err := s.workflowRepo.CountItemsReferencing(ctx, workflow.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to count referencing items: %w", err)
	}
	if count > 0 {
		return nil, apperrors.ErrConflict("workflow has live items, stage graph is append-only").
			WithDetail("workflowId", workflow.WorkflowID).
			WithDetail("liveItems", fmt.Sprintf("%d", count))
	}

	if err := domain.ValidateStageGraph(cmd.Stages); err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}
	workflow.Stages = cmd.Stages

	if err := s.workflowRepo.Update(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	s.audit(ctx, cmd.Actor, "workflow.stages_replaced", workflow.WorkflowID,
		fmt.Sprintf("stage graph replaced with %d stages", len(cmd.Stages)))

	return workflow, nil
}

// ActivateWorkflow marks a workflow as accepting new items
func (s *WorkflowService) ActivateWorkflow(ctx context.Context, workflowID, actor string) (*domain.Workflow, error) {
	workflow, err := s.workflowRepo.FindByWorkflowID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	workflow.Activate()
	if err := s.workflowRepo.Update(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	s.audit(ctx, actor, "workflow.activated", workflow.WorkflowID, "workflow activated")
	return workflow, nil
}

// DeactivateWorkflow stops new item creation against a workflow;
// in-flight items keep advancing
func (s *WorkflowService) DeactivateWorkflow(ctx context.Context, workflowID, actor string) (*domain.Workflow, error) {
	workflow, err := s.workflowRepo.FindByWorkflowID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	workflow.Deactivate()
	if err := s.workflowRepo.Update(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	s.audit(ctx, actor, "workflow.deactivated", workflow.WorkflowID, "workflow deactivated")
	return workflow, nil
}

func (s *WorkflowService) audit(ctx context.Context, actor, action, workflowID, description string) {
	if s.auditRepo == nil {
		return
	}
	event := domain.NewAuditEvent(actor, action, "workflow", workflowID, description, nil)
	if err := s.auditRepo.Append(ctx, event); err != nil {
		s.logger.WithError(err).Warn("failed to append audit event",
			"action", action, "entityId", workflowID)
	}
}
