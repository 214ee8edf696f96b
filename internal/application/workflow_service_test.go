package application

import (
	"context"
	"testing"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	apperrors "github.com/youcodecowboy/groovy-demo-sub007/pkg/errors"
)

func newWorkflowTestService() (*WorkflowService, *MockWorkflowRepository, *MockAuditRepository) {
	workflows := NewMockWorkflowRepository()
	audit := NewMockAuditRepository()
	return NewWorkflowService(workflows, audit, testLogger()), workflows, audit
}

func garmentStages() []domain.Stage {
	return []domain.Stage{
		{StageID: "cut", Name: "Cutting", Order: 0},
		{StageID: "sew", Name: "Sewing", Order: 1},
		{StageID: "qc", Name: "Quality Control", Order: 2},
	}
}

func TestWorkflowService_CreateWorkflow(t *testing.T) {
	t.Run("creates and audits", func(t *testing.T) {
		service, workflows, audit := newWorkflowTestService()

		workflow, err := service.CreateWorkflow(context.Background(), CreateWorkflowCommand{
			Name:   "Garment Production",
			Stages: garmentStages(),
			Actor:  "admin",
		})
		if err != nil {
			t.Fatalf("CreateWorkflow() error = %v", err)
		}
		if !workflow.IsActive {
			t.Error("IsActive = false, want true")
		}
		if _, ok := workflows.workflows[workflow.WorkflowID]; !ok {
			t.Error("workflow not saved")
		}
		if actions := audit.actionsFor(workflow.WorkflowID); len(actions) != 1 || actions[0] != "workflow.created" {
			t.Errorf("audit actions = %v, want [workflow.created]", actions)
		}
	})

	t.Run("rejects an invalid stage graph", func(t *testing.T) {
		service, _, _ := newWorkflowTestService()

		_, err := service.CreateWorkflow(context.Background(), CreateWorkflowCommand{
			Name: "Bad",
			Stages: []domain.Stage{
				{StageID: "cut", Name: "Cutting", Order: 0, AllowedNextStageIDs: []string{"missing"}},
			},
			Actor: "admin",
		})
		assertAppErrorCode(t, err, apperrors.CodeValidationError)
	})
}

func TestWorkflowService_AppendStage(t *testing.T) {
	service, workflows, _ := newWorkflowTestService()
	workflow, _ := service.CreateWorkflow(context.Background(), CreateWorkflowCommand{
		Name: "Garment Production", Stages: garmentStages(), Actor: "admin",
	})

	// Appending stays allowed even with live items on the workflow
	workflows.refCounts[workflow.WorkflowID] = 5

	updated, err := service.AppendStage(context.Background(), AppendStageCommand{
		WorkflowID: workflow.WorkflowID,
		Stage:      domain.Stage{StageID: "pack", Name: "Packing"},
		Actor:      "admin",
	})
	if err != nil {
		t.Fatalf("AppendStage() error = %v", err)
	}

	stage, ok := updated.StageByID("pack")
	if !ok || stage.Order != 3 {
		t.Errorf("appended stage = %+v, want order 3", stage)
	}
}

func TestWorkflowService_ReplaceStages(t *testing.T) {
	t.Run("allowed while unreferenced", func(t *testing.T) {
		service, _, _ := newWorkflowTestService()
		workflow, _ := service.CreateWorkflow(context.Background(), CreateWorkflowCommand{
			Name: "Garment Production", Stages: garmentStages(), Actor: "admin",
		})

		updated, err := service.ReplaceStages(context.Background(), ReplaceStagesCommand{
			WorkflowID: workflow.WorkflowID,
			Stages: []domain.Stage{
				{StageID: "assemble", Name: "Assembly", Order: 0},
				{StageID: "inspect", Name: "Inspection", Order: 1},
			},
			Actor: "admin",
		})
		if err != nil {
			t.Fatalf("ReplaceStages() error = %v", err)
		}
		if len(updated.Stages) != 2 {
			t.Errorf("Stages length = %v, want 2", len(updated.Stages))
		}
	})

	t.Run("blocked once items reference the workflow", func(t *testing.T) {
		service, workflows, _ := newWorkflowTestService()
		workflow, _ := service.CreateWorkflow(context.Background(), CreateWorkflowCommand{
			Name: "Garment Production", Stages: garmentStages(), Actor: "admin",
		})
		workflows.refCounts[workflow.WorkflowID] = 1

		_, err := service.ReplaceStages(context.Background(), ReplaceStagesCommand{
			WorkflowID: workflow.WorkflowID,
			Stages:     garmentStages(),
			Actor:      "admin",
		})
		assertAppErrorCode(t, err, apperrors.CodeConflict)
	})
}

func TestWorkflowService_ActivateDeactivate(t *testing.T) {
	service, _, _ := newWorkflowTestService()
	workflow, _ := service.CreateWorkflow(context.Background(), CreateWorkflowCommand{
		Name: "Garment Production", Stages: garmentStages(), Actor: "admin",
	})

	deactivated, err := service.DeactivateWorkflow(context.Background(), workflow.WorkflowID, "admin")
	if err != nil {
		t.Fatalf("DeactivateWorkflow() error = %v", err)
	}
	if deactivated.IsActive {
		t.Error("IsActive = true after deactivation")
	}

	activated, err := service.ActivateWorkflow(context.Background(), workflow.WorkflowID, "admin")
	if err != nil {
		t.Fatalf("ActivateWorkflow() error = %v", err)
	}
	if !activated.IsActive {
		t.Error("IsActive = false after activation")
	}
}
