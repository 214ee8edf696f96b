package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stage is one node in a workflow graph
type Stage struct {
	StageID             string   `bson:"stageId" json:"stageId"`
	Name                string   `bson:"name" json:"name"`
	Order               int      `bson:"order" json:"order"`
	AllowedNextStageIDs []string `bson:"allowedNextStageIds,omitempty" json:"allowedNextStageIds,omitempty"`
	RequiredActions     []string `bson:"requiredActions,omitempty" json:"requiredActions,omitempty"`
	RequiredScan        bool     `bson:"requiredScan" json:"requiredScan"`
}

// Workflow is the aggregate root for a stage graph items move through.
// Once items reference a workflow it is append-only: stages may be added
// but existing stage IDs must not be removed.
type Workflow struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkflowID string             `bson:"workflowId" json:"workflowId"`
	Name       string             `bson:"name" json:"name"`
	Stages     []Stage            `bson:"stages" json:"stages"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewWorkflow creates a workflow after validating its stage graph
func NewWorkflow(name string, stages []Stage) (*Workflow, error) {
	if name == "" {
		return nil, fmt.Errorf("workflow name is required")
	}
	if err := ValidateStageGraph(stages); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Workflow{
		WorkflowID: "WF-" + uuid.New().String(),
		Name:       name,
		Stages:     stages,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ValidateStageGraph checks the structural invariants of a stage list:
// at least one stage, unique IDs, dense orders starting at 0, and every
// explicit edge referencing an existing stage.
func ValidateStageGraph(stages []Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("workflow requires at least one stage")
	}

	seen := make(map[string]bool, len(stages))
	orders := make(map[int]bool, len(stages))
	for _, s := range stages {
		if s.StageID == "" {
			return fmt.Errorf("stage ID is required")
		}
		if s.Name == "" {
			return fmt.Errorf("stage %s: name is required", s.StageID)
		}
		if seen[s.StageID] {
			return fmt.Errorf("duplicate stage ID %s", s.StageID)
		}
		seen[s.StageID] = true

		if orders[s.Order] {
			return fmt.Errorf("duplicate stage order %d", s.Order)
		}
		orders[s.Order] = true
	}

	for i := 0; i < len(stages); i++ {
		if !orders[i] {
			return fmt.Errorf("stage orders must be dense starting at 0, missing order %d", i)
		}
	}

	for _, s := range stages {
		for _, next := range s.AllowedNextStageIDs {
			if !seen[next] {
				return fmt.Errorf("stage %s: allowed next stage %s does not exist", s.StageID, next)
			}
			if next == s.StageID {
				return fmt.Errorf("stage %s: self-edge not allowed", s.StageID)
			}
		}
	}

	return nil
}

// StageByID returns the stage with the given ID
func (w *Workflow) StageByID(stageID string) (*Stage, bool) {
	for i := range w.Stages {
		if w.Stages[i].StageID == stageID {
			return &w.Stages[i], true
		}
	}
	return nil, false
}

// StageByOrder returns the stage with the given order
func (w *Workflow) StageByOrder(order int) (*Stage, bool) {
	for i := range w.Stages {
		if w.Stages[i].Order == order {
			return &w.Stages[i], true
		}
	}
	return nil, false
}

// FirstStage returns the stage with order 0
func (w *Workflow) FirstStage() (*Stage, bool) {
	return w.StageByOrder(0)
}

// ResolveDefaultNext returns the stage ID with order = current.order + 1,
// or empty string if the current stage has the highest order.
func (w *Workflow) ResolveDefaultNext(stageID string) (string, error) {
	stage, ok := w.StageByID(stageID)
	if !ok {
		return "", fmt.Errorf("stage %s not found in workflow %s", stageID, w.WorkflowID)
	}

	next, ok := w.StageByOrder(stage.Order + 1)
	if !ok {
		return "", nil
	}
	return next.StageID, nil
}

// ResolveAllowedNext returns the set of stages reachable from the given
// stage. Explicit edges win outright over the order-based default; they
// are never merged. An empty result means the stage is terminal.
func (w *Workflow) ResolveAllowedNext(stageID string) ([]string, error) {
	stage, ok := w.StageByID(stageID)
	if !ok {
		return nil, fmt.Errorf("stage %s not found in workflow %s", stageID, w.WorkflowID)
	}

	if len(stage.AllowedNextStageIDs) > 0 {
		next := make([]string, len(stage.AllowedNextStageIDs))
		copy(next, stage.AllowedNextStageIDs)
		return next, nil
	}

	defaultNext, err := w.ResolveDefaultNext(stageID)
	if err != nil {
		return nil, err
	}
	if defaultNext == "" {
		return []string{}, nil
	}
	return []string{defaultNext}, nil
}

// IsTerminal reports whether the stage has no reachable successors
func (w *Workflow) IsTerminal(stageID string) (bool, error) {
	next, err := w.ResolveAllowedNext(stageID)
	if err != nil {
		return false, err
	}
	return len(next) == 0, nil
}

// AppendStage adds a stage to the end of the workflow. Existing stage IDs
// are never removed or reordered.
func (w *Workflow) AppendStage(stage Stage) error {
	stage.Order = len(w.Stages)

	candidate := make([]Stage, len(w.Stages), len(w.Stages)+1)
	copy(candidate, w.Stages)
	candidate = append(candidate, stage)

	if err := ValidateStageGraph(candidate); err != nil {
		return err
	}

	w.Stages = candidate
	w.UpdatedAt = time.Now()
	return nil
}

// Activate marks the workflow as active
func (w *Workflow) Activate() {
	w.IsActive = true
	w.UpdatedAt = time.Now()
}

// Deactivate marks the workflow as inactive; existing items keep moving,
// new items can no longer be created against it
func (w *Workflow) Deactivate() {
	w.IsActive = false
	w.UpdatedAt = time.Now()
}
