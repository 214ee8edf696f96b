package dto

import "github.com/youcodecowboy/groovy-demo-sub007/internal/domain"

// StageSpec describes one stage in a workflow authoring request
type StageSpec struct {
	StageID             string   `json:"stageId" binding:"required,stage_id"`
	Name                string   `json:"name" binding:"required,max=200"`
	Order               int      `json:"order" binding:"min=0"`
	AllowedNextStageIDs []string `json:"allowedNextStageIds,omitempty" binding:"omitempty,dive,stage_id"`
	RequiredActions     []string `json:"requiredActions,omitempty"`
	RequiredScan        bool     `json:"requiredScan"`
}

// ToStage converts the stage definition to a domain stage
func (s StageSpec) ToStage() domain.Stage {
	return domain.Stage{
		StageID:             s.StageID,
		Name:                s.Name,
		Order:               s.Order,
		AllowedNextStageIDs: s.AllowedNextStageIDs,
		RequiredActions:     s.RequiredActions,
		RequiredScan:        s.RequiredScan,
	}
}

// ToStages converts a slice of stage specs
func ToStages(specs []StageSpec) []domain.Stage {
	stages := make([]domain.Stage, 0, len(specs))
	for _, spec := range specs {
		stages = append(stages, spec.ToStage())
	}
	return stages
}

// CreateWorkflowRequest holds the input for creating a workflow
type CreateWorkflowRequest struct {
	Name   string      `json:"name" binding:"required,max=200"`
	Stages []StageSpec `json:"stages" binding:"required,min=1,dive"`
}

// AppendStageRequest holds the input for appending a stage
type AppendStageRequest struct {
	Stage StageSpec `json:"stage" binding:"required"`
}

// ReplaceStagesRequest holds the input for replacing a stage graph
type ReplaceStagesRequest struct {
	Stages []StageSpec `json:"stages" binding:"required,min=1,dive"`
}

// CreateItemsRequest holds the input for creating items
type CreateItemsRequest struct {
	WorkflowID   string            `json:"workflowId" binding:"required,workflow_id"`
	StartStageID string            `json:"startStageId,omitempty" binding:"omitempty,stage_id"`
	Quantity     int               `json:"quantity,omitempty" binding:"omitempty,min=1,max=1000"`
	AssignedTo   string            `json:"assignedTo,omitempty" binding:"omitempty,max=100"`
	LocationID   string            `json:"locationId,omitempty" binding:"omitempty,location_id"`
	OrderRef     string            `json:"orderRef,omitempty" binding:"omitempty,max=100"`
	SKU          string            `json:"sku,omitempty" binding:"omitempty,max=100"`
	Line         string            `json:"line,omitempty" binding:"omitempty,max=100"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Production builds the typed production info, nil when empty
func (r *CreateItemsRequest) Production() *domain.ProductionInfo {
	if r.OrderRef == "" && r.SKU == "" && r.Line == "" {
		return nil
	}
	return &domain.ProductionInfo{
		OrderRef: r.OrderRef,
		SKU:      r.SKU,
		Line:     r.Line,
	}
}

// AdvanceToStageRequest holds the input for advancing to an explicit
// target stage
type AdvanceToStageRequest struct {
	ToStageID     string `json:"toStageId" binding:"required,stage_id"`
	ScanConfirmed bool   `json:"scanConfirmed,omitempty"`
	LocationID    string `json:"locationId,omitempty" binding:"omitempty,location_id"`
	Notes         string `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

// AdvanceStageRequest holds the input for advancing along the single
// allowed next stage
type AdvanceStageRequest struct {
	ScanConfirmed bool   `json:"scanConfirmed,omitempty"`
	LocationID    string `json:"locationId,omitempty" binding:"omitempty,location_id"`
	Notes         string `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

// CompleteItemRequest holds the input for completing an item
type CompleteItemRequest struct {
	Notes string `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

// PauseItemRequest holds the input for pausing an item
type PauseItemRequest struct {
	Reason string `json:"reason,omitempty" binding:"omitempty,max=500"`
}

// MarkErrorRequest holds the input for marking an item errored
type MarkErrorRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReportExceptionRequest holds the input for opening an exception
type ReportExceptionRequest struct {
	Kind   string `json:"kind" binding:"required,oneof=defective flagged"`
	Reason string `json:"reason" binding:"required,max=500"`
}

// ResolveExceptionRequest holds the input for resolving exceptions
type ResolveExceptionRequest struct {
	Kind       string `json:"kind" binding:"required,oneof=defective flagged"`
	Resolution string `json:"resolution,omitempty" binding:"omitempty,max=500"`
}

// CreateLocationRequest holds the input for creating a location
type CreateLocationRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	Type            string `json:"type" binding:"required,oneof=bin shelf rack area zone"`
	Capacity        *int   `json:"capacity,omitempty" binding:"omitempty,min=1"`
	AssignedStageID string `json:"assignedStageId,omitempty" binding:"omitempty,stage_id"`
}

// AssignStageRequest holds the input for assigning a location to a stage
type AssignStageRequest struct {
	StageID string `json:"stageId" binding:"required,stage_id"`
}

// SetLocationActiveRequest holds the input for (de)activating a location
type SetLocationActiveRequest struct {
	IsActive bool `json:"isActive"`
}

// PlaceItemRequest holds the input for placing an item into a location
type PlaceItemRequest struct {
	LocationID string `json:"locationId" binding:"required,location_id"`
}
