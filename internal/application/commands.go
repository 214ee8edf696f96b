package application

import "github.com/youcodecowboy/groovy-demo-sub007/internal/domain"

// CreateItemsCommand holds the input for creating items on a workflow.
// Quantity items are created, each starting at the workflow's first stage
// unless StartStageID overrides it.
type CreateItemsCommand struct {
	WorkflowID   string                 `json:"workflowId"`
	StartStageID string                 `json:"startStageId,omitempty"`
	Quantity     int                    `json:"quantity"`
	AssignedTo   string                 `json:"assignedTo,omitempty"`
	LocationID   string                 `json:"locationId,omitempty"`
	Production   *domain.ProductionInfo `json:"production,omitempty"`
	Metadata     map[string]string      `json:"metadata,omitempty"`
	Actor        string                 `json:"actor"`
}

// CreateItemsResult holds the result of creating items
type CreateItemsResult struct {
	ItemIDs    []string `json:"itemIds"`
	WorkflowID string   `json:"workflowId"`
	Count      int      `json:"count"`
}

// AdvanceToStageCommand holds the input for advancing an item to an
// explicit target stage
type AdvanceToStageCommand struct {
	ItemID        string `json:"itemId"`
	ToStageID     string `json:"toStageId"`
	ScanConfirmed bool   `json:"scanConfirmed,omitempty"`
	LocationID    string `json:"locationId,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Actor         string `json:"actor"`
}

// AdvanceStageCommand holds the input for advancing an item along its
// single allowed next stage, or completing it at a terminal stage
type AdvanceStageCommand struct {
	ItemID        string `json:"itemId"`
	ScanConfirmed bool   `json:"scanConfirmed,omitempty"`
	LocationID    string `json:"locationId,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Actor         string `json:"actor"`
}

// AdvanceResult reports where an item ended up after an advance
type AdvanceResult struct {
	ItemID    string            `json:"itemId"`
	StageID   string            `json:"stageId"`
	Status    domain.ItemStatus `json:"status"`
	Completed bool              `json:"completed"`
	Archived  bool              `json:"archived"`
}

// CompleteItemCommand holds the input for completing an item at its
// current stage
type CompleteItemCommand struct {
	ItemID string `json:"itemId"`
	Notes  string `json:"notes,omitempty"`
	Actor  string `json:"actor"`
}

// PauseItemCommand holds the input for pausing an item
type PauseItemCommand struct {
	ItemID string `json:"itemId"`
	Reason string `json:"reason,omitempty"`
	Actor  string `json:"actor"`
}

// ResumeItemCommand holds the input for resuming a paused or errored item
type ResumeItemCommand struct {
	ItemID string `json:"itemId"`
	Actor  string `json:"actor"`
}

// MarkItemErrorCommand holds the input for putting an item into the
// error state
type MarkItemErrorCommand struct {
	ItemID string `json:"itemId"`
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// ReportExceptionCommand holds the input for opening a defective or
// flagged exception against an item
type ReportExceptionCommand struct {
	ItemID string               `json:"itemId"`
	Kind   domain.ExceptionKind `json:"kind"`
	Reason string               `json:"reason"`
	Actor  string               `json:"actor"`
}

// ResolveExceptionCommand holds the input for resolving the open
// exceptions of a kind on an item
type ResolveExceptionCommand struct {
	ItemID     string               `json:"itemId"`
	Kind       domain.ExceptionKind `json:"kind"`
	Resolution string               `json:"resolution,omitempty"`
	Actor      string               `json:"actor"`
}

// CreateWorkflowCommand holds the input for creating a workflow
type CreateWorkflowCommand struct {
	Name   string         `json:"name"`
	Stages []domain.Stage `json:"stages"`
	Actor  string         `json:"actor"`
}

// AppendStageCommand holds the input for appending a stage to the end
// of an existing workflow
type AppendStageCommand struct {
	WorkflowID string       `json:"workflowId"`
	Stage      domain.Stage `json:"stage"`
	Actor      string       `json:"actor"`
}

// ReplaceStagesCommand holds the input for replacing a workflow's stage
// graph wholesale; only allowed while no live items reference it
type ReplaceStagesCommand struct {
	WorkflowID string         `json:"workflowId"`
	Stages     []domain.Stage `json:"stages"`
	Actor      string         `json:"actor"`
}

// CreateLocationCommand holds the input for creating a location
type CreateLocationCommand struct {
	Name            string              `json:"name"`
	Type            domain.LocationType `json:"type"`
	Capacity        *int                `json:"capacity,omitempty"`
	AssignedStageID string              `json:"assignedStageId,omitempty"`
	Actor           string              `json:"actor"`
}

// PlaceItemCommand holds the input for placing an item into a location
type PlaceItemCommand struct {
	ItemID     string `json:"itemId"`
	LocationID string `json:"locationId"`
	Actor      string `json:"actor"`
}

// RemoveItemCommand holds the input for taking an item out of its
// current location
type RemoveItemCommand struct {
	ItemID string `json:"itemId"`
	Actor  string `json:"actor"`
}
