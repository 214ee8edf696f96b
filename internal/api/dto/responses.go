package dto

import (
	"time"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
)

// ItemResponse is the API shape of a live item
type ItemResponse struct {
	ItemID            string                 `json:"itemId"`
	WorkflowID        string                 `json:"workflowId"`
	CurrentStageID    string                 `json:"currentStageId"`
	Status            domain.ItemStatus      `json:"status"`
	IsDefective       bool                   `json:"isDefective"`
	IsFlagged         bool                   `json:"isFlagged"`
	CurrentLocationID string                 `json:"currentLocationId,omitempty"`
	AssignedTo        string                 `json:"assignedTo,omitempty"`
	Production        *domain.ProductionInfo `json:"production,omitempty"`
	Metadata          map[string]string      `json:"metadata,omitempty"`
	Version           int64                  `json:"version"`
	StartedAt         time.Time              `json:"startedAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
	CompletedAt       *time.Time             `json:"completedAt,omitempty"`
}

// FromItem maps a domain item to its API shape
func FromItem(item *domain.Item) ItemResponse {
	return ItemResponse{
		ItemID:            item.ItemID,
		WorkflowID:        item.WorkflowID,
		CurrentStageID:    item.CurrentStageID,
		Status:            item.Status,
		IsDefective:       item.IsDefective,
		IsFlagged:         item.IsFlagged,
		CurrentLocationID: item.CurrentLocationID,
		AssignedTo:        item.AssignedTo,
		Production:        item.Production,
		Metadata:          item.Metadata,
		Version:           item.Version,
		StartedAt:         item.StartedAt,
		UpdatedAt:         item.UpdatedAt,
		CompletedAt:       item.CompletedAt,
	}
}

// FromItems maps a slice of domain items
func FromItems(items []*domain.Item) []ItemResponse {
	responses := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, FromItem(item))
	}
	return responses
}

// HistoryEntryResponse is the API shape of a history entry
type HistoryEntryResponse struct {
	EntryID   string               `json:"entryId"`
	ItemID    string               `json:"itemId"`
	StageID   string               `json:"stageId"`
	StageName string               `json:"stageName,omitempty"`
	Action    domain.HistoryAction `json:"action"`
	Actor     string               `json:"actor,omitempty"`
	Notes     string               `json:"notes,omitempty"`
	Sequence  int64                `json:"sequence"`
	Timestamp time.Time            `json:"timestamp"`
}

// FromHistory maps history entries to their API shape
func FromHistory(entries []domain.ItemHistoryEntry) []HistoryEntryResponse {
	responses := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, HistoryEntryResponse{
			EntryID:   e.EntryID,
			ItemID:    e.ItemID,
			StageID:   e.StageID,
			StageName: e.StageName,
			Action:    e.Action,
			Actor:     e.Actor,
			Notes:     e.Notes,
			Sequence:  e.Sequence,
			Timestamp: e.Timestamp,
		})
	}
	return responses
}

// ItemListResponse wraps a list of items with its count
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Count int            `json:"count"`
}

// CompletedItemListResponse wraps archived items with the archive size
type CompletedItemListResponse struct {
	Items []*domain.CompletedItem `json:"items"`
	Count int                     `json:"count"`
}

// WorkflowListResponse wraps a list of workflows with its count
type WorkflowListResponse struct {
	Workflows []*domain.Workflow `json:"workflows"`
	Count     int                `json:"count"`
}

// LocationListResponse wraps a list of locations with its count
type LocationListResponse struct {
	Locations []*domain.Location `json:"locations"`
	Count     int                `json:"count"`
}

// AuditListResponse wraps audit events with their count
type AuditListResponse struct {
	Events []*domain.AuditEvent `json:"events"`
	Count  int                  `json:"count"`
}
