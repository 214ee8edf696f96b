package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletedItem is the immutable archival record an item becomes after
// completion. It is keyed by the original item's business ID; the live
// document ID is retired with the live record.
type CompletedItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ItemID       string             `bson:"itemId" json:"itemId"`
	WorkflowID   string             `bson:"workflowId" json:"workflowId"`
	FinalStageID string             `bson:"finalStageId" json:"finalStageId"`
	FinalStage   string             `bson:"finalStageName" json:"finalStageName"`
	IsDefective  bool               `bson:"isDefective" json:"isDefective"`
	IsFlagged    bool               `bson:"isFlagged" json:"isFlagged"`
	AssignedTo   string             `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Production   *ProductionInfo    `bson:"production,omitempty" json:"production,omitempty"`
	Metadata     map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	StartedAt    time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt  time.Time          `bson:"completedAt" json:"completedAt"`
	ArchivedAt   time.Time          `bson:"archivedAt" json:"archivedAt"`
}

// CompletedItemHistoryEntry mirrors ItemHistoryEntry in the archival
// population, preserving original order and timestamps
type CompletedItemHistoryEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EntryID   string             `bson:"entryId" json:"entryId"`
	ItemID    string             `bson:"itemId" json:"itemId"`
	StageID   string             `bson:"stageId" json:"stageId"`
	StageName string             `bson:"stageName" json:"stageName"`
	Action    HistoryAction      `bson:"action" json:"action"`
	Actor     string             `bson:"actor" json:"actor"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Sequence  int64              `bson:"sequence" json:"sequence"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// NewCompletedItem builds the archival record from a completed live item
// and the resolved final stage name
func NewCompletedItem(item *Item, finalStageName string) *CompletedItem {
	completedAt := time.Now()
	if item.CompletedAt != nil {
		completedAt = *item.CompletedAt
	}

	return &CompletedItem{
		ItemID:       item.ItemID,
		WorkflowID:   item.WorkflowID,
		FinalStageID: item.CurrentStageID,
		FinalStage:   finalStageName,
		IsDefective:  item.IsDefective,
		IsFlagged:    item.IsFlagged,
		AssignedTo:   item.AssignedTo,
		Production:   item.Production,
		Metadata:     item.Metadata,
		StartedAt:    item.StartedAt,
		CompletedAt:  completedAt,
		ArchivedAt:   time.Now(),
	}
}

// ArchiveHistory converts live history entries into archival entries,
// preserving order, sequence numbers and timestamps
func ArchiveHistory(entries []ItemHistoryEntry) []CompletedItemHistoryEntry {
	archived := make([]CompletedItemHistoryEntry, 0, len(entries))
	for _, e := range entries {
		archived = append(archived, CompletedItemHistoryEntry{
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
	return archived
}
