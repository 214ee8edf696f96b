package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemStatus represents the lifecycle status of a production item
type ItemStatus string

const (
	ItemStatusActive    ItemStatus = "active"
	ItemStatusPaused    ItemStatus = "paused"
	ItemStatusError     ItemStatus = "error"
	ItemStatusCompleted ItemStatus = "completed"
)

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusActive, ItemStatusPaused, ItemStatusError, ItemStatusCompleted:
		return true
	}
	return false
}

// HistoryAction identifies what a history entry records
type HistoryAction string

const (
	ActionStarted     HistoryAction = "started"
	ActionAdvanced    HistoryAction = "advanced"
	ActionPaused      HistoryAction = "paused"
	ActionResumed     HistoryAction = "resumed"
	ActionErrored     HistoryAction = "error"
	ActionFlagged     HistoryAction = "flagged"
	ActionDefective   HistoryAction = "defective"
	ActionFlagCleared HistoryAction = "flag_cleared"
	ActionCompleted   HistoryAction = "completed"
)

// ItemHistoryEntry is an append-only record of an item transition.
// Entries live in their own collection so the live item document stays
// small; Sequence orders entries within an item.
type ItemHistoryEntry struct {
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

// ProductionInfo holds the typed production fields promoted out of the
// open metadata map
type ProductionInfo struct {
	OrderRef string `bson:"orderRef,omitempty" json:"orderRef,omitempty"`
	SKU      string `bson:"sku,omitempty" json:"sku,omitempty"`
	Line     string `bson:"line,omitempty" json:"line,omitempty"`
}

// Item is the aggregate root for a live production item moving through a
// workflow. The state machine service is the sole writer of Status and
// CurrentStageID. Version backs optimistic concurrency: every update is
// conditional on the version read.
type Item struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ItemID            string             `bson:"itemId" json:"itemId"`
	WorkflowID        string             `bson:"workflowId" json:"workflowId"`
	CurrentStageID    string             `bson:"currentStageId" json:"currentStageId"`
	Status            ItemStatus         `bson:"status" json:"status"`
	IsDefective       bool               `bson:"isDefective" json:"isDefective"`
	IsFlagged         bool               `bson:"isFlagged" json:"isFlagged"`
	CurrentLocationID string             `bson:"currentLocationId,omitempty" json:"currentLocationId,omitempty"`
	AssignedTo        string             `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Production        *ProductionInfo    `bson:"production,omitempty" json:"production,omitempty"`
	Metadata          map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`

	Version    int64 `bson:"version" json:"version"`
	HistorySeq int64 `bson:"historySeq" json:"historySeq"`

	StartedAt   time.Time  `bson:"startedAt" json:"startedAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`

	// Domain events and pending history (not persisted on the item doc)
	domainEvents   []DomainEvent      `bson:"-" json:"-"`
	pendingHistory []ItemHistoryEntry `bson:"-" json:"-"`
}

// NewItem creates an item at the given start stage of an active workflow
func NewItem(workflow *Workflow, startStage *Stage, assignedTo string, production *ProductionInfo, metadata map[string]string, actor string) *Item {
	now := time.Now()

	item := &Item{
		ItemID:         "ITM-" + uuid.New().String(),
		WorkflowID:     workflow.WorkflowID,
		CurrentStageID: startStage.StageID,
		Status:         ItemStatusActive,
		AssignedTo:     assignedTo,
		Production:     production,
		Metadata:       metadata,
		Version:        1,
		StartedAt:      now,
		UpdatedAt:      now,
	}

	item.recordHistory(startStage.StageID, startStage.Name, ActionStarted, actor, "")
	item.addEvent(NewItemCreatedEvent(item, actor))

	return item
}

// AdvanceTo moves the item to the given stage. The caller has already
// validated reachability against the workflow graph.
func (i *Item) AdvanceTo(stage *Stage, actor, notes string) error {
	if i.Status != ItemStatusActive {
		return fmt.Errorf("cannot advance item in status %s", i.Status)
	}

	fromStageID := i.CurrentStageID
	i.CurrentStageID = stage.StageID
	i.UpdatedAt = time.Now()

	i.recordHistory(stage.StageID, stage.Name, ActionAdvanced, actor, notes)
	i.addEvent(NewItemAdvancedEvent(i, fromStageID, actor))

	return nil
}

// Complete marks the item completed at its current (terminal) stage.
// The archival migration runs afterwards and removes the live record.
func (i *Item) Complete(stageName, actor, notes string) error {
	if i.Status == ItemStatusCompleted {
		return fmt.Errorf("item %s is already completed", i.ItemID)
	}
	if i.Status != ItemStatusActive {
		return fmt.Errorf("cannot complete item in status %s", i.Status)
	}

	now := time.Now()
	i.Status = ItemStatusCompleted
	i.CompletedAt = &now
	i.UpdatedAt = now

	i.recordHistory(i.CurrentStageID, stageName, ActionCompleted, actor, notes)
	i.addEvent(NewItemCompletedEvent(i, actor))

	return nil
}

// Pause halts the item without changing its stage
func (i *Item) Pause(actor, reason string) error {
	if i.Status == ItemStatusCompleted {
		return fmt.Errorf("cannot pause completed item %s", i.ItemID)
	}
	if i.Status == ItemStatusPaused {
		return fmt.Errorf("item %s is already paused", i.ItemID)
	}

	i.Status = ItemStatusPaused
	i.UpdatedAt = time.Now()

	i.recordHistory(i.CurrentStageID, "", ActionPaused, actor, reason)
	i.addEvent(NewItemPausedEvent(i, actor, reason))

	return nil
}

// Resume returns a paused or errored item to active
func (i *Item) Resume(actor string) error {
	if i.Status == ItemStatusCompleted {
		return fmt.Errorf("cannot resume completed item %s", i.ItemID)
	}
	if i.Status == ItemStatusActive {
		return fmt.Errorf("item %s is already active", i.ItemID)
	}

	i.Status = ItemStatusActive
	i.UpdatedAt = time.Now()

	i.recordHistory(i.CurrentStageID, "", ActionResumed, actor, "")
	i.addEvent(NewItemResumedEvent(i, actor))

	return nil
}

// MarkError puts the item into the error state (exceptional halt)
func (i *Item) MarkError(actor, reason string) error {
	if i.Status == ItemStatusCompleted {
		return fmt.Errorf("cannot mark completed item %s as errored", i.ItemID)
	}
	if i.Status == ItemStatusError {
		return fmt.Errorf("item %s is already in error", i.ItemID)
	}

	i.Status = ItemStatusError
	i.UpdatedAt = time.Now()

	i.recordHistory(i.CurrentStageID, "", ActionErrored, actor, reason)
	i.addEvent(NewItemErroredEvent(i, actor, reason))

	return nil
}

// ApplyException sets the derived defective/flagged boolean when an
// exception record is opened. Reasons live on the exception record.
func (i *Item) ApplyException(kind ExceptionKind, actor, reason string) error {
	if i.Status == ItemStatusCompleted {
		return fmt.Errorf("cannot flag completed item %s", i.ItemID)
	}

	var action HistoryAction
	switch kind {
	case ExceptionKindDefective:
		i.IsDefective = true
		action = ActionDefective
	case ExceptionKindFlagged:
		i.IsFlagged = true
		action = ActionFlagged
	default:
		return fmt.Errorf("unknown exception kind %s", kind)
	}

	i.UpdatedAt = time.Now()
	i.recordHistory(i.CurrentStageID, "", action, actor, reason)
	i.addEvent(NewItemFlaggedEvent(i, kind, actor, reason))

	return nil
}

// ResolveException clears the derived boolean when the last open
// exception of that kind is resolved
func (i *Item) ResolveException(kind ExceptionKind, actor, resolution string) error {
	if i.Status == ItemStatusCompleted {
		return fmt.Errorf("cannot clear flags on completed item %s", i.ItemID)
	}

	switch kind {
	case ExceptionKindDefective:
		i.IsDefective = false
	case ExceptionKindFlagged:
		i.IsFlagged = false
	default:
		return fmt.Errorf("unknown exception kind %s", kind)
	}

	i.UpdatedAt = time.Now()
	i.recordHistory(i.CurrentStageID, "", ActionFlagCleared, actor, resolution)
	i.addEvent(NewItemFlagClearedEvent(i, kind, actor))

	return nil
}

// SetLocation records the item's physical location pointer. Occupancy
// accounting happens in the location registry, not here.
func (i *Item) SetLocation(locationID string) {
	i.CurrentLocationID = locationID
	i.UpdatedAt = time.Now()
}

// ClearLocation removes the location pointer
func (i *Item) ClearLocation() {
	i.CurrentLocationID = ""
	i.UpdatedAt = time.Now()
}

// recordHistory appends a pending history entry with the next sequence
func (i *Item) recordHistory(stageID, stageName string, action HistoryAction, actor, notes string) {
	i.HistorySeq++
	i.pendingHistory = append(i.pendingHistory, ItemHistoryEntry{
		EntryID:   uuid.New().String(),
		ItemID:    i.ItemID,
		StageID:   stageID,
		StageName: stageName,
		Action:    action,
		Actor:     actor,
		Notes:     notes,
		Sequence:  i.HistorySeq,
		Timestamp: time.Now(),
	})
}

// PendingHistory returns history entries recorded since the last drain
// and clears them; the service persists these alongside the item update
func (i *Item) PendingHistory() []ItemHistoryEntry {
	entries := i.pendingHistory
	i.pendingHistory = nil
	return entries
}

// Events returns all domain events and clears them
func (i *Item) Events() []DomainEvent {
	events := i.domainEvents
	i.domainEvents = nil
	return events
}

func (i *Item) addEvent(event DomainEvent) {
	i.domainEvents = append(i.domainEvents, event)
}

// DomainEvent interface for item lifecycle events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}
