package domain

import "time"

// ItemCreatedEvent - when an item is created at its start stage
type ItemCreatedEvent struct {
	ItemID     string    `json:"itemId"`
	WorkflowID string    `json:"workflowId"`
	StageID    string    `json:"stageId"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewItemCreatedEvent(i *Item, createdBy string) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		ItemID:     i.ItemID,
		WorkflowID: i.WorkflowID,
		StageID:    i.CurrentStageID,
		CreatedBy:  createdBy,
		CreatedAt:  i.StartedAt,
	}
}

func (e *ItemCreatedEvent) EventType() string     { return "item.created" }
func (e *ItemCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// ItemAdvancedEvent - when an item moves to a new stage
type ItemAdvancedEvent struct {
	ItemID      string    `json:"itemId"`
	WorkflowID  string    `json:"workflowId"`
	FromStageID string    `json:"fromStageId"`
	ToStageID   string    `json:"toStageId"`
	Actor       string    `json:"actor"`
	AdvancedAt  time.Time `json:"advancedAt"`
}

func NewItemAdvancedEvent(i *Item, fromStageID, actor string) *ItemAdvancedEvent {
	return &ItemAdvancedEvent{
		ItemID:      i.ItemID,
		WorkflowID:  i.WorkflowID,
		FromStageID: fromStageID,
		ToStageID:   i.CurrentStageID,
		Actor:       actor,
		AdvancedAt:  i.UpdatedAt,
	}
}

func (e *ItemAdvancedEvent) EventType() string     { return "item.advanced" }
func (e *ItemAdvancedEvent) OccurredAt() time.Time { return e.AdvancedAt }

// ItemCompletedEvent - when an item reaches a terminal stage
type ItemCompletedEvent struct {
	ItemID       string    `json:"itemId"`
	WorkflowID   string    `json:"workflowId"`
	FinalStageID string    `json:"finalStageId"`
	Actor        string    `json:"actor"`
	CompletedAt  time.Time `json:"completedAt"`
}

func NewItemCompletedEvent(i *Item, actor string) *ItemCompletedEvent {
	completedAt := i.UpdatedAt
	if i.CompletedAt != nil {
		completedAt = *i.CompletedAt
	}
	return &ItemCompletedEvent{
		ItemID:       i.ItemID,
		WorkflowID:   i.WorkflowID,
		FinalStageID: i.CurrentStageID,
		Actor:        actor,
		CompletedAt:  completedAt,
	}
}

func (e *ItemCompletedEvent) EventType() string     { return "item.completed" }
func (e *ItemCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// ItemPausedEvent - when an item is paused
type ItemPausedEvent struct {
	ItemID   string    `json:"itemId"`
	StageID  string    `json:"stageId"`
	Actor    string    `json:"actor"`
	Reason   string    `json:"reason,omitempty"`
	PausedAt time.Time `json:"pausedAt"`
}

func NewItemPausedEvent(i *Item, actor, reason string) *ItemPausedEvent {
	return &ItemPausedEvent{
		ItemID:   i.ItemID,
		StageID:  i.CurrentStageID,
		Actor:    actor,
		Reason:   reason,
		PausedAt: i.UpdatedAt,
	}
}

func (e *ItemPausedEvent) EventType() string     { return "item.paused" }
func (e *ItemPausedEvent) OccurredAt() time.Time { return e.PausedAt }

// ItemResumedEvent - when a paused or errored item returns to active
type ItemResumedEvent struct {
	ItemID    string    `json:"itemId"`
	StageID   string    `json:"stageId"`
	Actor     string    `json:"actor"`
	ResumedAt time.Time `json:"resumedAt"`
}

func NewItemResumedEvent(i *Item, actor string) *ItemResumedEvent {
	return &ItemResumedEvent{
		ItemID:    i.ItemID,
		StageID:   i.CurrentStageID,
		Actor:     actor,
		ResumedAt: i.UpdatedAt,
	}
}

func (e *ItemResumedEvent) EventType() string     { return "item.resumed" }
func (e *ItemResumedEvent) OccurredAt() time.Time { return e.ResumedAt }

// ItemErroredEvent - when an item enters the error state
type ItemErroredEvent struct {
	ItemID    string    `json:"itemId"`
	StageID   string    `json:"stageId"`
	Actor     string    `json:"actor"`
	Reason    string    `json:"reason"`
	ErroredAt time.Time `json:"erroredAt"`
}

func NewItemErroredEvent(i *Item, actor, reason string) *ItemErroredEvent {
	return &ItemErroredEvent{
		ItemID:    i.ItemID,
		StageID:   i.CurrentStageID,
		Actor:     actor,
		Reason:    reason,
		ErroredAt: i.UpdatedAt,
	}
}

func (e *ItemErroredEvent) EventType() string     { return "item.errored" }
func (e *ItemErroredEvent) OccurredAt() time.Time { return e.ErroredAt }

// ItemFlaggedEvent - when a defective/flagged exception is opened
type ItemFlaggedEvent struct {
	ItemID    string        `json:"itemId"`
	Kind      ExceptionKind `json:"kind"`
	Actor     string        `json:"actor"`
	Reason    string        `json:"reason"`
	FlaggedAt time.Time     `json:"flaggedAt"`
}

func NewItemFlaggedEvent(i *Item, kind ExceptionKind, actor, reason string) *ItemFlaggedEvent {
	return &ItemFlaggedEvent{
		ItemID:    i.ItemID,
		Kind:      kind,
		Actor:     actor,
		Reason:    reason,
		FlaggedAt: i.UpdatedAt,
	}
}

func (e *ItemFlaggedEvent) EventType() string     { return "item.flagged" }
func (e *ItemFlaggedEvent) OccurredAt() time.Time { return e.FlaggedAt }

// ItemFlagClearedEvent - when a defective/flagged exception is resolved
type ItemFlagClearedEvent struct {
	ItemID    string        `json:"itemId"`
	Kind      ExceptionKind `json:"kind"`
	Actor     string        `json:"actor"`
	ClearedAt time.Time     `json:"clearedAt"`
}

func NewItemFlagClearedEvent(i *Item, kind ExceptionKind, actor string) *ItemFlagClearedEvent {
	return &ItemFlagClearedEvent{
		ItemID:    i.ItemID,
		Kind:      kind,
		Actor:     actor,
		ClearedAt: i.UpdatedAt,
	}
}

func (e *ItemFlagClearedEvent) EventType() string     { return "item.flag_cleared" }
func (e *ItemFlagClearedEvent) OccurredAt() time.Time { return e.ClearedAt }

// ItemArchivedEvent - when the archival migration moves a completed item
type ItemArchivedEvent struct {
	ItemID       string    `json:"itemId"`
	WorkflowID   string    `json:"workflowId"`
	FinalStageID string    `json:"finalStageId"`
	HistoryCount int       `json:"historyCount"`
	ArchivedAt   time.Time `json:"archivedAt"`
}

func NewItemArchivedEvent(c *CompletedItem, historyCount int) *ItemArchivedEvent {
	return &ItemArchivedEvent{
		ItemID:       c.ItemID,
		WorkflowID:   c.WorkflowID,
		FinalStageID: c.FinalStageID,
		HistoryCount: historyCount,
		ArchivedAt:   c.ArchivedAt,
	}
}

func (e *ItemArchivedEvent) EventType() string     { return "item.archived" }
func (e *ItemArchivedEvent) OccurredAt() time.Time { return e.ArchivedAt }
