package domain

import (
	"context"
	"time"
)

// WorkflowRepository defines the interface for workflow persistence
type WorkflowRepository interface {
	// Save persists a new workflow
	Save(ctx context.Context, workflow *Workflow) error

	// FindByWorkflowID retrieves a workflow by its business ID
	FindByWorkflowID(ctx context.Context, workflowID string) (*Workflow, error)

	// FindAll retrieves workflows, optionally only active ones
	FindAll(ctx context.Context, activeOnly bool) ([]*Workflow, error)

	// Update updates a workflow
	Update(ctx context.Context, workflow *Workflow) error

	// CountItemsReferencing reports how many live items reference a workflow
	CountItemsReferencing(ctx context.Context, workflowID string) (int64, error)
}

// ItemFilter holds the filters for querying live items
type ItemFilter struct {
	WorkflowID  string
	StageID     string
	Status      ItemStatus
	AssignedTo  string
	LocationID  string
	IsDefective *bool
	IsFlagged   *bool
	Limit       int64
}

// ItemRepository defines the interface for live item persistence
type ItemRepository interface {
	// Save persists a new item
	Save(ctx context.Context, item *Item) error

	// FindByItemID retrieves a live item by its business ID
	FindByItemID(ctx context.Context, itemID string) (*Item, error)

	// FindActive retrieves live items matching the filter
	FindActive(ctx context.Context, filter ItemFilter) ([]*Item, error)

	// Update conditionally replaces the item at the version it was read;
	// a version mismatch surfaces as a conflict
	Update(ctx context.Context, item *Item) error

	// Delete removes a live item (archival path only)
	Delete(ctx context.Context, itemID string) error

	// CountByWorkflow counts live items on a workflow
	CountByWorkflow(ctx context.Context, workflowID string) (int64, error)
}

// ItemHistoryRepository defines the interface for live history persistence
type ItemHistoryRepository interface {
	// Append persists history entries
	Append(ctx context.Context, entries []ItemHistoryEntry) error

	// FindByItemID retrieves an item's history ordered by sequence
	FindByItemID(ctx context.Context, itemID string) ([]ItemHistoryEntry, error)

	// DeleteByItemID removes an item's history (archival path only)
	DeleteByItemID(ctx context.Context, itemID string) error
}

// CompletedItemFilter holds the filters for querying archived items
type CompletedItemFilter struct {
	WorkflowID    string
	FinalStageID  string
	AssignedTo    string
	CompletedFrom *time.Time
	CompletedTo   *time.Time
	Limit         int64
}

// CompletedItemRepository defines the read interface for the archival
// population; writes happen only through the Archiver
type CompletedItemRepository interface {
	// FindByItemID retrieves an archived item by the original business ID
	FindByItemID(ctx context.Context, itemID string) (*CompletedItem, error)

	// Find retrieves archived items matching the filter
	Find(ctx context.Context, filter CompletedItemFilter) ([]*CompletedItem, error)

	// FindHistoryByItemID retrieves archived history ordered by sequence
	FindHistoryByItemID(ctx context.Context, itemID string) ([]CompletedItemHistoryEntry, error)

	// Count returns the archived item count
	Count(ctx context.Context) (int64, error)
}

// Archiver is the single bridge between the live and archived item
// populations. Archive must be atomic: no concurrent reader may observe
// the item in both populations or in neither.
type Archiver interface {
	Archive(ctx context.Context, item *Item, history []ItemHistoryEntry, finalStageName string) (*CompletedItem, error)
}

// ItemExceptionRepository defines the interface for exception records
type ItemExceptionRepository interface {
	// Save persists an exception record
	Save(ctx context.Context, exception *ItemException) error

	// FindByExceptionID retrieves an exception by ID
	FindByExceptionID(ctx context.Context, exceptionID string) (*ItemException, error)

	// FindByItemID retrieves all exception records for an item
	FindByItemID(ctx context.Context, itemID string) ([]*ItemException, error)

	// FindOpenByItem retrieves unresolved exceptions of a kind for an item
	FindOpenByItem(ctx context.Context, itemID string, kind ExceptionKind) ([]*ItemException, error)

	// Update updates an exception record
	Update(ctx context.Context, exception *ItemException) error
}

// LocationRepository defines the interface for location persistence.
// Occupy and Release are conditional updates: the capacity check and the
// increment are a single atomic operation per location.
type LocationRepository interface {
	// Save persists a new location
	Save(ctx context.Context, location *Location) error

	// FindByLocationID retrieves a location by its business ID
	FindByLocationID(ctx context.Context, locationID string) (*Location, error)

	// FindAll retrieves locations, optionally only active ones
	FindAll(ctx context.Context, activeOnly bool) ([]*Location, error)

	// Update updates location attributes (not occupancy)
	Update(ctx context.Context, location *Location) error

	// Occupy atomically increments occupancy if the location is active
	// and below capacity; returns the updated location
	Occupy(ctx context.Context, locationID string) (*Location, error)

	// Release atomically decrements occupancy, never below zero
	Release(ctx context.Context, locationID string) (*Location, error)
}

// AuditRepository defines the interface for the append-only audit log
type AuditRepository interface {
	// Append persists an audit event
	Append(ctx context.Context, event *AuditEvent) error

	// Query retrieves events matching the filters, newest first
	Query(ctx context.Context, query AuditQuery) ([]*AuditEvent, error)

	// Stats computes aggregate counts, with the recent window given
	Stats(ctx context.Context, recentWindow time.Duration) (*AuditStats, error)
}
