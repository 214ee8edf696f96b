package application

import (
	"context"
	"fmt"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	apperrors "github.com/youcodecowboy/groovy-demo-sub007/pkg/errors"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/metrics"
)

// EventPublisher interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, events []domain.DomainEvent) error
}

// ItemService drives the item lifecycle state machine: creation at a
// workflow's start stage, stage advancement, exceptional states, and the
// archival migration on completion.
type ItemService struct {
	itemRepo      domain.ItemRepository
	historyRepo   domain.ItemHistoryRepository
	workflowRepo  domain.WorkflowRepository
	completedRepo domain.CompletedItemRepository
	exceptionRepo domain.ItemExceptionRepository
	locationRepo  domain.LocationRepository
	archiver      domain.Archiver
	auditRepo     domain.AuditRepository
	publisher     EventPublisher
	metrics       *metrics.Metrics
	logger        *logging.Logger
}

// NewItemService creates a new item service
func NewItemService(
	itemRepo domain.ItemRepository,
	historyRepo domain.ItemHistoryRepository,
	workflowRepo domain.WorkflowRepository,
	completedRepo domain.CompletedItemRepository,
	exceptionRepo domain.ItemExceptionRepository,
	locationRepo domain.LocationRepository,
	archiver domain.Archiver,
	auditRepo domain.AuditRepository,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ItemService {
	return &ItemService{
		itemRepo:      itemRepo,
		historyRepo:   historyRepo,
		workflowRepo:  workflowRepo,
		completedRepo: completedRepo,
		exceptionRepo: exceptionRepo,
		locationRepo:  locationRepo,
		archiver:      archiver,
		auditRepo:     auditRepo,
		publisher:     publisher,
		metrics:       m,
		logger:        logger,
	}
}

// CreateItems creates Quantity items on an active workflow, each starting
// at the workflow's first stage unless StartStageID overrides it
func (s *ItemService) CreateItems(ctx context.Context, cmd CreateItemsCommand) (*CreateItemsResult, error) {
	if cmd.Quantity < 1 {
		cmd.Quantity = 1
	}

	workflow, err := s.workflowRepo.FindByWorkflowID(ctx, cmd.WorkflowID)
	if err != nil {
		return nil, err
	}
	if !workflow.IsActive {
		return nil, apperrors.ErrWorkflowInactive(workflow.WorkflowID)
	}

	startStage, ok := workflow.FirstStage()
	if cmd.StartStageID != "" {
		startStage, ok = workflow.StageByID(cmd.StartStageID)
	}
	if !ok {
		return nil, apperrors.ErrValidation("start stage not found in workflow").
			WithDetail("workflowId", workflow.WorkflowID).
			WithDetail("stageId", cmd.StartStageID)
	}

	itemIDs := make([]string, 0, cmd.Quantity)
	for i := 0; i < cmd.Quantity; i++ {
		item := domain.NewItem(workflow, startStage, cmd.AssignedTo, cmd.Production, cmd.Metadata, cmd.Actor)

		occupied := false
		if cmd.LocationID != "" {
			occupied, err = s.moveToLocation(ctx, item, cmd.LocationID)
			if err != nil {
				return nil, err
			}
		}

		if err := s.itemRepo.Save(ctx, item); err != nil {
			if occupied {
				s.releaseLocation(ctx, cmd.LocationID)
			}
			return nil, fmt.Errorf("failed to save item: %w", err)
		}
		if err := s.historyRepo.Append(ctx, item.PendingHistory()); err != nil {
			return nil, fmt.Errorf("failed to append item history: %w", err)
		}

		s.publish(ctx, item.Events())
		s.audit(ctx, cmd.Actor, "item.created", "item", item.ItemID,
			fmt.Sprintf("item created at stage %s", startStage.StageID),
			map[string]string{"workflowId": workflow.WorkflowID, "stageId": startStage.StageID})

		if s.metrics != nil {
			s.metrics.RecordItemCreated(workflow.WorkflowID)
		}

		itemIDs = append(itemIDs, item.ItemID)
	}

	return &CreateItemsResult{
		ItemIDs:    itemIDs,
		WorkflowID: workflow.WorkflowID,
		Count:      len(itemIDs),
	}, nil
}

// AdvanceToStage moves an item to an explicit target stage. The target
// must be in the allowed-next set of the item's current stage; advancing
// to the current stage is a no-op success. Advancing into a terminal
// stage completes the item and runs the archival migration.
func (s *ItemService) AdvanceToStage(ctx context.Context, cmd AdvanceToStageCommand) (*AdvanceResult, error) {
	item, err := s.findLiveItem(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}

	workflow, err := s.workflowRepo.FindByWorkflowID(ctx, item.WorkflowID)
	if err != nil {
		return nil, err
	}

	// Re-advancing to the current stage is idempotent: no history entry,
	// no audit event, no version bump
	if cmd.ToStageID == item.CurrentStageID {
		return &AdvanceResult{
			ItemID:  item.ItemID,
			StageID: item.CurrentStageID,
			Status:  item.Status,
		}, nil
	}

	if item.Status != domain.ItemStatusActive {
		s.rejectTransition("item_not_active")
		return nil, apperrors.NewAppError(apperrors.CodeInvalidTransition,
			fmt.Sprintf("cannot advance item in status %s", item.Status), 422).
			WithDetail("itemId", item.ItemID)
	}

	allowed, err := workflow.ResolveAllowedNext(item.CurrentStageID)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}
	if !containsString(allowed, cmd.ToStageID) {
		s.rejectTransition("not_reachable")
		return nil, apperrors.ErrInvalidTransition(item.CurrentStageID, cmd.ToStageID)
	}

	target, ok := workflow.StageByID(cmd.ToStageID)
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("stage", cmd.ToStageID)
	}
	if target.RequiredScan && !cmd.ScanConfirmed {
		s.rejectTransition("scan_required")
		return nil, apperrors.ErrScanRequired(target.StageID)
	}

	fromStageID := item.CurrentStageID
	if err := item.AdvanceTo(target, cmd.Actor, cmd.Notes); err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	occupied := false
	if cmd.LocationID != "" {
		occupied, err = s.moveToLocation(ctx, item, cmd.LocationID)
		if err != nil {
			return nil, err
		}
	}

	if s.metrics != nil {
		s.metrics.RecordItemAdvanced(workflow.WorkflowID, target.StageID)
	}

	terminal, err := workflow.IsTerminal(target.StageID)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}
	if terminal {
		// completeAndArchive vacates the location before the final write,
		// which also undoes the occupancy taken above
		return s.completeAndArchive(ctx, item, workflow, target.Name, cmd.Actor, cmd.Notes)
	}

	if err := s.persistItem(ctx, item); err != nil {
		if occupied {
			s.releaseLocation(ctx, cmd.LocationID)
		}
		return nil, err
	}

	s.publish(ctx, item.Events())
	s.audit(ctx, cmd.Actor, "item.advanced", "item", item.ItemID,
		fmt.Sprintf("advanced from %s to %s", fromStageID, target.StageID),
		map[string]string{"fromStageId": fromStageID, "toStageId": target.StageID})

	return &AdvanceResult{
		ItemID:  item.ItemID,
		StageID: item.CurrentStageID,
		Status:  item.Status,
	}, nil
}

// AdvanceStage moves an item along its workflow without an explicit
// target. Zero allowed next stages completes the item, exactly one
// advances to it, more than one is an error requiring an explicit target.
func (s *ItemService) AdvanceStage(ctx context.Context, cmd AdvanceStageCommand) (*AdvanceResult, error) {
	item, err := s.findLiveItem(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}

	workflow, err := s.workflowRepo.FindByWorkflowID(ctx, item.WorkflowID)
	if err != nil {
		return nil, err
	}

	allowed, err := workflow.ResolveAllowedNext(item.CurrentStageID)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}

	switch len(allowed) {
	case 0:
		return s.CompleteItem(ctx, CompleteItemCommand{
			ItemID: cmd.ItemID,
			Notes:  cmd.Notes,
			Actor:  cmd.Actor,
		})
	case 1:
		return s.AdvanceToStage(ctx, AdvanceToStageCommand{
			ItemID:        cmd.ItemID,
			ToStageID:     allowed[0],
			ScanConfirmed: cmd.ScanConfirmed,
			LocationID:    cmd.LocationID,
			Notes:         cmd.Notes,
			Actor:         cmd.Actor,
		})
	default:
		s.rejectTransition("ambiguous_next")
		return nil, apperrors.ErrAmbiguousNextStage(item.CurrentStageID)
	}
}

// CompleteItem completes an item at its current stage, which must be
// terminal, and runs the archival migration
func (s *ItemService) CompleteItem(ctx context.Context, cmd CompleteItemCommand) (*AdvanceResult, error) {
	item, err := s.findLiveItem(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}

	workflow, err := s.workflowRepo.FindByWorkflowID(ctx, item.WorkflowID)
	if err != nil {
		return nil, err
	}

	terminal, err := workflow.IsTerminal(item.CurrentStageID)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}
	if !terminal {
		s.rejectTransition("not_terminal")
		return nil, apperrors.NewAppError(apperrors.CodeInvalidTransition,
			fmt.Sprintf("cannot complete item at non-terminal stage %s", item.CurrentStageID), 422).
			WithDetail("itemId", item.ItemID)
	}

	stageName := item.CurrentStageID
	if stage, ok := workflow.StageByID(item.CurrentStageID); ok {
		stageName = stage.Name
	}

	return s.completeAndArchive(ctx, item, workflow, stageName, cmd.Actor, cmd.Notes)
}

// completeAndArchive marks the item completed, persists the final live
// state, then atomically moves the item and its history to the archive.
// Re-entrant: if a previous attempt failed after the final live write,
// the item is already completed, so the write is skipped and the
// archival transaction is retried.
func (s *ItemService) completeAndArchive(ctx context.Context, item *domain.Item, workflow *domain.Workflow, finalStageName, actor, notes string) (*AdvanceResult, error) {
	if item.Status != domain.ItemStatusCompleted {
		if err := item.Complete(finalStageName, actor, notes); err != nil {
			return nil, apperrors.MapDomainError(err)
		}

		if item.CurrentLocationID != "" {
			if err := s.vacateLocation(ctx, item); err != nil {
				return nil, err
			}
		}

		if err := s.persistItem(ctx, item); err != nil {
			return nil, err
		}
	}

	history, err := s.historyRepo.FindByItemID(ctx, item.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item history for archival: %w", err)
	}

	completed, err := s.archiver.Archive(ctx, item, history, finalStageName)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordItemArchived(false)
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordItemCompleted(workflow.WorkflowID)
		s.metrics.RecordItemArchived(true)
	}

	events := item.Events()
	events = append(events, domain.NewItemArchivedEvent(completed, len(history)))
	s.publish(ctx, events)

	s.audit(ctx, actor, "item.completed", "item", item.ItemID,
		fmt.Sprintf("completed at stage %s and archived", item.CurrentStageID),
		map[string]string{"finalStageId": item.CurrentStageID, "workflowId": item.WorkflowID})

	return &AdvanceResult{
		ItemID:    item.ItemID,
		StageID:   item.CurrentStageID,
		Status:    domain.ItemStatusCompleted,
		Completed: true,
		Archived:  true,
	}, nil
}

// PauseItem halts an item without changing its stage
func (s *ItemService) PauseItem(ctx context.Context, cmd PauseItemCommand) error {
	item, err := s.findLiveItem(ctx, cmd.ItemID)
	if err != nil {
		return err
	}

	if err := item.Pause(cmd.Actor, cmd.Reason); err != nil {
		return apperrors.MapDomainError(err)
	}
	if err := s.persistItem(ctx, item); err != nil {
		return err
	}

	s.publish(ctx, item.Events())
	s.audit(ctx, cmd.Actor, "item.paused", "item", item.ItemID, "item paused",
		map[string]string{"reason": cmd.Reason})
	return nil
}

// ResumeItem returns a paused or errored item to active
func (s *ItemService) ResumeItem(ctx context.Context, cmd ResumeItemCommand) error {
	item, err := s.findLiveItem(ctx, cmd.ItemID)
	if err != nil {
		return err
	}

	if err := item.Resume(cmd.Actor); err != nil {
		return apperrors.MapDomainError(err)
	}
	if err := s.persistItem(ctx, item); err != nil {
		return err
	}

	s.publish(ctx, item.Events())
	s.audit(ctx, cmd.Actor, "item.resumed", "item", item.ItemID, "item resumed", nil)
	return nil
}

// MarkItemError puts an item into the error state
func (s *ItemService) MarkItemError(ctx context.Context, cmd MarkItemErrorCommand) error {
	item, err := s.findLiveItem(ctx, cmd.ItemID)
	if err != nil {
		return err
	}

	if err := item.MarkError(cmd.Actor, cmd.Reason); err != nil {
		return apperrors.MapDomainError(err)
	}
	if err := s.persistItem(ctx, item); err != nil {
		return err
	}

	s.publish(ctx, item.Events())
	s.audit(ctx, cmd.Actor, "item.errored", "item", item.ItemID, "item marked errored",
		map[string]string{"reason": cmd.Reason})
	return nil
}

// ReportException opens a defective or flagged exception record against
// an item. The item's status and stage do not change.
func (s *ItemService) ReportException(ctx context.Context, cmd ReportExceptionCommand) (*domain.ItemException, error) {
	item, err := s.findLiveItem(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}

	exception, err := domain.NewItemException(item.ItemID, cmd.Kind, cmd.Reason, cmd.Actor)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}
	if err := item.ApplyException(cmd.Kind, cmd.Actor, cmd.Reason); err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	if err := s.exceptionRepo.Save(ctx, exception); err != nil {
		return nil, fmt.Errorf("failed to save exception: %w", err)
	}
	if err := s.persistItem(ctx, item); err != nil {
		return nil, err
	}

	s.publish(ctx, item.Events())
	s.audit(ctx, cmd.Actor, "item.exception_opened", "item", item.ItemID,
		fmt.Sprintf("%s exception opened", cmd.Kind),
		map[string]string{"kind": string(cmd.Kind), "exceptionId": exception.ExceptionID})

	return exception, nil
}

// ResolveException resolves all open exceptions of a kind on an item and
// clears the corresponding item flag
func (s *ItemService) ResolveException(ctx context.Context, cmd ResolveExceptionCommand) error {
	item, err := s.findLiveItem(ctx, cmd.ItemID)
	if err != nil {
		return err
	}

	open, err := s.exceptionRepo.FindOpenByItem(ctx, item.ItemID, cmd.Kind)
	if err != nil {
		return fmt.Errorf("failed to load open exceptions: %w", err)
	}
	if len(open) == 0 {
		return apperrors.ErrNotFound("open exception").
			WithDetail("itemId", item.ItemID).
			WithDetail("kind", string(cmd.Kind))
	}

	for _, exception := range open {
		if err := exception.Resolve(cmd.Actor, cmd.Resolution); err != nil {
			return apperrors.MapDomainError(err)
		}
		if err := s.exceptionRepo.Update(ctx, exception); err != nil {
			return fmt.Errorf("failed to update exception: %w", err)
		}
	}

	if err := item.ResolveException(cmd.Kind, cmd.Actor, cmd.Resolution); err != nil {
		return apperrors.MapDomainError(err)
	}
	if err := s.persistItem(ctx, item); err != nil {
		return err
	}

	s.publish(ctx, item.Events())
	s.audit(ctx, cmd.Actor, "item.exception_resolved", "item", item.ItemID,
		fmt.Sprintf("%s exceptions resolved", cmd.Kind),
		map[string]string{"kind": string(cmd.Kind), "resolved": fmt.Sprintf("%d", len(open))})

	return nil
}

// GetItem retrieves a live item by its business ID
func (s *ItemService) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	return s.findLiveItem(ctx, itemID)
}

// GetItems retrieves live items matching the filter
func (s *ItemService) GetItems(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	return s.itemRepo.FindActive(ctx, filter)
}

// GetItemHistory retrieves an item's history ordered by sequence. Live
// items are checked first, then the archive.
func (s *ItemService) GetItemHistory(ctx context.Context, itemID string) ([]domain.ItemHistoryEntry, error) {
	history, err := s.historyRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		return history, nil
	}

	archived, err := s.completedRepo.FindHistoryByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if len(archived) == 0 {
		return nil, apperrors.ErrNotFoundWithID("item history", itemID)
	}

	history = make([]domain.ItemHistoryEntry, 0, len(archived))
	for _, e := range archived {
		history = append(history, domain.ItemHistoryEntry{
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
	return history, nil
}

// GetItemExceptions retrieves all exception records for an item
func (s *ItemService) GetItemExceptions(ctx context.Context, itemID string) ([]*domain.ItemException, error) {
	return s.exceptionRepo.FindByItemID(ctx, itemID)
}

// GetCompletedItem retrieves an archived item by the original item ID
func (s *ItemService) GetCompletedItem(ctx context.Context, itemID string) (*domain.CompletedItem, error) {
	return s.completedRepo.FindByItemID(ctx, itemID)
}

// GetCompletedItems retrieves archived items matching the filter
func (s *ItemService) GetCompletedItems(ctx context.Context, filter domain.CompletedItemFilter) ([]*domain.CompletedItem, error) {
	return s.completedRepo.Find(ctx, filter)
}

// findLiveItem loads a live item; a miss against an archived item maps
// to the already-completed error rather than not-found
func (s *ItemService) findLiveItem(ctx context.Context, itemID string) (*domain.Item, error) {
	item, err := s.itemRepo.FindByItemID(ctx, itemID)
	if err == nil {
		return item, nil
	}

	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.CodeNotFound {
		if _, archErr := s.completedRepo.FindByItemID(ctx, itemID); archErr == nil {
			return nil, apperrors.ErrAlreadyCompleted(itemID)
		}
	}
	return nil, err
}

// persistItem writes the item update and its pending history entries
func (s *ItemService) persistItem(ctx context.Context, item *domain.Item) error {
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return err
	}
	if entries := item.PendingHistory(); len(entries) > 0 {
		if err := s.historyRepo.Append(ctx, entries); err != nil {
			return fmt.Errorf("failed to append item history: %w", err)
		}
	}
	return nil
}

// moveToLocation occupies the target location, releases the previous one
// and updates the item's location pointer. It reports whether a new
// occupancy was taken so callers can release it again when the item
// write that follows fails.
func (s *ItemService) moveToLocation(ctx context.Context, item *domain.Item, locationID string) (bool, error) {
	if item.CurrentLocationID == locationID {
		return false, nil
	}

	location, err := s.locationRepo.Occupy(ctx, locationID)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.CodeCapacityExceeded {
			s.rejectTransition("capacity_exceeded")
		}
		return false, err
	}
	if s.metrics != nil {
		s.metrics.SetLocationOccupancy(location.LocationID, location.CurrentOccupancy)
	}

	if item.CurrentLocationID != "" {
		previous := item.CurrentLocationID
		item.ClearLocation()
		if released, err := s.locationRepo.Release(ctx, previous); err != nil {
			s.logger.WithError(err).Warn("failed to release previous location",
				"itemId", item.ItemID, "locationId", previous)
		} else if s.metrics != nil {
			s.metrics.SetLocationOccupancy(released.LocationID, released.CurrentOccupancy)
		}
	}

	item.SetLocation(locationID)
	return true, nil
}

// releaseLocation undoes an occupancy taken for an item write that then
// failed, so the slot does not leak
func (s *ItemService) releaseLocation(ctx context.Context, locationID string) {
	released, err := s.locationRepo.Release(ctx, locationID)
	if err != nil {
		s.logger.WithError(err).Warn("failed to release location after failed write",
			"locationId", locationID)
		return
	}
	if s.metrics != nil {
		s.metrics.SetLocationOccupancy(released.LocationID, released.CurrentOccupancy)
	}
}

// vacateLocation releases the item's current location and clears the
// pointer
func (s *ItemService) vacateLocation(ctx context.Context, item *domain.Item) error {
	locationID := item.CurrentLocationID
	if locationID == "" {
		return nil
	}

	released, err := s.locationRepo.Release(ctx, locationID)
	if err != nil {
		s.logger.WithError(err).Warn("failed to release location",
			"itemId", item.ItemID, "locationId", locationID)
	} else if s.metrics != nil {
		s.metrics.SetLocationOccupancy(released.LocationID, released.CurrentOccupancy)
	}

	item.ClearLocation()
	return nil
}

func (s *ItemService) publish(ctx context.Context, events []domain.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events); err != nil {
		s.logger.WithError(err).Warn("failed to publish domain events")
	}
}

// audit appends an audit event; failures are logged, never surfaced
func (s *ItemService) audit(ctx context.Context, actor, action, entityType, entityID, description string, metadata map[string]string) {
	if s.auditRepo == nil {
		return
	}
	event := domain.NewAuditEvent(actor, action, entityType, entityID, description, metadata)
	if err := s.auditRepo.Append(ctx, event); err != nil {
		s.logger.WithError(err).Warn("failed to append audit event",
			"action", action, "entityId", entityID)
	}
}

func (s *ItemService) rejectTransition(reason string) {
	if s.metrics != nil {
		s.metrics.RecordTransitionRejected(reason)
	}
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
