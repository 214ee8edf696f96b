package application

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	apperrors "github.com/youcodecowboy/groovy-demo-sub007/pkg/errors"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "test",
		Output:      io.Discard,
	})
}

// MockWorkflowRepository is an in-memory WorkflowRepository for testing
type MockWorkflowRepository struct {
	workflows map[string]*domain.Workflow
	refCounts map[string]int64
}

func NewMockWorkflowRepository() *MockWorkflowRepository {
	return &MockWorkflowRepository{
		workflows: make(map[string]*domain.Workflow),
		refCounts: make(map[string]int64),
	}
}

func (m *MockWorkflowRepository) Save(ctx context.Context, workflow *domain.Workflow) error {
	m.workflows[workflow.WorkflowID] = workflow
	return nil
}

func (m *MockWorkflowRepository) FindByWorkflowID(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	workflow, ok := m.workflows[workflowID]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("workflow", workflowID)
	}
	return workflow, nil
}

func (m *MockWorkflowRepository) FindAll(ctx context.Context, activeOnly bool) ([]*domain.Workflow, error) {
	var result []*domain.Workflow
	for _, workflow := range m.workflows {
		if activeOnly && !workflow.IsActive {
			continue
		}
		result = append(result, workflow)
	}
	return result, nil
}

func (m *MockWorkflowRepository) Update(ctx context.Context, workflow *domain.Workflow) error {
	if _, ok := m.workflows[workflow.WorkflowID]; !ok {
		return apperrors.ErrNotFoundWithID("workflow", workflow.WorkflowID)
	}
	m.workflows[workflow.WorkflowID] = workflow
	return nil
}

func (m *MockWorkflowRepository) CountItemsReferencing(ctx context.Context, workflowID string) (int64, error) {
	return m.refCounts[workflowID], nil
}

// MockItemRepository is an in-memory ItemRepository for testing
type MockItemRepository struct {
	items     map[string]*domain.Item
	updateErr error
}

func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{items: make(map[string]*domain.Item)}
}

func (m *MockItemRepository) Save(ctx context.Context, item *domain.Item) error {
	m.items[item.ItemID] = item
	return nil
}

func (m *MockItemRepository) FindByItemID(ctx context.Context, itemID string) (*domain.Item, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("item", itemID)
	}
	return item, nil
}

func (m *MockItemRepository) FindActive(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	var result []*domain.Item
	for _, item := range m.items {
		if filter.WorkflowID != "" && item.WorkflowID != filter.WorkflowID {
			continue
		}
		if filter.StageID != "" && item.CurrentStageID != filter.StageID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (m *MockItemRepository) Update(ctx context.Context, item *domain.Item) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[item.ItemID]; !ok {
		return apperrors.ErrNotFoundWithID("item", item.ItemID)
	}
	item.Version++
	m.items[item.ItemID] = item
	return nil
}

func (m *MockItemRepository) Delete(ctx context.Context, itemID string) error {
	delete(m.items, itemID)
	return nil
}

func (m *MockItemRepository) CountByWorkflow(ctx context.Context, workflowID string) (int64, error) {
	var count int64
	for _, item := range m.items {
		if item.WorkflowID == workflowID {
			count++
		}
	}
	return count, nil
}

// MockItemHistoryRepository is an in-memory ItemHistoryRepository
type MockItemHistoryRepository struct {
	entries map[string][]domain.ItemHistoryEntry
}

func NewMockItemHistoryRepository() *MockItemHistoryRepository {
	return &MockItemHistoryRepository{entries: make(map[string][]domain.ItemHistoryEntry)}
}

func (m *MockItemHistoryRepository) Append(ctx context.Context, entries []domain.ItemHistoryEntry) error {
	for _, entry := range entries {
		m.entries[entry.ItemID] = append(m.entries[entry.ItemID], entry)
	}
	return nil
}

func (m *MockItemHistoryRepository) FindByItemID(ctx context.Context, itemID string) ([]domain.ItemHistoryEntry, error) {
	entries := append([]domain.ItemHistoryEntry(nil), m.entries[itemID]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
	return entries, nil
}

func (m *MockItemHistoryRepository) DeleteByItemID(ctx context.Context, itemID string) error {
	delete(m.entries, itemID)
	return nil
}

// MockCompletedItemRepository is an in-memory CompletedItemRepository
type MockCompletedItemRepository struct {
	items   map[string]*domain.CompletedItem
	history map[string][]domain.CompletedItemHistoryEntry
}

func NewMockCompletedItemRepository() *MockCompletedItemRepository {
	return &MockCompletedItemRepository{
		items:   make(map[string]*domain.CompletedItem),
		history: make(map[string][]domain.CompletedItemHistoryEntry),
	}
}

func (m *MockCompletedItemRepository) FindByItemID(ctx context.Context, itemID string) (*domain.CompletedItem, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("completed item", itemID)
	}
	return item, nil
}

func (m *MockCompletedItemRepository) Find(ctx context.Context, filter domain.CompletedItemFilter) ([]*domain.CompletedItem, error) {
	var result []*domain.CompletedItem
	for _, item := range m.items {
		if filter.WorkflowID != "" && item.WorkflowID != filter.WorkflowID {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (m *MockCompletedItemRepository) FindHistoryByItemID(ctx context.Context, itemID string) ([]domain.CompletedItemHistoryEntry, error) {
	entries := append([]domain.CompletedItemHistoryEntry(nil), m.history[itemID]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
	return entries, nil
}

func (m *MockCompletedItemRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

// MockArchiver moves an item between the in-memory live and archived
// stores the way the transactional archiver does against the database
type MockArchiver struct {
	itemRepo      *MockItemRepository
	historyRepo   *MockItemHistoryRepository
	completedRepo *MockCompletedItemRepository
	archiveErr    error
}

func NewMockArchiver(itemRepo *MockItemRepository, historyRepo *MockItemHistoryRepository, completedRepo *MockCompletedItemRepository) *MockArchiver {
	return &MockArchiver{
		itemRepo:      itemRepo,
		historyRepo:   historyRepo,
		completedRepo: completedRepo,
	}
}

func (m *MockArchiver) Archive(ctx context.Context, item *domain.Item, history []domain.ItemHistoryEntry, finalStageName string) (*domain.CompletedItem, error) {
	if m.archiveErr != nil {
		return nil, m.archiveErr
	}

	completed := domain.NewCompletedItem(item, finalStageName)
	m.completedRepo.items[item.ItemID] = completed
	m.completedRepo.history[item.ItemID] = domain.ArchiveHistory(history)

	delete(m.itemRepo.items, item.ItemID)
	delete(m.historyRepo.entries, item.ItemID)

	return completed, nil
}

// MockExceptionRepository is an in-memory ItemExceptionRepository
type MockExceptionRepository struct {
	exceptions map[string]*domain.ItemException
}

func NewMockExceptionRepository() *MockExceptionRepository {
	return &MockExceptionRepository{exceptions: make(map[string]*domain.ItemException)}
}

func (m *MockExceptionRepository) Save(ctx context.Context, exception *domain.ItemException) error {
	m.exceptions[exception.ExceptionID] = exception
	return nil
}

func (m *MockExceptionRepository) FindByExceptionID(ctx context.Context, exceptionID string) (*domain.ItemException, error) {
	exception, ok := m.exceptions[exceptionID]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("exception", exceptionID)
	}
	return exception, nil
}

func (m *MockExceptionRepository) FindByItemID(ctx context.Context, itemID string) ([]*domain.ItemException, error) {
	var result []*domain.ItemException
	for _, exception := range m.exceptions {
		if exception.ItemID == itemID {
			result = append(result, exception)
		}
	}
	return result, nil
}

func (m *MockExceptionRepository) FindOpenByItem(ctx context.Context, itemID string, kind domain.ExceptionKind) ([]*domain.ItemException, error) {
	var result []*domain.ItemException
	for _, exception := range m.exceptions {
		if exception.ItemID == itemID && exception.Kind == kind && !exception.IsResolved() {
			result = append(result, exception)
		}
	}
	return result, nil
}

func (m *MockExceptionRepository) Update(ctx context.Context, exception *domain.ItemException) error {
	m.exceptions[exception.ExceptionID] = exception
	return nil
}

// MockLocationRepository is an in-memory LocationRepository whose Occupy
// and Release behave like the conditional database updates
type MockLocationRepository struct {
	locations map[string]*domain.Location
}

func NewMockLocationRepository() *MockLocationRepository {
	return &MockLocationRepository{locations: make(map[string]*domain.Location)}
}

func (m *MockLocationRepository) Save(ctx context.Context, location *domain.Location) error {
	m.locations[location.LocationID] = location
	return nil
}

func (m *MockLocationRepository) FindByLocationID(ctx context.Context, locationID string) (*domain.Location, error) {
	location, ok := m.locations[locationID]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("location", locationID)
	}
	return location, nil
}

func (m *MockLocationRepository) FindAll(ctx context.Context, activeOnly bool) ([]*domain.Location, error) {
	var result []*domain.Location
	for _, location := range m.locations {
		if activeOnly && !location.IsActive {
			continue
		}
		result = append(result, location)
	}
	return result, nil
}

func (m *MockLocationRepository) Update(ctx context.Context, location *domain.Location) error {
	if _, ok := m.locations[location.LocationID]; !ok {
		return apperrors.ErrNotFoundWithID("location", location.LocationID)
	}
	m.locations[location.LocationID] = location
	return nil
}

func (m *MockLocationRepository) Occupy(ctx context.Context, locationID string) (*domain.Location, error) {
	location, ok := m.locations[locationID]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("location", locationID)
	}
	if !location.IsActive || !location.HasCapacity() {
		return nil, apperrors.ErrCapacityExceeded(locationID)
	}
	location.CurrentOccupancy++
	location.UpdatedAt = time.Now()
	return location, nil
}

func (m *MockLocationRepository) Release(ctx context.Context, locationID string) (*domain.Location, error) {
	location, ok := m.locations[locationID]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("location", locationID)
	}
	if location.CurrentOccupancy > 0 {
		location.CurrentOccupancy--
	}
	location.UpdatedAt = time.Now()
	return location, nil
}

// MockAuditRepository is an in-memory AuditRepository
type MockAuditRepository struct {
	events []*domain.AuditEvent
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Append(ctx context.Context, event *domain.AuditEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *MockAuditRepository) Query(ctx context.Context, query domain.AuditQuery) ([]*domain.AuditEvent, error) {
	var result []*domain.AuditEvent
	for _, event := range m.events {
		if query.Actor != "" && event.Actor != query.Actor {
			continue
		}
		if query.EntityType != "" && event.EntityType != query.EntityType {
			continue
		}
		if query.EntityID != "" && event.EntityID != query.EntityID {
			continue
		}
		if query.Action != "" && event.Action != query.Action {
			continue
		}
		result = append(result, event)
	}
	return result, nil
}

func (m *MockAuditRepository) Stats(ctx context.Context, recentWindow time.Duration) (*domain.AuditStats, error) {
	stats := &domain.AuditStats{
		Total:    int64(len(m.events)),
		ByAction: make(map[string]int64),
		ByEntity: make(map[string]int64),
		ByActor:  make(map[string]int64),
	}
	cutoff := time.Now().Add(-recentWindow)
	for _, event := range m.events {
		stats.ByAction[event.Action]++
		stats.ByEntity[event.EntityType]++
		if event.Actor != "" {
			stats.ByActor[event.Actor]++
		}
		if event.CreatedAt.After(cutoff) {
			stats.RecentCount++
		}
	}
	return stats, nil
}

// actionsFor returns the audit actions recorded against an entity
func (m *MockAuditRepository) actionsFor(entityID string) []string {
	var actions []string
	for _, event := range m.events {
		if event.EntityID == entityID {
			actions = append(actions, event.Action)
		}
	}
	return actions
}

// MockPublisher captures published domain events
type MockPublisher struct {
	events []domain.DomainEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, events []domain.DomainEvent) error {
	m.events = append(m.events, events...)
	return nil
}

func (m *MockPublisher) eventTypes() []string {
	var types []string
	for _, event := range m.events {
		types = append(types, event.EventType())
	}
	return types
}
