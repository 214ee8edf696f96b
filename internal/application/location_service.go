package application

import (
	"context"
	"fmt"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	apperrors "github.com/youcodecowboy/groovy-demo-sub007/pkg/errors"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/metrics"
)

// LocationService manages the location registry and item placement.
// Occupancy changes go through the repository's conditional updates so a
// full location never over-admits under concurrent placements.
type LocationService struct {
	locationRepo domain.LocationRepository
	itemRepo     domain.ItemRepository
	auditRepo    domain.AuditRepository
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewLocationService creates a new location service
func NewLocationService(locationRepo domain.LocationRepository, itemRepo domain.ItemRepository, auditRepo domain.AuditRepository, m *metrics.Metrics, logger *logging.Logger) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		itemRepo:     itemRepo,
		auditRepo:    auditRepo,
		metrics:      m,
		logger:       logger,
	}
}

// CreateLocation creates an active, empty location
func (s *LocationService) CreateLocation(ctx context.Context, cmd CreateLocationCommand) (*domain.Location, error) {
	location, err := domain.NewLocation(cmd.Name, cmd.Type, cmd.Capacity)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}
	if cmd.AssignedStageID != "" {
		location.AssignStage(cmd.AssignedStageID)
	}

	if err := s.locationRepo.Save(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to save location: %w", err)
	}

	s.audit(ctx, cmd.Actor, "location.created", location.LocationID,
		fmt.Sprintf("location %q created", location.Name))

	return location, nil
}

// GetLocation retrieves a location by its business ID
func (s *LocationService) GetLocation(ctx context.Context, locationID string) (*domain.Location, error) {
	return s.locationRepo.FindByLocationID(ctx, locationID)
}

// ListLocations retrieves locations, optionally only active ones
func (s *LocationService) ListLocations(ctx context.Context, activeOnly bool) ([]*domain.Location, error) {
	return s.locationRepo.FindAll(ctx, activeOnly)
}

// AssignStage associates a location with a workflow stage
func (s *LocationService) AssignStage(ctx context.Context, locationID, stageID, actor string) (*domain.Location, error) {
	location, err := s.locationRepo.FindByLocationID(ctx, locationID)
	if err != nil {
		return nil, err
	}

	location.AssignStage(stageID)
	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}

	s.audit(ctx, actor, "location.stage_assigned", location.LocationID,
		fmt.Sprintf("assigned to stage %s", stageID))

	return location, nil
}

// SetActive activates or deactivates a location. Deactivation stops new
// placements; current occupants stay counted.
func (s *LocationService) SetActive(ctx context.Context, locationID string, active bool, actor string) (*domain.Location, error) {
	location, err := s.locationRepo.FindByLocationID(ctx, locationID)
	if err != nil {
		return nil, err
	}

	if active {
		location.Activate()
	} else {
		location.Deactivate()
	}
	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}

	action := "location.deactivated"
	if active {
		action = "location.activated"
	}
	s.audit(ctx, actor, action, location.LocationID, "")

	return location, nil
}

// PlaceItem puts a live item into a location, releasing its previous
// location if it had one
func (s *LocationService) PlaceItem(ctx context.Context, cmd PlaceItemCommand) (*domain.Location, error) {
	item, err := s.itemRepo.FindByItemID(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status == domain.ItemStatusCompleted {
		return nil, apperrors.ErrAlreadyCompleted(item.ItemID)
	}
	if item.CurrentLocationID == cmd.LocationID {
		return s.locationRepo.FindByLocationID(ctx, cmd.LocationID)
	}

	location, err := s.locationRepo.Occupy(ctx, cmd.LocationID)
	if err != nil {
		return nil, err
	}
	s.setOccupancy(location)

	if previous := item.CurrentLocationID; previous != "" {
		if released, err := s.locationRepo.Release(ctx, previous); err != nil {
			s.logger.WithError(err).Warn("failed to release previous location",
				"itemId", item.ItemID, "locationId", previous)
		} else {
			s.setOccupancy(released)
		}
	}

	item.SetLocation(cmd.LocationID)
	if err := s.itemRepo.Update(ctx, item); err != nil {
		// Undo the occupancy increment so the count stays consistent
		if released, relErr := s.locationRepo.Release(ctx, cmd.LocationID); relErr == nil {
			s.setOccupancy(released)
		}
		return nil, err
	}

	s.audit(ctx, cmd.Actor, "location.item_placed", location.LocationID,
		fmt.Sprintf("item %s placed", item.ItemID))

	return location, nil
}

// RemoveItem takes a live item out of its current location
func (s *LocationService) RemoveItem(ctx context.Context, cmd RemoveItemCommand) error {
	item, err := s.itemRepo.FindByItemID(ctx, cmd.ItemID)
	if err != nil {
		return err
	}
	if item.CurrentLocationID == "" {
		return nil
	}

	locationID := item.CurrentLocationID
	item.ClearLocation()
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return err
	}

	if released, err := s.locationRepo.Release(ctx, locationID); err != nil {
		s.logger.WithError(err).Warn("failed to release location",
			"itemId", item.ItemID, "locationId", locationID)
	} else {
		s.setOccupancy(released)
	}

	s.audit(ctx, cmd.Actor, "location.item_removed", locationID,
		fmt.Sprintf("item %s removed", item.ItemID))

	return nil
}

func (s *LocationService) setOccupancy(location *domain.Location) {
	if s.metrics != nil && location != nil {
		s.metrics.SetLocationOccupancy(location.LocationID, location.CurrentOccupancy)
	}
}

func (s *LocationService) audit(ctx context.Context, actor, action, locationID, description string) {
	if s.auditRepo == nil {
		return
	}
	event := domain.NewAuditEvent(actor, action, "location", locationID, description, nil)
	if err := s.auditRepo.Append(ctx, event); err != nil {
		s.logger.WithError(err).Warn("failed to append audit event",
			"action", action, "entityId", locationID)
	}
}
