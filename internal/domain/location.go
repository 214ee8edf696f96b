package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationType classifies a physical or logical location
type LocationType string

const (
	LocationTypeBin   LocationType = "bin"
	LocationTypeShelf LocationType = "shelf"
	LocationTypeRack  LocationType = "rack"
	LocationTypeArea  LocationType = "area"
	LocationTypeZone  LocationType = "zone"
)

// IsValid checks if the type is a valid LocationType
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeBin, LocationTypeShelf, LocationTypeRack, LocationTypeArea, LocationTypeZone:
		return true
	}
	return false
}

// Location holds a place items occupy while moving through stages. When
// Capacity is set, CurrentOccupancy never exceeds it; occupancy changes
// only through the location registry's conditional updates.
type Location struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LocationID       string             `bson:"locationId" json:"locationId"`
	Name             string             `bson:"name" json:"name"`
	Type             LocationType       `bson:"type" json:"type"`
	Capacity         *int               `bson:"capacity,omitempty" json:"capacity,omitempty"`
	CurrentOccupancy int                `bson:"currentOccupancy" json:"currentOccupancy"`
	AssignedStageID  string             `bson:"assignedStageId,omitempty" json:"assignedStageId,omitempty"`
	IsActive         bool               `bson:"isActive" json:"isActive"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewLocation creates an active, empty location
func NewLocation(name string, locType LocationType, capacity *int) (*Location, error) {
	if name == "" {
		return nil, fmt.Errorf("location name is required")
	}
	if !locType.IsValid() {
		return nil, fmt.Errorf("invalid location type %s", locType)
	}
	if capacity != nil && *capacity < 1 {
		return nil, fmt.Errorf("location capacity must be at least 1")
	}

	now := time.Now()
	return &Location{
		LocationID:       "LOC-" + uuid.New().String(),
		Name:             name,
		Type:             locType,
		Capacity:         capacity,
		CurrentOccupancy: 0,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// HasCapacity reports whether the location can accept one more item
func (l *Location) HasCapacity() bool {
	if l.Capacity == nil {
		return true
	}
	return l.CurrentOccupancy < *l.Capacity
}

// AssignStage associates the location with a workflow stage
func (l *Location) AssignStage(stageID string) {
	l.AssignedStageID = stageID
	l.UpdatedAt = time.Now()
}

// Activate marks the location as accepting items
func (l *Location) Activate() {
	l.IsActive = true
	l.UpdatedAt = time.Now()
}

// Deactivate stops new items entering; current occupants stay counted
func (l *Location) Deactivate() {
	l.IsActive = false
	l.UpdatedAt = time.Now()
}
