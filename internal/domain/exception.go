package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExceptionKind classifies an item exception record
type ExceptionKind string

const (
	ExceptionKindDefective ExceptionKind = "defective"
	ExceptionKindFlagged   ExceptionKind = "flagged"
)

// IsValid checks if the kind is a valid ExceptionKind
func (k ExceptionKind) IsValid() bool {
	return k == ExceptionKindDefective || k == ExceptionKindFlagged
}

// ItemException is a tagged exception record attached to an item. Each
// flag/unflag cycle is its own record so resolution never erases the
// reason; records survive item archival.
type ItemException struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExceptionID string             `bson:"exceptionId" json:"exceptionId"`
	ItemID      string             `bson:"itemId" json:"itemId"`
	Kind        ExceptionKind      `bson:"kind" json:"kind"`
	Reason      string             `bson:"reason" json:"reason"`
	ReportedBy  string             `bson:"reportedBy" json:"reportedBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	ResolvedAt  *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	ResolvedBy  string             `bson:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	Resolution  string             `bson:"resolution,omitempty" json:"resolution,omitempty"`
}

// NewItemException opens an exception record against an item
func NewItemException(itemID string, kind ExceptionKind, reason, reportedBy string) (*ItemException, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid exception kind %s", kind)
	}
	if reason == "" {
		return nil, fmt.Errorf("exception reason is required")
	}

	return &ItemException{
		ExceptionID: uuid.New().String(),
		ItemID:      itemID,
		Kind:        kind,
		Reason:      reason,
		ReportedBy:  reportedBy,
		CreatedAt:   time.Now(),
	}, nil
}

// IsResolved reports whether the exception has been closed
func (e *ItemException) IsResolved() bool {
	return e.ResolvedAt != nil
}

// Resolve closes the exception with a resolution note
func (e *ItemException) Resolve(resolvedBy, resolution string) error {
	if e.IsResolved() {
		return fmt.Errorf("exception %s is already resolved", e.ExceptionID)
	}

	now := time.Now()
	e.ResolvedAt = &now
	e.ResolvedBy = resolvedBy
	e.Resolution = resolution
	return nil
}
