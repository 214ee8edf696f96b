package domain

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditEvent is an immutable, append-only record of a state-affecting
// action. Actor may be empty for system-initiated actions.
type AuditEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID     string             `bson:"eventId" json:"eventId"`
	Actor       string             `bson:"actor,omitempty" json:"actor,omitempty"`
	Action      string             `bson:"action" json:"action"`
	EntityType  string             `bson:"entityType" json:"entityType"`
	EntityID    string             `bson:"entityId" json:"entityId"`
	Description string             `bson:"description" json:"description"`
	Metadata    map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewAuditEvent creates an audit event stamped now
func NewAuditEvent(actor, action, entityType, entityID, description string, metadata map[string]string) *AuditEvent {
	return &AuditEvent{
		EventID:     uuid.New().String(),
		Actor:       actor,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}
}

// AuditQuery holds the filters for querying the audit log
type AuditQuery struct {
	Actor      string
	EntityType string
	EntityID   string
	Action     string
	From       *time.Time
	To         *time.Time
	Limit      int64
}

// AuditStats holds aggregate counts over the audit log
type AuditStats struct {
	Total       int64            `json:"total"`
	ByAction    map[string]int64 `json:"byAction"`
	ByEntity    map[string]int64 `json:"byEntityType"`
	ByActor     map[string]int64 `json:"byActor"`
	RecentCount int64            `json:"recentCount"`
}
