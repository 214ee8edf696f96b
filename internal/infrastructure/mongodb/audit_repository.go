package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
)

// AuditRepository implements domain.AuditRepository using MongoDB. The
// collection is append-only: there are no update or delete operations.
type AuditRepository struct {
	collection *mongo.Collection
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	collection := db.Collection("audit_events")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "entityType", Value: 1},
				{Key: "entityId", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "actor", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}
	collection.Indexes().CreateMany(ctx, indexes)

	return &AuditRepository{collection: collection}
}

// Append persists an audit event
func (r *AuditRepository) Append(ctx context.Context, event *domain.AuditEvent) error {
	result, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return err
	}
	event.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// Query retrieves events matching the filters, newest first
func (r *AuditRepository) Query(ctx context.Context, query domain.AuditQuery) ([]*domain.AuditEvent, error) {
	filter := bson.M{}
	if query.Actor != "" {
		filter["actor"] = query.Actor
	}
	if query.EntityType != "" {
		filter["entityType"] = query.EntityType
	}
	if query.EntityID != "" {
		filter["entityId"] = query.EntityID
	}
	if query.Action != "" {
		filter["action"] = query.Action
	}
	if query.From != nil || query.To != nil {
		window := bson.M{}
		if query.From != nil {
			window["$gte"] = *query.From
		}
		if query.To != nil {
			window["$lte"] = *query.To
		}
		filter["createdAt"] = window
	}

	limit := query.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*domain.AuditEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Stats computes aggregate counts over the audit log in one pass
func (r *AuditRepository) Stats(ctx context.Context, recentWindow time.Duration) (*domain.AuditStats, error) {
	cutoff := time.Now().Add(-recentWindow)

	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"total": []bson.M{
				{"$count": "count"},
			},
			"byAction": []bson.M{
				{"$group": bson.M{"_id": "$action", "count": bson.M{"$sum": 1}}},
			},
			"byEntity": []bson.M{
				{"$group": bson.M{"_id": "$entityType", "count": bson.M{"$sum": 1}}},
			},
			"byActor": []bson.M{
				{"$match": bson.M{"actor": bson.M{"$ne": ""}}},
				{"$group": bson.M{"_id": "$actor", "count": bson.M{"$sum": 1}}},
			},
			"recent": []bson.M{
				{"$match": bson.M{"createdAt": bson.M{"$gte": cutoff}}},
				{"$count": "count"},
			},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total    []countDoc   `bson:"total"`
		ByAction []groupCount `bson:"byAction"`
		ByEntity []groupCount `bson:"byEntity"`
		ByActor  []groupCount `bson:"byActor"`
		Recent   []countDoc   `bson:"recent"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	stats := &domain.AuditStats{
		ByAction: make(map[string]int64),
		ByEntity: make(map[string]int64),
		ByActor:  make(map[string]int64),
	}
	if len(results) == 0 {
		return stats, nil
	}

	facets := results[0]
	if len(facets.Total) > 0 {
		stats.Total = facets.Total[0].Count
	}
	if len(facets.Recent) > 0 {
		stats.RecentCount = facets.Recent[0].Count
	}
	for _, g := range facets.ByAction {
		stats.ByAction[g.ID] = g.Count
	}
	for _, g := range facets.ByEntity {
		stats.ByEntity[g.ID] = g.Count
	}
	for _, g := range facets.ByActor {
		stats.ByActor[g.ID] = g.Count
	}
	return stats, nil
}

type countDoc struct {
	Count int64 `bson:"count"`
}

type groupCount struct {
	ID    string `bson:"_id"`
	Count int64  `bson:"count"`
}
