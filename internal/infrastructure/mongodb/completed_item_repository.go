package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	apperrors "github.com/youcodecowboy/groovy-demo-sub007/pkg/errors"
)

// CompletedItemRepository implements domain.CompletedItemRepository
// using MongoDB. It only reads; writes go through the archiver's
// transaction.
type CompletedItemRepository struct {
	collection *mongo.Collection
	history    *mongo.Collection
}

// NewCompletedItemRepository creates a new MongoDB completed item
// repository
func NewCompletedItemRepository(db *mongo.Database) *CompletedItemRepository {
	collection := db.Collection("completed_items")
	history := db.Collection("completed_item_history")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "itemId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "workflowId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "completedAt", Value: -1}},
		},
	})
	history.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "itemId", Value: 1},
				{Key: "sequence", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	})

	return &CompletedItemRepository{
		collection: collection,
		history:    history,
	}
}

// FindByItemID retrieves an archived item by the original business ID
func (r *CompletedItemRepository) FindByItemID(ctx context.Context, itemID string) (*domain.CompletedItem, error) {
	var item domain.CompletedItem
	err := r.collection.FindOne(ctx, bson.M{"itemId": itemID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFoundWithID("completed item", itemID)
		}
		return nil, err
	}
	return &item, nil
}

// Find retrieves archived items matching the filter
func (r *CompletedItemRepository) Find(ctx context.Context, filter domain.CompletedItemFilter) ([]*domain.CompletedItem, error) {
	query := bson.M{}
	if filter.WorkflowID != "" {
		query["workflowId"] = filter.WorkflowID
	}
	if filter.FinalStageID != "" {
		query["finalStageId"] = filter.FinalStageID
	}
	if filter.AssignedTo != "" {
		query["assignedTo"] = filter.AssignedTo
	}
	if filter.CompletedFrom != nil || filter.CompletedTo != nil {
		window := bson.M{}
		if filter.CompletedFrom != nil {
			window["$gte"] = *filter.CompletedFrom
		}
		if filter.CompletedTo != nil {
			window["$lte"] = *filter.CompletedTo
		}
		query["completedAt"] = window
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "completedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*domain.CompletedItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FindHistoryByItemID retrieves archived history ordered by sequence
func (r *CompletedItemRepository) FindHistoryByItemID(ctx context.Context, itemID string) ([]domain.CompletedItemHistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})
	cursor, err := r.history.Find(ctx, bson.M{"itemId": itemID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.CompletedItemHistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the archived item count
func (r *CompletedItemRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
