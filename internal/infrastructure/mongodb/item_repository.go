package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	apperrors "github.com/youcodecowboy/groovy-demo-sub007/pkg/errors"
)

// ItemRepository implements domain.ItemRepository using MongoDB.
// Updates are conditional on the version the item was read at.
type ItemRepository struct {
	collection *mongo.Collection
}

// NewItemRepository creates a new MongoDB item repository
func NewItemRepository(db *mongo.Database) *ItemRepository {
	collection := db.Collection("items")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "itemId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "workflowId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "currentStageId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "currentLocationId", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "workflowId", Value: 1},
				{Key: "currentStageId", Value: 1},
				{Key: "status", Value: 1},
			},
		},
	}
	collection.Indexes().CreateMany(ctx, indexes)

	return &ItemRepository{collection: collection}
}

// Save persists a new item
func (r *ItemRepository) Save(ctx context.Context, item *domain.Item) error {
	item.UpdatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return err
	}
	item.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByItemID retrieves a live item by its business ID
func (r *ItemRepository) FindByItemID(ctx context.Context, itemID string) (*domain.Item, error) {
	var item domain.Item
	err := r.collection.FindOne(ctx, bson.M{"itemId": itemID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFoundWithID("item", itemID)
		}
		return nil, err
	}
	return &item, nil
}

// FindActive retrieves live items matching the filter
func (r *ItemRepository) FindActive(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	query := bson.M{}
	if filter.WorkflowID != "" {
		query["workflowId"] = filter.WorkflowID
	}
	if filter.StageID != "" {
		query["currentStageId"] = filter.StageID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.AssignedTo != "" {
		query["assignedTo"] = filter.AssignedTo
	}
	if filter.LocationID != "" {
		query["currentLocationId"] = filter.LocationID
	}
	if filter.IsDefective != nil {
		query["isDefective"] = *filter.IsDefective
	}
	if filter.IsFlagged != nil {
		query["isFlagged"] = *filter.IsFlagged
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "startedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*domain.Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update conditionally replaces the item at the version it was read. A
// version mismatch means a concurrent writer won; the caller gets a
// conflict and must re-read.
func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	expected := item.Version
	item.Version = expected + 1
	item.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{
		"itemId":  item.ItemID,
		"version": expected,
	}, item)
	if err != nil {
		item.Version = expected
		return err
	}
	if result.MatchedCount == 0 {
		item.Version = expected

		count, countErr := r.collection.CountDocuments(ctx, bson.M{"itemId": item.ItemID})
		if countErr == nil && count == 0 {
			return apperrors.ErrNotFoundWithID("item", item.ItemID)
		}
		return apperrors.ErrConflict("item was modified concurrently").
			WithDetail("itemId", item.ItemID)
	}
	return nil
}

// Delete removes a live item
func (r *ItemRepository) Delete(ctx context.Context, itemID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"itemId": itemID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFoundWithID("item", itemID)
	}
	return nil
}

// CountByWorkflow counts live items on a workflow
func (r *ItemRepository) CountByWorkflow(ctx context.Context, workflowID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"workflowId": workflowID})
}
