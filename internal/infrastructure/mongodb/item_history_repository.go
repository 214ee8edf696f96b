package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
)

// ItemHistoryRepository implements domain.ItemHistoryRepository using
// MongoDB. Entries are append-only; ordering comes from the per-item
// sequence number stamped by the aggregate.
type ItemHistoryRepository struct {
	collection *mongo.Collection
}

// NewItemHistoryRepository creates a new MongoDB item history repository
func NewItemHistoryRepository(db *mongo.Database) *ItemHistoryRepository {
	collection := db.Collection("item_history")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "itemId", Value: 1},
				{Key: "sequence", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
	}
	collection.Indexes().CreateMany(ctx, indexes)

	return &ItemHistoryRepository{collection: collection}
}

// Append persists history entries
func (r *ItemHistoryRepository) Append(ctx context.Context, entries []domain.ItemHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(entries))
	for i := range entries {
		docs = append(docs, entries[i])
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// FindByItemID retrieves an item's history ordered by sequence
func (r *ItemHistoryRepository) FindByItemID(ctx context.Context, itemID string) ([]domain.ItemHistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"itemId": itemID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.ItemHistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByItemID removes an item's history
func (r *ItemHistoryRepository) DeleteByItemID(ctx context.Context, itemID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"itemId": itemID})
	return err
}
