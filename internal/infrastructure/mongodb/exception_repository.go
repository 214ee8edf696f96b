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

// ItemExceptionRepository implements domain.ItemExceptionRepository
// using MongoDB
type ItemExceptionRepository struct {
	collection *mongo.Collection
}

// NewItemExceptionRepository creates a new MongoDB exception repository
func NewItemExceptionRepository(db *mongo.Database) *ItemExceptionRepository {
	collection := db.Collection("item_exceptions")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "exceptionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "itemId", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "itemId", Value: 1},
				{Key: "kind", Value: 1},
				{Key: "resolvedAt", Value: 1},
			},
		},
	}
	collection.Indexes().CreateMany(ctx, indexes)

	return &ItemExceptionRepository{collection: collection}
}

// Save persists an exception record
func (r *ItemExceptionRepository) Save(ctx context.Context, exception *domain.ItemException) error {
	result, err := r.collection.InsertOne(ctx, exception)
	if err != nil {
		return err
	}
	exception.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByExceptionID retrieves an exception by ID
func (r *ItemExceptionRepository) FindByExceptionID(ctx context.Context, exceptionID string) (*domain.ItemException, error) {
	var exception domain.ItemException
	err := r.collection.FindOne(ctx, bson.M{"exceptionId": exceptionID}).Decode(&exception)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFoundWithID("exception", exceptionID)
		}
		return nil, err
	}
	return &exception, nil
}

// FindByItemID retrieves all exception records for an item
func (r *ItemExceptionRepository) FindByItemID(ctx context.Context, itemID string) ([]*domain.ItemException, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"itemId": itemID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exceptions []*domain.ItemException
	if err := cursor.All(ctx, &exceptions); err != nil {
		return nil, err
	}
	return exceptions, nil
}

// FindOpenByItem retrieves unresolved exceptions of a kind for an item
func (r *ItemExceptionRepository) FindOpenByItem(ctx context.Context, itemID string, kind domain.ExceptionKind) ([]*domain.ItemException, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"itemId":     itemID,
		"kind":       kind,
		"resolvedAt": nil,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exceptions []*domain.ItemException
	if err := cursor.All(ctx, &exceptions); err != nil {
		return nil, err
	}
	return exceptions, nil
}

// Update updates an exception record
func (r *ItemExceptionRepository) Update(ctx context.Context, exception *domain.ItemException) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"exceptionId": exception.ExceptionID}, exception)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("exception", exception.ExceptionID)
	}
	return nil
}
