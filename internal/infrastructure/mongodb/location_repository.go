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

// LocationRepository implements domain.LocationRepository using MongoDB.
// Occupy and Release are single conditional updates so two concurrent
// placements into a nearly-full location cannot both succeed.
type LocationRepository struct {
	collection *mongo.Collection
}

// NewLocationRepository creates a new MongoDB location repository
func NewLocationRepository(db *mongo.Database) *LocationRepository {
	collection := db.Collection("locations")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "locationId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "assignedStageId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "isActive", Value: 1}},
		},
	}
	collection.Indexes().CreateMany(ctx, indexes)

	return &LocationRepository{collection: collection}
}

// Save persists a location
func (r *LocationRepository) Save(ctx context.Context, location *domain.Location) error {
	location.UpdatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, location)
	if err != nil {
		return err
	}
	location.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByLocationID retrieves a location by its business ID
func (r *LocationRepository) FindByLocationID(ctx context.Context, locationID string) (*domain.Location, error) {
	var location domain.Location
	err := r.collection.FindOne(ctx, bson.M{"locationId": locationID}).Decode(&location)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFoundWithID("location", locationID)
		}
		return nil, err
	}
	return &location, nil
}

// FindAll retrieves locations, optionally only active ones
func (r *LocationRepository) FindAll(ctx context.Context, activeOnly bool) ([]*domain.Location, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []*domain.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// Update updates location attributes. Occupancy is excluded: it only
// changes through Occupy and Release.
func (r *LocationRepository) Update(ctx context.Context, location *domain.Location) error {
	location.UpdatedAt = time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"locationId": location.LocationID},
		bson.M{"$set": bson.M{
			"name":            location.Name,
			"type":            location.Type,
			"capacity":        location.Capacity,
			"assignedStageId": location.AssignedStageID,
			"isActive":        location.IsActive,
			"updatedAt":       location.UpdatedAt,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("location", location.LocationID)
	}
	return nil
}

// Occupy atomically increments occupancy if the location is active and
// below capacity. The capacity check and the increment are one update,
// so the losing writer of a race gets a capacity error, never an
// over-admitted location.
func (r *LocationRepository) Occupy(ctx context.Context, locationID string) (*domain.Location, error) {
	filter := bson.M{
		"locationId": locationID,
		"isActive":   true,
		"$or": []bson.M{
			{"capacity": nil},
			{"$expr": bson.M{"$lt": []string{"$currentOccupancy", "$capacity"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"currentOccupancy": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var location domain.Location
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&location)
	if err == nil {
		return &location, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// No match: distinguish a missing location from a full or inactive one
	count, countErr := r.collection.CountDocuments(ctx, bson.M{"locationId": locationID})
	if countErr == nil && count == 0 {
		return nil, apperrors.ErrNotFoundWithID("location", locationID)
	}
	return nil, apperrors.ErrCapacityExceeded(locationID)
}

// Release atomically decrements occupancy, never below zero
func (r *LocationRepository) Release(ctx context.Context, locationID string) (*domain.Location, error) {
	filter := bson.M{
		"locationId":       locationID,
		"currentOccupancy": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc": bson.M{"currentOccupancy": -1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var location domain.Location
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&location)
	if err == nil {
		return &location, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// Already at zero, or missing; return the current state either way
	return r.FindByLocationID(ctx, locationID)
}
