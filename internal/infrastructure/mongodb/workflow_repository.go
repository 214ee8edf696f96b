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

// WorkflowRepository implements domain.WorkflowRepository using MongoDB
type WorkflowRepository struct {
	collection *mongo.Collection
	items      *mongo.Collection
}

// NewWorkflowRepository creates a new MongoDB workflow repository
func NewWorkflowRepository(db *mongo.Database) *WorkflowRepository {
	collection := db.Collection("workflows")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workflowId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "isActive", Value: 1}},
		},
	}
	collection.Indexes().CreateMany(ctx, indexes)

	return &WorkflowRepository{
		collection: collection,
		items:      db.Collection("items"),
	}
}

// Save persists a workflow
func (r *WorkflowRepository) Save(ctx context.Context, workflow *domain.Workflow) error {
	workflow.UpdatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, workflow)
	if err != nil {
		return err
	}
	workflow.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByWorkflowID retrieves a workflow by its business ID
func (r *WorkflowRepository) FindByWorkflowID(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.collection.FindOne(ctx, bson.M{"workflowId": workflowID}).Decode(&workflow)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFoundWithID("workflow", workflowID)
		}
		return nil, err
	}
	return &workflow, nil
}

// FindAll retrieves workflows, optionally only active ones
func (r *WorkflowRepository) FindAll(ctx context.Context, activeOnly bool) ([]*domain.Workflow, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workflows []*domain.Workflow
	if err := cursor.All(ctx, &workflows); err != nil {
		return nil, err
	}
	return workflows, nil
}

// Update updates a workflow
func (r *WorkflowRepository) Update(ctx context.Context, workflow *domain.Workflow) error {
	workflow.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"workflowId": workflow.WorkflowID}, workflow)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("workflow", workflow.WorkflowID)
	}
	return nil
}

// CountItemsReferencing reports how many live items reference a workflow
func (r *WorkflowRepository) CountItemsReferencing(ctx context.Context, workflowID string) (int64, error) {
	return r.items.CountDocuments(ctx, bson.M{"workflowId": workflowID})
}
