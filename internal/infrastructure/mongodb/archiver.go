package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	apperrors "github.com/youcodecowboy/groovy-demo-sub007/pkg/errors"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
	sharedmongo "github.com/youcodecowboy/groovy-demo-sub007/pkg/mongodb"
)

// Archiver implements domain.Archiver with a multi-document transaction.
// Inserting the archival records and deleting the live ones commit or
// abort together, so no reader observes an item in both populations or
// in neither.
type Archiver struct {
	client    *sharedmongo.Client
	live      *mongo.Collection
	history   *mongo.Collection
	completed *mongo.Collection
	archived  *mongo.Collection
	logger    *logging.Logger
}

// NewArchiver creates a new transactional archiver
func NewArchiver(client *sharedmongo.Client, logger *logging.Logger) *Archiver {
	db := client.Database()
	return &Archiver{
		client:    client,
		live:      db.Collection("items"),
		history:   db.Collection("item_history"),
		completed: db.Collection("completed_items"),
		archived:  db.Collection("completed_item_history"),
		logger:    logger,
	}
}

// Archive moves a completed item and its history from the live to the
// archived population
func (a *Archiver) Archive(ctx context.Context, item *domain.Item, history []domain.ItemHistoryEntry, finalStageName string) (*domain.CompletedItem, error) {
	if item.Status != domain.ItemStatusCompleted {
		return nil, apperrors.ErrValidation("only completed items can be archived").
			WithDetail("itemId", item.ItemID)
	}

	completed := domain.NewCompletedItem(item, finalStageName)
	archivedHistory := domain.ArchiveHistory(history)

	err := a.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := a.completed.InsertOne(sessCtx, completed); err != nil {
			return fmt.Errorf("failed to insert completed item: %w", err)
		}

		if len(archivedHistory) > 0 {
			docs := make([]interface{}, 0, len(archivedHistory))
			for i := range archivedHistory {
				docs = append(docs, archivedHistory[i])
			}
			result, err := a.archived.InsertMany(sessCtx, docs)
			if err != nil {
				return fmt.Errorf("failed to insert archived history: %w", err)
			}
			if len(result.InsertedIDs) != len(archivedHistory) {
				return apperrors.ErrArchivalInconsistency(item.ItemID,
					fmt.Errorf("archived %d of %d history entries", len(result.InsertedIDs), len(archivedHistory)))
			}
		}

		deleted, err := a.live.DeleteOne(sessCtx, bson.M{"itemId": item.ItemID})
		if err != nil {
			return fmt.Errorf("failed to delete live item: %w", err)
		}
		if deleted.DeletedCount != 1 {
			return apperrors.ErrArchivalInconsistency(item.ItemID,
				fmt.Errorf("expected to delete 1 live item, deleted %d", deleted.DeletedCount))
		}

		if _, err := a.history.DeleteMany(sessCtx, bson.M{"itemId": item.ItemID}); err != nil {
			return fmt.Errorf("failed to delete live history: %w", err)
		}

		return nil
	})
	if err != nil {
		a.logger.WithError(err).Error("archival transaction aborted", "itemId", item.ItemID)
		return nil, err
	}

	a.logger.Info("item archived",
		"itemId", item.ItemID,
		"workflowId", item.WorkflowID,
		"finalStageId", completed.FinalStageID,
		"historyEntries", len(archivedHistory))

	return completed, nil
}
