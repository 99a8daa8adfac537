package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restaurant-analytics/internal/ingestion/domain/model"
	"restaurant-analytics/internal/ingestion/domain/repository"
	"restaurant-analytics/internal/shared/logger"
)

// uniqueBusinessIndexName is the unique index on the provider business ID
// that makes re-ingestion idempotent.
const uniqueBusinessIndexName = "unique_yelp_business_id"

// BusinessRepository implements repository.BusinessRepository on a MongoDB collection.
type BusinessRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// NewBusinessRepository creates a MongoDB-backed business repository.
func NewBusinessRepository(collection *mongo.Collection, log logger.Logger) *BusinessRepository {
	return &BusinessRepository{
		collection: collection,
		logger:     log.WithComponent("business-repository"),
	}
}

// EnsureIndexes creates the unique index on the provider business ID.
func (r *BusinessRepository) EnsureIndexes(ctx context.Context) error {
	idIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(uniqueBusinessIndexName),
	}

	if _, err := r.collection.Indexes().CreateOne(ctx, idIndex); err != nil {
		return fmt.Errorf("failed to create unique business id index: %w", err)
	}
	return nil
}

// UpsertMany inserts or replaces each business by provider ID in a single
// unordered bulk write. Later fetches of the same ID replace the stored
// document rather than duplicating it.
func (r *BusinessRepository) UpsertMany(ctx context.Context, businesses []model.Business) (*repository.UpsertSummary, error) {
	writes := buildUpsertModels(businesses)
	if len(writes) == 0 {
		return &repository.UpsertSummary{}, nil
	}

	result, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return nil, fmt.Errorf("failed to bulk upsert businesses: %w", err)
	}

	summary := &repository.UpsertSummary{
		Matched:  int(result.MatchedCount),
		Upserted: int(result.UpsertedCount),
	}

	r.logger.WithFields(map[string]interface{}{
		"matched":  summary.Matched,
		"upserted": summary.Upserted,
	}).Debug("Bulk upsert completed")

	return summary, nil
}

// buildUpsertModels turns business records into keyed upsert write models.
// Records without a provider ID are dropped; callers validate upstream, this
// guard keeps one bad record from poisoning the bulk write.
func buildUpsertModels(businesses []model.Business) []mongo.WriteModel {
	writes := make([]mongo.WriteModel, 0, len(businesses))
	for i := range businesses {
		b := &businesses[i]
		if b.ID == "" {
			continue
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": b.ID}).
			SetUpdate(bson.M{"$set": b}).
			SetUpsert(true))
	}
	return writes
}

// Count returns the number of stored business documents.
func (r *BusinessRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count businesses: %w", err)
	}
	return count, nil
}
