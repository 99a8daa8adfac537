package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AggregationEngine executes aggregation pipelines against the business
// collection. Pipelines run with allowDiskUse so large group stages are not
// limited by the engine's in-memory sort cap.
type AggregationEngine struct {
	collection *mongo.Collection
}

// NewAggregationEngine creates an executor over a collection handle.
func NewAggregationEngine(collection *mongo.Collection) *AggregationEngine {
	return &AggregationEngine{collection: collection}
}

// Aggregate runs the pipeline and decodes every result document into
// results, which must be a pointer to a slice.
func (e *AggregationEngine) Aggregate(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error {
	opts := options.Aggregate().SetAllowDiskUse(true)

	cursor, err := e.collection.Aggregate(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("failed to run aggregation pipeline: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		return fmt.Errorf("failed to decode aggregation results: %w", err)
	}
	return nil
}
