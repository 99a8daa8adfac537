package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// PipelineExecutor runs an aggregation pipeline against the business
// collection and decodes all result documents into results, which must be a
// pointer to a slice.
type PipelineExecutor interface {
	Aggregate(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error
}
