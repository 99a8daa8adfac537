package repository

import (
	"context"

	"restaurant-analytics/internal/ingestion/domain/model"
)

// UpsertSummary reports the outcome of a bulk upsert.
type UpsertSummary struct {
	// Matched counts documents that already existed and were replaced in place.
	Matched int
	// Upserted counts documents inserted for the first time.
	Upserted int
}

// BusinessRepository persists Business records keyed by their provider ID.
type BusinessRepository interface {
	// EnsureIndexes creates the unique index that makes upserts idempotent.
	EnsureIndexes(ctx context.Context) error

	// UpsertMany inserts or replaces each business by its provider ID.
	UpsertMany(ctx context.Context, businesses []model.Business) (*UpsertSummary, error)
}
