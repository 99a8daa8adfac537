package usecase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"restaurant-analytics/internal/analytics/domain/model"
	"restaurant-analytics/internal/analytics/domain/repository"
)

// DefaultMinBusinesses is the default floor on how many businesses a
// category needs before it appears in the per-category rating aggregation.
const DefaultMinBusinesses = 5

// hasPriceTier matches only documents the provider assigned a price tier.
// Businesses without one are excluded from price aggregations rather than
// bucketed as unknown.
var hasPriceTier = bson.M{"$exists": true, "$type": "string", "$ne": ""}

// QueryService exposes the canned aggregation queries the notebook plots.
// Every query is read-only: pipelines are built here and evaluated by the
// database engine.
type QueryService struct {
	executor repository.PipelineExecutor
}

// NewQueryService creates the query library over an aggregation executor.
func NewQueryService(executor repository.PipelineExecutor) *QueryService {
	return &QueryService{executor: executor}
}

// AverageRatingPerCategory returns average rating and business count per
// category title, sorted by average rating descending with ties broken by
// category name ascending. minBusinesses <= 0 disables the count floor.
// Businesses without categories are excluded by the $unwind.
func (s *QueryService) AverageRatingPerCategory(ctx context.Context, minBusinesses int) ([]model.CategoryRating, error) {
	pipeline := averageRatingPerCategoryPipeline(minBusinesses)

	var results []model.CategoryRating
	if err := s.executor.Aggregate(ctx, pipeline, &results); err != nil {
		return nil, fmt.Errorf("category rating aggregation failed: %w", err)
	}
	return results, nil
}

// RatingReviewCountPairs returns rating/review-count pairs for correlation
// analysis, restricted to documents where both fields are numeric.
func (s *QueryService) RatingReviewCountPairs(ctx context.Context, minReviewCount int) ([]model.RatingReviewPair, error) {
	pipeline := ratingReviewPairsPipeline(minReviewCount)

	var results []model.RatingReviewPair
	if err := s.executor.Aggregate(ctx, pipeline, &results); err != nil {
		return nil, fmt.Errorf("rating/review-count aggregation failed: %w", err)
	}
	return results, nil
}

// PriceTierDistribution returns business count and average rating per price
// tier, sorted by count descending.
func (s *QueryService) PriceTierDistribution(ctx context.Context) ([]model.PriceTierBucket, error) {
	pipeline := priceTierDistributionPipeline()

	var results []model.PriceTierBucket
	if err := s.executor.Aggregate(ctx, pipeline, &results); err != nil {
		return nil, fmt.Errorf("price tier aggregation failed: %w", err)
	}
	return results, nil
}

// RatingsByPriceTier returns individual ratings with their price tier for
// distribution plots.
func (s *QueryService) RatingsByPriceTier(ctx context.Context) ([]model.RatingByPrice, error) {
	pipeline := ratingsByPriceTierPipeline()

	var results []model.RatingByPrice
	if err := s.executor.Aggregate(ctx, pipeline, &results); err != nil {
		return nil, fmt.Errorf("ratings-by-price aggregation failed: %w", err)
	}
	return results, nil
}

// Pipeline builders. Stages use bson.D where key order matters ($sort) and
// bson.M elsewhere.

func averageRatingPerCategoryPipeline(minBusinesses int) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		// $unwind drops documents whose categories field is missing or
		// empty, which is the documented exclusion policy.
		{{Key: "$unwind", Value: "$categories"}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$categories.title",
			"avg_rating":     bson.M{"$avg": "$rating"},
			"num_businesses": bson.M{"$sum": 1},
		}}},
	}

	if minBusinesses > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"num_businesses": bson.M{"$gte": minBusinesses},
		}}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "avg_rating", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":            0,
			"category":       "$_id",
			"avg_rating":     1,
			"num_businesses": 1,
		}}},
	)

	return pipeline
}

func ratingReviewPairsPipeline(minReviewCount int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"rating":       bson.M{"$type": "number"},
			"review_count": bson.M{"$type": "number"},
		}}},
		{{Key: "$match", Value: bson.M{
			"review_count": bson.M{"$gte": minReviewCount},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"rating":       1,
			"review_count": 1,
		}}},
	}
}

func priceTierDistributionPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"price": hasPriceTier}}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$price",
			"count":      bson.M{"$sum": 1},
			"avg_rating": bson.M{"$avg": "$rating"},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":        0,
			"price":      "$_id",
			"count":      1,
			"avg_rating": 1,
		}}},
	}
}

func ratingsByPriceTierPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"rating": bson.M{"$type": "number"},
			"price":  hasPriceTier,
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":    0,
			"rating": 1,
			"price":  1,
		}}},
	}
}
