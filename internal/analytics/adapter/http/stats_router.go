package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"restaurant-analytics/internal/analytics/domain/model"
	"restaurant-analytics/internal/analytics/usecase"
	apperrors "restaurant-analytics/internal/shared/errors"
	"restaurant-analytics/internal/shared/logger"
)

// StatsQueries is the query library surface the router serves.
type StatsQueries interface {
	AverageRatingPerCategory(ctx context.Context, minBusinesses int) ([]model.CategoryRating, error)
	RatingReviewCountPairs(ctx context.Context, minReviewCount int) ([]model.RatingReviewPair, error)
	PriceTierDistribution(ctx context.Context) ([]model.PriceTierBucket, error)
	RatingsByPriceTier(ctx context.Context) ([]model.RatingByPrice, error)
}

// ResultCache is the optional aggregation result cache.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// StatsHandler serves the canned aggregation queries as JSON for the
// notebook. All endpoints are read-only.
type StatsHandler struct {
	queries StatsQueries
	cache   ResultCache
	logger  logger.Logger
}

// NewStatsHandler creates the stats router. cache may be nil, which disables
// result caching.
func NewStatsHandler(queries StatsQueries, cache ResultCache, log logger.Logger) *StatsHandler {
	return &StatsHandler{
		queries: queries,
		cache:   cache,
		logger:  log.WithComponent("stats-api"),
	}
}

// RegisterRoutes mounts the stats endpoints under /api/v1/stats.
func (h *StatsHandler) RegisterRoutes(router fiber.Router) {
	stats := router.Group("/api/v1/stats")
	stats.Get("/categories", h.categories)
	stats.Get("/rating-reviews", h.ratingReviews)
	stats.Get("/price-tiers", h.priceTiers)
	stats.Get("/ratings-by-price", h.ratingsByPrice)
}

func (h *StatsHandler) categories(c *fiber.Ctx) error {
	minBusinesses := c.QueryInt("min_businesses", usecase.DefaultMinBusinesses)
	if minBusinesses < 0 {
		return h.respondError(c, apperrors.NewValidationError("min_businesses must not be negative"))
	}

	key := fmt.Sprintf("categories:min=%d", minBusinesses)
	rows, err := fetchWithCache(c.UserContext(), h, key, func(ctx context.Context) ([]model.CategoryRating, error) {
		return h.queries.AverageRatingPerCategory(ctx, minBusinesses)
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return respondRows(c, rows)
}

func (h *StatsHandler) ratingReviews(c *fiber.Ctx) error {
	minReviews := c.QueryInt("min_review_count", 0)
	if minReviews < 0 {
		return h.respondError(c, apperrors.NewValidationError("min_review_count must not be negative"))
	}

	key := fmt.Sprintf("rating-reviews:min=%d", minReviews)
	rows, err := fetchWithCache(c.UserContext(), h, key, func(ctx context.Context) ([]model.RatingReviewPair, error) {
		return h.queries.RatingReviewCountPairs(ctx, minReviews)
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return respondRows(c, rows)
}

func (h *StatsHandler) priceTiers(c *fiber.Ctx) error {
	rows, err := fetchWithCache(c.UserContext(), h, "price-tiers", func(ctx context.Context) ([]model.PriceTierBucket, error) {
		return h.queries.PriceTierDistribution(ctx)
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return respondRows(c, rows)
}

func (h *StatsHandler) ratingsByPrice(c *fiber.Ctx) error {
	rows, err := fetchWithCache(c.UserContext(), h, "ratings-by-price", func(ctx context.Context) ([]model.RatingByPrice, error) {
		return h.queries.RatingsByPriceTier(ctx)
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return respondRows(c, rows)
}

// fetchWithCache consults the result cache before running the query. Cache
// failures are logged and treated as misses; the query result is what the
// endpoint stands behind.
func fetchWithCache[T any](ctx context.Context, h *StatsHandler, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if h.cache != nil {
		var cached []T
		hit, err := h.cache.Get(ctx, key, &cached)
		if err != nil {
			h.logger.WithFields(map[string]interface{}{"key": key, "error": err.Error()}).
				Warn("Result cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	rows, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, rows); err != nil {
			h.logger.WithFields(map[string]interface{}{"key": key, "error": err.Error()}).
				Warn("Result cache write failed")
		}
	}
	return rows, nil
}

func respondRows[T any](c *fiber.Ctx, rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	return c.JSON(fiber.Map{
		"count":   len(rows),
		"results": rows,
	})
}

func (h *StatsHandler) respondError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.HTTPCode).JSON(fiber.Map{
			"error": appErr.Message,
			"type":  appErr.Type,
		})
	}

	h.logger.WithFields(map[string]interface{}{"error": err.Error()}).Error("Stats query failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
