package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"restaurant-analytics/internal/ingestion/domain/model"
	"restaurant-analytics/internal/ingestion/domain/repository"
	"restaurant-analytics/internal/shared/contextkeys"
	apperrors "restaurant-analytics/internal/shared/errors"
	"restaurant-analytics/internal/shared/logger"
)

// CitySummary reports the outcome of ingesting one city.
type CitySummary struct {
	City string
	// Fetched counts results returned by the provider, valid or not.
	Fetched int
	// Matched counts documents that already existed and were replaced.
	Matched int
	// Upserted counts documents inserted for the first time.
	Upserted int
	// Skipped counts malformed results dropped with a log entry.
	Skipped int
	// Err is set when the city was aborted by a page fetch or write failure.
	Err error
}

// Failed reports whether ingestion for this city was aborted.
func (s CitySummary) Failed() bool {
	return s.Err != nil
}

// RunSummary aggregates per-city outcomes for one ingestion run.
type RunSummary struct {
	RunID         string
	Cities        []CitySummary
	TotalMatched  int
	TotalUpserted int
	TotalSkipped  int
}

// FailedCities lists the cities whose ingestion was aborted.
func (r *RunSummary) FailedCities() []string {
	var failed []string
	for _, c := range r.Cities {
		if c.Failed() {
			failed = append(failed, c.City)
		}
	}
	return failed
}

// IngestUsecase pulls restaurant listings from the search provider city by
// city and upserts them into the business collection.
type IngestUsecase struct {
	provider   repository.SearchProvider
	businesses repository.BusinessRepository
	pageSize   int
	maxPerCity int
	logger     logger.Logger
	now        func() time.Time
}

// NewIngestUsecase wires an ingestion job.
func NewIngestUsecase(
	provider repository.SearchProvider,
	businesses repository.BusinessRepository,
	pageSize int,
	maxPerCity int,
	log logger.Logger,
) *IngestUsecase {
	return &IngestUsecase{
		provider:   provider,
		businesses: businesses,
		pageSize:   pageSize,
		maxPerCity: maxPerCity,
		logger:     log.WithComponent("ingestion"),
		now:        time.Now,
	}
}

// IngestCities runs the ingestion job for each city in order. A failed city
// is logged and skipped; remaining cities still run. The returned error is
// non-nil only for invalid input, never for per-city failures.
func (uc *IngestUsecase) IngestCities(ctx context.Context, cities []string) (*RunSummary, error) {
	if len(cities) == 0 {
		return nil, apperrors.NewValidationError("city list must not be empty").
			WithCause(apperrors.ErrEmptyCityList)
	}

	run := &RunSummary{RunID: uuid.NewString()}
	ctx = contextkeys.WithRunID(ctx, run.RunID)

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"cities":       len(cities),
		"page_size":    uc.pageSize,
		"max_per_city": uc.maxPerCity,
	}).Info("Starting ingestion run")

	for _, city := range cities {
		cityCtx := contextkeys.WithCity(ctx, city)
		summary := uc.ingestCity(cityCtx, city)

		run.Cities = append(run.Cities, summary)
		run.TotalMatched += summary.Matched
		run.TotalUpserted += summary.Upserted
		run.TotalSkipped += summary.Skipped

		log := uc.logger.WithContext(cityCtx).WithFields(map[string]interface{}{
			"fetched":  summary.Fetched,
			"matched":  summary.Matched,
			"upserted": summary.Upserted,
			"skipped":  summary.Skipped,
		})
		if summary.Failed() {
			log.WithFields(map[string]interface{}{"error": summary.Err.Error()}).
				Error("City ingestion aborted")
		} else {
			log.Info("City ingestion completed")
		}
	}

	uc.logRunSummary(ctx, run)
	return run, nil
}

// ingestCity paginates the search endpoint for one city until the per-city
// cap is reached or the provider runs out of results. Any page failure
// aborts this city only.
func (uc *IngestUsecase) ingestCity(ctx context.Context, city string) CitySummary {
	summary := CitySummary{City: city}
	offset := 0

	for summary.Fetched < uc.maxPerCity {
		limit := uc.pageSize
		if remaining := uc.maxPerCity - summary.Fetched; remaining < limit {
			limit = remaining
		}

		page, err := uc.provider.SearchRestaurants(ctx, city, limit, offset)
		if err != nil {
			summary.Err = err
			return summary
		}
		if len(page.Businesses) == 0 {
			break
		}

		fetchedAt := uc.now()
		valid := make([]model.Business, 0, len(page.Businesses))
		for _, b := range page.Businesses {
			if err := b.Validate(); err != nil {
				summary.Skipped++
				uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
					"business_name": b.Name,
					"error":         err.Error(),
				}).Warn("Skipping malformed search result")
				continue
			}
			b.Annotate(city, fetchedAt)
			valid = append(valid, b)
		}

		if len(valid) > 0 {
			result, err := uc.businesses.UpsertMany(ctx, valid)
			if err != nil {
				summary.Err = err
				return summary
			}
			summary.Matched += result.Matched
			summary.Upserted += result.Upserted
		}

		summary.Fetched += len(page.Businesses)
		offset += len(page.Businesses)

		// A short page means the provider is out of results, as does
		// reaching its reported total.
		if len(page.Businesses) < limit {
			break
		}
		if page.Total > 0 && summary.Fetched >= page.Total {
			break
		}
	}

	return summary
}

// logRunSummary prints the end-of-run report: per-city counts plus the
// failed and skipped tallies.
func (uc *IngestUsecase) logRunSummary(ctx context.Context, run *RunSummary) {
	log := uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"total_matched":  run.TotalMatched,
		"total_upserted": run.TotalUpserted,
		"total_skipped":  run.TotalSkipped,
	})

	if failed := run.FailedCities(); len(failed) > 0 {
		log.WithFields(map[string]interface{}{"failed_cities": failed}).
			Warn("Ingestion run completed with failures")
		return
	}
	log.Info("Ingestion run completed")
}
