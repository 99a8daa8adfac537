package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-analytics/internal/ingestion/domain/model"
	"restaurant-analytics/internal/ingestion/domain/repository"
	apperrors "restaurant-analytics/internal/shared/errors"
	"restaurant-analytics/internal/shared/logger"
)

// scriptedPage is one canned provider response.
type scriptedPage struct {
	businesses []model.Business
	total      int
	err        error
}

// fakeProvider replays canned pages per city and records the calls it saw.
type fakeProvider struct {
	pages map[string][]scriptedPage
	calls []providerCall
}

type providerCall struct {
	city   string
	limit  int
	offset int
}

func (f *fakeProvider) SearchRestaurants(_ context.Context, city string, limit, offset int) (*repository.SearchPage, error) {
	f.calls = append(f.calls, providerCall{city: city, limit: limit, offset: offset})

	queue := f.pages[city]
	if len(queue) == 0 {
		return &repository.SearchPage{}, nil
	}
	next := queue[0]
	f.pages[city] = queue[1:]

	if next.err != nil {
		return nil, next.err
	}
	if len(next.businesses) > limit {
		next.businesses = next.businesses[:limit]
	}
	return &repository.SearchPage{Businesses: next.businesses, Total: next.total}, nil
}

// fakeStore is an in-memory BusinessRepository keyed by provider ID, so
// upsert idempotence is observable through its size.
type fakeStore struct {
	docs      map[string]model.Business
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]model.Business)}
}

func (f *fakeStore) EnsureIndexes(context.Context) error { return nil }

func (f *fakeStore) UpsertMany(_ context.Context, businesses []model.Business) (*repository.UpsertSummary, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	summary := &repository.UpsertSummary{}
	for _, b := range businesses {
		if _, exists := f.docs[b.ID]; exists {
			summary.Matched++
		} else {
			summary.Upserted++
		}
		f.docs[b.ID] = b
	}
	return summary, nil
}

func makeBusinesses(prefix string, n int) []model.Business {
	out := make([]model.Business, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Business{
			ID:     fmt.Sprintf("%s-%d", prefix, i),
			Name:   fmt.Sprintf("Restaurant %s %d", prefix, i),
			Rating: 4.0,
		})
	}
	return out
}

func testLogger() logger.Logger {
	return logger.NewLoggerWithConfig("error", "text")
}

func TestIngestCities_TwoPagesUnderCap(t *testing.T) {
	provider := &fakeProvider{pages: map[string][]scriptedPage{
		"Austin, TX": {
			{businesses: makeBusinesses("austin-a", 50), total: 60},
			{businesses: makeBusinesses("austin-b", 10), total: 60},
		},
	}}
	store := newFakeStore()

	uc := NewIngestUsecase(provider, store, 50, 100, testLogger())
	run, err := uc.IngestCities(context.Background(), []string{"Austin, TX"})
	require.NoError(t, err)

	require.Len(t, run.Cities, 1)
	assert.Equal(t, 60, run.Cities[0].Fetched)
	assert.Equal(t, 60, run.TotalUpserted)
	assert.Equal(t, 0, run.TotalMatched)
	assert.Len(t, store.docs, 60)

	require.Len(t, provider.calls, 2)
	assert.Equal(t, providerCall{city: "Austin, TX", limit: 50, offset: 0}, provider.calls[0])
	assert.Equal(t, providerCall{city: "Austin, TX", limit: 50, offset: 50}, provider.calls[1])
}

func TestIngestCities_RerunIsIdempotent(t *testing.T) {
	pages := func() map[string][]scriptedPage {
		return map[string][]scriptedPage{
			"Austin, TX": {
				{businesses: makeBusinesses("austin", 50), total: 60},
				{businesses: makeBusinesses("austin-more", 10), total: 60},
			},
		}
	}
	store := newFakeStore()

	first := NewIngestUsecase(&fakeProvider{pages: pages()}, store, 50, 100, testLogger())
	run1, err := first.IngestCities(context.Background(), []string{"Austin, TX"})
	require.NoError(t, err)
	require.Equal(t, 60, run1.TotalUpserted)
	sizeAfterFirst := len(store.docs)

	second := NewIngestUsecase(&fakeProvider{pages: pages()}, store, 50, 100, testLogger())
	run2, err := second.IngestCities(context.Background(), []string{"Austin, TX"})
	require.NoError(t, err)

	assert.Equal(t, 0, run2.TotalUpserted)
	assert.Equal(t, 60, run2.TotalMatched)
	assert.Equal(t, sizeAfterFirst, len(store.docs))
}

func TestIngestCities_ReingestUpdatesRatingInPlace(t *testing.T) {
	store := newFakeStore()
	original := model.Business{ID: "franklin", Name: "Franklin Barbecue", Rating: 4.0}
	updated := model.Business{ID: "franklin", Name: "Franklin Barbecue", Rating: 4.5}

	run := func(b model.Business) *RunSummary {
		provider := &fakeProvider{pages: map[string][]scriptedPage{
			"Austin, TX": {{businesses: []model.Business{b}, total: 1}},
		}}
		uc := NewIngestUsecase(provider, store, 50, 50, testLogger())
		summary, err := uc.IngestCities(context.Background(), []string{"Austin, TX"})
		require.NoError(t, err)
		return summary
	}

	run1 := run(original)
	assert.Equal(t, 1, run1.TotalUpserted)

	run2 := run(updated)
	assert.Equal(t, 0, run2.TotalUpserted)
	assert.Equal(t, 1, run2.TotalMatched)

	require.Len(t, store.docs, 1)
	assert.Equal(t, 4.5, store.docs["franklin"].Rating)
}

func TestIngestCities_FailedCityDoesNotAbortRun(t *testing.T) {
	provider := &fakeProvider{pages: map[string][]scriptedPage{
		"Austin, TX": {{err: apperrors.NewProviderError("search for \"Austin, TX\" returned status 500")}},
		"Houston, TX": {
			{businesses: makeBusinesses("houston", 3), total: 3},
		},
	}}
	store := newFakeStore()

	uc := NewIngestUsecase(provider, store, 50, 50, testLogger())
	run, err := uc.IngestCities(context.Background(), []string{"Austin, TX", "Houston, TX"})
	require.NoError(t, err)

	require.Len(t, run.Cities, 2)
	austin := run.Cities[0]
	assert.True(t, austin.Failed())
	assert.Equal(t, 0, austin.Fetched)
	assert.Equal(t, 0, austin.Upserted)

	houston := run.Cities[1]
	assert.False(t, houston.Failed())
	assert.Equal(t, 3, houston.Upserted)

	assert.Equal(t, []string{"Austin, TX"}, run.FailedCities())
	assert.Len(t, store.docs, 3)
}

func TestIngestCities_SkipsMalformedResults(t *testing.T) {
	businesses := makeBusinesses("austin", 2)
	businesses = append(businesses, model.Business{Name: "Missing ID Diner"})

	provider := &fakeProvider{pages: map[string][]scriptedPage{
		"Austin, TX": {{businesses: businesses, total: 3}},
	}}
	store := newFakeStore()

	uc := NewIngestUsecase(provider, store, 50, 50, testLogger())
	run, err := uc.IngestCities(context.Background(), []string{"Austin, TX"})
	require.NoError(t, err)

	assert.Equal(t, 1, run.TotalSkipped)
	assert.Equal(t, 2, run.TotalUpserted)
	assert.Len(t, store.docs, 2)
}

func TestIngestCities_RespectsPerCityCap(t *testing.T) {
	provider := &fakeProvider{pages: map[string][]scriptedPage{
		"Chicago, IL": {
			{businesses: makeBusinesses("chi-a", 50), total: 120},
			{businesses: makeBusinesses("chi-b", 50), total: 120},
		},
	}}
	store := newFakeStore()

	uc := NewIngestUsecase(provider, store, 50, 60, testLogger())
	run, err := uc.IngestCities(context.Background(), []string{"Chicago, IL"})
	require.NoError(t, err)

	assert.Equal(t, 60, run.Cities[0].Fetched)
	assert.Equal(t, 60, run.TotalUpserted)

	require.Len(t, provider.calls, 2)
	assert.Equal(t, 10, provider.calls[1].limit)
}

func TestIngestCities_StampsIngestionMetadata(t *testing.T) {
	provider := &fakeProvider{pages: map[string][]scriptedPage{
		"Austin, TX": {{businesses: makeBusinesses("austin", 1), total: 1}},
	}}
	store := newFakeStore()

	uc := NewIngestUsecase(provider, store, 50, 50, testLogger())
	_, err := uc.IngestCities(context.Background(), []string{"Austin, TX"})
	require.NoError(t, err)

	stored := store.docs["austin-0"]
	assert.Equal(t, "Austin, TX", stored.SearchCity)
	assert.False(t, stored.FetchedAt.IsZero())
}

func TestIngestCities_EmptyCityList(t *testing.T) {
	uc := NewIngestUsecase(&fakeProvider{}, newFakeStore(), 50, 50, testLogger())

	run, err := uc.IngestCities(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, run)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCityList)
}

func TestIngestCities_UpsertFailureAbortsCityOnly(t *testing.T) {
	provider := &fakeProvider{pages: map[string][]scriptedPage{
		"Austin, TX":  {{businesses: makeBusinesses("austin", 2), total: 2}},
		"Houston, TX": {{businesses: makeBusinesses("houston", 2), total: 2}},
	}}
	store := newFakeStore()
	store.upsertErr = apperrors.NewPersistenceError("bulk upsert failed")

	uc := NewIngestUsecase(provider, store, 50, 50, testLogger())
	run, err := uc.IngestCities(context.Background(), []string{"Austin, TX", "Houston, TX"})
	require.NoError(t, err)

	assert.Len(t, run.FailedCities(), 2)
	assert.Equal(t, 0, run.TotalUpserted)
}
