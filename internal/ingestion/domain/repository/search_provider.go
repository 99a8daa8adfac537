package repository

import (
	"context"

	"restaurant-analytics/internal/ingestion/domain/model"
)

// SearchPage is one page of provider search results.
type SearchPage struct {
	Businesses []model.Business
	// Total is the provider's count of all results matching the search,
	// not just this page.
	Total int
}

// SearchProvider abstracts the upstream paginated search API.
type SearchProvider interface {
	// SearchRestaurants fetches one page of restaurant listings for a city.
	// offset is the number of results to skip; limit is the page size.
	SearchRestaurants(ctx context.Context, city string, limit, offset int) (*SearchPage, error)
}
