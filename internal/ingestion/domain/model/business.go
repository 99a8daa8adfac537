package model

import (
	"time"

	apperrors "restaurant-analytics/internal/shared/errors"
)

// Category is a provider-assigned business category.
type Category struct {
	Alias string `bson:"alias" json:"alias"`
	Title string `bson:"title" json:"title"`
}

// Coordinates holds the business location point.
type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Location holds the provider's address fields for a business.
type Location struct {
	Address1       string   `bson:"address1,omitempty" json:"address1,omitempty"`
	City           string   `bson:"city" json:"city"`
	State          string   `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode        string   `bson:"zip_code,omitempty" json:"zip_code,omitempty"`
	Country        string   `bson:"country,omitempty" json:"country,omitempty"`
	DisplayAddress []string `bson:"display_address,omitempty" json:"display_address,omitempty"`
}

// Business is the stored document for one restaurant listing. The provider's
// business ID is the upsert key: re-ingesting the same ID replaces the stored
// document instead of duplicating it.
type Business struct {
	ID          string      `bson:"id" json:"id"`
	Name        string      `bson:"name" json:"name"`
	Categories  []Category  `bson:"categories,omitempty" json:"categories,omitempty"`
	Rating      float64     `bson:"rating" json:"rating"`
	ReviewCount int         `bson:"review_count" json:"review_count"`
	Price       string      `bson:"price,omitempty" json:"price,omitempty"`
	Location    Location    `bson:"location" json:"location"`
	Coordinates Coordinates `bson:"coordinates" json:"coordinates"`

	// SearchCity is the "City, State" string the ingestion run searched with.
	SearchCity string    `bson:"search_city" json:"search_city"`
	FetchedAt  time.Time `bson:"fetched_at" json:"fetched_at"`

	// Raw preserves the full provider payload so fields this model does not
	// map yet survive a round trip.
	Raw map[string]interface{} `bson:"raw,omitempty" json:"-"`
}

// Validate checks the fields an upsert cannot do without.
func (b *Business) Validate() error {
	if b.ID == "" {
		return apperrors.NewValidationError("business document is missing its provider id").
			WithCause(apperrors.ErrMissingBusinessID)
	}
	return nil
}

// HasPrice reports whether the provider assigned a price tier. Businesses
// without one are excluded from price-tier aggregations.
func (b *Business) HasPrice() bool {
	return b.Price != ""
}

// Annotate stamps the ingestion metadata onto the record.
func (b *Business) Annotate(searchCity string, fetchedAt time.Time) {
	b.SearchCity = searchCity
	b.FetchedAt = fetchedAt.UTC()
}
