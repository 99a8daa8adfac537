package config

import (
	"github.com/caarlos0/env/v6"

	apperrors "restaurant-analytics/internal/shared/errors"
)

// Search page sizes accepted by the provider.
const (
	MinPageSize = 1
	MaxPageSize = 50
)

// Config holds all configuration for the ingestion job.
type Config struct {
	// YelpAPIKey is the Yelp Fusion API bearer token.
	YelpAPIKey string `env:"YELP_API_KEY"`

	// MongoURI is the MongoDB connection string (e.g. mongodb+srv://...).
	MongoURI string `env:"MONGODB_URI"`

	DatabaseName   string `env:"DB_NAME" envDefault:"yelp_analytics"`
	CollectionName string `env:"COLLECTION_NAME" envDefault:"businesses"`

	// PageSize is the number of results requested per search page, clamped
	// to the provider's 1..50 range.
	PageSize int `env:"PAGE_SIZE" envDefault:"50"`

	// MaxPerCity caps the total number of results ingested per city.
	MaxPerCity int `env:"MAX_PER_CITY" envDefault:"50"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
// A missing credential or connection string is a fatal startup condition.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.NewConfigurationError("failed to load ingestion configuration from environment").WithCause(err)
	}

	if cfg.YelpAPIKey == "" {
		return nil, apperrors.NewConfigurationError("YELP_API_KEY environment variable is not set").
			WithCause(apperrors.ErrMissingAPIKey)
	}
	if cfg.MongoURI == "" {
		return nil, apperrors.NewConfigurationError("MONGODB_URI environment variable is not set").
			WithCause(apperrors.ErrMissingMongoURI)
	}

	if cfg.PageSize < MinPageSize {
		cfg.PageSize = MinPageSize
	}
	if cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.MaxPerCity < 1 {
		cfg.MaxPerCity = cfg.PageSize
	}

	return cfg, nil
}
