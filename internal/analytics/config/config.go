package config

import (
	"time"

	"github.com/caarlos0/env/v6"

	apperrors "restaurant-analytics/internal/shared/errors"
)

// Config holds configuration for the stats API server.
type Config struct {
	// MongoURI is the MongoDB connection string.
	MongoURI string `env:"MONGODB_URI"`

	DatabaseName   string `env:"DB_NAME" envDefault:"yelp_analytics"`
	CollectionName string `env:"COLLECTION_NAME" envDefault:"businesses"`

	// ListenAddr is the address the stats API binds to.
	ListenAddr string `env:"STATS_LISTEN_ADDR" envDefault:":8080"`

	// RedisAddr enables the aggregation result cache when non-empty.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// CacheTTL bounds how stale a cached aggregation result may be.
	CacheTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"5m"`
}

// LoadConfig loads stats API configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.NewConfigurationError("failed to load stats configuration from environment").WithCause(err)
	}

	if cfg.MongoURI == "" {
		return nil, apperrors.NewConfigurationError("MONGODB_URI environment variable is not set").
			WithCause(apperrors.ErrMissingMongoURI)
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return cfg, nil
}

// CacheEnabled reports whether a Redis result cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
