package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restaurant-analytics/internal/ingestion/adapter/persistence/mongodb"
	"restaurant-analytics/internal/ingestion/adapter/provider/yelp"
	"restaurant-analytics/internal/ingestion/config"
	"restaurant-analytics/internal/ingestion/usecase"
	"restaurant-analytics/internal/shared/logger"
)

// defaultCities is used when no cities are passed on the command line.
var defaultCities = []string{
	"New York, NY",
	"San Francisco, CA",
	"Los Angeles, CA",
	"Chicago, IL",
	"Houston, TX",
}

func main() {
	// Load environment variables from a .env file if present
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	appLogger := logger.NewLogger().WithComponent("ingest-cli")

	cfg, err := config.LoadConfig()
	if err != nil {
		// Fatal configuration error: exit non-zero before any network call.
		appLogger.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Errorf("Failed to disconnect MongoDB: %v", err)
		}
	}()

	if err := mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Fatalf("Failed to ping MongoDB: %v", err)
	}
	appLogger.Info("MongoDB connection established")

	collection := mongoClient.Database(cfg.DatabaseName).Collection(cfg.CollectionName)
	businesses := mongodb.NewBusinessRepository(collection, appLogger)

	if err := businesses.EnsureIndexes(ctx); err != nil {
		appLogger.Fatalf("Failed to ensure indexes: %v", err)
	}

	provider := yelp.NewClient(cfg.YelpAPIKey)
	ingest := usecase.NewIngestUsecase(provider, businesses, cfg.PageSize, cfg.MaxPerCity, appLogger)

	cities := os.Args[1:]
	if len(cities) == 0 {
		cities = defaultCities
	}

	run, err := ingest.IngestCities(context.Background(), cities)
	if err != nil {
		appLogger.Fatalf("Ingestion failed to start: %v", err)
	}

	summaryFields := map[string]interface{}{
		"run_id":         run.RunID,
		"total_matched":  run.TotalMatched,
		"total_upserted": run.TotalUpserted,
		"total_skipped":  run.TotalSkipped,
		"failed_cities":  run.FailedCities(),
	}

	countCtx, countCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer countCancel()
	if total, err := businesses.Count(countCtx); err == nil {
		summaryFields["collection_size"] = total
	}

	appLogger.WithFields(summaryFields).Info("Ingestion finished")

	// Per-city failures are logged, not fatal: the process still exits 0.
}
