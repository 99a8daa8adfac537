package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restaurant-analytics/internal/analytics/adapter/cache"
	statshttp "restaurant-analytics/internal/analytics/adapter/http"
	"restaurant-analytics/internal/analytics/adapter/persistence/mongodb"
	"restaurant-analytics/internal/analytics/config"
	"restaurant-analytics/internal/analytics/usecase"
	"restaurant-analytics/internal/shared/logger"
)

func main() {
	// Load environment variables from a .env file if present
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	appLogger := logger.NewLogger().WithComponent("stats-api")

	cfg, err := config.LoadConfig()
	if err != nil {
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
	queries := usecase.NewQueryService(mongodb.NewAggregationEngine(collection))

	var resultCache statshttp.ResultCache
	if cfg.CacheEnabled() {
		redisClient := cache.NewRedisClient(cfg)
		defer func() {
			if err := redisClient.Close(); err != nil {
				appLogger.Errorf("Failed to close Redis client: %v", err)
			}
		}()
		resultCache = cache.NewResultCache(redisClient, cfg.CacheTTL)
		appLogger.Infof("Result cache enabled (ttl=%s)", cfg.CacheTTL)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Restaurant Analytics Stats API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if err := mongoClient.Ping(healthCtx, nil); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"timestamp": time.Now().UTC(),
		})
	})

	handler := statshttp.NewStatsHandler(queries, resultCache, appLogger)
	handler.RegisterRoutes(app)

	appLogger.Infof("Starting stats API on %s", cfg.ListenAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(cfg.ListenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Fatalf("Server failed to start: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}
