package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/campnest/backend/config"
	httpDelivery "github.com/campnest/backend/internal/delivery/http"
	"github.com/campnest/backend/internal/infrastructure/cache"
	"github.com/campnest/backend/internal/infrastructure/llm"
	"github.com/campnest/backend/internal/infrastructure/notify"
	"github.com/campnest/backend/internal/infrastructure/postgres"
	"github.com/campnest/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting campnest backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Infrastructure
	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:            cfg.Database.URL,
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	places := postgres.NewRawPlaceRepository(pool)
	candidates := postgres.NewCandidateRepository(pool)
	listings := postgres.NewListingRepository(pool)
	provinces := postgres.NewProvinceRepository(pool)
	syncRuns := postgres.NewSyncRunRepository(pool)

	memoryCache := cache.NewMemoryCache()
	notifier := notify.NewWebhookNotifier(cfg.Notify.WebhookURL, logger)

	aiClient, err := llm.NewClient(llm.Config{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		BaseURL:  cfg.AI.BaseURL,
	})
	if err != nil {
		logger.Fatal("ai client init failed", zap.Error(err))
	}
	if aiClient != nil {
		logger.Info("ai classification fallback enabled", zap.String("provider", cfg.AI.Provider), zap.String("model", cfg.AI.Model))
	} else {
		logger.Info("ai classification fallback disabled, keyword rules only")
	}

	// Usecase layer. The province index loads eagerly so no lookup can run
	// against a half-built cache.
	provinceIndex := usecase.NewProvinceIndex(ctx, provinces, logger)

	dedup := usecase.NewDedupService(listings, memoryCache, usecase.DedupConfig{
		ListingCacheTTL: cfg.Pipeline.ListingCacheTTL,
	}, logger)

	classifier := usecase.NewClassifierService(aiClient, usecase.ClassifierConfig{
		FallbackThreshold: cfg.Pipeline.FallbackThreshold,
		FallbackTimeout:   cfg.AI.Timeout,
	}, logger)

	pipeline := usecase.NewPipelineService(places, candidates, dedup, classifier, provinceIndex,
		usecase.PipelineConfig{FallbackProvinceID: cfg.Pipeline.FallbackProvinceID}, logger)

	runner := usecase.NewBatchRunner(pipeline, places, syncRuns,
		usecase.BatchRunnerConfig{ItemDelay: cfg.Pipeline.ItemDelay}, logger)

	review := usecase.NewReviewService(candidates, places, listings, dedup, notifier, logger)

	// HTTP delivery
	handler := httpDelivery.NewHandler(runner, syncRuns, review, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
