package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/hxrushing/sdk-platform/internal/cache"
	"github.com/hxrushing/sdk-platform/internal/config"
	"github.com/hxrushing/sdk-platform/internal/handler"
	"github.com/hxrushing/sdk-platform/internal/logger"
	"github.com/hxrushing/sdk-platform/internal/metrics"
	"github.com/hxrushing/sdk-platform/internal/queue/sqs"
	"github.com/hxrushing/sdk-platform/internal/repository/clickhouse"
	"github.com/hxrushing/sdk-platform/internal/repository/postgres"
	"github.com/hxrushing/sdk-platform/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	ctx := context.Background()

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize ClickHouse client (event log)
	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func(clickhouseClient *clickhouse.Client) {
		if err := clickhouseClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}(clickhouseClient)

	eventRepo := clickhouse.NewRepository(clickhouseClient, log)

	// Initialize Postgres store (projects, event definitions)
	metaStore, err := postgres.Open(cfg.Postgres.DSN, log)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer func() {
		if err := metaStore.Close(); err != nil {
			log.Error("Failed to close Postgres store", zap.Error(err))
		}
	}()

	if err := metaStore.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize metadata schema", zap.Error(err))
	}

	// Definition cache is optional; without Redis every first-sight
	// check goes to Postgres.
	var defCache service.DefinitionCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.New(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Failed to close Redis client", zap.Error(err))
			}
		}()
		defCache = redisCache
	} else {
		log.Info("Definition cache disabled, no Redis address configured")
	}

	m := metrics.New()

	// Initialize services
	trackingService := service.NewTrackingService(sqsClient, eventRepo, metaStore, defCache, m, log)
	statsService := service.NewStatsService(eventRepo, metaStore, cfg.Analytics.DisplayUTCOffsetHours, log)
	metadataService := service.NewMetadataService(metaStore, log)

	// Initialize handler
	h := handler.NewHandler(trackingService, statsService, metadataService, m, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
