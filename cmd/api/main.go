package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/docs"
	"github.com/BarkinBalci/customer-scoring-engine/internal/config"
	"github.com/BarkinBalci/customer-scoring-engine/internal/features"
	"github.com/BarkinBalci/customer-scoring-engine/internal/handler"
	"github.com/BarkinBalci/customer-scoring-engine/internal/logger"
	"github.com/BarkinBalci/customer-scoring-engine/internal/queue/sqs"
	"github.com/BarkinBalci/customer-scoring-engine/internal/registry"
	"github.com/BarkinBalci/customer-scoring-engine/internal/repository/clickhouse"
	"github.com/BarkinBalci/customer-scoring-engine/internal/service"
)

// @title Customer Scoring Engine API
// @version 1.0
// @description API for customer scoring, revenue attribution and metric anomaly detection
// @host localhost:8080
// @BasePath /
// @schemes http https
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

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx := context.Background()

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize ClickHouse client
	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func(clickhouseClient *clickhouse.Client) {
		if err := clickhouseClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}(clickhouseClient)

	// Initialize repository
	repo := clickhouse.NewRepository(clickhouseClient, log)

	// Initialize model registry on Postgres
	db, err := registry.Connect(&cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	reg, err := registry.New(ctx, db, log)
	if err != nil {
		log.Fatal("Failed to initialize model registry", zap.Error(err))
	}

	// Initialize feature computer, cached on Redis unless disabled
	var featureComputer service.FeatureComputer
	computer := features.NewComputer(repo, log)
	if cfg.Redis.CacheDisabled {
		featureComputer = computer
	} else {
		redisClient, err := features.ConnectRedis(cfg.Redis.URL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		featureComputer = features.NewCachedComputer(
			computer,
			redisClient,
			time.Duration(cfg.Redis.FeatureTTLSec)*time.Second,
			log,
		)
	}

	// Initialize services
	ingestService := service.NewIngestService(sqsClient, log)
	engineService := service.NewEngineService(featureComputer, reg, repo, cfg, log)

	// Start the nightly retrain scheduler when enabled
	if cfg.Scoring.RetrainCronEnabled {
		scheduler := service.NewScheduler(engineService, log)
		if err := scheduler.Start(cfg.Scoring.RetrainCron); err != nil {
			log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	// Initialize handler
	h := handler.NewHandler(ingestService, engineService, cfg.Service.AdminKey, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
