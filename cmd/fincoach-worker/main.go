package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fincoach/internal/amqp"
	"fincoach/internal/backend"
	"fincoach/internal/cache"
	"fincoach/internal/config"
	applog "fincoach/internal/log"
	"fincoach/internal/services"
	"fincoach/internal/websites"
	"fincoach/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting fincoach-worker", applog.FieldOperation, applog.OpStartup)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Backend configuration failed", "error", err)
		os.Exit(1)
	}
	// The worker only reads datasets; it never publishes, so the backend is
	// created without its own AMQP connection.
	backendCfg.AMQPURL = ""

	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Backend initialization failed", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	analysisCache := cache.NewLRUCache[any](cfg.CacheMaxEntries, cfg.CacheTTL)
	analysisService := services.NewAnalysisService(result.Store, analysisCache, websites.New())
	prewarmWorker := worker.NewPrewarmWorker(analysisService, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received",
			applog.FieldOperation, applog.OpShutdown, "signal", sig.String())
		cancel()
	}()

	logger.Info("Consuming dataset events",
		"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeDatasetIngested(ctx, prewarmWorker.HandleDatasetIngested); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Worker stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
