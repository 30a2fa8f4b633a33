package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fincoach/internal/backend"
	"fincoach/internal/cache"
	"fincoach/internal/config"
	apphttp "fincoach/internal/http"
	applog "fincoach/internal/log"
	"fincoach/internal/services"
	"fincoach/internal/websites"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Backend configuration failed", "error", err)
		os.Exit(1)
	}
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

	sites := websites.New()
	if cfg.MerchantSitesFile != "" {
		loaded, err := websites.NewFromFile(cfg.MerchantSitesFile)
		if err != nil {
			logger.Warn("Failed to load merchant site overrides, using built-ins",
				"error", err, "path", cfg.MerchantSitesFile)
		} else {
			sites = loaded
		}
	}

	analysisCache := cache.NewLRUCache[any](cfg.CacheMaxEntries, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(analysisCache)
	cacheManager.StartCleanup(cfg.CacheTTL)
	defer cacheManager.Stop()

	ingestService := services.NewIngestService(result.Store, result.AMQP)
	analysisService := services.NewAnalysisService(result.Store, analysisCache, sites)

	srv := apphttp.NewServer(":"+cfg.Port, ingestService, analysisService, apphttp.Options{
		MaxUploadBytes:     cfg.MaxUploadBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received",
			applog.FieldOperation, applog.OpShutdown, "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting fincoach server",
		applog.FieldOperation, applog.OpStartup, "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
