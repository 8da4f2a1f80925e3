package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/finsight/investment-tracker/internal/analytics"
	"github.com/finsight/investment-tracker/internal/api"
	"github.com/finsight/investment-tracker/internal/config"
	"github.com/finsight/investment-tracker/internal/database"
	"github.com/finsight/investment-tracker/internal/logging"
	"github.com/finsight/investment-tracker/internal/marketdata"
	"github.com/finsight/investment-tracker/internal/telemetry"
)

func main() {
	// Load .env if present; real environments configure via the process env.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	shutdownTelemetry, err := telemetry.Setup("investment-tracker", cfg.Environment)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize telemetry")
	}

	ctx := context.Background()

	// The database is the preferred price source but the service can run
	// without it by falling back to synthetic series.
	db, err := database.NewPostgresConnection(ctx, cfg.Database)
	if err != nil {
		logger.WithError(err).Warn("database unavailable, continuing without price store")
		db = nil
	} else {
		defer db.Close()
	}

	redis, err := database.NewRedisConnection(ctx, cfg.Redis)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, continuing without cache")
		redis = nil
	} else {
		defer redis.Close()
	}

	var store marketdata.HistoryStore
	if db != nil {
		store = marketdata.NewPostgresStore(db.Pool)
	}

	var cache *marketdata.Cache
	if redis != nil {
		quoteTTL := parseDurationOr(cfg.MarketData.QuoteCacheTTL, time.Minute)
		historyTTL := parseDurationOr(cfg.MarketData.HistoryCacheTTL, 5*time.Minute)
		cache = marketdata.NewCache(redis.Client, quoteTTL, historyTTL)
	}

	market := marketdata.NewService(store, cache, cfg.MarketData.MockFallback, logger)
	engine := analytics.NewEngine(cfg.Analytics, market, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, engine, market, db, redis, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.WithError(err).Warn("telemetry shutdown failed")
	}

	logger.Info("Server exited")
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
