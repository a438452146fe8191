package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"airline-analytics/internal/config"
	"airline-analytics/internal/handlers"
	"airline-analytics/internal/models"
	"airline-analytics/internal/repository"
	"airline-analytics/internal/services"
	"airline-analytics/migrations"
	"airline-analytics/pkg/database"
	"airline-analytics/pkg/logging"
	"airline-analytics/pkg/metrics"
	"airline-analytics/pkg/tracing"
)

var version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("airline-api", version, logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting airline analytics API server", logging.Fields{
		"version":     version,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_driver":   cfg.Database.Driver,
	})

	shutdownTracing, err := tracing.Setup(ctx, tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version,
	})
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to set up tracing", logging.Fields{}, err)
	}

	metricsCollector := metrics.NewCollector(cfg.Analytics.MetricsNamespace, prometheus.DefaultRegisterer)

	db, err := database.Open(cfg.Database.Connection(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// SQLite databases are created on demand, so the schema is applied here.
	if cfg.Database.Driver == config.DriverSQLite {
		applied, err := database.ApplyMigrations(ctx, db.DB(), migrations.FS, ".")
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to apply migrations", logging.Fields{}, err)
		}
		logger.Info(ctx, "[STARTUP_MIGRATIONS] Schema ready", logging.Fields{
			"applied": applied,
		})
	}

	airlineRepo := repository.NewAirlineRepository(db, logger, metricsCollector, cfg.Analytics.BatchSize)

	analyticsService := services.NewAnalyticsService(
		airlineRepo,
		models.DefaultRegions,
		cfg.Analytics.ExpenseSpan(),
		logger,
		metricsCollector,
	)

	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, airlineRepo.HealthCheck, logger, metricsCollector, version)

	router := mux.NewRouter()
	analyticsHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Failed to flush traces", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
