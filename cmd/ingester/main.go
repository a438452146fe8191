package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"airline-analytics/internal/config"
	"airline-analytics/internal/models"
	"airline-analytics/internal/repository"
	"airline-analytics/internal/services"
	"airline-analytics/migrations"
	"airline-analytics/pkg/database"
	"airline-analytics/pkg/logging"
	"airline-analytics/pkg/metrics"
)

var version = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	dataDir := flag.String("data-dir", cfg.Analytics.DataDir, "Directory laid out as <dataset>/<airline-id>.csv")
	batchSize := flag.Int("batch-size", cfg.Analytics.BatchSize, "Rows written per insert statement")
	file := flag.String("file", "", "Ingest a single CSV file instead of the whole directory")
	dataset := flag.String("dataset", "", "Dataset of -file, for example airline-data")
	migrate := flag.Bool("migrate", true, "Apply embedded migrations before ingesting")
	flag.Parse()

	cfg.Analytics.BatchSize = *batchSize
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("airline-ingester", version, logging.ParseLevel(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "[INGESTER_START] Starting airline data ingestion", logging.Fields{
		"version":    version,
		"data_dir":   *dataDir,
		"file":       *file,
		"batch_size": *batchSize,
	})

	metricsCollector := metrics.NewCollector(cfg.Analytics.MetricsNamespace+"_ingester", prometheus.NewRegistry())

	db, err := database.Open(cfg.Database.Connection(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	if *migrate {
		if _, err := database.ApplyMigrations(ctx, db.DB(), migrations.FS, "."); err != nil {
			logger.Fatal(ctx, "[INGESTER_ERROR] Failed to apply migrations", logging.Fields{}, err)
		}
	}

	airlineRepo := repository.NewAirlineRepository(db, logger, metricsCollector, *batchSize)
	ingestionService := services.NewIngestionService(airlineRepo, logger, metricsCollector)

	if *file != "" {
		ds, err := models.ParseDataset(*dataset)
		if err != nil {
			logger.Fatal(ctx, "[INGESTER_ERROR] Invalid dataset", logging.Fields{"dataset": *dataset}, err)
		}
		fileResult, err := ingestionService.IngestFile(ctx, ds, *file)
		if err != nil {
			logger.Fatal(ctx, "[INGESTION_ERROR] File ingestion failed", logging.Fields{"file": *file}, err)
		}
		fmt.Printf("Ingested %d of %d rows for %s (%s)\n",
			fileResult.SuccessfulRecords, fileResult.TotalRecords, fileResult.AirlineID, fileResult.Dataset)
		return
	}

	result, err := ingestionService.IngestDirectory(ctx, *dataDir)
	if err != nil {
		logger.Fatal(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{
			"error": err.Error(),
		}, err)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Run ID:             %s\n", result.RunID)
	fmt.Printf("Total Files:        %d\n", result.TotalFiles)
	fmt.Printf("Total Records:      %d\n", result.TotalRecords)
	fmt.Printf("Successful Records: %d\n", result.SuccessfulRecords)
	fmt.Printf("Failed Records:     %d\n", result.FailedRecords)
	fmt.Printf("Duration:           %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for i, errMsg := range result.Errors {
			if i < 10 {
				fmt.Printf("  - %s\n", errMsg)
			}
		}
		if len(result.Errors) > 10 {
			fmt.Printf("  ... and %d more errors\n", len(result.Errors)-10)
		}
	}

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed successfully", logging.Fields{
		"run_id":             result.RunID,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
	})
}
