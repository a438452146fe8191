package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"airline-analytics/internal/models"
	"airline-analytics/internal/repository"
	"airline-analytics/pkg/logging"
	"airline-analytics/pkg/metrics"
)

// IngestionService loads dataset CSV files into the repository
type IngestionService struct {
	repo    repository.AirlineRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	RunID             string
	TotalFiles        int
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	Duration          time.Duration
	Errors            []string
}

// FileIngestionResult contains per-file ingestion statistics
type FileIngestionResult struct {
	Dataset           models.Dataset
	AirlineID         string
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.AirlineRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// IngestDirectory ingests every <dataDir>/<dataset>/<airline-id>.csv file.
// A failing file is recorded in the result and the run continues.
func (s *IngestionService) IngestDirectory(ctx context.Context, dataDir string) (*IngestionResult, error) {
	startTime := time.Now()

	result := &IngestionResult{
		RunID:  uuid.NewString(),
		Errors: make([]string, 0),
	}

	s.logger.Info(ctx, "[INGEST_START] Starting data ingestion", logging.Fields{
		"run_id":   result.RunID,
		"data_dir": dataDir,
		"stage":    "INITIALIZATION",
	})

	files, err := discoverFiles(dataDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no data files found in %s", dataDir)
	}

	result.TotalFiles = len(files)

	s.logger.Info(ctx, "[INGEST_FILES] Found data files", logging.Fields{
		"file_count": len(files),
		"stage":      "FILE_DISCOVERY",
	})

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fileResult, err := s.IngestFile(ctx, f.dataset, f.path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to ingest %s: %v", f.path, err))
			s.logger.Error(ctx, "[INGEST_FILE_ERROR] File ingestion failed", logging.Fields{
				"file_path": f.path,
				"dataset":   string(f.dataset),
				"stage":     "FILE_PROCESSING",
			}, err)
			s.metrics.RecordIngestionError("file_error")
			continue
		}

		result.TotalRecords += fileResult.TotalRecords
		result.SuccessfulRecords += fileResult.SuccessfulRecords
		result.FailedRecords += fileResult.FailedRecords

		s.logger.Info(ctx, "[INGEST_FILE_SUCCESS] File ingested successfully", logging.Fields{
			"file_path":          f.path,
			"dataset":            string(fileResult.Dataset),
			"airline_id":         fileResult.AirlineID,
			"total_records":      fileResult.TotalRecords,
			"successful_records": fileResult.SuccessfulRecords,
			"failed_records":     fileResult.FailedRecords,
			"stage":              "FILE_COMPLETE",
		})
	}

	result.Duration = time.Since(startTime)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	run := &models.IngestionRun{
		RunID:      result.RunID,
		StartedAt:  startTime.UTC(),
		FinishedAt: startTime.Add(result.Duration).UTC(),
		Files:      result.TotalFiles,
		Records:    result.SuccessfulRecords,
		FailedRows: result.FailedRecords,
		Errors:     len(result.Errors),
	}
	if err := s.repo.RecordIngestionRun(ctx, run); err != nil {
		s.logger.Warn(ctx, "[INGEST_RUN_WARNING] Failed to record ingestion run", logging.Fields{
			"run_id": result.RunID,
			"error":  err.Error(),
		})
	}

	s.logger.Info(ctx, "[INGEST_COMPLETE] Data ingestion completed", logging.Fields{
		"run_id":             result.RunID,
		"total_files":        result.TotalFiles,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
		"error_count":        len(result.Errors),
		"stage":              "COMPLETE",
	})

	return result, nil
}

// IngestFile parses one CSV file and replaces the stored rows of dataset for
// the airline named by the file.
func (s *IngestionService) IngestFile(ctx context.Context, dataset models.Dataset, path string) (*FileIngestionResult, error) {
	airlineID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	airline, err := models.LookupAirline(airlineID)
	if err != nil {
		return nil, err
	}

	ctx = logging.WithAirlineID(ctx, airline.ID)
	log := s.logger.WithFields(logging.Fields{
		"dataset":   string(dataset),
		"file_path": path,
	})

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	records, failed, err := ParseCSV(file)
	if err != nil {
		return nil, err
	}
	if failed > 0 {
		s.metrics.IngestionErrorsTotal.WithLabelValues("parse_error").Add(float64(failed))
		log.Warn(ctx, "[INGEST_PARSE_WARNING] Skipped malformed rows", logging.Fields{
			"skipped": failed,
		})
	}

	written, err := s.repo.ReplaceRecords(ctx, dataset, airline.ID, records)
	if err != nil {
		log.Error(ctx, "[INGEST_STORE_ERROR] Failed to store records", logging.Fields{}, err)
		return nil, fmt.Errorf("failed to store records: %w", err)
	}

	log.Debug(ctx, "[INGEST_FILE] Stored records", logging.Fields{
		"records": written,
	})

	return &FileIngestionResult{
		Dataset:           dataset,
		AirlineID:         airline.ID,
		TotalRecords:      len(records) + failed,
		SuccessfulRecords: written,
		FailedRecords:     failed,
	}, nil
}

// ParseCSV reads a header row followed by data rows. Cells are trimmed,
// empty cells are omitted and numeric cells are kept as exact numbers.
// Rows whose width differs from the header are skipped and counted.
func ParseCSV(r io.Reader) ([]models.Record, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.Record{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	records := make([]models.Record, 0)
	failed := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, csv.ErrFieldCount) {
			failed++
			continue
		}
		if err != nil {
			return nil, failed, fmt.Errorf("failed to read row: %w", err)
		}

		rec := make(models.Record, len(header))
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" || header[i] == "" {
				continue
			}
			rec[header[i]] = cellValue(cell)
		}
		if len(rec) == 0 {
			continue
		}
		records = append(records, rec)
	}

	return records, failed, nil
}

func cellValue(cell string) any {
	if d, err := decimal.NewFromString(cell); err == nil {
		return json.Number(d.String())
	}
	return cell
}

type dataFile struct {
	dataset models.Dataset
	path    string
}

func discoverFiles(dataDir string) ([]dataFile, error) {
	var files []dataFile
	for _, dataset := range models.Datasets() {
		matches, err := filepath.Glob(filepath.Join(dataDir, string(dataset), "*.csv"))
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			files = append(files, dataFile{dataset: dataset, path: m})
		}
	}
	return files, nil
}
