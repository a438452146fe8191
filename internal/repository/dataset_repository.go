package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"airline-analytics/internal/models"
	"airline-analytics/pkg/database"
	"airline-analytics/pkg/logging"
	"airline-analytics/pkg/metrics"
)

// DefaultBatchSize bounds the rows written per INSERT statement.
const DefaultBatchSize = 500

// AirlineRepository provides data access for per-airline datasets
type AirlineRepository interface {
	// ListRecords returns the stored rows of one dataset for one airline in
	// ingestion order. An airline without rows yields an empty slice.
	ListRecords(ctx context.Context, dataset models.Dataset, airlineID string) ([]models.Record, error)

	// ReplaceRecords swaps the stored rows of one dataset for one airline in
	// a single transaction and returns the number written.
	ReplaceRecords(ctx context.Context, dataset models.Dataset, airlineID string, records []models.Record) (int, error)

	// RecordIngestionRun stores the summary of an ingestion pass.
	RecordIngestionRun(ctx context.Context, run *models.IngestionRun) error

	HealthCheck(ctx context.Context) error
}

type recordRow struct {
	RecordKey string `db:"record_key"`
	Payload   string `db:"payload"`
}

// airlineRepository implements AirlineRepository
type airlineRepository struct {
	db        *database.DB
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
	batchSize int
}

// NewAirlineRepository creates a new airline repository. A batchSize of zero
// or less uses DefaultBatchSize.
func NewAirlineRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, batchSize int) AirlineRepository {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &airlineRepository{
		db:        db,
		logger:    logger,
		metrics:   metricsCollector,
		batchSize: batchSize,
	}
}

// ListRecords retrieves the stored rows of a dataset for an airline
func (r *airlineRepository) ListRecords(ctx context.Context, dataset models.Dataset, airlineID string) ([]models.Record, error) {
	query := `
		SELECT record_key, payload
		FROM dataset_records
		WHERE dataset = ? AND airline_id = ?
		ORDER BY record_key
	`

	var rows []recordRow
	if err := r.db.SelectContext(ctx, "list_records", &rows, query, string(dataset), airlineID); err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", dataset, err)
	}

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := models.DecodeRecord([]byte(row.Payload))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s record %s: %w", dataset, row.RecordKey, err)
		}
		records = append(records, rec)
	}

	r.logger.Debug(ctx, "[REPO_LIST_RECORDS] Records loaded", logging.Fields{
		"dataset":    string(dataset),
		"airline_id": airlineID,
		"count":      len(records),
	})

	return records, nil
}

// ReplaceRecords deletes the existing rows and writes records in batches
func (r *airlineRepository) ReplaceRecords(ctx context.Context, dataset models.Dataset, airlineID string, records []models.Record) (int, error) {
	timer := time.Now()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		tx.Rebind(`DELETE FROM dataset_records WHERE dataset = ? AND airline_id = ?`),
		string(dataset), airlineID,
	); err != nil {
		r.metrics.RecordDBError("delete_records")
		return 0, fmt.Errorf("failed to clear %s records: %w", dataset, err)
	}

	now := time.Now().UTC()
	written := 0
	for start := 0; start < len(records); start += r.batchSize {
		end := min(start+r.batchSize, len(records))

		query, args, err := buildInsertBatch(dataset, airlineID, records[start:end], start, now)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			r.metrics.RecordDBError("insert_records")
			return 0, fmt.Errorf("failed to insert %s records: %w", dataset, err)
		}

		r.metrics.IngestionBatchSize.Observe(float64(end - start))
		written += end - start
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.RecordIngestedRecords(string(dataset), written)
	r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
		"dataset":     string(dataset),
		"airline_id":  airlineID,
		"count":       written,
		"duration_ms": time.Since(timer).Milliseconds(),
	})

	return written, nil
}

// RecordIngestionRun stores an ingestion summary
func (r *airlineRepository) RecordIngestionRun(ctx context.Context, run *models.IngestionRun) error {
	query := `
		INSERT INTO ingestion_runs (run_id, started_at, finished_at, files, records, failed_rows, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, "insert_ingestion_run", query,
		run.RunID,
		run.StartedAt,
		run.FinishedAt,
		run.Files,
		run.Records,
		run.FailedRows,
		run.Errors,
	)
	if err != nil {
		return fmt.Errorf("failed to record ingestion run: %w", err)
	}

	return nil
}

// HealthCheck performs a repository health check
func (r *airlineRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// buildInsertBatch renders one multi-row upsert. Row keys are the zero-padded
// position in the source so that ordering by key restores ingestion order.
func buildInsertBatch(dataset models.Dataset, airlineID string, batch []models.Record, offset int, now time.Time) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO dataset_records (dataset, airline_id, record_key, year, quarter, payload, created_at, updated_at) VALUES `)

	args := make([]interface{}, 0, len(batch)*8)
	for i, rec := range batch {
		payload, err := json.Marshal(rec)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode %s record %d: %w", dataset, offset+i, err)
		}

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			string(dataset),
			airlineID,
			RecordKey(offset+i),
			nullableInt(rec.Year()),
			nullableInt(quarterOf(rec)),
			string(payload),
			now,
			now,
		)
	}

	sb.WriteString(` ON CONFLICT (dataset, airline_id, record_key) DO UPDATE SET
		year = excluded.year,
		quarter = excluded.quarter,
		payload = excluded.payload,
		updated_at = excluded.updated_at`)

	return sb.String(), args, nil
}

// RecordKey is the stored key of the row at position i.
func RecordKey(i int) string {
	return fmt.Sprintf("%08d", i)
}

func quarterOf(rec models.Record) (int, bool) {
	d, ok := rec.Decimal(models.FieldQuarter)
	if !ok || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

func nullableInt(v int, ok bool) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: ok}
}
