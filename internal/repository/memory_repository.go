package repository

import (
	"context"
	"maps"
	"sync"

	"airline-analytics/internal/models"
)

type datasetKey struct {
	dataset   models.Dataset
	airlineID string
}

// MemoryRepository keeps datasets in process. It backs offline reports and
// tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[datasetKey][]models.Record
	runs    []models.IngestionRun
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[datasetKey][]models.Record)}
}

// ListRecords returns copies of the stored rows.
func (m *MemoryRepository) ListRecords(_ context.Context, dataset models.Dataset, airlineID string) ([]models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.records[datasetKey{dataset, airlineID}]
	out := make([]models.Record, len(stored))
	for i, rec := range stored {
		out[i] = maps.Clone(rec)
	}
	return out, nil
}

// ReplaceRecords swaps the stored rows.
func (m *MemoryRepository) ReplaceRecords(_ context.Context, dataset models.Dataset, airlineID string, records []models.Record) (int, error) {
	stored := make([]models.Record, len(records))
	for i, rec := range records {
		stored[i] = maps.Clone(rec)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[datasetKey{dataset, airlineID}] = stored
	return len(stored), nil
}

// RecordIngestionRun appends the run summary.
func (m *MemoryRepository) RecordIngestionRun(_ context.Context, run *models.IngestionRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

// IngestionRuns returns the recorded runs in order.
func (m *MemoryRepository) IngestionRuns() []models.IngestionRun {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.IngestionRun(nil), m.runs...)
}

// HealthCheck always succeeds.
func (m *MemoryRepository) HealthCheck(context.Context) error {
	return nil
}

var _ AirlineRepository = (*MemoryRepository)(nil)
