package models

import "time"

// IngestionRun summarises one pass of the CSV ingester.
type IngestionRun struct {
	RunID      string    `json:"run_id" db:"run_id"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
	Files      int       `json:"files" db:"files"`
	Records    int       `json:"records" db:"records"`
	FailedRows int       `json:"failed_rows" db:"failed_rows"`
	Errors     int       `json:"errors" db:"errors"`
}

// Duration is the wall time of the run.
func (r IngestionRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
