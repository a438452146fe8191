package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.RecordAPIRequest("/api/airlines", "GET", "200")
	c.RecordAPIRequest("/api/airlines", "GET", "200")
	c.RecordAPIError("repository_error", "/api/airline-data/{id}")
	c.RecordIngestedRecords("airline-data", 42)
	c.RecordIngestionError("parse_error")
	c.RecordDBError("upsert_failed")

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"api requests", testutil.ToFloat64(c.APIRequestsTotal.WithLabelValues("/api/airlines", "GET", "200")), 2},
		{"api errors", testutil.ToFloat64(c.APIErrorsTotal.WithLabelValues("repository_error", "/api/airline-data/{id}")), 1},
		{"ingested", testutil.ToFloat64(c.IngestionRecordsTotal.WithLabelValues("airline-data")), 42},
		{"ingestion errors", testutil.ToFloat64(c.IngestionErrorsTotal.WithLabelValues("parse_error")), 1},
		{"db errors", testutil.ToFloat64(c.DBErrorsTotal.WithLabelValues("upsert_failed")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCollector_Pool(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())
	c.UpdateDBConnectionPool(3, 2, 5)

	if got := testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("total")); got != 5 {
		t.Errorf("pool total = %v, want 5", got)
	}
	if got := testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("in_use")); got != 3 {
		t.Errorf("pool in_use = %v, want 3", got)
	}
}

func TestCollector_StartAggregation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("test", reg)

	done := c.StartAggregation("load_factor", 120)
	done()

	if n := testutil.CollectAndCount(c.AggregationDuration, "test_aggregation_duration_seconds"); n != 1 {
		t.Errorf("aggregation duration series = %d, want 1", n)
	}
	if n := testutil.CollectAndCount(c.AggregationInputRecords, "test_aggregation_input_records"); n != 1 {
		t.Errorf("aggregation input series = %d, want 1", n)
	}
}

func TestNewCollector_SeparateRegistries(t *testing.T) {
	// Two collectors with the same namespace must not collide on separate registries.
	NewCollector("dup", prometheus.NewRegistry())
	NewCollector("dup", prometheus.NewRegistry())
}
