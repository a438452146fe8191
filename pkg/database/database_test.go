package database

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"airline-analytics/pkg/logging"
	"airline-analytics/pkg/metrics"
)

func newTestDB(t *testing.T) (*DB, *metrics.Collector) {
	t.Helper()

	logger := logging.NewStructuredLogger("test", "test", logging.DebugLevel)
	logger.SetOutput(&bytes.Buffer{})
	collector := metrics.NewCollector("test", prometheus.NewRegistry())

	db, err := Open(&Config{
		Driver:          DriverSQLite,
		DSN:             filepath.Join(t.TempDir(), "db.sqlite"),
		MaxOpenConns:    10,
		MonitorInterval: 10 * time.Millisecond,
	}, logger, collector)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return db, collector
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	logger := logging.NewStructuredLogger("test", "test", logging.InfoLevel)
	logger.SetOutput(&bytes.Buffer{})

	_, err := Open(&Config{Driver: "mysql"}, logger, metrics.NewCollector("test", prometheus.NewRegistry()))
	if err == nil || !strings.Contains(err.Error(), "unsupported database driver") {
		t.Fatalf("Open() error = %v, want unsupported driver", err)
	}
}

func TestDB_ExecAndSelect(t *testing.T) {
	db, collector := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "create", "CREATE TABLE kv (k TEXT PRIMARY KEY, v INTEGER)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for i, k := range []string{"a", "b", "c"} {
		if _, err := db.ExecContext(ctx, "insert", "INSERT INTO kv (k, v) VALUES (?, ?)", k, i); err != nil {
			t.Fatalf("insert %s: %v", k, err)
		}
	}

	var keys []string
	if err := db.SelectContext(ctx, "list", &keys, "SELECT k FROM kv WHERE v >= ? ORDER BY k", 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if strings.Join(keys, ",") != "b,c" {
		t.Errorf("keys = %v, want [b c]", keys)
	}

	var count int
	if err := db.GetContext(ctx, "count", &count, "SELECT COUNT(*) FROM kv"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	if err := db.SelectContext(ctx, "broken", &keys, "SELECT k FROM missing_table"); err == nil {
		t.Fatal("expected error from missing table")
	}
	if got := testutil.ToFloat64(collector.DBErrorsTotal.WithLabelValues("select_error")); got != 1 {
		t.Errorf("select_error count = %v, want 1", got)
	}
}

func TestDB_HealthCheckAndClose(t *testing.T) {
	db, collector := newTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	// Let the monitor record at least one sample.
	time.Sleep(50 * time.Millisecond)
	if got := testutil.ToFloat64(collector.DBConnectionPool.WithLabelValues("total")); got < 1 {
		t.Errorf("pool total = %v, want at least 1", got)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.HealthCheck(context.Background()); err == nil {
		t.Fatal("HealthCheck() after Close should fail")
	}
}

func TestDB_SQLiteSingleConnection(t *testing.T) {
	db, _ := newTestDB(t)
	defer db.Close()

	if got := db.DB().Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
	if db.Driver() != DriverSQLite {
		t.Errorf("Driver() = %q", db.Driver())
	}
}
