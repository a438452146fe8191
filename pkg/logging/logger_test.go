package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("airline-api", "test", WarnLevel)
	logger.SetOutput(&buf)

	ctx := context.Background()
	logger.Debug(ctx, "debug", nil)
	logger.Info(ctx, "info", nil)
	logger.Warn(ctx, "[CACHE_WARN] warn", Fields{"k": "v"})

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Level != "WARN" || entries[0].Fields["k"] != "v" {
		t.Errorf("entry = %+v", entries[0])
	}
	if entries[0].Service != "airline-api" {
		t.Errorf("Service = %s, want airline-api", entries[0].Service)
	}
}

func TestStructuredLogger_ContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("airline-api", "test", DebugLevel)
	logger.SetOutput(&buf)

	ctx := WithAirlineID(WithRequestID(context.Background(), "req-1"), "delta-airlines")
	logger.Error(ctx, "[API_ERROR] failed", Fields{}, errors.New("boom"))

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.RequestID != "req-1" || e.AirlineID != "delta-airlines" {
		t.Errorf("context ids = %q, %q", e.RequestID, e.AirlineID)
	}
	if e.Error != "boom" {
		t.Errorf("Error = %q, want boom", e.Error)
	}
	if e.File == "" || e.Line == 0 {
		t.Error("error entries should carry caller information")
	}
}

func TestStructuredLogger_Fatal(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("airline-api", "test", InfoLevel)
	logger.SetOutput(&buf)

	code := -1
	logger.SetExitFunc(func(c int) { code = c })
	logger.Fatal(context.Background(), "[STARTUP_ERROR] fatal", Fields{}, errors.New("no db"))

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	entries := decodeEntries(t, &buf)
	if len(entries) != 1 || entries[0].StackTrace == "" {
		t.Errorf("fatal entry should include a stack trace: %+v", entries)
	}
}

func TestContextLogger_MergesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("airline-ingester", "test", InfoLevel)
	logger.SetOutput(&buf)

	scoped := logger.WithFields(Fields{"dataset": "airline-data", "file": "a.csv"})
	scoped.Info(context.Background(), "[INGEST_FILE] done", Fields{"file": "b.csv"})

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Fields["dataset"] != "airline-data" || entries[0].Fields["file"] != "b.csv" {
		t.Errorf("Fields = %v", entries[0].Fields)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warn":    WarnLevel,
		"error":   ErrorLevel,
		"verbose": InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
