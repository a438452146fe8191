package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"airline-analytics/internal/models"
	"airline-analytics/internal/repository"
)

func TestParseCSV(t *testing.T) {
	input := "\ufeffYEAR, QUARTER ,REGION,ASM,NOTE\n" +
		"2020,1,D,100.50,\n" +
		"2020,2,A,1e3,late\n" +
		"2021,1,D\n" +
		",,,,\n"

	records, failed, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if failed != 1 {
		t.Errorf("failed rows = %d, want 1", failed)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	first := records[0]
	if got := first["YEAR"]; got != json.Number("2020") {
		t.Errorf("YEAR = %#v, want json.Number(2020)", got)
	}
	if got := first["QUARTER"]; got != json.Number("1") {
		t.Errorf("trimmed header QUARTER = %#v", got)
	}
	if first.Has("NOTE") {
		t.Error("empty cell should be omitted")
	}
	if got := first["REGION"]; got != "D" {
		t.Errorf("REGION = %#v, want string D", got)
	}
	if got := records[1].Amount("ASM").String(); got != "1000" {
		t.Errorf("ASM = %s, want 1000", got)
	}
}

func TestParseCSV_Empty(t *testing.T) {
	records, failed, err := ParseCSV(strings.NewReader(""))
	if err != nil || failed != 0 || len(records) != 0 {
		t.Errorf("ParseCSV(empty) = %v, %d, %v", records, failed, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestIngestionService_IngestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "airline-data", "delta-airlines.csv"), "YEAR,QUARTER,REGION,ASM\n2020,1,D,100\n2020,2,D,50\n")
	writeFile(t, filepath.Join(dir, "stock-data", "delta-airlines.csv"), "Date,Adj Close,Volume\n2024-01-02,31.5,1000\n")
	writeFile(t, filepath.Join(dir, "stock-data", "pan-am.csv"), "Date,Adj Close\n2024-01-02,1\n")
	writeFile(t, filepath.Join(dir, "unknown-dataset", "delta-airlines.csv"), "YEAR\n2020\n")

	repo := repository.NewMemoryRepository()
	svc := NewIngestionService(repo, testLogger(), testMetrics())

	result, err := svc.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IngestDirectory() error = %v", err)
	}

	checkValues := func(name string, got, want int) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}
	checkValues("TotalFiles", result.TotalFiles, 3)
	checkValues("SuccessfulRecords", result.SuccessfulRecords, 3)
	checkValues("Errors", len(result.Errors), 1)

	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	runs := repo.IngestionRuns()
	if len(runs) != 1 || runs[0].RunID != result.RunID || runs[0].Records != 3 {
		t.Errorf("recorded runs = %+v", runs)
	}

	stored, _ := repo.ListRecords(context.Background(), models.DatasetAirlineData, "delta-airlines")
	if len(stored) != 2 {
		t.Errorf("stored airline-data = %d, want 2", len(stored))
	}
}

func TestIngestionService_NoFiles(t *testing.T) {
	svc := NewIngestionService(repository.NewMemoryRepository(), testLogger(), testMetrics())

	if _, err := svc.IngestDirectory(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected error for empty data dir")
	}
}
