package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"

	"airline-analytics/internal/config"
	"airline-analytics/internal/models"
	"airline-analytics/internal/repository"
	"airline-analytics/internal/services"
	"airline-analytics/pkg/database"
	"airline-analytics/pkg/format"
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

	dataDir := flag.String("data-dir", "", "Read CSV files from this directory instead of the database")
	airlines := flag.String("airlines", "", "Comma separated airline ids, empty for all")
	asJSON := flag.Bool("json", false, "Write the report as JSON")
	flag.Parse()

	logger := logging.NewStructuredLogger("airline-report", version, logging.ParseLevel(cfg.Logging.Level))
	logger.SetOutput(os.Stderr)
	metricsCollector := metrics.NewCollector(cfg.Analytics.MetricsNamespace+"_report", prometheus.NewRegistry())

	ctx := context.Background()

	var repo repository.AirlineRepository
	if *dataDir != "" {
		memory := repository.NewMemoryRepository()
		if _, err := services.NewIngestionService(memory, logger, metricsCollector).IngestDirectory(ctx, *dataDir); err != nil {
			logger.Fatal(ctx, "[REPORT_ERROR] Failed to load CSV files", logging.Fields{"data_dir": *dataDir}, err)
		}
		repo = memory
	} else {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}
		db, err := database.Open(cfg.Database.Connection(), logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[REPORT_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()
		repo = repository.NewAirlineRepository(db, logger, metricsCollector, cfg.Analytics.BatchSize)
	}

	analyticsService := services.NewAnalyticsService(repo, models.DefaultRegions, cfg.Analytics.ExpenseSpan(), logger, metricsCollector)
	reportService := services.NewReportService(analyticsService, logger)

	var ids []string
	if *airlines != "" {
		for _, id := range strings.Split(*airlines, ",") {
			ids = append(ids, strings.TrimSpace(id))
		}
	}

	report, err := reportService.BuildReport(ctx, ids)
	if err != nil {
		logger.Fatal(ctx, "[REPORT_ERROR] Failed to build report", logging.Fields{}, err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Fatal(ctx, "[REPORT_ERROR] Failed to write report", logging.Fields{}, err)
		}
		return
	}

	writeText(os.Stdout, report)
}

func writeText(out io.Writer, report *services.Report) {
	printer := format.NewPrinter(language.English)

	for _, a := range report.Airlines {
		fmt.Fprintln(out, strings.Repeat("=", 80))
		fmt.Fprintf(out, "%s (%s)\n", a.Airline.Name, a.Airline.Ticker)
		fmt.Fprintln(out, strings.Repeat("=", 80))

		if a.Stock.LatestDate != "" {
			fmt.Fprintf(out, "Latest close %s on %s  1Y %s  3Y %s  5Y %s  YTD %s\n\n",
				printer.Grouped(a.Stock.LatestPrice, 2), a.Stock.LatestDate,
				format.Percent(a.Stock.OneYearReturn.Value, a.Stock.OneYearReturn.Valid),
				format.Percent(a.Stock.ThreeYearReturn.Value, a.Stock.ThreeYearReturn.Valid),
				format.Percent(a.Stock.FiveYearReturn.Value, a.Stock.FiveYearReturn.Valid),
				format.Percent(a.Stock.YTDReturn.Value, a.Stock.YTDReturn.Valid),
			)
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "YEAR\tASM\tRPM\tLOAD FACTOR\tOP REVENUES\tNET INCOME\tAVG PRICE\t")
		for _, row := range a.Years {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				row.Year,
				format.Compact(row.ASM),
				format.Compact(row.RPM),
				format.Percent(row.LoadFactor, true),
				format.Compact(row.OpRevenues),
				format.Compact(row.NetIncome),
				printer.Grouped(row.AvgStockPrice, 2),
			)
		}
		tw.Flush()
		fmt.Fprintln(out)
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(out, "Errors (%d):\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}
}
