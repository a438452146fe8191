package services

import (
	"context"
	"sort"
	"time"

	"airline-analytics/internal/analytics"
	"airline-analytics/internal/models"
	"airline-analytics/pkg/logging"
)

// ReportRow is one year of an airline summary.
type ReportRow struct {
	Year          string  `json:"year"`
	ASM           float64 `json:"asm"`
	RPM           float64 `json:"rpm"`
	LoadFactor    float64 `json:"loadFactor"`
	OpRevenues    float64 `json:"opRevenues"`
	NetIncome     float64 `json:"netIncome"`
	AvgStockPrice float64 `json:"avgStockPrice"`
}

// AirlineReport summarises one airline year by year.
type AirlineReport struct {
	Airline models.Airline      `json:"airline"`
	Years   []ReportRow         `json:"years"`
	Stock   analytics.StockKPIs `json:"stock"`
}

// Report is the result of a report run.
type Report struct {
	Airlines []AirlineReport `json:"airlines"`
	Errors   []string        `json:"errors,omitempty"`
}

// ReportService builds yearly airline summaries
type ReportService struct {
	analytics *AnalyticsService
	logger    *logging.StructuredLogger
}

// NewReportService creates a new report service
func NewReportService(analyticsService *AnalyticsService, logger *logging.StructuredLogger) *ReportService {
	return &ReportService{
		analytics: analyticsService,
		logger:    logger,
	}
}

// BuildReport summarises each airline. An empty list covers the whole
// catalog. Airlines that fail are logged and listed in Report.Errors.
func (s *ReportService) BuildReport(ctx context.Context, airlineIDs []string) (*Report, error) {
	startTime := time.Now()

	if len(airlineIDs) == 0 {
		for _, a := range models.Airlines() {
			airlineIDs = append(airlineIDs, a.ID)
		}
	}

	s.logger.Info(ctx, "[REPORT_START] Building airline report", logging.Fields{
		"airlines": len(airlineIDs),
		"stage":    "INITIALIZATION",
	})

	report := &Report{Airlines: make([]AirlineReport, 0, len(airlineIDs))}
	for _, id := range airlineIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		airlineReport, err := s.airlineReport(ctx, id)
		if err != nil {
			s.logger.Error(ctx, "[REPORT_AIRLINE_ERROR] Failed to summarise airline", logging.Fields{
				"airline_id": id,
			}, err)
			report.Errors = append(report.Errors, id+": "+err.Error())
			continue
		}
		report.Airlines = append(report.Airlines, airlineReport)
	}

	s.logger.Info(ctx, "[REPORT_COMPLETE] Airline report built", logging.Fields{
		"airlines":         len(report.Airlines),
		"errors":           len(report.Errors),
		"duration_seconds": time.Since(startTime).Seconds(),
		"stage":            "COMPLETE",
	})

	return report, nil
}

func (s *ReportService) airlineReport(ctx context.Context, airlineID string) (AirlineReport, error) {
	airline, err := models.LookupAirline(airlineID)
	if err != nil {
		return AirlineReport{}, err
	}

	rows := make(map[string]*ReportRow)
	row := func(year string) *ReportRow {
		r, ok := rows[year]
		if !ok {
			r = &ReportRow{Year: year}
			rows[year] = r
		}
		return r
	}

	sums := []struct {
		metric string
		set    func(*ReportRow, float64)
	}{
		{"ASM", func(r *ReportRow, v float64) { r.ASM = v }},
		{"RPM", func(r *ReportRow, v float64) { r.RPM = v }},
		{"OP_REVENUES", func(r *ReportRow, v float64) { r.OpRevenues = v }},
		{"NET_INCOME", func(r *ReportRow, v float64) { r.NetIncome = v }},
	}
	for _, sum := range sums {
		series, err := s.analytics.YearlySeries(ctx, airline.ID, sum.metric, models.All)
		if err != nil {
			return AirlineReport{}, err
		}
		for _, p := range series {
			sum.set(row(p.Year), p.Value)
		}
	}

	loadFactor, err := s.analytics.LoadFactor(ctx, airline.ID, models.All)
	if err != nil {
		return AirlineReport{}, err
	}
	for _, p := range loadFactor {
		row(p.Year).LoadFactor = p.Value
	}

	records, err := s.analytics.Dataset(ctx, models.DatasetStockData, airline.ID)
	if err != nil {
		return AirlineReport{}, err
	}
	points := analytics.StockPointsFromRecords(records)
	for _, p := range analytics.AverageStockPriceByYear(points) {
		if _, ok := rows[p.Year]; ok {
			rows[p.Year].AvgStockPrice = p.Value
		}
	}

	years := make([]ReportRow, 0, len(rows))
	for _, r := range rows {
		years = append(years, *r)
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })

	stock := analytics.ComputeStockKPIs(points)
	stock.AirlineID = airline.ID
	stock.Ticker = airline.Ticker
	stock.NasdaqName = airline.NasdaqName

	return AirlineReport{Airline: airline, Years: years, Stock: stock}, nil
}
