package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"airline-analytics/internal/analytics"
	"airline-analytics/internal/models"
	"airline-analytics/internal/repository"
	"airline-analytics/pkg/logging"
	"airline-analytics/pkg/metrics"
	"airline-analytics/pkg/tracing"
)

// stockKPIConcurrency bounds parallel stock fetches across the catalog.
const stockKPIConcurrency = 4

// FetchError reports a repository failure while loading a dataset. Callers
// see a single "failed to fetch data" message; the cause stays wrapped.
type FetchError struct {
	Dataset   models.Dataset
	AirlineID string
	Err       error
}

func (e *FetchError) Error() string {
	return "failed to fetch data"
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTransient returns true; storage failures may clear on retry.
func (e *FetchError) IsTransient() bool {
	return true
}

// ExpenseSeries is one expense category chart.
type ExpenseSeries struct {
	Key    string                 `json:"key"`
	Title  string                 `json:"title"`
	Values []models.CategoryValue `json:"values"`
}

// AnalyticsService loads airline datasets and runs the aggregation engine
type AnalyticsService struct {
	repo        repository.AirlineRepository
	regions     models.RegionTable
	expenseSpan analytics.YearSpan
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector
	now         func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	repo repository.AirlineRepository,
	regions models.RegionTable,
	expenseSpan analytics.YearSpan,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AnalyticsService {
	return &AnalyticsService{
		repo:        repo,
		regions:     regions,
		expenseSpan: expenseSpan,
		logger:      logger,
		metrics:     metricsCollector,
		now:         time.Now,
	}
}

// SetClock replaces the clock used for relative stock ranges.
func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// Airlines lists the tracked carriers.
func (s *AnalyticsService) Airlines() []models.Airline {
	return models.Airlines()
}

// Dataset returns the raw rows of one dataset for an airline.
func (s *AnalyticsService) Dataset(ctx context.Context, dataset models.Dataset, airlineID string) ([]models.Record, error) {
	data, err := s.load(ctx, airlineID, dataset)
	if err != nil {
		return nil, err
	}
	return data[dataset], nil
}

// YearlySeries sums metric per year over the region's airline data.
func (s *AnalyticsService) YearlySeries(ctx context.Context, airlineID, metric, region string) ([]models.YearValue, error) {
	if err := requireMetric(metric); err != nil {
		return nil, err
	}
	records, err := s.airlineData(ctx, airlineID)
	if err != nil {
		return nil, err
	}

	_, done := s.observe(ctx, "yearly_series", airlineID, len(records))
	defer done()

	filtered := analytics.FilterByRegionAndYear(records, region, models.All, s.regions)
	return analytics.AggregateByYear(filtered, metric), nil
}

// QuarterlySeries sums metric per year and quarter for the region.
func (s *AnalyticsService) QuarterlySeries(ctx context.Context, airlineID, metric, region string) ([]models.YearQuarterValue, error) {
	if err := requireMetric(metric); err != nil {
		return nil, err
	}
	records, err := s.airlineData(ctx, airlineID)
	if err != nil {
		return nil, err
	}

	_, done := s.observe(ctx, "quarterly_series", airlineID, len(records))
	defer done()

	return analytics.AggregateByYearAndQuarter(records, metric, region, s.regions), nil
}

// LoadFactor returns the yearly load factor for the region.
func (s *AnalyticsService) LoadFactor(ctx context.Context, airlineID, region string) ([]models.YearValue, error) {
	records, err := s.airlineData(ctx, airlineID)
	if err != nil {
		return nil, err
	}

	_, done := s.observe(ctx, "load_factor", airlineID, len(records))
	defer done()

	return analytics.AggregateLoadFactorByYear(records, region, s.regions), nil
}

// CASMvsRASM returns the paired unit cost and unit revenue series.
func (s *AnalyticsService) CASMvsRASM(ctx context.Context, airlineID, region string) ([]models.SeriesValue, error) {
	records, err := s.airlineData(ctx, airlineID)
	if err != nil {
		return nil, err
	}

	_, done := s.observe(ctx, "casm_rasm", airlineID, len(records))
	defer done()

	return analytics.AggregateCASMvsRASMByYear(records, region, s.regions), nil
}

// Yield returns the yearly average passenger yield.
func (s *AnalyticsService) Yield(ctx context.Context, airlineID, region string) ([]models.YearValue, error) {
	records, err := s.airlineData(ctx, airlineID)
	if err != nil {
		return nil, err
	}

	_, done := s.observe(ctx, "yield", airlineID, len(records))
	defer done()

	return analytics.AggregateYieldByYear(records, region, s.regions), nil
}

// TrafficKPIs returns the traffic headline figures for a region and year.
func (s *AnalyticsService) TrafficKPIs(ctx context.Context, airlineID, region, year string) (analytics.TrafficKPIs, error) {
	if err := validateYear(year); err != nil {
		return analytics.TrafficKPIs{}, err
	}
	records, err := s.airlineData(ctx, airlineID)
	if err != nil {
		return analytics.TrafficKPIs{}, err
	}

	_, done := s.observe(ctx, "traffic_kpis", airlineID, len(records))
	defer done()

	return analytics.ComputeTrafficKPIs(records, region, year, s.regions), nil
}

// OperatingKPIs returns fleet and expense headline figures.
func (s *AnalyticsService) OperatingKPIs(ctx context.Context, airlineID, year, category string) (analytics.OperatingKPIs, error) {
	if err := validateYear(year); err != nil {
		return analytics.OperatingKPIs{}, err
	}
	data, err := s.load(ctx, airlineID, models.DatasetOperatingData)
	if err != nil {
		return analytics.OperatingKPIs{}, err
	}
	records := data[models.DatasetOperatingData]

	_, done := s.observe(ctx, "operating_kpis", airlineID, len(records))
	defer done()

	return analytics.ComputeOperatingKPIs(records, year, category), nil
}

// Expenses returns one expense category series within the configured span.
func (s *AnalyticsService) Expenses(ctx context.Context, airlineID, key, category string) (ExpenseSeries, error) {
	expense, err := analytics.ExpenseCategoryByKey(key)
	if err != nil {
		return ExpenseSeries{}, err
	}
	data, err := s.load(ctx, airlineID, models.DatasetOperatingData)
	if err != nil {
		return ExpenseSeries{}, err
	}
	records := data[models.DatasetOperatingData]

	_, done := s.observe(ctx, "expenses_"+expense.Key, airlineID, len(records))
	defer done()

	return ExpenseSeries{
		Key:    expense.Key,
		Title:  expense.Title,
		Values: analytics.AggregateExpensesByYear(records, expense.Fields, category, s.expenseSpan),
	}, nil
}

// Fuel returns fuel consumption, price and expense share statistics.
func (s *AnalyticsService) Fuel(ctx context.Context, airlineID, category string) (analytics.FuelStatistics, error) {
	data, err := s.load(ctx, airlineID, models.DatasetOperatingData, models.DatasetOperatingDataExtended)
	if err != nil {
		return analytics.FuelStatistics{}, err
	}
	operating := data[models.DatasetOperatingData]
	extended := data[models.DatasetOperatingDataExtended]

	_, done := s.observe(ctx, "fuel", airlineID, len(operating)+len(extended))
	defer done()

	return analytics.ComputeFuelStatistics(operating, extended, category, s.expenseSpan), nil
}

// StockKPIs returns the latest price and trailing returns for an airline.
func (s *AnalyticsService) StockKPIs(ctx context.Context, airlineID string) (analytics.StockKPIs, error) {
	points, err := s.stockPoints(ctx, airlineID)
	if err != nil {
		return analytics.StockKPIs{}, err
	}

	_, done := s.observe(ctx, "stock_kpis", airlineID, len(points))
	defer done()

	airline, _ := models.LookupAirline(airlineID)
	kpis := analytics.ComputeStockKPIs(points)
	kpis.AirlineID = airline.ID
	kpis.Ticker = airline.Ticker
	kpis.NasdaqName = airline.NasdaqName
	return kpis, nil
}

// AllStockKPIs returns stock KPIs for every catalog airline that has stock
// data, in catalog order.
func (s *AnalyticsService) AllStockKPIs(ctx context.Context) ([]analytics.StockKPIs, error) {
	airlines := models.Airlines()
	results := make([]analytics.StockKPIs, len(airlines))
	found := make([]bool, len(airlines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(stockKPIConcurrency)
	for i, airline := range airlines {
		g.Go(func() error {
			kpis, err := s.StockKPIs(gctx, airline.ID)
			if err != nil {
				return err
			}
			if kpis.LatestDate != "" {
				results[i] = kpis
				found[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]analytics.StockKPIs, 0, len(airlines))
	for i := range results {
		if found[i] {
			out = append(out, results[i])
		}
	}
	return out, nil
}

// StockChart returns price points for a chart range.
func (s *AnalyticsService) StockChart(ctx context.Context, airlineID, rangeKey string) ([]analytics.StockChartPoint, error) {
	points, err := s.stockPoints(ctx, airlineID)
	if err != nil {
		return nil, err
	}

	_, done := s.observe(ctx, "stock_chart", airlineID, len(points))
	defer done()

	return analytics.StockChartSeries(points, rangeKey, s.now()), nil
}

// SeasonalStock returns monthly average prices for recent years.
func (s *AnalyticsService) SeasonalStock(ctx context.Context, airlineID string) (analytics.SeasonalSeries, error) {
	points, err := s.stockPoints(ctx, airlineID)
	if err != nil {
		return analytics.SeasonalSeries{}, err
	}

	_, done := s.observe(ctx, "stock_seasonal", airlineID, len(points))
	defer done()

	return analytics.SeasonalStockAverages(points, s.now()), nil
}

// Correlations relates yearly operating metrics to the average stock price.
func (s *AnalyticsService) Correlations(ctx context.Context, airlineID string) (analytics.CorrelationAnalysis, error) {
	data, err := s.load(ctx, airlineID, models.DatasetAirlineData, models.DatasetOperatingData, models.DatasetStockData)
	if err != nil {
		return analytics.CorrelationAnalysis{}, err
	}
	airline := data[models.DatasetAirlineData]
	operating := data[models.DatasetOperatingData]
	stock := analytics.StockPointsFromRecords(data[models.DatasetStockData])

	_, done := s.observe(ctx, "correlations", airlineID, len(airline)+len(operating)+len(stock))
	defer done()

	return analytics.AnalyzeStockCorrelations(airline, operating, stock), nil
}

// FinancialKPIs returns margin and balance sheet ratios for a period.
func (s *AnalyticsService) FinancialKPIs(ctx context.Context, airlineID, year, quarter string) (analytics.FinancialKPIs, error) {
	if err := validateYear(year); err != nil {
		return analytics.FinancialKPIs{}, err
	}
	if err := validateQuarter(quarter); err != nil {
		return analytics.FinancialKPIs{}, err
	}
	data, err := s.load(ctx, airlineID, models.DatasetAirlineData, models.DatasetBalanceSheets)
	if err != nil {
		return analytics.FinancialKPIs{}, err
	}
	airline := data[models.DatasetAirlineData]
	sheets := data[models.DatasetBalanceSheets]

	_, done := s.observe(ctx, "financial_kpis", airlineID, len(airline)+len(sheets))
	defer done()

	return analytics.ComputeFinancialKPIs(airline, sheets, year, quarter), nil
}

// FinancialSeries returns yearly income statement and balance sheet series.
func (s *AnalyticsService) FinancialSeries(ctx context.Context, airlineID string) (analytics.FinancialSeries, error) {
	data, err := s.load(ctx, airlineID, models.DatasetAirlineData, models.DatasetBalanceSheets)
	if err != nil {
		return analytics.FinancialSeries{}, err
	}
	airline := data[models.DatasetAirlineData]
	sheets := data[models.DatasetBalanceSheets]

	_, done := s.observe(ctx, "financial_series", airlineID, len(airline)+len(sheets))
	defer done()

	return analytics.ComputeFinancialSeries(airline, sheets), nil
}

// IncomeFlow returns the income statement flow for a year.
func (s *AnalyticsService) IncomeFlow(ctx context.Context, airlineID, year string) (analytics.IncomeStatementFlow, error) {
	if err := validateYear(year); err != nil {
		return analytics.IncomeStatementFlow{}, err
	}
	records, err := s.airlineData(ctx, airlineID)
	if err != nil {
		return analytics.IncomeStatementFlow{}, err
	}

	_, done := s.observe(ctx, "income_flow", airlineID, len(records))
	defer done()

	return analytics.ComputeIncomeStatementFlow(records, year), nil
}

func (s *AnalyticsService) airlineData(ctx context.Context, airlineID string) ([]models.Record, error) {
	data, err := s.load(ctx, airlineID, models.DatasetAirlineData)
	if err != nil {
		return nil, err
	}
	return data[models.DatasetAirlineData], nil
}

func (s *AnalyticsService) stockPoints(ctx context.Context, airlineID string) ([]models.StockPoint, error) {
	data, err := s.load(ctx, airlineID, models.DatasetStockData)
	if err != nil {
		return nil, err
	}
	return analytics.StockPointsFromRecords(data[models.DatasetStockData]), nil
}

// load validates the airline and fetches each dataset concurrently. Any
// failure cancels the remaining fetches and no partial result is returned.
func (s *AnalyticsService) load(ctx context.Context, airlineID string, datasets ...models.Dataset) (map[models.Dataset][]models.Record, error) {
	if _, err := models.LookupAirline(airlineID); err != nil {
		return nil, err
	}

	ctx, span := tracing.Tracer().Start(ctx, "analytics.load", trace.WithAttributes(
		attribute.String("airline.id", airlineID),
		attribute.Int("datasets", len(datasets)),
	))
	defer span.End()

	results := make([][]models.Record, len(datasets))
	g, gctx := errgroup.WithContext(ctx)
	for i, dataset := range datasets {
		g.Go(func() error {
			records, err := s.repo.ListRecords(gctx, dataset, airlineID)
			if err != nil {
				return &FetchError{Dataset: dataset, AirlineID: airlineID, Err: err}
			}
			results[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var fetchErr *FetchError
		fields := logging.Fields{"airline_id": airlineID}
		if errors.As(err, &fetchErr) {
			fields["dataset"] = string(fetchErr.Dataset)
		}
		s.logger.Error(ctx, "[ANALYTICS_FETCH_ERROR] Failed to load dataset", fields, errors.Unwrap(err))
		return nil, err
	}

	out := make(map[models.Dataset][]models.Record, len(datasets))
	for i, dataset := range datasets {
		out[dataset] = results[i]
	}
	return out, nil
}

// observe opens a span and starts the aggregation timer for one operation.
func (s *AnalyticsService) observe(ctx context.Context, operation, airlineID string, inputRecords int) (context.Context, func()) {
	ctx, span := tracing.Tracer().Start(ctx, "analytics."+operation, trace.WithAttributes(
		attribute.String("airline.id", airlineID),
		attribute.Int("input.records", inputRecords),
	))
	stop := s.metrics.StartAggregation(operation, inputRecords)

	s.logger.Debug(ctx, "[ANALYTICS_AGGREGATE] Running aggregation", logging.Fields{
		"operation":     operation,
		"airline_id":    airlineID,
		"input_records": inputRecords,
	})

	return ctx, func() {
		stop()
		span.End()
	}
}

func requireMetric(metric string) error {
	if metric == "" || metric == models.All {
		return &models.ValidationError{
			Field:   "metric",
			Value:   metric,
			Message: "metric query parameter is required",
		}
	}
	return nil
}

func validateYear(year string) error {
	if year == "" || year == models.All {
		return nil
	}
	if y, err := strconv.Atoi(year); err != nil || y <= 0 {
		return &models.ValidationError{
			Field:   "year",
			Value:   year,
			Message: fmt.Sprintf("invalid year %q", year),
		}
	}
	return nil
}

func validateQuarter(quarter string) error {
	if quarter == "" || quarter == models.All {
		return nil
	}
	if q, err := strconv.Atoi(quarter); err != nil || q < 1 || q > 4 {
		return &models.ValidationError{
			Field:   "quarter",
			Value:   quarter,
			Message: fmt.Sprintf("invalid quarter %q", quarter),
		}
	}
	return nil
}
