package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"airline-analytics/internal/models"
)

// ErrLengthMismatch is returned when paired series differ in length.
var ErrLengthMismatch = errors.New("series lengths differ")

func checkLengths(x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	return nil
}

// Pearson returns the product-moment correlation of x and y. It is 0 when
// either series is empty or has zero variance.
func Pearson(x, y []float64) (float64, error) {
	if err := checkLengths(x, y); err != nil {
		return 0, err
	}
	n := len(x)
	if n == 0 {
		return 0, nil
	}

	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)

	var num, varX, varY float64
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		num += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, nil
	}
	return num / math.Sqrt(varX*varY), nil
}

// KendallTauB counts concordant and discordant pairs over all index pairs:
// tau = (C - D) / (n(n-1)/2). Pairs tied in either series count as neither.
func KendallTauB(x, y []float64) (float64, error) {
	if err := checkLengths(x, y); err != nil {
		return 0, err
	}
	n := len(x)
	if n < 2 {
		return 0, nil
	}

	var concordant, discordant int
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			switch s := (x[i] - x[j]) * (y[i] - y[j]); {
			case s > 0:
				concordant++
			case s < 0:
				discordant++
			}
		}
	}
	return float64(concordant-discordant) / (0.5 * float64(n) * float64(n-1)), nil
}

// Spearman applies Pearson to the ranks of x and y. Tied values take
// consecutive ranks in input order rather than their average rank.
func Spearman(x, y []float64) (float64, error) {
	if err := checkLengths(x, y); err != nil {
		return 0, err
	}
	return Pearson(ranks(x), ranks(y))
}

func ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	out := make([]float64, len(values))
	for rank, i := range idx {
		out[i] = float64(rank + 1)
	}
	return out
}

// MetricStockPrice tags the average stock price in correlation series.
const MetricStockPrice = "STOCK_PRICE"

// CorrelationMetrics lists the yearly metrics compared against stock price.
var CorrelationMetrics = FieldMap{
	{Field: "ASM", Label: "ASM"},
	{Field: "RPM", Label: "RPM"},
	{Field: "LOAD_FACTOR", Label: "Load Factor"},
	{Field: "YIELD", Label: "Yield"},
	{Field: "CASM", Label: "CASM"},
	{Field: "RASM", Label: "RASM"},
	{Field: "PRASM", Label: "PRASM"},
	{Field: "OP_REVENUES", Label: "Operating Revenue"},
	{Field: "OP_EXPENSES", Label: "Operating Expense"},
	{Field: "TRANS_REV_PAX", Label: "Trans Rev Pax"},
	{Field: "FUEL_FLY_OPS", Label: "Fuel Expense"},
}

// rateMetrics are averaged per year instead of summed.
var rateMetrics = map[string]bool{
	"LOAD_FACTOR": true,
	"YIELD":       true,
	"CASM":        true,
	"RASM":        true,
	"PRASM":       true,
}

// CorrelationResult is one coefficient between a metric and stock price.
type CorrelationResult struct {
	Metric string  `json:"metric"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
}

// MetricPoint is one yearly value of a metric in the merged series.
type MetricPoint struct {
	Year   string  `json:"year"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// CorrelationAnalysis compares yearly airline metrics with the yearly
// average stock price.
type CorrelationAnalysis struct {
	Years    []string            `json:"years"`
	Pearson  []CorrelationResult `json:"pearson"`
	Kendall  []CorrelationResult `json:"kendall"`
	Spearman []CorrelationResult `json:"spearman"`
	Series   []MetricPoint       `json:"series"`
}

// AnalyzeStockCorrelations merges traffic, operating and stock data by year
// and correlates each metric with stock price. Only years with a stock price
// are used, and a metric is compared only when every such year has a value.
func AnalyzeStockCorrelations(airline, operating []models.Record, stock []models.StockPoint) CorrelationAnalysis {
	merged := make(map[string]map[string]float64)
	for _, yv := range AverageStockPriceByYear(stock) {
		merged[yv.Year] = map[string]float64{MetricStockPrice: yv.Value}
	}

	for year, values := range yearlyTrafficMetrics(airline) {
		if row, ok := merged[year]; ok {
			for m, v := range values {
				row[m] = v
			}
		}
	}
	for _, yv := range AggregateByYear(operating, "FUEL_FLY_OPS") {
		if row, ok := merged[yv.Year]; ok {
			row["FUEL_FLY_OPS"] = yv.Value
		}
	}

	years := sortedYears(merged)
	analysis := CorrelationAnalysis{
		Years:    years,
		Pearson:  []CorrelationResult{},
		Kendall:  []CorrelationResult{},
		Spearman: []CorrelationResult{},
		Series:   []MetricPoint{},
	}
	if len(years) == 0 {
		return analysis
	}

	prices := make([]float64, len(years))
	for i, year := range years {
		prices[i] = merged[year][MetricStockPrice]
	}

	for _, m := range CorrelationMetrics {
		values, ok := column(merged, years, m.Field)
		if !ok {
			continue
		}
		// Lengths always match here.
		p, _ := Pearson(prices, values)
		k, _ := KendallTauB(prices, values)
		s, _ := Spearman(prices, values)
		analysis.Pearson = append(analysis.Pearson, CorrelationResult{Metric: m.Field, Label: m.Label, Value: p})
		analysis.Kendall = append(analysis.Kendall, CorrelationResult{Metric: m.Field, Label: m.Label, Value: k})
		analysis.Spearman = append(analysis.Spearman, CorrelationResult{Metric: m.Field, Label: m.Label, Value: s})
	}

	for _, year := range years {
		row := merged[year]
		analysis.Series = append(analysis.Series, MetricPoint{Year: year, Metric: MetricStockPrice, Value: row[MetricStockPrice]})
		for _, m := range CorrelationMetrics {
			if v, ok := row[m.Field]; ok {
				analysis.Series = append(analysis.Series, MetricPoint{Year: year, Metric: m.Field, Value: v})
			}
		}
	}
	return analysis
}

func column(merged map[string]map[string]float64, years []string, metric string) ([]float64, bool) {
	values := make([]float64, len(years))
	for i, year := range years {
		v, ok := merged[year][metric]
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// yearlyTrafficMetrics sums the correlation metrics per year, averaging rate
// metrics over the year's record count.
func yearlyTrafficMetrics(records []models.Record) map[string]map[string]float64 {
	type acc struct {
		count  int64
		totals map[string]decimal.Decimal
	}

	byYear := make(map[string]*acc)
	for _, rec := range records {
		year, ok := rec.YearKey()
		if !ok {
			continue
		}
		a, ok := byYear[year]
		if !ok {
			a = &acc{totals: make(map[string]decimal.Decimal)}
			byYear[year] = a
		}
		a.count++
		for _, m := range CorrelationMetrics {
			if m.Field == "FUEL_FLY_OPS" {
				continue
			}
			a.totals[m.Field] = a.totals[m.Field].Add(rec.Amount(m.Field))
		}
	}

	out := make(map[string]map[string]float64, len(byYear))
	for year, a := range byYear {
		row := make(map[string]float64, len(a.totals))
		for m, total := range a.totals {
			if rateMetrics[m] {
				total = total.Div(decimal.NewFromInt(a.count))
			}
			row[m] = total.InexactFloat64()
		}
		out[year] = row
	}
	return out
}
