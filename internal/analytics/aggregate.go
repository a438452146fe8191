package analytics

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"airline-analytics/internal/models"
)

var (
	hundred = decimal.NewFromInt(100)
	million = decimal.NewFromInt(1_000_000)
)

// AggregateByYear sums metric per YEAR. Records without a year are skipped,
// missing metric values count as zero and years without records are absent.
func AggregateByYear(records []models.Record, metric string) []models.YearValue {
	totals := make(map[string]decimal.Decimal)
	for _, rec := range records {
		year, ok := rec.YearKey()
		if !ok {
			continue
		}
		totals[year] = totals[year].Add(rec.Amount(metric))
	}

	out := make([]models.YearValue, 0, len(totals))
	for _, year := range sortedYears(totals) {
		out = append(out, models.YearValue{Year: year, Value: totals[year].InexactFloat64()})
	}
	return out
}

type quarterKey struct {
	year    string
	quarter string
}

// AggregateByYearAndQuarter sums metric per year and quarter for records in
// region. Records lacking either key are dropped.
func AggregateByYearAndQuarter(records []models.Record, metric, region string, regions models.RegionTable) []models.YearQuarterValue {
	filtered := FilterByRegionAndYear(records, region, models.All, regions)

	totals := make(map[quarterKey]decimal.Decimal)
	for _, rec := range filtered {
		year, ok := rec.YearKey()
		if !ok {
			continue
		}
		quarter, ok := rec.QuarterLabel()
		if !ok {
			continue
		}
		key := quarterKey{year: year, quarter: quarter}
		totals[key] = totals[key].Add(rec.Amount(metric))
	}

	out := make([]models.YearQuarterValue, 0, len(totals))
	for key, total := range totals {
		out = append(out, models.YearQuarterValue{
			Year:    key.year,
			Quarter: key.quarter,
			Value:   total.InexactFloat64(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return yearLess(out[i].Year, out[j].Year)
		}
		return out[i].Quarter < out[j].Quarter
	})
	return out
}

// sortedYears returns the keys of a per-year map in ascending numeric order.
func sortedYears[V any](m map[string]V) []string {
	years := make([]string, 0, len(m))
	for year := range m {
		years = append(years, year)
	}
	sort.Slice(years, func(i, j int) bool { return yearLess(years[i], years[j]) })
	return years
}

func yearLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}

// percentOf returns num/den*100, or 0 when den is zero.
func percentOf(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Mul(hundred).Div(den).InexactFloat64()
}

func ratioOf(num, den decimal.Decimal) models.Ratio {
	if den.IsZero() {
		return models.Ratio{}
	}
	return models.ValidRatio(num.Div(den).InexactFloat64())
}

func percentRatio(num, den decimal.Decimal) models.Ratio {
	if den.IsZero() {
		return models.Ratio{}
	}
	return models.ValidRatio(num.Mul(hundred).Div(den).InexactFloat64())
}
