package analytics

import (
	"github.com/shopspring/decimal"

	"airline-analytics/internal/models"
)

// FuelYear is one year of fuel consumption and spend.
type FuelYear struct {
	Year           string  `json:"year"`
	FuelGallons    float64 `json:"fuelGallons"`
	FuelExpense    float64 `json:"fuelExpense"`
	PricePerGallon float64 `json:"pricePerGallon"`
}

// FuelShare is fuel expense as a percentage of total operating expense.
type FuelShare struct {
	Year       string  `json:"year"`
	Percentage float64 `json:"percentage"`
}

// FuelStatistics holds the fuel tab series.
type FuelStatistics struct {
	Yearly       []FuelYear  `json:"yearly"`
	ExpenseShare []FuelShare `json:"expenseShare"`
}

// ComputeFuelStatistics aggregates fuel gallons and expense per year for the
// category, and the fuel share of operating expense for years present in both
// operating and extended operating data. The share ignores category since
// extended data is not broken down by aircraft type.
func ComputeFuelStatistics(operating, extended []models.Record, category string, span YearSpan) FuelStatistics {
	type fuel struct {
		gallons decimal.Decimal
		expense decimal.Decimal
	}

	byYear := make(map[string]fuel)
	fuelExpense := make(map[string]decimal.Decimal)
	for _, rec := range operating {
		if !inSpan(rec, span) {
			continue
		}
		year, ok := rec.YearKey()
		if !ok {
			continue
		}
		expense := rec.Amount("FUEL_FLY_OPS")
		fuelExpense[year] = fuelExpense[year].Add(expense)

		if !MatchesCategory(rec, category) {
			continue
		}
		f := byYear[year]
		f.gallons = f.gallons.Add(rec.Amount("AIRCRAFT_FUELS_921"))
		f.expense = f.expense.Add(expense)
		byYear[year] = f
	}

	stats := FuelStatistics{
		Yearly:       make([]FuelYear, 0, len(byYear)),
		ExpenseShare: []FuelShare{},
	}
	for _, year := range sortedYears(byYear) {
		f := byYear[year]
		ppg := 0.0
		if !f.gallons.IsZero() {
			ppg = f.expense.Div(f.gallons).InexactFloat64()
		}
		stats.Yearly = append(stats.Yearly, FuelYear{
			Year:           year,
			FuelGallons:    f.gallons.InexactFloat64(),
			FuelExpense:    f.expense.InexactFloat64(),
			PricePerGallon: ppg,
		})
	}

	opExpense := make(map[string]decimal.Decimal)
	for _, rec := range extended {
		if !inSpan(rec, span) {
			continue
		}
		if year, ok := rec.YearKey(); ok {
			opExpense[year] = opExpense[year].Add(rec.Amount("OP_EXPENSE"))
		}
	}
	for _, year := range sortedYears(fuelExpense) {
		total, ok := opExpense[year]
		if !ok {
			continue
		}
		stats.ExpenseShare = append(stats.ExpenseShare, FuelShare{
			Year:       year,
			Percentage: percentOf(fuelExpense[year], total),
		})
	}
	return stats
}
