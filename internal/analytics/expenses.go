package analytics

import (
	"github.com/shopspring/decimal"

	"airline-analytics/internal/models"
)

// FieldLabel pairs a record field with its chart label.
type FieldLabel struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

// FieldMap is an ordered list of fields. Order decides stacked layer order.
type FieldMap []FieldLabel

// YearSpan is an inclusive range of years.
type YearSpan struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// DefaultExpenseSpan covers the years of published P-52/P-5.2 schedules.
var DefaultExpenseSpan = YearSpan{From: 2001, To: 2024}

// Contains reports whether year lies in the span.
func (s YearSpan) Contains(year int) bool {
	return year >= s.From && year <= s.To
}

// ExpenseCategory is one operating expense breakdown chart.
type ExpenseCategory struct {
	Key    string   `json:"key"`
	Title  string   `json:"title"`
	Fields FieldMap `json:"fields"`
}

var expenseCategories = []ExpenseCategory{
	{
		Key:   "crew",
		Title: "Expenses on Crew",
		Fields: FieldMap{
			{Field: "PILOT_FLY_OPS", Label: "Pilots And Copilots"},
			{Field: "TRAIN_FLY_OPS", Label: "Trainees And Instructors"},
			{Field: "PERS_EXP_FLY_OPS", Label: "Personnel Expenses"},
			{Field: "BENEFITS_FLY_OPS", Label: "Employee Benefits And Pensions"},
			{Field: "PAY_TAX_FLY_OPS", Label: "Taxes-Payroll"},
		},
	},
	{
		Key:   "fuel-oil",
		Title: "Fuel & Oil",
		Fields: FieldMap{
			{Field: "FUEL_FLY_OPS", Label: "Aircraft Fuel"},
			{Field: "OIL_FLY_OPS", Label: "Aircraft Oil"},
		},
	},
	{
		Key:   "maintenance",
		Title: "Direct Maintenance",
		Fields: FieldMap{
			{Field: "AIRFRAME_LABOR", Label: "Labor-Airframes"},
			{Field: "ENGINE_LABOR", Label: "Labor-Aircraft Engines"},
			{Field: "AIRFRAME_REPAIR", Label: "Airframe Repairs"},
			{Field: "ENGINE_REPAIRS", Label: "Aircraft Engine Repairs"},
			{Field: "AP_MT_BURDEN", Label: "Burden"},
		},
	},
	{
		Key:   "materials",
		Title: "Materials",
		Fields: FieldMap{
			{Field: "AIRFRAME_MATERIALS", Label: "Airframes"},
			{Field: "ENGINE_MATERIALS", Label: "Aircraft Engines"},
		},
	},
	{
		Key:   "depreciation",
		Title: "Depreciation",
		Fields: FieldMap{
			{Field: "AIRFRAME_DEP", Label: "Airframes"},
			{Field: "ENGINE_DEP", Label: "Aircraft Engines"},
			{Field: "PARTS_DEP", Label: "Airframe Parts"},
			{Field: "ENG_PARTS_DEP", Label: "Aircraft Engine Parts"},
			{Field: "OTH_FLT_EQUIP_DEP", Label: "Other Flight Equipment"},
		},
	},
}

// ExpenseCategories returns the operating expense breakdowns in display order.
func ExpenseCategories() []ExpenseCategory {
	out := make([]ExpenseCategory, len(expenseCategories))
	for i, c := range expenseCategories {
		c.Fields = append(FieldMap(nil), c.Fields...)
		out[i] = c
	}
	return out
}

// ExpenseCategoryByKey looks up a breakdown by key.
func ExpenseCategoryByKey(key string) (ExpenseCategory, error) {
	for _, c := range ExpenseCategories() {
		if c.Key == key {
			return c, nil
		}
	}
	return ExpenseCategory{}, &models.NotFoundError{Resource: "expense category", ID: key}
}

// AggregateExpensesByYear sums every field of fields per year for records
// inside span and matching category. Each year yields one row per field in
// the field map's order; years are ascending.
func AggregateExpensesByYear(records []models.Record, fields FieldMap, category string, span YearSpan) []models.CategoryValue {
	byYear := make(map[string][]decimal.Decimal)
	for _, rec := range records {
		if !inSpan(rec, span) || !MatchesCategory(rec, category) {
			continue
		}
		year, ok := rec.YearKey()
		if !ok {
			continue
		}

		totals, ok := byYear[year]
		if !ok {
			totals = make([]decimal.Decimal, len(fields))
			byYear[year] = totals
		}
		for i, f := range fields {
			totals[i] = totals[i].Add(rec.Amount(f.Field))
		}
	}

	out := make([]models.CategoryValue, 0, len(byYear)*len(fields))
	for _, year := range sortedYears(byYear) {
		for i, f := range fields {
			out = append(out, models.CategoryValue{
				Year:  year,
				Type:  f.Label,
				Value: byYear[year][i].InexactFloat64(),
			})
		}
	}
	return out
}

func inSpan(rec models.Record, span YearSpan) bool {
	year, ok := rec.Year()
	return ok && span.Contains(year)
}
