package analytics

import (
	"github.com/shopspring/decimal"

	"airline-analytics/internal/models"
)

// OperatingKPIs summarises P-5.2 operating expense and fleet data.
type OperatingKPIs struct {
	TotalAirOpExpenses            float64 `json:"totalAirOpExpenses"`
	TotalFlyOpExpenses            float64 `json:"totalFlyOpExpenses"`
	TotalFuelOilExpense           float64 `json:"totalFuelOilExpense"`
	TotalFlightMaintenanceExpense float64 `json:"totalFlightMaintenanceExpense"`
	OperatingFleet                float64 `json:"operatingFleet"`
	AirborneHours                 float64 `json:"airborneHours"`
	AircraftFuelGallons           float64 `json:"aircraftFuelGallons"`
	DeparturesPerAircraft         float64 `json:"departuresPerAircraft"`
}

// ComputeOperatingKPIs totals operating records matching year and category.
//
// Operating fleet is a time-weighted size estimate: aircraft-days equipped
// divided by the calendar days of every distinct year in the filtered set.
func ComputeOperatingKPIs(records []models.Record, year, category string) OperatingKPIs {
	var (
		airOp, flyOp, fuelOil, maint decimal.Decimal
		airDays, hours, gallons      decimal.Decimal
		departures                   decimal.Decimal
	)
	years := make(map[int]struct{})

	for _, rec := range FilterByYearAndCategory(records, year, category) {
		airOp = airOp.Add(rec.Amount("TOT_AIR_OP_EXPENSES"))
		flyOp = flyOp.Add(rec.Amount("TOT_FLY_OPS"))
		fuelOil = fuelOil.Add(rec.Amount("FUEL_FLY_OPS")).Add(rec.Amount("OIL_FLY_OPS"))
		maint = maint.Add(rec.Amount("TOT_DIR_MAINT"))
		airDays = airDays.Add(rec.Amount("AIR_DAYS_EQUIP_810"))
		hours = hours.Add(rec.Amount("HOURS_AIRBORNE_650"))
		gallons = gallons.Add(rec.Amount("AIRCRAFT_FUELS_921"))
		departures = departures.Add(rec.Amount("REV_ACRFT_DEP_PERF_510"))

		if y, ok := rec.Year(); ok {
			years[y] = struct{}{}
		}
	}

	var totalDays int64
	for y := range years {
		totalDays += DaysInYear(y)
	}

	kpis := OperatingKPIs{
		TotalAirOpExpenses:            airOp.InexactFloat64(),
		TotalFlyOpExpenses:            flyOp.InexactFloat64(),
		TotalFuelOilExpense:           fuelOil.InexactFloat64(),
		TotalFlightMaintenanceExpense: maint.InexactFloat64(),
		AirborneHours:                 hours.InexactFloat64(),
		AircraftFuelGallons:           gallons.InexactFloat64(),
	}
	if totalDays == 0 {
		return kpis
	}

	fleet := airDays.Div(decimal.NewFromInt(totalDays))
	kpis.OperatingFleet = fleet.InexactFloat64()
	if !fleet.IsZero() {
		kpis.DeparturesPerAircraft = departures.Div(fleet).InexactFloat64()
	}
	return kpis
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int64 {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}
