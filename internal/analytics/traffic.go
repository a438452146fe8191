package analytics

import (
	"github.com/shopspring/decimal"

	"airline-analytics/internal/models"
)

// TrafficKPIs summarises T-100 traffic and capacity records.
type TrafficKPIs struct {
	Departures  float64 `json:"departures"`
	Distance    float64 `json:"distance"`
	Passengers  float64 `json:"passengers"`
	LoadFactor  float64 `json:"loadFactor"`
	TransRevPax float64 `json:"transRevPax"`
	OpExpenses  float64 `json:"opExpenses"`
	OpRevenue   float64 `json:"opRevenue"`
	AirTime     float64 `json:"airTime"`
}

// ComputeTrafficKPIs totals records matching region and year. Load factor is
// rounded to two decimal places.
func ComputeTrafficKPIs(records []models.Record, region, year string, regions models.RegionTable) TrafficKPIs {
	var departures, distance, passengers, asm, rpm, pax, opExp, opRev, airTime decimal.Decimal

	for _, rec := range FilterByRegionAndYear(records, region, year, regions) {
		departures = departures.Add(rec.Amount("DEPARTURES_PERFORMED"))
		distance = distance.Add(rec.Amount("DISTANCE"))
		passengers = passengers.Add(rec.Amount("PASSENGERS"))
		asm = asm.Add(rec.Amount("ASM"))
		rpm = rpm.Add(rec.Amount("RPM"))
		pax = pax.Add(rec.Amount("TRANS_REV_PAX"))
		opExp = opExp.Add(rec.Amount("OP_EXPENSES"))
		opRev = opRev.Add(rec.Amount("OP_REVENUES"))
		airTime = airTime.Add(rec.Amount("AIR_TIME"))
	}

	loadFactor := 0.0
	if !asm.IsZero() {
		loadFactor = rpm.Mul(hundred).Div(asm).Round(2).InexactFloat64()
	}

	return TrafficKPIs{
		Departures:  departures.InexactFloat64(),
		Distance:    distance.InexactFloat64(),
		Passengers:  passengers.InexactFloat64(),
		LoadFactor:  loadFactor,
		TransRevPax: pax.InexactFloat64(),
		OpExpenses:  opExp.InexactFloat64(),
		OpRevenue:   opRev.InexactFloat64(),
		AirTime:     airTime.InexactFloat64(),
	}
}
