package analytics

import (
	"github.com/shopspring/decimal"

	"airline-analytics/internal/models"
)

// Series tags used by AggregateCASMvsRASMByYear.
const (
	SeriesCASM = "CASM"
	SeriesRASM = "RASM"
)

// AggregateLoadFactorByYear returns ΣRPM/ΣASM×100 per year. A year whose
// ASM total is zero reports 0.
func AggregateLoadFactorByYear(records []models.Record, region string, regions models.RegionTable) []models.YearValue {
	type totals struct {
		asm decimal.Decimal
		rpm decimal.Decimal
	}

	byYear := make(map[string]totals)
	for _, rec := range FilterByRegionAndYear(records, region, models.All, regions) {
		year, ok := rec.YearKey()
		if !ok {
			continue
		}
		t := byYear[year]
		t.asm = t.asm.Add(rec.Amount("ASM"))
		t.rpm = t.rpm.Add(rec.Amount("RPM"))
		byYear[year] = t
	}

	out := make([]models.YearValue, 0, len(byYear))
	for _, year := range sortedYears(byYear) {
		t := byYear[year]
		out = append(out, models.YearValue{Year: year, Value: percentOf(t.rpm, t.asm)})
	}
	return out
}

// AggregateCASMvsRASMByYear sums CASM and RASM per year after scaling each
// record by 10^6, emitting a CASM and a RASM point for every year.
func AggregateCASMvsRASMByYear(records []models.Record, region string, regions models.RegionTable) []models.SeriesValue {
	type totals struct {
		casm decimal.Decimal
		rasm decimal.Decimal
	}

	byYear := make(map[string]totals)
	for _, rec := range FilterByRegionAndYear(records, region, models.All, regions) {
		year, ok := rec.YearKey()
		if !ok {
			continue
		}
		t := byYear[year]
		t.casm = t.casm.Add(rec.Amount("CASM").Mul(million))
		t.rasm = t.rasm.Add(rec.Amount("RASM").Mul(million))
		byYear[year] = t
	}

	out := make([]models.SeriesValue, 0, 2*len(byYear))
	for _, year := range sortedYears(byYear) {
		t := byYear[year]
		out = append(out,
			models.SeriesValue{Year: year, Value: t.casm.InexactFloat64(), Type: SeriesCASM},
			models.SeriesValue{Year: year, Value: t.rasm.InexactFloat64(), Type: SeriesRASM},
		)
	}
	return out
}

// AggregateYieldByYear returns the mean YIELD per year scaled by 10^6 into
// cents per mile. Records without a yield count toward the mean as zero.
func AggregateYieldByYear(records []models.Record, region string, regions models.RegionTable) []models.YearValue {
	type totals struct {
		sum   decimal.Decimal
		count int64
	}

	byYear := make(map[string]totals)
	for _, rec := range FilterByRegionAndYear(records, region, models.All, regions) {
		year, ok := rec.YearKey()
		if !ok {
			continue
		}
		t := byYear[year]
		t.sum = t.sum.Add(rec.Amount("YIELD"))
		t.count++
		byYear[year] = t
	}

	out := make([]models.YearValue, 0, len(byYear))
	for _, year := range sortedYears(byYear) {
		t := byYear[year]
		value := 0.0
		if t.count > 0 {
			value = t.sum.Mul(million).Div(decimal.NewFromInt(t.count)).InexactFloat64()
		}
		out = append(out, models.YearValue{Year: year, Value: value})
	}
	return out
}
