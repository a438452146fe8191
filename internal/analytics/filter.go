// Package analytics turns flat airline records into chart-ready series and
// KPIs. Every function is pure: inputs are never mutated and each call starts
// from empty accumulators, so results are identical across repeated calls.
// Sums touching money or large counts are accumulated with exact decimals.
package analytics

import (
	"airline-analytics/internal/models"
)

// MatchesRegion reports whether a record belongs to region. Both the record's
// REGION field and region may be a code or a full name; unmapped values never
// match. models.All matches every record.
func MatchesRegion(rec models.Record, region string, regions models.RegionTable) bool {
	if region == models.All {
		return true
	}

	raw, ok := rec.Text(models.FieldRegion)
	if !ok {
		return false
	}

	recCode, ok := regions.Resolve(raw)
	if !ok {
		return false
	}
	wantCode, ok := regions.Resolve(region)
	if !ok {
		return false
	}
	return recCode == wantCode
}

// MatchesYear compares the record's YEAR rendering with year as strings.
func MatchesYear(rec models.Record, year string) bool {
	return matchesText(rec, models.FieldYear, year)
}

// MatchesQuarter compares the record's QUARTER rendering with quarter.
func MatchesQuarter(rec models.Record, quarter string) bool {
	return matchesText(rec, models.FieldQuarter, quarter)
}

// MatchesCategory compares AIRCRAFT_CATEGORIZATION with category.
func MatchesCategory(rec models.Record, category string) bool {
	return matchesText(rec, models.FieldAircraftCategory, category)
}

func matchesText(rec models.Record, field, want string) bool {
	if want == models.All {
		return true
	}
	got, ok := rec.Text(field)
	return ok && got == want
}

// FilterByRegionAndYear keeps records matching both the region and the year.
func FilterByRegionAndYear(records []models.Record, region, year string, regions models.RegionTable) []models.Record {
	return filter(records, func(rec models.Record) bool {
		return MatchesRegion(rec, region, regions) && MatchesYear(rec, year)
	})
}

// FilterByYearAndCategory keeps operating records matching year and aircraft category.
func FilterByYearAndCategory(records []models.Record, year, category string) []models.Record {
	return filter(records, func(rec models.Record) bool {
		return MatchesYear(rec, year) && MatchesCategory(rec, category)
	})
}

// FilterByYearAndQuarter keeps financial records matching year and quarter.
func FilterByYearAndQuarter(records []models.Record, year, quarter string) []models.Record {
	return filter(records, func(rec models.Record) bool {
		return MatchesYear(rec, year) && MatchesQuarter(rec, quarter)
	})
}

func filter(records []models.Record, keep func(models.Record) bool) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}
