package models

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// All is the filter value that matches every record.
const All = "All"

// Well-known record fields used as grouping keys and filters.
const (
	FieldYear             = "YEAR"
	FieldQuarter          = "QUARTER"
	FieldRegion           = "REGION"
	FieldAircraftCategory = "AIRCRAFT_CATEGORIZATION"
	FieldDate             = "Date"
	FieldAdjClose         = "Adj Close"
	FieldVolume           = "Volume"
)

// Record is one flat row of a dataset, mapping field name to a numeric or
// string value. Records are read-only inputs to the analytics layer.
type Record map[string]any

// Has reports whether the field is present and non-null.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// Text renders a field the way it is compared in filters. Numbers are
// rendered in their shortest decimal form, so 2020.0 becomes "2020".
func (r Record) Text(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}

	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case time.Time:
		return x.Format(time.RFC3339), true
	}

	d, ok := toDecimal(v)
	if !ok {
		return "", false
	}
	return d.String(), true
}

// YearKey returns the record's year as a grouping key. Records whose year is
// missing, empty or zero have no key.
func (r Record) YearKey() (string, bool) {
	return r.nonZeroText(FieldYear)
}

// Year returns the record's year as an integer.
func (r Record) Year() (int, bool) {
	d, ok := r.Decimal(FieldYear)
	if !ok || d.IsZero() || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// QuarterLabel returns "Q1".."Q4" style labels. Records without a quarter
// have no label.
func (r Record) QuarterLabel() (string, bool) {
	q, ok := r.nonZeroText(FieldQuarter)
	if !ok {
		return "", false
	}
	return "Q" + q, true
}

// Decimal returns the field as an exact decimal. The boolean is false when
// the field is missing or not numeric.
func (r Record) Decimal(field string) (decimal.Decimal, bool) {
	v, ok := r[field]
	if !ok {
		return decimal.Zero, false
	}
	return toDecimal(v)
}

// Amount returns the field as an exact decimal, treating missing or
// non-numeric values as zero.
func (r Record) Amount(field string) decimal.Decimal {
	d, ok := r.Decimal(field)
	if !ok {
		return decimal.Zero
	}
	return d
}

// Float returns the field as a float64, zero when missing.
func (r Record) Float(field string) float64 {
	return r.Amount(field).InexactFloat64()
}

// Time parses a date field. Accepts time.Time values and the date layouts the
// market data feed uses.
func (r Record) Time(field string) (time.Time, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return time.Time{}, false
	}

	var s string
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return time.Time{}, false
	}

	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
}

func (r Record) nonZeroText(field string) (string, bool) {
	s, ok := r.Text(field)
	if !ok || s == "" {
		return "", false
	}
	if d, ok := r.Decimal(field); ok && d.IsZero() {
		return "", false
	}
	return s, true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int8:
		return decimal.NewFromInt(int64(x)), true
	case int16:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt32(x), true
	case int64:
		return decimal.NewFromInt(x), true
	case uint:
		return decimal.NewFromUint64(uint64(x)), true
	case uint8:
		return decimal.NewFromInt(int64(x)), true
	case uint16:
		return decimal.NewFromInt(int64(x)), true
	case uint32:
		return decimal.NewFromInt(int64(x)), true
	case uint64:
		return decimal.NewFromUint64(x), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		return d, err == nil
	case []byte:
		d, err := decimal.NewFromString(strings.TrimSpace(string(x)))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// DecodeRecord decodes a JSON object into a Record, keeping numbers exact.
func DecodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, &ValidationError{
			Field:   "payload",
			Value:   truncate(string(data), 64),
			Message: "invalid record payload: " + err.Error(),
		}
	}
	return rec, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
