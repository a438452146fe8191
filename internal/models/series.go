package models

import (
	"encoding/json"
	"math"
	"time"
)

// YearValue is one point of a yearly series.
type YearValue struct {
	Year  string  `json:"YEAR"`
	Value float64 `json:"value"`
}

// YearQuarterValue is one point of a quarterly series.
type YearQuarterValue struct {
	Year    string  `json:"YEAR"`
	Quarter string  `json:"QUARTER"`
	Value   float64 `json:"value"`
}

// SeriesValue is one point of a yearly multi-series chart such as CASM vs RASM.
type SeriesValue struct {
	Year  string  `json:"YEAR"`
	Value float64 `json:"value"`
	Type  string  `json:"type"`
}

// CategoryValue is one stacked layer of a yearly breakdown chart.
type CategoryValue struct {
	Year  string  `json:"year"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// StockPoint is one daily market observation.
type StockPoint struct {
	Date     time.Time `json:"date"`
	AdjClose float64   `json:"price"`
	Volume   int64     `json:"volume"`
}

// NotApplicable is how an unavailable Ratio is rendered.
const NotApplicable = "N/A"

// Ratio is a derived percentage or ratio that may be unavailable, for
// example when its denominator is zero.
type Ratio struct {
	Value float64
	Valid bool
}

// RatioOf returns num/den, or an invalid ratio when den is zero or the
// result is not finite.
func RatioOf(num, den float64) Ratio {
	if den == 0 {
		return Ratio{}
	}
	return ValidRatio(num / den)
}

// ValidRatio wraps a finite value.
func ValidRatio(v float64) Ratio {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Ratio{}
	}
	return Ratio{Value: v, Valid: true}
}

// Scale multiplies a valid ratio by f.
func (r Ratio) Scale(f float64) Ratio {
	if !r.Valid {
		return r
	}
	return ValidRatio(r.Value * f)
}

// MarshalJSON renders invalid ratios as "N/A".
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return json.Marshal(NotApplicable)
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number or "N/A".
func (r *Ratio) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = Ratio{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = ValidRatio(v)
	return nil
}
