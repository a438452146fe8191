// Package format renders analytics values for reports and chart labels.
package format

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotApplicable is shown for values that cannot be computed.
const NotApplicable = "N/A"

var compactUnits = []struct {
	scale  float64
	suffix string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// Compact abbreviates large magnitudes with K, M, B or T. Whole results drop
// the fraction ("2M"), others keep two decimals ("1.25B"). Values below a
// thousand are printed as is.
func Compact(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	for _, u := range compactUnits {
		if abs >= u.scale {
			n := v / u.scale
			if n == math.Trunc(n) {
				return strconv.FormatFloat(n, 'f', -1, 64) + u.suffix
			}
			return strconv.FormatFloat(n, 'f', 2, 64) + u.suffix
		}
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Percent renders a return or margin with two decimals, or N/A when the value
// is unavailable.
func Percent(v float64, valid bool) string {
	if !valid || math.IsNaN(v) || math.IsInf(v, 0) {
		return NotApplicable
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// Printer formats numbers with locale grouping.
type Printer struct {
	p *message.Printer
}

// NewPrinter returns a printer for tag, for example language.English.
func NewPrinter(tag language.Tag) *Printer {
	return &Printer{p: message.NewPrinter(tag)}
}

// Grouped renders v with thousands separators and the given decimals.
func (p *Printer) Grouped(v float64, decimals int) string {
	return p.p.Sprintf("%.*f", decimals, v)
}

// Count renders an integer count with thousands separators.
func (p *Printer) Count(n int64) string {
	return p.p.Sprintf("%d", n)
}
