package format

import (
	"math"
	"testing"

	"golang.org/x/text/language"
)

func TestCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{12.5, "12.5"},
		{1000, "1K"},
		{1500, "1.50K"},
		{2_000_000, "2M"},
		{1_234_567_890, "1.23B"},
		{3e12, "3T"},
		{-2_500_000, "-2.50M"},
	}

	for _, tt := range tests {
		if got := Compact(tt.in); got != tt.want {
			t.Errorf("Compact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(20, true); got != "20.00%" {
		t.Errorf("Percent(20) = %q", got)
	}
	if got := Percent(-3.456, true); got != "-3.46%" {
		t.Errorf("Percent(-3.456) = %q", got)
	}
	if got := Percent(1, false); got != NotApplicable {
		t.Errorf("Percent(invalid) = %q, want N/A", got)
	}
	if got := Percent(math.Inf(1), true); got != NotApplicable {
		t.Errorf("Percent(+Inf) = %q, want N/A", got)
	}
}

func TestPrinter(t *testing.T) {
	p := NewPrinter(language.English)

	if got := p.Count(1234567); got != "1,234,567" {
		t.Errorf("Count() = %q, want 1,234,567", got)
	}
	if got := p.Grouped(1234.5, 2); got != "1,234.50" {
		t.Errorf("Grouped() = %q, want 1,234.50", got)
	}
}
