package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// TestRecord_YearKey covers the value shapes the API and database produce
func TestRecord_YearKey(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
		wantOK bool
	}{
		{name: "int", record: Record{"YEAR": 2020}, want: "2020", wantOK: true},
		{name: "float", record: Record{"YEAR": 2020.0}, want: "2020", wantOK: true},
		{name: "json number", record: Record{"YEAR": json.Number("2021")}, want: "2021", wantOK: true},
		{name: "string", record: Record{"YEAR": "2019"}, want: "2019", wantOK: true},
		{name: "bytes", record: Record{"YEAR": []byte("2018")}, want: "2018", wantOK: true},
		{name: "missing", record: Record{"ASM": 1}, wantOK: false},
		{name: "nil", record: Record{"YEAR": nil}, wantOK: false},
		{name: "zero", record: Record{"YEAR": 0}, wantOK: false},
		{name: "empty string", record: Record{"YEAR": ""}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.record.YearKey()
			if ok != tt.wantOK {
				t.Fatalf("YearKey() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("YearKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecord_QuarterLabel(t *testing.T) {
	if got, ok := (Record{"QUARTER": 3}).QuarterLabel(); !ok || got != "Q3" {
		t.Errorf("QuarterLabel() = %q, %v, want Q3, true", got, ok)
	}
	if _, ok := (Record{"QUARTER": 0}).QuarterLabel(); ok {
		t.Error("QuarterLabel() should reject quarter 0")
	}
	if _, ok := (Record{}).QuarterLabel(); ok {
		t.Error("QuarterLabel() should reject missing quarter")
	}
}

func TestRecord_Amount(t *testing.T) {
	rec := Record{
		"A": json.Number("0.1"),
		"B": 0.2,
		"C": "12.5",
		"D": "n/a",
		"E": int64(7),
		"F": []byte("3.25"),
	}

	tests := []struct {
		field string
		want  string
	}{
		{"A", "0.1"},
		{"B", "0.2"},
		{"C", "12.5"},
		{"D", "0"},
		{"E", "7"},
		{"F", "3.25"},
		{"MISSING", "0"},
	}

	for _, tt := range tests {
		if got := rec.Amount(tt.field).String(); got != tt.want {
			t.Errorf("Amount(%s) = %s, want %s", tt.field, got, tt.want)
		}
	}

	sum := rec.Amount("A").Add(rec.Amount("B"))
	if sum.String() != "0.3" {
		t.Errorf("0.1 + 0.2 = %s, want exact 0.3", sum)
	}
}

func TestRecord_Time(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	for _, v := range []any{"2024-03-15", "2024-03-15T00:00:00Z", want, []byte("2024-03-15")} {
		got, ok := Record{"Date": v}.Time("Date")
		if !ok {
			t.Errorf("Time(%v) failed to parse", v)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("Time(%v) = %v, want %v", v, got, want)
		}
	}

	if _, ok := (Record{"Date": "yesterday"}).Time("Date"); ok {
		t.Error("Time() should reject unparseable dates")
	}
}

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"YEAR": 2020, "OP_REVENUES": 123456789012.34, "REGION": "D"}`))
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}
	if got := rec.Amount("OP_REVENUES").String(); got != "123456789012.34" {
		t.Errorf("OP_REVENUES = %s, want 123456789012.34", got)
	}
	if got, _ := rec.Text("REGION"); got != "D" {
		t.Errorf("REGION = %q, want D", got)
	}

	_, err = DecodeRecord([]byte(`not json`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("DecodeRecord() error = %v, want ValidationError", err)
	}
	if verr.IsTransient() {
		t.Error("ValidationError should not be transient")
	}
}

func TestRegionTable(t *testing.T) {
	regions := DefaultRegions

	if name, ok := regions.Name("D"); !ok || name != "Domestic" {
		t.Errorf("Name(D) = %q, %v", name, ok)
	}
	if code, ok := regions.Code("Latin America"); !ok || code != "L" {
		t.Errorf("Code(Latin America) = %q, %v", code, ok)
	}
	for _, v := range []string{"P", "Pacific"} {
		if code, ok := regions.Resolve(v); !ok || code != "P" {
			t.Errorf("Resolve(%s) = %q, %v", v, code, ok)
		}
	}
	if _, ok := regions.Resolve("X"); ok {
		t.Error("Resolve(X) should not match")
	}

	// Callers get a copy of the entries.
	entries := regions.Regions()
	entries[0].Name = "Changed"
	if name, _ := regions.Name(entries[0].Code); name == "Changed" {
		t.Error("Regions() exposed internal state")
	}
	if len(entries) != 5 {
		t.Errorf("len(Regions()) = %d, want 5", len(entries))
	}
}

func TestLookupAirline(t *testing.T) {
	a, err := LookupAirline("delta-airlines")
	if err != nil {
		t.Fatalf("LookupAirline() error = %v", err)
	}
	if a.Ticker != "DAL" {
		t.Errorf("Ticker = %s, want DAL", a.Ticker)
	}

	if _, err := LookupAirlineByTicker("luv"); err != nil {
		t.Errorf("LookupAirlineByTicker(luv) error = %v", err)
	}

	_, err = LookupAirline("pan-am")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("LookupAirline(pan-am) error = %v, want NotFoundError", err)
	}
	if nf.Error() != "airline not found: pan-am" {
		t.Errorf("Error() = %q", nf.Error())
	}
}

func TestParseDataset(t *testing.T) {
	for _, d := range Datasets() {
		got, err := ParseDataset(string(d))
		if err != nil || got != d {
			t.Errorf("ParseDataset(%s) = %s, %v", d, got, err)
		}
	}
	if _, err := ParseDataset("fleet-data"); err == nil {
		t.Error("ParseDataset(fleet-data) should fail")
	}
}

func TestRatio_JSON(t *testing.T) {
	tests := []struct {
		name  string
		ratio Ratio
		want  string
	}{
		{name: "valid", ratio: ValidRatio(12.5), want: `12.5`},
		{name: "zero denominator", ratio: RatioOf(1, 0), want: `"N/A"`},
		{name: "scaled", ratio: RatioOf(1, 4).Scale(100), want: `25`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.ratio)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}

			var back Ratio
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if back != tt.ratio {
				t.Errorf("round trip = %+v, want %+v", back, tt.ratio)
			}
		})
	}
}
