package analytics

import (
	"errors"
	"testing"

	"airline-analytics/internal/models"
)

func TestCorrelationStatistics(t *testing.T) {
	type statFunc func(x, y []float64) (float64, error)
	stats := map[string]statFunc{
		"pearson":  Pearson,
		"kendall":  KendallTauB,
		"spearman": Spearman,
	}

	tests := []struct {
		name string
		x, y []float64
		want map[string]float64
	}{
		{
			name: "perfect positive",
			x:    []float64{1, 2, 3},
			y:    []float64{2, 4, 6},
			want: map[string]float64{"pearson": 1, "kendall": 1, "spearman": 1},
		},
		{
			name: "perfect negative",
			x:    []float64{1, 2, 3},
			y:    []float64{3, 2, 1},
			want: map[string]float64{"pearson": -1, "kendall": -1, "spearman": -1},
		},
		{
			name: "monotonic but not linear",
			x:    []float64{1, 2, 3, 4},
			y:    []float64{1, 10, 100, 1000},
			want: map[string]float64{"kendall": 1, "spearman": 1},
		},
		{
			name: "zero variance",
			x:    []float64{5, 5, 5},
			y:    []float64{1, 2, 3},
			want: map[string]float64{"pearson": 0, "kendall": 0},
		},
		{
			name: "empty",
			want: map[string]float64{"pearson": 0, "kendall": 0, "spearman": 0},
		},
		{
			name: "single point",
			x:    []float64{1},
			y:    []float64{2},
			want: map[string]float64{"kendall": 0},
		},
	}

	for _, tt := range tests {
		for stat, want := range tt.want {
			t.Run(tt.name+"/"+stat, func(t *testing.T) {
				got, err := stats[stat](tt.x, tt.y)
				if err != nil {
					t.Fatalf("%s() error = %v", stat, err)
				}
				if !approx(got, want) {
					t.Errorf("%s() = %v, want %v", stat, got, want)
				}
			})
		}
	}

	for name, fn := range stats {
		if _, err := fn([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("%s() with mismatched lengths error = %v, want ErrLengthMismatch", name, err)
		}
	}
}

func TestSpearman_TiesTakeInputOrder(t *testing.T) {
	// The tied 1s rank 1 and 2 in input order, which lines up exactly with y.
	got, err := Spearman([]float64{1, 1, 2}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Spearman() error = %v", err)
	}
	if !approx(got, 1) {
		t.Errorf("Spearman() = %v, want 1", got)
	}
}

func TestAnalyzeStockCorrelations(t *testing.T) {
	stock := []models.StockPoint{
		{Date: day(2019, 3, 1), AdjClose: 10},
		{Date: day(2020, 3, 1), AdjClose: 20},
		{Date: day(2021, 3, 1), AdjClose: 25},
		{Date: day(2021, 9, 1), AdjClose: 35},
	}
	airline := []models.Record{
		{"YEAR": 2018, "ASM": 1},
		{"YEAR": 2019, "ASM": 100, "LOAD_FACTOR": 70},
		{"YEAR": 2019, "ASM": 0, "LOAD_FACTOR": 90},
		{"YEAR": 2020, "ASM": 200, "LOAD_FACTOR": 60},
		{"YEAR": 2021, "ASM": 300, "LOAD_FACTOR": 85},
	}
	operating := []models.Record{
		{"YEAR": 2019, "FUEL_FLY_OPS": 5},
		{"YEAR": 2020, "FUEL_FLY_OPS": 6},
	}

	got := AnalyzeStockCorrelations(airline, operating, stock)

	if want := []string{"2019", "2020", "2021"}; len(got.Years) != 3 || got.Years[0] != want[0] || got.Years[2] != want[2] {
		t.Fatalf("Years = %v, want %v", got.Years, want)
	}

	pearson := make(map[string]float64)
	for _, r := range got.Pearson {
		pearson[r.Metric] = r.Value
	}
	if _, ok := pearson["FUEL_FLY_OPS"]; ok {
		t.Error("FUEL_FLY_OPS lacks 2021 and should not be correlated")
	}
	if !approx(pearson["ASM"], 1) {
		t.Errorf("pearson(ASM) = %v, want 1", pearson["ASM"])
	}
	if len(got.Pearson) != len(CorrelationMetrics)-1 || len(got.Kendall) != len(got.Pearson) || len(got.Spearman) != len(got.Pearson) {
		t.Errorf("result counts = %d/%d/%d", len(got.Pearson), len(got.Kendall), len(got.Spearman))
	}

	var loadFactor2019, price2021 float64
	for _, p := range got.Series {
		if p.Year == "2019" && p.Metric == "LOAD_FACTOR" {
			loadFactor2019 = p.Value
		}
		if p.Year == "2021" && p.Metric == MetricStockPrice {
			price2021 = p.Value
		}
	}
	if loadFactor2019 != 80 {
		t.Errorf("2019 LOAD_FACTOR = %v, want yearly average 80", loadFactor2019)
	}
	if price2021 != 30 {
		t.Errorf("2021 STOCK_PRICE = %v, want 30", price2021)
	}
}

func TestAnalyzeStockCorrelations_NoStock(t *testing.T) {
	got := AnalyzeStockCorrelations([]models.Record{{"YEAR": 2020, "ASM": 1}}, nil, nil)
	if len(got.Years) != 0 || len(got.Pearson) != 0 || len(got.Series) != 0 {
		t.Errorf("AnalyzeStockCorrelations() = %+v, want empty analysis", got)
	}
}
