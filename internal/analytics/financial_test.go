package analytics

import (
	"reflect"
	"testing"

	"airline-analytics/internal/models"
)

var (
	incomeRecords = []models.Record{
		{"YEAR": 2020, "QUARTER": 1, "OP_REVENUES": 1000, "NET_INCOME": 100, "OP_PROFIT_LOSS": 150, "OP_EXPENSES": 850},
		{"YEAR": 2020, "QUARTER": 2, "OP_REVENUES": 1000, "NET_INCOME": 100, "OP_PROFIT_LOSS": 50, "OP_EXPENSES": 950},
		{"YEAR": 2021, "QUARTER": 1, "OP_REVENUES": 0, "NET_INCOME": -10},
	}
	balanceSheetRecords = []models.Record{
		{"YEAR": 2020, "QUARTER": 1, "CURR_ASSETS": 1, "CURR_LIABILITIES": 1, "ASSETS": 1, "SH_HLD_EQUIT_NET": 1, "LIAB_SH_HLD_EQUITY": 1},
		{
			"YEAR": 2020, "QUARTER": 4,
			"CURR_ASSETS": 500, "CURR_LIABILITIES": 250, "ASSETS": 4000,
			"LIAB_SH_HLD_EQUITY": 4000, "SH_HLD_EQUIT_NET": 1000,
			"PROP_EQUIP_NET": 2500, "SPECIAL_FUNDS": 100,
		},
	}
)

func TestComputeFinancialKPIs(t *testing.T) {
	tests := []struct {
		name        string
		year        string
		quarter     string
		checkValues func(*testing.T, FinancialKPIs)
	}{
		{
			name:    "full year uses the last balance sheet",
			year:    "2020",
			quarter: models.All,
			checkValues: func(t *testing.T, k FinancialKPIs) {
				checks := []struct {
					name string
					got  models.Ratio
					want float64
				}{
					{"OperatingMargin", k.OperatingMargin, 10},
					{"NetProfitMargin", k.NetProfitMargin, 10},
					{"CurrentRatio", k.CurrentRatio, 2},
					{"DebtToEquity", k.DebtToEquity, 3},
					{"ReturnOnAssets", k.ReturnOnAssets, 5},
					{"ReturnOnEquity", k.ReturnOnEquity, 20},
				}
				for _, c := range checks {
					if !c.got.Valid || !approx(c.got.Value, c.want) {
						t.Errorf("%s = %+v, want %v", c.name, c.got, c.want)
					}
				}
				if k.TotalOpRevenues != 2000 {
					t.Errorf("TotalOpRevenues = %v, want 2000", k.TotalOpRevenues)
				}
			},
		},
		{
			name:    "quarter without a balance sheet",
			year:    "2020",
			quarter: "2",
			checkValues: func(t *testing.T, k FinancialKPIs) {
				if !approx(k.OperatingMargin.Value, 5) {
					t.Errorf("OperatingMargin = %+v, want 5", k.OperatingMargin)
				}
				if k.CurrentRatio.Valid || k.DebtToEquity.Valid || k.ReturnOnAssets.Valid || k.ReturnOnEquity.Valid {
					t.Errorf("balance sheet ratios should be N/A: %+v", k)
				}
			},
		},
		{
			name:    "zero revenue",
			year:    "2021",
			quarter: models.All,
			checkValues: func(t *testing.T, k FinancialKPIs) {
				if k.OperatingMargin.Valid || k.NetProfitMargin.Valid {
					t.Errorf("margins should be N/A: %+v", k)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checkValues(t, ComputeFinancialKPIs(incomeRecords, balanceSheetRecords, tt.year, tt.quarter))
		})
	}
}

func TestComputeFinancialSeries(t *testing.T) {
	got := ComputeFinancialSeries(incomeRecords, balanceSheetRecords)

	if len(got.Income) != 2 || got.Income[0].Year != "2020" || got.Income[1].Year != "2021" {
		t.Fatalf("Income = %+v", got.Income)
	}
	if got.Income[0].OpProfitLoss != 200 || !approx(got.Income[0].OperatingMargin.Value, 10) {
		t.Errorf("2020 income = %+v", got.Income[0])
	}
	if got.Income[1].OperatingMargin.Valid {
		t.Errorf("2021 margin should be N/A with zero revenue")
	}

	if len(got.BalanceSheet) != 1 {
		t.Fatalf("BalanceSheet = %+v", got.BalanceSheet)
	}
	bs := got.BalanceSheet[0]
	if !approx(bs.CurrentRatio.Value, 2) || !approx(bs.ReturnOnEquity.Value, 20) || bs.Assets != 4000 {
		t.Errorf("2020 balance sheet = %+v", bs)
	}

	wantAssets := []CompositionItem{
		{Category: "Current Assets", Value: 500},
		{Category: "Property & Equipment Net", Value: 2500},
		{Category: "Special Funds", Value: 100},
		{Category: "Other Assets", Value: 900},
	}
	if !reflect.DeepEqual(got.Composition.Assets, wantAssets) {
		t.Errorf("Composition.Assets = %+v, want %+v", got.Composition.Assets, wantAssets)
	}
}

func TestComputeIncomeStatementFlow(t *testing.T) {
	got := ComputeIncomeStatementFlow(incomeRecords, "2020")
	want := IncomeStatementFlow{
		Nodes: []string{NodeRevenues, NodeOpProfitLoss, NodeExpenses, NodeNetIncome},
		Links: []FlowLink{
			{Source: NodeRevenues, Target: NodeOpProfitLoss, Value: 200},
			{Source: NodeOpProfitLoss, Target: NodeExpenses, Value: 200},
			{Source: NodeExpenses, Target: NodeNetIncome, Value: 200},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ComputeIncomeStatementFlow() = %+v, want %+v", got, want)
	}
}
