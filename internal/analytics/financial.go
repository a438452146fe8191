package analytics

import (
	"github.com/shopspring/decimal"

	"airline-analytics/internal/models"
)

// FinancialKPIs are the headline profitability and balance sheet ratios for
// a year and quarter selection. Margins and returns are percentages.
type FinancialKPIs struct {
	TotalOpRevenues   float64      `json:"totalOpRevenues"`
	TotalNetIncome    float64      `json:"totalNetIncome"`
	TotalOpProfitLoss float64      `json:"totalOpProfitLoss"`
	OperatingMargin   models.Ratio `json:"operatingMargin"`
	NetProfitMargin   models.Ratio `json:"netProfitMargin"`
	CurrentRatio      models.Ratio `json:"currentRatio"`
	DebtToEquity      models.Ratio `json:"debtToEquity"`
	ReturnOnAssets    models.Ratio `json:"returnOnAssets"`
	ReturnOnEquity    models.Ratio `json:"returnOnEquity"`
}

// balanceSheet holds the line items used by ratio calculations.
type balanceSheet struct {
	currAssets      decimal.Decimal
	currLiabilities decimal.Decimal
	assets          decimal.Decimal
	liabAndEquity   decimal.Decimal
	equity          decimal.Decimal
}

func balanceSheetOf(rec models.Record) balanceSheet {
	return balanceSheet{
		currAssets:      rec.Amount("CURR_ASSETS"),
		currLiabilities: rec.Amount("CURR_LIABILITIES"),
		assets:          rec.Amount("ASSETS"),
		liabAndEquity:   rec.Amount("LIAB_SH_HLD_EQUITY"),
		equity:          rec.Amount("SH_HLD_EQUIT_NET"),
	}
}

// debtToEquity is total liabilities over net shareholder equity.
func (b balanceSheet) debtToEquity() models.Ratio {
	return ratioOf(b.liabAndEquity.Sub(b.equity), b.equity)
}

type incomeTotals struct {
	revenues   decimal.Decimal
	netIncome  decimal.Decimal
	opProfit   decimal.Decimal
	opExpenses decimal.Decimal
}

func (t *incomeTotals) add(rec models.Record) {
	t.revenues = t.revenues.Add(rec.Amount("OP_REVENUES"))
	t.netIncome = t.netIncome.Add(rec.Amount("NET_INCOME"))
	t.opProfit = t.opProfit.Add(rec.Amount("OP_PROFIT_LOSS"))
	t.opExpenses = t.opExpenses.Add(rec.Amount("OP_EXPENSES"))
}

// ComputeFinancialKPIs totals income statement records and reads the last
// balance sheet matching year and quarter. Ratios whose inputs are zero or
// missing are N/A.
func ComputeFinancialKPIs(airline, balanceSheets []models.Record, year, quarter string) FinancialKPIs {
	var totals incomeTotals
	for _, rec := range FilterByYearAndQuarter(airline, year, quarter) {
		totals.add(rec)
	}

	kpis := FinancialKPIs{
		TotalOpRevenues:   totals.revenues.InexactFloat64(),
		TotalNetIncome:    totals.netIncome.InexactFloat64(),
		TotalOpProfitLoss: totals.opProfit.InexactFloat64(),
		OperatingMargin:   percentRatio(totals.opProfit, totals.revenues),
		NetProfitMargin:   percentRatio(totals.netIncome, totals.revenues),
	}

	sheets := FilterByYearAndQuarter(balanceSheets, year, quarter)
	if len(sheets) == 0 {
		return kpis
	}
	bs := balanceSheetOf(sheets[len(sheets)-1])

	if !bs.currAssets.IsZero() {
		kpis.CurrentRatio = ratioOf(bs.currAssets, bs.currLiabilities)
	}
	if !bs.liabAndEquity.IsZero() {
		kpis.DebtToEquity = bs.debtToEquity()
	}
	if !totals.netIncome.IsZero() {
		kpis.ReturnOnAssets = percentRatio(totals.netIncome, bs.assets)
		kpis.ReturnOnEquity = percentRatio(totals.netIncome, bs.equity)
	}
	return kpis
}

// IncomeYear is one year of income statement totals and margins.
type IncomeYear struct {
	Year            string       `json:"year"`
	TotalOpRevenues float64      `json:"totalOpRevenues"`
	TotalNetIncome  float64      `json:"totalNetIncome"`
	TotalOpExpenses float64      `json:"totalOpExpenses"`
	OpProfitLoss    float64      `json:"opProfitLoss"`
	OperatingMargin models.Ratio `json:"operatingMargin"`
	NetProfitMargin models.Ratio `json:"netProfitMargin"`
}

// BalanceSheetYear is one year of balance sheet ratios, taken from the last
// balance sheet filed that year.
type BalanceSheetYear struct {
	Year           string       `json:"year"`
	Assets         float64      `json:"assets"`
	LiabAndEquity  float64      `json:"liabAndEquity"`
	CurrentRatio   models.Ratio `json:"currentRatio"`
	DebtToEquity   models.Ratio `json:"debtToEquity"`
	ReturnOnAssets models.Ratio `json:"returnOnAssets"`
	ReturnOnEquity models.Ratio `json:"returnOnEquity"`
}

// CompositionItem is one slice of a balance sheet composition chart.
type CompositionItem struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// BalanceSheetComposition breaks down the latest balance sheet.
type BalanceSheetComposition struct {
	Assets      []CompositionItem `json:"assets"`
	Liabilities []CompositionItem `json:"liabilities"`
	Equity      []CompositionItem `json:"equity"`
}

// FinancialSeries holds the yearly charts of the financial tab.
type FinancialSeries struct {
	Income       []IncomeYear            `json:"income"`
	BalanceSheet []BalanceSheetYear      `json:"balanceSheet"`
	Composition  BalanceSheetComposition `json:"composition"`
}

// ComputeFinancialSeries derives yearly margins, yearly balance sheet ratios
// and the composition of the last balance sheet. Records without a year are
// ignored.
func ComputeFinancialSeries(airline, balanceSheets []models.Record) FinancialSeries {
	incomeByYear := make(map[string]*incomeTotals)
	for _, rec := range airline {
		year, ok := rec.YearKey()
		if !ok {
			continue
		}
		t, ok := incomeByYear[year]
		if !ok {
			t = &incomeTotals{}
			incomeByYear[year] = t
		}
		t.add(rec)
	}

	series := FinancialSeries{
		Income:       make([]IncomeYear, 0, len(incomeByYear)),
		BalanceSheet: []BalanceSheetYear{},
		Composition:  composition(balanceSheets),
	}
	for _, year := range sortedYears(incomeByYear) {
		t := incomeByYear[year]
		series.Income = append(series.Income, IncomeYear{
			Year:            year,
			TotalOpRevenues: t.revenues.InexactFloat64(),
			TotalNetIncome:  t.netIncome.InexactFloat64(),
			TotalOpExpenses: t.opExpenses.InexactFloat64(),
			OpProfitLoss:    t.revenues.Sub(t.opExpenses).InexactFloat64(),
			OperatingMargin: percentRatio(t.opProfit, t.revenues),
			NetProfitMargin: percentRatio(t.netIncome, t.revenues),
		})
	}

	lastSheet := make(map[string]models.Record)
	for _, rec := range balanceSheets {
		if year, ok := rec.YearKey(); ok {
			lastSheet[year] = rec
		}
	}
	for _, year := range sortedYears(lastSheet) {
		bs := balanceSheetOf(lastSheet[year])
		var netIncome decimal.Decimal
		if t, ok := incomeByYear[year]; ok {
			netIncome = t.netIncome
		}
		series.BalanceSheet = append(series.BalanceSheet, BalanceSheetYear{
			Year:           year,
			Assets:         bs.assets.InexactFloat64(),
			LiabAndEquity:  bs.liabAndEquity.InexactFloat64(),
			CurrentRatio:   ratioOf(bs.currAssets, bs.currLiabilities),
			DebtToEquity:   bs.debtToEquity(),
			ReturnOnAssets: percentRatio(netIncome, bs.assets),
			ReturnOnEquity: percentRatio(netIncome, bs.equity),
		})
	}
	return series
}

func composition(balanceSheets []models.Record) BalanceSheetComposition {
	if len(balanceSheets) == 0 {
		return BalanceSheetComposition{
			Assets:      []CompositionItem{},
			Liabilities: []CompositionItem{},
			Equity:      []CompositionItem{},
		}
	}

	rec := balanceSheets[len(balanceSheets)-1]
	item := func(category, field string) CompositionItem {
		return CompositionItem{Category: category, Value: rec.Amount(field).InexactFloat64()}
	}

	listed := rec.Amount("CURR_ASSETS").Add(rec.Amount("PROP_EQUIP_NET")).Add(rec.Amount("SPECIAL_FUNDS"))
	return BalanceSheetComposition{
		Assets: []CompositionItem{
			item("Current Assets", "CURR_ASSETS"),
			item("Property & Equipment Net", "PROP_EQUIP_NET"),
			item("Special Funds", "SPECIAL_FUNDS"),
			{Category: "Other Assets", Value: rec.Amount("ASSETS").Sub(listed).InexactFloat64()},
		},
		Liabilities: []CompositionItem{
			item("Current Liabilities", "CURR_LIABILITIES"),
			item("Long Term Debt", "LONG_TERM_DEBT"),
			item("Non-Rec Liab", "NON_REC_LIAB"),
			item("Deferred Credits", "DEF_CREDITS"),
		},
		Equity: []CompositionItem{
			item("Shareholder Equity", "SH_HLD_EQUIT_NET"),
			item("Capital Stock", "CAPITAL_STOCK"),
			item("Paid in Capital", "PAID_IN_CAPITAL"),
			item("Retained Earnings", "RET_EARNINGS"),
		},
	}
}

// Income statement flow nodes.
const (
	NodeRevenues     = "Total Operating Revenues"
	NodeOpProfitLoss = "Operating Profit/Loss"
	NodeExpenses     = "Total Expenses"
	NodeNetIncome    = "Net Income"
)

// FlowLink is one weighted edge of a Sankey diagram.
type FlowLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// IncomeStatementFlow is a Sankey diagram of the income statement.
type IncomeStatementFlow struct {
	Nodes []string   `json:"nodes"`
	Links []FlowLink `json:"links"`
}

// ComputeIncomeStatementFlow links revenues to operating profit, operating
// profit to expenses and expenses to net income for the selected year.
func ComputeIncomeStatementFlow(airline []models.Record, year string) IncomeStatementFlow {
	var totals incomeTotals
	for _, rec := range airline {
		if MatchesYear(rec, year) {
			totals.add(rec)
		}
	}

	opProfit := totals.opProfit.InexactFloat64()
	return IncomeStatementFlow{
		Nodes: []string{NodeRevenues, NodeOpProfitLoss, NodeExpenses, NodeNetIncome},
		Links: []FlowLink{
			{Source: NodeRevenues, Target: NodeOpProfitLoss, Value: opProfit},
			{Source: NodeOpProfitLoss, Target: NodeExpenses, Value: opProfit},
			{Source: NodeExpenses, Target: NodeNetIncome, Value: totals.netIncome.InexactFloat64()},
		},
	}
}
