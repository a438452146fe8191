package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"airline-analytics/internal/models"
)

// DateLayout is how stock dates are rendered.
const DateLayout = "2006-01-02"

// Stock chart ranges.
const (
	Range1Y  = "1Y"
	Range3Y  = "3Y"
	Range5Y  = "5Y"
	RangeMax = "Max"
)

// seasonalFloorYear is the earliest year shown in seasonal charts.
const seasonalFloorYear = 2020

// StockKPIs holds the latest close and trailing returns in percent.
type StockKPIs struct {
	AirlineID       string       `json:"airlineId,omitempty"`
	Ticker          string       `json:"ticker,omitempty"`
	NasdaqName      string       `json:"nasdaqName,omitempty"`
	LatestPrice     float64      `json:"latestPrice"`
	LatestDate      string       `json:"latestDate,omitempty"`
	OneYearReturn   models.Ratio `json:"oneYearReturn"`
	ThreeYearReturn models.Ratio `json:"threeYearReturn"`
	FiveYearReturn  models.Ratio `json:"fiveYearReturn"`
	YTDReturn       models.Ratio `json:"ytdReturn"`
}

// StockPointsFromRecords converts {Date, "Adj Close", Volume} records. Records
// without a parseable date are dropped.
func StockPointsFromRecords(records []models.Record) []models.StockPoint {
	points := make([]models.StockPoint, 0, len(records))
	for _, rec := range records {
		date, ok := rec.Time(models.FieldDate)
		if !ok {
			continue
		}
		points = append(points, models.StockPoint{
			Date:     date,
			AdjClose: rec.Float(models.FieldAdjClose),
			Volume:   rec.Amount(models.FieldVolume).IntPart(),
		})
	}
	return points
}

// SortStockPoints returns a copy of points in ascending date order. Equal
// timestamps keep their input order.
func SortStockPoints(points []models.StockPoint) []models.StockPoint {
	sorted := append([]models.StockPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// ComputeStockKPIs derives the latest price and the 1, 3 and 5 year and
// year-to-date returns. Empty input yields N/A returns.
func ComputeStockKPIs(points []models.StockPoint) StockKPIs {
	if len(points) == 0 {
		return StockKPIs{}
	}

	sorted := SortStockPoints(points)
	latest := sorted[len(sorted)-1]

	ytd := time.Date(latest.Date.Year(), time.January, 1, 0, 0, 0, 0, latest.Date.Location())

	return StockKPIs{
		LatestPrice:     latest.AdjClose,
		LatestDate:      latest.Date.Format(DateLayout),
		OneYearReturn:   returnSince(sorted, latest, latest.Date.AddDate(-1, 0, 0)),
		ThreeYearReturn: returnSince(sorted, latest, latest.Date.AddDate(-3, 0, 0)),
		FiveYearReturn:  returnSince(sorted, latest, latest.Date.AddDate(-5, 0, 0)),
		YTDReturn:       returnSince(sorted, latest, ytd),
	}
}

func returnSince(sorted []models.StockPoint, latest models.StockPoint, anchor time.Time) models.Ratio {
	base, ok := anchorPoint(sorted, anchor)
	if !ok || base.AdjClose == 0 {
		return models.Ratio{}
	}
	basePrice := decimal.NewFromFloat(base.AdjClose)
	change := decimal.NewFromFloat(latest.AdjClose).Sub(basePrice)
	return percentRatio(change, basePrice)
}

// anchorPoint returns the first point on or after anchor, falling back to the
// closest point before it.
func anchorPoint(sorted []models.StockPoint, anchor time.Time) (models.StockPoint, bool) {
	if len(sorted) == 0 {
		return models.StockPoint{}, false
	}
	i := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].Date.Before(anchor)
	})
	if i < len(sorted) {
		return sorted[i], true
	}
	return sorted[len(sorted)-1], true
}

// StockChartPoint is one bar of the price and volume chart.
type StockChartPoint struct {
	Date        string  `json:"date"`
	Price       float64 `json:"price"`
	Volume      int64   `json:"volume"`
	PriceChange float64 `json:"priceChange"`
}

// RangeStart returns the first instant covered by rangeKey, or the zero time
// for RangeMax. Unknown ranges fall back to one year.
func RangeStart(rangeKey string, now time.Time) time.Time {
	switch rangeKey {
	case RangeMax:
		return time.Time{}
	case Range3Y:
		return now.AddDate(-3, 0, 0)
	case Range5Y:
		return now.AddDate(-5, 0, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// StockChartSeries returns points dated within rangeKey of now in ascending
// order. PriceChange is the difference to the previous point and 0 for the
// first one.
func StockChartSeries(points []models.StockPoint, rangeKey string, now time.Time) []StockChartPoint {
	start := RangeStart(rangeKey, now)

	out := make([]StockChartPoint, 0, len(points))
	var prev float64
	for _, p := range SortStockPoints(points) {
		if p.Date.After(now) || (!start.IsZero() && p.Date.Before(start)) {
			continue
		}
		change := 0.0
		if len(out) > 0 {
			change = p.AdjClose - prev
		}
		out = append(out, StockChartPoint{
			Date:        p.Date.Format(DateLayout),
			Price:       p.AdjClose,
			Volume:      p.Volume,
			PriceChange: change,
		})
		prev = p.AdjClose
	}
	return out
}

// SeasonalPoint is the average close of one calendar month.
type SeasonalPoint struct {
	Month int     `json:"month"`
	Price float64 `json:"price"`
	Year  string  `json:"year"`
}

// SeasonalSeries groups monthly averages by year for overlay charts.
type SeasonalSeries struct {
	Points []SeasonalPoint `json:"seasonalChartData"`
	Years  []string        `json:"years"`
}

// SeasonalStockAverages averages closes per month from January 1st three
// years before now up to now, never earlier than 2020.
func SeasonalStockAverages(points []models.StockPoint, now time.Time) SeasonalSeries {
	type bucket struct {
		year  int
		month time.Month
	}
	type acc struct {
		total decimal.Decimal
		count int64
	}

	start := time.Date(now.Year()-3, time.January, 1, 0, 0, 0, 0, now.Location())

	var order []bucket
	sums := make(map[bucket]acc)
	for _, p := range SortStockPoints(points) {
		if p.Date.Before(start) || p.Date.After(now) || p.Date.Year() < seasonalFloorYear {
			continue
		}
		key := bucket{year: p.Date.Year(), month: p.Date.Month()}
		a, seen := sums[key]
		if !seen {
			order = append(order, key)
		}
		a.total = a.total.Add(decimal.NewFromFloat(p.AdjClose))
		a.count++
		sums[key] = a
	}

	series := SeasonalSeries{
		Points: make([]SeasonalPoint, 0, len(order)),
		Years:  []string{},
	}
	seenYear := make(map[int]bool)
	for _, key := range order {
		a := sums[key]
		year := strconv.Itoa(key.year)
		series.Points = append(series.Points, SeasonalPoint{
			Month: int(key.month),
			Price: a.total.Div(decimal.NewFromInt(a.count)).InexactFloat64(),
			Year:  year,
		})
		if !seenYear[key.year] {
			seenYear[key.year] = true
			series.Years = append(series.Years, year)
		}
	}
	return series
}

// AverageStockPriceByYear averages adjusted closes per calendar year.
func AverageStockPriceByYear(points []models.StockPoint) []models.YearValue {
	type acc struct {
		total decimal.Decimal
		count int64
	}

	byYear := make(map[string]acc)
	for _, p := range points {
		year := p.Date.Format("2006")
		a := byYear[year]
		a.total = a.total.Add(decimal.NewFromFloat(p.AdjClose))
		a.count++
		byYear[year] = a
	}

	out := make([]models.YearValue, 0, len(byYear))
	for _, year := range sortedYears(byYear) {
		a := byYear[year]
		out = append(out, models.YearValue{
			Year:  year,
			Value: a.total.Div(decimal.NewFromInt(a.count)).InexactFloat64(),
		})
	}
	return out
}
