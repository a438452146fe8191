package models

import (
	"fmt"
	"strings"
)

// Airline identifies a carrier tracked by the dashboard.
type Airline struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Logo       string `json:"logo"`
	NasdaqName string `json:"nasdaqName"`
	Ticker     string `json:"ticker"`
	Category   string `json:"category"`
}

var airlines = []Airline{
	{ID: "alaska-airlines", Name: "Alaska Airlines Inc.", Logo: "/alaska-logo.png", NasdaqName: "Alaska Air Group Inc.", Ticker: "ALK", Category: "legacy"},
	{ID: "allegiant-air", Name: "Allegiant Air", Logo: "/allegiant-logo.png", NasdaqName: "Allegiant Travel Company", Ticker: "ALGT", Category: "ultra low-cost"},
	{ID: "american-airlines", Name: "American Airlines Inc.", Logo: "/american-logo.png", NasdaqName: "American Airlines Group Inc.", Ticker: "AAL", Category: "legacy"},
	{ID: "delta-airlines", Name: "Delta Air Lines Inc.", Logo: "/delta-logo.png", NasdaqName: "Delta Air Lines Inc.", Ticker: "DAL", Category: "legacy"},
	{ID: "frontier-airlines", Name: "Frontier Airlines Inc.", Logo: "/frontier-logo.png", NasdaqName: "Frontier Group Holdings, Inc.", Ticker: "ULCC", Category: "ultra low-cost"},
	{ID: "jetblue-airlines", Name: "JetBlue Airways", Logo: "/jetblue-logo.png", NasdaqName: "JetBlue Airways Corporation", Ticker: "JBLU", Category: "low-cost"},
	{ID: "hawaiian-airlines", Name: "Hawaiian Airlines Inc.", Logo: "/hawaiian-logo.png", NasdaqName: "Hawaiian Holdings Inc.", Ticker: "HA", Category: "legacy"},
	{ID: "southwest-airlines", Name: "Southwest Airlines Co.", Logo: "/southwest-logo.png", NasdaqName: "Southwest Airlines Co.", Ticker: "LUV", Category: "low-cost"},
	{ID: "spirit-airlines", Name: "Spirit Air Lines", Logo: "/spirit-logo.png", NasdaqName: "Spirit Airlines, Inc.", Ticker: "SAVE", Category: "ultra low-cost"},
	{ID: "united-airlines", Name: "United Air Lines Inc.", Logo: "/united-logo.png", NasdaqName: "United Airlines Holdings, Inc.", Ticker: "UAL", Category: "legacy"},
}

// Airlines returns the tracked carriers.
func Airlines() []Airline {
	out := make([]Airline, len(airlines))
	copy(out, airlines)
	return out
}

// LookupAirline finds a carrier by its slug id.
func LookupAirline(id string) (Airline, error) {
	for _, a := range airlines {
		if a.ID == id {
			return a, nil
		}
	}
	return Airline{}, &NotFoundError{Resource: "airline", ID: id}
}

// LookupAirlineByTicker finds a carrier by its stock ticker, case-insensitively.
func LookupAirlineByTicker(ticker string) (Airline, error) {
	for _, a := range airlines {
		if strings.EqualFold(a.Ticker, ticker) {
			return a, nil
		}
	}
	return Airline{}, &NotFoundError{Resource: "airline ticker", ID: ticker}
}

// Dataset names one of the record categories stored per airline.
type Dataset string

const (
	DatasetAirlineData           Dataset = "airline-data"
	DatasetOperatingData         Dataset = "operating-data"
	DatasetOperatingDataExtended Dataset = "operating-data-extended"
	DatasetBalanceSheets         Dataset = "balance-sheets"
	DatasetStockData             Dataset = "stock-data"
)

// Datasets lists every known dataset.
func Datasets() []Dataset {
	return []Dataset{
		DatasetAirlineData,
		DatasetOperatingData,
		DatasetOperatingDataExtended,
		DatasetBalanceSheets,
		DatasetStockData,
	}
}

// ParseDataset validates a dataset name.
func ParseDataset(name string) (Dataset, error) {
	for _, d := range Datasets() {
		if string(d) == name {
			return d, nil
		}
	}
	return "", &ValidationError{
		Field:   "dataset",
		Value:   name,
		Message: fmt.Sprintf("unknown dataset %q", name),
	}
}
