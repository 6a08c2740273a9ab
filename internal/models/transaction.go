package models

import (
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
)

// DateLayout is the wire format for contract dates
const DateLayout = "2006-01-02"

// Transaction is a single apartment sale
type Transaction struct {
	District     string    `json:"district"`
	Neighborhood string    `json:"neighborhood"`
	ContractDate time.Time `json:"contract_date"`
	YearBuilt    int       `json:"year_built"` // 0 when unknown
	Price        float64   `json:"price"`      // 10,000 KRW units
	BuildingArea float64   `json:"building_area"`
	Floor        int       `json:"floor"`
}

// Region is a district boundary with its precomputed averages
type Region struct {
	District         string       `json:"district"`
	Geometry         orb.Geometry `json:"-"`
	AveragePrice     float64      `json:"average_price"`
	AverageArea      float64      `json:"average_area"`
	AverageYearBuilt float64      `json:"average_year_built"`
}

// RegionSummary is a region prepared for the bubble map
type RegionSummary struct {
	District         string  `json:"district"`
	Longitude        float64 `json:"lon"`
	Latitude         float64 `json:"lat"`
	AveragePrice     float64 `json:"average_price"`
	AverageArea      float64 `json:"average_area"`
	AverageYearBuilt float64 `json:"average_year_built"`
	HoverText        string  `json:"hover_text"`
}

// DateRange is an inclusive interval of contract dates
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, bounds included
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// MarshalJSON writes both bounds as plain dates
func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{
		Start: r.Start.Format(DateLayout),
		End:   r.End.Format(DateLayout),
	})
}

// UnmarshalJSON reads the format written by MarshalJSON
func (r *DateRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	start, err := time.Parse(DateLayout, raw.Start)
	if err != nil {
		return err
	}
	end, err := time.Parse(DateLayout, raw.End)
	if err != nil {
		return err
	}

	r.Start, r.End = start, end
	return nil
}

// YearRange is an inclusive interval of construction years
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether year falls inside the range, bounds included
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}
