package api

import (
	"seoulapt/server/internal/analysis"
	"seoulapt/server/internal/models"
)

// Region names one side of the comparison
type Region struct {
	District string `json:"district"`
	Dong     string `json:"dong"`
	Label    string `json:"label"`
}

type DatePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type CountPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type PriceSeries struct {
	Region Region      `json:"region"`
	Points []DatePoint `json:"points"`
}

type CountSeries struct {
	Region Region       `json:"region"`
	Points []CountPoint `json:"points"`
}

// PriceTab is the mean price per contract date of both regions and of the whole range
type PriceTab struct {
	First   PriceSeries `json:"first"`
	Second  PriceSeries `json:"second"`
	Overall []DatePoint `json:"overall"`
}

// VolumeTab is the transaction count per date of both regions and the average count
// per neighborhood over the whole range
type VolumeTab struct {
	First          CountSeries `json:"first"`
	Second         CountSeries `json:"second"`
	OverallAverage []DatePoint `json:"overall_average"`
}

type Distribution struct {
	Region Region        `json:"region"`
	Prices []float64     `json:"prices"`
	Box    *analysis.Box `json:"box"`
}

type DistributionTab struct {
	First  Distribution `json:"first"`
	Second Distribution `json:"second"`
}

// Heatmap is a correlation matrix, undefined entries are null
type Heatmap struct {
	Region Region       `json:"region"`
	Fields []string     `json:"fields"`
	Values [][]*float64 `json:"values"`
}

type CorrelationTab struct {
	First  Heatmap `json:"first"`
	Second Heatmap `json:"second"`
}

type CompareResponse struct {
	Selection    analysis.Selection `json:"selection"`
	Price        PriceTab           `json:"price"`
	Volume       VolumeTab          `json:"volume"`
	Distribution DistributionTab    `json:"distribution"`
	Correlation  CorrelationTab     `json:"correlation"`
}

func regions(sel analysis.Selection) (Region, Region) {
	return newRegion(sel.District1, sel.Neighborhood1), newRegion(sel.District2, sel.Neighborhood2)
}

func newRegion(district, dong string) Region {
	return Region{District: district, Dong: dong, Label: district + " " + dong}
}

func priceTab(sel analysis.Selection, first, second, overall analysis.Subset) PriceTab {
	r1, r2 := regions(sel)
	return PriceTab{
		First:   PriceSeries{Region: r1, Points: datePoints(analysis.MeanPriceByDate(first))},
		Second:  PriceSeries{Region: r2, Points: datePoints(analysis.MeanPriceByDate(second))},
		Overall: datePoints(analysis.MeanPriceByDate(overall)),
	}
}

func volumeTab(sel analysis.Selection, first, second, overall analysis.Subset) VolumeTab {
	r1, r2 := regions(sel)
	return VolumeTab{
		First:          CountSeries{Region: r1, Points: countPoints(analysis.CountByDate(first))},
		Second:         CountSeries{Region: r2, Points: countPoints(analysis.CountByDate(second))},
		OverallAverage: datePoints(analysis.AverageCountByDate(overall)),
	}
}

func distributionTab(sel analysis.Selection, first, second analysis.Subset) DistributionTab {
	r1, r2 := regions(sel)
	return DistributionTab{
		First:  distribution(r1, first),
		Second: distribution(r2, second),
	}
}

func distribution(r Region, s analysis.Subset) Distribution {
	prices := analysis.Prices(s)
	return Distribution{Region: r, Prices: prices, Box: analysis.BoxSummary(prices)}
}

func correlationTab(sel analysis.Selection, first, second analysis.Subset) CorrelationTab {
	r1, r2 := regions(sel)
	return CorrelationTab{
		First:  heatmap(r1, first),
		Second: heatmap(r2, second),
	}
}

func heatmap(r Region, s analysis.Subset) Heatmap {
	m := analysis.Correlation(s)
	return Heatmap{Region: r, Fields: m.Fields, Values: nullable(m.Values)}
}

func datePoints(series []analysis.DateValue) []DatePoint {
	points := make([]DatePoint, len(series))
	for i, p := range series {
		points[i] = DatePoint{Date: p.Date.Format(models.DateLayout), Value: p.Value}
	}
	return points
}

func countPoints(series []analysis.DateCount) []CountPoint {
	points := make([]CountPoint, len(series))
	for i, p := range series {
		points[i] = CountPoint{Date: p.Date.Format(models.DateLayout), Count: p.Count}
	}
	return points
}
