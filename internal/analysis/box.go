package analysis

import (
	"math"
	"sort"
)

// Box is a box-plot summary of a price distribution
type Box struct {
	Count      int       `json:"count"`
	Min        float64   `json:"min"`
	Q1         float64   `json:"q1"`
	Median     float64   `json:"median"`
	Q3         float64   `json:"q3"`
	Max        float64   `json:"max"`
	LowerFence float64   `json:"lower_fence"`
	UpperFence float64   `json:"upper_fence"`
	Outliers   []float64 `json:"outliers"`
}

// BoxSummary computes quartiles by linear interpolation and Tukey whiskers.
// Returns nil for an empty input.
func BoxSummary(values []float64) *Box {
	if len(values) == 0 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	b := &Box{
		Count:    len(sorted),
		Min:      sorted[0],
		Q1:       quantile(sorted, 0.25),
		Median:   quantile(sorted, 0.5),
		Q3:       quantile(sorted, 0.75),
		Max:      sorted[len(sorted)-1],
		Outliers: make([]float64, 0),
	}

	iqr := b.Q3 - b.Q1
	low := b.Q1 - 1.5*iqr
	high := b.Q3 + 1.5*iqr

	// whiskers end at the most extreme values still inside the fences
	b.LowerFence = b.Q1
	b.UpperFence = b.Q3
	for _, v := range sorted {
		if v < low || v > high {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.LowerFence = math.Min(b.LowerFence, v)
		b.UpperFence = math.Max(b.UpperFence, v)
	}

	return b
}

// quantile expects sorted input
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
