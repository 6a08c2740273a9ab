package analysis

import (
	"math"

	"seoulapt/server/internal/models"
)

// CorrelationFields are the heatmap axes, in display order
var CorrelationFields = []string{"건물면적(㎡)", "층", "건축년도", "물건금액(만원)"}

var correlationColumns = []func(models.Transaction) float64{
	func(tx models.Transaction) float64 { return tx.BuildingArea },
	func(tx models.Transaction) float64 { return float64(tx.Floor) },
	func(tx models.Transaction) float64 { return float64(tx.YearBuilt) },
	func(tx models.Transaction) float64 { return tx.Price },
}

// Matrix is a labelled square matrix. Undefined entries hold NaN.
type Matrix struct {
	Fields []string    `json:"fields"`
	Values [][]float64 `json:"values"`
}

// At returns the entry for fields i and j
func (m Matrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Correlation computes the pairwise Pearson matrix of area, floor, construction year and price.
// With fewer than two rows, or a field without variance, the affected entries are NaN,
// the diagonal included.
func Correlation(s Subset) Matrix {
	columns := make([][]float64, len(correlationColumns))
	for i, col := range correlationColumns {
		columns[i] = column(s, col)
	}
	return Pearson(CorrelationFields, columns)
}

// Pearson correlates equally long columns
func Pearson(fields []string, columns [][]float64) Matrix {
	k := len(columns)
	m := Matrix{Fields: fields, Values: make([][]float64, k)}
	for i := range m.Values {
		m.Values[i] = make([]float64, k)
	}

	means := make([]float64, k)
	for i, col := range columns {
		means[i] = mean(col)
	}

	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			r := pearsonPair(columns[i], columns[j], means[i], means[j])
			if i == j && !math.IsNaN(r) {
				r = 1.0
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pearsonPair(x, y []float64, meanX, meanY float64) float64 {
	n := len(x)
	if n < 2 || len(y) != n {
		return math.NaN()
	}

	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	divisor := math.Sqrt(sxx * syy)
	if divisor == 0 {
		return math.NaN()
	}

	r := sxy / divisor
	// keep rounding noise inside [-1, 1]
	return math.Max(-1, math.Min(1, r))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
