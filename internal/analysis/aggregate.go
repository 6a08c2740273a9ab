package analysis

import (
	"sort"
	"time"

	"seoulapt/server/internal/models"
)

// DateValue is one point of a per-date series
type DateValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DateCount is one point of a per-date count series
type DateCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// MeanPriceByDate averages the price of the rows sharing a contract date
func MeanPriceByDate(s Subset) []DateValue {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for i := 0; i < s.Len(); i++ {
		tx := s.Row(i)
		sums[tx.ContractDate] += tx.Price
		counts[tx.ContractDate]++
	}

	series := make([]DateValue, 0, len(counts))
	for _, d := range sortedDates(counts) {
		series = append(series, DateValue{Date: d, Value: sums[d] / float64(counts[d])})
	}
	return series
}

// CountByDate counts the rows sharing a contract date
func CountByDate(s Subset) []DateCount {
	counts := make(map[time.Time]int)
	for i := 0; i < s.Len(); i++ {
		counts[s.Row(i).ContractDate]++
	}

	series := make([]DateCount, 0, len(counts))
	for _, d := range sortedDates(counts) {
		series = append(series, DateCount{Date: d, Count: counts[d]})
	}
	return series
}

// AverageCountByDate counts rows per (date, neighborhood name) and averages those
// counts per date, giving the mean daily volume of the neighborhoods that traded that day.
func AverageCountByDate(s Subset) []DateValue {
	type key struct {
		date         time.Time
		neighborhood string
	}

	perNeighborhood := make(map[key]int)
	for i := 0; i < s.Len(); i++ {
		tx := s.Row(i)
		perNeighborhood[key{date: tx.ContractDate, neighborhood: tx.Neighborhood}]++
	}

	totals := make(map[time.Time]int)
	groups := make(map[time.Time]int)
	for k, n := range perNeighborhood {
		totals[k.date] += n
		groups[k.date]++
	}

	series := make([]DateValue, 0, len(groups))
	for _, d := range sortedDates(groups) {
		series = append(series, DateValue{Date: d, Value: float64(totals[d]) / float64(groups[d])})
	}
	return series
}

// Prices returns the raw price column of the subset in table order
func Prices(s Subset) []float64 {
	return column(s, func(tx models.Transaction) float64 { return tx.Price })
}

func column(s Subset, value func(models.Transaction) float64) []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = value(s.Row(i))
	}
	return out
}

func sortedDates(m map[time.Time]int) []time.Time {
	dates := make([]time.Time, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
