package analysis

import "seoulapt/server/internal/models"

// DistrictBreakdown aggregates count, mean price and mean area per district in order of first appearance
func DistrictBreakdown(table *Table) []models.DistrictStats {
	index := make(map[string]int)
	stats := make([]models.DistrictStats, 0)
	for _, tx := range table.rows {
		i, ok := index[tx.District]
		if !ok {
			i = len(stats)
			index[tx.District] = i
			stats = append(stats, models.DistrictStats{District: tx.District})
		}
		stats[i].Count++
		// running sums, turned into means below
		stats[i].AveragePrice += tx.Price
		stats[i].AverageArea += tx.BuildingArea
	}

	for i := range stats {
		n := float64(stats[i].Count)
		stats[i].AveragePrice /= n
		stats[i].AverageArea /= n
	}
	return stats
}

// Summarize builds the metric cards: total volume and the districts leading on volume,
// price and area, each with its distance from the mean over districts
func Summarize(table *Table) models.DashboardSummary {
	districts := DistrictBreakdown(table)
	summary := models.DashboardSummary{
		TotalTransactions: table.Len(),
		Districts:         districts,
	}
	if len(districts) == 0 {
		return summary
	}

	summary.BusiestDistrict = leader(districts, func(d models.DistrictStats) float64 { return float64(d.Count) })
	summary.PriciestDistrict = leader(districts, func(d models.DistrictStats) float64 { return d.AveragePrice })
	summary.LargestDistrict = leader(districts, func(d models.DistrictStats) float64 { return d.AverageArea })
	return summary
}

// leader picks the first district with the highest value
func leader(districts []models.DistrictStats, value func(models.DistrictStats) float64) models.MetricCard {
	var total float64
	best := 0
	for i, d := range districts {
		v := value(d)
		total += v
		if v > value(districts[best]) {
			best = i
		}
	}

	top := value(districts[best])
	return models.MetricCard{
		District: districts[best].District,
		Value:    top,
		Delta:    top - total/float64(len(districts)),
	}
}
