package models

// DistrictStats holds per-district aggregates computed from the transaction table
type DistrictStats struct {
	District     string  `json:"district"`
	Count        int     `json:"count"`
	AveragePrice float64 `json:"average_price"`
	AverageArea  float64 `json:"average_area"`
}

// MetricCard is one headline number with its delta against the district mean
type MetricCard struct {
	District string  `json:"district"`
	Value    float64 `json:"value"`
	Delta    float64 `json:"delta"`
}

// DashboardSummary backs the metric cards next to the map
type DashboardSummary struct {
	TotalTransactions int             `json:"total_transactions"`
	BusiestDistrict   MetricCard      `json:"busiest_district"`
	PriciestDistrict  MetricCard      `json:"priciest_district"`
	LargestDistrict   MetricCard      `json:"largest_district"`
	Districts         []DistrictStats `json:"districts"`
}
