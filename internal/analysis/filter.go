package analysis

import "seoulapt/server/internal/models"

// Filter returns the rows of one region inside both ranges. All predicates are inclusive.
func Filter(table *Table, district, neighborhood string, dates models.DateRange, years models.YearRange) Subset {
	return table.All().where(func(tx models.Transaction) bool {
		return tx.District == district &&
			tx.Neighborhood == neighborhood &&
			dates.Contains(tx.ContractDate) &&
			years.Contains(tx.YearBuilt)
	})
}

// FilterRange returns every row inside both ranges regardless of region
func FilterRange(table *Table, dates models.DateRange, years models.YearRange) Subset {
	return table.All().where(func(tx models.Transaction) bool {
		return dates.Contains(tx.ContractDate) && years.Contains(tx.YearBuilt)
	})
}

// Bounds holds the slider limits derived from the table
type Bounds struct {
	Dates models.DateRange `json:"dates"`
	Years models.YearRange `json:"years"`
}

// ComputeBounds returns the date and construction-year limits of the table.
// Year 0 marks an unknown construction year and is skipped for the lower bound only.
func ComputeBounds(table *Table) Bounds {
	var b Bounds
	if table.Len() == 0 {
		return b
	}

	first := table.Row(0)
	b.Dates = models.DateRange{Start: first.ContractDate, End: first.ContractDate}
	b.Years.Max = first.YearBuilt

	knownYear := false
	for _, tx := range table.rows {
		if tx.ContractDate.Before(b.Dates.Start) {
			b.Dates.Start = tx.ContractDate
		}
		if tx.ContractDate.After(b.Dates.End) {
			b.Dates.End = tx.ContractDate
		}
		if tx.YearBuilt > b.Years.Max {
			b.Years.Max = tx.YearBuilt
		}
		if tx.YearBuilt != 0 && (!knownYear || tx.YearBuilt < b.Years.Min) {
			b.Years.Min = tx.YearBuilt
			knownYear = true
		}
	}

	return b
}

// Districts lists the districts in order of first appearance
func Districts(table *Table) []string {
	return unique(table.All(), func(tx models.Transaction) (string, bool) {
		return tx.District, true
	})
}

// Neighborhoods lists the neighborhoods of district in order of first appearance
func Neighborhoods(table *Table, district string) []string {
	return unique(table.All(), func(tx models.Transaction) (string, bool) {
		return tx.Neighborhood, tx.District == district
	})
}

func unique(s Subset, key func(models.Transaction) (string, bool)) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for i := 0; i < s.Len(); i++ {
		k, ok := key(s.Row(i))
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		values = append(values, k)
	}
	return values
}
