package analysis

import (
	"time"

	"seoulapt/server/internal/models"
)

// SelectionRequest carries the raw selector values. Empty strings and nil pointers mean "use the default".
type SelectionRequest struct {
	District1     string
	Neighborhood1 string
	District2     string
	Neighborhood2 string
	StartDate     *time.Time
	EndDate       *time.Time
	MinYear       *int
	MaxYear       *int
}

// Selection is a fully resolved pair of regions plus the shared ranges
type Selection struct {
	Districts      []string         `json:"districts"`
	District1      string           `json:"district1"`
	Neighborhood1  string           `json:"dong1"`
	Neighborhoods1 []string         `json:"dong1_options"`
	District2      string           `json:"district2"`
	Neighborhood2  string           `json:"dong2"`
	Neighborhoods2 []string         `json:"dong2_options"`
	Dates          models.DateRange `json:"dates"`
	Years          models.YearRange `json:"years"`
	Bounds         Bounds           `json:"bounds"`
}

// ResolveSelection applies the selector rules: values must come from the observed options,
// the second district defaults to the first, and when both districts match the first
// neighborhood is removed from the second neighborhood's options.
func ResolveSelection(table *Table, req SelectionRequest) Selection {
	sel := Selection{
		Districts: Districts(table),
		Bounds:    ComputeBounds(table),
	}

	sel.District1 = pick(sel.Districts, req.District1)
	sel.Neighborhoods1 = Neighborhoods(table, sel.District1)
	sel.Neighborhood1 = pick(sel.Neighborhoods1, req.Neighborhood1)

	sel.District2 = pickOr(sel.Districts, req.District2, sel.District1)
	sel.Neighborhoods2 = SecondNeighborhoods(table, sel.District1, sel.Neighborhood1, sel.District2)
	sel.Neighborhood2 = pick(sel.Neighborhoods2, req.Neighborhood2)

	sel.Dates = sel.Bounds.Dates
	if req.StartDate != nil {
		sel.Dates.Start = *req.StartDate
	}
	if req.EndDate != nil {
		sel.Dates.End = *req.EndDate
	}

	sel.Years = sel.Bounds.Years
	if req.MinYear != nil {
		sel.Years.Min = *req.MinYear
	}
	if req.MaxYear != nil {
		sel.Years.Max = *req.MaxYear
	}

	return sel
}

// SecondNeighborhoods returns the options for the second neighborhood selector
func SecondNeighborhoods(table *Table, district1, neighborhood1, district2 string) []string {
	options := Neighborhoods(table, district2)
	if district1 != district2 {
		return options
	}

	filtered := make([]string, 0, len(options))
	for _, n := range options {
		if n != neighborhood1 {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

// Subsets returns the two region subsets and the overall range subset for a selection
func Subsets(table *Table, sel Selection) (first, second, overall Subset) {
	first = regionSubset(table, sel.District1, sel.Neighborhood1, sel)
	second = regionSubset(table, sel.District2, sel.Neighborhood2, sel)
	overall = FilterRange(table, sel.Dates, sel.Years)
	return first, second, overall
}

// regionSubset is empty when the selector had no option to offer
func regionSubset(table *Table, district, neighborhood string, sel Selection) Subset {
	if district == "" || neighborhood == "" {
		return Subset{table: table}
	}
	return Filter(table, district, neighborhood, sel.Dates, sel.Years)
}

// pick returns want when it is one of options, otherwise the first option or "" when there are none
func pick(options []string, want string) string {
	return pickOr(options, want, "")
}

// pickOr is pick with a preferred fallback, used when fallback is itself one of options
func pickOr(options []string, want, fallback string) string {
	for _, o := range options {
		if o == want {
			return o
		}
	}
	for _, o := range options {
		if o == fallback {
			return o
		}
	}
	if len(options) == 0 {
		return ""
	}
	return options[0]
}
