package analysis

import (
	"testing"
	"time"

	"seoulapt/server/internal/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func tx(t *testing.T, district, dong, date string, price, area float64, floor, year int) models.Transaction {
	t.Helper()
	return models.Transaction{
		District:     district,
		Neighborhood: dong,
		ContractDate: day(t, date),
		Price:        price,
		BuildingArea: area,
		Floor:        floor,
		YearBuilt:    year,
	}
}

func fullRange(table *Table) (models.DateRange, models.YearRange) {
	b := ComputeBounds(table)
	// keep year 0 rows in range like an untouched slider starting at 0
	return b.Dates, models.YearRange{Min: 0, Max: b.Years.Max}
}

func sampleTable(t *testing.T) *Table {
	t.Helper()
	return NewTable([]models.Transaction{
		tx(t, "강남구", "역삼동", "2024-01-03", 150000, 80, 5, 2010),
		tx(t, "강남구", "역삼동", "2024-01-05", 160000, 85, 3, 2015),
		tx(t, "강남구", "삼성동", "2024-01-03", 210000, 110, 12, 2005),
		tx(t, "강남구", "삼성동", "2024-01-10", 190000, 100, 7, 0),
		tx(t, "관악구", "신림동", "2024-01-05", 60000, 59, 2, 1998),
		tx(t, "관악구", "봉천동", "2024-01-05", 70000, 84, 9, 2003),
		tx(t, "관악구", "신림동", "2024-01-12", 65000, 60, 4, 2001),
		tx(t, "강서구", "화곡동", "2024-01-20", 55000, 49, 1, 1990),
	})
}
