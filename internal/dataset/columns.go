package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"seoulapt/server/internal/models"
)

// Column headers of the transaction table
const (
	ColumnDistrict     = "자치구명"
	ColumnNeighborhood = "법정동명"
	ColumnContractDate = "계약일"
	ColumnPrice        = "물건금액(만원)"
	ColumnBuildingArea = "건물면적(㎡)"
	ColumnFloor        = "층"
	ColumnYearBuilt    = "건축년도"
)

// Properties of the boundary features
const (
	PropertyDistrict         = "자치구명"
	PropertyAveragePrice     = "평균_물건금액"
	PropertyAverageArea      = "평균_건물면적"
	PropertyAverageYearBuilt = "평균_건축년도"
)

var dateLayouts = []string{"20060102", models.DateLayout}

type columnIndex struct {
	district, neighborhood, date, price, area, floor, year int
}

// indexColumns locates the required columns. Headers are trimmed and NFC normalized first.
func indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	var missing []string
	find := func(name string) int {
		i, ok := positions[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	idx := columnIndex{
		district:     find(ColumnDistrict),
		neighborhood: find(ColumnNeighborhood),
		date:         find(ColumnContractDate),
		price:        find(ColumnPrice),
		area:         find(ColumnBuildingArea),
		floor:        find(ColumnFloor),
		year:         find(ColumnYearBuilt),
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

// decode converts one row. Short rows are padded with empty cells.
func (c columnIndex) decode(row []string) (models.Transaction, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var t models.Transaction
	var err error

	t.District = norm.NFC.String(cell(c.district))
	t.Neighborhood = norm.NFC.String(cell(c.neighborhood))

	if t.ContractDate, err = ParseDate(cell(c.date)); err != nil {
		return t, fmt.Errorf("%s: %w", ColumnContractDate, err)
	}
	if t.Price, err = parseNumber(cell(c.price)); err != nil {
		return t, fmt.Errorf("%s: %w", ColumnPrice, err)
	}
	if t.BuildingArea, err = parseNumber(cell(c.area)); err != nil {
		return t, fmt.Errorf("%s: %w", ColumnBuildingArea, err)
	}

	floor, err := parseNumber(cell(c.floor))
	if err != nil {
		return t, fmt.Errorf("%s: %w", ColumnFloor, err)
	}
	t.Floor = int(floor)

	// an empty construction year is the unknown-year sentinel
	if raw := cell(c.year); raw != "" {
		year, err := parseNumber(raw)
		if err != nil {
			return t, fmt.Errorf("%s: %w", ColumnYearBuilt, err)
		}
		t.YearBuilt = int(year)
	}

	return t, nil
}

// ParseDate accepts YYYYMMDD and YYYY-MM-DD and returns UTC midnight
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	// spreadsheets sometimes hand back 20240103 as 20240103.0
	s = strings.TrimSuffix(s, ".0")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrMalformedValue, s)
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: number %q", ErrMalformedValue, s)
	}
	return v, nil
}

func normalizeHeader(h string) string {
	return norm.NFC.String(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}
