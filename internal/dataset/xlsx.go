package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"seoulapt/server/internal/models"
)

// readXLSXFile parses a transaction table from a worksheet, the first one when sheet is empty
func readXLSXFile(path, sheet string) ([]models.Transaction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s: %w: no worksheets", path, ErrMissingColumn)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w: empty sheet %q", path, ErrMissingColumn, sheet)
	}

	columns, err := indexColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	transactions := make([]models.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		t, err := columns.decode(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		transactions = append(transactions, t)
	}

	return transactions, nil
}
