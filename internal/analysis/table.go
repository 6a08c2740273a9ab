// Package analysis holds the filter and aggregation pipeline behind the dashboard charts.
package analysis

import "seoulapt/server/internal/models"

// Table is the loaded transaction table. It is never mutated after NewTable.
type Table struct {
	rows []models.Transaction
}

// NewTable takes a private copy of rows
func NewTable(rows []models.Transaction) *Table {
	owned := make([]models.Transaction, len(rows))
	copy(owned, rows)
	return &Table{rows: owned}
}

// Len returns the number of transactions
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the i-th transaction
func (t *Table) Row(i int) models.Transaction {
	return t.rows[i]
}

// All returns a subset covering every row
func (t *Table) All() Subset {
	indices := make([]int, t.Len())
	for i := range indices {
		indices[i] = i
	}
	return Subset{table: t, indices: indices}
}

// Subset is a view onto a Table: row positions, no copied data
type Subset struct {
	table   *Table
	indices []int
}

// Len returns the number of rows in the subset
func (s Subset) Len() int {
	return len(s.indices)
}

// Row returns the i-th row of the subset
func (s Subset) Row(i int) models.Transaction {
	return s.table.rows[s.indices[i]]
}

// Indices returns the positions of the subset rows in the parent table
func (s Subset) Indices() []int {
	out := make([]int, len(s.indices))
	copy(out, s.indices)
	return out
}

// Rows materializes the subset
func (s Subset) Rows() []models.Transaction {
	out := make([]models.Transaction, len(s.indices))
	for i, idx := range s.indices {
		out[i] = s.table.rows[idx]
	}
	return out
}

func (s Subset) where(keep func(models.Transaction) bool) Subset {
	indices := make([]int, 0, len(s.indices))
	for _, idx := range s.indices {
		if keep(s.table.rows[idx]) {
			indices = append(indices, idx)
		}
	}
	return Subset{table: s.table, indices: indices}
}
