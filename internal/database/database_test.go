package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoulapt/server/internal/models"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{District: "강남구", Neighborhood: "역삼동", ContractDate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), YearBuilt: 2010, Price: 150000, BuildingArea: 80, Floor: 5},
		{District: "강남구", Neighborhood: "역삼동", ContractDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), YearBuilt: 0, Price: 160000, BuildingArea: 84.97, Floor: -1},
		{District: "관악구", Neighborhood: "신림동", ContractDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), YearBuilt: 1998, Price: 60000, BuildingArea: 59.5, Floor: 2},
	}
}

func TestInsertAndReadTransactions(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, InsertTransactions(db.GetDB(), sampleTransactions()))

	got, err := db.GetAllTransactions()
	require.NoError(t, err)
	assert.Equal(t, sampleTransactions(), got, "rows must come back unchanged and in insertion order")

	count, err := db.CountTransactions()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestInsertEmptyBatch(t *testing.T) {
	db := newTestDatabase(t)

	assert.NoError(t, InsertTransactions(db.GetDB(), nil))

	count, err := db.CountTransactions()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestClearTransactions(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, InsertTransactions(db.GetDB(), sampleTransactions()))

	require.NoError(t, ClearTransactions(db.GetDB()))

	got, err := db.GetAllTransactions()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	db := newTestDatabase(t)
	assert.NoError(t, db.RunMigrations())
}
