package dataset

import (
	"fmt"
	"os"

	"seoulapt/server/internal/database"
	"seoulapt/server/internal/models"
)

// readSnapshot reads the transactions written by the importer
func readSnapshot(path string) ([]models.Transaction, error) {
	// sqlite would silently create a missing file
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	db, err := database.NewDatabase(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.GetAllTransactions()
}
