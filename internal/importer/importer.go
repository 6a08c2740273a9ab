package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"seoulapt/server/config"
	"seoulapt/server/internal/database"
	"seoulapt/server/internal/models"
)

// Transactor is the part of *gorm.DB the importer needs
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// Importer writes a transaction table into a snapshot database in batches
type Importer struct {
	db     Transactor
	logger *logrus.Logger
	config *config.Config

	// hooks for tests
	clear  func(tx *gorm.DB) error
	insert func(tx *gorm.DB, batch []models.Transaction) error
}

// NewImporter creates a new importer instance
func NewImporter(db Transactor, cfg *config.Config, logger *logrus.Logger) *Importer {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Importer{
		db:     db,
		logger: logger,
		config: cfg,
		clear:  database.ClearTransactions,
		insert: database.InsertTransactions,
	}
}

// Import replaces the stored transactions with rows and returns how many were written.
// The clear and every batch share one transaction, so a failed import leaves the previous
// snapshot untouched. The whole transaction is retried on failure.
func (i *Importer) Import(ctx context.Context, rows []models.Transaction) (int, error) {
	size := i.config.Import.BatchSize
	if size <= 0 {
		size = len(rows)
	}

	written := 0
	err := i.withRetry(ctx, "import", func(tx *gorm.DB) error {
		written = 0
		if err := i.clear(tx); err != nil {
			return fmt.Errorf("failed to clear transactions: %w", err)
		}

		for start := 0; start < len(rows); start += size {
			if err := ctx.Err(); err != nil {
				return err
			}

			end := start + size
			if end > len(rows) {
				end = len(rows)
			}
			batch := rows[start:end]

			if err := i.insert(tx, batch); err != nil {
				return fmt.Errorf("failed to insert batch at row %d: %w", start, err)
			}

			written += len(batch)
			i.logger.WithFields(logrus.Fields{
				"batch_size": len(batch),
				"written":    written,
				"total":      len(rows),
			}).Info("Imported batch")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return written, nil
}

// withRetry runs fn in a database transaction, retrying on failure
func (i *Importer) withRetry(ctx context.Context, step string, fn func(tx *gorm.DB) error) error {
	maxRetries := i.config.Import.MaxRetries
	delay := time.Duration(i.config.Import.RetryDelay) * time.Second

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			i.logger.Infof("Retrying %s, attempt %d of %d", step, attempt, maxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = i.db.Transaction(fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		i.logger.WithError(err).WithField("step", step).Error("Import step failed")
	}

	return fmt.Errorf("failed to %s transactions after %d attempts: %w", step, maxRetries+1, err)
}
