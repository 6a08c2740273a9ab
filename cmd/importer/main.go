package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"seoulapt/server/config"
	"seoulapt/server/internal/database"
	"seoulapt/server/internal/dataset"
	"seoulapt/server/internal/geometry"
	"seoulapt/server/internal/importer"
)

type options struct {
	input     string
	output    string
	centroids string
}

func main() {
	envFile := flag.String("env", ".env", "Optional .env file")
	input := flag.String("input", "", "Transaction file to import, .csv or .xlsx (default TRANSACTIONS_PATH)")
	output := flag.String("output", "data/transactions.db", "SQLite snapshot to write")
	centroids := flag.String("centroids", "", "Also write the district centroids of BOUNDARIES_PATH as GeoJSON to this path")
	flag.Parse()

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := config.NewLogger(cfg)

	opts := options{input: *input, output: *output, centroids: *centroids}
	if opts.input == "" {
		opts.input = cfg.Data.TransactionsPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, opts, logger)
	stop()
	if err != nil {
		logger.WithError(err).Fatal("Import failed")
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, logger *logrus.Logger) error {
	loader := dataset.NewLoader(dataset.Options{
		Encoding: cfg.Data.Encoding,
		Sheet:    cfg.Data.Sheet,
	}, logger)

	table, err := loader.Transactions(opts.input)
	if err != nil {
		return fmt.Errorf("failed to read transactions: %w", err)
	}

	db, err := database.NewDatabase(opts.output)
	if err != nil {
		return fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	start := time.Now()
	written, err := importer.NewImporter(db.GetDB(), cfg, logger).Import(ctx, table.All().Rows())
	if err != nil {
		return err
	}

	stored, err := db.CountTransactions()
	if err != nil {
		return fmt.Errorf("failed to count stored transactions: %w", err)
	}
	if stored != int64(written) {
		return fmt.Errorf("snapshot holds %d transactions, expected %d", stored, written)
	}
	logger.WithFields(logrus.Fields{
		"input":    opts.input,
		"output":   opts.output,
		"rows":     written,
		"stored":   stored,
		"duration": time.Since(start).String(),
	}).Info("Import finished")

	if opts.centroids == "" {
		return nil
	}

	regions, err := loader.Boundaries(cfg.Data.BoundariesPath)
	if err != nil {
		return fmt.Errorf("failed to read boundaries: %w", err)
	}
	layer := geometry.Summarize(regions, geometry.SettingsFromConfig(cfg))
	return geometry.SaveFeatureCollection(layer, opts.centroids, logger)
}
