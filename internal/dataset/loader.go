package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"seoulapt/server/internal/analysis"
	"seoulapt/server/internal/models"
)

// Options controls how transaction files are decoded
type Options struct {
	// CSV text encoding, utf-8 or euc-kr
	Encoding string
	// Worksheet for .xlsx input, first sheet when empty
	Sheet string
}

// Data is everything the dashboard reads
type Data struct {
	Transactions *analysis.Table
	Regions      []models.Region
}

// Loader reads the input files and memoizes the result per path for its lifetime.
// Failed loads are not remembered.
type Loader struct {
	options Options
	logger  *logrus.Logger
	cache   *cache.Cache
	group   singleflight.Group
}

func NewLoader(options Options, logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Loader{
		options: options,
		logger:  logger,
		cache:   cache.New(cache.NoExpiration, 0),
	}
}

// Transactions loads the transaction table at path. The format follows the extension:
// .csv, .xlsx, or .db / .sqlite for an importer snapshot.
func (l *Loader) Transactions(path string) (*analysis.Table, error) {
	v, err := l.memo("transactions", path, func() (interface{}, error) {
		rows, err := l.readTransactions(path)
		if err != nil {
			return nil, err
		}
		return analysis.NewTable(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*analysis.Table), nil
}

// Boundaries loads the district boundary file at path
func (l *Loader) Boundaries(path string) ([]models.Region, error) {
	v, err := l.memo("boundaries", path, func() (interface{}, error) {
		return readBoundaries(path, l.logger)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Region), nil
}

// LoadAll reads both files in parallel
func (l *Loader) LoadAll(ctx context.Context, transactionsPath, boundariesPath string) (*Data, error) {
	data := &Data{}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		table, err := l.Transactions(transactionsPath)
		data.Transactions = table
		return err
	})
	g.Go(func() error {
		regions, err := l.Boundaries(boundariesPath)
		data.Regions = regions
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (l *Loader) memo(kind, path string, load func() (interface{}, error)) (interface{}, error) {
	key := kind + ":" + cacheKey(path)
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	v, err, shared := l.group.Do(key, func() (interface{}, error) {
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}

		start := time.Now()
		v, err := load()
		if err != nil {
			return nil, err
		}

		l.cache.Set(key, v, cache.NoExpiration)
		l.logger.WithFields(logrus.Fields{
			"kind":     kind,
			"path":     path,
			"duration": time.Since(start).String(),
		}).Info("Loaded data file")
		return v, nil
	})
	if shared {
		l.logger.WithField("path", path).Debug("Joined an in-flight load")
	}
	return v, err
}

func (l *Loader) readTransactions(path string) ([]models.Transaction, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVFile(path, l.options.Encoding)
	case ".xlsx":
		return readXLSXFile(path, l.options.Sheet)
	case ".db", ".sqlite", ".sqlite3":
		return readSnapshot(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
