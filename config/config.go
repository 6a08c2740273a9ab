package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		// Port the HTTP server listens on
		Port string `env:"PORT" envDefault:"5250"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

		// gin mode: debug, release or test
		GinMode string `env:"GIN_MODE" envDefault:"release"`
	}

	Data struct {
		// Transaction table: .csv, .xlsx or a .db snapshot written by the importer
		TransactionsPath string `env:"TRANSACTIONS_PATH" envDefault:"data/data.csv"`

		// District boundaries with per-district averages
		BoundariesPath string `env:"BOUNDARIES_PATH" envDefault:"data/seoul_jan.geojson"`

		// Text encoding of CSV input: utf-8 or euc-kr
		Encoding string `env:"TRANSACTIONS_ENCODING" envDefault:"utf-8"`

		// Worksheet to read from .xlsx input, first sheet when empty
		Sheet string `env:"TRANSACTIONS_SHEET"`
	}

	Map struct {
		// Access token for the map tile service
		Token string `env:"MAP_TOKEN"`

		Style      string `env:"MAP_STYLE" envDefault:"light"`
		Zoom       int    `env:"MAP_ZOOM" envDefault:"10"`
		SizeMax    int    `env:"MAP_SIZE_MAX" envDefault:"30"`
		ColorScale string `env:"MAP_COLOR_SCALE" envDefault:"Portland"`
	}

	Import struct {
		// Rows written per transaction
		BatchSize int `env:"IMPORT_BATCH_SIZE" envDefault:"500"`

		// Maximum number of retries for a failed batch
		MaxRetries int `env:"IMPORT_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"IMPORT_RETRY_DELAY" envDefault:"1"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}
}

// LoadConfig reads an optional .env file and then the process environment
func LoadConfig(envFiles ...string) (*Config, error) {
	// A missing .env is fine, the environment may already be populated
	_ = godotenv.Load(envFiles...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
