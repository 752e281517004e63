package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system:
// the Postgres target store, the market-data provider, the pipeline run shape,
// and the loader batching.
//
// Example YAML/ENV equivalent:
//
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=postgres
//	POSTGRES_PASSWORD=secret
//	POSTGRES_DB=finance_db
//	POSTGRES_SSLMODE=disable
//	PROVIDER_BASE_URL=https://query1.finance.yahoo.com
//	ETL_SYMBOLS=AAPL,MSFT
//	ETL_LOOKBACK_DAYS=30
type Config struct {
	Postgres PostgresConfig // PostgreSQL connection settings
	Provider ProviderConfig // Market-data provider settings
	Pipeline PipelineConfig // Run shape: symbols, window, parallelism
	Loader   LoaderConfig   // Insert batching
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - MigrationsDir: directory with goose SQL migrations.
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsDir string
	URL           string
}

// ProviderConfig holds settings for the external market-data HTTP API.
//
// Fields:
//   - BaseURL: scheme+host of the provider (no trailing slash).
//   - TimeoutSeconds: per-request HTTP timeout.
//   - MaxRetries: attempts after the first call before giving up on a symbol.
type ProviderConfig struct {
	BaseURL        string
	TimeoutSeconds int
	MaxRetries     int
}

// PipelineConfig shapes one pipeline run.
//
// Fields:
//   - Symbols: comma-separated default ticker list (CLI -symbols overrides).
//   - LookbackDays: trading sessions covered when no start date is given.
//   - Parallel: bounded number of concurrent per-symbol provider calls.
//   - SymbolTimeoutSeconds: deadline for one symbol's extract+transform.
//   - RunTimeoutSeconds: overall run deadline (0 disables it).
type PipelineConfig struct {
	Symbols              string
	LookbackDays         int
	Parallel             int
	SymbolTimeoutSeconds int
	RunTimeoutSeconds    int
}

// LoaderConfig controls how the loader writes to the store.
type LoaderConfig struct {
	BatchSize int // rows per insert transaction
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and read exactly once by the
// composition root (app.InitializeApp), which passes explicit values into
// each component's constructor. Components never read AppConfig directly,
// so they stay testable with fake configurations.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Behavior:
//   - Sets defaults for all required fields.
//   - Reads environment variables automatically with viper.AutomaticEnv().
//   - Constructs the PostgreSQL connection string (DSN).
//   - Calls validateConfig() to ensure required fields are present.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "finance_db")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("MIGRATIONS_DIR", "db/migrations")

	viper.SetDefault("PROVIDER_BASE_URL", "https://query1.finance.yahoo.com")
	viper.SetDefault("PROVIDER_TIMEOUT_SECONDS", 10)
	viper.SetDefault("PROVIDER_MAX_RETRIES", 3)

	viper.SetDefault("ETL_SYMBOLS", "BTC-USD")
	viper.SetDefault("ETL_LOOKBACK_DAYS", 30)
	viper.SetDefault("ETL_PARALLEL", 4)
	viper.SetDefault("ETL_SYMBOL_TIMEOUT_SECONDS", 30)
	viper.SetDefault("ETL_RUN_TIMEOUT_SECONDS", 600)

	viper.SetDefault("LOAD_BATCH_SIZE", 500)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	// Populate global config instance
	AppConfig = Config{
		Postgres: PostgresConfig{
			Host:          viper.GetString("POSTGRES_HOST"),
			Port:          viper.GetInt("POSTGRES_PORT"),
			User:          viper.GetString("POSTGRES_USER"),
			Password:      viper.GetString("POSTGRES_PASSWORD"),
			DBName:        viper.GetString("POSTGRES_DB"),
			SSLMode:       viper.GetString("POSTGRES_SSLMODE"),
			MigrationsDir: viper.GetString("MIGRATIONS_DIR"),
		},
		Provider: ProviderConfig{
			BaseURL:        viper.GetString("PROVIDER_BASE_URL"),
			TimeoutSeconds: viper.GetInt("PROVIDER_TIMEOUT_SECONDS"),
			MaxRetries:     viper.GetInt("PROVIDER_MAX_RETRIES"),
		},
		Pipeline: PipelineConfig{
			Symbols:              viper.GetString("ETL_SYMBOLS"),
			LookbackDays:         viper.GetInt("ETL_LOOKBACK_DAYS"),
			Parallel:             viper.GetInt("ETL_PARALLEL"),
			SymbolTimeoutSeconds: viper.GetInt("ETL_SYMBOL_TIMEOUT_SECONDS"),
			RunTimeoutSeconds:    viper.GetInt("ETL_RUN_TIMEOUT_SECONDS"),
		},
		Loader: LoaderConfig{
			BatchSize: viper.GetInt("LOAD_BATCH_SIZE"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	// Validate critical fields
	validateConfig()
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// This avoids unexpected runtime failures due to incomplete configuration.
//
// Behavior:
//   - Checks each critical field of AppConfig.
//   - Collects missing ones in a slice.
//   - If any are missing, logs them and terminates the app with log.Fatalf().
func validateConfig() {
	var missing []string

	if AppConfig.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if AppConfig.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if AppConfig.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if AppConfig.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if AppConfig.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if AppConfig.Provider.BaseURL == "" {
		missing = append(missing, "PROVIDER_BASE_URL")
	}
	if AppConfig.Pipeline.Parallel <= 0 {
		missing = append(missing, "ETL_PARALLEL")
	}
	if AppConfig.Loader.BatchSize <= 0 {
		missing = append(missing, "LOAD_BATCH_SIZE")
	}

	if len(missing) > 0 {
		log.Fatalf("❌ Missing required environment variables: %v\n", missing)
	}
}
