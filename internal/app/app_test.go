package app

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ESGT1299/StockMarket-ETL/config"
)

// TestInitPostgres_InvalidHost expects ping failure.
func TestInitPostgres_InvalidHost(t *testing.T) {
	cfg := config.Config{Postgres: config.PostgresConfig{
		Host:     "127.0.0.1",
		Port:     54329, // unlikely mapped
		User:     "x",
		Password: "y",
		DBName:   "z",
		SSLMode:  "disable",
	}}
	db, err := InitPostgres(cfg)
	if err == nil {
		_ = db.Close()
		t.Fatalf("expected error connecting to invalid DB")
	}
}

// TestInitializeApp_DBFailure ensures InitializeApp returns error when DB cannot connect.
func TestInitializeApp_DBFailure(t *testing.T) {
	// Backup and override global config
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig = config.Config{Postgres: config.PostgresConfig{
		Host:     "127.0.0.1",
		Port:     54329,
		User:     "x",
		Password: "y",
		DBName:   "z",
		SSLMode:  "disable",
	}}

	p, cleanup, err := InitializeApp()
	if err == nil || p != nil || cleanup != nil {
		if cleanup != nil {
			cleanup()
		}
		t.Fatalf("expected error from InitializeApp with invalid DB config")
	}
}

func TestInitializeApp_HappyPath(t *testing.T) {
	// Override opener to return a sqlmock DB so no real connection is made
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}

	old := postgresOpener
	postgresOpener = func(cfg config.Config) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() {
		postgresOpener = old
		_ = db.Close()
	})

	oldCfg := config.AppConfig
	t.Cleanup(func() { config.AppConfig = oldCfg })
	config.AppConfig = config.Config{
		Provider: config.ProviderConfig{BaseURL: "http://localhost:0", TimeoutSeconds: 1, MaxRetries: 1},
		Pipeline: config.PipelineConfig{Parallel: 2, SymbolTimeoutSeconds: 1},
		Loader:   config.LoaderConfig{BatchSize: 100},
	}

	pipeline, cleanup, err := InitializeApp()
	if err != nil || pipeline == nil || cleanup == nil {
		t.Fatalf("InitializeApp failed: err set or nil components")
	}

	// Call cleanup and ensure it doesn't panic
	cleanup()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestMigrate_DBFailure ensures Migrate surfaces connection errors.
func TestMigrate_DBFailure(t *testing.T) {
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig = config.Config{Postgres: config.PostgresConfig{
		Host:          "127.0.0.1",
		Port:          54329,
		User:          "x",
		Password:      "y",
		DBName:        "z",
		SSLMode:       "disable",
		MigrationsDir: "db/migrations",
	}}

	if err := Migrate(); err == nil {
		t.Fatalf("expected error from Migrate with invalid DB config")
	}
}
