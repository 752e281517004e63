package app

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/ESGT1299/StockMarket-ETL/config"
)

// RunMigrations applies all pending SQL migrations from dir against db.
func RunMigrations(db *sql.DB, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Migrate opens the configured database, applies pending migrations from
// the configured directory, and closes the connection again.
func Migrate() error {
	cfg := config.AppConfig

	db, err := postgresOpener(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	return RunMigrations(db, cfg.Postgres.MigrationsDir)
}
