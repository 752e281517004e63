package app

import (
	"fmt"
	"time"

	"github.com/ESGT1299/StockMarket-ETL/config"
	"github.com/ESGT1299/StockMarket-ETL/internal/etl"
	"github.com/ESGT1299/StockMarket-ETL/internal/extract"
	"github.com/ESGT1299/StockMarket-ETL/internal/load"
	"github.com/ESGT1299/StockMarket-ETL/internal/storage"
)

// InitializeApp wires all application dependencies into a runnable
// pipeline and returns it together with a cleanup function for shutdown.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Initializes the repository layer (PriceRepository).
//   - Builds the loader on top of the repository.
//   - Builds the provider HTTP client.
//   - Assembles the ETL pipeline from those parts.
//
// Configuration is read from config.AppConfig exactly once, here;
// every component receives explicit values through its constructor.
//
// Returns:
//   - *etl.Pipeline: the assembled pipeline, ready to Run.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*etl.Pipeline, func(), error) {
	cfg := config.AppConfig

	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	repo := storage.NewPriceRepository(db)
	loader := load.New(repo, cfg.Loader.BatchSize)
	client := extract.NewClient(cfg.Provider)

	pipeline := etl.NewPipeline(client, loader, etl.Options{
		Parallel:      cfg.Pipeline.Parallel,
		SymbolTimeout: time.Duration(cfg.Pipeline.SymbolTimeoutSeconds) * time.Second,
	})

	cleanup := func() {
		_ = db.Close()
	}

	return pipeline, cleanup, nil
}
