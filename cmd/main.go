package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ESGT1299/StockMarket-ETL/config"
	"github.com/ESGT1299/StockMarket-ETL/internal/app"
	"github.com/ESGT1299/StockMarket-ETL/internal/domain/models"
	"github.com/ESGT1299/StockMarket-ETL/internal/etl"
	"github.com/ESGT1299/StockMarket-ETL/internal/logger"
)

// parseSymbols splits a comma-separated ticker list, dropping blanks.
// Case and order are left alone; the pipeline normalizes further.
func parseSymbols(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// resolveRange turns the -start/-end flags into a concrete date range.
//
// Behavior:
//   - Both given: parsed as-is.
//   - No -end: the most recent trading day on or before now.
//   - No -start: lookback trading days counted back from the end,
//     so weekends and market holidays don't shrink the data window.
func resolveRange(startStr, endStr string, lookback int, now time.Time) (time.Time, time.Time, error) {
	if lookback < 1 {
		lookback = 1
	}

	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = time.Parse(models.DateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -end %q: %w", endStr, err)
		}
	} else {
		end = etl.LastNTradingDays(1, now)[0]
	}

	if startStr != "" {
		start, err = time.Parse(models.DateLayout, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -start %q: %w", startStr, err)
		}
	} else {
		days := etl.LastNTradingDays(lookback, end)
		start = days[len(days)-1]
	}

	return start, end, nil
}

// runPipeline assembles the application and executes one ETL run.
//
// The process exits non-zero only when the run itself fails (unusable
// input, canceled context, or a store failure). Per-symbol provider and
// validation failures are reported in the summary and do not fail the
// process; re-running later backfills them without duplicating rows.
func runPipeline(symbolsCSV, startStr, endStr string, lookback, timeoutSeconds int) {
	symbols := parseSymbols(symbolsCSV)
	start, end, err := resolveRange(startStr, endStr, lookback, time.Now().UTC())
	if err != nil {
		logger.L().Fatal().Err(err).Msg("invalid date range")
	}

	pipeline, cleanup, err := app.InitializeApp()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("app init error")
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
		defer cancel()
	}

	summary, err := pipeline.Run(ctx, symbols, start, end)
	if err != nil {
		logger.L().Fatal().Err(err).Str("run_id", summary.RunID).Msg("run failed")
	}

	for _, f := range summary.Failed {
		logger.L().Warn().Str("symbol", f.Symbol).Str("reason", f.Reason).Msg("symbol failed")
	}
	logger.L().Info().
		Str("run_id", summary.RunID).
		Int("inserted", summary.Inserted).
		Int("skipped", summary.Skipped).
		Int("dropped", summary.Dropped).
		Int("failed", len(summary.Failed)).
		Msg("etl completed")
}

// main is the entry point of the stock market ETL application.
//
// Modes (selected via --mode flag):
//   - etl:     Fetches daily prices for the configured symbols and loads
//     new rows into PostgreSQL.
//   - migrate: Applies pending SQL migrations and exits.
//
// Flags:
//   - --mode:     Execution mode ("etl" or "migrate"). Default: "etl".
//   - --symbols:  Comma-separated tickers. Defaults to ETL_SYMBOLS.
//   - --start:    Range start (YYYY-MM-DD). Defaults to -lookback trading days back.
//   - --end:      Range end (YYYY-MM-DD). Defaults to the last trading day.
//   - --lookback: Trading days covered when --start is omitted.
//   - --parallel: Max concurrent symbol fetches (0 keeps ETL_PARALLEL).
//   - --timeout:  Overall run timeout in seconds (0 disables it).
func main() {
	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "etl", "Mode: etl or migrate")
	symbols := flag.String("symbols", config.AppConfig.Pipeline.Symbols, "Comma-separated ticker symbols")
	start := flag.String("start", "", "Range start YYYY-MM-DD (default: -lookback trading days back)")
	end := flag.String("end", "", "Range end YYYY-MM-DD (default: last trading day)")
	lookback := flag.Int("lookback", config.AppConfig.Pipeline.LookbackDays, "Trading days to cover when -start is omitted")
	parallel := flag.Int("parallel", 0, "Max concurrent symbol fetches (0 = config)")
	timeout := flag.Int("timeout", config.AppConfig.Pipeline.RunTimeoutSeconds, "Overall run timeout in seconds (0 = none)")
	flag.Parse()

	if *parallel > 0 {
		config.AppConfig.Pipeline.Parallel = *parallel
	}

	switch *mode {
	case "etl":
		logger.L().Info().Msg("running etl")
		runPipeline(*symbols, *start, *end, *lookback, *timeout)

	case "migrate":
		logger.L().Info().Msg("applying migrations")
		if err := app.Migrate(); err != nil {
			logger.L().Fatal().Err(err).Msg("migration failed")
		}
		logger.L().Info().Msg("migrations applied")

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
