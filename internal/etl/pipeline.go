// Package etl orchestrates the extract-transform-load cycle for daily
// stock prices: symbols are fetched and transformed concurrently, then
// loaded through a single duplicate-suppressing write path.
package etl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ESGT1299/StockMarket-ETL/internal/domain/models"
	"github.com/ESGT1299/StockMarket-ETL/internal/extract"
	"github.com/ESGT1299/StockMarket-ETL/internal/logger"
	"github.com/ESGT1299/StockMarket-ETL/internal/transform"
)

// ErrNoSymbols is returned by Run when normalization leaves nothing to process.
var ErrNoSymbols = errors.New("etl: no symbols to process")

// Extractor fetches one symbol's raw daily series from the provider.
type Extractor interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) (extract.RawSeries, error)
}

// Loader persists transformed records and reports inserted vs skipped.
type Loader interface {
	Load(ctx context.Context, records []models.PriceRecord) (models.LoadResult, error)
}

// Options bound the pipeline's concurrency.
type Options struct {
	// Parallel is the maximum number of symbols fetched at once.
	Parallel int
	// SymbolTimeout caps a single symbol's fetch, zero means no cap.
	SymbolTimeout time.Duration
}

// Pipeline runs the full cycle for a set of symbols.
type Pipeline struct {
	extractor     Extractor
	loader        Loader
	parallel      int
	symbolTimeout time.Duration
}

// NewPipeline wires an extractor and a loader into a runnable pipeline.
func NewPipeline(extractor Extractor, loader Loader, opts Options) *Pipeline {
	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = 1
	}
	return &Pipeline{
		extractor:     extractor,
		loader:        loader,
		parallel:      parallel,
		symbolTimeout: opts.SymbolTimeout,
	}
}

// Run executes one cycle over symbols for the inclusive date range
// start..end. An end in the future is clamped to today.
//
// Provider and validation failures are isolated per symbol and reported
// in the summary's Failed list; re-running after a partial failure is
// safe because stored rows are skipped, not rewritten. Run returns an
// error only for unusable input, a canceled context, or a store failure.
// The returned summary is meaningful in every case, including the rows
// committed before a store failure.
func (p *Pipeline) Run(ctx context.Context, symbols []string, start, end time.Time) (models.RunSummary, error) {
	summary := models.RunSummary{RunID: uuid.NewString()}

	normalized := normalizeSymbols(symbols)
	if len(normalized) == 0 {
		return summary, ErrNoSymbols
	}
	summary.Symbols = len(normalized)

	start = truncateToDate(start.UTC())
	end = truncateToDate(end.UTC())
	if today := truncateToDate(time.Now().UTC()); end.After(today) {
		end = today
	}
	if start.After(end) {
		return summary, fmt.Errorf("etl: start %s is after end %s",
			start.Format(models.DateLayout), end.Format(models.DateLayout))
	}

	log := logger.WithRun(summary.RunID)
	log.Info().
		Int("symbols", summary.Symbols).
		Str("start", start.Format(models.DateLayout)).
		Str("end", end.Format(models.DateLayout)).
		Msg("starting run")

	var (
		mu      sync.Mutex
		records []models.PriceRecord
	)

	g, runCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, p.parallel)

	for _, symbol := range normalized {
		sym := symbol
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			fetchCtx := runCtx
			if p.symbolTimeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(runCtx, p.symbolTimeout)
				defer cancel()
			}

			series, err := p.extractor.FetchDaily(fetchCtx, sym, start, end)
			if err != nil {
				mu.Lock()
				summary.Failed = append(summary.Failed, models.SymbolError{Symbol: sym, Reason: err.Error()})
				mu.Unlock()
				log.Warn().Err(err).Str("symbol", sym).Msg("extract failed, symbol skipped")
				return nil
			}

			recs, dropped, err := transform.DailyRecords(sym, series)
			if err != nil {
				mu.Lock()
				summary.Failed = append(summary.Failed, models.SymbolError{Symbol: sym, Reason: err.Error()})
				mu.Unlock()
				log.Warn().Err(err).Str("symbol", sym).Msg("transform failed, symbol skipped")
				return nil
			}

			mu.Lock()
			records = append(records, recs...)
			summary.Dropped += dropped
			mu.Unlock()

			log.Info().
				Str("symbol", sym).
				Int("records", len(recs)).
				Int("dropped", dropped).
				Msg("symbol extracted")
			return nil
		})
	}

	// Workers never return errors; failures stay per-symbol.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Symbol != records[j].Symbol {
			return records[i].Symbol < records[j].Symbol
		}
		return records[i].Date.Before(records[j].Date)
	})
	sort.Slice(summary.Failed, func(i, j int) bool {
		return summary.Failed[i].Symbol < summary.Failed[j].Symbol
	})
	summary.Records = len(records)

	loaded, err := p.loader.Load(ctx, records)
	summary.Inserted = loaded.Inserted
	summary.Skipped = loaded.Skipped
	if err != nil {
		return summary, err
	}

	log.Info().
		Int("symbols", summary.Symbols).
		Int("records", summary.Records).
		Int("inserted", summary.Inserted).
		Int("skipped", summary.Skipped).
		Int("dropped", summary.Dropped).
		Int("failed", len(summary.Failed)).
		Msg("run completed")

	return summary, nil
}

// normalizeSymbols trims, uppercases, and dedupes while keeping the
// caller's order.
func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
