// Package load is the only pipeline stage that mutates persistent state.
// It decides which incoming records are new, writes them in bounded
// transactional chunks, and accounts for every record it was given.
package load

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ESGT1299/StockMarket-ETL/internal/domain/models"
	"github.com/ESGT1299/StockMarket-ETL/internal/logger"
	"github.com/ESGT1299/StockMarket-ETL/internal/storage"
)

// StorageError marks a fatal store failure during load. Unlike provider
// and validation problems it aborts the run; the LoadResult returned with
// it still reports the rows committed before the failure.
type StorageError struct {
	Stage string
	Err   error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Stage, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

const defaultBatchSize = 500

// Loader persists transformed records with duplicate suppression.
// Records are immutable once transformed: the loader only ever inserts
// missing rows, it never updates stored ones.
type Loader struct {
	repo      storage.PriceRepository
	batchSize int
}

// New builds a Loader that writes through repo in batchSize-row
// transactions.
func New(repo storage.PriceRepository, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Loader{repo: repo, batchSize: batchSize}
}

// Load inserts the records not yet stored and reports both sides.
//
// Steps:
//  1. Dedupe in-batch by natural key; the first occurrence wins and
//     repeats count as skipped.
//  2. One batched read of the keys already stored for the incoming
//     symbols over the incoming date window; the set difference decides
//     what to insert. This pre-check only saves round-trips — the store's
//     uniqueness constraint plus the conditional insert stay
//     authoritative when another run races this one.
//  3. Insert the remainder in chunks, each chunk one all-or-nothing
//     transaction. Rows a concurrent writer got in first surface as
//     unaffected rows and are folded into the skipped count.
//
// On a store failure the error is a *StorageError and the returned result
// counts exactly what earlier chunks committed; those rows stay durable.
func (l *Loader) Load(ctx context.Context, records []models.PriceRecord) (models.LoadResult, error) {
	var result models.LoadResult
	if len(records) == 0 {
		return result, nil
	}

	fresh := make([]models.PriceRecord, 0, len(records))
	seen := make(map[models.PriceKey]struct{}, len(records))
	symbolSet := make(map[string]struct{})
	var start, end time.Time

	for _, rec := range records {
		key := rec.Key()
		if _, dup := seen[key]; dup {
			result.Skipped++
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, rec)

		symbolSet[rec.Symbol] = struct{}{}
		if start.IsZero() || rec.Date.Before(start) {
			start = rec.Date
		}
		if end.IsZero() || rec.Date.After(end) {
			end = rec.Date
		}
	}

	symbols := make([]string, 0, len(symbolSet))
	for s := range symbolSet {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	existing, err := l.repo.ExistingKeys(ctx, symbols, start, end)
	if err != nil {
		return result, &StorageError{Stage: "existing keys", Err: err}
	}

	toInsert := make([]models.PriceRecord, 0, len(fresh))
	for _, rec := range fresh {
		if _, dup := existing[rec.Key()]; dup {
			result.Skipped++
			continue
		}
		toInsert = append(toInsert, rec)
	}

	for len(toInsert) > 0 {
		chunk := toInsert
		if len(chunk) > l.batchSize {
			chunk = toInsert[:l.batchSize]
		}
		toInsert = toInsert[len(chunk):]

		n, err := l.repo.InsertPricesBatch(ctx, chunk)
		if err != nil {
			return result, &StorageError{Stage: "insert batch", Err: err}
		}
		result.Inserted += int(n)
		result.Skipped += len(chunk) - int(n)

		logger.L().Debug().
			Int("chunk", len(chunk)).
			Int64("inserted", n).
			Msg("load chunk committed")
	}

	return result, nil
}
