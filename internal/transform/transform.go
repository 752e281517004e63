// Package transform normalizes raw provider series into canonical price
// records. It is pure: no I/O, no shared state, deterministic output for
// identical input.
package transform

import (
	"fmt"
	"time"
	_ "time/tzdata" // exchange timezones must resolve even without host zoneinfo

	"github.com/ESGT1299/StockMarket-ETL/internal/domain/models"
	"github.com/ESGT1299/StockMarket-ETL/internal/extract"
)

// ValidationError reports a raw series that violates the provider's
// contract as a whole (misaligned parallel arrays). Per-row problems are
// never errors; those rows are dropped and counted instead.
type ValidationError struct {
	Symbol string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s: %s", e.Symbol, e.Reason)
}

// DailyRecords converts one symbol's raw series into PriceRecords, tagging
// every record with the symbol it was requested under.
//
// Behavior:
//   - Timestamps are interpreted in the exchange timezone from the series
//     metadata (UTC when absent or unknown) and reduced to a pure calendar
//     date at UTC midnight; no time-of-day survives.
//   - Rows are dropped and counted, not fatal, when: the timestamp is not
//     positive, all four prices are null (non-trading placeholder), any
//     price or the volume is negative, or high < low with both present.
//   - A null volume becomes 0. Price values are copied so records never
//     alias the decoded response arrays.
//
// Returns the records, the dropped-row count, and an error only when the
// series shape itself is invalid.
func DailyRecords(symbol string, series extract.RawSeries) ([]models.PriceRecord, int, error) {
	n := len(series.Timestamps)
	if n == 0 {
		return nil, 0, nil
	}

	switch {
	case len(series.Open) != n:
		return nil, 0, &ValidationError{Symbol: symbol, Reason: fmt.Sprintf("open has %d entries for %d timestamps", len(series.Open), n)}
	case len(series.High) != n:
		return nil, 0, &ValidationError{Symbol: symbol, Reason: fmt.Sprintf("high has %d entries for %d timestamps", len(series.High), n)}
	case len(series.Low) != n:
		return nil, 0, &ValidationError{Symbol: symbol, Reason: fmt.Sprintf("low has %d entries for %d timestamps", len(series.Low), n)}
	case len(series.Close) != n:
		return nil, 0, &ValidationError{Symbol: symbol, Reason: fmt.Sprintf("close has %d entries for %d timestamps", len(series.Close), n)}
	case len(series.Volume) != n:
		return nil, 0, &ValidationError{Symbol: symbol, Reason: fmt.Sprintf("volume has %d entries for %d timestamps", len(series.Volume), n)}
	}

	loc := time.UTC
	if series.Timezone != "" {
		if l, err := time.LoadLocation(series.Timezone); err == nil {
			loc = l
		}
	}

	records := make([]models.PriceRecord, 0, n)
	dropped := 0

	for i, ts := range series.Timestamps {
		if ts <= 0 {
			dropped++
			continue
		}

		open, high, low, closeP := series.Open[i], series.High[i], series.Low[i], series.Close[i]
		if open == nil && high == nil && low == nil && closeP == nil {
			dropped++
			continue
		}
		if negative(open) || negative(high) || negative(low) || negative(closeP) {
			dropped++
			continue
		}
		if high != nil && low != nil && *high < *low {
			dropped++
			continue
		}

		var volume int64
		if v := series.Volume[i]; v != nil {
			if *v < 0 {
				dropped++
				continue
			}
			volume = *v
		}

		day := time.Unix(ts, 0).In(loc)
		records = append(records, models.PriceRecord{
			Symbol: symbol,
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Open:   copyValue(open),
			High:   copyValue(high),
			Low:    copyValue(low),
			Close:  copyValue(closeP),
			Volume: volume,
		})
	}

	return records, dropped, nil
}

func negative(v *float64) bool { return v != nil && *v < 0 }

func copyValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
