package models

// LoadResult reports what one load call did with the records it was given.
//
// Fields:
//   - Inserted: rows actually written to the store.
//   - Skipped: rows suppressed as duplicates, whether by the batched
//     pre-check, by an in-batch repeat, or by a store-level conflict.
type LoadResult struct {
	Inserted int
	Skipped  int
}

// SymbolError records why a single symbol produced no rows. Per-symbol
// failures never abort the run; they are collected here so the summary can
// name the symbol and the reason without re-running with tracing.
type SymbolError struct {
	Symbol string
	Reason string
}

// RunSummary is the outcome of one full pipeline invocation.
type RunSummary struct {
	RunID    string        // correlates all log events of this run
	Symbols  int           // symbols requested after normalization
	Records  int           // records that reached the load stage
	Inserted int           // rows written
	Skipped  int           // duplicate rows suppressed
	Dropped  int           // rows discarded by validation during transform
	Failed   []SymbolError // symbols that yielded no data and why
}
