package models

import "time"

// DateLayout is the canonical textual form of a trading-session date.
const DateLayout = "2006-01-02"

// PriceRecord is one normalized daily OHLCV row for a single symbol,
// the unit that flows through the pipeline from transform to load.
//
// Date carries no time-of-day component: it is always midnight UTC,
// regardless of the exchange timezone the provider reported.
// Price fields are pointers because the source may have no value for a
// session; a nil price is stored as SQL NULL. Volume has no null state,
// a missing provider value is coerced to 0.
type PriceRecord struct {
	Symbol string
	Date   time.Time
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume int64
}

// Key returns the natural key of the record. At most one stored row may
// exist per key; the load stage and the stock_data uniqueness constraint
// both enforce this.
func (r PriceRecord) Key() PriceKey {
	return PriceKey{Symbol: r.Symbol, Date: r.Date.Format(DateLayout)}
}

// PriceKey identifies a (symbol, trading day) pair. The date is kept as a
// formatted string so the struct is directly usable as a map key without
// time.Time equality pitfalls (monotonic clock, location pointers).
type PriceKey struct {
	Symbol string
	Date   string
}
