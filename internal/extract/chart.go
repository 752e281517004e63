package extract

// RawSeries is one symbol's daily history exactly as the provider shaped
// it: parallel arrays indexed by trading session. Entries may be nil where
// the source had no value. Timezone is the exchange timezone name from the
// provider's metadata; the transformer uses it to reduce timestamps to
// pure calendar dates.
type RawSeries struct {
	Symbol     string
	Timezone   string
	Timestamps []int64
	Open       []*float64
	High       []*float64
	Low        []*float64
	Close      []*float64
	Volume     []*int64
}

// Empty reports whether the series carries no sessions at all.
func (s RawSeries) Empty() bool { return len(s.Timestamps) == 0 }

// chartResponse mirrors the provider's chart endpoint envelope:
//
//	{"chart":{"result":[{...}],"error":null}}
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

// chartQuote holds the OHLCV parallel arrays. Pointer elements keep the
// provider's JSON nulls distinguishable from real zero values.
type chartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}
