package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ESGT1299/StockMarket-ETL/config"
	"github.com/ESGT1299/StockMarket-ETL/internal/logger"
)

// Sent on every request; the provider rejects the default Go user agent.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

const defaultRetryInterval = 500 * time.Millisecond

// Client fetches daily price history from the market-data provider's
// chart HTTP API. It is safe for concurrent use; the pipeline calls it
// from one goroutine per symbol.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int

	// first backoff wait; shortened in tests
	retryInterval time.Duration
}

// NewClient builds a provider client from explicit configuration.
//
// Parameters:
//   - cfg (config.ProviderConfig): base URL, per-request timeout, and the
//     retry budget for transient failures.
//
// Returns:
//   - *Client: ready to use; no network I/O happens until FetchDaily.
func NewClient(cfg config.ProviderConfig) *Client {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		maxRetries:    retries,
		retryInterval: defaultRetryInterval,
	}
}

// FetchDaily retrieves the daily series for one symbol over [start, end],
// both bounds inclusive, retrying transient failures with exponential
// backoff. An unknown symbol fails immediately without retries. All
// terminal failures come back as a *ProviderError naming the symbol.
func (c *Client) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (RawSeries, error) {
	var series RawSeries

	op := func() error {
		s, err := c.fetchOnce(ctx, symbol, start, end)
		if err != nil {
			if errors.Is(err, ErrUnknownSymbol) {
				return backoff.Permanent(err)
			}
			return err
		}
		series = s
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		logger.L().Warn().
			Str("symbol", symbol).
			Dur("retry_in", wait).
			Err(err).
			Msg("provider call failed, will retry")
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return RawSeries{}, &ProviderError{Symbol: symbol, Err: err}
	}
	return series, nil
}

// fetchOnce performs a single chart request. The provider treats period2
// as an exclusive bound at day granularity, so one day is added to keep
// the caller's end date inclusive.
func (c *Client) fetchOnce(ctx context.Context, symbol string, start, end time.Time) (RawSeries, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	params.Set("interval", "1d")

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return RawSeries{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RawSeries{}, fmt.Errorf("chart request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusNotFound:
		return RawSeries{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	case http.StatusTooManyRequests:
		return RawSeries{}, ErrThrottled
	default:
		return RawSeries{}, httpError(resp)
	}

	var out chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return RawSeries{}, fmt.Errorf("decode chart response: %w", err)
	}

	if e := out.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return RawSeries{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, e.Description)
		}
		return RawSeries{}, fmt.Errorf("provider error %s: %s", e.Code, e.Description)
	}
	if len(out.Chart.Result) == 0 {
		// No error and no result: nothing traded in the window.
		return RawSeries{Symbol: symbol}, nil
	}

	res := out.Chart.Result[0]
	series := RawSeries{
		Symbol:     symbol,
		Timezone:   res.Meta.ExchangeTimezoneName,
		Timestamps: res.Timestamp,
	}
	if len(res.Indicators.Quote) > 0 {
		q := res.Indicators.Quote[0]
		series.Open = q.Open
		series.High = q.High
		series.Low = q.Low
		series.Close = q.Close
		series.Volume = q.Volume
	}
	return series, nil
}

// httpError builds an error from an unexpected status, keeping a bounded
// body snippet for diagnosis.
func httpError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("provider returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
}
