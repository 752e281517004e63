package extract

import (
	"errors"
	"fmt"
)

// ErrUnknownSymbol reports a symbol the provider does not recognize.
// Permanent: retrying the call cannot succeed.
var ErrUnknownSymbol = errors.New("unknown symbol")

// ErrThrottled reports a rate-limited call. Transient: eligible for retry.
var ErrThrottled = errors.New("provider throttled request")

// ProviderError ties a terminal provider failure to the symbol that caused
// it. The pipeline records it in the run summary instead of aborting the
// batch; errors.Is still reaches the underlying cause through Unwrap.
type ProviderError struct {
	Symbol string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: symbol %s: %v", e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
