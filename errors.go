package reconcile

import (
	"errors"
	"fmt"
)

// Error taxonomy for the reconciliation pipeline. Fatal conditions are
// wrapped around one of these sentinels so callers can classify them with
// errors.Is; per-ticker fetch failures use FetchError and are recoverable.
var (
	// ErrInputFile reports a missing export file or an export file without
	// the expected securities section marker.
	ErrInputFile = errors.New("invalid ledger export file")

	// ErrMalformedInput reports an expected column absent from a parsed
	// table, or an unparseable record on the normalization path.
	ErrMalformedInput = errors.New("malformed input")

	// ErrSymbolMismatch reports an order whose embedded ticker disagrees
	// with the requested ticker. It signals upstream data corruption that
	// cannot be locally reconciled, and is fatal.
	ErrSymbolMismatch = errors.New("order symbol mismatch")

	// ErrAuth reports a login or session failure with the brokerage.
	ErrAuth = errors.New("brokerage authentication failed")

	// ErrInvalidComparison reports an equity delta attempted on a ticker
	// that is not present on both sides. This is a programming error in the
	// call ordering and fails loud.
	ErrInvalidComparison = errors.New("equity delta on non-matched ticker")
)

// FetchError reports a failed order-history fetch for one ticker. It does
// not abort the run: failed tickers are collected and reported at the end.
type FetchError struct {
	Ticker string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching orders for %q: %v", e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
