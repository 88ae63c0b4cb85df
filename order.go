package reconcile

import (
	"fmt"
	"sort"
	"time"
)

// RawExecution is one realized execution inside a raw order record.
type RawExecution struct {
	Quantity        string `json:"quantity"`
	Price           string `json:"price,omitempty"`
	Timestamp       string `json:"timestamp"`
	RoundedNotional string `json:"rounded_notional,omitempty"`
}

// RawOrder is one order record as returned by the brokerage data source.
// Stock orders carry executed_notional and per-execution prices; crypto
// orders carry rounded_executed_notional and an order-level price.
type RawOrder struct {
	Symbol           string         `json:"symbol"`
	State            string         `json:"state"`
	Side             string         `json:"side"`
	Type             string         `json:"type"`
	Quantity         string         `json:"quantity"`
	Price            string         `json:"price,omitempty"`
	Fees             string         `json:"fees,omitempty"`
	ExecutedNotional *RawNotional   `json:"executed_notional,omitempty"`
	RoundedNotional  string         `json:"rounded_executed_notional,omitempty"`
	Executions       []RawExecution `json:"executions"`
}

// RawNotional is the order-level aggregated notional of a stock order.
type RawNotional struct {
	Amount string `json:"amount"`
}

const stateFilled = "filled"

// Order is one realized execution in canonical form. An order with N
// executions yields N Order values sharing ticker, side and type.
//
// Amount has the attributable fee already subtracted. The fee is attributed
// to the first execution only, so Amount+Fee recovers the conventional gross
// value for that execution, and Fee is zero for the others.
type Order struct {
	Ticker     string
	Time       time.Time
	State      string
	Side       string
	Type       string
	Execution  int // 1-based index within the parent order
	Executions int // total execution count of the parent order
	Quantity   Quantity
	Price      Money
	Amount     Money
	Fee        Money
}

// FormatTime renders the execution instant in the fixed, locale-independent
// display format.
func (o Order) FormatTime() string {
	if o.Time.IsZero() {
		return ""
	}
	return o.Time.Format("2006-01-02 15:04:05 MST")
}

// OrderOptions configures order normalization, threaded explicitly through
// enrichment and formatting instead of living in ambient state.
type OrderOptions struct {
	// ShowCanceled includes orders in non-terminal states. Their requested,
	// not executed, quantity is reported and no price, amount or timestamp
	// is available.
	ShowCanceled bool
}

// RawOrderSet is the raw order history fetched for one requested ticker.
// The fetcher produces one slot per requested ticker in caller order; a
// ticker with no orders gets an empty Raws slice, and a failed fetch records
// the error without aborting the other tickers.
type RawOrderSet struct {
	Ticker string
	Raws   []RawOrder
	Err    error
}

// TickerOrders is the normalized order history for one requested ticker.
// Slot correspondence with the request is preserved: callers rely on the
// positional ticker to order-set mapping.
type TickerOrders struct {
	Ticker string
	Orders []Order
	Err    error
}

// NormalizeOrderSets normalizes each fetched slot, preserving order and
// per-ticker fetch errors. Normalization failures (symbol mismatch,
// unrecognized record shape) are fatal and abort the whole conversion.
func NormalizeOrderSets(sets []RawOrderSet, opts OrderOptions) ([]TickerOrders, error) {
	out := make([]TickerOrders, len(sets))
	for i, set := range sets {
		out[i] = TickerOrders{Ticker: set.Ticker, Err: set.Err}
		if set.Err != nil {
			continue
		}
		orders, err := NormalizeOrders(set.Ticker, set.Raws, opts)
		if err != nil {
			return nil, err
		}
		SortOrders(orders)
		out[i].Orders = orders
	}
	return out, nil
}

// orderShape names the observed order-record variants. The amount
// computation differs per variant, and classification happens before any
// amount math so each branch's precondition is explicit.
type orderShape int

const (
	// shapeMultiExecNotional: more than one execution, each with its own
	// notional amount.
	shapeMultiExecNotional orderShape = iota
	// shapeMultiExecDerived: more than one execution but no per-execution
	// notional (observed upstream quirk); amount is price times quantity.
	shapeMultiExecDerived
	// shapeSingleExec: exactly one execution; amount is the order-level
	// aggregated notional.
	shapeSingleExec
	// shapeCryptoAggregate: crypto order; amount is the order-level rounded
	// aggregate notional.
	shapeCryptoAggregate
)

// classify names the variant of a filled raw order, or fails loud on a
// record shape that matches none.
func classify(raw RawOrder) (orderShape, error) {
	if raw.Type == "crypto" {
		if raw.RoundedNotional == "" {
			return 0, fmt.Errorf("%w: crypto order without rounded_executed_notional: %+v", ErrMalformedInput, raw)
		}
		return shapeCryptoAggregate, nil
	}
	switch n := len(raw.Executions); {
	case n > 1:
		allNotional, allPriced := true, true
		for _, e := range raw.Executions {
			allNotional = allNotional && e.RoundedNotional != ""
			allPriced = allPriced && e.Price != ""
		}
		if allNotional {
			return shapeMultiExecNotional, nil
		}
		if allPriced {
			return shapeMultiExecDerived, nil
		}
		return 0, fmt.Errorf("%w: multi-execution order without notionals or prices: %+v", ErrMalformedInput, raw)
	case n == 1:
		if raw.ExecutedNotional == nil {
			return 0, fmt.Errorf("%w: order without executed_notional: %+v", ErrMalformedInput, raw)
		}
		return shapeSingleExec, nil
	default:
		return 0, fmt.Errorf("%w: filled order without executions: %+v", ErrMalformedInput, raw)
	}
}

// NormalizeOrders flattens raw order records for one ticker into canonical
// per-execution Order records.
//
// It fails with ErrSymbolMismatch when a record's embedded symbol disagrees
// with the requested ticker, and with ErrMalformedInput on any record shape
// it does not recognize: an unexpected record surfaces before terminating
// rather than being skipped silently, a miscounted fee feeding a ledger
// import is worse than an aborted run.
func NormalizeOrders(ticker string, raws []RawOrder, opts OrderOptions) ([]Order, error) {
	var orders []Order
	for _, raw := range raws {
		if raw.Symbol != ticker {
			return nil, fmt.Errorf("%w: got %q, requested %q", ErrSymbolMismatch, raw.Symbol, ticker)
		}

		if raw.State != stateFilled {
			if !opts.ShowCanceled {
				continue
			}
			// Nothing was executed: report the requested quantity only.
			quantity, err := ParseQuantity(raw.Quantity)
			if err != nil {
				return nil, fmt.Errorf("%w: order %+v: %v", ErrMalformedInput, raw, err)
			}
			orders = append(orders, Order{
				Ticker:     ticker,
				State:      raw.State,
				Side:       raw.Side,
				Type:       raw.Type,
				Execution:  1,
				Executions: 1,
				Quantity:   quantity,
			})
			continue
		}

		flat, err := normalizeFilled(ticker, raw)
		if err != nil {
			return nil, err
		}
		orders = append(orders, flat...)
	}
	return orders, nil
}

// normalizeFilled flattens one filled order into per-execution records.
func normalizeFilled(ticker string, raw RawOrder) ([]Order, error) {
	shape, err := classify(raw)
	if err != nil {
		return nil, err
	}

	fee := M(0, "USD")
	if raw.Fees != "" {
		if fee, err = ParseMoney(raw.Fees, "USD"); err != nil {
			return nil, fmt.Errorf("%w: order %+v has invalid fees: %v", ErrMalformedInput, raw, err)
		}
	}

	orders := make([]Order, 0, len(raw.Executions))
	for i, exec := range raw.Executions {
		quantity, err := ParseQuantity(exec.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%w: order %+v has invalid execution quantity: %v", ErrMalformedInput, raw, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, exec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: order %+v has invalid execution timestamp: %v", ErrMalformedInput, raw, err)
		}

		var price Money
		if shape == shapeCryptoAggregate {
			// Crypto puts the price with the order data.
			price, err = ParseMoney(raw.Price, "USD")
		} else {
			price, err = ParseMoney(exec.Price, "USD")
		}
		if err != nil {
			return nil, fmt.Errorf("%w: order %+v has invalid price: %v", ErrMalformedInput, raw, err)
		}

		var amount Money
		switch shape {
		case shapeMultiExecNotional:
			amount, err = ParseMoney(exec.RoundedNotional, "USD")
		case shapeMultiExecDerived:
			amount, err = price.Mul(quantity), nil
		case shapeSingleExec:
			amount, err = ParseMoney(raw.ExecutedNotional.Amount, "USD")
		case shapeCryptoAggregate:
			amount, err = ParseMoney(raw.RoundedNotional, "USD")
		}
		if err != nil {
			return nil, fmt.Errorf("%w: order %+v has invalid notional: %v", ErrMalformedInput, raw, err)
		}

		// The fee is attributed to the first execution only.
		execFee := M(0, "USD")
		if i == 0 {
			execFee = fee
			amount = amount.Sub(fee)
		}

		orders = append(orders, Order{
			Ticker:     ticker,
			Time:       ts,
			State:      raw.State,
			Side:       raw.Side,
			Type:       raw.Type,
			Execution:  i + 1,
			Executions: len(raw.Executions),
			Quantity:   quantity,
			Price:      price,
			Amount:     amount,
			Fee:        execFee,
		})
	}
	return orders, nil
}

// SortOrders orders the records chronologically; canceled records without a
// timestamp sort first, keeping their relative order.
func SortOrders(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Time.Before(orders[j].Time)
	})
}
