package reconcile

import (
	"fmt"
	"iter"
	"sort"
	"strings"
)

// AssetClass tags a position as stock or crypto. The ledger export does not
// distinguish the two, so ledger rows start out unknown and are resolved by
// cross-referencing the brokerage table (see ResolveClasses).
type AssetClass string

const (
	Stock        AssetClass = "stock"
	Crypto       AssetClass = "crypto"
	UnknownClass AssetClass = "?"
)

// ParseAssetClass reads an asset class label. Anything unrecognized is
// unknown rather than an error, snapshots from older versions stay readable.
func ParseAssetClass(s string) AssetClass {
	switch AssetClass(s) {
	case Stock, Crypto:
		return AssetClass(s)
	default:
		return UnknownClass
	}
}

// pairSuffix is the synthetic fiat-pair suffix appended to crypto currency
// codes so that crypto tickers live in a key space that cannot collide with
// stock tickers (there is no 7-letter stock ticker ending in USDT).
const pairSuffix = "USDT"

// PairTicker builds the synthetic crypto ticker from a bare currency code:
// PairTicker("BTC") == "BTCUSDT".
func PairTicker(code string) string { return code + pairSuffix }

// BareTicker strips the synthetic fiat-pair suffix from a crypto ticker:
// BareTicker("BTCUSDT") == "BTC". Non-crypto tickers are returned unchanged.
func BareTicker(ticker string) string { return strings.TrimSuffix(ticker, pairSuffix) }

// Position is one canonical row of a holdings table.
//
// Equity and Quote may hold the unknown Money sentinel: tables can be built
// without live quotes, trading equity-delta capability for speed.
type Position struct {
	Ticker   string
	Name     string
	Quantity Quantity
	Equity   Money
	Quote    Money
	Class    AssetClass
}

// PositionTable is an ordered collection of positions indexed by ticker.
// Tickers are unique within a table.
type PositionTable struct {
	positions []Position
	index     map[string]int
}

func NewPositionTable() *PositionTable {
	return &PositionTable{index: make(map[string]int)}
}

// Add appends a position. Adding a duplicate ticker is an error: the caller
// built the table from inconsistent raw data.
func (t *PositionTable) Add(p Position) error {
	if _, dup := t.index[p.Ticker]; dup {
		return fmt.Errorf("%w: duplicate ticker %q", ErrMalformedInput, p.Ticker)
	}
	t.index[p.Ticker] = len(t.positions)
	t.positions = append(t.positions, p)
	return nil
}

// Get returns the position for a ticker.
func (t *PositionTable) Get(ticker string) (Position, bool) {
	i, ok := t.index[ticker]
	if !ok {
		return Position{}, false
	}
	return t.positions[i], true
}

// Has reports whether the table holds the ticker.
func (t *PositionTable) Has(ticker string) bool {
	_, ok := t.index[ticker]
	return ok
}

func (t *PositionTable) Len() int { return len(t.positions) }

// All iterates over positions in table order.
func (t *PositionTable) All() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for _, p := range t.positions {
			if !yield(p) {
				return
			}
		}
	}
}

// Tickers returns the tickers in table order.
func (t *PositionTable) Tickers() []string {
	tickers := make([]string, 0, len(t.positions))
	for _, p := range t.positions {
		tickers = append(tickers, p.Ticker)
	}
	return tickers
}

// SortByName sorts the table by security display name, ascending ordinal.
func (t *PositionTable) SortByName() {
	sort.SliceStable(t.positions, func(i, j int) bool {
		return t.positions[i].Name < t.positions[j].Name
	})
	for i, p := range t.positions {
		t.index[p.Ticker] = i
	}
}

// TotalEquity sums the known equity values of the table. Unknown equity rows
// do not contribute.
func (t *PositionTable) TotalEquity() Money {
	total := M(0, "")
	for _, p := range t.positions {
		if p.Equity.Known() {
			total = total.Add(p.Equity)
		}
	}
	return total
}

// ResolveClasses tags ledger positions with the asset class found in the
// brokerage table for matching tickers. Tickers absent from the brokerage
// table keep their unknown class.
func ResolveClasses(ledger, brokerage *PositionTable) {
	for i, p := range ledger.positions {
		if bp, ok := brokerage.Get(p.Ticker); ok {
			ledger.positions[i].Class = bp.Class
		}
	}
}
