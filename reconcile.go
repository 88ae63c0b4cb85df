package reconcile

import (
	"fmt"
	"sort"
)

// Reconciliation holds the two projections of a ticker-level comparison.
//
// MissingFromLedger contains brokerage rows whose ticker is absent from the
// ledger table, MissingFromBrokerage the converse. Both are filtered of
// zero-quantity zero-equity noise and sorted by name.
type Reconciliation struct {
	MissingFromLedger    *PositionTable
	MissingFromBrokerage *PositionTable
}

// Reconcile computes the symmetric difference of tickers between the two
// tables. Either table may be empty: the non-empty side's tickers are then
// wholly missing from the other.
func Reconcile(ledger, brokerage *PositionTable) Reconciliation {
	rec := Reconciliation{
		MissingFromLedger:    NewPositionTable(),
		MissingFromBrokerage: NewPositionTable(),
	}
	for p := range brokerage.All() {
		if !ledger.Has(p.Ticker) && !isNoise(p) {
			rec.MissingFromLedger.Add(p)
		}
	}
	for p := range ledger.All() {
		if !brokerage.Has(p.Ticker) && !isNoise(p) {
			rec.MissingFromBrokerage.Add(p)
		}
	}
	rec.MissingFromLedger.SortByName()
	rec.MissingFromBrokerage.SortByName()
	return rec
}

// isNoise reports closed positions the ledger export retains historically:
// exactly zero quantity and exactly zero equity. A row with unknown equity
// is not noise.
func isNoise(p Position) bool {
	return p.Quantity.IsZero() && p.Equity.IsZero()
}

// InBoth returns the tickers present in both tables, in ledger table order.
func InBoth(ledger, brokerage *PositionTable) []string {
	var tickers []string
	for p := range ledger.All() {
		if brokerage.Has(p.Ticker) {
			tickers = append(tickers, p.Ticker)
		}
	}
	return tickers
}

// SplitByClass partitions a table's tickers per asset class. Order-history
// retrieval differs between stock and crypto, so the two lists are consumed
// separately.
func SplitByClass(t *PositionTable) (stocks, cryptos []string) {
	for p := range t.All() {
		switch p.Class {
		case Crypto:
			cryptos = append(cryptos, p.Ticker)
		default:
			stocks = append(stocks, p.Ticker)
		}
	}
	return stocks, cryptos
}

// EquityDelta is the per-ticker value comparison for a ticker present on
// both sides.
type EquityDelta struct {
	Ticker            string
	Name              string
	Class             AssetClass
	LedgerQuantity    Quantity
	BrokerageQuantity Quantity
	LedgerQuote       Money
	BrokerageQuote    Money
	LedgerEquity      Money
	BrokerageEquity   Money
	// Difference is ledger equity minus brokerage equity.
	Difference Money
}

// EquityDeltas computes the value difference for tickers present in both
// tables. Passing a ticker absent from either side fails with
// ErrInvalidComparison: the symmetric-difference tickers must be excluded
// beforehand, a delta for a one-sided ticker is meaningless.
//
// Tickers whose equity is unknown on either side are skipped (no delta can
// be computed without live quotes). Zero deltas are dropped, the rest is
// stable-sorted by absolute difference descending.
func EquityDeltas(ledger, brokerage *PositionTable, tickers []string) ([]EquityDelta, error) {
	var deltas []EquityDelta
	for _, ticker := range tickers {
		lp, lok := ledger.Get(ticker)
		bp, bok := brokerage.Get(ticker)
		if !lok || !bok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidComparison, ticker)
		}
		if !lp.Equity.Known() || !bp.Equity.Known() {
			continue
		}
		diff := lp.Equity.Sub(bp.Equity)
		if diff.IsZero() {
			continue
		}
		deltas = append(deltas, EquityDelta{
			Ticker:            ticker,
			Name:              bp.Name,
			Class:             bp.Class,
			LedgerQuantity:    lp.Quantity,
			BrokerageQuantity: bp.Quantity,
			LedgerQuote:       lp.Quote,
			BrokerageQuote:    bp.Quote,
			LedgerEquity:      lp.Equity,
			BrokerageEquity:   bp.Equity,
			Difference:        diff,
		})
	}
	// Stable: ties keep the original ticker order for determinism.
	sort.SliceStable(deltas, func(i, j int) bool {
		return deltas[i].Difference.Abs().GreaterThan(deltas[j].Difference.Abs())
	})
	return deltas, nil
}

// FilterDeltas drops deltas whose absolute difference is below min.
func FilterDeltas(deltas []EquityDelta, min Money) []EquityDelta {
	filtered := deltas[:0:0]
	for _, d := range deltas {
		if d.Difference.Abs().LessThan(min) {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}
