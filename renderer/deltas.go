package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/reconcile"
)

// EquityDeltasMarkdown renders the per-ticker value comparison for tickers
// held on both sides, largest absolute difference first.
func EquityDeltasMarkdown(deltas []reconcile.EquityDelta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Equity differences (%d)\n\n", len(deltas))
	if len(deltas) == 0 {
		fmt.Fprintln(&b, "No equity differences.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Ticker | Name | Type | Ledger Qty | Broker Qty | Ledger Price | Broker Price | Ledger Equity | Broker Equity | Difference |")
	fmt.Fprintln(&b, "|:---|:---|:---:|---:|---:|---:|---:|---:|---:|---:|")
	for _, d := range deltas {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			d.Ticker,
			d.Name,
			d.Class,
			d.LedgerQuantity,
			d.BrokerageQuantity,
			d.LedgerQuote,
			d.BrokerageQuote,
			d.LedgerEquity,
			d.BrokerageEquity,
			d.Difference.SignedString(),
		)
	}
	fmt.Fprintln(&b, "\nDifferences may reflect after-hours pricing skew between the two sources.")
	return b.String()
}
