// Package renderer turns reconciliation results, order histories and equity
// deltas into markdown for console display. Pure presentation: nothing in
// here mutates the inputs.
package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/reconcile"
)

// PositionsMarkdown renders one canonical position table under a title, with
// a row count.
func PositionsMarkdown(title string, t *reconcile.PositionTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s (%d)\n\n", title, t.Len())
	if t.Len() == 0 {
		fmt.Fprintln(&b, "Nothing missing.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Ticker | Name | Quantity | Equity | Quote | Type |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|:---:|")
	for p := range t.All() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			p.Ticker,
			p.Name,
			p.Quantity,
			p.Equity,
			p.Quote,
			p.Class,
		)
	}
	return b.String()
}

// ReconciliationMarkdown renders both sides of the comparison.
func ReconciliationMarkdown(rec reconcile.Reconciliation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings Reconciliation\n\n")
	b.WriteString(PositionsMarkdown("Missing from ledger", rec.MissingFromLedger))
	b.WriteString("\n")
	b.WriteString(PositionsMarkdown("Missing from brokerage", rec.MissingFromBrokerage))
	return b.String()
}
