package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/reconcile"
)

// OrdersMarkdown renders the per-ticker order histories. Executions that are
// part of a multi-execution order carry a ** mark explained in a footnote.
// Tickers whose fetch failed are listed at the end, they were skipped, not
// silently dropped.
func OrdersMarkdown(sets []reconcile.TickerOrders, opts reconcile.OrderOptions) string {
	var b strings.Builder
	var failed []string
	hadData := false
	multi := false

	for _, set := range sets {
		if set.Err != nil {
			failed = append(failed, set.Ticker)
			continue
		}
		if len(set.Orders) == 0 {
			fmt.Fprintf(&b, "No order data for ticker %q.\n\n", set.Ticker)
			continue
		}
		hadData = true
		fmt.Fprintf(&b, "### %s\n\n", set.Ticker)
		fmt.Fprintln(&b, "| State | Side | Quantity | Amount | Price | Time | Exec | |")
		fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|:---|:---:|:---|")
		for _, o := range set.Orders {
			mark := ""
			if o.Executions > 1 {
				mark = "**"
				multi = true
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %d/%d | %s |\n",
				o.State,
				o.Side,
				o.Quantity,
				o.Amount,
				o.Price,
				o.FormatTime(),
				o.Execution,
				o.Executions,
				mark,
			)
		}
		b.WriteString("\n")
	}

	if multi {
		fmt.Fprintln(&b, "`**` part of an order with multiple executions.")
	}
	if hadData && !opts.ShowCanceled {
		fmt.Fprintln(&b, "Only showing filled orders.")
	}
	if hadData {
		fmt.Fprintln(&b, "More transaction data is available for orders shown.")
	}
	if !hadData && len(failed) == 0 {
		fmt.Fprintln(&b, "There was no order data.")
	}
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\nSkipped (fetch failed): %s.\n", strings.Join(failed, ", "))
	}
	return b.String()
}
