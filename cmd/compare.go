package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/renderer"
	"github.com/google/subcommands"
)

// compareCmd holds the flags for the 'compare' subcommand.
type compareCmd struct {
	ledgerFile string
	update     bool
	orders     bool
	canceled   bool
	deltas     bool
	min        string
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "reconcile the ledger export against brokerage holdings" }
func (*compareCmd) Usage() string {
	return `pcr compare -l <export.csv> [-u] [-orders] [-canceled] [-deltas -min <amount>]

  Compares the holdings of the personal-finance ledger export against the
  positions held at the brokerage, and reports the tickers missing on either
  side. With -orders, the order history of the tickers missing from the
  ledger is fetched and displayed. With -deltas, tickers held on both sides
  are compared by equity value.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Path to the ledger export file (required)")
	f.BoolVar(&c.update, "u", false, "refetch brokerage positions instead of using the cache files")
	f.BoolVar(&c.orders, "orders", false, "fetch and display order history for tickers missing from the ledger")
	f.BoolVar(&c.canceled, "canceled", false, "also show canceled and failed orders")
	f.BoolVar(&c.deltas, "deltas", false, "compare equity values for tickers held on both sides")
	f.StringVar(&c.min, "min", "", "minimum equity difference to report (required with -deltas)")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ledgerFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -l <export.csv> is required.")
		return subcommands.ExitUsageError
	}
	// Equity-comparison mode needs an explicit noise threshold, and the
	// threshold is meaningless without the mode.
	if c.min != "" && !c.deltas {
		fmt.Fprintln(os.Stderr, "Error: -min requires -deltas.")
		return subcommands.ExitUsageError
	}
	if c.deltas && c.min == "" {
		fmt.Fprintln(os.Stderr, "Error: -deltas requires -min <amount>.")
		return subcommands.ExitUsageError
	}
	var minDiff float64
	if c.deltas {
		var err error
		if minDiff, err = strconv.ParseFloat(c.min, 64); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -min value %q: %v\n", c.min, err)
			return subcommands.ExitUsageError
		}
	}

	if c.update || !cachesExist() {
		if status := (&fetchCmd{}).Execute(ctx, f); status != subcommands.ExitSuccess {
			return status
		}
	}

	// Equity deltas need crypto quotes, plain reconciliation does not.
	brokerage, err := loadBrokerage(ctx, c.deltas)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading brokerage positions: %v\n", err)
		return subcommands.ExitFailure
	}

	rows, err := reconcile.ReadLedgerExportFile(c.ledgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ledger export: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := reconcile.NormalizeLedger(rows, "USD")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error normalizing ledger export: %v\n", err)
		return subcommands.ExitFailure
	}
	reconcile.ResolveClasses(ledger, brokerage)

	rec := reconcile.Reconcile(ledger, brokerage)
	printMarkdown(renderer.ReconciliationMarkdown(rec))

	if c.orders && rec.MissingFromLedger.Len() > 0 {
		if status := c.showOrders(ctx, rec); status != subcommands.ExitSuccess {
			return status
		}
	}

	if c.deltas {
		deltas, err := reconcile.EquityDeltas(ledger, brokerage, reconcile.InBoth(ledger, brokerage))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing equity deltas: %v\n", err)
			return subcommands.ExitFailure
		}
		deltas = reconcile.FilterDeltas(deltas, reconcile.M(minDiff, "USD"))
		printMarkdown(renderer.EquityDeltasMarkdown(deltas))
	}

	return subcommands.ExitSuccess
}

// showOrders fetches and displays the order history for the tickers missing
// from the ledger. Stock and crypto history come from different endpoints.
func (c *compareCmd) showOrders(ctx context.Context, rec reconcile.Reconciliation) subcommands.ExitStatus {
	client, err := newClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	stocks, cryptos := reconcile.SplitByClass(rec.MissingFromLedger)
	opts := reconcile.OrderOptions{ShowCanceled: c.canceled}

	if len(stocks) > 0 {
		fmt.Println("Getting missing stock order info...")
		sets, err := reconcile.NormalizeOrderSets(client.StockOrders(ctx, stocks), opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown("## Stock orders missing from the ledger\n\n" + renderer.OrdersMarkdown(sets, opts))
	}

	if len(cryptos) > 0 {
		fmt.Println("Getting missing crypto order info...")
		// The crypto order source expects bare currency codes.
		codes := make([]string, 0, len(cryptos))
		for _, ticker := range cryptos {
			codes = append(codes, reconcile.BareTicker(ticker))
		}
		sets, err := reconcile.NormalizeOrderSets(client.CryptoOrders(ctx, codes), opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown("## Crypto orders missing from the ledger\n\n" + renderer.OrdersMarkdown(sets, opts))
	}

	return subcommands.ExitSuccess
}
