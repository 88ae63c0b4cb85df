package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/renderer"
	"github.com/google/subcommands"
)

// ordersCmd holds the flags for the 'orders' subcommand.
type ordersCmd struct {
	tickers  string
	crypto   bool
	canceled bool
	csvFile  string
	qifFile  string
	account  string
}

func (*ordersCmd) Name() string     { return "orders" }
func (*ordersCmd) Synopsis() string { return "fetch and export order history for explicit tickers" }
func (*ordersCmd) Usage() string {
	return `pcr orders -t TICKER[,TICKER...] [-crypto] [-canceled] [-csv <file>] [-qif <file>]

  Fetches the order history for the given tickers and displays it. With
  -csv or -qif the history is also written out for re-import into the
  personal-finance application. Crypto tickers may be given with or without
  the synthetic pair suffix (BTC and BTCUSDT are equivalent).
`
}

func (c *ordersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tickers, "t", "", "Comma-separated tickers to fetch (required)")
	f.BoolVar(&c.crypto, "crypto", false, "tickers are crypto currency codes, not stock symbols")
	f.BoolVar(&c.canceled, "canceled", false, "also show canceled and failed orders")
	f.StringVar(&c.csvFile, "csv", "", "write the order snapshot to this CSV file")
	f.StringVar(&c.qifFile, "qif", "", "write the orders to this QIF file")
	f.StringVar(&c.account, "account", "Brokerage", "account name for the QIF header block")
}

func (c *ordersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.tickers == "" {
		fmt.Fprintln(os.Stderr, "Error: -t TICKER[,TICKER...] is required.")
		return subcommands.ExitUsageError
	}
	var tickers []string
	for _, t := range strings.Split(c.tickers, ",") {
		if t = strings.TrimSpace(strings.ToUpper(t)); t != "" {
			tickers = append(tickers, t)
		}
	}

	client, err := newClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	opts := reconcile.OrderOptions{ShowCanceled: c.canceled}
	var raws []reconcile.RawOrderSet
	if c.crypto {
		codes := make([]string, 0, len(tickers))
		for _, t := range tickers {
			codes = append(codes, reconcile.BareTicker(t))
		}
		raws = client.CryptoOrders(ctx, codes)
	} else {
		raws = client.StockOrders(ctx, tickers)
	}
	sets, err := reconcile.NormalizeOrderSets(raws, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.OrdersMarkdown(sets, opts))

	if c.csvFile != "" {
		if err := writeFile(c.csvFile, func(w *os.File) error {
			return reconcile.WriteOrdersCSV(w, sets)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Wrote order snapshot to %s\n", c.csvFile)
	}
	if c.qifFile != "" {
		if err := writeFile(c.qifFile, func(w *os.File) error {
			return reconcile.WriteOrdersQIF(w, c.account, sets)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Wrote QIF orders to %s\n", c.qifFile)
	}

	return subcommands.ExitSuccess
}

// writeFile creates the file and runs the writer on it.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", path, err)
	}
	defer f.Close()
	return write(f)
}
