package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type fetchCmd struct{}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch brokerage positions into the local cache files" }
func (*fetchCmd) Usage() string {
	return `pcr fetch

  Fetches stock and crypto positions from the brokerage and saves them to
  the cache files, so that position data only needs to be fetched once when
  a comparison is run multiple times.
`
}

func (*fetchCmd) SetFlags(f *flag.FlagSet) {}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := newClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Print("Getting stock positions from the brokerage. This may take a few minutes... ")
	stocks, err := client.StockPositions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError fetching stock positions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("Done.")

	fmt.Print("Getting crypto positions from the brokerage... ")
	cryptos, err := client.CryptoPositions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError fetching crypto positions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("Done.")

	if err := encodeCache(*stockCacheFile, stocks); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := encodeCache(*cryptoCacheFile, cryptos); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Saved %d stock and %d crypto positions.\n", len(stocks), len(cryptos))
	return subcommands.ExitSuccess
}
