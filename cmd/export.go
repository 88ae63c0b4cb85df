package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/reconcile"
	"github.com/google/subcommands"
)

// exportCmd holds the flags for the 'export' subcommand.
type exportCmd struct {
	csvFile  string
	xlsxFile string
	quotes   bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the brokerage position snapshot" }
func (*exportCmd) Usage() string {
	return `pcr export [-csv <file>] [-xlsx <file>] [-q]

  Writes the brokerage position snapshot (from the cache files) to CSV or
  XLSX. With -q, live crypto quotes are fetched so crypto equity can be
  computed; without it crypto equity is reported as unknown.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.csvFile, "csv", "", "write the position snapshot to this CSV file")
	f.StringVar(&c.xlsxFile, "xlsx", "", "write the position snapshot to this XLSX file")
	f.BoolVar(&c.quotes, "q", false, "fetch live crypto quotes to compute crypto equity")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.csvFile == "" && c.xlsxFile == "" {
		fmt.Fprintln(os.Stderr, "Error: at least one of -csv or -xlsx is required.")
		return subcommands.ExitUsageError
	}

	table, err := loadBrokerage(ctx, c.quotes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading brokerage positions: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.csvFile != "" {
		if err := writeFile(c.csvFile, func(w *os.File) error {
			return reconcile.WritePositionsCSV(w, table)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Wrote position snapshot to %s\n", c.csvFile)
	}
	if c.xlsxFile != "" {
		if err := writeFile(c.xlsxFile, func(w *os.File) error {
			return reconcile.WritePositionsXLSX(w, table)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Wrote position snapshot to %s\n", c.xlsxFile)
	}

	return subcommands.ExitSuccess
}
