package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/reconcile/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completer describes the CLI for shell completion. Install with
// COMP_INSTALL=1 pcr.
var completer = &complete.Command{
	Flags: map[string]complete.Predictor{
		"stock-cache":  predict.Files("*.json"),
		"crypto-cache": predict.Files("*.json"),
	},
	Sub: map[string]*complete.Command{
		"login": {},
		"fetch": {},
		"compare": {
			Flags: map[string]complete.Predictor{
				"l":        predict.Files("*.csv"),
				"u":        predict.Nothing,
				"orders":   predict.Nothing,
				"canceled": predict.Nothing,
				"deltas":   predict.Nothing,
				"min":      predict.Something,
			},
		},
		"orders": {
			Flags: map[string]complete.Predictor{
				"t":        predict.Something,
				"crypto":   predict.Nothing,
				"canceled": predict.Nothing,
				"csv":      predict.Files("*.csv"),
				"qif":      predict.Files("*.qif"),
				"account":  predict.Something,
			},
		},
		"export": {
			Flags: map[string]complete.Predictor{
				"csv":  predict.Files("*.csv"),
				"xlsx": predict.Files("*.xlsx"),
				"q":    predict.Nothing,
			},
		},
		"topic": {
			Args: predict.Set{"readme", "compare", "orders", "exports", "session", "*"},
		},
		"assist": {
			Flags: map[string]complete.Predictor{
				"l": predict.Files("*.csv"),
			},
		},
	},
}

func main() {
	completer.Complete("pcr")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
