package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/reconcile/robinhood"
	"github.com/google/subcommands"
)

type loginCmd struct{}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "establish a brokerage session and store its token" }
func (*loginCmd) Usage() string {
	return `pcr login

  Logs in to the brokerage using RH_USERNAME, RH_PASSWORD and RH_TOTP_SECRET
  from the environment (or a .env file) and stores the session token in a
  temporary file for use by the other commands.
`
}

func (*loginCmd) SetFlags(f *flag.FlagSet) {}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if cfg.Username == "" || cfg.Password == "" {
		fmt.Fprintln(os.Stderr, "Error: RH_USERNAME and RH_PASSWORD must be set.")
		return subcommands.ExitUsageError
	}

	token, err := robinhood.Login(ctx, cfg.APIURL, cfg.Timeout, robinhood.Credentials{
		Username:   cfg.Username,
		Password:   cfg.Password,
		TOTPSecret: cfg.TOTPSecret,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := robinhood.StoreToken(token); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Println("✅ Brokerage session successfully stored.")
	return subcommands.ExitSuccess
}
