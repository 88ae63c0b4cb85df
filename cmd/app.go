// Package cmd implements the CLI application that reconciles ledger holdings
// against the brokerage.
package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/reconcile"
	"github.com/etnz/reconcile/robinhood"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&loginCmd{}, "session")
	c.Register(&fetchCmd{}, "session")

	c.Register(&compareCmd{}, "reconciliation")
	c.Register(&ordersCmd{}, "reconciliation")
	c.Register(&exportCmd{}, "reconciliation")

	c.Register(&AssistCmd{}, "help")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var stockCacheFile = flag.String("stock-cache", "robinhood_stock_positions.json", "Path to the cached stock positions file (JSON)")
var cryptoCacheFile = flag.String("crypto-cache", "robinhood_crypto_positions.json", "Path to the cached crypto positions file (JSON)")

// newClient builds a brokerage client from the environment configuration and
// the stored session token.
func newClient() (*robinhood.Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	token, err := robinhood.LoadToken()
	if err != nil {
		return nil, err
	}
	return robinhood.New(robinhood.Options{
		BaseURL:   cfg.APIURL,
		CryptoURL: cfg.CryptoAPIURL,
		Token:     token,
		Timeout:   cfg.Timeout,
		Debug:     cfg.Debug,
	}), nil
}

// cachesExist reports whether both position cache files are present.
func cachesExist() bool {
	_, serr := os.Stat(*stockCacheFile)
	_, cerr := os.Stat(*cryptoCacheFile)
	return serr == nil && cerr == nil
}

// decodeCache loads one cached positions file.
func decodeCache[T any](path string) (T, error) {
	var data T
	content, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("cannot read positions cache %q, run 'pcr fetch' first: %w", path, err)
	}
	if err := json.Unmarshal(content, &data); err != nil {
		return data, fmt.Errorf("cannot decode positions cache %q: %w", path, err)
	}
	return data, nil
}

// encodeCache saves one positions cache file, pretty printed so the cache
// doubles as a debugging artifact.
func encodeCache(path string, data any) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode positions cache %q: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("cannot write positions cache %q: %w", path, err)
	}
	return nil
}

// loadBrokerage builds the brokerage position table from the cache files.
func loadBrokerage(ctx context.Context, withQuotes bool) (*reconcile.PositionTable, error) {
	stocks, err := decodeCache[map[string]reconcile.RawStock](*stockCacheFile)
	if err != nil {
		return nil, err
	}
	cryptos, err := decodeCache[[]reconcile.RawCrypto](*cryptoCacheFile)
	if err != nil {
		return nil, err
	}

	var quotes map[string]reconcile.Money
	if withQuotes {
		client, err := newClient()
		if err != nil {
			return nil, err
		}
		codes := make([]string, 0, len(cryptos))
		for _, c := range cryptos {
			codes = append(codes, c.Currency.Code)
		}
		quotes = client.CryptoQuotes(ctx, codes)
	}
	return reconcile.NormalizeBrokerage(stocks, cryptos, quotes)
}
