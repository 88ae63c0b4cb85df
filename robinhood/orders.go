package robinhood

import (
	"context"

	"github.com/etnz/reconcile"
	"golang.org/x/sync/errgroup"
)

// fetchWorkers bounds concurrent per-ticker order fetches. Purely a latency
// optimization: no ordering invariant depends on fetch order.
const fetchWorkers = 4

// StockOrders fetches the order history for each ticker, one result slot per
// requested ticker in caller order. A ticker with no orders gets an empty
// slice; a failed fetch records a FetchError in its slot without aborting
// the other tickers.
func (c *Client) StockOrders(ctx context.Context, tickers []string) []reconcile.RawOrderSet {
	sets := make([]reconcile.RawOrderSet, len(tickers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	for i, ticker := range tickers {
		g.Go(func() error {
			raws, err := c.stockOrders(ctx, ticker)
			if err != nil {
				err = &reconcile.FetchError{Ticker: ticker, Err: err}
			}
			sets[i] = reconcile.RawOrderSet{Ticker: ticker, Err: err}
			if err == nil {
				sets[i].Raws = raws
			}
			return nil // isolate failures per ticker
		})
	}
	g.Wait()
	return sets
}

func (c *Client) stockOrders(ctx context.Context, ticker string) ([]reconcile.RawOrder, error) {
	var payload struct {
		Results []reconcile.RawOrder `json:"results"`
	}
	if err := get(ctx, c.api, "/orders/", map[string]string{"symbol": ticker}, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// rawCryptoOrder is a crypto order before its currency pair is resolved to a
// symbol.
type rawCryptoOrder struct {
	reconcile.RawOrder
	CurrencyPairID string `json:"currency_pair_id"`
}

// CryptoOrders fetches all crypto orders in one pass and buckets them per
// requested bare currency code. The data source has no per-symbol crypto
// order endpoint; orders whose pair does not match any requested code are
// discarded.
func (c *Client) CryptoOrders(ctx context.Context, codes []string) []reconcile.RawOrderSet {
	sets := make([]reconcile.RawOrderSet, len(codes))
	index := make(map[string]int, len(codes))
	for i, code := range codes {
		sets[i] = reconcile.RawOrderSet{Ticker: code}
		index[code] = i
	}

	var payload struct {
		Results []rawCryptoOrder `json:"results"`
	}
	if err := get(ctx, c.crypto, "/orders/", nil, &payload); err != nil {
		// The bulk fetch failed: every requested code failed.
		for i, code := range codes {
			sets[i].Err = &reconcile.FetchError{Ticker: code, Err: err}
		}
		return sets
	}

	// Pair IDs repeat across orders, resolve each one once.
	pairSymbols := make(map[string]string)
	for _, raw := range payload.Results {
		symbol, ok := pairSymbols[raw.CurrencyPairID]
		if !ok {
			var err error
			symbol, err = c.pairSymbol(ctx, raw.CurrencyPairID)
			if err != nil {
				// Cannot tell which requested code this order belongs to,
				// so this is not isolatable: fail all remaining codes.
				for i, code := range codes {
					if sets[i].Err == nil {
						sets[i].Err = &reconcile.FetchError{Ticker: code, Err: err}
					}
				}
				return sets
			}
			pairSymbols[raw.CurrencyPairID] = symbol
		}
		code := reconcile.BareTicker(symbol)
		i, wanted := index[code]
		if !wanted {
			continue
		}
		// The upstream tags crypto orders market/limit like stock orders;
		// normalization routes on the crypto tag, so stamp it here along
		// with the resolved symbol.
		raw.Symbol = code
		raw.Type = "crypto"
		sets[i].Raws = append(sets[i].Raws, raw.RawOrder)
	}
	return sets
}

// pairSymbol resolves a currency pair ID to its pair symbol (e.g. BTCUSDT).
func (c *Client) pairSymbol(ctx context.Context, pairID string) (string, error) {
	var pair struct {
		Symbol string `json:"symbol"`
	}
	if err := get(ctx, c.crypto, "/currency_pairs/"+pairID+"/", nil, &pair); err != nil {
		return "", err
	}
	return pair.Symbol, nil
}
