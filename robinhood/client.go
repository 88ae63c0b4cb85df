package robinhood

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/reconcile"
	"github.com/go-resty/resty/v2"
)

// Options configures the brokerage client.
type Options struct {
	BaseURL   string // main brokerage API
	CryptoURL string // crypto trading API, a separate host
	Token     string // session token from Login
	Timeout   time.Duration
	Debug     bool
}

// Client fetches raw position, quote and order records. All calls are
// blocking; order fetches for independent tickers may run concurrently, see
// StockOrders.
type Client struct {
	api    *resty.Client
	crypto *resty.Client
}

func New(opts Options) *Client {
	build := func(base string) *resty.Client {
		return resty.New().
			SetDebug(opts.Debug).
			SetTimeout(opts.Timeout).
			SetBaseURL(base).
			SetAuthToken(opts.Token).
			SetHeader("Accept", "application/json")
	}
	return &Client{api: build(opts.BaseURL), crypto: build(opts.CryptoURL)}
}

// get fetches a payload and decodes it into data.
func get(ctx context.Context, c *resty.Client, url string, params map[string]string, data any) error {
	resp, err := c.R().SetContext(ctx).SetQueryParams(params).Get(url)
	if err != nil {
		return fmt.Errorf("cannot http GET %s: %w", url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("cannot http GET %s: %s", url, resp.Status())
	}
	if err := json.Unmarshal(resp.Body(), data); err != nil {
		return fmt.Errorf("could not decode %s json: %w", url, err)
	}
	return nil
}

// StockPositions fetches the held stock positions, keyed by ticker.
func (c *Client) StockPositions(ctx context.Context) (map[string]reconcile.RawStock, error) {
	positions := make(map[string]reconcile.RawStock)
	if err := get(ctx, c.api, "/positions/consolidated/", nil, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// CryptoPositions fetches the held crypto positions, including the
// degenerate fiat leg the normalizer drops.
func (c *Client) CryptoPositions(ctx context.Context) ([]reconcile.RawCrypto, error) {
	var payload struct {
		Results []reconcile.RawCrypto `json:"results"`
	}
	if err := get(ctx, c.crypto, "/holdings/", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// CryptoQuotes fetches the current mark price for each bare currency code.
// A code whose quote cannot be fetched is skipped with a log line: quotes
// only enable the equity column, their absence is not fatal.
func (c *Client) CryptoQuotes(ctx context.Context, codes []string) map[string]reconcile.Money {
	quotes := make(map[string]reconcile.Money)
	for _, code := range codes {
		price, err := c.cryptoQuote(ctx, code)
		if err != nil {
			log.Printf("no quote for %s (ignored): %v", code, err)
			continue
		}
		quotes[code] = price
	}
	return quotes
}

// cryptoQuote picks the mark price out of the quote payload. The payload
// shape varies between endpoint revisions, so it is read loosely with a
// jsonpath rather than a struct.
func (c *Client) cryptoQuote(ctx context.Context, code string) (reconcile.Money, error) {
	var jobj any
	url := fmt.Sprintf("/marketdata/forex/quotes/%sUSD/", code)
	if err := get(ctx, c.crypto, url, nil, &jobj); err != nil {
		return reconcile.Money{}, err
	}
	jval, err := jsonpath.Get("$.mark_price", jobj)
	if err != nil {
		// older payloads nest the quote under results
		jval, err = jsonpath.Get("$.results[0].mark_price", jobj)
	}
	if err != nil {
		return reconcile.Money{}, fmt.Errorf("no mark_price in quote payload for %q: %w", code, err)
	}
	// jsonpath is never clear about whether it returns a list of 1 answer
	// or a single answer, keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	s, ok := jval.(string)
	if !ok {
		return reconcile.Money{}, fmt.Errorf("mark_price for %q is not a string: %v", code, jval)
	}
	price, err := reconcile.ParseMoney(s, "USD")
	if err != nil {
		return reconcile.Money{}, fmt.Errorf("invalid mark_price for %q: %w", code, err)
	}
	return price, nil
}
