package robinhood

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/etnz/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client whose api and crypto endpoints both point at
// the given test server.
func newTestClient(server *httptest.Server) *Client {
	return New(Options{
		BaseURL:   server.URL,
		CryptoURL: server.URL,
		Token:     "test-token",
		Timeout:   5 * time.Second,
	})
}

func TestStockPositions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/positions/consolidated/", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"AAPL": {"name": "Apple Inc", "quantity": "10.00000000", "price": "150.00", "equity": "1500.00"}}`)
	}))
	defer server.Close()

	positions, err := newTestClient(server).StockPositions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "Apple Inc", positions["AAPL"].Name)
	assert.Equal(t, "1500.00", positions["AAPL"].Equity)
}

func TestCryptoPositions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/holdings/", r.URL.Path)
		fmt.Fprint(w, `{"results": [
			{"quantity": "0.50000000", "currency": {"code": "BTC", "name": "Bitcoin"}},
			{"quantity": "12.00000000", "currency": {"code": "USD", "name": "US Dollar"}}
		]}`)
	}))
	defer server.Close()

	cryptos, err := newTestClient(server).CryptoPositions(context.Background())
	require.NoError(t, err)
	require.Len(t, cryptos, 2)
	assert.Equal(t, "BTC", cryptos[0].Currency.Code)
	assert.Equal(t, "0.50000000", cryptos[0].Quantity)
}

func TestStockPositionsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server).StockPositions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCryptoQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/marketdata/forex/quotes/BTCUSD/":
			fmt.Fprint(w, `{"mark_price": "65000.00"}`)
		case "/marketdata/forex/quotes/ETHUSD/":
			// older payload revision nests the quote under results
			fmt.Fprint(w, `{"results": [{"mark_price": "3500.00"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	quotes := newTestClient(server).CryptoQuotes(context.Background(), []string{"BTC", "ETH", "DOGE"})

	require.Len(t, quotes, 2, "the failing DOGE quote is skipped, not fatal")
	assert.Equal(t, "65000", quotes["BTC"].Decimal().String())
	assert.Equal(t, "3500", quotes["ETH"].Decimal().String())
}

func TestStockOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/", r.URL.Path)
		switch r.URL.Query().Get("symbol") {
		case "AAPL":
			fmt.Fprint(w, `{"results": [{"symbol": "AAPL", "state": "filled", "side": "buy"}]}`)
		case "EMPTY":
			fmt.Fprint(w, `{"results": []}`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	sets := newTestClient(server).StockOrders(context.Background(), []string{"AAPL", "FAIL", "EMPTY"})

	require.Len(t, sets, 3, "one slot per requested ticker")

	assert.Equal(t, "AAPL", sets[0].Ticker)
	require.NoError(t, sets[0].Err)
	require.Len(t, sets[0].Raws, 1)
	assert.Equal(t, "filled", sets[0].Raws[0].State)

	assert.Equal(t, "FAIL", sets[1].Ticker)
	require.Error(t, sets[1].Err)
	var fetchErr *reconcile.FetchError
	require.ErrorAs(t, sets[1].Err, &fetchErr)
	assert.Equal(t, "FAIL", fetchErr.Ticker)

	assert.Equal(t, "EMPTY", sets[2].Ticker)
	assert.NoError(t, sets[2].Err)
	assert.Empty(t, sets[2].Raws)
}

func TestCryptoOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders/":
			fmt.Fprint(w, `{"results": [
				{"currency_pair_id": "pair-btc", "state": "filled", "side": "buy", "quantity": "0.001"},
				{"currency_pair_id": "pair-btc", "state": "filled", "side": "sell", "quantity": "0.002"},
				{"currency_pair_id": "pair-doge", "state": "filled", "side": "buy", "quantity": "100"}
			]}`)
		case "/currency_pairs/pair-btc/":
			fmt.Fprint(w, `{"symbol": "BTCUSDT"}`)
		case "/currency_pairs/pair-doge/":
			fmt.Fprint(w, `{"symbol": "DOGEUSDT"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	sets := newTestClient(server).CryptoOrders(context.Background(), []string{"BTC", "ETH"})

	require.Len(t, sets, 2)

	// Both BTC orders land in the BTC bucket, with the symbol rewritten to
	// the bare code. The unrequested DOGE order is discarded.
	assert.Equal(t, "BTC", sets[0].Ticker)
	require.NoError(t, sets[0].Err)
	require.Len(t, sets[0].Raws, 2)
	assert.Equal(t, "BTC", sets[0].Raws[0].Symbol)

	// A requested code with no orders is empty, not an error.
	assert.Equal(t, "ETH", sets[1].Ticker)
	assert.NoError(t, sets[1].Err)
	assert.Empty(t, sets[1].Raws)
}

func TestCryptoOrdersNormalization(t *testing.T) {
	// The upstream tags crypto orders "market"/"limit" and carries the
	// notional in rounded_executed_notional, with executions that have no
	// per-execution price. The fetched buckets must normalize as crypto.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders/":
			fmt.Fprint(w, `{"results": [{
				"currency_pair_id": "pair-btc",
				"state": "filled",
				"side": "buy",
				"type": "market",
				"quantity": "0.00150000",
				"price": "65000.00",
				"rounded_executed_notional": "97.50",
				"executions": [{"quantity": "0.00150000", "timestamp": "2024-06-01T08:00:00.000000Z"}]
			}]}`)
		case "/currency_pairs/pair-btc/":
			fmt.Fprint(w, `{"symbol": "BTCUSDT"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	sets := newTestClient(server).CryptoOrders(context.Background(), []string{"BTC"})
	require.Len(t, sets, 1)
	require.NoError(t, sets[0].Err)
	require.Len(t, sets[0].Raws, 1)
	assert.Equal(t, "crypto", sets[0].Raws[0].Type, "the fetched record must carry the crypto tag")

	normalized, err := reconcile.NormalizeOrderSets(sets, reconcile.OrderOptions{})
	require.NoError(t, err)
	require.Len(t, normalized, 1)
	require.Len(t, normalized[0].Orders, 1)

	o := normalized[0].Orders[0]
	assert.Equal(t, "BTC", o.Ticker)
	assert.Equal(t, "buy", o.Side)
	assert.Equal(t, "65000", o.Price.Decimal().String(), "crypto price comes from the order level")
	assert.Equal(t, "97.5", o.Amount.Decimal().String(), "crypto amount comes from the rounded aggregate notional")
}

func TestCryptoOrdersBulkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	sets := newTestClient(server).CryptoOrders(context.Background(), []string{"BTC", "ETH"})

	require.Len(t, sets, 2)
	for _, set := range sets {
		assert.Error(t, set.Err, "a bulk fetch failure fails every requested code")
	}
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth2/token/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "password", r.PostForm.Get("grant_type"))
		require.Equal(t, "user@example.com", r.PostForm.Get("username"))
		require.NotEmpty(t, r.PostForm.Get("mfa_code"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "secret-token"}`)
	}))
	defer server.Close()

	token, err := Login(context.Background(), server.URL, 5*time.Second, Credentials{
		Username:   "user@example.com",
		Password:   "hunter2",
		TOTPSecret: "JBSWY3DPEHPK3PXP",
	})
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)
}

func TestLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail": "invalid credentials"}`)
	}))
	defer server.Close()

	_, err := Login(context.Background(), server.URL, 5*time.Second, Credentials{
		Username:   "user@example.com",
		Password:   "wrong",
		TOTPSecret: "JBSWY3DPEHPK3PXP",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, reconcile.ErrAuth))
}

func TestLoginMissingCredentials(t *testing.T) {
	_, err := Login(context.Background(), "http://unused", time.Second, Credentials{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, reconcile.ErrAuth))
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	require.NoError(t, StoreToken("round-trip-token"))
	token, err := LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "round-trip-token", token)
}
