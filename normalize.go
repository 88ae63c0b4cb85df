package reconcile

import (
	"fmt"
	"sort"
)

// RawStock is one held stock position as returned by the brokerage data
// source, keyed externally by ticker. All fields come over the wire as
// strings.
type RawStock struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Equity   string `json:"equity"`
}

// RawCrypto is one crypto position record. The currency metadata is nested.
type RawCrypto struct {
	Quantity string `json:"quantity"`
	Currency struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"currency"`
}

// NormalizeLedger converts raw ledger export rows into a canonical position
// table. Equity strings are currency formatted ("$1,234.56"); the asset
// class is unknown at this stage, the export does not distinguish stock from
// crypto.
func NormalizeLedger(rows []LedgerRow, currency string) (*PositionTable, error) {
	table := NewPositionTable()
	for _, row := range rows {
		if row.Symbol == "" {
			return nil, fmt.Errorf("%w: ledger row without a symbol (name %q)", ErrMalformedInput, row.Name)
		}
		quantity, err := ParseQuantity(row.Shares)
		if err != nil {
			return nil, fmt.Errorf("%w: ledger row %q has invalid share count %q: %v", ErrMalformedInput, row.Symbol, row.Shares, err)
		}
		equity, err := ParseMoney(row.Value, currency)
		if err != nil {
			return nil, fmt.Errorf("%w: ledger row %q has invalid value %q: %v", ErrMalformedInput, row.Symbol, row.Value, err)
		}
		quote := Money{}
		if !quantity.IsZero() {
			quote = equity.Div(quantity)
		}
		if err := table.Add(Position{
			Ticker:   row.Symbol,
			Name:     row.Name,
			Quantity: quantity,
			Equity:   equity,
			Quote:    quote,
			Class:    UnknownClass,
		}); err != nil {
			return nil, err
		}
	}
	table.SortByName()
	return table, nil
}

// NormalizeBrokerage converts raw brokerage position records into a
// canonical table. Stock records are keyed by ticker; crypto records carry a
// nested currency descriptor and are keyed by the synthetic pair ticker
// (code + "USDT").
//
// quotes maps bare crypto currency codes to a unit price; crypto equity is
// quantity times quote when a quote is present, and the unknown sentinel
// otherwise. quotes may be nil.
func NormalizeBrokerage(stocks map[string]RawStock, cryptos []RawCrypto, quotes map[string]Money) (*PositionTable, error) {
	table := NewPositionTable()

	// Stock records iterate in sorted ticker order for determinism, the
	// final table order is by name anyway.
	tickers := make([]string, 0, len(stocks))
	for ticker := range stocks {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		raw := stocks[ticker]
		quantity, err := ParseQuantity(raw.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%w: stock position %q has invalid quantity %q: %v", ErrMalformedInput, ticker, raw.Quantity, err)
		}
		equity, err := ParseMoney(raw.Equity, "USD")
		if err != nil {
			return nil, fmt.Errorf("%w: stock position %q has invalid equity %q: %v", ErrMalformedInput, ticker, raw.Equity, err)
		}
		quote, err := ParseMoney(raw.Price, "USD")
		if err != nil {
			return nil, fmt.Errorf("%w: stock position %q has invalid price %q: %v", ErrMalformedInput, ticker, raw.Price, err)
		}
		if err := table.Add(Position{
			Ticker:   ticker,
			Name:     raw.Name,
			Quantity: quantity,
			Equity:   equity,
			Quote:    quote,
			Class:    Stock,
		}); err != nil {
			return nil, err
		}
	}

	for _, raw := range cryptos {
		if raw.Currency.Code == "" {
			return nil, fmt.Errorf("%w: crypto position without a currency code (quantity %q)", ErrMalformedInput, raw.Quantity)
		}
		ticker := PairTicker(raw.Currency.Code)
		// The fiat leg itself shows up as a quantity-1 pseudo-asset.
		if ticker == PairTicker("USD") {
			continue
		}
		quantity, err := ParseQuantity(raw.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%w: crypto position %q has invalid quantity %q: %v", ErrMalformedInput, ticker, raw.Quantity, err)
		}
		equity, quote := Money{}, Money{}
		if q, ok := quotes[raw.Currency.Code]; ok {
			quote = q
			equity = q.Mul(quantity)
		}
		if err := table.Add(Position{
			Ticker:   ticker,
			Name:     raw.Currency.Name,
			Quantity: quantity,
			Equity:   equity,
			Quote:    quote,
			Class:    Crypto,
		}); err != nil {
			return nil, err
		}
	}

	table.SortByName()
	return table, nil
}
