package reconcile

import (
	"errors"
	"testing"
)

// buildTable is a test helper to assemble a position table.
func buildTable(t *testing.T, positions ...Position) *PositionTable {
	t.Helper()
	table := NewPositionTable()
	for _, p := range positions {
		if err := table.Add(p); err != nil {
			t.Fatalf("cannot build table: %v", err)
		}
	}
	return table
}

func TestReconcile(t *testing.T) {
	ledger := buildTable(t,
		Position{Ticker: "AAPL", Name: "Apple", Quantity: Q(10), Equity: M(2000, "USD")},
		Position{Ticker: "MSFT", Name: "Microsoft", Quantity: Q(5), Equity: M(1500, "USD")},
		Position{Ticker: "GONE", Name: "Sold Out", Quantity: Q(0), Equity: M(0, "USD")},
	)
	brokerage := buildTable(t,
		Position{Ticker: "AAPL", Name: "Apple", Quantity: Q(10), Equity: M(2000, "USD"), Class: Stock},
		Position{Ticker: "TSLA", Name: "Tesla", Quantity: Q(2), Equity: M(500, "USD"), Class: Stock},
	)

	rec := Reconcile(ledger, brokerage)

	if got := rec.MissingFromLedger.Tickers(); len(got) != 1 || got[0] != "TSLA" {
		t.Errorf("MissingFromLedger = %v, want [TSLA]", got)
	}
	if got := rec.MissingFromBrokerage.Tickers(); len(got) != 1 || got[0] != "MSFT" {
		t.Errorf("MissingFromBrokerage = %v, want [MSFT]", got)
	}
}

func TestReconcileSymmetry(t *testing.T) {
	a := buildTable(t, Position{Ticker: "AAPL", Name: "Apple", Quantity: Q(1), Equity: M(100, "USD")})
	b := buildTable(t, Position{Ticker: "TSLA", Name: "Tesla", Quantity: Q(1), Equity: M(200, "USD")})

	ab := Reconcile(a, b)
	ba := Reconcile(b, a)

	if got, want := ab.MissingFromLedger.Tickers(), ba.MissingFromBrokerage.Tickers(); len(got) != len(want) || got[0] != want[0] {
		t.Errorf("swapping inputs must swap the projections: %v vs %v", got, want)
	}
}

func TestReconcileIdempotence(t *testing.T) {
	table := buildTable(t,
		Position{Ticker: "AAPL", Name: "Apple", Quantity: Q(10), Equity: M(2000, "USD")},
		Position{Ticker: "BTCUSDT", Name: "Bitcoin", Quantity: Q(1), Equity: Money{}},
		Position{Ticker: "GONE", Name: "Sold Out", Quantity: Q(0), Equity: M(0, "USD")},
	)
	rec := Reconcile(table, table)
	if rec.MissingFromLedger.Len() != 0 || rec.MissingFromBrokerage.Len() != 0 {
		t.Errorf("a table reconciled against itself has no discrepancies, got %v / %v",
			rec.MissingFromLedger.Tickers(), rec.MissingFromBrokerage.Tickers())
	}
}

func TestReconcileEmptySides(t *testing.T) {
	ledger := buildTable(t, Position{Ticker: "AAPL", Name: "Apple", Quantity: Q(1), Equity: M(100, "USD")})
	empty := NewPositionTable()

	rec := Reconcile(ledger, empty)
	if rec.MissingFromLedger.Len() != 0 {
		t.Errorf("empty brokerage cannot have rows missing from the ledger, got %v", rec.MissingFromLedger.Tickers())
	}
	if got := rec.MissingFromBrokerage.Tickers(); len(got) != 1 || got[0] != "AAPL" {
		t.Errorf("MissingFromBrokerage = %v, want [AAPL]", got)
	}
}

func TestReconcileNoiseFilter(t *testing.T) {
	testCases := []struct {
		name     string
		position Position
		kept     bool
	}{
		{"zero quantity zero equity", Position{Ticker: "X", Quantity: Q(0), Equity: M(0, "USD")}, false},
		{"zero quantity nonzero equity", Position{Ticker: "X", Quantity: Q(0), Equity: M(5, "USD")}, true},
		{"nonzero quantity zero equity", Position{Ticker: "X", Quantity: Q(1), Equity: M(0, "USD")}, true},
		{"zero quantity unknown equity", Position{Ticker: "X", Quantity: Q(0), Equity: Money{}}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := NewPositionTable()
			brokerage := buildTable(t, tc.position)
			rec := Reconcile(ledger, brokerage)
			if kept := rec.MissingFromLedger.Len() == 1; kept != tc.kept {
				t.Errorf("kept = %v, want %v", kept, tc.kept)
			}
		})
	}
}

func TestReconcileSortsByName(t *testing.T) {
	brokerage := buildTable(t,
		Position{Ticker: "ZZZ", Name: "Alpha Corp", Quantity: Q(1), Equity: M(1, "USD")},
		Position{Ticker: "AAA", Name: "Zulu Inc", Quantity: Q(1), Equity: M(1, "USD")},
	)
	rec := Reconcile(NewPositionTable(), brokerage)
	if got := rec.MissingFromLedger.Tickers(); got[0] != "ZZZ" || got[1] != "AAA" {
		t.Errorf("rows must be sorted by name, got tickers %v", got)
	}
}

func TestInBoth(t *testing.T) {
	ledger := buildTable(t,
		Position{Ticker: "AAPL", Name: "Apple"},
		Position{Ticker: "MSFT", Name: "Microsoft"},
	)
	brokerage := buildTable(t,
		Position{Ticker: "AAPL", Name: "Apple"},
		Position{Ticker: "TSLA", Name: "Tesla"},
	)
	got := InBoth(ledger, brokerage)
	if len(got) != 1 || got[0] != "AAPL" {
		t.Errorf("InBoth = %v, want [AAPL]", got)
	}
}

func TestSplitByClass(t *testing.T) {
	table := buildTable(t,
		Position{Ticker: "AAPL", Class: Stock},
		Position{Ticker: "BTCUSDT", Class: Crypto},
		Position{Ticker: "MYST", Class: UnknownClass},
	)
	stocks, cryptos := SplitByClass(table)
	if len(stocks) != 2 || stocks[0] != "AAPL" || stocks[1] != "MYST" {
		t.Errorf("stocks = %v, want [AAPL MYST]", stocks)
	}
	if len(cryptos) != 1 || cryptos[0] != "BTCUSDT" {
		t.Errorf("cryptos = %v, want [BTCUSDT]", cryptos)
	}
}

func TestEquityDeltas(t *testing.T) {
	ledger := buildTable(t,
		Position{Ticker: "AAPL", Name: "Apple", Quantity: Q(10), Equity: M(198, "USD")},
		Position{Ticker: "MSFT", Name: "Microsoft", Quantity: Q(5), Equity: M(100, "USD")},
		Position{Ticker: "TSLA", Name: "Tesla", Quantity: Q(1), Equity: M(105, "USD")},
		Position{Ticker: "SAME", Name: "Same", Quantity: Q(1), Equity: M(50, "USD")},
	)
	brokerage := buildTable(t,
		Position{Ticker: "AAPL", Name: "Apple", Quantity: Q(10), Equity: M(200, "USD"), Class: Stock},
		Position{Ticker: "MSFT", Name: "Microsoft", Quantity: Q(5), Equity: M(105, "USD"), Class: Stock},
		Position{Ticker: "TSLA", Name: "Tesla", Quantity: Q(1), Equity: M(102, "USD"), Class: Stock},
		Position{Ticker: "SAME", Name: "Same", Quantity: Q(1), Equity: M(50, "USD"), Class: Stock},
	)

	deltas, err := EquityDeltas(ledger, brokerage, InBoth(ledger, brokerage))
	if err != nil {
		t.Fatal(err)
	}

	// Sorted by absolute difference, descending; zero delta dropped.
	want := []struct {
		ticker string
		diff   string
	}{
		{"MSFT", "-5"},
		{"TSLA", "3"},
		{"AAPL", "-2"},
	}
	if len(deltas) != len(want) {
		t.Fatalf("got %d deltas, want %d", len(deltas), len(want))
	}
	for i, w := range want {
		if deltas[i].Ticker != w.ticker {
			t.Errorf("deltas[%d].Ticker = %q, want %q", i, deltas[i].Ticker, w.ticker)
		}
		if got := deltas[i].Difference.Decimal().String(); got != w.diff {
			t.Errorf("deltas[%d].Difference = %s, want %s", i, got, w.diff)
		}
	}
}

func TestEquityDeltasTieBreak(t *testing.T) {
	ledger := buildTable(t,
		Position{Ticker: "AAA", Name: "Aardvark", Quantity: Q(1), Equity: M(95, "USD")},
		Position{Ticker: "BBB", Name: "Badger", Quantity: Q(1), Equity: M(102, "USD")},
		Position{Ticker: "CCC", Name: "Capuchin", Quantity: Q(1), Equity: M(98, "USD")},
	)
	brokerage := buildTable(t,
		Position{Ticker: "AAA", Name: "Aardvark", Quantity: Q(1), Equity: M(100, "USD"), Class: Stock},
		Position{Ticker: "BBB", Name: "Badger", Quantity: Q(1), Equity: M(100, "USD"), Class: Stock},
		Position{Ticker: "CCC", Name: "Capuchin", Quantity: Q(1), Equity: M(100, "USD"), Class: Stock},
	)

	deltas, err := EquityDeltas(ledger, brokerage, []string{"AAA", "BBB", "CCC"})
	if err != nil {
		t.Fatal(err)
	}

	// -5, +2 and -2: the tied pair keeps the requested ticker order.
	want := []string{"AAA", "BBB", "CCC"}
	if len(deltas) != len(want) {
		t.Fatalf("got %d deltas, want %d", len(deltas), len(want))
	}
	for i, w := range want {
		if deltas[i].Ticker != w {
			t.Errorf("deltas[%d].Ticker = %q, want %q", i, deltas[i].Ticker, w)
		}
	}
}

func TestEquityDeltasOneSidedTicker(t *testing.T) {
	ledger := buildTable(t, Position{Ticker: "AAPL", Equity: M(1, "USD")})
	brokerage := NewPositionTable()
	_, err := EquityDeltas(ledger, brokerage, []string{"AAPL"})
	if !errors.Is(err, ErrInvalidComparison) {
		t.Errorf("got %v, want ErrInvalidComparison", err)
	}
}

func TestEquityDeltasSkipsUnknownEquity(t *testing.T) {
	ledger := buildTable(t, Position{Ticker: "BTCUSDT", Equity: M(100, "USD")})
	brokerage := buildTable(t, Position{Ticker: "BTCUSDT", Equity: Money{}})
	deltas, err := EquityDeltas(ledger, brokerage, []string{"BTCUSDT"})
	if err != nil {
		t.Fatal(err)
	}
	if len(deltas) != 0 {
		t.Errorf("unknown equity must be skipped, got %v", deltas)
	}
}

func TestFilterDeltas(t *testing.T) {
	deltas := []EquityDelta{
		{Ticker: "A", Difference: M(-12, "USD")},
		{Ticker: "B", Difference: M(3, "USD")},
		{Ticker: "C", Difference: M(-1, "USD")},
	}
	got := FilterDeltas(deltas, M(3, "USD"))
	if len(got) != 2 || got[0].Ticker != "A" || got[1].Ticker != "B" {
		t.Errorf("FilterDeltas = %v, want [A B]", got)
	}
}

func TestResolveClasses(t *testing.T) {
	ledger := buildTable(t,
		Position{Ticker: "AAPL", Class: UnknownClass},
		Position{Ticker: "BTCUSDT", Class: UnknownClass},
		Position{Ticker: "ONLYLEDGER", Class: UnknownClass},
	)
	brokerage := buildTable(t,
		Position{Ticker: "AAPL", Class: Stock},
		Position{Ticker: "BTCUSDT", Class: Crypto},
	)
	ResolveClasses(ledger, brokerage)

	testCases := []struct {
		ticker string
		want   AssetClass
	}{
		{"AAPL", Stock},
		{"BTCUSDT", Crypto},
		{"ONLYLEDGER", UnknownClass},
	}
	for _, tc := range testCases {
		p, _ := ledger.Get(tc.ticker)
		if p.Class != tc.want {
			t.Errorf("%s class = %q, want %q", tc.ticker, p.Class, tc.want)
		}
	}
}

func TestPositionTableDuplicate(t *testing.T) {
	table := NewPositionTable()
	if err := table.Add(Position{Ticker: "AAPL"}); err != nil {
		t.Fatal(err)
	}
	err := table.Add(Position{Ticker: "AAPL"})
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("duplicate ticker: got %v, want ErrMalformedInput", err)
	}
}

func TestTotalEquitySkipsUnknown(t *testing.T) {
	table := buildTable(t,
		Position{Ticker: "AAPL", Equity: M(100, "USD")},
		Position{Ticker: "BTCUSDT", Equity: Money{}},
		Position{Ticker: "MSFT", Equity: M(50, "USD")},
	)
	total := table.TotalEquity()
	if !total.Known() {
		t.Fatal("total over known values must stay known")
	}
	if got := total.Decimal().String(); got != "150" {
		t.Errorf("TotalEquity = %s, want 150", got)
	}
}

func TestParseAssetClass(t *testing.T) {
	testCases := []struct {
		in   string
		want AssetClass
	}{
		{"stock", Stock},
		{"crypto", Crypto},
		{"?", UnknownClass},
		{"bond", UnknownClass},
		{"", UnknownClass},
	}
	for _, tc := range testCases {
		if got := ParseAssetClass(tc.in); got != tc.want {
			t.Errorf("ParseAssetClass(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPairTickerRoundTrip(t *testing.T) {
	testCases := []struct {
		code   string
		ticker string
	}{
		{"BTC", "BTCUSDT"},
		{"ETH", "ETHUSDT"},
		{"DOGE", "DOGEUSDT"},
	}
	for _, tc := range testCases {
		if got := PairTicker(tc.code); got != tc.ticker {
			t.Errorf("PairTicker(%q) = %q, want %q", tc.code, got, tc.ticker)
		}
		if got := BareTicker(tc.ticker); got != tc.code {
			t.Errorf("BareTicker(%q) = %q, want %q", tc.ticker, got, tc.code)
		}
	}
	// A stock ticker passes through unchanged.
	if got := BareTicker("AAPL"); got != "AAPL" {
		t.Errorf("BareTicker(AAPL) = %q, want AAPL", got)
	}
}
