package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WritePositionsCSV writes a position snapshot: one row per ticker with the
// canonical columns plus the position's share of total known equity.
func WritePositionsCSV(w io.Writer, t *PositionTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ticker", "name", "quantity", "equity", "quote", "type", "percentage"}); err != nil {
		return fmt.Errorf("cannot write positions csv header: %w", err)
	}
	total := t.TotalEquity()
	for p := range t.All() {
		percentage := ""
		if p.Equity.Known() && !total.IsZero() {
			percentage = Percent(p.Equity.AsFloat() / total.AsFloat() * 100).String()
		}
		record := []string{
			p.Ticker,
			p.Name,
			p.Quantity.String(),
			csvMoney(p.Equity),
			csvMoney(p.Quote),
			string(p.Class),
			percentage,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("cannot write positions csv row %q: %w", p.Ticker, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOrdersCSV writes an order snapshot, one row per execution. Slots with
// a fetch error are skipped, the caller reports them separately.
func WriteOrdersCSV(w io.Writer, sets []TickerOrders) error {
	cw := csv.NewWriter(w)
	header := []string{"ticker", "datetime", "side", "type", "execution", "executions", "quantity", "price", "amount", "fee"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("cannot write orders csv header: %w", err)
	}
	for _, set := range sets {
		if set.Err != nil {
			continue
		}
		for _, o := range set.Orders {
			record := []string{
				o.Ticker,
				o.FormatTime(),
				o.Side,
				o.Type,
				fmt.Sprintf("%d", o.Execution),
				fmt.Sprintf("%d", o.Executions),
				o.Quantity.String(),
				csvMoney(o.Price),
				csvMoney(o.Amount),
				csvMoney(o.Fee),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("cannot write orders csv row %q: %w", o.Ticker, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvMoney renders a money amount as a plain decimal for machine parsing,
// empty when unknown.
func csvMoney(m Money) string {
	if !m.Known() {
		return ""
	}
	return m.Decimal().StringFixed(2)
}
