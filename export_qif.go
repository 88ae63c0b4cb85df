package reconcile

import (
	"fmt"
	"io"
	"strings"
)

// WriteOrdersQIF writes orders in the QIF interchange format the
// personal-finance application imports: an account header block, then one
// investment record per execution, each terminated by a caret line.
//
// Records carry the single-letter field tags D (date), N (action), Y
// (security), I (price), Q (quantity), T (total), O (negated commission)
// and M (memo). Canceled records have no date or amounts and are not
// representable, they are skipped.
func WriteOrdersQIF(w io.Writer, account string, sets []TickerOrders) error {
	if _, err := fmt.Fprintf(w, "!Account\nN%s\nTInvst\n^\n!Type:Invst\n", account); err != nil {
		return fmt.Errorf("cannot write qif account header: %w", err)
	}
	for _, set := range sets {
		if set.Err != nil {
			continue
		}
		for _, o := range set.Orders {
			if o.State != stateFilled {
				continue
			}
			if err := writeQIFRecord(w, o); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeQIFRecord(w io.Writer, o Order) error {
	var b strings.Builder
	fmt.Fprintf(&b, "D%s\n", o.Time.Format("01/02/2006"))
	fmt.Fprintf(&b, "N%s\n", qifAction(o.Side))
	fmt.Fprintf(&b, "Y%s\n", o.Ticker)
	fmt.Fprintf(&b, "I%s\n", o.Price.Decimal().String())
	fmt.Fprintf(&b, "Q%s\n", o.Quantity.String())
	fmt.Fprintf(&b, "T%s\n", o.Amount.Decimal().StringFixed(2))
	fmt.Fprintf(&b, "O%s\n", o.Fee.Neg().Decimal().StringFixed(2))
	fmt.Fprintf(&b, "M%s %s, execution %d/%d\n", o.Ticker, o.Side, o.Execution, o.Executions)
	b.WriteString("^\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("cannot write qif record for %q: %w", o.Ticker, err)
	}
	return nil
}

// qifAction maps an order side to the QIF investment action.
func qifAction(side string) string {
	switch side {
	case "sell":
		return "Sell"
	default:
		return "Buy"
	}
}
