package reconcile

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value, or the "unknown" sentinel.
//
// The zero value is unknown: crypto equity cannot be computed when live
// quotes were not fetched, and the ledger export carries no unit price at
// all. Unknown values render as "?" and are excluded from arithmetic by the
// callers (see EquityDeltas).
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
	known bool
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency, known: true}
}

// ParseMoney parses a currency-formatted amount such as "$1,234.56" into a
// Money in the given currency. Currency symbols and thousands separators are
// stripped before parsing.
func ParseMoney(s string, currency string) (Money, error) {
	s = strings.TrimSpace(s)
	neg := false
	// Some exports write negative amounts in parentheses.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ',', '$', '€', '£', ' ':
			// stripped
		default:
			// anything unexpected is left for decimal to report
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return Money{}, err
	}
	if neg {
		d = d.Neg()
	}
	return Money{value: d, cur: currency, known: true}, nil
}

// Known reports whether the value is an actual amount, as opposed to the
// unknown sentinel.
func (m Money) Known() bool { return m.known }

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value, "?" for the
// unknown sentinel.
func (m Money) String() string {
	if !m.known {
		return "?"
	}
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Equal(n Money) bool              { return m.known == n.known && m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.known && m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(amount Money) bool      { return m.value.LessThan(amount.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur, known: m.known} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs(), cur: m.cur, known: m.known} }
func (m Money) Mul(n Quantity) Money            { return Money{value: m.value.Mul(n.value), cur: m.cur, known: m.known} }
func (m Money) Div(n Quantity) Money            { return Money{value: m.value.Div(n.value), cur: m.cur, known: m.known} }

// binary operators.
func (m Money) Add(n Money) Money {
	return Money{value: m.value.Add(n.value), cur: cur(m, n), known: m.known && n.known}
}
func (m Money) Sub(n Money) Money {
	return Money{value: m.value.Sub(n.value), cur: cur(m, n), known: m.known && n.known}
}

// Cmp compares the amounts, ignoring currency.
func (m Money) Cmp(n Money) int { return m.value.Cmp(n.value) }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch" + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// AsFloat is for rendering only, the calculation path stays exact.
func (m Money) AsFloat() float64 { return m.value.InexactFloat64() }

// Decimal returns the underlying decimal amount.
func (m Money) Decimal() decimal.Decimal { return m.value }

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if !m.known {
		return "?"
	}
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}
