// Package money holds currency amounts as integer minor units (cents).
//
// Arithmetic on the sale path is integer-only, so a total is always the exact
// sum of its lines. shopspring/decimal is used at the edges: parsing
// human-entered amounts and rendering fixed two-decimal text.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents.
type Money int64

const scale = 2

func FromCents(c int64) Money { return Money(c) }

// Parse reads a decimal string such as "249" or "12.50". More than two
// fractional digits is an error rather than a silent rounding.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

func FromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(scale)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has sub-cent precision", d.String())
	}
	return Money(cents.IntPart()), nil
}

func (m Money) Cents() int64 { return int64(m) }

// Times returns m multiplied by a quantity.
func (m Money) Times(qty int) Money { return m * Money(qty) }

func (m Money) Add(o Money) Money { return m + o }

func (m Money) Decimal() decimal.Decimal { return decimal.New(int64(m), -scale) }

// String renders exactly two decimal places, e.g. "200.00".
func (m Money) String() string { return m.Decimal().StringFixed(scale) }

// MarshalJSON writes a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
