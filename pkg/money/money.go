// Package money holds monetary amounts as integer minor units so that sums
// never drift the way float64 totals do.
package money

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a count of minor currency units (paise).
type Amount int64

// FromMajor converts whole currency units (rupees) to an Amount.
func FromMajor(units int64) Amount {
	return Amount(units * 100)
}

// FromDecimal rounds a major-unit decimal half away from zero to the nearest minor unit.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount(d.Shift(2).Round(0).IntPart())
}

// Times multiplies the amount by a quantity.
func (a Amount) Times(quantity int) Amount {
	return a * Amount(quantity)
}

// Percent returns pct percent of the amount, rounded half away from zero.
func (a Amount) Percent(pct int64) Amount {
	return Amount(decimal.New(int64(a)*pct, -2).Round(0).IntPart())
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// String formats the amount with two fraction digits, e.g. "3049.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null (zero).
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*a = 0
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("decode amount: %w", err)
	}
	*a = FromDecimal(d)
	return nil
}
