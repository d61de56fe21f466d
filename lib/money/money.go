// Package money keeps all monetary values as arbitrary-precision decimals.
// Amounts cross the wire and the database as decimal strings; this package is
// the single conversion point, so float drift never enters the ledger.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts a decimal string to a decimal value.
// An empty or whitespace-only string is treated as zero, which is how
// absent amounts are stored.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// ParseOrZero is for values already validated at the store boundary.
func ParseOrZero(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func Format(d decimal.Decimal) string {
	return d.String()
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns d * p / 100 without rounding.
func Percent(d decimal.Decimal, p decimal.Decimal) decimal.Decimal {
	return d.Mul(p).Div(decimal.NewFromInt(100))
}
