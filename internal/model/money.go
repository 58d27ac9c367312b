package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary value to exactly two decimal places using
// half-up rounding. Every value the ledger hands back for persistence goes
// through this, so small rounding residue never accumulates across
// transactions.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseAmount parses a user-entered monetary amount into a decimal. It
// accepts an optional leading currency symbol and either a dot or a comma as
// the decimal separator, and rejects blank, signed, or malformed input.
// The result is rounded to two decimal places, half-up.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, fmt.Errorf("%w: amounts are unsigned", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Round2(d), nil
}

// FormatAmount renders a monetary value with exactly two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
