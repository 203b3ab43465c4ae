// Package core holds the ledger model: transactions, the days that
// aggregate them and the account that owns the days.
//
// This file contains amount parsing and formatting. Amounts are stored as
// non-negative decimals; the sign comes from the transaction kind.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a non-negative decimal rounded to
// cents, half away from zero.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Zero is
// allowed, negatives and anything that is not a plain number are not.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0.005") -> 0.01, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	// decimal accepts exponents; a typed amount never needs one.
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// ValidateAmount rejects negative amounts.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// FormatAmount renders d with exactly two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
