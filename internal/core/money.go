// Package core provides the budget domain types.
//
// This file contains helpers for parsing signed amounts typed by the user
// and formatting them for display.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-typed amount to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Zero is allowed: a zero amount is still a valid
// budget entry. Returns ErrInvalidAmount for anything that is not a plain
// number.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("-12,5")  -> -12.5
//	ParseAmount("+3")     -> 3
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimPrefix(s, "+")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	// decimal.NewFromString also accepts exponents; plain digits only here.
	for i, r := range s {
		if r == '-' && i == 0 {
			continue
		}
		if r != '.' && (r < '0' || r > '9') {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimals, e.g. "-15.00".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Sum adds up amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
