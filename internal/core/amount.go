// Package core holds the domain types shared by the ledger and budget
// components: transactions, amount parsing, and the derived-total values.
//
// Amounts are ordinary float64 values. Entries are keyed in by hand and
// interpreted in a single fixed currency, so float arithmetic is the
// contract here, not a shortcut.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts user input into a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for anything that is not a finite number
// strictly greater than zero.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if err := validAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

func validAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
