// Package types provides common type aliases and utilities.
package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is an on-hand or moved amount of a product.
// Backed by decimal.Decimal so NUMERIC(18,4) columns round-trip without float errors.
type Quantity = decimal.Decimal

// QuantityScale is the number of fractional digits the ledger stores.
const QuantityScale int32 = 4

// QuantityPrecision is the total number of digits of a stored quantity, NUMERIC(18,4).
const QuantityPrecision int32 = 18

// QuantityLimit returns the smallest magnitude the ledger cannot store, 10^14.
func QuantityLimit() Quantity {
	return decimal.New(1, QuantityPrecision-QuantityScale)
}

// ZeroQuantity returns a zero quantity.
func ZeroQuantity() Quantity {
	return decimal.Zero
}

// ParseQuantity parses a decimal string. Exponent notation is rejected.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty quantity")
	}
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("parse quantity %q: exponent form is not accepted", s)
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse quantity: %w", err)
	}
	return q, nil
}

// MustQuantity parses s, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	return decimal.RequireFromString(s)
}

// FitsPrecision reports whether the integer part of q fits the stored column.
func FitsPrecision(q Quantity) bool {
	return q.Abs().LessThan(QuantityLimit())
}

// FitsScale reports whether q has no more than QuantityScale fractional digits.
func FitsScale(q Quantity) bool {
	return q.Equal(q.Truncate(QuantityScale))
}
