// Package money provides integer-cents arithmetic.
//
// All financial math in splitledger runs on int64 cents. Decimal values
// (shopspring/decimal) appear only at the edges: converting a display amount
// into cents and back. These are the only functions allowed to round, always
// half away from zero at the cent boundary. Higher layers that bypass this
// package and do decimal math directly will drift.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrDivisionByZero is returned by DivideCents when the divisor is zero.
var ErrDivisionByZero = errors.New("division by zero")

var centsPerUnit = decimal.NewFromInt(100)

// ToCents converts a decimal amount to integer cents, rounding half away
// from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(centsPerUnit).Round(0).IntPart()
}

// FromCents converts integer cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerUnit)
}

// AddCents returns a + b.
func AddCents(a, b int64) int64 {
	return a + b
}

// SubtractCents returns a - b.
func SubtractCents(a, b int64) int64 {
	return a - b
}

// MultiplyCents multiplies cents by an arbitrary decimal factor and rounds
// the product to the nearest cent.
func MultiplyCents(cents int64, factor decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).Mul(factor).Round(0).IntPart()
}

// DivideCents divides cents by an arbitrary decimal divisor and rounds the
// quotient to the nearest cent. Fails with ErrDivisionByZero when the
// divisor is zero.
func DivideCents(cents int64, divisor decimal.Decimal) (int64, error) {
	if divisor.IsZero() {
		return 0, ErrDivisionByZero
	}
	return decimal.NewFromInt(cents).Div(divisor).Round(0).IntPart(), nil
}
