package pricing

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places every monetary output is rounded to
const MoneyPlaces = 2

var (
	zero          = decimal.Zero
	one           = decimal.NewFromInt(1)
	inchesPerFoot = decimal.NewFromInt(12)
)

// RoundMoney rounds half away from zero to cents, which is round-half-up for the
// non-negative amounts the engine produces. Intermediate math must never call this.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// mustDecimal parses a literal price from catalog source code
func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// blocksOf returns ceil(units / size); a non-positive size counts every unit
func blocksOf(units, size int) int {
	if size <= 0 {
		return units
	}
	return (units + size - 1) / size
}

// Quantity and size caps. They keep int unit counts and decimal dimensions far
// away from overflow or unbounded precision.
const (
	MaxLineQuantity  = 10000
	MaxOrderQuantity = 100000
	// maxDimensionPlaces bounds how many decimal places a dimension may carry
	maxDimensionPlaces = 4
	// maxDimensionDigits bounds the integer digits of a dimension
	maxDimensionDigits = 6
)

// boundedDimension reports whether d is small enough in magnitude and precision
// to compare and multiply cheaply
func boundedDimension(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < -maxDimensionPlaces {
		return false
	}
	return int64(d.NumDigits())+exp <= maxDimensionDigits
}

// SameAmount reports whether a client-supplied amount equals total once rounded
// to cents. Amounts with an absurd exponent never match and are not rescaled.
func SameAmount(claimed, total decimal.Decimal) bool {
	if exp := claimed.Exponent(); exp < -20 || int64(claimed.NumDigits())+int64(exp) > 20 {
		return false
	}
	return RoundMoney(claimed).Equal(total)
}
