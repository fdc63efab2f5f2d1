// Package money provides currency-aware rounding for payment amounts.
//
// PayPal reports amounts as decimal strings. Comparisons against stored
// order totals must happen after rounding both sides to the currency's
// precision; zero-decimal currencies round to whole units.
package money

import (
	"math"
	"strconv"
)

// DefaultDecimals is the precision used for currencies that carry decimals.
const DefaultDecimals = 2

// zeroDecimal lists the currencies PayPal treats as having no minor unit.
var zeroDecimal = map[string]struct{}{
	"HUF": {},
	"JPY": {},
	"TWD": {},
}

// Decimals returns the number of decimal places for a currency code.
func Decimals(currency string) int {
	if _, ok := zeroDecimal[currency]; ok {
		return 0
	}
	return DefaultDecimals
}

// Round rounds an amount to the currency's precision.
func Round(amount float64, currency string) float64 {
	pow := math.Pow10(Decimals(currency))
	return math.Round(amount*pow) / pow
}

// Format renders an amount as a fixed-point decimal string in the
// currency's precision, e.g. Format(10.004, "USD") == "10.00".
func Format(amount float64, currency string) string {
	return strconv.FormatFloat(Round(amount, currency), 'f', Decimals(currency), 64)
}

// Equal reports whether two amounts are the same after rounding to the
// currency's precision. Exact equality after rounding, not tolerance-based.
func Equal(a, b float64, currency string) bool {
	return Format(a, currency) == Format(b, currency)
}

// Parse converts a decimal string amount to a float64.
func Parse(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}
