package convert

import (
	"math"
)

// RoundFloat64 rounds to the given number of decimals, for display of
// fractional values such as precipitation.
func RoundFloat64(number float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(number*p) / p
}

// Round rounds to the nearest integer, halves towards positive infinity
// (-2.5 becomes -2, 2.5 becomes 3).
func Round(number float64) int {
	return int(math.Floor(number + 0.5))
}
