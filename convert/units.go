package convert

import (
	"github.com/icodeforyou/weatherboard-go/types"
)

const (
	mpsToMph = 2.237
	mpsToKmh = 3.6
)

// CelsiusToFahrenheit and FahrenheitToCelsius round their result, so
// converting back and forth is lossy: CelsiusToFahrenheit(FahrenheitToCelsius(f))
// is not f for every f. Always convert from the raw Celsius reading.
func CelsiusToFahrenheit(c float64) int {
	return Round(c*9/5 + 32)
}

func FahrenheitToCelsius(f float64) int {
	return Round((f - 32) * 5 / 9)
}

func MpsToMph(mps float64) int {
	return Round(mps * mpsToMph)
}

func MpsToKmh(mps float64) int {
	return Round(mps * mpsToKmh)
}

// Temperature converts a raw Celsius reading into the display unit.
func Temperature(celsius float64, unit types.TempUnit) int {
	if unit == types.Fahrenheit {
		return CelsiusToFahrenheit(celsius)
	}
	return Round(celsius)
}

// WindSpeed converts a raw m/s reading into the display unit.
func WindSpeed(mps float64, unit types.WindUnit) int {
	if unit == types.MilesPerHour {
		return MpsToMph(mps)
	}
	return MpsToKmh(mps)
}
