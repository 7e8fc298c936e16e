package service

import "math"

// Decimal places kept in computed figures. NAVs are quoted with up to five
// decimals upstream; percentages are shown with two.
const (
	ValuePrecision   = 4
	PercentPrecision = 2
)

// round rounds value to the given number of decimal places, half away from zero.
//
// Example:
//
//	round(123.456789, 2)  // returns 123.46
//	round(0.00005, 4)     // returns 0.0001
func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
