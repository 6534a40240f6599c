package core

import "math"

// -----------------------------------------------------------------------------

// CalculateChangePercent calculates fractional change.
func CalculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous
}

// -----------------------------------------------------------------------------

// Round2 rounds half away from zero to two decimals for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
