package report

import "math"

// roundTo rounds v half-up at the given number of decimal places. Rounding is
// cosmetic and applied only when a bucket is emitted; accumulation always
// happens in full precision.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Floor(v*p+0.5) / p
}

// round2 rounds to 2 decimal places (CTR, change percentages, USD amounts).
func round2(v float64) float64 { return roundTo(v, 2) }

// round1 rounds to 1 decimal place (average rank).
func round1(v float64) float64 { return roundTo(v, 1) }
