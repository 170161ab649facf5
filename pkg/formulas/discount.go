package formulas

import "math"

// DiscountSum calculates the present-value annuity factor over a horizon:
// the sum of 1/(1+r)^t for t = 1..years.
//
// At r=0 this is exactly the number of years. The factor is strictly
// decreasing in r for a fixed horizon.
//
// Args:
//   - years: Horizon length in years (must be > 0 for a meaningful result)
//   - rate: Annual discount rate as a decimal (e.g., 0.03 for 3%)
//
// Returns:
//   - Annuity factor (0 when years <= 0)
func DiscountSum(years int, rate float64) float64 {
	if years <= 0 {
		return 0
	}
	sum := 0.0
	for t := 1; t <= years; t++ {
		sum += 1.0 / math.Pow(1.0+rate, float64(t))
	}
	return sum
}

// Clamp restricts a value to the inclusive range [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
