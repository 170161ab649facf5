package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Finite returns the subset of data that is neither NaN nor infinite.
// Reducers in this package operate on finite values only so that failed
// simulation iterations (recorded as NaN) never poison a summary.
func Finite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// NaNMean calculates the arithmetic mean of the finite values in data
func NaNMean(data []float64) float64 {
	valid := Finite(data)
	if len(valid) == 0 {
		return math.NaN()
	}
	return stat.Mean(valid, nil)
}

// NaNMedian calculates the median of the finite values in data
func NaNMedian(data []float64) float64 {
	return NaNPercentile(data, 50)
}

// NaNStdDev calculates the sample standard deviation of the finite values
// in data. Returns 0 for fewer than two finite values.
func NaNStdDev(data []float64) float64 {
	valid := Finite(data)
	if len(valid) < 2 {
		if len(valid) == 0 {
			return math.NaN()
		}
		return 0
	}
	return stat.StdDev(valid, nil)
}

// NaNPercentile calculates the empirical percentile (0-100) of the finite
// values in data
func NaNPercentile(data []float64, pct float64) float64 {
	valid := Finite(data)
	if len(valid) == 0 {
		return math.NaN()
	}
	sort.Float64s(valid)
	return stat.Quantile(pct/100.0, stat.Empirical, valid, nil)
}
