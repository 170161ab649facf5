package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinite_FiltersNaNAndInf(t *testing.T) {
	data := []float64{1.0, math.NaN(), 2.0, math.Inf(1), 3.0, math.Inf(-1)}
	assert.Equal(t, []float64{1.0, 2.0, 3.0}, Finite(data))
}

func TestFinite_Empty(t *testing.T) {
	assert.Empty(t, Finite(nil))
	assert.Empty(t, Finite([]float64{math.NaN()}))
}

func TestNaNMean_IgnoresNaN(t *testing.T) {
	data := []float64{1.0, math.NaN(), 3.0}
	assert.InDelta(t, 2.0, NaNMean(data), 1e-12)
}

func TestNaNMean_AllNaN(t *testing.T) {
	assert.True(t, math.IsNaN(NaNMean([]float64{math.NaN(), math.NaN()})))
	assert.True(t, math.IsNaN(NaNMean(nil)))
}

func TestNaNMedian_OddCount(t *testing.T) {
	assert.Equal(t, 2.0, NaNMedian([]float64{3.0, 1.0, 2.0}))
	assert.Equal(t, 5.0, NaNMedian([]float64{9.0, 5.0, 1.0, 7.0, 3.0}))
}

func TestNaNMedian_IgnoresNaN(t *testing.T) {
	// NaNs removed leaves an odd count
	data := []float64{3.0, math.NaN(), 1.0, 2.0, math.NaN()}
	assert.Equal(t, 2.0, NaNMedian(data))
}

func TestNaNStdDev_SampleVariance(t *testing.T) {
	// Sample (n-1) standard deviation of {1, 3} is sqrt(2)
	assert.InDelta(t, math.Sqrt2, NaNStdDev([]float64{1.0, 3.0}), 1e-12)
}

func TestNaNStdDev_DegenerateCounts(t *testing.T) {
	assert.Equal(t, 0.0, NaNStdDev([]float64{5.0}))
	assert.True(t, math.IsNaN(NaNStdDev(nil)))
	assert.Equal(t, 0.0, NaNStdDev([]float64{5.0, math.NaN()}))
}

func TestNaNPercentile_Extremes(t *testing.T) {
	data := []float64{4.0, 1.0, 3.0, 2.0, 5.0}
	assert.Equal(t, 1.0, NaNPercentile(data, 0))
	assert.Equal(t, 5.0, NaNPercentile(data, 100))
	assert.Equal(t, 3.0, NaNPercentile(data, 50))
}

func TestNaNPercentile_DoesNotMutateInput(t *testing.T) {
	data := []float64{3.0, 1.0, 2.0}
	_ = NaNPercentile(data, 50)
	assert.Equal(t, []float64{3.0, 1.0, 2.0}, data)
}

func TestNaNPercentile_AllNaN(t *testing.T) {
	assert.True(t, math.IsNaN(NaNPercentile([]float64{math.NaN()}, 50)))
}
