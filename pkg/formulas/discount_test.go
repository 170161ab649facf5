package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscountSum_ZeroRate(t *testing.T) {
	// At a zero rate the annuity factor is exactly the horizon length
	assert.Equal(t, 10.0, DiscountSum(10, 0.0))
	assert.Equal(t, 1.0, DiscountSum(1, 0.0))
}

func TestDiscountSum_SingleYear(t *testing.T) {
	assert.InDelta(t, 1.0/1.03, DiscountSum(1, 0.03), 1e-12)
}

func TestDiscountSum_DecreasingInRate(t *testing.T) {
	prev := DiscountSum(10, 0.0)
	for _, rate := range []float64{0.01, 0.03, 0.05, 0.1, 0.2} {
		cur := DiscountSum(10, rate)
		assert.Less(t, cur, prev, "annuity factor should decrease as rate %g grows", rate)
		prev = cur
	}
}

func TestDiscountSum_NonPositiveHorizon(t *testing.T) {
	assert.Equal(t, 0.0, DiscountSum(0, 0.03))
	assert.Equal(t, 0.0, DiscountSum(-5, 0.03))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
	assert.Equal(t, 0.0, Clamp(-3.0, 0.0, 1.0))
	assert.Equal(t, 1.0, Clamp(7.0, 0.0, 1.0))
	assert.Equal(t, 1.0, Clamp(1.0, 0.0, 1.0), "bounds are inclusive")
}
