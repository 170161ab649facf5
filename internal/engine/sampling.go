package engine

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/healthecon/preventsim/pkg/formulas"
)

const (
	// Residual relative risk is clamped to this range in both deterministic
	// and stochastic passes
	rrFloor = 1e-6
	rrCeil  = 0.999

	// During stochastic passes the program-cost Gamma's shape is floored here
	// while its scale is shrunk to preserve the mean, collapsing the sampled
	// variance toward zero. This models a fixed-budget program: the spend is
	// committed, only the per-event cost channels stay uncertain.
	fixedBudgetShapeFloor = 1e6
)

// draws holds one realization (or the means) of the four uncertain channels
// of a single intervention
type draws struct {
	costPPY   float64 // program cost per person-year
	eventCost float64 // healthcare cost per averted event
	prodCost  float64 // productivity cost per averted event
	rrr       float64 // relative risk reduction, in [0, 1)
}

// lognormalFromBetaRRR moment-matches a Lognormal over residual relative
// risk from a Beta over relative-risk-reduction.
//
// The Beta variance of RRR is reused as an approximation for the variance of
// RR. This is mathematically inexact (the exact transform of 1-X would be
// needed) but matches the model's published methodology.
func lognormalFromBetaRRR(b BetaParams) LognormalParams {
	meanRR := math.Max(1e-8, 1.0-b.Mean())
	varRR := math.Max(1e-12, b.Variance())
	sigma2 := math.Max(1e-12, math.Log(1.0+varRR/(meanRR*meanRR)))
	return LognormalParams{
		Mu:    math.Log(meanRR) - 0.5*sigma2,
		Sigma: math.Sqrt(sigma2),
	}
}

// lognormalMean returns exp(mu + sigma^2/2)
func lognormalMean(ln LognormalParams) float64 {
	return math.Exp(ln.Mu + 0.5*ln.Sigma*ln.Sigma)
}

// rrrMean returns the deterministic relative-risk-reduction of an
// intervention: from the lognormal RR channel when present (clamped),
// otherwise the Beta RRR mean
func rrrMean(intr *InterventionSpec) float64 {
	if intr.RRLognormal != nil {
		rr := formulas.Clamp(lognormalMean(*intr.RRLognormal), rrFloor, rrCeil)
		return 1.0 - rr
	}
	return intr.RRRBeta.Mean()
}

// meanDraws returns the deterministic (expectation) realization of each
// uncertain channel
func meanDraws(intr *InterventionSpec) draws {
	return draws{
		costPPY:   intr.CostPPYGamma.Mean(),
		eventCost: intr.EventCostGamma.Mean(),
		prodCost:  intr.ProductivityCostGamma.Mean(),
		rrr:       rrrMean(intr),
	}
}

// sampleGamma draws once from Gamma(shape, scale). distuv parameterizes the
// Gamma by rate, so the configured scale is inverted. A zero scale is a
// degenerate point mass at zero.
func sampleGamma(g GammaParams, src rand.Source) float64 {
	if g.Scale <= 0 {
		return 0
	}
	return distuv.Gamma{Alpha: g.Shape, Beta: 1.0 / g.Scale, Src: src}.Rand()
}

// sampleDraws returns one stochastic realization of each uncertain channel
// using the given random source
func sampleDraws(intr *InterventionSpec, src rand.Source) draws {
	// Fixed-budget program cost: floor the shape, shrink the scale to keep
	// the mean, so the draw is almost surely the budgeted value
	costGamma := intr.CostPPYGamma
	if costGamma.Shape < fixedBudgetShapeFloor {
		mean := costGamma.Mean()
		costGamma = GammaParams{
			Shape: fixedBudgetShapeFloor,
			Scale: mean / fixedBudgetShapeFloor,
		}
	}

	var rrr float64
	if intr.RRLognormal != nil {
		ln := *intr.RRLognormal
		rr := distuv.LogNormal{Mu: ln.Mu, Sigma: ln.Sigma, Src: src}.Rand()
		rrr = 1.0 - formulas.Clamp(rr, rrFloor, rrCeil)
	} else {
		b := *intr.RRRBeta
		rrr = distuv.Beta{Alpha: b.Alpha, Beta: b.Beta, Src: src}.Rand()
	}

	return draws{
		costPPY:   sampleGamma(costGamma, src),
		eventCost: sampleGamma(intr.EventCostGamma, src),
		prodCost:  sampleGamma(intr.ProductivityCostGamma, src),
		rrr:       rrr,
	}
}
