// Package engine implements the preventive-health portfolio model: parameter
// validation, distribution sampling, single-pass intervention simulation,
// portfolio aggregation, Monte Carlo uncertainty propagation, and closed-form
// calibration against externally supplied target outputs.
package engine

import (
	"fmt"
	"sort"
)

// Perspective selects which cost channels count as savings
type Perspective string

const (
	PerspectiveHealthcare Perspective = "healthcare"
	PerspectiveSocietal   Perspective = "societal"
)

// GammaParams parameterizes a Gamma(shape, scale) cost distribution.
// Mean is shape*scale.
type GammaParams struct {
	Shape float64 `json:"shape"`
	Scale float64 `json:"scale"`
}

// Mean returns shape*scale
func (g GammaParams) Mean() float64 {
	return g.Shape * g.Scale
}

// BetaParams parameterizes a Beta(alpha, beta) distribution over the
// relative-risk-reduction (RRR) of a program
type BetaParams struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// Mean returns alpha/(alpha+beta)
func (b BetaParams) Mean() float64 {
	return b.Alpha / (b.Alpha + b.Beta)
}

// Variance returns the Beta distribution variance
func (b BetaParams) Variance() float64 {
	s := b.Alpha + b.Beta
	return (b.Alpha * b.Beta) / (s * s * (s + 1.0))
}

// LognormalParams parameterizes a Lognormal(mu, sigma) distribution over the
// residual relative risk (RR) of a program
type LognormalParams struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// InterventionSpec describes one prevention program. Exactly one
// risk-reduction channel is authoritative: RRLognormal when present,
// otherwise RRRBeta (from which a lognormal is derived once at load).
type InterventionSpec struct {
	Label                 string           `json:"label"`
	Population            float64          `json:"population"`
	AnnualEventRate       float64          `json:"annual_event_rate"`
	CaseFatalityRate      float64          `json:"case_fatality_rate"`
	UtilityWeight         float64          `json:"utility_weight"`
	QALYsLostPerEvent     float64          `json:"qalys_lost_per_event"`
	LifeYearsLostPerDeath float64          `json:"life_years_lost_per_death"`
	CostPPYGamma          GammaParams      `json:"cost_ppy_gamma"`
	EventCostGamma        GammaParams      `json:"event_cost_gamma"`
	ProductivityCostGamma GammaParams      `json:"productivity_cost_gamma"`
	RRLognormal           *LognormalParams `json:"rr_lognormal,omitempty"`
	RRRBeta               *BetaParams      `json:"rrr_beta,omitempty"`
}

// SimulationConfig holds horizon and discounting settings
type SimulationConfig struct {
	HorizonYears     int         `json:"horizon_years"`
	DiscountRate     float64     `json:"discount_rate"`
	Perspective      Perspective `json:"perspective"`
	WillingnessToPay float64     `json:"willingness_to_pay_threshold"`
}

// PortfolioAdjustments holds the six fixed cross-program multipliers applied
// once per portfolio evaluation. They are constants, never sampled.
type PortfolioAdjustments struct {
	OverlapEvents    float64 `json:"overlap_events"`
	MortalitySynergy float64 `json:"mortality_synergy"`
	QALYSynergy      float64 `json:"qaly_synergy"`
	HCRealization    float64 `json:"hc_realization"`
	ProdRealization  float64 `json:"prod_realization"`
	BenefitSynergy   float64 `json:"benefit_synergy"`
}

// Parameters is the full validated model input. It is an explicit value
// passed into Load; there is no package-level parameter state.
type Parameters struct {
	Simulation    SimulationConfig             `json:"simulation"`
	Adjustments   PortfolioAdjustments         `json:"portfolio_adjustments"`
	Interventions map[string]*InterventionSpec `json:"interventions"`
}

// ValidationError reports a fatal load-time parameter problem, identifying
// the offending field by its dotted path
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Path, e.Reason)
}

func invalid(path, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks all fatal invariants from the model contract:
// horizon > 0, discount rate in [0, 0.2], rates in [0,1], utility weight in
// (0,1], positive adjustment multipliers, and well-formed distributions.
// Zero or negative populations are NOT fatal; they degrade to all-zero
// results downstream.
func (p *Parameters) Validate() error {
	if p.Simulation.HorizonYears <= 0 {
		return invalid("simulation.horizon_years", "must be positive, got %d", p.Simulation.HorizonYears)
	}
	if p.Simulation.DiscountRate < 0 || p.Simulation.DiscountRate > 0.2 {
		return invalid("simulation.discount_rate", "must be in [0, 0.2], got %g", p.Simulation.DiscountRate)
	}
	switch p.Simulation.Perspective {
	case PerspectiveHealthcare, PerspectiveSocietal:
	default:
		return invalid("simulation.perspective", "unsupported perspective %q", p.Simulation.Perspective)
	}
	if p.Simulation.WillingnessToPay < 0 {
		return invalid("simulation.willingness_to_pay_threshold", "must be non-negative, got %g", p.Simulation.WillingnessToPay)
	}

	adjustments := map[string]float64{
		"portfolio_adjustments.overlap_events":    p.Adjustments.OverlapEvents,
		"portfolio_adjustments.mortality_synergy": p.Adjustments.MortalitySynergy,
		"portfolio_adjustments.qaly_synergy":      p.Adjustments.QALYSynergy,
		"portfolio_adjustments.hc_realization":    p.Adjustments.HCRealization,
		"portfolio_adjustments.prod_realization":  p.Adjustments.ProdRealization,
		"portfolio_adjustments.benefit_synergy":   p.Adjustments.BenefitSynergy,
	}
	for path, v := range adjustments {
		if v <= 0 {
			return invalid(path, "must be positive, got %g", v)
		}
	}

	if len(p.Interventions) == 0 {
		return invalid("interventions", "at least one intervention is required")
	}

	for _, key := range p.InterventionKeys() {
		intr := p.Interventions[key]
		prefix := "interventions." + key
		if intr == nil {
			return invalid(prefix, "missing specification")
		}
		if intr.AnnualEventRate < 0 || intr.AnnualEventRate > 1 {
			return invalid(prefix+".annual_event_rate", "must be in [0, 1], got %g", intr.AnnualEventRate)
		}
		if intr.CaseFatalityRate < 0 || intr.CaseFatalityRate > 1 {
			return invalid(prefix+".case_fatality_rate", "must be in [0, 1], got %g", intr.CaseFatalityRate)
		}
		if intr.UtilityWeight <= 0 || intr.UtilityWeight > 1 {
			return invalid(prefix+".utility_weight", "must be in (0, 1], got %g", intr.UtilityWeight)
		}
		if intr.QALYsLostPerEvent < 0 {
			return invalid(prefix+".qalys_lost_per_event", "must be non-negative, got %g", intr.QALYsLostPerEvent)
		}
		if intr.LifeYearsLostPerDeath < 0 {
			return invalid(prefix+".life_years_lost_per_death", "must be non-negative, got %g", intr.LifeYearsLostPerDeath)
		}
		gammas := map[string]GammaParams{
			prefix + ".cost_ppy_gamma":          intr.CostPPYGamma,
			prefix + ".event_cost_gamma":        intr.EventCostGamma,
			prefix + ".productivity_cost_gamma": intr.ProductivityCostGamma,
		}
		for path, g := range gammas {
			if g.Shape <= 0 || g.Scale < 0 {
				return invalid(path, "shape must be positive and scale non-negative, got shape=%g scale=%g", g.Shape, g.Scale)
			}
		}
		if intr.RRLognormal == nil && intr.RRRBeta == nil {
			return invalid(prefix, "either rr_lognormal or rrr_beta is required")
		}
		if intr.RRRBeta != nil && (intr.RRRBeta.Alpha <= 0 || intr.RRRBeta.Beta <= 0) {
			return invalid(prefix+".rrr_beta", "alpha and beta must be positive, got alpha=%g beta=%g", intr.RRRBeta.Alpha, intr.RRRBeta.Beta)
		}
		if intr.RRLognormal != nil && intr.RRLognormal.Sigma < 0 {
			return invalid(prefix+".rr_lognormal", "sigma must be non-negative, got %g", intr.RRLognormal.Sigma)
		}
	}

	return nil
}

// InterventionKeys returns all intervention keys in sorted order so that
// iteration over the portfolio is deterministic
func (p *Parameters) InterventionKeys() []string {
	keys := make([]string, 0, len(p.Interventions))
	for k := range p.Interventions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the parameters, so a loaded model never
// aliases caller-owned state
func (p *Parameters) Clone() Parameters {
	out := Parameters{
		Simulation:    p.Simulation,
		Adjustments:   p.Adjustments,
		Interventions: make(map[string]*InterventionSpec, len(p.Interventions)),
	}
	for key, intr := range p.Interventions {
		if intr == nil {
			out.Interventions[key] = nil
			continue
		}
		cp := *intr
		if intr.RRLognormal != nil {
			ln := *intr.RRLognormal
			cp.RRLognormal = &ln
		}
		if intr.RRRBeta != nil {
			b := *intr.RRRBeta
			cp.RRRBeta = &b
		}
		out.Interventions[key] = &cp
	}
	return out
}
