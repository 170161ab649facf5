package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/healthecon/preventsim/pkg/formulas"
)

// CalibrationTarget is a partial set of desired model outputs for one
// intervention. Nil fields skip their calibration step.
type CalibrationTarget struct {
	Investment      *float64 `json:"investment,omitempty"`
	EventsPrevented *float64 `json:"events_prevented,omitempty"`
	DeathsAverted   *float64 `json:"deaths_averted,omitempty"`
	ROIRatio        *float64 `json:"roi_ratio,omitempty"`
	CostPerQALY     *float64 `json:"cost_per_qaly,omitempty"`
}

// PortfolioTarget retargets total portfolio savings by adjusting a single
// designated intervention's per-event cost channels
type PortfolioTarget struct {
	BenefitsTotal      float64 `json:"benefits_total"`
	AdjustIntervention string  `json:"adjust_intervention"`
}

// ParameterChange records one mutated parameter (Gamma channels are recorded
// by their mean)
type ParameterChange struct {
	Field string  `json:"field"`
	Old   float64 `json:"old"`
	New   float64 `json:"new"`
}

// CalibrationRecord reports every parameter mutated by a calibration pass,
// keyed by intervention
type CalibrationRecord struct {
	Changes map[string][]ParameterChange `json:"changes"`
}

func (r *CalibrationRecord) merge(key string, changes []ParameterChange) {
	if len(changes) == 0 {
		return
	}
	r.Changes[key] = append(r.Changes[key], changes...)
}

// setGammaMean rewrites a Gamma's scale so shape*scale equals the given mean
// while the shape stays fixed
func setGammaMean(g *GammaParams, mean float64) {
	g.Scale = mean / math.Max(g.Shape, 1e-12)
}

// Calibrate mutates the model's parameters so a subsequent deterministic run
// reproduces the supplied targets. This is exact closed-form
// back-substitution, not iterative optimization; steps run in strict
// precedence (investment, events, deaths, roi, cost-per-QALY) because later
// steps consume quantities derived by earlier ones.
//
// Absent target fields are silent no-ops. Referencing an intervention the
// model does not contain is fatal.
func (m *Model) Calibrate(targets map[string]CalibrationTarget) (*CalibrationRecord, error) {
	record := &CalibrationRecord{Changes: make(map[string][]ParameterChange)}

	keys := make([]string, 0, len(targets))
	for k := range targets {
		if _, ok := m.params.Interventions[k]; !ok {
			return nil, fmt.Errorf("calibration target references unknown intervention %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		changes := m.calibrateIntervention(key, targets[key])
		record.merge(key, changes)
	}

	for key, changes := range record.Changes {
		m.log.Info().
			Str("intervention", key).
			Int("parameters_changed", len(changes)).
			Msg("Calibrated intervention")
	}

	return record, nil
}

// calibrateIntervention applies the closed-form back-substitution for one
// intervention. All divisions are epsilon-floored; a non-positive population
// makes every step a no-op.
func (m *Model) calibrateIntervention(key string, tgt CalibrationTarget) []ParameterChange {
	intr := m.params.Interventions[key]
	n := intr.Population
	if n <= 0 {
		return nil
	}

	horizon := float64(m.params.Simulation.HorizonYears)
	discount := m.DiscountFactor()
	rrrM := rrrMean(intr)

	var changes []ParameterChange
	rec := func(field string, old, updated float64) {
		if old != updated {
			changes = append(changes, ParameterChange{Field: field, Old: old, New: updated})
		}
	}

	// Step 1: investment target fixes the program-cost mean, shape held
	if tgt.Investment != nil {
		costPPY := *tgt.Investment / (n * math.Max(discount, 1e-12))
		old := intr.CostPPYGamma.Mean()
		setGammaMean(&intr.CostPPYGamma, costPPY)
		rec("cost_ppy_gamma.mean", old, intr.CostPPYGamma.Mean())
	}

	// Step 2: events target fixes the annual event rate and collapses the
	// Beta RRR channel around its current mean. Spread is traded for exact
	// target reproduction.
	var events float64
	if tgt.EventsPrevented != nil && *tgt.EventsPrevented != 0 {
		events = *tgt.EventsPrevented
		rate := formulas.Clamp(events/(n*horizon*math.Max(rrrM, 1e-9)), 1e-8, 0.95)
		rec("annual_event_rate", intr.AnnualEventRate, rate)
		intr.AnnualEventRate = rate
		oldRRR := rrrM
		intr.RRRBeta = &BetaParams{Alpha: rrrM * 1e6, Beta: (1.0 - rrrM) * 1e6}
		ln := lognormalFromBetaRRR(*intr.RRRBeta)
		intr.RRLognormal = &ln
		rec("rrr_beta.mean", oldRRR, intr.RRRBeta.Mean())
	} else {
		events = n * horizon * rrrM * intr.AnnualEventRate
	}

	// Step 3: deaths target fixes the case fatality rate from the events
	// just derived
	if tgt.DeathsAverted != nil && *tgt.DeathsAverted != 0 && events > 0 {
		cfr := formulas.Clamp(*tgt.DeathsAverted/events, 0.0, 0.95)
		rec("case_fatality_rate", intr.CaseFatalityRate, cfr)
		intr.CaseFatalityRate = cfr
	}

	// Step 4: an roi target implies the total savings the remaining steps
	// must distribute
	var totalSavings *float64
	if tgt.ROIRatio != nil && tgt.Investment != nil {
		s := *tgt.Investment * (1.0 + *tgt.ROIRatio)
		totalSavings = &s
	}

	// Step 5: cost-per-QALY target backs out the QALY loss per event from
	// the current mortality channel, then splits the implied savings between
	// the healthcare and productivity cost channels
	if tgt.CostPerQALY != nil && *tgt.CostPerQALY != 0 && events > 0 {
		costPerQALY := *tgt.CostPerQALY
		cfr := intr.CaseFatalityRate
		lifeYears := intr.LifeYearsLostPerDeath
		utility := intr.UtilityWeight
		annualFlow := events / horizon

		qalysCurrent := discount * annualFlow * (intr.QALYsLostPerEvent + cfr*lifeYears) * utility
		var qalysTarget float64
		if totalSavings != nil {
			qalysMin := math.Max(1e-6, (*tgt.Investment-*totalSavings)/costPerQALY)
			qalysMax := math.Max(qalysMin*1.01, *tgt.Investment/costPerQALY)
			qalysTarget = formulas.Clamp(qalysCurrent, qalysMin, qalysMax)
		} else {
			qalysTarget = math.Max(1e-6, qalysCurrent)
		}

		qalysPerEvent := qalysTarget/(discount*annualFlow*math.Max(utility, 1e-9)) - cfr*lifeYears
		rec("qalys_lost_per_event", intr.QALYsLostPerEvent, math.Max(1e-6, qalysPerEvent))
		intr.QALYsLostPerEvent = math.Max(1e-6, qalysPerEvent)

		if totalSavings != nil {
			perEventTotal := *totalSavings / (discount * annualFlow)
			savingsHC := formulas.Clamp(*tgt.Investment-costPerQALY*qalysTarget, 0.0, *totalSavings)
			perEventHC := savingsHC / (discount * annualFlow)
			perEventProd := math.Max(0.0, perEventTotal-perEventHC)

			oldEvent := intr.EventCostGamma.Mean()
			oldProd := intr.ProductivityCostGamma.Mean()
			setGammaMean(&intr.EventCostGamma, perEventHC)
			setGammaMean(&intr.ProductivityCostGamma, perEventProd)
			rec("event_cost_gamma.mean", oldEvent, intr.EventCostGamma.Mean())
			rec("productivity_cost_gamma.mean", oldProd, intr.ProductivityCostGamma.Mean())
		}
	}

	// Step 6: re-normalize the per-event Gammas so shape*scale is exactly
	// the derived mean after the arithmetic above
	setGammaMean(&intr.EventCostGamma, math.Max(0.0, intr.EventCostGamma.Mean()))
	setGammaMean(&intr.ProductivityCostGamma, math.Max(0.0, intr.ProductivityCostGamma.Mean()))

	return changes
}

// CalibratePortfolio rescales one intervention's per-event cost channels so
// the deterministic portfolio total savings hits the given target. The
// adjustment intervention's savings contribution absorbs the whole
// shortfall; every other intervention is untouched.
func (m *Model) CalibratePortfolio(tgt PortfolioTarget) (*CalibrationRecord, error) {
	key := tgt.AdjustIntervention
	intr, ok := m.params.Interventions[key]
	if !ok {
		return nil, fmt.Errorf("portfolio calibration references unknown intervention %q", key)
	}

	result := m.RunDeterministic()
	current := result.Portfolio.TotalSavings
	delta := tgt.BenefitsTotal - current

	adj := m.params.Adjustments
	per := result.PerIntervention[key]
	contribution := per.HCSavings*adj.HCRealization*adj.BenefitSynergy +
		per.SocSavings*adj.ProdRealization*adj.BenefitSynergy
	if contribution <= 1e-9 {
		return nil, fmt.Errorf("intervention %q contributes no savings to absorb the adjustment", key)
	}

	factor := math.Max(0.0, 1.0+delta/contribution)

	record := &CalibrationRecord{Changes: make(map[string][]ParameterChange)}
	oldEvent := intr.EventCostGamma.Mean()
	oldProd := intr.ProductivityCostGamma.Mean()
	setGammaMean(&intr.EventCostGamma, oldEvent*factor)
	setGammaMean(&intr.ProductivityCostGamma, oldProd*factor)
	record.merge(key, []ParameterChange{
		{Field: "event_cost_gamma.mean", Old: oldEvent, New: intr.EventCostGamma.Mean()},
		{Field: "productivity_cost_gamma.mean", Old: oldProd, New: intr.ProductivityCostGamma.Mean()},
	})

	m.log.Info().
		Str("intervention", key).
		Float64("target_benefits", tgt.BenefitsTotal).
		Float64("scale_factor", factor).
		Msg("Retargeted portfolio benefits")

	return record, nil
}
