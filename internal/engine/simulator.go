package engine

import "math/rand/v2"

// IterationResult holds one evaluation of one intervention: discounted money
// flows over the whole horizon plus undiscounted health counts
type IterationResult struct {
	Investment      float64 `json:"investment"`
	HCSavings       float64 `json:"hc_savings"`
	SocSavings      float64 `json:"soc_savings"`
	QALYs           float64 `json:"qalys"`
	EventsPrevented float64 `json:"events_prevented"`
	DeathsAverted   float64 `json:"deaths_averted"`
}

// simulateIntervention evaluates one intervention for one pass using the
// supplied channel realizations.
//
// The model is a steady-state annual-flow approximation: the same annual
// cohort flow is assumed every year of the horizon, money flows are
// discounted through the annuity factor, and event/death counts are the
// annual flow times the horizon.
//
// A non-positive population short-circuits to an all-zero result; no
// division is ever reached.
func (m *Model) simulateIntervention(intr *InterventionSpec, d draws) IterationResult {
	n := intr.Population
	if n <= 0 {
		return IterationResult{}
	}

	sim := m.params.Simulation
	horizon := float64(sim.HorizonYears)
	discount := m.DiscountFactor()

	baseEventsPY := n * intr.AnnualEventRate
	preventedPY := baseEventsPY * d.rrr
	deathsPY := preventedPY * intr.CaseFatalityRate

	investPY := n * d.costPPY
	hcSavingsPY := preventedPY * d.eventCost
	socSavingsPY := 0.0
	if sim.Perspective == PerspectiveSocietal {
		socSavingsPY = preventedPY * d.prodCost
	}
	qalysPY := preventedPY * (intr.QALYsLostPerEvent + intr.CaseFatalityRate*intr.LifeYearsLostPerDeath) * intr.UtilityWeight

	return IterationResult{
		Investment:      investPY * discount,
		HCSavings:       hcSavingsPY * discount,
		SocSavings:      socSavingsPY * discount,
		QALYs:           qalysPY * discount,
		EventsPrevented: preventedPY * horizon,
		DeathsAverted:   deathsPY * horizon,
	}
}

// evaluateAll runs one pass over every intervention. With a nil source the
// pass is deterministic (channel means); otherwise each channel is sampled
// once from the source.
func (m *Model) evaluateAll(src rand.Source) map[string]IterationResult {
	results := make(map[string]IterationResult, len(m.params.Interventions))
	for _, key := range m.params.InterventionKeys() {
		intr := m.params.Interventions[key]
		var d draws
		if src == nil {
			d = meanDraws(intr)
		} else {
			d = sampleDraws(intr, src)
		}
		results[key] = m.simulateIntervention(intr, d)
	}
	return results
}
