package engine

import (
	"github.com/rs/zerolog"

	"github.com/healthecon/preventsim/pkg/formulas"
)

// Model is a validated, loaded portfolio model. It is created by Load and
// mutated only by Calibrate; every other operation reads it without mutation.
type Model struct {
	params Parameters
	log    zerolog.Logger
}

// Load validates the supplied parameters and returns an in-memory model.
//
// The parameters are deep-copied, so the caller's value is never aliased.
// For every intervention without an explicit lognormal RR channel, one is
// derived once here from its Beta RRR channel via moment matching, so
// evaluations never re-derive it.
func Load(params Parameters, log zerolog.Logger) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	p := params.Clone()
	for _, key := range p.InterventionKeys() {
		intr := p.Interventions[key]
		if intr.RRLognormal == nil {
			ln := lognormalFromBetaRRR(*intr.RRRBeta)
			intr.RRLognormal = &ln
			log.Debug().
				Str("intervention", key).
				Float64("mu", ln.Mu).
				Float64("sigma", ln.Sigma).
				Msg("Derived lognormal RR channel from Beta RRR")
		}
	}

	return &Model{
		params: p,
		log:    log.With().Str("module", "engine").Logger(),
	}, nil
}

// Parameters returns a deep copy of the model's canonical parameters.
// Reporting layers format from this accessor; the model itself never stores
// rounded display values.
func (m *Model) Parameters() Parameters {
	return m.params.Clone()
}

// DiscountFactor returns the present-value annuity factor for the model's
// horizon and discount rate
func (m *Model) DiscountFactor() float64 {
	return formulas.DiscountSum(m.params.Simulation.HorizonYears, m.params.Simulation.DiscountRate)
}
