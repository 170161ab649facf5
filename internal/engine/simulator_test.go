package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthecon/preventsim/pkg/formulas"
)

func TestSimulateIntervention_MeanFlows(t *testing.T) {
	m := loadTestModel(t, testParameters())
	intr := m.params.Interventions["cvd"]

	result := m.simulateIntervention(intr, meanDraws(intr))

	// Annual flows: 100000 * 0.01 = 1000 baseline events, 20% prevented
	discount := formulas.DiscountSum(10, 0.03)
	preventedPY := 200.0

	assert.InEpsilon(t, 100000*200.0*discount, result.Investment, 1e-9)
	assert.InEpsilon(t, preventedPY*100000.0*discount, result.HCSavings, 1e-9)
	assert.InEpsilon(t, preventedPY*150000.0*discount, result.SocSavings, 1e-9)
	assert.InEpsilon(t, preventedPY*(0.5+0.1*10.0)*0.85*discount, result.QALYs, 1e-9)
	assert.InEpsilon(t, preventedPY*10.0, result.EventsPrevented, 1e-9)
	assert.InEpsilon(t, preventedPY*0.1*10.0, result.DeathsAverted, 1e-9)
}

func TestSimulateIntervention_CountsAreUndiscounted(t *testing.T) {
	p := testParameters()
	p.Simulation.DiscountRate = 0.2
	m := loadTestModel(t, p)
	intr := m.params.Interventions["cvd"]

	result := m.simulateIntervention(intr, meanDraws(intr))

	// Money flows shrink with the rate; event and death counts never do
	assert.InEpsilon(t, 2000.0, result.EventsPrevented, 1e-9)
	assert.InEpsilon(t, 200.0, result.DeathsAverted, 1e-9)
}

func TestSimulateIntervention_ZeroPopulation(t *testing.T) {
	p := testParameters()
	p.Interventions["cvd"].Population = 0
	m := loadTestModel(t, p)
	intr := m.params.Interventions["cvd"]

	assert.Equal(t, IterationResult{}, m.simulateIntervention(intr, meanDraws(intr)))
}

func TestSimulateIntervention_HealthcarePerspective(t *testing.T) {
	p := testParameters()
	p.Simulation.Perspective = PerspectiveHealthcare
	m := loadTestModel(t, p)
	intr := m.params.Interventions["cvd"]

	result := m.simulateIntervention(intr, meanDraws(intr))

	assert.Equal(t, 0.0, result.SocSavings, "productivity savings only count from the societal perspective")
	assert.Greater(t, result.HCSavings, 0.0)
}

func TestEvaluateAll_DeterministicPass(t *testing.T) {
	m := loadTestModel(t, testParametersTwo())

	first := m.evaluateAll(nil)
	second := m.evaluateAll(nil)

	require.Len(t, first, 2)
	assert.Equal(t, first, second, "mean passes are reproducible")
}

func TestRRRMean_ClampsExtremeResidualRisk(t *testing.T) {
	// A lognormal whose mean residual risk exceeds 1 clamps at 0.999,
	// leaving a small positive risk reduction
	intr := &InterventionSpec{RRLognormal: &LognormalParams{Mu: 2.0, Sigma: 0.1}}
	assert.InDelta(t, 1.0-0.999, rrrMean(intr), 1e-12)

	// A near-zero mean residual risk clamps at the floor
	intr = &InterventionSpec{RRLognormal: &LognormalParams{Mu: -40.0, Sigma: 0.1}}
	assert.InDelta(t, 1.0-1e-6, rrrMean(intr), 1e-12)
}
