package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthecon/preventsim/pkg/formulas"
)

func loadTestModel(t *testing.T, p Parameters) *Model {
	t.Helper()
	m, err := Load(p, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func TestLoad_RejectsInvalidParameters(t *testing.T) {
	p := testParameters()
	p.Simulation.HorizonYears = -1

	m, err := Load(p, zerolog.Nop())
	assert.Nil(t, m)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLoad_DerivesLognormalFromBeta(t *testing.T) {
	m := loadTestModel(t, testParameters())

	intr := m.Parameters().Interventions["cvd"]
	require.NotNil(t, intr.RRLognormal)

	// Moment matching preserves the mean residual risk exactly:
	// E[RR] = exp(mu + sigma^2/2) = 1 - E[RRR]
	assert.InDelta(t, 0.8, lognormalMean(*intr.RRLognormal), 1e-9)
	assert.Greater(t, intr.RRLognormal.Sigma, 0.0)
}

func TestLoad_DoesNotAliasCallerParameters(t *testing.T) {
	p := testParameters()
	m := loadTestModel(t, p)

	p.Interventions["cvd"].AnnualEventRate = 0.99

	assert.Equal(t, 0.01, m.Parameters().Interventions["cvd"].AnnualEventRate)
}

func TestParameters_ReturnsCopy(t *testing.T) {
	m := loadTestModel(t, testParameters())

	got := m.Parameters()
	got.Interventions["cvd"].Population = 1

	assert.Equal(t, 100000.0, m.Parameters().Interventions["cvd"].Population)
}

func TestDiscountFactor(t *testing.T) {
	m := loadTestModel(t, testParameters())
	assert.Equal(t, formulas.DiscountSum(10, 0.03), m.DiscountFactor())
}

func TestDefaultParameters_LoadAndRun(t *testing.T) {
	m := loadTestModel(t, DefaultParameters())

	result := m.RunDeterministic()
	roi := result.ROI()

	assert.Len(t, result.PerIntervention, 5)
	assert.Greater(t, roi.TotalInvestment, 0.0)
	assert.Greater(t, roi.TotalSavings, roi.TotalInvestment,
		"the default portfolio is net cost-saving")
	assert.Greater(t, roi.ROIRatio, 2.0)
	assert.Less(t, roi.ROIRatio, 3.0)
	assert.Greater(t, roi.TotalDeathsAverted, 0.0)
	assert.Greater(t, roi.TotalQALYsGained, 0.0)
}
