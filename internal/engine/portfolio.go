package engine

import "math"

// PortfolioTotals holds intervention results summed across the portfolio,
// after the cross-program adjustment multipliers have been applied
type PortfolioTotals struct {
	Investment      float64 `json:"investment"`
	HCSavings       float64 `json:"hc_savings"`
	SocSavings      float64 `json:"soc_savings"`
	TotalSavings    float64 `json:"total_savings"`
	QALYs           float64 `json:"qalys"`
	EventsPrevented float64 `json:"events_prevented"`
	DeathsAverted   float64 `json:"deaths_averted"`
}

// PortfolioResult is one full portfolio evaluation: the adjusted portfolio
// totals plus the per-intervention breakdown
type PortfolioResult struct {
	PerIntervention map[string]IterationResult `json:"per_intervention"`
	Portfolio       PortfolioTotals            `json:"portfolio"`
}

// ROISummary is the return-on-investment view of a deterministic portfolio
// result
type ROISummary struct {
	TotalInvestment      float64 `json:"total_investment"`
	TotalSavings         float64 `json:"total_savings"`
	NetBenefit           float64 `json:"net_benefit"`
	ROIPercentage        float64 `json:"roi_percentage"`
	ROIRatio             float64 `json:"roi_ratio"`
	TotalEventsPrevented float64 `json:"total_events_prevented"`
	TotalDeathsAverted   float64 `json:"total_deaths_averted"`
	TotalQALYsGained     float64 `json:"total_qalys_gained"`
}

// aggregatePortfolio sums the per-intervention results and applies each
// adjustment multiplier exactly once to the sums. Investment is never
// adjusted.
//
// After adjustment, the per-intervention deaths_averted breakdown is rescaled
// so it sums exactly to the adjusted portfolio total. Only deaths are
// reconciled this way; events, QALYs and savings breakdowns keep their
// originally computed values.
func (m *Model) aggregatePortfolio(per map[string]IterationResult) PortfolioResult {
	var totals PortfolioTotals
	for _, v := range per {
		totals.Investment += v.Investment
		totals.HCSavings += v.HCSavings
		totals.SocSavings += v.SocSavings
		totals.QALYs += v.QALYs
		totals.EventsPrevented += v.EventsPrevented
		totals.DeathsAverted += v.DeathsAverted
	}

	rawDeaths := totals.DeathsAverted

	adj := m.params.Adjustments
	totals.EventsPrevented *= adj.OverlapEvents
	totals.DeathsAverted *= adj.MortalitySynergy
	totals.QALYs *= adj.QALYSynergy
	totals.HCSavings *= adj.HCRealization * adj.BenefitSynergy
	totals.SocSavings *= adj.ProdRealization * adj.BenefitSynergy
	totals.TotalSavings = totals.HCSavings + totals.SocSavings

	if rawDeaths > 0 {
		scale := totals.DeathsAverted / rawDeaths
		for key, v := range per {
			v.DeathsAverted *= scale
			per[key] = v
		}
	}

	return PortfolioResult{PerIntervention: per, Portfolio: totals}
}

// RunDeterministic evaluates the whole portfolio once at the channel means.
// Repeated calls on an unmutated model return identical results.
func (m *Model) RunDeterministic() PortfolioResult {
	return m.aggregatePortfolio(m.evaluateAll(nil))
}

// ROI derives the return-on-investment summary from a portfolio result.
// A zero-investment portfolio yields zero ratios rather than a division
// fault.
func (r PortfolioResult) ROI() ROISummary {
	invest := r.Portfolio.Investment
	savings := r.Portfolio.TotalSavings

	roiPct := 0.0
	roiRatio := 0.0
	if invest > 0 {
		roiPct = (savings - invest) / invest * 100.0
		roiRatio = savings / invest
	}

	return ROISummary{
		TotalInvestment:      invest,
		TotalSavings:         savings,
		NetBenefit:           savings - invest,
		ROIPercentage:        roiPct,
		ROIRatio:             roiRatio,
		TotalEventsPrevented: r.Portfolio.EventsPrevented,
		TotalDeathsAverted:   r.Portfolio.DeathsAverted,
		TotalQALYsGained:     r.Portfolio.QALYs,
	}
}

// CostPerQALY returns (investment - hc_savings) / qalys for one
// intervention's result, or NaN when no QALYs were gained. Absence of QALYs
// makes cost-effectiveness undefined, never zero.
func (v IterationResult) CostPerQALY() float64 {
	if v.QALYs <= 0 {
		return math.NaN()
	}
	return (v.Investment - v.HCSavings) / v.QALYs
}
