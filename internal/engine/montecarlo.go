package engine

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/healthecon/preventsim/pkg/formulas"
)

// Metric names tracked per Monte Carlo iteration, in sample-row order
const (
	MetricInvestment      = "investment"
	MetricHCSavings       = "hc_savings"
	MetricSocSavings      = "soc_savings"
	MetricTotalSavings    = "total_savings"
	MetricEventsPrevented = "events_prevented"
	MetricDeathsAverted   = "deaths_averted"
	MetricQALYs           = "qalys"
	MetricNetBenefit      = "net_benefit"
	MetricROI             = "roi"
	MetricICER            = "icer"
)

var monteCarloMetrics = []string{
	MetricInvestment,
	MetricHCSavings,
	MetricSocSavings,
	MetricTotalSavings,
	MetricEventsPrevented,
	MetricDeathsAverted,
	MetricQALYs,
	MetricNetBenefit,
	MetricROI,
	MetricICER,
}

// cancelCheckInterval is how many iterations the dispatcher submits between
// context checks
const cancelCheckInterval = 256

// MonteCarloConfig controls one probabilistic sensitivity analysis run
type MonteCarloConfig struct {
	Iterations int    `json:"iterations"`
	Seed       uint64 `json:"seed"`
	Workers    int    `json:"workers,omitempty"`
}

// MetricSummary is the distributional summary of one tracked metric across
// all iterations: NaN-aware mean, median, sample standard deviation, and the
// empirical 95% interval
type MetricSummary struct {
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
}

// jsonFloat renders NaN and infinities as JSON null. JSON has no
// representation for them, and an all-NaN summary (e.g. ICER on a portfolio
// gaining no QALYs) must still serialize.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// MarshalJSON keeps summaries encodable when a metric degenerates to NaN
func (s MetricSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mean    jsonFloat `json:"mean"`
		Median  jsonFloat `json:"median"`
		StdDev  jsonFloat `json:"std"`
		CILower jsonFloat `json:"ci_lower"`
		CIUpper jsonFloat `json:"ci_upper"`
	}{
		Mean:    jsonFloat(s.Mean),
		Median:  jsonFloat(s.Median),
		StdDev:  jsonFloat(s.StdDev),
		CILower: jsonFloat(s.CILower),
		CIUpper: jsonFloat(s.CIUpper),
	})
}

// CEACPoint is one point on the cost-effectiveness acceptability curve:
// the probability that the portfolio is cost-effective at a
// willingness-to-pay threshold
type CEACPoint struct {
	Threshold   float64 `json:"threshold"`
	Probability float64 `json:"probability"`
}

// MonteCarloSummary is the result of a Monte Carlo run
type MonteCarloSummary struct {
	Iterations int                      `json:"iterations"`
	Seed       uint64                   `json:"seed"`
	ElapsedMS  int64                    `json:"elapsed_ms"`
	Metrics    map[string]MetricSummary `json:"metrics"`
	CEAC       []CEACPoint              `json:"ceac,omitempty"`
}

// sampleRow holds one iteration's metrics, positionally aligned with
// monteCarloMetrics
type sampleRow [10]float64

// RunMonteCarlo runs cfg.Iterations independent stochastic portfolio passes
// and summarizes the resulting distributions.
//
// The random sub-stream for iteration i is derived from (seed, i) alone, so
// identical seed + parameters + iteration count reproduce identical
// summaries regardless of how many workers the iterations were spread over.
//
// Iterations that produce non-finite metrics are kept as NaN rows and
// excluded by the NaN-aware reducers; they never abort the batch. The
// context is checked at a fixed iteration granularity, and a cancelled run
// returns the context's error.
func (m *Model) RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig) (*MonteCarloSummary, error) {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 10000
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > cfg.Iterations {
		workers = cfg.Iterations
	}

	start := time.Now()
	m.log.Info().
		Int("iterations", cfg.Iterations).
		Uint64("seed", cfg.Seed).
		Int("workers", workers).
		Msg("Starting Monte Carlo run")

	jobs := make(chan int, workers*2)
	rows := make([]sampleRow, cfg.Iterations)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				rows[idx] = m.runIteration(cfg.Seed, idx)
			}
		}()
	}

	var cancelErr error
dispatch:
	for i := 0; i < cfg.Iterations; i++ {
		if i%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				cancelErr = ctx.Err()
				break dispatch
			default:
			}
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if cancelErr != nil {
		m.log.Warn().Err(cancelErr).Msg("Monte Carlo run cancelled")
		return nil, cancelErr
	}

	summary := m.summarize(rows, cfg)
	summary.ElapsedMS = time.Since(start).Milliseconds()

	m.log.Info().
		Int64("elapsed_ms", summary.ElapsedMS).
		Float64("mean_roi", summary.Metrics[MetricROI].Mean).
		Msg("Monte Carlo run complete")

	return summary, nil
}

// runIteration evaluates one stochastic portfolio pass. Each intervention
// gets fresh draws from the iteration's own sub-stream.
func (m *Model) runIteration(seed uint64, iteration int) sampleRow {
	src := rand.NewPCG(seed, uint64(iteration))
	result := m.aggregatePortfolio(m.evaluateAll(src))
	p := result.Portfolio

	roi := 0.0
	if p.Investment > 0 {
		roi = (p.TotalSavings - p.Investment) / p.Investment
	}
	icer := math.NaN()
	if p.QALYs > 0 {
		icer = (p.Investment - p.TotalSavings) / p.QALYs
	}

	return sampleRow{
		p.Investment,
		p.HCSavings,
		p.SocSavings,
		p.TotalSavings,
		p.EventsPrevented,
		p.DeathsAverted,
		p.QALYs,
		p.TotalSavings - p.Investment,
		roi,
		icer,
	}
}

// summarize reduces the collected rows to per-metric summaries plus the
// acceptability curve
func (m *Model) summarize(rows []sampleRow, cfg MonteCarloConfig) *MonteCarloSummary {
	metrics := make(map[string]MetricSummary, len(monteCarloMetrics))
	column := make([]float64, len(rows))
	for mi, name := range monteCarloMetrics {
		for ri := range rows {
			column[ri] = rows[ri][mi]
		}
		metrics[name] = MetricSummary{
			Mean:    formulas.NaNMean(column),
			Median:  formulas.NaNMedian(column),
			StdDev:  formulas.NaNStdDev(column),
			CILower: formulas.NaNPercentile(column, 2.5),
			CIUpper: formulas.NaNPercentile(column, 97.5),
		}
	}

	return &MonteCarloSummary{
		Iterations: cfg.Iterations,
		Seed:       cfg.Seed,
		Metrics:    metrics,
		CEAC:       m.acceptabilityCurve(rows),
	}
}

// acceptabilityCurve computes, for a grid of willingness-to-pay thresholds
// from zero to twice the configured threshold, the fraction of valid
// iterations in which the portfolio is cost-effective: net cost at most the
// threshold times the QALYs gained (cost-saving iterations always qualify)
func (m *Model) acceptabilityCurve(rows []sampleRow) []CEACPoint {
	wtp := m.params.Simulation.WillingnessToPay
	if wtp <= 0 {
		return nil
	}

	const points = 41
	curve := make([]CEACPoint, 0, points)
	for p := 0; p < points; p++ {
		threshold := 2.0 * wtp * float64(p) / float64(points-1)
		accepted := 0
		valid := 0
		for ri := range rows {
			invest := rows[ri][0]
			total := rows[ri][3]
			qalys := rows[ri][6]
			if math.IsNaN(invest) || math.IsNaN(total) || math.IsNaN(qalys) {
				continue
			}
			valid++
			netCost := invest - total
			if netCost <= 0 || (qalys > 0 && netCost <= threshold*qalys) {
				accepted++
			}
		}
		prob := 0.0
		if valid > 0 {
			prob = float64(accepted) / float64(valid)
		}
		curve = append(curve, CEACPoint{Threshold: threshold, Probability: prob})
	}
	return curve
}
