package bsarima

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"bayesarima/pkg/timeseries"
)

// Internal parameter vector layout: mu, log(sigma), AR, MA, seasonal AR,
// seasonal MA. The noise scale is sampled on the log scale to keep proposals
// unconstrained; draws are reported on the natural scale.

const (
	muPriorScale     = 10.0
	maPriorScale     = 0.5
	sigmaPriorScale  = 1.0
	adaptBatch       = 50
	adaptTargetLow   = 0.2
	adaptTargetHigh  = 0.35
	convergenceRHat  = 1.2
	cancelCheckEvery = 200
	initialStepScale = 0.1
	initJitter       = 0.1
)

// Fit runs the sampler on the given series. Each chain derives its RNG from
// the explicit base seed plus the chain index, so repeated calls with the same
// inputs are reproducible without touching global state.
func (m *Model) Fit(ctx context.Context, series *timeseries.Series, seed uint64) (*FitResult, error) {
	minLen := m.order.P + m.order.D + m.order.Q +
		(m.seasonal.P+m.seasonal.D+m.seasonal.Q)*m.seasonal.Period + 10
	if series.Len() < minLen {
		return nil, fmt.Errorf("%w: have %d, need at least %d", ErrShortSeries, series.Len(), minLen)
	}

	work := series.Diff(m.order.D)
	if m.seasonal.D > 0 {
		work = work.SeasonalDiff(m.seasonal.D, m.seasonal.Period)
	}
	if work.Len() == 0 {
		return nil, fmt.Errorf("%w: differencing consumed the series", ErrShortSeries)
	}
	y := work.Values()

	chains := make([][][]float64, m.cfg.Chains)
	accums := make([]*waicAccumulator, m.cfg.Chains)
	accepts := make([]float64, m.cfg.Chains)
	errs := make([]error, m.cfg.Chains)

	var wg sync.WaitGroup
	for c := 0; c < m.cfg.Chains; c++ {
		wg.Add(1)
		go func(chain int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + uint64(chain)))
			chains[chain], accums[chain], accepts[chain], errs[chain] = m.runChain(ctx, y, rng)
		}(c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	result := newFitResult(m, y, chains, accums, accepts, seed)
	if err := result.checkConvergence(); err != nil {
		return nil, err
	}
	return result, nil
}

// runChain runs one adaptive random-walk Metropolis chain and returns its
// kept draws on the natural scale.
func (m *Model) runChain(ctx context.Context, y []float64, rng *rand.Rand) ([][]float64, *waicAccumulator, float64, error) {
	dim := m.paramCount()
	startIdx := m.startIndex()
	nObs := len(y) - startIdx

	state := m.initialState(y, rng)
	residuals := make([]float64, len(y))

	logPost := m.logPosterior(state, y, residuals)

	steps := make([]float64, dim)
	for i := range steps {
		steps[i] = initialStepScale
	}
	batchAccepts := make([]float64, dim)
	batchProposals := make([]float64, dim)

	kept := make([][]float64, 0, m.cfg.SamplingIterations/m.cfg.Thin)
	accum := newWAICAccumulator(nObs)

	var accepted, proposed float64
	proposal := make([]float64, dim)

	totalSweeps := m.cfg.WarmupIterations + m.cfg.SamplingIterations
	for sweep := 0; sweep < totalSweeps; sweep++ {
		if sweep%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, 0, err
			}
		}
		warmup := sweep < m.cfg.WarmupIterations

		for i := 0; i < dim; i++ {
			copy(proposal, state)
			proposal[i] += steps[i] * rng.NormFloat64()

			propLogPost := m.logPosterior(proposal, y, residuals)

			proposed++
			if warmup {
				batchProposals[i]++
			}
			if math.Log(rng.Float64()) < propLogPost-logPost {
				state[i] = proposal[i]
				logPost = propLogPost
				accepted++
				if warmup {
					batchAccepts[i]++
				}
			}
		}

		if warmup && (sweep+1)%adaptBatch == 0 {
			for i := range steps {
				if batchProposals[i] == 0 {
					continue
				}
				rate := batchAccepts[i] / batchProposals[i]
				if rate > adaptTargetHigh {
					steps[i] *= 1.1
				} else if rate < adaptTargetLow {
					steps[i] *= 0.9
				}
				batchAccepts[i] = 0
				batchProposals[i] = 0
			}
		}

		if !warmup {
			s := sweep - m.cfg.WarmupIterations
			if s%m.cfg.Thin == 0 {
				kept = append(kept, m.naturalScale(state))
				m.accumulatePointwise(state, y, residuals, accum)
			}
		}
	}

	return kept, accum, accepted / proposed, nil
}

// initialState centers the chain on data moments with a small overdispersion
// jitter so chains do not start identical.
func (m *Model) initialState(y []float64, rng *rand.Rand) []float64 {
	mean, std := moments(y)
	if std <= 0 {
		std = 1
	}

	state := make([]float64, m.paramCount())
	state[0] = mean + initJitter*std*rng.NormFloat64()
	state[1] = math.Log(std) + initJitter*rng.NormFloat64()
	for i := 0; i < m.order.P; i++ {
		state[2+i] = m.arPrior.Location + initJitter*rng.NormFloat64()
	}
	for j := 0; j < m.order.Q+m.seasonal.P+m.seasonal.Q; j++ {
		state[2+m.order.P+j] = initJitter * rng.NormFloat64()
	}
	return state
}

// logPosterior evaluates the conditional Gaussian ARMA log-likelihood plus
// the parameter priors, in the internal (log-sigma) parametrization.
func (m *Model) logPosterior(state []float64, y []float64, residuals []float64) float64 {
	logSigma := state[1]
	sigma := math.Exp(logSigma)
	if math.IsInf(sigma, 0) || sigma == 0 {
		return math.Inf(-1)
	}

	m.computeResiduals(state, y, residuals)

	startIdx := m.startIndex()
	n := len(y)

	logLik := 0.0
	inv2Var := 1 / (2 * sigma * sigma)
	for t := startIdx; t < n; t++ {
		logLik += -halfLog2Pi - logSigma - residuals[t]*residuals[t]*inv2Var
	}
	if !isFinite(logLik) {
		return math.Inf(-1)
	}

	muPrior := distuv.Normal{Mu: 0, Sigma: muPriorScale}
	arPrior := distuv.Normal{Mu: m.arPrior.Location, Sigma: m.arPrior.Scale}
	maPrior := distuv.Normal{Mu: 0, Sigma: maPriorScale}

	logPrior := muPrior.LogProb(state[0])
	// Half-Normal on sigma, with the Jacobian of the log transform.
	logPrior += -sigma * sigma / (2 * sigmaPriorScale * sigmaPriorScale)
	logPrior += logSigma
	for i := 0; i < m.order.P; i++ {
		logPrior += arPrior.LogProb(state[2+i])
	}
	for j := 0; j < m.order.Q+m.seasonal.P+m.seasonal.Q; j++ {
		logPrior += maPrior.LogProb(state[2+m.order.P+j])
	}

	return logLik + logPrior
}

// computeResiduals fills the conditional residual recursion for the given
// internal state, with pre-sample residuals fixed at zero.
func (m *Model) computeResiduals(state []float64, y []float64, residuals []float64) {
	mu := state[0]
	p := m.order.P
	q := m.order.Q
	sp := m.seasonal.P
	sq := m.seasonal.Q
	period := m.seasonal.Period

	ar := state[2 : 2+p]
	ma := state[2+p : 2+p+q]
	sar := state[2+p+q : 2+p+q+sp]
	sma := state[2+p+q+sp : 2+p+q+sp+sq]

	startIdx := m.startIndex()
	for t := 0; t < startIdx; t++ {
		residuals[t] = 0
	}
	for t := startIdx; t < len(y); t++ {
		pred := mu
		for i := 0; i < p; i++ {
			pred += ar[i] * y[t-i-1]
		}
		for j := 0; j < q; j++ {
			if k := t - j - 1; k >= 0 {
				pred += ma[j] * residuals[k]
			}
		}
		for i := 0; i < sp; i++ {
			pred += sar[i] * y[t-(i+1)*period]
		}
		for j := 0; j < sq; j++ {
			if k := t - (j+1)*period; k >= 0 {
				pred += sma[j] * residuals[k]
			}
		}
		residuals[t] = y[t] - pred
	}
}

// accumulatePointwise feeds the per-observation log-likelihoods of a kept
// draw into the chain's information-criterion accumulator.
func (m *Model) accumulatePointwise(state []float64, y []float64, residuals []float64, accum *waicAccumulator) {
	logSigma := state[1]
	sigma := math.Exp(logSigma)
	inv2Var := 1 / (2 * sigma * sigma)

	m.computeResiduals(state, y, residuals)

	startIdx := m.startIndex()
	for t := startIdx; t < len(y); t++ {
		ll := -halfLog2Pi - logSigma - residuals[t]*residuals[t]*inv2Var
		accum.add(t-startIdx, ll)
	}
}

func (m *Model) startIndex() int {
	start := m.order.P
	if s := m.seasonal.P * m.seasonal.Period; s > start {
		start = s
	}
	return start
}

// naturalScale maps an internal state vector to reported parameters:
// mu, sigma, then the AR/MA coefficients.
func (m *Model) naturalScale(state []float64) []float64 {
	out := make([]float64, len(state))
	copy(out, state)
	out[1] = math.Exp(state[1])
	return out
}

var halfLog2Pi = 0.5 * math.Log(2*math.Pi)

func moments(y []float64) (mean, std float64) {
	n := float64(len(y))
	for _, v := range y {
		mean += v
	}
	mean /= n

	ss := 0.0
	for _, v := range y {
		d := v - mean
		ss += d * d
	}
	if len(y) > 1 {
		std = math.Sqrt(ss / (n - 1))
	}
	return mean, std
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
