package bsarima

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ParamSummary holds the posterior summary statistics for one parameter.
type ParamSummary struct {
	Name string
	Mean float64
	SD   float64
	Q5   float64
	Q50  float64
	Q95  float64
	NEff float64
	RHat float64
}

// FitResult is the output of one sampler run.
type FitResult struct {
	model      *Model
	names      []string
	chains     [][][]float64 // chain -> draw -> parameter, natural scale
	acceptance float64
	waic       float64
	seed       uint64
	nObs       int

	summary []ParamSummary
}

func newFitResult(m *Model, y []float64, chains [][][]float64, accums []*waicAccumulator, accepts []float64, seed uint64) *FitResult {
	merged := accums[0]
	for _, a := range accums[1:] {
		merged.merge(a)
	}

	meanAccept := 0.0
	for _, a := range accepts {
		meanAccept += a
	}
	meanAccept /= float64(len(accepts))

	r := &FitResult{
		model:      m,
		names:      m.ParamNames(),
		chains:     chains,
		acceptance: meanAccept,
		waic:       merged.waic(),
		seed:       seed,
		nObs:       len(y),
	}
	r.summarize()
	return r
}

func (r *FitResult) ParamNames() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Summary returns one row per free parameter, in the sampler's native order.
func (r *FitResult) Summary() []ParamSummary {
	out := make([]ParamSummary, len(r.summary))
	copy(out, r.summary)
	return out
}

// WAIC returns the widely applicable information criterion of the fit,
// on the deviance scale (lower is better).
func (r *FitResult) WAIC() float64 {
	return r.waic
}

func (r *FitResult) Seed() uint64 {
	return r.seed
}

// Draws returns all kept draws for the named parameter, pooled across chains.
func (r *FitResult) Draws(name string) []float64 {
	idx := -1
	for i, n := range r.names {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	var out []float64
	for _, chain := range r.chains {
		for _, draw := range chain {
			out = append(out, draw[idx])
		}
	}
	return out
}

func (r *FitResult) summarize() {
	r.summary = make([]ParamSummary, len(r.names))
	for i, name := range r.names {
		pooled := r.pooledParam(i)
		sorted := make([]float64, len(pooled))
		copy(sorted, pooled)
		sort.Float64s(sorted)

		r.summary[i] = ParamSummary{
			Name: name,
			Mean: stat.Mean(pooled, nil),
			SD:   stat.StdDev(pooled, nil),
			Q5:   stat.Quantile(0.05, stat.Empirical, sorted, nil),
			Q50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
			Q95:  stat.Quantile(0.95, stat.Empirical, sorted, nil),
			NEff: r.effectiveSampleSize(i),
			RHat: r.potentialScaleReduction(i),
		}
	}
}

func (r *FitResult) pooledParam(idx int) []float64 {
	var out []float64
	for _, chain := range r.chains {
		for _, draw := range chain {
			out = append(out, draw[idx])
		}
	}
	return out
}

func (r *FitResult) chainParam(chain, idx int) []float64 {
	out := make([]float64, len(r.chains[chain]))
	for d, draw := range r.chains[chain] {
		out[d] = draw[idx]
	}
	return out
}

// potentialScaleReduction computes the Gelman-Rubin R-hat from between-chain
// and within-chain variances.
func (r *FitResult) potentialScaleReduction(idx int) float64 {
	numChains := len(r.chains)
	if numChains < 2 {
		return 1
	}
	perChain := float64(len(r.chains[0]))

	means := make([]float64, numChains)
	variances := make([]float64, numChains)
	for c := 0; c < numChains; c++ {
		draws := r.chainParam(c, idx)
		means[c] = stat.Mean(draws, nil)
		variances[c] = stat.Variance(draws, nil)
	}

	within := stat.Mean(variances, nil)
	between := perChain * stat.Variance(means, nil)
	if within <= 0 {
		return 1
	}

	varPlus := (perChain-1)/perChain*within + between/perChain
	return math.Sqrt(varPlus / within)
}

// effectiveSampleSize estimates ESS per chain from the initial positive
// autocorrelation sequence and sums across chains.
func (r *FitResult) effectiveSampleSize(idx int) float64 {
	total := 0.0
	for c := range r.chains {
		draws := r.chainParam(c, idx)
		n := len(draws)
		if n < 4 {
			total += float64(n)
			continue
		}

		mean := stat.Mean(draws, nil)
		variance := stat.Variance(draws, nil)
		if variance <= 0 {
			total += float64(n)
			continue
		}

		sumRho := 0.0
		for lag := 1; lag < n/2; lag++ {
			rho := 0.0
			for t := lag; t < n; t++ {
				rho += (draws[t] - mean) * (draws[t-lag] - mean)
			}
			rho /= float64(n-lag) * variance
			if rho < 0.05 {
				break
			}
			sumRho += rho
		}
		total += float64(n) / (1 + 2*sumRho)
	}
	return total
}

func (r *FitResult) checkConvergence() error {
	for _, s := range r.summary {
		if !isFinite(s.Mean) || !isFinite(s.SD) {
			return fmt.Errorf("%w: non-finite posterior summary for %s", ErrNotConverged, s.Name)
		}
		if s.RHat > convergenceRHat {
			return fmt.Errorf("%w: r_hat %.3f for %s exceeds %.2f", ErrNotConverged, s.RHat, s.Name, convergenceRHat)
		}
	}
	return nil
}

// waicAccumulator streams per-observation log-likelihoods across kept draws
// so the criterion never needs the full draws-by-observations matrix. For each
// observation it maintains a running log-sum-exp and Welford moments.
type waicAccumulator struct {
	count  float64
	lseMax []float64
	lseSum []float64
	mean   []float64
	m2     []float64
}

func newWAICAccumulator(nObs int) *waicAccumulator {
	a := &waicAccumulator{
		lseMax: make([]float64, nObs),
		lseSum: make([]float64, nObs),
		mean:   make([]float64, nObs),
		m2:     make([]float64, nObs),
	}
	for i := range a.lseMax {
		a.lseMax[i] = math.Inf(-1)
	}
	return a
}

func (a *waicAccumulator) add(obs int, logLik float64) {
	if obs == 0 {
		a.count++
	}

	if logLik > a.lseMax[obs] {
		a.lseSum[obs] = a.lseSum[obs]*math.Exp(a.lseMax[obs]-logLik) + 1
		a.lseMax[obs] = logLik
	} else {
		a.lseSum[obs] += math.Exp(logLik - a.lseMax[obs])
	}

	delta := logLik - a.mean[obs]
	a.mean[obs] += delta / a.count
	a.m2[obs] += delta * (logLik - a.mean[obs])
}

func (a *waicAccumulator) merge(b *waicAccumulator) {
	for i := range a.lseMax {
		if b.lseMax[i] > a.lseMax[i] {
			a.lseSum[i] = a.lseSum[i]*math.Exp(a.lseMax[i]-b.lseMax[i]) + b.lseSum[i]
			a.lseMax[i] = b.lseMax[i]
		} else {
			a.lseSum[i] += b.lseSum[i] * math.Exp(b.lseMax[i]-a.lseMax[i])
		}

		delta := b.mean[i] - a.mean[i]
		total := a.count + b.count
		a.m2[i] += b.m2[i] + delta*delta*a.count*b.count/total
		a.mean[i] = (a.mean[i]*a.count + b.mean[i]*b.count) / total
	}
	a.count += b.count
}

// waic computes -2*(lppd - pWAIC).
func (a *waicAccumulator) waic() float64 {
	lppd := 0.0
	pWAIC := 0.0
	for i := range a.lseMax {
		lppd += a.lseMax[i] + math.Log(a.lseSum[i]) - math.Log(a.count)
		if a.count > 1 {
			pWAIC += a.m2[i] / (a.count - 1)
		}
	}
	return -2 * (lppd - pWAIC)
}
