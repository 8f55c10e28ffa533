package bsarima

import (
	"fmt"
	"strings"
)

// Report renders the diagnostic text block for the fit: sampling
// configuration, acceptance rate, and per-parameter convergence statistics.
func (r *FitResult) Report() string {
	var b strings.Builder

	cfg := r.model.cfg
	fmt.Fprintf(&b, "bayesian fit: %s\n", r.model.String())
	fmt.Fprintf(&b, "observations: %d\n", r.nObs)
	fmt.Fprintf(&b, "chains: %d  warmup: %d  iterations: %d  thin: %d  seed: %d\n",
		cfg.Chains, cfg.WarmupIterations, cfg.SamplingIterations, cfg.Thin, r.seed)
	fmt.Fprintf(&b, "kept draws: %d  mean acceptance: %.3f\n", r.keptDraws(), r.acceptance)
	b.WriteString("\n")

	fmt.Fprintf(&b, "%-10s %10s %10s %10s %10s %10s %10s %8s\n",
		"param", "mean", "sd", "5%", "50%", "95%", "n_eff", "r_hat")
	for _, s := range r.summary {
		fmt.Fprintf(&b, "%-10s %10.4f %10.4f %10.4f %10.4f %10.4f %10.1f %8.3f\n",
			s.Name, s.Mean, s.SD, s.Q5, s.Q50, s.Q95, s.NEff, s.RHat)
	}
	return b.String()
}

// String prints the fitted model with its posterior means.
func (r *FitResult) String() string {
	var b strings.Builder

	b.WriteString(r.model.String())
	b.WriteString(" {")
	for i, s := range r.summary {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %.4f", s.Name, s.Mean)
	}
	b.WriteString("}")
	return b.String()
}

func (r *FitResult) keptDraws() int {
	total := 0
	for _, chain := range r.chains {
		total += len(chain)
	}
	return total
}
