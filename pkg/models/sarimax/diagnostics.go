package sarimax

import "math"

type Diagnostics struct {
	LogLikelihood float64
	AIC           float64
	AICc          float64
	BIC           float64
	NObs          int
}

func (m *Model) Diagnostics() Diagnostics {
	return m.diag
}

// calculateDiagnostics computes the Gaussian log-likelihood of the residuals
// and the derived information criteria.
func (m *Model) calculateDiagnostics() {
	n := len(m.residuals)
	k := m.freeCoefficients() + 1 // plus variance

	sse := 0.0
	for _, r := range m.residuals {
		sse += r * r
	}

	logLik := math.Inf(-1)
	if m.variance > 0 {
		nf := float64(n)
		logLik = -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(m.variance) - sse/(2*m.variance)
	}

	kf := float64(k)
	nf := float64(n)

	aic := -2*logLik + 2*kf
	aicc := math.Inf(1)
	if nf-kf-1 > 0 {
		aicc = aic + 2*kf*(kf+1)/(nf-kf-1)
	}
	bic := -2*logLik + kf*math.Log(nf)

	m.diag = Diagnostics{
		LogLikelihood: logLik,
		AIC:           aic,
		AICc:          aicc,
		BIC:           bic,
		NObs:          n,
	}
}
