package sarimax

import (
	"fmt"
	"strings"
)

// ParamNames returns the parameter labels in the estimator's native order:
// intercept, AR lags, MA lags, seasonal AR/MA lags, residual variance last.
func (m *Model) ParamNames() []string {
	names := make([]string, 0, m.freeCoefficients()+1)
	if m.includeConstant {
		names = append(names, "intercept")
	}
	for i := range m.arParams {
		names = append(names, fmt.Sprintf("ar.L%d", i+1))
	}
	for j := range m.maParams {
		names = append(names, fmt.Sprintf("ma.L%d", j+1))
	}
	for i := range m.sarParams {
		names = append(names, fmt.Sprintf("ar.S.L%d", (i+1)*m.seasonal.Period))
	}
	for j := range m.smaParams {
		names = append(names, fmt.Sprintf("ma.S.L%d", (j+1)*m.seasonal.Period))
	}
	names = append(names, "sigma2")
	return names
}

// Params returns the estimates in the same order as ParamNames.
func (m *Model) Params() []float64 {
	params := make([]float64, 0, m.freeCoefficients()+1)
	if m.includeConstant {
		params = append(params, m.constant)
	}
	params = append(params, m.arParams...)
	params = append(params, m.maParams...)
	params = append(params, m.sarParams...)
	params = append(params, m.smaParams...)
	params = append(params, m.variance)
	return params
}

func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.fittedVals))
	copy(out, m.fittedVals)
	return out
}

// Summary renders a plain-text estimation summary.
func (m *Model) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "SARIMAX(%d,%d,%d)", m.order.P, m.order.D, m.order.Q)
	if m.seasonal.Period > 0 {
		fmt.Fprintf(&b, "(%d,%d,%d)[%d]", m.seasonal.P, m.seasonal.D, m.seasonal.Q, m.seasonal.Period)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "observations: %d\n", m.diag.NObs)
	fmt.Fprintf(&b, "log-likelihood: %.4f\n", m.diag.LogLikelihood)
	fmt.Fprintf(&b, "AIC: %.4f  AICc: %.4f  BIC: %.4f\n", m.diag.AIC, m.diag.AICc, m.diag.BIC)
	b.WriteString("\n")

	names := m.ParamNames()
	params := m.Params()
	for i, name := range names {
		fmt.Fprintf(&b, "%-12s %12.6f\n", name, params[i])
	}
	return b.String()
}
