// Package sarimax implements classical SARIMAX estimation by conditional sum
// of squares, with parameter layout matching the common state-space estimator
// convention: constant first, AR and MA coefficients, residual variance last.
package sarimax

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"bayesarima/pkg/timeseries"
)

var (
	ErrInvalidOrder     = errors.New("order components must be non-negative")
	ErrInsufficientData = errors.New("not enough data points for the specified order")
	ErrModelNotFitted   = errors.New("model has not been fitted")
	ErrNotConverged     = errors.New("css optimization did not converge")
)

// Order is the non-seasonal (p, d, q) triple.
type Order struct {
	P int
	D int
	Q int
}

// SeasonalOrder is the seasonal (P, D, Q) triple with its period.
type SeasonalOrder struct {
	P      int
	D      int
	Q      int
	Period int
}

type Model struct {
	order    Order
	seasonal SeasonalOrder

	includeConstant bool
	maxIter         int
	tolerance       float64
	learningRate    float64

	constant  float64
	arParams  []float64
	maParams  []float64
	sarParams []float64
	smaParams []float64
	variance  float64

	fitted     bool
	data       *timeseries.Series
	workData   *timeseries.Series
	residuals  []float64
	fittedVals []float64

	diag Diagnostics
}

func NewModel(order Order, seasonal SeasonalOrder, opts ...ModelOption) (*Model, error) {
	if order.P < 0 || order.D < 0 || order.Q < 0 ||
		seasonal.P < 0 || seasonal.D < 0 || seasonal.Q < 0 {
		return nil, ErrInvalidOrder
	}
	if (seasonal.P > 0 || seasonal.D > 0 || seasonal.Q > 0) && seasonal.Period < 1 {
		return nil, fmt.Errorf("%w: seasonal terms require a period of at least 1", ErrInvalidOrder)
	}

	m := &Model{
		order:           order,
		seasonal:        seasonal,
		includeConstant: true,
		maxIter:         500,
		tolerance:       1e-8,
		learningRate:    0.01,
		arParams:        make([]float64, order.P),
		maParams:        make([]float64, order.Q),
		sarParams:       make([]float64, seasonal.P),
		smaParams:       make([]float64, seasonal.Q),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Model) Order() Order                 { return m.order }
func (m *Model) SeasonalOrder() SeasonalOrder { return m.seasonal }
func (m *Model) IsFitted() bool               { return m.fitted }

// Fit estimates the model parameters on the given series.
func (m *Model) Fit(series *timeseries.Series) error {
	minLen := m.order.P + m.order.D + m.order.Q +
		(m.seasonal.P+m.seasonal.D+m.seasonal.Q)*m.seasonal.Period + 10
	if series.Len() < minLen {
		return fmt.Errorf("%w: have %d, need at least %d", ErrInsufficientData, series.Len(), minLen)
	}

	m.data = series

	work := series.Diff(m.order.D)
	if m.seasonal.D > 0 {
		work = work.SeasonalDiff(m.seasonal.D, m.seasonal.Period)
	}
	if work.Len() == 0 {
		return fmt.Errorf("%w: differencing consumed the series", ErrInsufficientData)
	}
	m.workData = work

	if err := m.fitCSS(); err != nil {
		return err
	}

	m.calculateDiagnostics()
	m.fitted = true
	return nil
}

func (m *Model) fitCSS() error {
	y := m.workData.Values()
	n := len(y)

	// Yule-Walker initial values for the AR coefficients.
	if m.order.P > 0 {
		acf := sampleACF(y, m.order.P)
		if phi := yuleWalker(acf, m.order.P); phi != nil {
			copy(m.arParams, phi)
		}
	}
	for i := range m.maParams {
		m.maParams[i] = 0.1
	}
	for i := range m.sarParams {
		m.sarParams[i] = 0.05
	}
	for i := range m.smaParams {
		m.smaParams[i] = 0.05
	}

	if m.includeConstant {
		sumAR := 0.0
		for _, phi := range m.arParams {
			sumAR += phi
		}
		mean := 0.0
		for _, v := range y {
			mean += v
		}
		mean /= float64(n)
		m.constant = mean * (1 - sumAR)
	}

	return m.optimizeCSS(y)
}

// optimizeCSS runs conditional-sum-of-squares gradient refinement over the
// constant and the AR/MA coefficients, treating lagged residuals as fixed
// within each iteration.
func (m *Model) optimizeCSS(y []float64) error {
	n := len(y)
	p := m.order.P
	q := m.order.Q
	sp := m.seasonal.P
	sq := m.seasonal.Q
	period := m.seasonal.Period

	startIdx := maxLag(p, q, sp*period, sq*period)
	if startIdx >= n {
		return ErrInsufficientData
	}

	prevSSE := math.Inf(1)
	converged := false

	for iter := 0; iter < m.maxIter; iter++ {
		residuals := m.computeResiduals(y)

		sse := 0.0
		for t := startIdx; t < n; t++ {
			sse += residuals[t] * residuals[t]
		}
		if !isFinite(sse) {
			return fmt.Errorf("%w: sum of squares diverged at iteration %d", ErrNotConverged, iter)
		}
		if math.Abs(prevSSE-sse) < m.tolerance {
			converged = true
			break
		}
		prevSSE = sse

		constGrad := 0.0
		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		sarGrad := make([]float64, sp)
		smaGrad := make([]float64, sq)

		for t := startIdx; t < n; t++ {
			e := residuals[t]
			constGrad -= 2 * e
			for i := 0; i < p; i++ {
				arGrad[i] -= 2 * e * y[t-i-1]
			}
			for j := 0; j < q; j++ {
				maGrad[j] -= 2 * e * residuals[t-j-1]
			}
			for i := 0; i < sp; i++ {
				sarGrad[i] -= 2 * e * y[t-(i+1)*period]
			}
			for j := 0; j < sq; j++ {
				smaGrad[j] -= 2 * e * residuals[t-(j+1)*period]
			}
		}

		step := m.learningRate / float64(n)
		if m.includeConstant {
			m.constant -= step * constGrad
		}
		for i := 0; i < p; i++ {
			m.arParams[i] = clampUnit(m.arParams[i] - step*arGrad[i])
		}
		for j := 0; j < q; j++ {
			m.maParams[j] = clampUnit(m.maParams[j] - step*maGrad[j])
		}
		for i := 0; i < sp; i++ {
			m.sarParams[i] = clampUnit(m.sarParams[i] - step*sarGrad[i])
		}
		for j := 0; j < sq; j++ {
			m.smaParams[j] = clampUnit(m.smaParams[j] - step*smaGrad[j])
		}
	}

	m.residuals = m.computeResiduals(y)
	m.fittedVals = make([]float64, n)
	for t := range m.fittedVals {
		m.fittedVals[t] = y[t] - m.residuals[t]
	}

	sse := 0.0
	count := 0
	for t := startIdx; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	dof := count - m.freeCoefficients()
	if dof < 1 {
		dof = count
	}
	m.variance = sse / float64(dof)

	if !converged && !isFinite(prevSSE) {
		return ErrNotConverged
	}
	return nil
}

// computeResiduals runs the conditional residual recursion with pre-sample
// residuals fixed at zero.
func (m *Model) computeResiduals(y []float64) []float64 {
	n := len(y)
	p := m.order.P
	q := m.order.Q
	sp := m.seasonal.P
	sq := m.seasonal.Q
	period := m.seasonal.Period

	residuals := make([]float64, n)
	startIdx := maxLag(p, q, sp*period, sq*period)

	for t := startIdx; t < n; t++ {
		pred := m.constant
		for i := 0; i < p; i++ {
			pred += m.arParams[i] * y[t-i-1]
		}
		for j := 0; j < q; j++ {
			pred += m.maParams[j] * residuals[t-j-1]
		}
		for i := 0; i < sp; i++ {
			pred += m.sarParams[i] * y[t-(i+1)*period]
		}
		for j := 0; j < sq; j++ {
			pred += m.smaParams[j] * residuals[t-(j+1)*period]
		}
		residuals[t] = y[t] - pred
	}
	return residuals
}

func (m *Model) freeCoefficients() int {
	k := m.order.P + m.order.Q + m.seasonal.P + m.seasonal.Q
	if m.includeConstant {
		k++
	}
	return k
}

// yuleWalker solves the Toeplitz system R*phi = r built from the sample ACF.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	rData := make([]float64, order*order)
	for i := 0; i < order; i++ {
		for j := 0; j < order; j++ {
			lag := i - j
			if lag < 0 {
				lag = -lag
			}
			rData[i*order+j] = acf[lag]
		}
	}
	R := mat.NewDense(order, order, rData)
	r := mat.NewVecDense(order, acf[1:order+1])

	var phi mat.VecDense
	if err := phi.SolveVec(R, r); err != nil {
		return nil
	}

	out := make([]float64, order)
	for i := range out {
		out[i] = clampUnit(phi.AtVec(i))
	}
	return out
}

func sampleACF(y []float64, maxLag int) []float64 {
	n := len(y)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range y {
		d := v - mean
		variance += d * d
	}
	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (y[i] - mean) * (y[i-k] - mean)
		}
		acf[k] = sum / variance
	}
	return acf
}

func clampUnit(v float64) float64 {
	return math.Max(-0.99, math.Min(0.99, v))
}

func maxLag(lags ...int) int {
	out := 0
	for _, l := range lags {
		if l > out {
			out = l
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
