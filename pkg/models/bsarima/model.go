// Package bsarima implements Bayesian ARIMA estimation with a configurable
// Normal prior on the autoregressive coefficients. Inference is adaptive
// random-walk Metropolis over independent chains; the chain seed is an
// explicit parameter of Fit, never process-global state.
package bsarima

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrder = errors.New("order components must be non-negative")
	ErrInvalidPrior = errors.New("prior scale must be positive")
	ErrNotConverged = errors.New("sampler did not converge")
	ErrShortSeries  = errors.New("not enough data points for the specified order")
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

// Prior is a Normal(Location, Scale) distribution assigned to each AR
// coefficient before fitting.
type Prior struct {
	Location float64
	Scale    float64
}

// Config is the sampling configuration. The pipeline always runs with
// DefaultConfig; the fields exist so tests can use shorter chains.
type Config struct {
	Chains             int
	WarmupIterations   int
	SamplingIterations int
	Thin               int
}

func DefaultConfig() Config {
	return Config{
		Chains:             4,
		WarmupIterations:   4000,
		SamplingIterations: 12000,
		Thin:               2,
	}
}

type Model struct {
	order    Order
	seasonal SeasonalOrder
	arPrior  Prior
	cfg      Config
}

func NewModel(order Order, seasonal SeasonalOrder, arPrior Prior, opts ...ModelOption) (*Model, error) {
	if order.P < 0 || order.D < 0 || order.Q < 0 ||
		seasonal.P < 0 || seasonal.D < 0 || seasonal.Q < 0 {
		return nil, ErrInvalidOrder
	}
	if (seasonal.P > 0 || seasonal.D > 0 || seasonal.Q > 0) && seasonal.Period < 1 {
		return nil, fmt.Errorf("%w: seasonal terms require a period of at least 1", ErrInvalidOrder)
	}
	if arPrior.Scale <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidPrior, arPrior.Scale)
	}

	m := &Model{
		order:    order,
		seasonal: seasonal,
		arPrior:  arPrior,
		cfg:      DefaultConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.cfg.Chains < 1 || m.cfg.WarmupIterations < 1 || m.cfg.SamplingIterations < 1 || m.cfg.Thin < 1 {
		return nil, errors.New("sampling configuration values must be positive")
	}
	return m, nil
}

func (m *Model) Order() Order                 { return m.order }
func (m *Model) SeasonalOrder() SeasonalOrder { return m.seasonal }
func (m *Model) ARPrior() Prior               { return m.arPrior }
func (m *Model) Config() Config               { return m.cfg }

// ParamNames returns the free parameter labels in the sampler's native order:
// intercept, noise scale, then AR/MA coefficients.
func (m *Model) ParamNames() []string {
	names := make([]string, 0, m.paramCount())
	names = append(names, "mu", "sigma")
	for i := 0; i < m.order.P; i++ {
		names = append(names, fmt.Sprintf("phi%d", i+1))
	}
	for j := 0; j < m.order.Q; j++ {
		names = append(names, fmt.Sprintf("theta%d", j+1))
	}
	for i := 0; i < m.seasonal.P; i++ {
		names = append(names, fmt.Sprintf("sphi%d", i+1))
	}
	for j := 0; j < m.seasonal.Q; j++ {
		names = append(names, fmt.Sprintf("stheta%d", j+1))
	}
	return names
}

func (m *Model) paramCount() int {
	return 2 + m.order.P + m.order.Q + m.seasonal.P + m.seasonal.Q
}

func (m *Model) String() string {
	s := fmt.Sprintf("BSARIMA(%d,%d,%d)", m.order.P, m.order.D, m.order.Q)
	if m.seasonal.Period > 0 {
		s += fmt.Sprintf("(%d,%d,%d)[%d]", m.seasonal.P, m.seasonal.D, m.seasonal.Q, m.seasonal.Period)
	}
	s += fmt.Sprintf(" ar prior Normal(%g, %g)", m.arPrior.Location, m.arPrior.Scale)
	return s
}
