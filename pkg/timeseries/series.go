// Package timeseries provides the univariate series type shared by the
// classical and Bayesian estimators.
package timeseries

import (
	"errors"
	"math"
)

var (
	ErrEmptySeries = errors.New("series has no observations")
)

// Series is an ordered, immutable sequence of observations. Constructors copy
// their input; mutating the source slice afterwards does not affect the series.
type Series struct {
	values []float64
}

func New(values []float64) *Series {
	v := make([]float64, len(values))
	copy(v, values)
	return &Series{values: v}
}

func (s *Series) Len() int {
	return len(s.values)
}

// Values returns a copy of the observations.
func (s *Series) Values() []float64 {
	v := make([]float64, len(s.values))
	copy(v, s.values)
	return v
}

func (s *Series) At(i int) float64 {
	return s.values[i]
}

func (s *Series) Mean() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range s.values {
		sum += v
	}
	return sum / float64(len(s.values))
}

func (s *Series) Variance() float64 {
	if len(s.values) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.values {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / float64(len(s.values)-1)
}

func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Diff returns the d-th order simple difference of the series. A series of n
// observations yields n-d observations; d <= 0 returns a copy.
func (s *Series) Diff(d int) *Series {
	out := s.values
	for i := 0; i < d; i++ {
		if len(out) < 2 {
			return &Series{}
		}
		next := make([]float64, len(out)-1)
		for j := 1; j < len(out); j++ {
			next[j-1] = out[j] - out[j-1]
		}
		out = next
	}
	return New(out)
}

// SeasonalDiff returns the D-th order seasonal difference with period m.
// A series of n observations yields n-D*m observations.
func (s *Series) SeasonalDiff(D, m int) *Series {
	out := s.values
	for i := 0; i < D; i++ {
		if m < 1 || len(out) <= m {
			return &Series{}
		}
		next := make([]float64, len(out)-m)
		for j := m; j < len(out); j++ {
			next[j-m] = out[j] - out[j-m]
		}
		out = next
	}
	return New(out)
}
