package sarimax

import "errors"

// Forecast generates point forecasts for the given number of steps ahead on
// the original scale, integrating back any simple differencing.
func (m *Model) Forecast(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, ErrModelNotFitted
	}
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}

	y := m.workData.Values()
	n := len(y)
	p := m.order.P
	q := m.order.Q
	sp := m.seasonal.P
	sq := m.seasonal.Q
	period := m.seasonal.Period

	extY := make([]float64, n+steps)
	copy(extY, y)
	extRes := make([]float64, n+steps)
	copy(extRes, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		pred := m.constant
		for i := 0; i < p && t-i-1 >= 0; i++ {
			pred += m.arParams[i] * extY[t-i-1]
		}
		for j := 0; j < q && t-j-1 >= 0; j++ {
			pred += m.maParams[j] * extRes[t-j-1]
		}
		for i := 0; i < sp && t-(i+1)*period >= 0; i++ {
			pred += m.sarParams[i] * extY[t-(i+1)*period]
		}
		for j := 0; j < sq && t-(j+1)*period >= 0; j++ {
			pred += m.smaParams[j] * extRes[t-(j+1)*period]
		}
		extY[t] = pred
		extRes[t] = 0
	}

	forecasts := make([]float64, steps)
	copy(forecasts, extY[n:])

	if m.order.D > 0 {
		forecasts = m.integrate(forecasts)
	}
	return forecasts, nil
}

// integrate reverses simple differencing by cumulative summing against the
// tail of the original series.
func (m *Model) integrate(forecasts []float64) []float64 {
	original := m.data.Values()
	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	for i := 0; i < m.order.D; i++ {
		lastVal := original[len(original)-1-i]
		for j := range result {
			if j == 0 {
				result[j] += lastVal
			} else {
				result[j] += result[j-1]
			}
		}
	}
	return result
}
