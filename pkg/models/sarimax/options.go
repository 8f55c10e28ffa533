package sarimax

type ModelOption func(*Model)

func WithConstant(include bool) ModelOption {
	return func(m *Model) {
		m.includeConstant = include
	}
}

func WithMaxIterations(n int) ModelOption {
	return func(m *Model) {
		if n > 0 {
			m.maxIter = n
		}
	}
}

func WithTolerance(tol float64) ModelOption {
	return func(m *Model) {
		if tol > 0 {
			m.tolerance = tol
		}
	}
}
