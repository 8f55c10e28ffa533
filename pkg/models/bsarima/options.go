package bsarima

type ModelOption func(*Model)

func WithConfig(cfg Config) ModelOption {
	return func(m *Model) {
		m.cfg = cfg
	}
}
