package bsarima

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"bayesarima/pkg/timeseries"
)

func testConfig() Config {
	return Config{
		Chains:             4,
		WarmupIterations:   400,
		SamplingIterations: 800,
		Thin:               2,
	}
}

func generateAR1(n int, c, phi, sigma float64, seed int64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	prev := c / (1 - phi)
	for i := range values {
		prev = c + phi*prev + sigma*rng.NormFloat64()
		values[i] = prev
	}
	return timeseries.New(values)
}

func TestNewModel_Validation(t *testing.T) {
	tests := []struct {
		name     string
		order    Order
		seasonal SeasonalOrder
		prior    Prior
		wantErr  error
	}{
		{
			name:    "Negative order",
			order:   Order{P: -1},
			prior:   Prior{Scale: 0.5},
			wantErr: ErrInvalidOrder,
		},
		{
			name:    "Zero prior scale",
			order:   Order{P: 1},
			prior:   Prior{Location: 0, Scale: 0},
			wantErr: ErrInvalidPrior,
		},
		{
			name:    "Negative prior scale",
			order:   Order{P: 1},
			prior:   Prior{Location: 0.6, Scale: -0.2},
			wantErr: ErrInvalidPrior,
		},
		{
			name:     "Seasonal terms without period",
			order:    Order{P: 1},
			seasonal: SeasonalOrder{Q: 1},
			prior:    Prior{Scale: 0.5},
			wantErr:  ErrInvalidOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewModel(tt.order, tt.seasonal, tt.prior); !errors.Is(err, tt.wantErr) {
				t.Errorf("NewModel error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestModel_ParamNames(t *testing.T) {
	m, err := NewModel(Order{P: 1, Q: 3}, SeasonalOrder{}, Prior{Location: 0, Scale: 0.5})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	// Intercept first, noise scale second, then AR and MA coefficients.
	want := []string{"mu", "sigma", "phi1", "theta1", "theta2", "theta3"}
	got := m.ParamNames()
	if len(got) != len(want) {
		t.Fatalf("ParamNames() = %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("names[%d] = %q, want %q", i, got[i], w)
		}
	}
}

func TestModel_Fit_ShortSeries(t *testing.T) {
	m, err := NewModel(Order{P: 1}, SeasonalOrder{}, Prior{Scale: 0.5}, WithConfig(testConfig()))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if _, err := m.Fit(context.Background(), timeseries.New([]float64{1, 2, 3}), 1); !errors.Is(err, ErrShortSeries) {
		t.Errorf("Fit error = %v, want ErrShortSeries", err)
	}
}

func TestModel_Fit_RecoversAR1(t *testing.T) {
	series := generateAR1(250, 0.2, 0.5, 0.6, 99)

	m, err := NewModel(Order{P: 1}, SeasonalOrder{}, Prior{Location: 0, Scale: 0.5}, WithConfig(testConfig()))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	fit, err := m.Fit(context.Background(), series, 12345)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	summary := fit.Summary()
	if len(summary) != 3 {
		t.Fatalf("Summary() has %d rows, want 3", len(summary))
	}

	byName := map[string]ParamSummary{}
	for _, s := range summary {
		byName[s.Name] = s
	}

	if phi := byName["phi1"]; math.Abs(phi.Mean-0.5) > 0.25 {
		t.Errorf("phi1 mean = %v, want within 0.25 of 0.5", phi.Mean)
	}
	if sigma := byName["sigma"]; math.Abs(sigma.Mean-0.6) > 0.2 {
		t.Errorf("sigma mean = %v, want within 0.2 of 0.6", sigma.Mean)
	}
	if !isFinite(fit.WAIC()) {
		t.Errorf("WAIC = %v, want finite", fit.WAIC())
	}
}

func TestModel_Fit_StrongPriorPullsEstimate(t *testing.T) {
	series := generateAR1(200, 0.2, 0.3, 0.5, 7)
	const seed = 874310

	fitWith := func(prior Prior) float64 {
		t.Helper()
		m, err := NewModel(Order{P: 1}, SeasonalOrder{}, prior, WithConfig(testConfig()))
		if err != nil {
			t.Fatalf("NewModel: %v", err)
		}
		fit, err := m.Fit(context.Background(), series, seed)
		if err != nil {
			t.Fatalf("Fit: %v", err)
		}
		for _, s := range fit.Summary() {
			if s.Name == "phi1" {
				return s.Mean
			}
		}
		t.Fatal("phi1 not found in summary")
		return 0
	}

	defaultMean := fitWith(Prior{Location: 0, Scale: 0.5})
	strongMean := fitWith(Prior{Location: 0.8, Scale: 0.05})

	if math.Abs(strongMean-0.8) >= math.Abs(defaultMean-0.8) {
		t.Errorf("strong prior mean %v should be closer to 0.8 than default prior mean %v",
			strongMean, defaultMean)
	}
}

func TestModel_Fit_Reproducible(t *testing.T) {
	series := generateAR1(150, 0.0, 0.4, 0.5, 3)

	m, err := NewModel(Order{P: 1, Q: 1}, SeasonalOrder{}, Prior{Scale: 0.5}, WithConfig(testConfig()))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	first, err := m.Fit(context.Background(), series, 42)
	if err != nil {
		t.Fatalf("first Fit: %v", err)
	}
	second, err := m.Fit(context.Background(), series, 42)
	if err != nil {
		t.Fatalf("second Fit: %v", err)
	}

	a, b := first.Summary(), second.Summary()
	if len(a) != len(b) {
		t.Fatalf("summary row counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			t.Errorf("row %d: name %q vs %q", i, a[i].Name, b[i].Name)
		}
		if a[i].Mean != b[i].Mean {
			t.Errorf("row %d (%s): mean %v vs %v with identical seed", i, a[i].Name, a[i].Mean, b[i].Mean)
		}
	}
}

func TestModel_Fit_Cancellation(t *testing.T) {
	series := generateAR1(150, 0.0, 0.4, 0.5, 5)

	m, err := NewModel(Order{P: 1}, SeasonalOrder{}, Prior{Scale: 0.5}, WithConfig(testConfig()))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Fit(ctx, series, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Fit error = %v, want context.Canceled", err)
	}
}

func TestWAICAccumulator_Merge(t *testing.T) {
	// Two accumulators fed disjoint draws must merge to the same result as
	// one accumulator fed everything.
	logLiks := [][]float64{
		{-1.2, -0.8},
		{-1.0, -0.9},
		{-1.5, -0.7},
		{-0.9, -1.1},
	}

	whole := newWAICAccumulator(2)
	for _, draw := range logLiks {
		for obs, ll := range draw {
			whole.add(obs, ll)
		}
	}

	left := newWAICAccumulator(2)
	right := newWAICAccumulator(2)
	for i, draw := range logLiks {
		target := left
		if i >= 2 {
			target = right
		}
		for obs, ll := range draw {
			target.add(obs, ll)
		}
	}
	left.merge(right)

	if diff := math.Abs(whole.waic() - left.waic()); diff > 1e-9 {
		t.Errorf("merged WAIC differs from whole by %v", diff)
	}
}
