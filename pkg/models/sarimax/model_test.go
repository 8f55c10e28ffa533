package sarimax

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"bayesarima/pkg/timeseries"
)

// generateAR1 produces an AR(1) series y_t = c + phi*y_{t-1} + e_t with a
// deterministic noise stream.
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

func TestNewModel_InvalidOrder(t *testing.T) {
	tests := []struct {
		name     string
		order    Order
		seasonal SeasonalOrder
	}{
		{name: "Negative p", order: Order{P: -1}},
		{name: "Negative d", order: Order{D: -2}},
		{name: "Negative seasonal q", seasonal: SeasonalOrder{Q: -1, Period: 4}},
		{name: "Seasonal terms without period", seasonal: SeasonalOrder{P: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewModel(tt.order, tt.seasonal); !errors.Is(err, ErrInvalidOrder) {
				t.Errorf("NewModel error = %v, want ErrInvalidOrder", err)
			}
		})
	}
}

func TestModel_Fit_InsufficientData(t *testing.T) {
	m, err := NewModel(Order{P: 2, Q: 2}, SeasonalOrder{})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := m.Fit(timeseries.New([]float64{1, 2, 3})); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Fit error = %v, want ErrInsufficientData", err)
	}
}

func TestModel_Fit_RecoversAR1(t *testing.T) {
	series := generateAR1(600, 0.3, 0.6, 0.5, 42)

	m, err := NewModel(Order{P: 1}, SeasonalOrder{})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := m.Fit(series); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	params := m.Params()
	names := m.ParamNames()

	wantNames := []string{"intercept", "ar.L1", "sigma2"}
	if len(names) != len(wantNames) {
		t.Fatalf("ParamNames() = %v, want %v", names, wantNames)
	}
	for i, w := range wantNames {
		if names[i] != w {
			t.Errorf("names[%d] = %q, want %q", i, names[i], w)
		}
	}

	if phi := params[1]; math.Abs(phi-0.6) > 0.15 {
		t.Errorf("ar.L1 = %v, want within 0.15 of 0.6", phi)
	}
	if sigma2 := params[2]; math.Abs(sigma2-0.25) > 0.1 {
		t.Errorf("sigma2 = %v, want within 0.1 of 0.25", sigma2)
	}
}

func TestModel_ParamLayout(t *testing.T) {
	m, err := NewModel(Order{P: 1, Q: 3}, SeasonalOrder{})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	names := m.ParamNames()
	want := []string{"intercept", "ar.L1", "ma.L1", "ma.L2", "ma.L3", "sigma2"}
	if len(names) != len(want) {
		t.Fatalf("ParamNames() has %d entries, want %d", len(names), len(want))
	}
	for i, w := range want {
		if names[i] != w {
			t.Errorf("names[%d] = %q, want %q", i, names[i], w)
		}
	}

	if got := len(m.Params()); got != len(want) {
		t.Errorf("Params() has %d entries, want %d", got, len(want))
	}
}

func TestModel_Diagnostics(t *testing.T) {
	series := generateAR1(300, 0.0, 0.5, 1.0, 7)

	m, err := NewModel(Order{P: 1}, SeasonalOrder{})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := m.Fit(series); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	diag := m.Diagnostics()
	if diag.LogLikelihood >= 0 {
		t.Errorf("LogLikelihood = %v, want negative", diag.LogLikelihood)
	}
	if diag.AIC <= 0 {
		t.Errorf("AIC = %v, want positive", diag.AIC)
	}
	if diag.BIC <= diag.AIC {
		t.Errorf("BIC = %v should exceed AIC = %v", diag.BIC, diag.AIC)
	}
	if diag.AICc < diag.AIC {
		t.Errorf("AICc = %v should be at least AIC = %v", diag.AICc, diag.AIC)
	}
}

func TestModel_Forecast(t *testing.T) {
	series := generateAR1(300, 0.2, 0.5, 0.4, 11)

	m, err := NewModel(Order{P: 1}, SeasonalOrder{})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	if _, err := m.Forecast(3); !errors.Is(err, ErrModelNotFitted) {
		t.Errorf("Forecast before Fit = %v, want ErrModelNotFitted", err)
	}

	if err := m.Fit(series); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	forecasts, err := m.Forecast(8)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(forecasts) != 8 {
		t.Fatalf("Forecast returned %d values, want 8", len(forecasts))
	}

	// Long-run AR(1) forecasts should approach the unconditional mean.
	mean := 0.2 / (1 - 0.5)
	if math.Abs(forecasts[7]-mean) > 1.0 {
		t.Errorf("forecast[7] = %v, want near %v", forecasts[7], mean)
	}
}

func TestYuleWalker_AR1(t *testing.T) {
	acf := []float64{1.0, 0.55}
	phi := yuleWalker(acf, 1)
	if phi == nil {
		t.Fatal("yuleWalker returned nil")
	}
	if math.Abs(phi[0]-0.55) > 1e-9 {
		t.Errorf("phi[0] = %v, want 0.55", phi[0])
	}
}
