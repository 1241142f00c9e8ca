package battery

import (
	"errors"
	"testing"
)

func TestEnvironmentStep(t *testing.T) {
	p := testParams()
	prices := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	demand := []float64{0, 0, 0, 0, 0}
	env, err := NewEnvironment(p, prices, demand)
	if err != nil {
		t.Fatal(err)
	}
	s := env.State()
	if s.SoC != p.InitialSoC || s.Price != 0.1 || s.Cost != 0 || s.Imported != 0 {
		t.Fatalf("bad reset state %+v", s)
	}
	for i := range p.Horizon {
		s, err = env.Step(0)
		if err != nil {
			t.Fatal(err)
		}
		if s.Price != prices[i+1] {
			t.Fatalf("step %d: price %v", i, s.Price)
		}
		if env.Cursor() != i+1 {
			t.Fatalf("cursor %d", env.Cursor())
		}
	}
	if s.SoC != p.InitialSoC || s.Cost != 0 {
		t.Fatalf("hold changed state: %+v", s)
	}
	_, err = env.Step(0)
	if !errors.Is(err, ErrHorizonExceeded) {
		t.Fatalf("got %v", err)
	}

	s = env.Reset()
	if env.Cursor() != 0 || s.Price != 0.1 {
		t.Fatalf("reset failed: %+v", s)
	}
}

func TestEnvironmentOwnsSeries(t *testing.T) {
	prices := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	demand := []float64{1, 1, 1, 1, 1}
	env, err := NewEnvironment(testParams(), prices, demand)
	if err != nil {
		t.Fatal(err)
	}
	prices[1] = 99
	s, err := env.Step(0)
	if err != nil {
		t.Fatal(err)
	}
	if s.Price != 0.2 {
		t.Fatalf("got %v", s.Price)
	}
}

func TestEnvironmentShortSeries(t *testing.T) {
	_, err := NewEnvironment(testParams(), []float64{1, 2, 3, 4}, []float64{1, 1, 1, 1, 1})
	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("got %v", err)
	}
	if configErr.Field != "price_series" {
		t.Fatalf("got %s", configErr.Field)
	}

	_, err = NewEnvironment(testParams(), []float64{1, 2, 3, 4, 5}, []float64{1, 1, 1, -1, 1})
	if !errors.As(err, &configErr) {
		t.Fatalf("got %v", err)
	}
}

func TestHistory(t *testing.T) {
	p := testParams()
	env, err := NewEnvironment(p, []float64{1, 1, 1, 1, 1}, []float64{1, 1, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	h := NewHistory(env.State())
	for range p.Horizon {
		s, err := env.Step(0)
		if err != nil {
			t.Fatal(err)
		}
		h.Append(s, 0)
	}
	if h.Steps() != p.Horizon {
		t.Fatalf("got %d", h.Steps())
	}
	if len(h.BatteryLevels) != p.Horizon+1 || len(h.TotalCosts) != p.Horizon+1 {
		t.Fatal("bad lengths")
	}
	var sum float64
	for _, c := range h.StepCosts {
		sum += c
	}
	if sum != env.State().Cost {
		t.Fatalf("step costs %v, total %v", sum, env.State().Cost)
	}
	if h.CostSince(2) != h.StepCosts[2]+h.StepCosts[3] {
		t.Fatal("bad CostSince")
	}
	tail := h.Tail(2)
	if len(tail.Actions) != 2 || len(tail.BatteryLevels) != 3 {
		t.Fatalf("bad tail %+v", tail)
	}
}
