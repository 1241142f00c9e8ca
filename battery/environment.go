package battery

import (
	"fmt"
	"math"
	"slices"
)

// Environment steps the battery through fixed price and demand series.
// It is not safe for concurrent use.
type Environment struct {
	params   Params
	prices   []float64
	demand   []float64
	state    State
	cursor   int
	lastFlow Flow
}

func NewEnvironment(params Params, prices, demand []float64) (*Environment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := CheckSeries(params.Horizon, prices, demand); err != nil {
		return nil, err
	}
	env := &Environment{
		params: params,
		prices: slices.Clone(prices),
		demand: slices.Clone(demand),
	}
	env.Reset()
	return env, nil
}

// CheckSeries verifies both series cover horizon+1 points and hold finite values.
func CheckSeries(horizon int, prices, demand []float64) error {
	if len(prices) < horizon+1 {
		return &ConfigError{
			Field:  "price_series",
			Reason: fmt.Sprintf("need at least %d values (horizon+1), got %d", horizon+1, len(prices)),
		}
	}
	if len(demand) < horizon+1 {
		return &ConfigError{
			Field:  "demand_series",
			Reason: fmt.Sprintf("need at least %d values (horizon+1), got %d", horizon+1, len(demand)),
		}
	}
	for i, p := range prices[:horizon+1] {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return &ConfigError{Field: "price_series", Reason: fmt.Sprintf("value %d is not finite", i)}
		}
	}
	for i, d := range demand[:horizon+1] {
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return &ConfigError{Field: "demand_series", Reason: fmt.Sprintf("value %d must be finite and >= 0, got %v", i, d)}
		}
	}
	return nil
}

func (e *Environment) Reset() State {
	e.cursor = 0
	e.lastFlow = Flow{}
	e.state = State{
		SoC:    e.params.InitialSoC,
		Price:  e.prices[0],
		Demand: e.demand[0],
	}
	return e.state
}

// Step applies action and moves the cursor forward. Calling it more than
// Horizon times between resets returns ErrHorizonExceeded.
func (e *Environment) Step(action float64) (State, error) {
	if e.cursor >= e.params.Horizon {
		return e.state, fmt.Errorf("step %d of %d: %w", e.cursor+1, e.params.Horizon, ErrHorizonExceeded)
	}
	next := e.cursor + 1
	e.state, e.lastFlow = Transition(e.params, e.state, action, e.prices[next], e.demand[next])
	e.cursor = next
	return e.state, nil
}

func (e *Environment) State() State {
	return e.state
}

func (e *Environment) Cursor() int {
	return e.cursor
}

func (e *Environment) LastFlow() Flow {
	return e.lastFlow
}

func (e *Environment) Params() Params {
	return e.params
}
