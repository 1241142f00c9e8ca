package policies

import (
	"fmt"

	"github.com/reusee/metaloop/battery"
	"gonum.org/v1/gonum/stat"
)

// MovingAverage charges when the price is below the mean of the last Window
// observed prices and discharges when above. It holds until Window prices
// have been seen.
type MovingAverage struct {
	Window  int
	MaxRate float64
	prices  []float64
}

var _ Policy = new(MovingAverage)

func NewMovingAverage(window int, maxRate float64) (*MovingAverage, error) {
	if window < 1 {
		return nil, fmt.Errorf("window must be >= 1, got %d", window)
	}
	if maxRate < 0 {
		return nil, fmt.Errorf("max rate must be >= 0, got %v", maxRate)
	}
	return &MovingAverage{
		Window:  window,
		MaxRate: maxRate,
		prices:  make([]float64, 0, window+1),
	}, nil
}

// NewBaseline builds the baseline policy from meta-parameters.
func NewBaseline(params Params) (*MovingAverage, error) {
	return NewMovingAverage(params.Window(24), 1.0)
}

func (m *MovingAverage) Name() string {
	return "MovingAveragePolicy"
}

func (m *MovingAverage) Source() string {
	return render("moving_average.star", m)
}

func (m *MovingAverage) TakeAction(state battery.State) (float64, error) {
	m.prices = append(m.prices, state.Price)
	if len(m.prices) > m.Window {
		m.prices = append(m.prices[:0], m.prices[1:]...)
	}
	if len(m.prices) < m.Window {
		return 0, nil
	}
	avg := stat.Mean(m.prices, nil)
	switch {
	case state.Price < avg:
		return m.MaxRate, nil
	case state.Price > avg:
		return -min(m.MaxRate, state.SoC), nil
	}
	return 0, nil
}
