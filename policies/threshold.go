package policies

import "github.com/reusee/metaloop/battery"

// Threshold charges below a fixed price and discharges above it.
type Threshold struct {
	Threshold float64
	MaxRate   float64
}

var _ Policy = Threshold{}

func (t Threshold) Name() string {
	return "ThresholdPolicy"
}

func (t Threshold) Source() string {
	return render("threshold.star", t)
}

func (t Threshold) TakeAction(state battery.State) (float64, error) {
	switch {
	case state.Price < t.Threshold:
		return t.MaxRate, nil
	case state.Price > t.Threshold:
		return -min(t.MaxRate, state.SoC), nil
	}
	return 0, nil
}
