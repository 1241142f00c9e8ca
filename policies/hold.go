package policies

import "github.com/reusee/metaloop/battery"

// Hold never moves energy.
type Hold struct{}

var _ Policy = Hold{}

func (Hold) Name() string {
	return "HoldPolicy"
}

func (Hold) Source() string {
	return render("hold.star", nil)
}

func (Hold) TakeAction(battery.State) (float64, error) {
	return 0, nil
}
