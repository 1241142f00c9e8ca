package debugs

import (
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/filters"
	"github.com/reusee/metaloop/policies"
)

func TestTap(t *testing.T) {
	params := battery.DefaultParams()
	params.Horizon = 2
	env, err := battery.NewEnvironment(params, []float64{1, 2, 3}, []float64{0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	policy, _, err := filters.NewValidator().Validate(policies.Threshold{Threshold: 0.5, MaxRate: 1}.Source())
	if err != nil {
		t.Fatal(err)
	}

	dscope.New(
		new(Module),
	).Call(func(
		tap Tap,
	) {
		// stdin is not a terminal under go test, the session ends at once
		tap(t.Context(), "test", PolicyGlobals(policy, env))
	})
}
