package filters

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/policies"
	"go.starlark.net/starlark"
)

// Policy is an accepted policy program bound to its rolling state.
type Policy struct {
	name     string
	source   string
	params   policies.Params
	action   *starlark.Function
	maxSteps uint64
	logger   logs.Logger
}

var _ policies.Policy = new(Policy)

func (p *Policy) Name() string {
	return p.name
}

func (p *Policy) Source() string {
	return p.source
}

func (p *Policy) Params() policies.Params {
	return p.params.Clone()
}

// Action returns the bound take_action closure.
func (p *Policy) Action() *starlark.Function {
	return p.action
}

// TakeAction calls take_action under a fresh step budget. Non-numeric
// results are errors; NaN and infinities are returned as is.
func (p *Policy) TakeAction(state battery.State) (float64, error) {
	thread := &starlark.Thread{
		Name: p.name,
		Print: func(_ *starlark.Thread, msg string) {
			p.logger.Debug("policy print", slog.String("policy", p.name), slog.String("msg", msg))
		},
	}
	thread.SetMaxExecutionSteps(p.maxSteps)
	ret, err := starlark.Call(thread, p.action, starlark.Tuple{newStateValue(state)}, nil)
	if err != nil {
		return math.NaN(), fmt.Errorf("%s.%s: %w", p.name, ActionName, err)
	}
	f, ok := starlark.AsFloat(ret)
	if !ok {
		return math.NaN(), fmt.Errorf("%s.%s returned %s, want a number", p.name, ActionName, ret.Type())
	}
	return f, nil
}
