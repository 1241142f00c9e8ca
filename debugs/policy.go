package debugs

import (
	"fmt"

	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/filters"
	"go.starlark.net/starlark"
)

// PolicyGlobals exposes an accepted policy and a live environment to a tap
// session: take_action, params, state, step(action), reset() and np.
func PolicyGlobals(policy *filters.Policy, env *battery.Environment) map[string]any {
	globals := map[string]any{
		filters.ActionName: policy.Action(),
		"name":             policy.Name(),
		"params":           map[string]float64(policy.Params()),
		"state":            filters.StateValue(env.State()),

		"step": starlark.NewBuiltin("step", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var action starlark.Value
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &action); err != nil {
				return nil, err
			}
			f, ok := starlark.AsFloat(action)
			if !ok {
				return nil, fmt.Errorf("step: want a number, got %s", action.Type())
			}
			state, err := env.Step(f)
			if err != nil {
				return nil, err
			}
			return filters.StateValue(state), nil
		}),

		"reset": starlark.NewBuiltin("reset", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			return filters.StateValue(env.Reset()), nil
		}),

		"flow": starlark.NewBuiltin("flow", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			return toStarlarkValue(env.LastFlow()), nil
		}),
	}
	for name, value := range filters.Predeclared() {
		globals[name] = value
	}
	return globals
}
