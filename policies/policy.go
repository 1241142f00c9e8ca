package policies

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/reusee/metaloop/battery"
)

// Policy maps a state to a signed energy amount: positive charges,
// negative discharges. Implementations may keep rolling state, so a Policy
// must not be shared across runs.
type Policy interface {
	Name() string
	// Source is the policy program text shown to the generators.
	Source() string
	TakeAction(state battery.State) (float64, error)
}

// Params are the meta-parameters tuned by the outer loop.
type Params map[string]float64

const (
	ParamLearningRate = "learning_rate"
	ParamWindowSize   = "window_size"
)

func DefaultParams() Params {
	return Params{
		ParamLearningRate: 0.01,
		ParamWindowSize:   24,
	}
}

func (p Params) Clone() Params {
	return maps.Clone(p)
}

func (p Params) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

func (p Params) String() string {
	var b strings.Builder
	for i, key := range p.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%g", key, p[key])
	}
	return b.String()
}

// Window reads window_size as a positive integer, falling back to def.
func (p Params) Window(def int) int {
	v, ok := p[ParamWindowSize]
	if !ok || v < 1 {
		return def
	}
	return int(v)
}
