package filters

import (
	"fmt"

	"github.com/reusee/metaloop/battery"
	"go.starlark.net/starlark"
)

// stateValue exposes battery.State to policy programs both by name
// (state.price) and by position (state[2]).
type stateValue struct {
	state  battery.State
	vector [5]float64
}

var (
	_ starlark.Value     = new(stateValue)
	_ starlark.Indexable = new(stateValue)
	_ starlark.Sequence  = new(stateValue)
	_ starlark.HasAttrs  = new(stateValue)
)

// StateValue wraps s the way take_action receives it.
func StateValue(s battery.State) starlark.Value {
	return newStateValue(s)
}

func newStateValue(s battery.State) *stateValue {
	return &stateValue{
		state:  s,
		vector: s.Vector(),
	}
}

func (s *stateValue) String() string {
	return fmt.Sprintf("state(%s)", s.state)
}

func (s *stateValue) Type() string {
	return "state"
}

func (s *stateValue) Freeze() {}

func (s *stateValue) Truth() starlark.Bool {
	return starlark.True
}

func (s *stateValue) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: state")
}

func (s *stateValue) Index(i int) starlark.Value {
	return starlark.Float(s.vector[i])
}

func (s *stateValue) Len() int {
	return len(s.vector)
}

func (s *stateValue) Iterate() starlark.Iterator {
	return &stateIterator{state: s}
}

func (s *stateValue) Attr(name string) (starlark.Value, error) {
	for i, field := range battery.StateFields {
		if field == name {
			return starlark.Float(s.vector[i]), nil
		}
	}
	return nil, nil
}

func (s *stateValue) AttrNames() []string {
	return battery.StateFields[:]
}

type stateIterator struct {
	state *stateValue
	i     int
}

func (s *stateIterator) Next(p *starlark.Value) bool {
	if s.i >= len(s.state.vector) {
		return false
	}
	*p = starlark.Float(s.state.vector[s.i])
	s.i++
	return true
}

func (s *stateIterator) Done() {}
