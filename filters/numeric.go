package filters

import (
	"fmt"
	"maps"
	"math"

	starlarkmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// numeric is the only name predeclared for policy programs. It carries the
// math module members plus a few array reductions.
var numeric = func() *starlarkstruct.Module {
	members := make(starlark.StringDict)
	for name, value := range starlarkmath.Module.Members {
		members[name] = value
	}
	members["mean"] = starlark.NewBuiltin("mean", npMean)
	members["std"] = starlark.NewBuiltin("std", npStd)
	members["sum"] = starlark.NewBuiltin("sum", npSum)
	members["clip"] = starlark.NewBuiltin("clip", npClip)
	members["sign"] = starlark.NewBuiltin("sign", npSign)
	return &starlarkstruct.Module{
		Name:    "np",
		Members: members,
	}
}()

var predeclared = starlark.StringDict{
	"np": numeric,
}

// Predeclared returns a copy of the names visible to policy programs.
func Predeclared() starlark.StringDict {
	return maps.Clone(predeclared)
}

func toFloats(fnName string, v starlark.Value) ([]float64, error) {
	iterable, ok := v.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("%s: expected a sequence, got %s", fnName, v.Type())
	}
	iter := iterable.Iterate()
	defer iter.Done()
	var ret []float64
	var elem starlark.Value
	for iter.Next(&elem) {
		f, ok := starlark.AsFloat(elem)
		if !ok {
			return nil, fmt.Errorf("%s: expected numbers, got %s", fnName, elem.Type())
		}
		ret = append(ret, f)
	}
	return ret, nil
}

func reduceArgs(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) ([]float64, error) {
	var seq starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &seq); err != nil {
		return nil, err
	}
	xs, err := toFloats(b.Name(), seq)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%s: empty sequence", b.Name())
	}
	return xs, nil
}

func npMean(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	xs, err := reduceArgs(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	return starlark.Float(stat.Mean(xs, nil)), nil
}

func npStd(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	xs, err := reduceArgs(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	return starlark.Float(math.Sqrt(stat.PopVariance(xs, nil))), nil
}

func npSum(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var seq starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &seq); err != nil {
		return nil, err
	}
	xs, err := toFloats(b.Name(), seq)
	if err != nil {
		return nil, err
	}
	return starlark.Float(floats.Sum(xs)), nil
}

func npClip(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x, lo, hi starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 3, &x, &lo, &hi); err != nil {
		return nil, err
	}
	var fs [3]float64
	for i, v := range []starlark.Value{x, lo, hi} {
		f, ok := starlark.AsFloat(v)
		if !ok {
			return nil, fmt.Errorf("clip: expected numbers, got %s", v.Type())
		}
		fs[i] = f
	}
	return starlark.Float(math.Max(fs[1], math.Min(fs[2], fs[0]))), nil
}

func npSign(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &x); err != nil {
		return nil, err
	}
	f, ok := starlark.AsFloat(x)
	if !ok {
		return nil, fmt.Errorf("sign: expected a number, got %s", x.Type())
	}
	switch {
	case f > 0:
		return starlark.Float(1), nil
	case f < 0:
		return starlark.Float(-1), nil
	}
	return starlark.Float(0), nil
}
