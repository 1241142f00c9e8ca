package series

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Generate = "GENERATE"
	// Constant selects a flat series at DefaultDemandLevel.
	Constant = "CONSTANT"
	// ConstantPrefix selects a flat series, as in "CONSTANT:5".
	ConstantPrefix = "CONSTANT:"
)

// Parse resolves a series setting: GENERATE, CONSTANT, CONSTANT:<level>, or a
// comma separated list of numbers. gen is called for GENERATE.
func Parse(spec string, horizon int, gen func() []float64) ([]float64, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case strings.EqualFold(spec, Generate):
		return gen(), nil
	case strings.EqualFold(spec, Constant):
		return ConstantDemand(horizon, DefaultDemandLevel), nil
	case strings.HasPrefix(strings.ToUpper(spec), ConstantPrefix):
		level, err := strconv.ParseFloat(strings.TrimSpace(spec[len(ConstantPrefix):]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad constant series %q: %w", spec, err)
		}
		return ConstantDemand(horizon, level), nil
	}
	return ParseCSV(spec)
}

func ParseCSV(s string) ([]float64, error) {
	var ret []float64
	for i, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("series value %d: %w", i, err)
		}
		ret = append(ret, v)
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("empty series")
	}
	return ret, nil
}
