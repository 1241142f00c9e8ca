package battery

import (
	"fmt"
	"math"
)

// Params are the physical constants of one simulation. Both efficiencies are
// applied one-way: charging stores action*EffCharge, discharging delivers
// drawn*EffDischarge. Setting both to 1 gives the lossless model.
type Params struct {
	Horizon      int     `json:"horizon"`
	Capacity     float64 `json:"capacity_kwh"`
	InitialSoC   float64 `json:"initial_soc"`
	MaxRate      float64 `json:"max_rate_kwh"`
	EffCharge    float64 `json:"eff_charge"`
	EffDischarge float64 `json:"eff_discharge"`
}

func DefaultParams() Params {
	return Params{
		Horizon:      150,
		Capacity:     100,
		InitialSoC:   50,
		MaxRate:      10,
		EffCharge:    0.95,
		EffDischarge: 0.95,
	}
}

func (p Params) Validate() error {
	finite := func(field string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("must be finite, got %v", v)}
		}
		return nil
	}
	for _, check := range []struct {
		field string
		value float64
	}{
		{"capacity", p.Capacity},
		{"initial_soc", p.InitialSoC},
		{"max_rate", p.MaxRate},
		{"eff_charge", p.EffCharge},
		{"eff_discharge", p.EffDischarge},
	} {
		if err := finite(check.field, check.value); err != nil {
			return err
		}
	}

	switch {
	case p.Horizon < 1:
		return &ConfigError{Field: "horizon", Reason: fmt.Sprintf("must be >= 1, got %d", p.Horizon)}
	case p.Capacity < 0:
		return &ConfigError{Field: "capacity", Reason: fmt.Sprintf("must be >= 0, got %v", p.Capacity)}
	case p.InitialSoC < 0 || p.InitialSoC > p.Capacity:
		return &ConfigError{Field: "initial_soc", Reason: fmt.Sprintf("must be in [0, %v], got %v", p.Capacity, p.InitialSoC)}
	case p.MaxRate <= 0:
		return &ConfigError{Field: "max_rate", Reason: fmt.Sprintf("must be > 0, got %v", p.MaxRate)}
	case p.EffCharge <= 0 || p.EffCharge > 1:
		return &ConfigError{Field: "eff_charge", Reason: fmt.Sprintf("must be in (0, 1], got %v", p.EffCharge)}
	case p.EffDischarge <= 0 || p.EffDischarge > 1:
		return &ConfigError{Field: "eff_discharge", Reason: fmt.Sprintf("must be in (0, 1], got %v", p.EffDischarge)}
	}
	return nil
}

// Clamp limits an action to the rate limit. NaN is treated as holding.
func (p Params) Clamp(action float64) float64 {
	if math.IsNaN(action) {
		return 0
	}
	return math.Max(-p.MaxRate, math.Min(p.MaxRate, action))
}
