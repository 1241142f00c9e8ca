package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/cmds"
	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/policies"
	"github.com/reusee/metaloop/series"
	"github.com/reusee/metaloop/vars"
)

var (
	horizonFlag       = cmds.Var[*int]("-horizon", "total inner steps")
	metaStepsFlag     = cmds.Var[*int]("-meta-steps", "number of meta updates")
	maxRetriesFlag    = cmds.Var[*int]("-max-retries", "attempts per meta update")
	historyWindowFlag = cmds.Var[*int]("-history-window", "history steps shown to the task model")
	capacityFlag      = cmds.Var[*float64]("-capacity", "battery capacity in kWh")
	initialSoCFlag    = cmds.Var[*float64]("-initial-soc", "initial state of charge in kWh")
	maxRateFlag       = cmds.Var[*float64]("-max-rate", "max charge or discharge per step in kWh")
	effChargeFlag     = cmds.Var[*float64]("-eff-charge", "charging efficiency")
	effDischargeFlag  = cmds.Var[*float64]("-eff-discharge", "discharging efficiency")
	pricesFlag        = cmds.Var[string]("-prices", "price series: GENERATE or comma separated values")
	demandFlag        = cmds.Var[string]("-demand", "demand series: CONSTANT, CONSTANT:<x> or comma separated values")
	seedFlag          = cmds.Var[*uint64]("-seed", "seed for generated prices")
	dbFlag            = cmds.Var[string]("-db", "run ledger path")
	baselineFlag      = cmds.Var[string]("-baseline", "initial policy: hold or moving_average")
)

const (
	BaselineHold          = "hold"
	BaselineMovingAverage = "moving_average"
)

// Settings are the resolved run constants.
type Settings struct {
	Battery        battery.Params  `json:"battery" msgpack:"battery"`
	MetaSteps      int             `json:"meta_steps" msgpack:"meta_steps"`
	MaxRetries     int             `json:"max_retries" msgpack:"max_retries"`
	HistoryWindow  int             `json:"history_window" msgpack:"history_window"`
	PriceSeries    string          `json:"price_series" msgpack:"price_series"`
	DemandSeries   string          `json:"demand_series" msgpack:"demand_series"`
	Seed           uint64          `json:"seed" msgpack:"seed"`
	DBPath         string          `json:"db_path,omitempty" msgpack:"db_path"`
	Baseline       string          `json:"baseline" msgpack:"baseline"`
	Params         policies.Params `json:"params" msgpack:"params"`
	ActionMaxSteps uint64          `json:"action_max_steps" msgpack:"action_max_steps"`
}

// Load resolves settings from flags, then cue files, then the environment,
// then defaults. getenv is usually os.Getenv.
func Load(loader configs.Loader, getenv func(string) string) (ret Settings, err error) {
	if err := loader.Check(); err != nil {
		return ret, &battery.ConfigError{Field: "config file", Reason: err.Error()}
	}

	env := envReader{getenv: getenv}
	defaults := battery.DefaultParams()

	horizon := vars.FirstNonZero(
		*horizonFlag,
		configs.First[*int](loader, "horizon"),
		env.int("HORIZON"),
		vars.PtrTo(defaults.Horizon),
	)
	capacity := vars.FirstNonZero(
		*capacityFlag,
		configs.First[*float64](loader, "capacity_kwh"),
		env.float("BATTERY_CAPACITY_KWH"),
		vars.PtrTo(defaults.Capacity),
	)
	ret.Battery = battery.Params{
		Horizon:  *horizon,
		Capacity: *capacity,
		InitialSoC: *vars.FirstNonZero(
			*initialSoCFlag,
			configs.First[*float64](loader, "initial_soc"),
			env.float("INITIAL_SOC"),
			vars.PtrTo(*capacity/2),
		),
		MaxRate: *vars.FirstNonZero(
			*maxRateFlag,
			configs.First[*float64](loader, "max_rate_kwh"),
			env.float("MAX_RATE_KWH"),
			vars.PtrTo(defaults.MaxRate),
		),
		EffCharge: *vars.FirstNonZero(
			*effChargeFlag,
			configs.First[*float64](loader, "eff_charge"),
			env.float("EFF_CHARGE"),
			vars.PtrTo(defaults.EffCharge),
		),
		EffDischarge: *vars.FirstNonZero(
			*effDischargeFlag,
			configs.First[*float64](loader, "eff_discharge"),
			env.float("EFF_DISCHARGE"),
			vars.PtrTo(defaults.EffDischarge),
		),
	}

	ret.MetaSteps = *vars.FirstNonZero(
		*metaStepsFlag,
		configs.First[*int](loader, "meta_steps"),
		env.int("META_STEPS"),
		vars.PtrTo(3),
	)
	ret.MaxRetries = *vars.FirstNonZero(
		*maxRetriesFlag,
		configs.First[*int](loader, "max_retries"),
		env.int("MAX_RETRIES"),
		vars.PtrTo(3),
	)
	ret.HistoryWindow = *vars.FirstNonZero(
		*historyWindowFlag,
		configs.First[*int](loader, "history_window"),
		env.int("HISTORY_WINDOW"),
		vars.PtrTo(24),
	)
	ret.PriceSeries = vars.FirstNonZero(
		*pricesFlag,
		configs.First[string](loader, "price_series"),
		getenv("PRICE_SERIES"),
		series.Generate,
	)
	ret.DemandSeries = vars.FirstNonZero(
		*demandFlag,
		configs.First[string](loader, "demand_series"),
		getenv("DEMAND_SERIES"),
		series.Constant,
	)
	ret.Seed = *vars.FirstNonZero(
		*seedFlag,
		configs.First[*uint64](loader, "seed"),
		env.uint("SEED"),
		vars.PtrTo[uint64](series.DefaultSeed),
	)
	ret.DBPath = vars.FirstNonZero(
		*dbFlag,
		configs.First[string](loader, "db_path"),
		getenv("METALOOP_DB"),
	)
	ret.Baseline = strings.ToLower(vars.FirstNonZero(
		*baselineFlag,
		configs.First[string](loader, "baseline"),
		getenv("BASELINE_POLICY"),
		BaselineHold,
	))

	defaultParams := policies.DefaultParams()
	ret.Params = policies.Params{
		policies.ParamLearningRate: *vars.FirstNonZero(
			configs.First[*float64](loader, policies.ParamLearningRate),
			env.float("LEARNING_RATE"),
			vars.PtrTo(defaultParams[policies.ParamLearningRate]),
		),
		policies.ParamWindowSize: float64(*vars.FirstNonZero(
			configs.First[*int](loader, policies.ParamWindowSize),
			env.int("WINDOW_SIZE"),
			vars.PtrTo(int(defaultParams[policies.ParamWindowSize])),
		)),
	}
	ret.ActionMaxSteps = *vars.FirstNonZero(
		configs.First[*uint64](loader, "action_max_steps"),
		env.uint("ACTION_MAX_STEPS"),
		vars.PtrTo[uint64](1_000_000),
	)

	if err := env.err; err != nil {
		return ret, err
	}
	return ret, ret.Validate()
}

func (s Settings) Validate() error {
	if err := s.Battery.Validate(); err != nil {
		return err
	}
	switch {
	case s.MetaSteps < 1:
		return &battery.ConfigError{Field: "meta_steps", Reason: fmt.Sprintf("must be >= 1, got %d", s.MetaSteps)}
	case s.MaxRetries < 1:
		return &battery.ConfigError{Field: "max_retries", Reason: fmt.Sprintf("must be >= 1, got %d", s.MaxRetries)}
	case s.HistoryWindow < 1:
		return &battery.ConfigError{Field: "history_window", Reason: fmt.Sprintf("must be >= 1, got %d", s.HistoryWindow)}
	case s.ActionMaxSteps < 1:
		return &battery.ConfigError{Field: "action_max_steps", Reason: "must be >= 1"}
	}
	switch s.Baseline {
	case BaselineHold, BaselineMovingAverage:
	default:
		return &battery.ConfigError{Field: "baseline", Reason: fmt.Sprintf("unknown policy %q", s.Baseline)}
	}
	return nil
}

// Series resolves and checks the price and demand series.
func (s Settings) Series() (prices, demand []float64, err error) {
	horizon := s.Battery.Horizon
	prices, err = series.Parse(s.PriceSeries, horizon, func() []float64 {
		return series.GeneratePrices(horizon, s.Seed)
	})
	if err != nil {
		return nil, nil, &battery.ConfigError{Field: "price_series", Reason: err.Error()}
	}
	demand, err = series.Parse(s.DemandSeries, horizon, func() []float64 {
		return series.ConstantDemand(horizon, series.DefaultDemandLevel)
	})
	if err != nil {
		return nil, nil, &battery.ConfigError{Field: "demand_series", Reason: err.Error()}
	}
	if err := battery.CheckSeries(horizon, prices, demand); err != nil {
		return nil, nil, err
	}
	return prices, demand, nil
}

// SegmentLen is the inner step count per meta step. The remainder of an
// uneven division is never simulated.
func (s Settings) SegmentLen() int {
	return s.Battery.Horizon / s.MetaSteps
}

// InitialPolicy builds the policy used before the first meta update.
func (s Settings) InitialPolicy() (policies.Policy, error) {
	switch s.Baseline {
	case BaselineMovingAverage:
		return policies.NewBaseline(s.Params)
	default:
		return policies.Hold{}, nil
	}
}

type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) parse(key string, fn func(string) error) {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" || e.err != nil {
		return
	}
	if err := fn(v); err != nil {
		e.err = &battery.ConfigError{Field: key, Reason: err.Error()}
	}
}

func (e *envReader) int(key string) (ret *int) {
	e.parse(key, func(s string) error {
		n, err := strconv.Atoi(s)
		if err == nil {
			ret = &n
		}
		return err
	})
	return
}

func (e *envReader) uint(key string) (ret *uint64) {
	e.parse(key, func(s string) error {
		n, err := strconv.ParseUint(s, 10, 64)
		if err == nil {
			ret = &n
		}
		return err
	})
	return
}

func (e *envReader) float(key string) (ret *float64) {
	e.parse(key, func(s string) error {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			ret = &f
		}
		return err
	})
	return
}
