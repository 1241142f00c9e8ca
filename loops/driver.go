package loops

import (
	"context"
	"fmt"
	"math"

	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/metas"
	"github.com/reusee/metaloop/policies"
	"github.com/reusee/metaloop/procs"
)

type Config struct {
	MetaSteps int
	Params    policies.Params
	// Policy acts during the first segment.
	Policy policies.Policy
}

type MetaUpdater interface {
	Update(ctx context.Context, req metas.Request) (policies.Policy, policies.Params, error)
}

type SegmentRecorder interface {
	RecordSegment(ctx context.Context, segment SegmentResult) error
}

// ActionValueError reports a policy action that could not be used. The
// driver substitutes 0.0 and continues.
type ActionValueError struct {
	Step   int
	Policy string
	Value  float64
	Err    error
}

var _ error = new(ActionValueError)

func (a *ActionValueError) Error() string {
	if a.Err != nil {
		return fmt.Sprintf("invalid action from %s at step %d: %v", a.Policy, a.Step, a.Err)
	}
	return fmt.Sprintf("invalid action from %s at step %d: %v is not finite", a.Policy, a.Step, a.Value)
}

func (a *ActionValueError) Unwrap() error {
	return a.Err
}

type Driver struct {
	env      *battery.Environment
	updater  MetaUpdater
	config   Config
	logger   logs.Logger
	recorder SegmentRecorder
	newSpan  logs.NewSpan
}

type Option func(*Driver)

func WithLogger(logger logs.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

func WithRecorder(recorder SegmentRecorder) Option {
	return func(d *Driver) {
		d.recorder = recorder
	}
}

func WithSpans(newSpan logs.NewSpan) Option {
	return func(d *Driver) {
		d.newSpan = newSpan
	}
}

func NewDriver(env *battery.Environment, updater MetaUpdater, config Config, options ...Option) (*Driver, error) {
	if config.MetaSteps < 1 {
		return nil, &battery.ConfigError{
			Field:  "meta_steps",
			Reason: fmt.Sprintf("must be >= 1, got %d", config.MetaSteps),
		}
	}
	if config.Policy == nil {
		return nil, fmt.Errorf("initial policy is required")
	}
	if config.MetaSteps > 1 && updater == nil {
		return nil, fmt.Errorf("meta updater is required for %d meta steps", config.MetaSteps)
	}
	d := &Driver{
		env:     env,
		updater: updater,
		config:  config,
		logger:  logs.Discard(),
	}
	for _, opt := range options {
		opt(d)
	}
	return d, nil
}

func (d *Driver) SegmentLen() int {
	return d.env.Params().Horizon / d.config.MetaSteps
}

// Run executes MetaSteps segments of SegmentLen steps each. When Horizon is
// not a multiple of MetaSteps the trailing steps are never simulated.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	r := &run{
		Context: ctx,
		base:    ctx,
		driver:  d,
		segLen:  d.SegmentLen(),
	}
	err := procs.Drive[*run](r, procs.Procs[*run]{
		initProc{},
		metaUpdateProc{metaStep: 0},
	}, func(procs.Proc[*run]) error {
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		FinalState:      d.env.State(),
		History:         r.history,
		MetaParams:      r.params.Clone(),
		FinalPolicy:     r.policy,
		Segments:        r.segments,
		ActionFallbacks: r.fallbacks,
		Skipped:         d.env.Params().Horizon - r.segLen*d.config.MetaSteps,
	}, nil
}

type run struct {
	context.Context
	base      context.Context
	driver    *Driver
	segLen    int
	history   *battery.History
	params    policies.Params
	policy    policies.Policy
	segments  []SegmentResult
	fallbacks int
}

type initProc struct{}

func (initProc) Run(r *run) (procs.Proc[*run], error) {
	d := r.driver
	state := d.env.Reset()
	r.history = battery.NewHistory(state)
	r.params = d.config.Params.Clone()
	if r.params == nil {
		r.params = make(policies.Params)
	}
	r.policy = d.config.Policy

	horizon := d.env.Params().Horizon
	if skipped := horizon - r.segLen*d.config.MetaSteps; skipped > 0 {
		d.logger.WarnContext(r, "horizon not divisible by meta steps, trailing steps skipped",
			"horizon", horizon,
			"meta_steps", d.config.MetaSteps,
			"segment_len", r.segLen,
			"skipped", skipped,
		)
	}
	if r.segLen == 0 {
		d.logger.WarnContext(r, "meta steps exceed horizon, segments are empty",
			"horizon", horizon,
			"meta_steps", d.config.MetaSteps,
		)
	}

	return nil, nil
}

type metaUpdateProc struct {
	metaStep int
}

func (m metaUpdateProc) Run(r *run) (procs.Proc[*run], error) {
	d := r.driver
	if m.metaStep >= d.config.MetaSteps {
		return nil, nil
	}
	if d.newSpan != nil {
		ctx, _ := d.newSpan(r.base, "", fmt.Sprintf("meta step %d", m.metaStep))
		r.Context = ctx
	}
	d.logger.InfoContext(r, "meta step", "meta_step", m.metaStep)

	if m.metaStep > 0 {
		policy, params, err := d.updater.Update(r, metas.Request{
			MetaStep: m.metaStep,
			Current:  r.policy,
			History:  *r.history,
			Params:   r.params.Clone(),
		})
		if err != nil {
			return nil, logs.WrapSpan(r, fmt.Errorf("meta step %d: %w", m.metaStep, err))
		}
		r.policy = policy
		r.params = params.Clone()
		d.logger.InfoContext(r, "meta-update",
			"policy", policy.Name(),
			"params", params.String(),
		)
	}

	return segmentProc{metaStep: m.metaStep}, nil
}

type segmentProc struct {
	metaStep int
}

func (s segmentProc) Run(r *run) (procs.Proc[*run], error) {
	d := r.driver
	start := r.history.Steps()
	for range r.segLen {
		state := d.env.State()
		action := d.act(r, state)
		next, err := d.env.Step(action)
		if err != nil {
			return nil, err
		}
		r.history.Append(next, action)
	}

	segment := SegmentResult{
		Index:       s.metaStep,
		Steps:       r.segLen,
		EndState:    d.env.State(),
		MetaParams:  r.params.Clone(),
		PolicyName:  r.policy.Name(),
		SegmentCost: r.history.CostSince(start),
	}
	r.segments = append(r.segments, segment)
	d.logger.InfoContext(r, "segment done",
		"meta_step", s.metaStep,
		"policy", segment.PolicyName,
		"cost", segment.SegmentCost,
	)
	if d.recorder != nil {
		if err := d.recorder.RecordSegment(r, segment); err != nil {
			d.logger.WarnContext(r, "record segment", "error", err)
		}
	}

	return metaUpdateProc{metaStep: s.metaStep + 1}, nil
}

// act asks the policy for an action and replaces unusable values with 0.0.
func (d *Driver) act(r *run, state battery.State) float64 {
	step := d.env.Cursor()
	action, err := r.policy.TakeAction(state)
	if err == nil && !math.IsNaN(action) && !math.IsInf(action, 0) {
		return action
	}
	actionErr := &ActionValueError{
		Step:   step,
		Policy: r.policy.Name(),
		Value:  action,
		Err:    err,
	}
	r.fallbacks++
	d.logger.WarnContext(r, "invalid action, defaulting to 0.0",
		"error", actionErr.Error(),
	)
	return 0
}
