package metas

import (
	"context"
	"errors"
	"fmt"

	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/filters"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/policies"
	"github.com/reusee/metaloop/prompts"
)

const DefaultMaxRetries = 3

type TaskPrompter interface {
	TaskPrompt(ctx context.Context, req prompts.TaskRequest) (string, error)
}

type CodeWriter interface {
	WriteCode(ctx context.Context, task string) (string, error)
}

// Validate accepts or rejects a policy program. Any error is a rejection
// and its message becomes the error context of the next attempt.
type Validate func(source string) (policies.Policy, policies.Params, error)

func FilterValidate(v *filters.Validator) Validate {
	return func(source string) (policies.Policy, policies.Params, error) {
		policy, params, err := v.Validate(source)
		if err != nil {
			return nil, nil, err
		}
		return policy, params, nil
	}
}

type Request struct {
	MetaStep int
	Current  policies.Policy
	History  battery.History
	Params   policies.Params
}

type ExhaustedError struct {
	Attempts int
	Last     error
}

var _ error = new(ExhaustedError)

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("meta-controller failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

type Controller struct {
	tasks      TaskPrompter
	codes      CodeWriter
	validate   Validate
	maxRetries int
	logger     logs.Logger
	recorder   AttemptRecorder
}

type Option func(*Controller)

func WithMaxRetries(n int) Option {
	return func(c *Controller) {
		c.maxRetries = n
	}
}

func WithLogger(logger logs.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithRecorder(recorder AttemptRecorder) Option {
	return func(c *Controller) {
		c.recorder = recorder
	}
}

func NewController(tasks TaskPrompter, codes CodeWriter, validate Validate, options ...Option) *Controller {
	c := &Controller{
		tasks:      tasks,
		codes:      codes,
		validate:   validate,
		maxRetries: DefaultMaxRetries,
		logger:     logs.Discard(),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.maxRetries < 1 {
		c.maxRetries = 1
	}
	return c
}

// Update runs prompt, generate and validate rounds until a program is accepted
// or the retry budget is spent.
func (c *Controller) Update(ctx context.Context, req Request) (policies.Policy, policies.Params, error) {
	u := &update{
		req:      req,
		lastCode: req.Current.Source(),
	}
	for step := state(c.buildPrompt); step != nil; {
		var err error
		step, err = step(ctx, u)
		if err != nil {
			return nil, nil, err
		}
	}
	return u.policy, u.params, nil
}

type state func(ctx context.Context, u *update) (state, error)

type update struct {
	req          Request
	lastCode     string
	errorContext string
	attempt      int
	task         string
	code         string
	genErr       error
	policy       policies.Policy
	params       policies.Params
}

func (c *Controller) buildPrompt(ctx context.Context, u *update) (state, error) {
	u.attempt++
	c.logger.InfoContext(ctx, "meta-update attempt",
		"meta_step", u.req.MetaStep,
		"attempt", u.attempt,
		"max", c.maxRetries,
	)
	task, err := c.tasks.TaskPrompt(ctx, prompts.TaskRequest{
		LastCode:     u.lastCode,
		History:      u.req.History,
		Params:       u.req.Params,
		ErrorContext: u.errorContext,
	})
	if err != nil {
		return nil, err
	}
	u.task = task
	return c.generate, nil
}

func (c *Controller) generate(ctx context.Context, u *update) (state, error) {
	u.genErr = nil
	code, err := c.codes.WriteCode(ctx, u.task)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WarnContext(ctx, "code generator failed, falling back to last known code",
			"error", err,
		)
		u.genErr = err
		code = u.lastCode
	}
	u.code = code
	return c.check, nil
}

func (c *Controller) check(ctx context.Context, u *update) (state, error) {
	policy, params, err := c.validate(u.code)

	attempt := Attempt{
		MetaStep:     u.req.MetaStep,
		Number:       u.attempt,
		TaskPrompt:   u.task,
		Code:         u.code,
		ErrorContext: u.errorContext,
		FellBack:     u.genErr != nil,
	}
	if u.genErr != nil {
		attempt.GenerationError = u.genErr.Error()
	}

	if err == nil {
		attempt.Accepted = true
		attempt.PolicyName = policy.Name()
		attempt.Params = params
		c.record(ctx, attempt)
		c.logger.InfoContext(ctx, "policy accepted",
			"meta_step", u.req.MetaStep,
			"attempt", u.attempt,
			"policy", policy.Name(),
			"params", params.String(),
		)
		u.policy = policy
		u.params = params
		return nil, nil
	}

	attempt.Rejection = err.Error()
	c.record(ctx, attempt)
	var validationErr *filters.ValidationError
	if errors.As(err, &validationErr) {
		c.logger.WarnContext(ctx, "policy rejected",
			"kind", validationErr.Kind.String(),
			"reason", validationErr.Message,
		)
	} else {
		c.logger.WarnContext(ctx, "policy rejected", "reason", err.Error())
	}

	u.errorContext = err.Error()
	u.lastCode = u.code
	if u.attempt >= c.maxRetries {
		return nil, &ExhaustedError{
			Attempts: u.attempt,
			Last:     err,
		}
	}
	return c.buildPrompt, nil
}

func (c *Controller) record(ctx context.Context, attempt Attempt) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordAttempt(ctx, attempt); err != nil {
		c.logger.WarnContext(ctx, "record attempt", "error", err)
	}
}
