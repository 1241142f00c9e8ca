package metas

import (
	"context"

	"github.com/reusee/metaloop/policies"
)

// Attempt is one prompt, generate and validate round.
type Attempt struct {
	MetaStep        int             `json:"meta_step" msgpack:"meta_step"`
	Number          int             `json:"number" msgpack:"number"`
	TaskPrompt      string          `json:"task_prompt" msgpack:"task_prompt"`
	Code            string          `json:"code" msgpack:"code"`
	ErrorContext    string          `json:"error_context,omitempty" msgpack:"error_context"`
	FellBack        bool            `json:"fell_back" msgpack:"fell_back"`
	GenerationError string          `json:"generation_error,omitempty" msgpack:"generation_error"`
	Accepted        bool            `json:"accepted" msgpack:"accepted"`
	Rejection       string          `json:"rejection,omitempty" msgpack:"rejection"`
	PolicyName      string          `json:"policy_name,omitempty" msgpack:"policy_name"`
	Params          policies.Params `json:"params,omitempty" msgpack:"params"`
}

type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt Attempt) error
}

type AttemptRecorderFunc func(ctx context.Context, attempt Attempt) error

func (f AttemptRecorderFunc) RecordAttempt(ctx context.Context, attempt Attempt) error {
	return f(ctx, attempt)
}
