package generators

import "fmt"

// OpenAIError is a non-retryable failure of one chat completion request.
type OpenAIError struct {
	StatusCode int
	Err        error
	Request    ChatCompletionRequest
}

var _ error = OpenAIError{}

func (o OpenAIError) Error() string {
	if o.StatusCode != 0 {
		return fmt.Sprintf("chat completion %s: status %d: %v", o.Request.Model, o.StatusCode, o.Err)
	}
	return fmt.Sprintf("chat completion %s: %v", o.Request.Model, o.Err)
}

func (o OpenAIError) Unwrap() error {
	return o.Err
}
