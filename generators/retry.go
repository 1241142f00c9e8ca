package generators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/modes"
	"github.com/reusee/metaloop/vars"
)

var ErrRetryable = errors.New("retryable")

// TransportError is returned when a generation call could not complete,
// either because a non-retryable failure occurred or retries ran out.
type TransportError struct {
	Model    string
	Attempts int
	Err      error
}

var _ error = new(TransportError)

func (t *TransportError) Error() string {
	return fmt.Sprintf("generation transport error: model %s, %d attempt(s): %v", t.Model, t.Attempts, t.Err)
}

func (t *TransportError) Unwrap() error {
	return t.Err
}

type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
}

func (Module) RetryPolicy(
	loader configs.Loader,
	mode modes.Mode,
) RetryPolicy {
	if mode == modes.ModeDevelopment {
		return RetryPolicy{
			MaxAttempts: 3,
			Backoff:     time.Millisecond,
			MaxBackoff:  10 * time.Millisecond,
		}
	}
	return RetryPolicy{
		MaxAttempts: vars.FirstNonZero(
			configs.First[int](loader, "transport_attempts"),
			getenvInt("TRANSPORT_ATTEMPTS"),
			5,
		),
		Backoff: time.Duration(vars.FirstNonZero(
			configs.First[int](loader, "transport_backoff_seconds"),
			5,
		)) * time.Second,
		MaxBackoff: 2 * time.Minute,
	}
}

func (r RetryPolicy) delay(attempt int) time.Duration {
	d := r.Backoff << attempt
	if d <= 0 || (r.MaxBackoff > 0 && d > r.MaxBackoff) {
		return r.MaxBackoff
	}
	return d
}

func doWithRetry[T any](
	ctx context.Context,
	logger logs.Logger,
	policy RetryPolicy,
	model string,
	fn func() (T, error),
) (ret T, err error) {
	attempts := max(policy.MaxAttempts, 1)

	for i := range attempts {
		ret, err = fn()
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return ret, ctx.Err()
		}
		if !isRetryable(err) {
			return ret, &TransportError{
				Model:    model,
				Attempts: i + 1,
				Err:      err,
			}
		}
		if i == attempts-1 {
			break
		}
		wait := policy.delay(i)
		logger.WarnContext(ctx, "retry",
			"model", model,
			"attempt", i+1,
			"wait", wait,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ret, ctx.Err()
		case <-time.After(wait):
		}
	}

	return ret, &TransportError{
		Model:    model,
		Attempts: attempts,
		Err:      err,
	}
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrRetryable) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
