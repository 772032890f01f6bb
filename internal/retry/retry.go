package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds the attempts of one outbound call.
type Policy struct {
	Attempts int
	// NewBackOff builds the wait schedule between attempts.
	NewBackOff func() backoff.BackOff
	// AttemptTimeout is the deadline of the first attempt; each later attempt gets TimeoutStep more.
	AttemptTimeout time.Duration
	TimeoutStep    time.Duration
	// Permanent reports errors that must not be retried.
	Permanent func(error) bool
}

// Do runs fn until it succeeds, returns a permanent error, or attempts are exhausted.
// The attempt number passed to fn starts at 1. The last error is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var b backoff.BackOff
	if p.NewBackOff != nil {
		b = p.NewBackOff()
	} else {
		b = &backoff.ZeroBackOff{}
	}
	b = backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		attemptCtx := ctx
		if p.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			timeout := p.AttemptTimeout + time.Duration(attempt-1)*p.TimeoutStep
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		err := fn(attemptCtx, attempt)
		if err == nil {
			return nil
		}
		if p.Permanent != nil && p.Permanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(operation, b)
}

// Exponential returns a bounded exponential schedule without jitter.
func Exponential(initial, max time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initial
		b.MaxInterval = max
		b.RandomizationFactor = 0
		b.Multiplier = 2
		b.MaxElapsedTime = 0
		b.Reset()
		return b
	}
}

// Linear waits attempt*unit before the next attempt: unit, 2*unit, 3*unit...
func Linear(unit time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff {
		return &linearBackOff{unit: unit}
	}
}

type linearBackOff struct {
	unit time.Duration
	n    int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.n++
	return time.Duration(l.n) * l.unit
}

func (l *linearBackOff) Reset() {
	l.n = 0
}
