// Package retry decides whether and when failed remote operations are
// attempted again. Decisions are a pure function of the error classification
// and the attempt count; callers own the waiting.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/batchkit/batchkit/pkg/core"
)

// Policy holds the backoff parameters for retrying classified failures.
type Policy struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 5
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	// Default: 500ms
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff before jitter.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is applied to the delay after each attempt.
	// Default: 2.0
	Multiplier float64

	// rand returns a uniform value in [0, 1) for jitter. Tests inject a
	// deterministic source; nil means math/rand.
	rand func() float64
}

// DefaultPolicy returns the default retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
	}
}

// WithRand returns a copy of the policy using the given jitter source.
func (p Policy) WithRand(fn func() float64) Policy {
	p.rand = fn
	return p
}

// Decision is the outcome of classifying one failure.
type Decision struct {
	// Retry is true when the operation should be attempted again.
	Retry bool

	// Delay is how long to wait before the next attempt. Zero when Retry
	// is false.
	Delay time.Duration
}

// Decide returns the decision for a failure of the given kind on the given
// attempt. Attempts are 1-based: attempt 1 is the initial try.
func (p Policy) Decide(kind core.ErrorKind, attempt int) Decision {
	if !kind.Retryable() {
		return Decision{}
	}
	if attempt >= p.MaxAttempts {
		return Decision{}
	}
	return Decision{Retry: true, Delay: p.backoff(attempt)}
}

// backoff computes the jittered delay before attempt+1. The deterministic
// part grows geometrically from BaseDelay and is capped at MaxDelay; jitter
// adds a uniform value in [0, backoff) so synchronized clients spread out.
func (p Policy) backoff(attempt int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
		if d >= float64(p.MaxDelay) {
			d = float64(p.MaxDelay)
			break
		}
	}

	randFn := p.rand
	if randFn == nil {
		randFn = rand.Float64
	}
	return time.Duration(d) + time.Duration(randFn()*d)
}

// Wait sleeps for d or until the context is done, whichever comes first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
