// Package executor bounds concurrent calls to external services. Each call
// class has its own concurrency limit so a flood of polls cannot starve
// submissions, and vice versa.
package executor

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Class names a category of external call with its own concurrency limit.
type Class string

const (
	// ClassSubmit covers job submission and cancellation calls.
	ClassSubmit Class = "submit"

	// ClassPoll covers status description calls.
	ClassPoll Class = "poll"

	// ClassTransfer covers object storage uploads and downloads.
	ClassTransfer Class = "transfer"
)

// Default per-class limits.
const (
	DefaultSubmitLimit   = 8
	DefaultPollLimit     = 32
	DefaultTransferLimit = 16
)

// Limits configures the maximum in-flight calls per class.
type Limits struct {
	Submit   int64
	Poll     int64
	Transfer int64
}

// DefaultLimits returns the default per-class limits.
func DefaultLimits() Limits {
	return Limits{
		Submit:   DefaultSubmitLimit,
		Poll:     DefaultPollLimit,
		Transfer: DefaultTransferLimit,
	}
}

// Executor serializes access to external services behind weighted
// semaphores. The zero value is not usable; construct with New.
type Executor struct {
	sems map[Class]*semaphore.Weighted
}

// New builds an executor with the given limits. Non-positive limits fall
// back to the defaults.
func New(limits Limits) *Executor {
	def := DefaultLimits()
	if limits.Submit <= 0 {
		limits.Submit = def.Submit
	}
	if limits.Poll <= 0 {
		limits.Poll = def.Poll
	}
	if limits.Transfer <= 0 {
		limits.Transfer = def.Transfer
	}
	return &Executor{
		sems: map[Class]*semaphore.Weighted{
			ClassSubmit:   semaphore.NewWeighted(limits.Submit),
			ClassPoll:     semaphore.NewWeighted(limits.Poll),
			ClassTransfer: semaphore.NewWeighted(limits.Transfer),
		},
	}
}

// Do runs fn once a slot in the class is available. Acquisition blocks in
// FIFO order; if ctx is cancelled while waiting, fn never runs and the
// context error is returned.
func (e *Executor) Do(ctx context.Context, class Class, fn func(ctx context.Context) error) error {
	sem, ok := e.sems[class]
	if !ok {
		return fmt.Errorf("executor: unknown call class %q", class)
	}
	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer sem.Release(1)
	return fn(ctx)
}
