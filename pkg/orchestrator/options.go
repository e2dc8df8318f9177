package orchestrator

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/batchkit/batchkit/pkg/config"
	"github.com/batchkit/batchkit/pkg/executor"
	"github.com/batchkit/batchkit/pkg/retry"
)

// Option configures an Orchestrator.
type Option interface {
	ApplyOrchestrator(*Orchestrator)
}

type optionFunc func(*Orchestrator)

func (f optionFunc) ApplyOrchestrator(o *Orchestrator) { f(o) }

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return optionFunc(func(o *Orchestrator) {
		o.cfg = cfg
	})
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(o *Orchestrator) {
		o.logger = logger
	})
}

// WithPolicy replaces the retry policy for remote calls.
func WithPolicy(policy retry.Policy) Option {
	return optionFunc(func(o *Orchestrator) {
		o.policy = policy
	})
}

// WithExecutor replaces the call executor, overriding the concurrency
// limits derived from the configuration.
func WithExecutor(exec *executor.Executor) Option {
	return optionFunc(func(o *Orchestrator) {
		o.exec = exec
	})
}

// WithMetrics registers orchestration metrics on the given registry.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(o *Orchestrator) {
		o.metrics = NewMetrics(reg)
	})
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(o *Orchestrator) {
		o.now = now
	})
}
