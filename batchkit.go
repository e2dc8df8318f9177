// Package batchkit orchestrates batches of jobs on a remote batch-compute
// service: deduplicated submission, rate-limited polling with retry, durable
// job state, and bulk input/output transfers.
//
// This is the main package users should import. It re-exports the public
// types from the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	// Create the durable store and the orchestrator
//	db, _ := gorm.Open(sqlite.Open("batchkit.db"), &gorm.Config{})
//	store := batchkit.NewGormStore(db)
//	store.Migrate(context.Background())
//	orch := batchkit.New(svc, store)
//
//	// Submit a batch and wait for it to finish
//	results, _ := orch.SubmitJobs(ctx, specs)
//	records := make([]*batchkit.JobRecord, 0, len(results))
//	for _, r := range results {
//	    if r.Err == nil {
//	        records = append(records, r.Record)
//	    }
//	}
//	orch.PollUntilComplete(ctx, records)
package batchkit

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/batchkit/batchkit/pkg/config"
	"github.com/batchkit/batchkit/pkg/core"
	"github.com/batchkit/batchkit/pkg/executor"
	"github.com/batchkit/batchkit/pkg/orchestrator"
	"github.com/batchkit/batchkit/pkg/retry"
	"github.com/batchkit/batchkit/pkg/schedule"
	"github.com/batchkit/batchkit/pkg/store"
	"github.com/batchkit/batchkit/pkg/transfer"
)

// Type aliases for the public API
type (
	// JobSpec is the immutable description of one unit of work.
	JobSpec = core.JobSpec

	// JobRecord is the durable orchestration record for one submitted job.
	JobRecord = core.JobRecord

	// JobStatus represents the last observed state of a remote job.
	JobStatus = core.JobStatus

	// StatusChange is one observed status transition.
	StatusChange = core.StatusChange

	// StatusHistory is the append-only sequence of observed transitions.
	StatusHistory = core.StatusHistory

	// ObjectRef identifies one object in remote storage.
	ObjectRef = core.ObjectRef

	// ResourceSpec describes the compute resources a job requests.
	ResourceSpec = core.ResourceSpec

	// JobService is the remote job-execution collaborator.
	JobService = core.JobService

	// JobDescription is the status snapshot returned by the job service.
	JobDescription = core.JobDescription

	// ObjectStore is the object-storage collaborator for bulk transfers.
	ObjectStore = core.ObjectStore

	// StateStore is the durable persistence layer for job records.
	StateStore = core.StateStore

	// ErrorKind classifies a failure from an external collaborator.
	ErrorKind = core.ErrorKind

	// ServiceError is a classified failure from an external collaborator.
	ServiceError = core.ServiceError

	// Event is the interface for all orchestration events.
	Event = core.Event

	// JobSubmitted is emitted when the job service accepts a submission.
	JobSubmitted = core.JobSubmitted

	// JobStatusChanged is emitted when a poll observes a new status.
	JobStatusChanged = core.JobStatusChanged

	// JobRetrying is emitted when a retryable failure schedules another attempt.
	JobRetrying = core.JobRetrying

	// JobSucceeded is emitted when a job reaches SUCCEEDED.
	JobSucceeded = core.JobSucceeded

	// JobFailed is emitted when a job reaches FAILED.
	JobFailed = core.JobFailed

	// Orchestrator drives batches from submission to a terminal status.
	Orchestrator = orchestrator.Orchestrator

	// Option configures an Orchestrator.
	Option = orchestrator.Option

	// SubmitResult is the per-spec outcome of a batch submission.
	SubmitResult = orchestrator.SubmitResult

	// CancelResult is the per-record outcome of a batch cancellation.
	CancelResult = orchestrator.CancelResult

	// ScheduledBatch describes a recurring batch.
	ScheduledBatch = orchestrator.ScheduledBatch

	// Policy holds the backoff parameters for retrying classified failures.
	Policy = retry.Policy

	// Executor bounds concurrent calls to external services.
	Executor = executor.Executor

	// Limits configures the maximum in-flight calls per class.
	Limits = executor.Limits

	// Config holds the tunable parameters of the orchestration engine.
	Config = config.Config

	// GormStore implements StateStore using GORM.
	GormStore = store.GormStore

	// Transferer performs bulk uploads and downloads against an object store.
	Transferer = transfer.Transferer

	// TransferItem pairs one remote object with one local file path.
	TransferItem = transfer.Item

	// TransferResult is the per-item outcome of a bulk transfer.
	TransferResult = transfer.Result

	// Schedule computes the next run time for a recurring batch.
	Schedule = schedule.Schedule
)

// Status constants
const (
	StatusSubmitted = core.StatusSubmitted
	StatusRunnable  = core.StatusRunnable
	StatusStarting  = core.StatusStarting
	StatusRunning   = core.StatusRunning
	StatusSucceeded = core.StatusSucceeded
	StatusFailed    = core.StatusFailed
)

// Error kind constants
const (
	KindUnknown          = core.KindUnknown
	KindThrottled        = core.KindThrottled
	KindTransient        = core.KindTransient
	KindInvalidRequest   = core.KindInvalidRequest
	KindPermissionDenied = core.KindPermissionDenied
	KindNotFound         = core.KindNotFound
	KindInvariant        = core.KindInvariant
)

// Error variables
var (
	ErrTerminalTransition = core.ErrTerminalTransition
	ErrUnknownStatus      = core.ErrUnknownStatus
	ErrRecordNotFound     = core.ErrRecordNotFound
	ErrMissingName        = core.ErrMissingName
	ErrMissingQueue       = core.ErrMissingQueue
	ErrMissingDefinition  = core.ErrMissingDefinition
)

// New creates an orchestrator for the given service and store.
func New(svc JobService, st StateStore, opts ...Option) *Orchestrator {
	return orchestrator.New(svc, st, opts...)
}

// NewGormStore creates a new GORM-backed state store.
func NewGormStore(db *gorm.DB) *GormStore {
	return store.NewGormStore(db)
}

// NewServiceError wraps err with a classification for op.
func NewServiceError(kind ErrorKind, op string, err error) *ServiceError {
	return core.NewServiceError(kind, op, err)
}

// KindOf extracts the classification from err.
func KindOf(err error) ErrorKind {
	return core.KindOf(err)
}

// NewTransferer creates a bulk transferer.
func NewTransferer(objects ObjectStore, exec *Executor, policy Policy, logger *slog.Logger) *Transferer {
	return transfer.New(objects, exec, policy, logger)
}

// NewExecutor builds an executor with the given per-class limits.
func NewExecutor(limits Limits) *Executor {
	return executor.New(limits)
}

// DefaultPolicy returns the default retry policy.
func DefaultPolicy() Policy {
	return retry.DefaultPolicy()
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads configuration from an optional YAML file and BATCHKIT_*
// environment variables, layered over the defaults.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// Orchestrator option functions

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return orchestrator.WithConfig(cfg)
}

// WithLogger sets the orchestrator logger.
func WithLogger(logger *slog.Logger) Option {
	return orchestrator.WithLogger(logger)
}

// WithPolicy replaces the retry policy for remote calls.
func WithPolicy(policy Policy) Option {
	return orchestrator.WithPolicy(policy)
}

// WithExecutor replaces the call executor.
func WithExecutor(exec *Executor) Option {
	return orchestrator.WithExecutor(exec)
}

// WithMetrics registers orchestration metrics on the given registry.
func WithMetrics(reg prometheus.Registerer) Option {
	return orchestrator.WithMetrics(reg)
}

// Schedule functions

// Every creates a schedule that runs at fixed intervals.
func Every(d time.Duration) Schedule {
	return schedule.Every(d)
}

// Daily creates a schedule that runs at a specific time each day.
func Daily(hour, minute int) Schedule {
	return schedule.Daily(hour, minute)
}

// Weekly creates a schedule that runs at a specific day and time each week.
func Weekly(day time.Weekday, hour, minute int) Schedule {
	return schedule.Weekly(day, hour, minute)
}

// Cron creates a schedule from a cron expression.
func Cron(expr string) Schedule {
	return schedule.Cron(expr)
}
