// Package orchestrator drives batches of remote jobs from submission to a
// terminal status: deduplicated submission, bounded polling with retry, and
// durable record-keeping that survives restarts.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/batchkit/batchkit/pkg/config"
	"github.com/batchkit/batchkit/pkg/core"
	"github.com/batchkit/batchkit/pkg/executor"
	"github.com/batchkit/batchkit/pkg/retry"
)

// Orchestrator coordinates the job service, the durable state store, and
// the rate-limited executor. All methods are safe for concurrent use.
type Orchestrator struct {
	svc    core.JobService
	store  core.StateStore
	cfg    config.Config
	policy retry.Policy
	exec   *executor.Executor
	logger *slog.Logger

	metrics *Metrics
	now     func() time.Time
	newID   func() string
	randFn  func() float64

	mu        sync.RWMutex
	eventSubs []chan core.Event
}

// New creates an orchestrator for the given service and store.
func New(svc core.JobService, store core.StateStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		svc:    svc,
		store:  store,
		cfg:    config.Default(),
		policy: retry.DefaultPolicy(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		randFn: rand.Float64,
	}
	for _, opt := range opts {
		opt.ApplyOrchestrator(o)
	}
	if o.exec == nil {
		o.exec = executor.New(executor.Limits{
			Submit:   o.cfg.SubmissionConcurrency,
			Poll:     o.cfg.PollConcurrency,
			Transfer: o.cfg.TransferConcurrency,
		})
	}
	if o.metrics == nil {
		o.metrics = NewMetrics(nil)
	}
	return o
}

// SubmitResult is the per-spec outcome of a batch submission.
type SubmitResult struct {
	Spec core.JobSpec

	// Record is the tracked record, either freshly created or the live
	// duplicate that suppressed resubmission. Nil when Err is set.
	Record *core.JobRecord

	// Deduped is true when an existing live record was reused.
	Deduped bool

	Err error
}

// SubmitJobs submits the specs as one batch. Specs whose fingerprint
// matches a live record, in the store or earlier in the same call, are not
// resubmitted. Failures are isolated per spec; the returned error is
// non-nil only when the state store fails, which aborts the call.
func (o *Orchestrator) SubmitJobs(ctx context.Context, specs []core.JobSpec) ([]SubmitResult, error) {
	results := make([]SubmitResult, len(specs))
	for i, spec := range specs {
		results[i].Spec = spec
	}

	// One submission per fingerprint; later duplicates in the same call
	// share the leader's outcome.
	leaders := make(map[string]int)
	duplicateOf := make(map[int]int)
	var pending []int

	for i, spec := range specs {
		if err := spec.Validate(); err != nil {
			results[i].Err = err
			continue
		}
		fp := spec.Fingerprint()
		if leader, ok := leaders[fp]; ok {
			duplicateOf[i] = leader
			continue
		}
		leaders[fp] = i

		existing, err := o.store.FindByFingerprint(ctx, fp)
		if err != nil {
			return results, fmt.Errorf("submit: find by fingerprint: %w", err)
		}
		if existing != nil {
			o.logger.Info("submission deduplicated",
				"name", spec.Name, "record_id", existing.ID, "remote_id", existing.RemoteID)
			o.metrics.dedupTotal.Inc()
			results[i].Record = existing
			results[i].Deduped = true
			continue
		}
		pending = append(pending, i)
	}

	var (
		wg       sync.WaitGroup
		storeMu  sync.Mutex
		storeErr error
	)
	for _, i := range pending {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			spec := specs[i]

			remoteID, err := o.submitOne(ctx, spec)
			if err != nil {
				o.logger.Warn("submission failed", "name", spec.Name, "error", err)
				results[i].Err = err
				return
			}

			rec := core.NewJobRecord(o.newID(), spec, remoteID, o.now())
			if err := o.store.Upsert(ctx, rec); err != nil {
				storeMu.Lock()
				storeErr = err
				storeMu.Unlock()
				results[i].Err = err
				return
			}

			o.logger.Info("job submitted", "name", spec.Name, "record_id", rec.ID, "remote_id", remoteID)
			o.metrics.submissionsTotal.Inc()
			o.metrics.activeJobs.Inc()
			o.emit(&core.JobSubmitted{Record: rec, Timestamp: rec.CreatedAt})
			results[i].Record = rec
		}()
	}
	wg.Wait()

	for i, leader := range duplicateOf {
		if results[leader].Err != nil {
			results[i].Err = results[leader].Err
			continue
		}
		results[i].Record = results[leader].Record
		results[i].Deduped = true
	}

	if storeErr != nil {
		return results, fmt.Errorf("submit: store: %w", storeErr)
	}
	return results, nil
}

// submitOne calls the job service through the submit slot, retrying per
// the policy, and returns the service-assigned identifier.
func (o *Orchestrator) submitOne(ctx context.Context, spec core.JobSpec) (string, error) {
	var remoteID string
	err := o.callWithRetry(ctx, executor.ClassSubmit, "submit", func(ctx context.Context) error {
		id, err := o.svc.Submit(ctx, spec)
		remoteID = id
		return err
	})
	return remoteID, err
}

// callWithRetry runs op through the given executor class, retrying
// classified retryable failures until the policy gives up.
func (o *Orchestrator) callWithRetry(ctx context.Context, class executor.Class, op string, fn func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := o.exec.Do(ctx, class, fn)
		if err == nil {
			return nil
		}
		decision := o.policy.Decide(core.KindOf(err), attempt)
		if !decision.Retry {
			return err
		}
		o.metrics.retriesTotal.Inc()
		o.logger.Debug("retrying call", "op", op, "attempt", attempt, "delay", decision.Delay, "error", err)
		if werr := retry.Wait(ctx, decision.Delay); werr != nil {
			return err
		}
	}
}

// PollUntilComplete polls the job service until every record is terminal,
// the configured poll timeout elapses, or ctx is cancelled. Records are
// mutated in place; every observed change is persisted before it is
// reflected to the caller. On timeout the records are returned as they
// stand, with a nil error. Only context cancellation and store failures
// return a non-nil error.
func (o *Orchestrator) PollUntilComplete(ctx context.Context, records []*core.JobRecord) ([]*core.JobRecord, error) {
	deadline := o.now().Add(o.cfg.PollTimeout)

	for {
		var pending []*core.JobRecord
		for _, rec := range records {
			if rec != nil && !rec.Terminal() {
				pending = append(pending, rec)
			}
		}
		if len(pending) == 0 {
			return records, nil
		}
		if !o.now().Before(deadline) {
			o.logger.Warn("poll timeout elapsed", "pending", len(pending))
			return records, nil
		}

		o.metrics.pollCyclesTotal.Inc()

		// One in-flight poll per record; the executor bounds the fan-out.
		var (
			wg       sync.WaitGroup
			storeMu  sync.Mutex
			storeErr error
		)
		for _, rec := range pending {
			rec := rec
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := o.pollOne(ctx, rec); err != nil {
					storeMu.Lock()
					storeErr = err
					storeMu.Unlock()
				}
			}()
		}
		wg.Wait()

		if storeErr != nil {
			return records, fmt.Errorf("poll: store: %w", storeErr)
		}
		if ctx.Err() != nil {
			return records, ctx.Err()
		}

		// Jitter spreads cycles across concurrent batches.
		sleep := o.cfg.PollInterval + time.Duration(o.randFn()*float64(o.cfg.PollInterval)/4)
		if err := retry.Wait(ctx, sleep); err != nil {
			return records, ctx.Err()
		}
	}
}

// pollOne describes one remote job and applies the observation to the
// record. Service failures are contained to the record: retryable kinds
// leave it pending for the next cycle, others fail the job. The returned
// error is non-nil only for store failures.
func (o *Orchestrator) pollOne(ctx context.Context, rec *core.JobRecord) error {
	var desc core.JobDescription
	err := o.exec.Do(ctx, executor.ClassPoll, func(ctx context.Context) error {
		d, derr := o.svc.Describe(ctx, rec.RemoteID)
		desc = d
		return derr
	})
	now := o.now()

	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		rec.AttemptCount++
		rec.LastError = err.Error()

		decision := o.policy.Decide(core.KindOf(err), rec.AttemptCount)
		if decision.Retry {
			o.metrics.retriesTotal.Inc()
			o.logger.Debug("poll failed, will retry",
				"record_id", rec.ID, "attempt", rec.AttemptCount, "error", err)
			o.emit(&core.JobRetrying{Record: rec, Attempt: rec.AttemptCount, Error: err, Timestamp: now})
			return o.store.Upsert(ctx, rec)
		}

		o.logger.Warn("poll failed permanently", "record_id", rec.ID, "error", err)
		if ferr := rec.Fail(err.Error(), now); ferr != nil {
			return nil
		}
		if serr := o.store.Upsert(ctx, rec); serr != nil {
			return serr
		}
		o.metrics.jobsTotal.WithLabelValues(outcomeFailed).Inc()
		o.metrics.activeJobs.Dec()
		o.emit(&core.JobFailed{Record: rec, Error: err, Timestamp: now})
		return nil
	}

	rec.AttemptCount = 0
	rec.LastCheckedAt = &now

	previous := rec.Status
	changed, aerr := rec.ApplyStatus(desc.Status, now)
	if aerr != nil {
		// Statuses outside the tracked state machine are observations,
		// not transitions.
		if errors.Is(aerr, core.ErrUnknownStatus) {
			o.logger.Debug("ignoring unknown status", "record_id", rec.ID, "status", desc.Status)
			return o.store.Upsert(ctx, rec)
		}
		return aerr
	}
	if !changed {
		return o.store.Upsert(ctx, rec)
	}

	if rec.Status == core.StatusFailed && desc.Reason != "" {
		rec.LastError = desc.Reason
	}
	if err := o.store.Upsert(ctx, rec); err != nil {
		return err
	}

	o.logger.Info("job status changed",
		"record_id", rec.ID, "from", previous, "to", rec.Status)
	o.emit(&core.JobStatusChanged{Record: rec, Previous: previous, Timestamp: now})

	switch rec.Status {
	case core.StatusSucceeded:
		o.metrics.jobsTotal.WithLabelValues(outcomeSucceeded).Inc()
		o.metrics.activeJobs.Dec()
		o.emit(&core.JobSucceeded{Record: rec, Timestamp: now})
	case core.StatusFailed:
		o.metrics.jobsTotal.WithLabelValues(outcomeFailed).Inc()
		o.metrics.activeJobs.Dec()
		o.emit(&core.JobFailed{Record: rec, Error: errors.New(rec.LastError), Timestamp: now})
	}
	return nil
}

// CancelResult is the per-record outcome of a batch cancellation.
type CancelResult struct {
	ID     string
	Record *core.JobRecord
	Err    error
}

// CancelJobs asks the service to terminate the given records. Terminal
// records are skipped; the terminal status of a cancelled job is still
// observed through polling. Failures are isolated per record; only store
// failures abort the call.
func (o *Orchestrator) CancelJobs(ctx context.Context, recordIDs []string, reason string) ([]CancelResult, error) {
	results := make([]CancelResult, len(recordIDs))

	for i, id := range recordIDs {
		results[i].ID = id

		rec, err := o.store.Get(ctx, id)
		if err != nil {
			return results, fmt.Errorf("cancel: store: %w", err)
		}
		if rec == nil {
			results[i].Err = core.ErrRecordNotFound
			continue
		}
		results[i].Record = rec
		if rec.Terminal() {
			continue
		}

		err = o.callWithRetry(ctx, executor.ClassSubmit, "cancel", func(ctx context.Context) error {
			return o.svc.Cancel(ctx, rec.RemoteID, reason)
		})
		if err != nil {
			o.logger.Warn("cancel failed", "record_id", id, "error", err)
			results[i].Err = err
			continue
		}
		o.logger.Info("cancel requested", "record_id", id, "remote_id", rec.RemoteID, "reason", reason)
	}
	return results, nil
}

// ResumeActive reloads all non-terminal records from the store, typically
// after a restart. The returned records can be handed straight to
// PollUntilComplete; nothing is resubmitted.
func (o *Orchestrator) ResumeActive(ctx context.Context) ([]*core.JobRecord, error) {
	records, err := o.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}
	o.metrics.activeJobs.Set(float64(len(records)))
	o.logger.Info("resumed active jobs", "count", len(records))
	return records, nil
}
