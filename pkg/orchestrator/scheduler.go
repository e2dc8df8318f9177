package orchestrator

import (
	"context"
	"time"

	"github.com/batchkit/batchkit/pkg/core"
	"github.com/batchkit/batchkit/pkg/retry"
	"github.com/batchkit/batchkit/pkg/schedule"
)

// ScheduledBatch describes a recurring batch: at each scheduled time the
// Specs function produces the jobs to run.
type ScheduledBatch struct {
	Name     string
	Schedule schedule.Schedule

	// Specs builds the batch for one run. An empty result skips the run.
	Specs func(runAt time.Time) []core.JobSpec
}

// RunScheduled submits and drives the batch at every scheduled time until
// ctx is cancelled. Each run is submitted with deduplication and polled to
// completion before the next run is awaited; a run whose jobs fail does not
// stop the loop.
func (o *Orchestrator) RunScheduled(ctx context.Context, batch ScheduledBatch) error {
	for {
		next := batch.Schedule.Next(o.now())
		o.logger.Info("awaiting scheduled run", "batch", batch.Name, "at", next)

		if err := retry.Wait(ctx, next.Sub(o.now())); err != nil {
			return ctx.Err()
		}

		specs := batch.Specs(next)
		if len(specs) == 0 {
			o.logger.Debug("scheduled run produced no jobs", "batch", batch.Name)
			continue
		}

		results, err := o.SubmitJobs(ctx, specs)
		if err != nil {
			return err
		}

		var records []*core.JobRecord
		for _, res := range results {
			if res.Err != nil {
				o.logger.Warn("scheduled submission failed",
					"batch", batch.Name, "name", res.Spec.Name, "error", res.Err)
				continue
			}
			records = append(records, res.Record)
		}

		if _, err := o.PollUntilComplete(ctx, records); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}
