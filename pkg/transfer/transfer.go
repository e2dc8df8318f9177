// Package transfer moves job inputs and outputs between local files and
// object storage in bulk. Failures are contained per item.
package transfer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/batchkit/batchkit/pkg/core"
	"github.com/batchkit/batchkit/pkg/executor"
	"github.com/batchkit/batchkit/pkg/retry"
)

// Item pairs one remote object with one local file path.
type Item struct {
	Object    core.ObjectRef
	LocalPath string
}

// Result is the per-item outcome of a bulk transfer. Err is nil on success.
type Result struct {
	Item Item
	Err  error
}

// Transferer performs bulk uploads and downloads against an object store,
// bounded by the executor's transfer class and retried per the policy.
type Transferer struct {
	store  core.ObjectStore
	exec   *executor.Executor
	policy retry.Policy
	logger *slog.Logger
}

// New creates a transferer. A nil logger discards output.
func New(store core.ObjectStore, exec *executor.Executor, policy retry.Policy, logger *slog.Logger) *Transferer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Transferer{store: store, exec: exec, policy: policy, logger: logger}
}

// Download fetches each object to its local path. All items are attempted;
// one result is returned per item, in input order.
func (t *Transferer) Download(ctx context.Context, items []Item) []Result {
	return t.run(ctx, items, t.downloadOne)
}

// Upload sends each local file to its object. All items are attempted; one
// result is returned per item, in input order.
func (t *Transferer) Upload(ctx context.Context, items []Item) []Result {
	return t.run(ctx, items, t.uploadOne)
}

func (t *Transferer) run(ctx context.Context, items []Item, op func(context.Context, Item) error) []Result {
	results := make([]Result, len(items))
	var wg sync.WaitGroup

	for i, item := range items {
		i, item := i, item
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := t.withRetry(ctx, func(ctx context.Context) error {
				return op(ctx, item)
			})
			if err != nil {
				t.logger.Warn("transfer failed",
					"bucket", item.Object.Bucket,
					"key", item.Object.Key,
					"path", item.LocalPath,
					"error", err)
			}
			results[i] = Result{Item: item, Err: err}
		}()
	}
	wg.Wait()
	return results
}

func (t *Transferer) downloadOne(ctx context.Context, item Item) error {
	body, err := t.store.GetObject(ctx, item.Object.Bucket, item.Object.Key)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(item.LocalPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(item.LocalPath, body, 0o644)
}

func (t *Transferer) uploadOne(ctx context.Context, item Item) error {
	body, err := os.ReadFile(item.LocalPath)
	if err != nil {
		return err
	}
	return t.store.PutObject(ctx, item.Object.Bucket, item.Object.Key, body)
}

// withRetry runs op through the transfer slot, retrying classified
// retryable failures.
func (t *Transferer) withRetry(ctx context.Context, op func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := t.exec.Do(ctx, executor.ClassTransfer, op)
		if err == nil {
			return nil
		}
		decision := t.policy.Decide(core.KindOf(err), attempt)
		if !decision.Retry {
			return err
		}
		t.logger.Debug("retrying transfer", "attempt", attempt, "delay", decision.Delay, "error", err)
		if werr := retry.Wait(ctx, decision.Delay); werr != nil {
			return err
		}
	}
}
