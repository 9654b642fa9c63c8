package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-events-console/pkg/jobs"
)

const refreshJobType = "viewmodel_refresh"

// RefreshDispatcher moves post-mutation refreshes off the write path. Each
// settled key becomes a queued job; repeats of a key still waiting coalesce.
type RefreshDispatcher struct {
	queue  *jobs.Queue
	hooks  []SettleHook
	logger *zap.Logger
}

// NewRefreshDispatcher builds a dispatcher fanning every settled key out to hooks.
func NewRefreshDispatcher(cfg jobs.QueueConfig, hooks ...SettleHook) *RefreshDispatcher {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	d := &RefreshDispatcher{hooks: hooks, logger: cfg.Logger}
	d.queue = jobs.NewQueue("viewmodel-refresh", d.handle, cfg)
	return d
}

// Start launches the workers.
func (d *RefreshDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop waits for the workers to exit.
func (d *RefreshDispatcher) Stop() {
	d.queue.Stop()
}

// Pending reports queued keys not yet picked up.
func (d *RefreshDispatcher) Pending() int {
	return d.queue.Pending()
}

// OnMutationSettled enqueues a refresh for key.
func (d *RefreshDispatcher) OnMutationSettled(_ context.Context, key string) error {
	queued, err := d.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Key: key, Type: refreshJobType})
	if err != nil {
		return err
	}
	if !queued {
		d.logger.Debug("refresh coalesced", zap.String("key", key))
	}
	return nil
}

func (d *RefreshDispatcher) handle(ctx context.Context, job jobs.Job) error {
	var errs []error
	for _, hook := range d.hooks {
		if err := hook.OnMutationSettled(ctx, job.Key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
