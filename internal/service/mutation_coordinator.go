package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-events-console/internal/models"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
)

// SettleHook is notified after a mutation succeeds so dependent view models can refresh.
type SettleHook interface {
	OnMutationSettled(ctx context.Context, key string) error
}

// SettleHookFunc allows using plain functions as hooks.
type SettleHookFunc func(ctx context.Context, key string) error

// OnMutationSettled implements SettleHook.
func (f SettleHookFunc) OnMutationSettled(ctx context.Context, key string) error {
	return f(ctx, key)
}

// ConfirmationRequest describes a destructive action awaiting approval.
type ConfirmationRequest struct {
	Key    string
	Action string
	Target string
}

// Confirmer approves or declines destructive actions before any network call.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmationRequest) (bool, error)
}

// ConfirmerFunc allows using plain functions as confirmers.
type ConfirmerFunc func(ctx context.Context, req ConfirmationRequest) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(ctx context.Context, req ConfirmationRequest) (bool, error) {
	return f(ctx, req)
}

type confirmationKey struct{}

// WithConfirmation records the target the caller explicitly confirmed.
func WithConfirmation(ctx context.Context, target string) context.Context {
	return context.WithValue(ctx, confirmationKey{}, target)
}

// ContextConfirmer approves a request when the context carries a confirmation
// for the same target. No confirmation at all yields ErrConfirmationRequired.
type ContextConfirmer struct{}

// Confirm implements Confirmer.
func (ContextConfirmer) Confirm(ctx context.Context, req ConfirmationRequest) (bool, error) {
	target, ok := ctx.Value(confirmationKey{}).(string)
	if !ok || strings.TrimSpace(target) == "" {
		return false, appErrors.ErrConfirmationRequired
	}
	return strings.TrimSpace(target) == req.Target, nil
}

type mutationRecorder interface {
	RecordMutation(kind string, state models.MutationState)
}

// MutationCoordinator tracks in-flight writes per key. A key accepts one write
// at a time; different keys proceed concurrently.
type MutationCoordinator struct {
	mu      sync.Mutex
	states  map[string]*models.MutationStatus
	hooks   []SettleHook
	metrics mutationRecorder
	logger  *zap.Logger
	now     func() time.Time
}

// MutationCoordinatorOption customises the coordinator.
type MutationCoordinatorOption func(*MutationCoordinator)

// WithMutationMetrics records settled writes.
func WithMutationMetrics(metrics mutationRecorder) MutationCoordinatorOption {
	return func(c *MutationCoordinator) {
		c.metrics = metrics
	}
}

// WithSettleHooks registers hooks invoked after each successful write.
func WithSettleHooks(hooks ...SettleHook) MutationCoordinatorOption {
	return func(c *MutationCoordinator) {
		c.hooks = append(c.hooks, hooks...)
	}
}

// NewMutationCoordinator constructs a coordinator.
func NewMutationCoordinator(logger *zap.Logger, opts ...MutationCoordinatorOption) *MutationCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &MutationCoordinator{
		states: make(map[string]*models.MutationStatus),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddHook registers an additional settle hook.
func (c *MutationCoordinator) AddHook(hook SettleHook) {
	if hook == nil {
		return
	}
	c.mu.Lock()
	c.hooks = append(c.hooks, hook)
	c.mu.Unlock()
}

// Run executes write under key. A key already pending is rejected with a
// conflict error and write is not invoked. On failure the key returns to idle
// with the error kept for display; on success the settle hooks run.
func (c *MutationCoordinator) Run(ctx context.Context, key, kind string, write func(ctx context.Context) error) error {
	if err := c.begin(key); err != nil {
		return err
	}

	err := write(ctx)

	state := models.MutationStateSuccess
	if err != nil {
		state = models.MutationStateFailed
	}
	hooks := c.settle(key, err)
	if c.metrics != nil {
		c.metrics.RecordMutation(kind, state)
	}

	if err != nil {
		c.logger.Warn("mutation failed", zap.String("key", key), zap.String("kind", kind), zap.Error(err))
		return err
	}

	hookCtx := context.WithoutCancel(ctx)
	for _, hook := range hooks {
		if hookErr := hook.OnMutationSettled(hookCtx, key); hookErr != nil {
			c.logger.Warn("settle hook failed", zap.String("key", key), zap.Error(hookErr))
		}
	}
	return nil
}

// RunConfirmed asks confirmer before running a destructive write. A declined or
// missing confirmation performs no write.
func (c *MutationCoordinator) RunConfirmed(ctx context.Context, key, kind string, confirmer Confirmer, req ConfirmationRequest, write func(ctx context.Context) error) error {
	if c.Status(key).State == models.MutationStatePending {
		return appErrors.NewConflictError(key)
	}
	if confirmer == nil {
		return appErrors.ErrConfirmationRequired
	}
	req.Key = key
	ok, err := confirmer.Confirm(ctx, req)
	if err != nil {
		return err
	}
	if !ok {
		c.logger.Info("destructive mutation declined", zap.String("key", key), zap.String("action", req.Action))
		return appErrors.ErrConfirmationDeclined
	}
	return c.Run(ctx, key, kind, write)
}

// Status returns a copy of the state for key. Unknown keys are idle.
func (c *MutationCoordinator) Status(key string) models.MutationStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.states[key]; ok {
		return *st
	}
	return models.MutationStatus{Key: key, State: models.MutationStateIdle}
}

// StatusesWithPrefix returns copies of every known key starting with prefix.
func (c *MutationCoordinator) StatusesWithPrefix(prefix string) map[string]models.MutationStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]models.MutationStatus)
	for key, st := range c.states {
		if strings.HasPrefix(key, prefix) {
			out[key] = *st
		}
	}
	return out
}

// Forget drops settled keys starting with prefix. Pending keys are kept.
func (c *MutationCoordinator) Forget(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, st := range c.states {
		if strings.HasPrefix(key, prefix) && st.State != models.MutationStatePending {
			delete(c.states, key)
		}
	}
}

func (c *MutationCoordinator) begin(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[key]
	if ok && st.State == models.MutationStatePending {
		return appErrors.NewConflictError(key)
	}
	if !ok {
		st = &models.MutationStatus{Key: key}
		c.states[key] = st
	}
	st.State = models.MutationStatePending
	st.UpdatedAt = c.now().UTC()
	return nil
}

func (c *MutationCoordinator) settle(key string, err error) []SettleHook {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.states[key]
	st.UpdatedAt = c.now().UTC()
	if err != nil {
		st.State = models.MutationStateIdle
		st.LastOutcome = models.MutationStateFailed
		st.LastError = err.Error()
		st.LastErrorCode = appErrors.CodeOf(err)
		return nil
	}
	st.State = models.MutationStateSuccess
	st.LastOutcome = models.MutationStateSuccess
	st.LastError = ""
	st.LastErrorCode = ""
	hooks := make([]SettleHook, len(c.hooks))
	copy(hooks, c.hooks)
	return hooks
}
