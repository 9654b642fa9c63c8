package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
)

// Loader fetches and aggregates one view model.
type Loader[T any] func(ctx context.Context) (T, error)

// Snapshot is an immutable copy of a store's state.
type Snapshot[T any] struct {
	Data        T
	HasData     bool
	Err         error
	Loading     bool
	Generation  uint64
	RefreshedAt time.Time
}

// Meta renders the snapshot state for response envelopes.
func (s Snapshot[T]) Meta() map[string]interface{} {
	meta := map[string]interface{}{
		"loading":    s.Loading,
		"generation": s.Generation,
	}
	if !s.RefreshedAt.IsZero() {
		meta["refreshed_at"] = s.RefreshedAt
	}
	return meta
}

type refreshRecorder interface {
	RecordRefresh(store, outcome string)
}

// Store holds the latest view model for one screen along with the latest
// whole-view error and a loading flag. Every refresh replaces the data
// wholesale; a refresh that has been superseded by a newer one is cancelled
// and its result discarded.
type Store[T any] struct {
	name    string
	loader  Loader[T]
	scope   func(key string) bool
	metrics refreshRecorder
	logger  *zap.Logger
	now     func() time.Time

	mu          sync.Mutex
	data        T
	hasData     bool
	err         error
	latest      uint64
	settled     uint64
	cancel      context.CancelFunc
	refreshedAt time.Time
	nextSubID   int
	subscribers map[int]func(Snapshot[T])
	settledCh   chan struct{}
}

// StoreOption customises a store.
type StoreOption[T any] func(*Store[T])

// WithScope limits OnMutationSettled to keys accepted by scope.
func WithScope[T any](scope func(key string) bool) StoreOption[T] {
	return func(s *Store[T]) {
		s.scope = scope
	}
}

// WithRefreshMetrics records refresh outcomes.
func WithRefreshMetrics[T any](metrics refreshRecorder) StoreOption[T] {
	return func(s *Store[T]) {
		s.metrics = metrics
	}
}

// WithStoreLogger sets the store logger.
func WithStoreLogger[T any](logger *zap.Logger) StoreOption[T] {
	return func(s *Store[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore constructs an empty store around loader.
func NewStore[T any](name string, loader Loader[T], opts ...StoreOption[T]) *Store[T] {
	s := &Store[T]{
		name:        name,
		loader:      loader,
		logger:      zap.NewNop(),
		now:         time.Now,
		subscribers: make(map[int]func(Snapshot[T])),
		settledCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the store in logs and metrics.
func (s *Store[T]) Name() string {
	return s.name
}

// Refresh runs the loader. A newer Refresh cancels this one, which then
// returns ErrRefreshSuperseded without touching the store. A failed load keeps
// the previous data and records the error.
func (s *Store[T]) Refresh(ctx context.Context) (Snapshot[T], error) {
	s.mu.Lock()
	s.latest++
	gen := s.latest
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	data, err := s.loader(runCtx)
	cancel()

	s.mu.Lock()
	if gen != s.latest {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.record("superseded")
		s.logger.Debug("stale refresh discarded", zap.String("store", s.name), zap.Uint64("generation", gen))
		return snap, appErrors.ErrRefreshSuperseded
	}
	s.settleLocked(gen)
	s.cancel = nil
	if err != nil {
		s.err = err
	} else {
		s.data = data
		s.hasData = true
		s.err = nil
		s.refreshedAt = s.now().UTC()
	}
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if err != nil {
		s.record("failed")
		s.logger.Warn("view model refresh failed", zap.String("store", s.name), zap.Error(err))
	} else {
		s.record("ok")
	}
	for _, fn := range subs {
		fn(snap)
	}
	return snap, err
}

// Snapshot returns the current state.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Load returns the current snapshot, refreshing first if nothing was ever
// loaded. While a first refresh is already running, Load waits for it instead
// of returning an empty view.
func (s *Store[T]) Load(ctx context.Context) (Snapshot[T], error) {
	waited := false
	for {
		s.mu.Lock()
		snap := s.snapshotLocked()
		settled := s.settledCh
		s.mu.Unlock()

		switch {
		case snap.HasData:
			return snap, nil
		case snap.Loading:
			select {
			case <-settled:
				waited = true
				continue
			case <-ctx.Done():
				return snap, ctx.Err()
			}
		case waited:
			return snap, snap.Err
		}

		snap, err := s.Refresh(ctx)
		if errors.Is(err, appErrors.ErrRefreshSuperseded) {
			continue
		}
		return snap, err
	}
}

// Subscribe registers fn for every applied refresh. The returned function unsubscribes.
func (s *Store[T]) Subscribe(fn func(Snapshot[T])) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Reset drops all state and supersedes any refresh in flight.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	s.settleLocked(s.latest)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	var zero T
	s.data = zero
	s.hasData = false
	s.err = nil
	s.refreshedAt = time.Time{}
}

// Apply replaces the current data with fn(data) as a new generation. A refresh
// in flight is superseded so its result cannot bring back what fn removed. An
// empty store stays empty.
func (s *Store[T]) Apply(fn func(T) T) Snapshot[T] {
	s.mu.Lock()
	s.latest++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.hasData {
		s.data = fn(s.data)
	}
	s.settleLocked(s.latest)
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	s.record("applied")
	for _, sub := range subs {
		sub(snap)
	}
	return snap
}

// OnMutationSettled refreshes the store when key is in scope.
func (s *Store[T]) OnMutationSettled(ctx context.Context, key string) error {
	if s.scope != nil && !s.scope(key) {
		return nil
	}
	_, err := s.Refresh(ctx)
	if errors.Is(err, appErrors.ErrRefreshSuperseded) {
		return nil
	}
	return err
}

func (s *Store[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Data:        s.data,
		HasData:     s.hasData,
		Err:         s.err,
		Loading:     s.settled < s.latest,
		Generation:  s.settled,
		RefreshedAt: s.refreshedAt,
	}
}

// settleLocked marks gen as the settled generation and wakes Load waiters.
func (s *Store[T]) settleLocked(gen uint64) {
	s.settled = gen
	close(s.settledCh)
	s.settledCh = make(chan struct{})
}

func (s *Store[T]) subscribersLocked() []func(Snapshot[T]) {
	subs := make([]func(Snapshot[T]), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func (s *Store[T]) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordRefresh(s.name, outcome)
	}
}
