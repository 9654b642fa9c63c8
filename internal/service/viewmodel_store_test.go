package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
)

// scriptedLoader hands out one controllable result per call.
type scriptedLoader struct {
	mu    sync.Mutex
	calls []chan loadResult
	ready chan int
}

type loadResult struct {
	data string
	err  error
}

func newScriptedLoader() *scriptedLoader {
	return &scriptedLoader{ready: make(chan int, 8)}
}

func (l *scriptedLoader) load(ctx context.Context) (string, error) {
	ch := make(chan loadResult, 1)
	l.mu.Lock()
	l.calls = append(l.calls, ch)
	idx := len(l.calls) - 1
	l.mu.Unlock()
	l.ready <- idx
	r := <-ch
	return r.data, r.err
}

func (l *scriptedLoader) resolve(idx int, data string, err error) {
	l.mu.Lock()
	ch := l.calls[idx]
	l.mu.Unlock()
	ch <- loadResult{data: data, err: err}
}

func TestStoreRefreshReplacesSnapshot(t *testing.T) {
	calls := 0
	store := NewStore[string]("events", func(context.Context) (string, error) {
		calls++
		return "v" + string(rune('0'+calls)), nil
	})

	snap := store.Snapshot()
	assert.False(t, snap.HasData)
	assert.False(t, snap.Loading)

	snap, err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", snap.Data)
	assert.True(t, snap.HasData)
	assert.False(t, snap.Loading)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.False(t, snap.RefreshedAt.IsZero())

	snap, err = store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", snap.Data)
	assert.Equal(t, 1, calls)
}

func TestStoreFailureKeepsPreviousData(t *testing.T) {
	fail := false
	store := NewStore[string]("roster", func(context.Context) (string, error) {
		if fail {
			return "", appErrors.NewNetworkError(errors.New("refused"))
		}
		return "good", nil
	})
	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	fail = true
	snap, err := store.Refresh(context.Background())
	require.ErrorIs(t, err, appErrors.ErrNetwork)
	assert.Equal(t, "good", snap.Data)
	assert.ErrorIs(t, snap.Err, appErrors.ErrNetwork)

	fail = false
	snap, err = store.Refresh(context.Background())
	require.NoError(t, err)
	assert.NoError(t, snap.Err)
}

func TestStoreDiscardsSupersededRefresh(t *testing.T) {
	loader := newScriptedLoader()
	store := NewStore[string]("events", loader.load)

	type outcome struct {
		snap Snapshot[string]
		err  error
	}
	aDone := make(chan outcome, 1)
	bDone := make(chan outcome, 1)

	go func() {
		snap, err := store.Refresh(context.Background())
		aDone <- outcome{snap, err}
	}()
	a := <-loader.ready

	go func() {
		snap, err := store.Refresh(context.Background())
		bDone <- outcome{snap, err}
	}()
	b := <-loader.ready

	assert.True(t, store.Snapshot().Loading)

	loader.resolve(b, "B", nil)
	bRes := <-bDone
	require.NoError(t, bRes.err)
	assert.Equal(t, "B", bRes.snap.Data)

	loader.resolve(a, "A", nil)
	aRes := <-aDone
	require.ErrorIs(t, aRes.err, appErrors.ErrRefreshSuperseded)

	final := store.Snapshot()
	assert.Equal(t, "B", final.Data)
	assert.False(t, final.Loading)
}

func TestStoreLoadingUntilNewestCompletes(t *testing.T) {
	loader := newScriptedLoader()
	store := NewStore[string]("events", loader.load)

	aDone := make(chan error, 1)
	bDone := make(chan error, 1)
	go func() {
		_, err := store.Refresh(context.Background())
		aDone <- err
	}()
	a := <-loader.ready
	go func() {
		_, err := store.Refresh(context.Background())
		bDone <- err
	}()
	b := <-loader.ready

	loader.resolve(a, "A", nil)
	require.ErrorIs(t, <-aDone, appErrors.ErrRefreshSuperseded)
	snap := store.Snapshot()
	assert.True(t, snap.Loading)
	assert.False(t, snap.HasData)

	loader.resolve(b, "B", nil)
	require.NoError(t, <-bDone)
	assert.False(t, store.Snapshot().Loading)
}

func TestStoreSupersededRunContextIsCancelled(t *testing.T) {
	var mu sync.Mutex
	var ctxs []context.Context
	started := make(chan struct{}, 2)
	store := NewStore[string]("events", func(ctx context.Context) (string, error) {
		mu.Lock()
		ctxs = append(ctxs, ctx)
		first := len(ctxs) == 1
		mu.Unlock()
		started <- struct{}{}
		if first {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "fresh", nil
	})

	aDone := make(chan error, 1)
	go func() {
		_, err := store.Refresh(context.Background())
		aDone <- err
	}()
	<-started

	snap, err := store.Refresh(context.Background())
	<-started
	require.NoError(t, err)
	assert.Equal(t, "fresh", snap.Data)
	require.ErrorIs(t, <-aDone, appErrors.ErrRefreshSuperseded)
	assert.NoError(t, store.Snapshot().Err)
}

func TestStoreSubscribeResetAndScope(t *testing.T) {
	store := NewStore[string]("roster:7", func(context.Context) (string, error) { return "data", nil },
		WithScope[string](func(key string) bool { return key == "attendance:7:1" }))

	var notified []string
	unsubscribe := store.Subscribe(func(s Snapshot[string]) { notified = append(notified, s.Data) })

	require.NoError(t, store.OnMutationSettled(context.Background(), "attendance:8:1"))
	assert.Empty(t, notified)

	require.NoError(t, store.OnMutationSettled(context.Background(), "attendance:7:1"))
	assert.Equal(t, []string{"data"}, notified)

	unsubscribe()
	_, err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, notified, 1)

	store.Reset()
	snap := store.Snapshot()
	assert.False(t, snap.HasData)
	assert.Equal(t, "", snap.Data)
	assert.False(t, snap.Loading)
}

func TestStoreLoadWaitsForInflightFirstRefresh(t *testing.T) {
	loader := newScriptedLoader()
	store := NewStore[string]("events", loader.load)

	refreshDone := make(chan error, 1)
	go func() {
		_, err := store.Refresh(context.Background())
		refreshDone <- err
	}()
	first := <-loader.ready

	type outcome struct {
		snap Snapshot[string]
		err  error
	}
	loaded := make(chan outcome, 1)
	go func() {
		snap, err := store.Load(context.Background())
		loaded <- outcome{snap, err}
	}()

	select {
	case <-loaded:
		t.Fatal("load returned before the first refresh settled")
	case <-time.After(50 * time.Millisecond):
	}

	loader.resolve(first, "events", nil)
	require.NoError(t, <-refreshDone)
	res := <-loaded
	require.NoError(t, res.err)
	assert.True(t, res.snap.HasData)
	assert.Equal(t, "events", res.snap.Data)
	assert.False(t, res.snap.Loading)

	loader.mu.Lock()
	assert.Len(t, loader.calls, 1)
	loader.mu.Unlock()
}

func TestStoreLoadReportsFailedInflightFirstRefresh(t *testing.T) {
	loader := newScriptedLoader()
	store := NewStore[string]("events", loader.load)

	go func() { _, _ = store.Refresh(context.Background()) }()
	first := <-loader.ready

	loaded := make(chan error, 1)
	go func() {
		_, err := store.Load(context.Background())
		loaded <- err
	}()
	time.Sleep(20 * time.Millisecond)

	timeout := appErrors.NewTimeoutError(errors.New("slow"))
	loader.resolve(first, "", timeout)
	for {
		select {
		case err := <-loaded:
			require.ErrorIs(t, err, appErrors.ErrTimeout)
			return
		case idx := <-loader.ready:
			// Load started after the failure settled and retried on its own.
			loader.resolve(idx, "", timeout)
		case <-time.After(2 * time.Second):
			t.Fatal("load did not return")
		}
	}
}

func TestStoreLoadStopsWaitingOnContext(t *testing.T) {
	loader := newScriptedLoader()
	store := NewStore[string]("events", loader.load)

	go func() { _, _ = store.Refresh(context.Background()) }()
	first := <-loader.ready
	defer loader.resolve(first, "late", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	snap, err := store.Load(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, snap.Loading)
}

func TestStoreApplySupersedesInflightRefresh(t *testing.T) {
	loader := newScriptedLoader()
	store := NewStore[string]("events", loader.load)

	go func() { _, _ = store.Refresh(context.Background()) }()
	loader.resolve(<-loader.ready, "A", nil)
	require.Eventually(t, func() bool { return store.Snapshot().HasData }, time.Second, 5*time.Millisecond)

	var mu sync.Mutex
	var notified []string
	store.Subscribe(func(s Snapshot[string]) {
		mu.Lock()
		notified = append(notified, s.Data)
		mu.Unlock()
	})

	staleDone := make(chan error, 1)
	go func() {
		_, err := store.Refresh(context.Background())
		staleDone <- err
	}()
	stale := <-loader.ready

	snap := store.Apply(func(data string) string { return data + " without 7" })
	assert.Equal(t, "A without 7", snap.Data)
	assert.False(t, snap.Loading)

	loader.resolve(stale, "B with 7", nil)
	require.ErrorIs(t, <-staleDone, appErrors.ErrRefreshSuperseded)
	assert.Equal(t, "A without 7", store.Snapshot().Data)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"A without 7"}, notified)
}

func TestStoreApplyKeepsEmptyStoreEmpty(t *testing.T) {
	store := NewStore[[]int]("events", func(context.Context) ([]int, error) { return []int{1}, nil })
	snap := store.Apply(func(data []int) []int { return append(data, 2) })
	assert.False(t, snap.HasData)
	assert.Nil(t, snap.Data)
}
