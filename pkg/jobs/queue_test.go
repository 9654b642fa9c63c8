package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRequiresStart(t *testing.T) {
	q := NewQueue("refresh", func(context.Context, Job) error { return nil }, QueueConfig{})
	_, err := q.Enqueue(Job{ID: "1"})
	assert.Error(t, err)
}

func TestQueueCoalescesQueuedKeys(t *testing.T) {
	release := make(chan struct{})
	var handled int32
	q := NewQueue("refresh", func(ctx context.Context, j Job) error {
		if j.ID == "blocker" {
			<-release
		}
		atomic.AddInt32(&handled, 1)
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job{ID: "blocker"})
	require.NoError(t, err)

	queued, err := q.Enqueue(Job{ID: "a", Key: "events"})
	require.NoError(t, err)
	assert.True(t, queued)
	queued, err = q.Enqueue(Job{ID: "b", Key: "events"})
	require.NoError(t, err)
	assert.False(t, queued)
	assert.Equal(t, 1, q.Pending())

	close(release)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&handled) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, q.Pending())
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	q := NewQueue("refresh", func(context.Context, Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("backend down")
		}
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job{ID: "r", Key: "event:1"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 3 }, time.Second, 5*time.Millisecond)
}
