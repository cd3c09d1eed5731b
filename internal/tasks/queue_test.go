package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, q *Queue, id string, want Status) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		got, ok := q.Status(id)
		require.True(t, ok)
		if got == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	got, _ := q.Status(id)
	t.Fatalf("task %s never reached %s, last status %s", id, want, got)
}

func TestQueueRunsTask(t *testing.T) {
	q := NewQueue(2)
	defer q.Shutdown()

	done := make(chan struct{})
	id, err := q.Enqueue("transcribe", "video-1", func(ctx context.Context) error {
		close(done)
		return nil
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("task never ran")
	}
	waitForStatus(t, q, id, StatusDone)
}

func TestQueueRecordsFailure(t *testing.T) {
	q := NewQueue(1)
	defer q.Shutdown()

	id, err := q.Enqueue("transcribe", "video-1", func(ctx context.Context) error {
		return errors.New("boom")
	})
	require.NoError(t, err)
	waitForStatus(t, q, id, StatusFailed)
}

func TestQueueRecoversFromPanic(t *testing.T) {
	q := NewQueue(1)
	defer q.Shutdown()

	id, err := q.Enqueue("transcribe", "video-1", func(ctx context.Context) error {
		panic("boom")
	})
	require.NoError(t, err)
	waitForStatus(t, q, id, StatusFailed)

	// The worker must survive to run the next task.
	id2, err := q.Enqueue("transcribe", "video-2", func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	waitForStatus(t, q, id2, StatusDone)
}

func TestQueueCancelRunning(t *testing.T) {
	q := NewQueue(1)
	defer q.Shutdown()

	started := make(chan struct{})
	id, err := q.Enqueue("transcribe", "video-1", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)

	<-started
	q.Cancel(id)
	waitForStatus(t, q, id, StatusCanceled)
}

func TestQueueCancelPending(t *testing.T) {
	q := NewQueue(1)
	defer q.Shutdown()

	release := make(chan struct{})
	_, err := q.Enqueue("transcribe", "blocker", func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	ran := false
	id, err := q.Enqueue("transcribe", "video-2", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)

	q.Cancel(id)
	close(release)
	waitForStatus(t, q, id, StatusCanceled)
	assert.False(t, ran)
}

func TestQueueUnknownTask(t *testing.T) {
	q := NewQueue(1)
	defer q.Shutdown()

	_, ok := q.Status("nope")
	assert.False(t, ok)
}

func TestQueueEnqueueAfterShutdown(t *testing.T) {
	q := NewQueue(1)
	q.Shutdown()

	_, err := q.Enqueue("transcribe", "video-1", func(ctx context.Context) error {
		return nil
	})
	require.Error(t, err)

	// A second Shutdown must also be safe.
	q.Shutdown()
}

func TestQueueEvictsOldFinishedTasks(t *testing.T) {
	q := NewQueue(1)
	defer q.Shutdown()

	q.mu.Lock()
	q.retain = 2
	q.mu.Unlock()

	var ids []string
	for range 3 {
		id, err := q.Enqueue("transcribe", "video", func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err)
		waitForStatus(t, q, id, StatusDone)
		ids = append(ids, id)
	}

	_, ok := q.Status(ids[0])
	assert.False(t, ok, "oldest finished task must leave the registry")
	_, ok = q.Status(ids[2])
	assert.True(t, ok)
}
