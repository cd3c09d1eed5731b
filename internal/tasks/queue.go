// Package tasks provides a small background task queue: a fixed worker
// pool consuming (kind, payload) work items, with status polling and
// cancellation. It replaces ad hoc unmanaged goroutines for off-request
// work like transcription.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a queued task.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusDone     Status = "done"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Func is the unit of work. The context is canceled when the task is
// canceled or the queue shuts down.
type Func func(ctx context.Context) error

// Task is the queue's record of one submitted work item.
type Task struct {
	ID      string
	Kind    string
	Payload string
	Status  Status
	Err     error

	fn     Func
	cancel context.CancelFunc
}

// retainFinished bounds how many terminal tasks stay pollable before
// the oldest are dropped from the registry.
const retainFinished = 512

// Queue runs tasks on a fixed pool of workers.
type Queue struct {
	mu       sync.Mutex
	tasks    map[string]*Task
	finished []string // terminal task ids, oldest first
	retain   int
	pending  chan *Task
	closed   bool

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

// NewQueue starts a queue with the given number of workers (minimum 1)
// and buffered capacity for pending work.
func NewQueue(workers int) *Queue {
	if workers < 1 {
		workers = 1
	}

	ctx, stop := context.WithCancel(context.Background())
	q := &Queue{
		tasks:   make(map[string]*Task),
		retain:  retainFinished,
		pending: make(chan *Task, 256),
		baseCtx: ctx,
		stop:    stop,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	return q
}

// Enqueue submits a task and returns its id. Payload is an opaque label
// for status reporting (typically the video id).
func (q *Queue) Enqueue(kind, payload string, fn Func) (string, error) {
	t := &Task{
		ID:      uuid.NewString(),
		Kind:    kind,
		Payload: payload,
		Status:  StatusPending,
		fn:      fn,
		cancel:  func() {},
	}

	// The send happens under the lock so Shutdown can never close the
	// channel between the closed check and the send.
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return "", fmt.Errorf("tasks: queue is shut down")
	}
	select {
	case q.pending <- t:
		q.tasks[t.ID] = t
		return t.ID, nil
	default:
		return "", fmt.Errorf("tasks: queue full")
	}
}

// Status returns the current state of a task, or false when unknown.
func (q *Queue) Status(id string) (Status, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	t, ok := q.tasks[id]
	if !ok {
		return "", false
	}
	return t.Status, true
}

// Cancel cancels a pending or running task. Canceling a finished task is
// a no-op.
func (q *Queue) Cancel(id string) {
	q.mu.Lock()
	t, ok := q.tasks[id]
	if ok && (t.Status == StatusPending || t.Status == StatusRunning) {
		if t.Status == StatusPending {
			t.Status = StatusCanceled
			q.retire(t.ID)
		}
		t.cancel()
	}
	q.mu.Unlock()
}

// Shutdown cancels all work and waits for the workers to drain. Further
// Enqueue calls fail; a second Shutdown is a no-op.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.stop()
	close(q.pending)
	q.wg.Wait()
}

// retire caps the terminal-task history. Finished tasks stay pollable
// for a while, but the registry must not grow with every upload the
// process ever handled. Callers hold q.mu.
func (q *Queue) retire(id string) {
	q.finished = append(q.finished, id)
	for len(q.finished) > q.retain {
		delete(q.tasks, q.finished[0])
		q.finished = q.finished[1:]
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for t := range q.pending {
		q.mu.Lock()
		if t.Status != StatusPending {
			// Canceled while queued.
			q.mu.Unlock()
			continue
		}
		t.Status = StatusRunning
		q.mu.Unlock()

		taskCtx, cancel := context.WithCancel(q.baseCtx)
		q.mu.Lock()
		t.cancel = cancel
		q.mu.Unlock()

		err := q.runTask(taskCtx, t)
		cancel()

		q.mu.Lock()
		switch {
		case taskCtx.Err() != nil && err != nil:
			t.Status = StatusCanceled
			t.Err = err
		case err != nil:
			t.Status = StatusFailed
			t.Err = err
		default:
			t.Status = StatusDone
		}
		q.retire(t.ID)
		q.mu.Unlock()

		if err != nil {
			slog.Error("task failed", "kind", t.Kind, "payload", t.Payload, "error", err)
		}
	}
}

// runTask isolates panics so a misbehaving task cannot take down a worker.
func (q *Queue) runTask(ctx context.Context, t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tasks: panic: %v", r)
		}
	}()
	return t.fn(ctx)
}
