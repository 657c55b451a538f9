package worker

import (
	"context"
	"runtime"
	"sync"
)

// Queue runs tasks one at a time, in order, on a single goroutine locked to
// its OS thread. Tasks may be enqueued before Start is called.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []func()
	pending int
	stopped bool
}

func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds a task. Tasks added after the queue stopped are dropped.
func (q *Queue) Enqueue(task func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	q.tasks = append(q.tasks, task)
	q.pending++
	q.cond.Broadcast()
}

// Wait blocks until every task enqueued so far has finished, or the queue
// has stopped.
func (q *Queue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.pending > 0 && !q.stopped {
		q.cond.Wait()
	}
}

// Pending is the number of queued or running tasks.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Start drains the queue until ctx is cancelled. Tasks still queued at
// that point are run before Start returns.
func (q *Queue) Start(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.stopped = true
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.stopped {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return nil
		}
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()

		q.mu.Lock()
		q.pending--
		q.cond.Broadcast()
		q.mu.Unlock()
	}
}
