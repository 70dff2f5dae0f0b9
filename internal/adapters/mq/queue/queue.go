// Package queue defines the bounded task queue feeding the client event loop.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/resumeinsight/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Task is a unit of work executed on the event loop.
type Task struct {
	Name       string
	Run        func(ctx context.Context)
	EnqueuedAt time.Time
}

// Queue provides non-blocking and blocking enqueue plus channel-based dequeue.
type Queue interface {
	// Enqueue adds a task without blocking.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, t Task) bool

	// EnqueueWait adds a task, waiting for room until ctx is done.
	EnqueueWait(ctx context.Context, t Task) error

	// Dequeue returns a channel that receives tasks in FIFO order.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Task

	// Len returns the current number of queued tasks.
	Len(ctx context.Context) int

	// Close stops accepting tasks.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	tasks    chan Task
	capacity int

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(q)
	}

	q.tasks = make(chan Task, q.capacity)
	metrics.UpdateLoopQueueSize(0)

	return q
}

// Enqueue adds a task to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) bool {
	if q.IsClosed() {
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = time.Now()
	}

	select {
	case q.tasks <- t:
		metrics.UpdateLoopQueueSize(len(q.tasks))
		return true
	case <-ctx.Done():
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordLoopQueueFull()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// EnqueueWait adds a task, blocking while the queue is full.
func (q *InMemoryQueue) EnqueueWait(ctx context.Context, t Task) error {
	if q.IsClosed() {
		return ErrClosed
	}
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = time.Now()
	}

	select {
	case q.tasks <- t:
		metrics.UpdateLoopQueueSize(len(q.tasks))
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue returns a channel that will receive tasks as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Task {
	out := make(chan Task)
	go func() {
		defer close(out)
		for {
			// Closing wins over buffered tasks.
			select {
			case <-q.done:
				return
			default:
			}

			select {
			case t := <-q.tasks:
				select {
				case out <- t:
					metrics.UpdateLoopQueueSize(len(q.tasks))
				case <-ctx.Done():
					return
				}
			case <-q.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued tasks.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.tasks)
	metrics.UpdateLoopQueueSize(size)
	return size
}

// Close stops the queue. Tasks still buffered are dropped.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.done)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
