// Package worker runs the single-threaded client event loop.
//
// All view state is mutated by tasks running on one Loop goroutine. Network
// calls and timers run elsewhere and post their completions back as tasks.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/okian/resumeinsight/internal/adapters/mq/queue"
	"github.com/okian/resumeinsight/pkg/logger"
	"github.com/okian/resumeinsight/pkg/metrics"
)

// Queue is the task source of a Loop.
type Queue interface {
	Enqueue(ctx context.Context, t queue.Task) bool
	EnqueueWait(ctx context.Context, t queue.Task) error
	Dequeue(ctx context.Context) <-chan queue.Task
	Len(ctx context.Context) int
	Close() error
}

// Poster accepts work for the event loop.
type Poster interface {
	Post(ctx context.Context, name string, fn func(ctx context.Context)) bool
}

// Loop executes queued tasks one at a time.
type Loop struct {
	queue Queue
	name  string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewLoop creates a loop consuming q.
func NewLoop(q Queue, opts ...Option) *Loop {
	l := &Loop{
		queue:    q,
		name:     "loop",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.logger == nil {
		l.logger = logger.Get().Named(l.name)
	}

	return l
}

// Run executes tasks until ctx is canceled, Shutdown is called or the queue closes.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	tasks := l.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			l.process(ctx, t)
		}
	}
}

// Post queues fn without blocking. It returns false when the queue is full
// or closed.
func (l *Loop) Post(ctx context.Context, name string, fn func(ctx context.Context)) bool {
	ok := l.queue.Enqueue(ctx, queue.Task{Name: name, Run: fn})
	if !ok {
		l.logger.Warn(ctx, "task dropped", logger.String("task", name))
	}
	return ok
}

// PostWait queues fn, waiting for room until ctx is done.
func (l *Loop) PostWait(ctx context.Context, name string, fn func(ctx context.Context)) error {
	if err := l.queue.EnqueueWait(ctx, queue.Task{Name: name, Run: fn}); err != nil {
		return fmt.Errorf("post %s: %w", name, err)
	}
	return nil
}

// Call runs fn on the loop and waits for its result.
func (l *Loop) Call(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	result := make(chan error, 1)
	if err := l.PostWait(ctx, name, func(ctx context.Context) {
		result <- fn(ctx)
	}); err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Shutdown stops the loop and closes its queue. Tasks still queued are dropped.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.shutdownOnce.Do(func() {
		close(l.shutdown)
		if err := l.queue.Close(); err != nil {
			l.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	})

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs a single task, recovering panics so one failed task does not
// stop the loop.
func (l *Loop) process(ctx context.Context, t queue.Task) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordLoopPanic()
			metrics.RecordErrorByComponent("loop", "panic")
			l.logger.Error(ctx, "task panicked",
				logger.String("task", t.Name),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())),
			)
		}
		metrics.RecordLoopTaskLatency(float64(time.Since(t.EnqueuedAt).Microseconds()) / 1000)
	}()

	if t.Run == nil {
		return
	}
	t.Run(ctx)
}
