package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/resumeinsight/internal/domain/animate"
	"github.com/okian/resumeinsight/pkg/metrics"
)

// DefaultFrameInterval is roughly one display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameScheduler delivers frame and timer callbacks onto an event loop.
// Callbacks always run on the poster's loop, never on the timer goroutine.
type FrameScheduler struct {
	ctx      context.Context
	poster   Poster
	interval time.Duration
	now      func() time.Time
}

// NewFrameScheduler creates a scheduler posting through p.
func NewFrameScheduler(ctx context.Context, p Poster, opts ...FrameOption) *FrameScheduler {
	s := &FrameScheduler{
		ctx:      ctx,
		poster:   p,
		interval: DefaultFrameInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time.
func (s *FrameScheduler) Now() time.Time { return s.now() }

// Interval returns the frame period.
func (s *FrameScheduler) Interval() time.Duration { return s.interval }

// RequestFrame runs fn on the loop after one frame interval.
func (s *FrameScheduler) RequestFrame(fn func(now time.Time)) animate.Handle {
	return s.schedule("frame", s.interval, func(now time.Time) {
		metrics.RecordAnimationFrame()
		fn(now)
	})
}

// After runs fn on the loop once d has elapsed.
func (s *FrameScheduler) After(d time.Duration, fn func(now time.Time)) animate.Handle {
	return s.schedule("timer", d, fn)
}

func (s *FrameScheduler) schedule(name string, d time.Duration, fn func(now time.Time)) animate.Handle {
	h := &timerHandle{}
	h.timer = time.AfterFunc(d, func() {
		if h.canceled.Load() {
			return
		}
		s.poster.Post(s.ctx, name, func(context.Context) {
			// Cancel may have run while the task was queued.
			if h.canceled.Load() {
				return
			}
			fn(s.now())
		})
	})
	return h
}

type timerHandle struct {
	timer    *time.Timer
	canceled atomic.Bool
}

// Cancel stops the timer and suppresses a callback already in flight.
func (h *timerHandle) Cancel() {
	h.canceled.Store(true)
	h.timer.Stop()
}
