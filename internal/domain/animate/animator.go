// Package animate drives hover-triggered count-up animation of score values.
//
// Animators are not safe for concurrent use. They are driven from a single
// event loop and receive frames through a FrameScheduler that posts back onto
// the same loop.
package animate

import (
	"math"
	"time"
)

// DefaultDuration is the count-up duration of one hover session.
const DefaultDuration = 800 * time.Millisecond

// Handle is a scheduled frame that can be canceled.
type Handle interface {
	Cancel()
}

// FrameScheduler delivers a callback on the next frame.
type FrameScheduler interface {
	Now() time.Time
	RequestFrame(fn func(now time.Time)) Handle
}

// Option configures an Animator.
type Option func(*Animator)

// WithDuration sets the count-up duration.
func WithDuration(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.duration = d
		}
	}
}

// WithOnChange registers a callback invoked whenever the displayed value is written.
func WithOnChange(fn func(value int)) Option {
	return func(a *Animator) {
		a.onChange = fn
	}
}

// Animator holds the displayed value of one metric.
// At rest the displayed value equals the target.
type Animator struct {
	sched    FrameScheduler
	duration time.Duration
	onChange func(int)

	target  int
	display int
	hovered bool
	closed  bool

	start   time.Time
	pending Handle
	// gen invalidates frames scheduled by an earlier loop.
	gen uint64
}

// New returns an Animator at rest on target.
func New(target int, sched FrameScheduler, opts ...Option) *Animator {
	a := &Animator{
		sched:    sched,
		duration: DefaultDuration,
		target:   target,
		display:  target,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Value returns the displayed value.
func (a *Animator) Value() int { return a.display }

// Target returns the true value.
func (a *Animator) Target() int { return a.target }

// Hovered reports whether a hover session is active.
func (a *Animator) Hovered() bool { return a.hovered }

// Running reports whether a frame is scheduled.
func (a *Animator) Running() bool { return a.pending != nil }

// HoverEnter starts a new count-up loop, replacing any loop in flight.
func (a *Animator) HoverEnter() {
	if a.closed {
		return
	}
	a.cancel()
	a.hovered = true
	a.start = a.sched.Now()
	a.step(a.gen, a.start)
}

// HoverLeave stops the loop and shows the target immediately.
// It reports whether a loop was interrupted.
func (a *Animator) HoverLeave() bool {
	interrupted := a.cancel()
	a.hovered = false
	a.set(a.target)
	return interrupted
}

// SetTarget changes the true value. A hovered animator restarts its loop;
// otherwise the new value is shown at once.
func (a *Animator) SetTarget(target int) {
	if a.closed {
		return
	}
	a.target = target
	if a.hovered {
		a.HoverEnter()
		return
	}
	a.cancel()
	a.set(target)
}

// Close cancels any pending frame. A closed animator ignores hover input.
func (a *Animator) Close() {
	a.cancel()
	a.hovered = false
	a.closed = true
	a.display = a.target
}

func (a *Animator) cancel() bool {
	a.gen++
	if a.pending == nil {
		return false
	}
	a.pending.Cancel()
	a.pending = nil
	return true
}

func (a *Animator) step(gen uint64, now time.Time) {
	if gen != a.gen || a.closed {
		return
	}
	a.pending = nil

	progress := 1.0
	if a.duration > 0 {
		progress = float64(now.Sub(a.start)) / float64(a.duration)
	}
	progress = math.Max(0, math.Min(1, progress))

	a.set(int(math.Floor(progress * float64(a.target))))
	if progress < 1 {
		a.pending = a.sched.RequestFrame(func(now time.Time) {
			a.step(gen, now)
		})
	}
}

func (a *Animator) set(v int) {
	a.display = v
	if a.onChange != nil {
		a.onChange(v)
	}
}
