// Package accordion tracks the single expanded entry of the history list and
// the visual state of its expand and collapse transitions.
package accordion

import (
	"fmt"
	"time"
)

// Default transition timing.
const (
	DefaultExpandDuration  = 350 * time.Millisecond
	DefaultContentDelay    = 100 * time.Millisecond
	DefaultContentDuration = 400 * time.Millisecond

	// ContentRise is the vertical offset the content panel rises from.
	ContentRise = 10.0
)

// None means no entry is expanded.
const None = -1

// Phase is the transition state of one entry.
type Phase int

// Entry phases.
const (
	Collapsed Phase = iota
	Expanding
	Expanded
	Collapsing
)

func (p Phase) String() string {
	switch p {
	case Expanding:
		return "expanding"
	case Expanded:
		return "expanded"
	case Collapsing:
		return "collapsing"
	default:
		return "collapsed"
	}
}

// Scroller brings an entry's top edge into view.
type Scroller interface {
	ScrollIntoView(index int)
}

// Frame is the interpolated visual state of an entry at an instant.
type Frame struct {
	Phase Phase
	// Height and Opacity are fractions of the fully expanded panel.
	Height  float64
	Opacity float64
	// ContentOpacity and ContentOffset describe the delayed content reveal.
	ContentOpacity float64
	ContentOffset  float64
}

type transition struct {
	expanding bool
	at        time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithExpandDuration sets the height and opacity transition window.
func WithExpandDuration(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.expand = d
		}
	}
}

// WithContentDelay sets the delay before the content reveal starts.
func WithContentDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.contentDelay = d
		}
	}
}

// WithContentDuration sets the content reveal duration.
func WithContentDuration(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.contentDuration = d
		}
	}
}

// WithScroller sets the scroll target used after layout.
func WithScroller(s Scroller) Option {
	return func(m *Manager) {
		m.scroller = s
	}
}

// Manager enforces that at most one entry is expanded.
// It is not safe for concurrent use.
type Manager struct {
	now             func() time.Time
	expand          time.Duration
	contentDelay    time.Duration
	contentDuration time.Duration
	scroller        Scroller

	size          int
	expanded      int
	transitions   map[int]transition
	pendingScroll int
}

// New returns a Manager for a list of size entries with nothing expanded.
func New(size int, opts ...Option) *Manager {
	m := &Manager{
		now:             time.Now,
		expand:          DefaultExpandDuration,
		contentDelay:    DefaultContentDelay,
		contentDuration: DefaultContentDuration,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Reset(size)
	return m
}

// SetScroller replaces the scroll target.
func (m *Manager) SetScroller(s Scroller) { m.scroller = s }

// Reset forgets all state for a new list of size entries.
func (m *Manager) Reset(size int) {
	if size < 0 {
		size = 0
	}
	m.size = size
	m.expanded = None
	m.transitions = make(map[int]transition)
	m.pendingScroll = None
}

// Size returns the number of entries.
func (m *Manager) Size() int { return m.size }

// Expanded returns the expanded index or None.
func (m *Manager) Expanded() int { return m.expanded }

// IsExpanded reports whether i is the expanded entry.
func (m *Manager) IsExpanded(i int) bool { return m.expanded != None && m.expanded == i }

// Toggle collapses i when it is expanded; otherwise it collapses the
// expanded entry, if any, and expands i.
func (m *Manager) Toggle(i int) error {
	if i < 0 || i >= m.size {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, m.size)
	}

	now := m.now()
	if m.expanded == i {
		m.transitions[i] = transition{expanding: false, at: now}
		m.expanded = None
		m.pendingScroll = None
		return nil
	}

	if m.expanded != None {
		m.transitions[m.expanded] = transition{expanding: false, at: now}
	}
	m.transitions[i] = transition{expanding: true, at: now}
	m.expanded = i
	m.pendingScroll = i
	return nil
}

// PendingScroll returns the entry waiting to be scrolled into view.
func (m *Manager) PendingScroll() (int, bool) {
	return m.pendingScroll, m.pendingScroll != None
}

// AfterLayout performs a pending scroll. Renderers call it once the list
// has been laid out so the entry's final position is known.
func (m *Manager) AfterLayout() bool {
	if m.pendingScroll == None {
		return false
	}
	i := m.pendingScroll
	m.pendingScroll = None
	if m.scroller != nil {
		m.scroller.ScrollIntoView(i)
	}
	return true
}

// Phase returns the phase of entry i at now.
func (m *Manager) Phase(i int, now time.Time) Phase {
	return m.Frame(i, now).Phase
}

// Frame returns the interpolated state of entry i at now.
func (m *Manager) Frame(i int, now time.Time) Frame {
	tr, ok := m.transitions[i]
	if !ok {
		return Frame{Phase: Collapsed, ContentOffset: ContentRise}
	}

	elapsed := now.Sub(tr.at)
	p := easeInOut(fraction(elapsed, m.expand))

	if tr.expanding {
		c := fraction(elapsed-m.contentDelay, m.contentDuration)
		f := Frame{
			Phase:          Expanding,
			Height:         p,
			Opacity:        p,
			ContentOpacity: c,
			ContentOffset:  ContentRise * (1 - easeInOut(c)),
		}
		if elapsed >= m.expand {
			f.Phase = Expanded
		}
		return f
	}

	if elapsed >= m.expand {
		return Frame{Phase: Collapsed, ContentOffset: ContentRise}
	}
	return Frame{
		Phase:          Collapsing,
		Height:         1 - p,
		Opacity:        1 - p,
		ContentOpacity: 1 - p,
	}
}

// Animating reports whether any entry is still transitioning at now.
func (m *Manager) Animating(now time.Time) bool {
	for _, tr := range m.transitions {
		end := m.expand
		if tr.expanding {
			end = max(end, m.contentDelay+m.contentDuration)
		}
		if now.Sub(tr.at) < end {
			return true
		}
	}
	return false
}

func fraction(elapsed, total time.Duration) float64 {
	if total <= 0 || elapsed >= total {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(total)
}

// easeInOut is the smoothstep curve.
func easeInOut(t float64) float64 {
	return t * t * (3 - 2*t)
}
