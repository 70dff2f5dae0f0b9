package animate

import "github.com/okian/resumeinsight/internal/domain/model"

// Group keeps one Animator per score category of a rendered score set.
type Group struct {
	sched     FrameScheduler
	opts      []Option
	onChange  func(model.ScoreCategory, int)
	animators map[model.ScoreCategory]*Animator
}

// NewGroup returns an empty group. onChange may be nil.
func NewGroup(sched FrameScheduler, onChange func(model.ScoreCategory, int), opts ...Option) *Group {
	return &Group{
		sched:     sched,
		opts:      opts,
		onChange:  onChange,
		animators: make(map[model.ScoreCategory]*Animator),
	}
}

// Sync aligns the group with scores: new categories get an animator,
// changed values update their target and missing categories are closed.
func (g *Group) Sync(scores model.Scores) {
	for category, a := range g.animators {
		if _, ok := scores[category]; !ok {
			a.Close()
			delete(g.animators, category)
		}
	}
	for category, value := range scores {
		if a, ok := g.animators[category]; ok {
			if a.Target() != value {
				a.SetTarget(value)
			}
			continue
		}
		g.animators[category] = New(value, g.sched, g.optionsFor(category)...)
	}
}

func (g *Group) optionsFor(category model.ScoreCategory) []Option {
	if g.onChange == nil {
		return g.opts
	}
	opts := make([]Option, 0, len(g.opts)+1)
	opts = append(opts, g.opts...)
	opts = append(opts, WithOnChange(func(v int) { g.onChange(category, v) }))
	return opts
}

// Get returns the animator of category.
func (g *Group) Get(category model.ScoreCategory) (*Animator, bool) {
	a, ok := g.animators[category]
	return a, ok
}

// Value returns the displayed value of category, or zero when absent.
func (g *Group) Value(category model.ScoreCategory) int {
	if a, ok := g.animators[category]; ok {
		return a.Value()
	}
	return 0
}

// Hover routes a hover transition to category. It reports whether the
// category exists and, on leave, whether a running loop was interrupted.
func (g *Group) Hover(category model.ScoreCategory, entered bool) (found, interrupted bool) {
	a, ok := g.animators[category]
	if !ok {
		return false, false
	}
	if entered {
		a.HoverEnter()
		return true, false
	}
	return true, a.HoverLeave()
}

// Running reports whether any animator has a frame scheduled.
func (g *Group) Running() bool {
	for _, a := range g.animators {
		if a.Running() {
			return true
		}
	}
	return false
}

// Close closes and removes every animator.
func (g *Group) Close() {
	for category, a := range g.animators {
		a.Close()
		delete(g.animators, category)
	}
}
