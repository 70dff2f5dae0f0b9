// Package service provides the controller that owns the client's view state,
// history collection and upload flow.
//
// Every method must be called on the event loop the Dispatcher posts to.
// Network calls run on their own goroutines and post completions back.
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/okian/resumeinsight/internal/domain/accordion"
	"github.com/okian/resumeinsight/internal/domain/animate"
	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/internal/domain/normalize"
	"github.com/okian/resumeinsight/internal/domain/types"
	"github.com/okian/resumeinsight/pkg/logger"
	"github.com/okian/resumeinsight/pkg/metrics"
)

// DefaultUploadProgressDelay is how long the parsing message is shown.
const DefaultUploadProgressDelay = 1200 * time.Millisecond

// API is the backend surface the controller calls.
type API interface {
	ListInsights(ctx context.Context, q types.HistoryQuery) ([]model.Record, error)
	Upload(ctx context.Context, filename string, r io.Reader) (model.Record, error)
}

// Dispatcher runs fn on the event loop.
type Dispatcher interface {
	Post(ctx context.Context, name string, fn func(ctx context.Context)) bool
}

// Scheduler delivers frames and timers on the event loop.
type Scheduler interface {
	animate.FrameScheduler
	After(d time.Duration, fn func(now time.Time)) animate.Handle
}

// ScoreScope identifies a rendered score set.
type ScoreScope struct {
	View types.View
	// Index is the history entry; ignored for the insights view.
	Index int
}

// InsightsScope is the score set of the current insights.
var InsightsScope = ScoreScope{View: types.ViewInsights}

// HistoryScope returns the score set of history entry i.
func HistoryScope(i int) ScoreScope {
	return ScoreScope{View: types.ViewHistory, Index: i}
}

// Service is the navigation controller.
type Service struct {
	api      API
	dispatch Dispatcher
	sched    Scheduler

	// Configuration
	discardStale           bool
	refetchOnlyWhenVisible bool
	progressDelay          time.Duration
	animationDuration      time.Duration
	accordionOpts          []accordion.Option
	onChange               func()

	// View state
	view    types.ViewState
	query   types.HistoryQuery
	history []model.Record
	current *model.Record
	notice  string
	lastErr error

	// History fetches
	mounted     bool
	issued      uint64
	newest      uint64
	inflight    int
	staleQuery  bool
	accordion   *accordion.Manager
	entryScores *animate.Group
	scoresEntry int

	// Upload
	uploading     bool
	uploadSeq     uint64
	uploadFetch   uint64
	progress      string
	progressTimer animate.Handle

	insightScores *animate.Group

	logger logger.Logger
}

// New constructs a controller in the home view with nothing expanded.
func New(api API, dispatch Dispatcher, sched Scheduler, opts ...Option) *Service {
	s := &Service{
		api:               api,
		dispatch:          dispatch,
		sched:             sched,
		progressDelay:     DefaultUploadProgressDelay,
		animationDuration: animate.DefaultDuration,
		view:              types.NewViewState(),
		scoresEntry:       types.NoExpansion,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	accOpts := append([]accordion.Option{accordion.WithClock(sched.Now)}, s.accordionOpts...)
	s.accordion = accordion.New(0, accOpts...)
	s.insightScores = s.newScoreGroup()
	s.entryScores = s.newScoreGroup()

	return s
}

func (s *Service) newScoreGroup() *animate.Group {
	return animate.NewGroup(s.sched, func(model.ScoreCategory, int) { s.changed() },
		animate.WithDuration(s.animationDuration),
	)
}

// Mount issues the initial history fetch. Later calls do nothing.
func (s *Service) Mount(ctx context.Context) {
	if s.mounted {
		return
	}
	s.mounted = true
	s.logger.Info(ctx, "controller mounted",
		logger.Bool("discardStaleHistory", s.discardStale),
		logger.Bool("refetchOnlyWhenVisible", s.refetchOnlyWhenVisible),
	)
	s.fetchHistory(ctx, "mount")
}

// Close cancels every pending frame and timer.
func (s *Service) Close() {
	s.insightScores.Close()
	s.entryScores.Close()
	s.cancelProgressTimer()
}

// SetView switches the active view. Re-entering the active view is allowed.
func (s *Service) SetView(ctx context.Context, v types.View) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %d", types.ErrUnknownView, int(v))
	}

	s.view.ActiveView = v
	metrics.RecordViewChange(v.String())
	s.logger.Debug(ctx, "view changed", logger.String("view", v.String()))

	if v == types.ViewHistory && s.staleQuery {
		s.fetchHistory(ctx, "visible")
	}
	s.changed()
	return nil
}

// Toggle expands or collapses history entry i.
func (s *Service) Toggle(i int) error {
	if err := s.accordion.Toggle(i); err != nil {
		return err
	}
	metrics.RecordAccordionToggle()
	s.view.ExpandedIndex = s.accordion.Expanded()
	s.syncEntryScores()
	s.changed()
	return nil
}

// AfterLayout performs the scroll armed by the last expansion. Renderers
// call it once the list has been laid out.
func (s *Service) AfterLayout() bool {
	return s.accordion.AfterLayout()
}

// SetScroller sets the target of scroll-into-view requests.
func (s *Service) SetScroller(sc accordion.Scroller) {
	s.accordion.SetScroller(sc)
}

// HoverMetric routes a hover transition to one rendered score. It reports
// whether the metric is currently rendered.
func (s *Service) HoverMetric(scope ScoreScope, category model.ScoreCategory, entered bool) bool {
	group, err := s.group(scope)
	if err != nil {
		return false
	}

	found, interrupted := group.Hover(category, entered)
	if !found {
		return false
	}
	if entered {
		metrics.RecordAnimationStarted()
	} else if interrupted {
		metrics.RecordAnimationCanceled()
	}
	s.changed()
	return true
}

// ScoreValue returns the displayed value of one rendered score.
func (s *Service) ScoreValue(scope ScoreScope, category model.ScoreCategory) int {
	group, err := s.group(scope)
	if err != nil {
		return 0
	}
	return group.Value(category)
}

// Animating reports whether any score or accordion transition is in flight.
func (s *Service) Animating() bool {
	return s.insightScores.Running() || s.entryScores.Running() || s.accordion.Animating(s.sched.Now())
}

func (s *Service) group(scope ScoreScope) (*animate.Group, error) {
	switch scope.View {
	case types.ViewInsights:
		return s.insightScores, nil
	case types.ViewHistory:
		if scope.Index == types.NoExpansion || scope.Index != s.scoresEntry {
			return nil, fmt.Errorf("%w: history entry %d is not expanded", ErrUnknownScope, scope.Index)
		}
		return s.entryScores, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScope, scope.View)
	}
}

// syncEntryScores binds the history score group to the expanded entry.
// Collapsing tears the animators down.
func (s *Service) syncEntryScores() {
	i := s.accordion.Expanded()
	if i == s.scoresEntry {
		return
	}
	s.entryScores.Close()
	s.scoresEntry = i
	if i == accordion.None || i >= len(s.history) {
		s.scoresEntry = types.NoExpansion
		return
	}
	s.entryScores.Sync(normalize.Normalize(s.history[i].Insights).Data.Scores)
}

// DismissNotice clears the user-visible notice.
func (s *Service) DismissNotice() {
	if s.notice == "" {
		return
	}
	s.notice = ""
	s.changed()
}

// View returns the navigation state.
func (s *Service) View() types.ViewState { return s.view }

// Query returns the active history query.
func (s *Service) Query() types.HistoryQuery { return s.query }

// History returns the current collection in server order. It must be
// treated as read-only.
func (s *Service) History() []model.Record { return s.history }

// Current returns the record shown in the insights view.
func (s *Service) Current() (model.Record, bool) {
	if s.current == nil {
		return model.Record{}, false
	}
	return *s.current, true
}

// Loading reports whether a history fetch is in flight.
func (s *Service) Loading() bool { return s.inflight > 0 }

// Uploading reports whether an upload is in progress.
func (s *Service) Uploading() bool { return s.uploading }

// Progress returns the upload progress message.
func (s *Service) Progress() string { return s.progress }

// Notice returns the user-visible failure notice, if any.
func (s *Service) Notice() string { return s.notice }

// Err returns the error behind the last failure notice.
func (s *Service) Err() error { return s.lastErr }

// EntryFrame returns the accordion frame of history entry i.
func (s *Service) EntryFrame(i int) accordion.Frame {
	return s.accordion.Frame(i, s.sched.Now())
}

func (s *Service) fail(ctx context.Context, component, notice string, err error) {
	s.notice = notice
	s.lastErr = err
	metrics.RecordErrorByComponent(component, "request")
	s.logger.Warn(ctx, notice, logger.String("component", component), logger.Error(err))
}

func (s *Service) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
