package service_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/okian/resumeinsight/internal/domain/animate"
	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/internal/domain/types"
)

var errBackend = errors.New("backend unavailable")

// fakeAPI answers listing calls by query text. A gate for a text holds the
// response until the gate is closed.
type fakeAPI struct {
	mu         sync.Mutex
	results    map[string][]model.Record
	failures   map[string]error
	gates      map[string]chan struct{}
	queries    []types.HistoryQuery
	upload     model.Record
	uploadErr  error
	uploadGate chan struct{}
	uploaded   []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		results:  make(map[string][]model.Record),
		failures: make(map[string]error),
		gates:    make(map[string]chan struct{}),
	}
}

func (f *fakeAPI) ListInsights(_ context.Context, q types.HistoryQuery) ([]model.Record, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate := f.gates[q.Text]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[q.Text]; err != nil {
		return nil, err
	}
	return f.results[q.Text], nil
}

func (f *fakeAPI) Upload(_ context.Context, filename string, r io.Reader) (model.Record, error) {
	_, _ = io.ReadAll(r)
	f.mu.Lock()
	f.uploaded = append(f.uploaded, filename)
	gate := f.uploadGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return f.upload, f.uploadErr
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeAPI) lastQuery() types.HistoryQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

// manualDispatcher queues completions; the test goroutine plays the loop.
type manualDispatcher struct {
	tasks chan func(context.Context)
}

func newManualDispatcher() *manualDispatcher {
	return &manualDispatcher{tasks: make(chan func(context.Context), 64)}
}

func (d *manualDispatcher) Post(_ context.Context, _ string, fn func(context.Context)) bool {
	d.tasks <- fn
	return true
}

// next runs the next posted completion.
func (d *manualDispatcher) next(t *testing.T) {
	t.Helper()
	select {
	case fn := <-d.tasks:
		fn(context.Background())
	case <-time.After(2 * time.Second):
		t.Fatal("no completion was posted")
	}
}

// fakeScheduler is a virtual clock; timers fire only on advance.
type fakeScheduler struct {
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at       time.Time
	fn       func(time.Time)
	canceled bool
}

func (t *fakeTimer) Cancel() { t.canceled = true }

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (s *fakeScheduler) Now() time.Time { return s.now }

func (s *fakeScheduler) RequestFrame(fn func(time.Time)) animate.Handle {
	return s.After(16*time.Millisecond, fn)
}

func (s *fakeScheduler) After(d time.Duration, fn func(time.Time)) animate.Handle {
	t := &fakeTimer{at: s.now.Add(d), fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) advance(d time.Duration) {
	end := s.now.Add(d)
	for {
		idx := -1
		for i, t := range s.timers {
			if t.canceled || t.at.After(end) {
				continue
			}
			if idx == -1 || t.at.Before(s.timers[idx].at) {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		t := s.timers[idx]
		s.timers = append(s.timers[:idx], s.timers[idx+1:]...)
		s.now = t.at
		t.fn(s.now)
	}
	s.now = end
}

func (s *fakeScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.canceled {
			n++
		}
	}
	return n
}

func records(ids ...string) []model.Record {
	out := make([]model.Record, 0, len(ids))
	for i, id := range ids {
		out = append(out, model.Record{
			DocID:    id,
			Filename: id + ".pdf",
			Insights: model.Structured{
				Verdict: "Strong fit",
				Scores:  model.Scores{model.Relevance: 40 + i, model.FinalScore: 70 + i},
			},
		})
	}
	return out
}
