package service

import (
	"context"
	"strings"

	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/internal/domain/types"
	"github.com/okian/resumeinsight/pkg/logger"
	"github.com/okian/resumeinsight/pkg/metrics"
)

// NoticeHistoryFailed is shown when a history fetch fails.
const NoticeHistoryFailed = "Could not load upload history."

// SetQueryText changes the text filter and refetches when it changed.
func (s *Service) SetQueryText(ctx context.Context, text string) {
	s.SetQuery(ctx, types.HistoryQuery{Text: strings.TrimSpace(text), Sort: s.query.Sort})
}

// SetSortOrder changes the sort order and refetches when it changed.
func (s *Service) SetSortOrder(ctx context.Context, order types.SortOrder) {
	s.SetQuery(ctx, types.HistoryQuery{Text: s.query.Text, Sort: order})
}

// ToggleSortOrder flips between newest and oldest first.
func (s *Service) ToggleSortOrder(ctx context.Context) {
	s.SetSortOrder(ctx, s.query.Sort.Toggle())
}

// SetQuery replaces the history query. Any change refetches, whatever view
// is active, unless refetches are gated on the history view.
func (s *Service) SetQuery(ctx context.Context, q types.HistoryQuery) {
	if q == s.query {
		return
	}
	s.query = q
	s.changed()

	if s.refetchOnlyWhenVisible && s.view.ActiveView != types.ViewHistory {
		s.staleQuery = true
		s.logger.Debug(ctx, "history refetch deferred until visible",
			logger.String("q", q.Text),
			logger.String("sort", q.Sort.Param()),
		)
		return
	}
	s.fetchHistory(ctx, "query")
}

// Refresh refetches history with the active query.
func (s *Service) Refresh(ctx context.Context) {
	s.fetchHistory(ctx, "refresh")
}

// fetchHistory issues one asynchronous listing request and returns its
// sequence number. The completion is applied on the event loop.
func (s *Service) fetchHistory(ctx context.Context, reason string) uint64 {
	s.issued++
	seq := s.issued
	q := s.query
	s.staleQuery = false
	s.inflight++
	metrics.RecordHistoryFetch()

	s.logger.Debug(ctx, "fetching history",
		logger.Uint64("seq", seq),
		logger.String("reason", reason),
		logger.String("q", q.Text),
		logger.String("sort", q.Sort.Param()),
	)

	go func() {
		records, err := s.api.ListInsights(ctx, q)
		if !s.dispatch.Post(ctx, "history.apply", func(ctx context.Context) {
			s.applyHistory(ctx, seq, records, err)
		}) {
			s.logger.Warn(ctx, "history completion dropped", logger.Uint64("seq", seq))
		}
	}()

	s.changed()
	return seq
}

// applyHistory installs a completed fetch. By default the last completion
// wins even when it was issued earlier than the one already applied.
func (s *Service) applyHistory(ctx context.Context, seq uint64, records []model.Record, err error) {
	s.inflight--
	defer s.changed()

	if seq == s.uploadFetch {
		s.finishUpload(ctx)
	}

	stale := seq < s.newest
	if stale {
		metrics.RecordHistoryOutOfOrder()
		if s.discardStale {
			metrics.RecordHistoryDiscarded()
			s.logger.Debug(ctx, "stale history response discarded",
				logger.Uint64("seq", seq),
				logger.Uint64("newest", s.newest),
			)
			return
		}
		s.logger.Debug(ctx, "history response completed out of order",
			logger.Uint64("seq", seq),
			logger.Uint64("newest", s.newest),
		)
	}

	if err != nil {
		metrics.RecordHistoryFailed()
		s.fail(ctx, "history", NoticeHistoryFailed, err)
		return
	}

	s.newest = max(s.newest, seq)
	s.history = records
	s.accordion.Reset(len(records))
	s.view.ExpandedIndex = types.NoExpansion
	s.syncEntryScores()
	if s.notice == NoticeHistoryFailed {
		s.notice = ""
		s.lastErr = nil
	}
	metrics.RecordHistoryReplaced(len(records))
	s.logger.Debug(ctx, "history replaced",
		logger.Uint64("seq", seq),
		logger.Int("records", len(records)),
	)
}
