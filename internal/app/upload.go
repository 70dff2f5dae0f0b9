package service

import (
	"context"
	"io"
	"time"

	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/internal/domain/normalize"
	"github.com/okian/resumeinsight/internal/domain/types"
	"github.com/okian/resumeinsight/pkg/logger"
	"github.com/okian/resumeinsight/pkg/metrics"
)

// Upload progress messages and the failure notice.
const (
	ProgressParsing     = "Parsing your resume..."
	ProgressAnalyzing   = "Analyzing content and extracting insights..."
	ProgressFetching    = "Fetching upload history..."
	NoticeUploadFailed  = "Something went wrong while uploading."
	uploadOutcomeOK     = "success"
	uploadOutcomeFailed = "failure"
)

// Upload sends a document for analysis. On success the result becomes the
// current insights, the insights view is shown and history is refetched
// with the active query. On failure prior data is left untouched.
func (s *Service) Upload(ctx context.Context, filename string, body io.Reader) error {
	if filename == "" || body == nil {
		return ErrNoFile
	}
	if s.uploading {
		return ErrUploadInProgress
	}

	s.uploadSeq++
	seq := s.uploadSeq
	s.uploading = true
	s.progress = ProgressParsing
	if s.notice == NoticeUploadFailed {
		s.notice = ""
	}
	s.progressTimer = s.sched.After(s.progressDelay, func(time.Time) {
		if s.uploading && s.uploadSeq == seq && s.progress == ProgressParsing {
			s.progress = ProgressAnalyzing
			s.changed()
		}
	})

	s.logger.Info(ctx, "uploading document", logger.String("filename", filename))

	go func() {
		rec, err := s.api.Upload(ctx, filename, body)
		if !s.dispatch.Post(ctx, "upload.apply", func(ctx context.Context) {
			s.applyUpload(ctx, seq, rec, err)
		}) {
			s.logger.Warn(ctx, "upload completion dropped", logger.String("filename", filename))
		}
	}()

	s.changed()
	return nil
}

func (s *Service) applyUpload(ctx context.Context, seq uint64, rec model.Record, err error) {
	if seq != s.uploadSeq {
		return
	}
	s.cancelProgressTimer()
	defer s.changed()

	if err != nil {
		s.uploading = false
		s.progress = ""
		metrics.RecordUpload(uploadOutcomeFailed)
		s.fail(ctx, "upload", NoticeUploadFailed, err)
		return
	}

	metrics.RecordUpload(uploadOutcomeOK)
	s.logger.Info(ctx, "upload analyzed",
		logger.String("docID", rec.DocID),
		logger.String("filename", rec.Filename),
	)

	s.current = &rec
	s.insightScores.Close()
	s.insightScores.Sync(normalize.Normalize(rec.Insights).Data.Scores)
	_ = s.SetView(ctx, types.ViewInsights)

	s.progress = ProgressFetching
	s.uploadFetch = s.fetchHistory(ctx, "upload")
}

func (s *Service) finishUpload(ctx context.Context) {
	s.uploading = false
	s.progress = ""
	s.uploadFetch = 0
	s.logger.Debug(ctx, "upload flow finished")
}

func (s *Service) cancelProgressTimer() {
	if s.progressTimer != nil {
		s.progressTimer.Cancel()
		s.progressTimer = nil
	}
}
