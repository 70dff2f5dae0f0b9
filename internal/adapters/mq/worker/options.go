package worker

import (
	"time"

	"github.com/okian/resumeinsight/pkg/logger"
)

// Option applies a configuration option to the Loop.
type Option func(*Loop)

// WithName sets the loop name for identification and logging.
func WithName(name string) Option {
	return func(l *Loop) {
		if name != "" {
			l.name = name
		}
	}
}

// WithLogger sets a custom logger for the loop.
func WithLogger(logger logger.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// FrameOption configures a FrameScheduler.
type FrameOption func(*FrameScheduler)

// WithFrameInterval sets the delay between frames.
func WithFrameInterval(d time.Duration) FrameOption {
	return func(s *FrameScheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock sets the time source handed to frame callbacks.
func WithClock(now func() time.Time) FrameOption {
	return func(s *FrameScheduler) {
		if now != nil {
			s.now = now
		}
	}
}
