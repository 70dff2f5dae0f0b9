package service

import (
	"time"

	"github.com/okian/resumeinsight/internal/domain/accordion"
	"github.com/okian/resumeinsight/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDiscardStaleHistory drops history responses that complete after a
// newer one was applied. By default the last completion wins.
func WithDiscardStaleHistory(enabled bool) Option {
	return func(s *Service) {
		s.discardStale = enabled
	}
}

// WithRefetchOnlyWhenVisible defers query-triggered refetches until the
// history view is active. By default every query change refetches.
func WithRefetchOnlyWhenVisible(enabled bool) Option {
	return func(s *Service) {
		s.refetchOnlyWhenVisible = enabled
	}
}

// WithUploadProgressDelay sets how long the first progress message stays
// before the analysis message replaces it.
func WithUploadProgressDelay(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.progressDelay = d
		}
	}
}

// WithAnimationDuration sets the score count-up duration.
func WithAnimationDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.animationDuration = d
		}
	}
}

// WithAccordionOptions passes options to the history accordion.
func WithAccordionOptions(opts ...accordion.Option) Option {
	return func(s *Service) {
		s.accordionOpts = append(s.accordionOpts, opts...)
	}
}

// WithOnChange registers a callback run on the event loop after every
// state change, typically to request a redraw.
func WithOnChange(fn func()) Option {
	return func(s *Service) {
		s.onChange = fn
	}
}
