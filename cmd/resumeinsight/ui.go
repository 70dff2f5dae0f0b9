package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okian/resumeinsight/internal/adapters/document"
	"github.com/okian/resumeinsight/internal/adapters/mq/worker"
	service "github.com/okian/resumeinsight/internal/app"
	"github.com/okian/resumeinsight/internal/domain/accordion"
	"github.com/okian/resumeinsight/internal/ui"
	"github.com/okian/resumeinsight/pkg/logger"
)

// controllerOptions maps configuration onto the controller.
func (e *env) controllerOptions(extra ...service.Option) []service.Option {
	opts := []service.Option{
		service.WithDiscardStaleHistory(e.cfg.DiscardStaleHistory),
		service.WithRefetchOnlyWhenVisible(e.cfg.RefetchOnlyWhenVisible),
		service.WithUploadProgressDelay(e.cfg.UploadProgressDelay()),
		service.WithAnimationDuration(e.cfg.AnimationDuration()),
		service.WithAccordionOptions(
			accordion.WithExpandDuration(e.cfg.ExpandDuration()),
			accordion.WithContentDelay(e.cfg.ContentDelay()),
		),
	}
	return append(opts, extra...)
}

func (e *env) openDocument(path string) (*document.Document, error) {
	return document.Open(path, e.cfg.MaxUploadBytes)
}

// runUI runs the interactive client until the user quits. Completions and
// frames are delivered as program messages, so the Bubble Tea loop is the
// only goroutine touching the controller.
func runUI(ctx context.Context, e *env) error {
	disp := ui.NewDispatcher(nil)
	sched := worker.NewFrameScheduler(ctx, disp, worker.WithFrameInterval(e.cfg.FrameInterval()))
	svc := service.New(e.client, disp, sched, e.controllerOptions()...)
	defer svc.Close()

	m := ui.New(ctx, svc,
		ui.WithReportURL(e.client.ReportURL),
		ui.WithOpener(e.openDocument),
		ui.WithTickInterval(e.cfg.FrameInterval()),
	)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	disp.Attach(p)

	e.logger.Info(ctx, "starting interactive client",
		logger.String("base_url", e.client.BaseURL()),
		logger.Bool("authenticated", e.session.Authenticated()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
