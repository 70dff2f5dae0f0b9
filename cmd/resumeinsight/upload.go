package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/resumeinsight/internal/adapters/document"
	"github.com/okian/resumeinsight/internal/adapters/mq/queue"
	"github.com/okian/resumeinsight/internal/adapters/mq/worker"
	service "github.com/okian/resumeinsight/internal/app"
	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func newUploadCmd(e *env) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload resumes for analysis",
		Long:  "Upload one or more PDF or DOCX resumes. Every file is checked before the first upload starts; uploads then run one at a time.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := preflight(cmd.Context(), e, args)
			if err != nil {
				return err
			}
			return runUploads(cmd.Context(), e, cmd.OutOrStdout(), docs, width)
		},
	}

	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	return cmd
}

// preflight opens and checks every file concurrently.
func preflight(ctx context.Context, e *env, paths []string) ([]*document.Document, error) {
	docs := make([]*document.Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := e.openDocument(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// uploadState is a snapshot of the controller taken on the loop.
type uploadState struct {
	uploading bool
	progress  string
	notice    string
	err       error
	current   model.Record
}

// runUploads drives the controller from a private event loop, the same
// way the interactive client does, and prints progress as it changes.
func runUploads(ctx context.Context, e *env, out io.Writer, docs []*document.Document, width int) error {
	loop := worker.NewLoop(
		queue.NewInMemoryQueue(queue.WithCapacity(e.cfg.QueueSize)),
		worker.WithName("upload-loop"),
	)
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go loop.Run(loopCtx)
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := loop.Shutdown(shutdownCtx); err != nil {
			e.logger.Warn(ctx, "upload loop shutdown failed", logger.Error(err))
		}
	}()

	changes := make(chan struct{}, 1)
	notify := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	sched := worker.NewFrameScheduler(loopCtx, loop, worker.WithFrameInterval(e.cfg.FrameInterval()))
	svc := service.New(e.client, loop, sched, e.controllerOptions(service.WithOnChange(notify))...)
	defer func() {
		_ = loop.Call(ctx, "controller.close", func(context.Context) error {
			svc.Close()
			return nil
		})
	}()

	for _, doc := range docs {
		fmt.Fprintf(out, "==> %s (%s, %d bytes)\n", doc.Name, doc.Format, doc.Size)

		if err := loop.Call(ctx, "upload.start", func(ctx context.Context) error {
			return svc.Upload(ctx, doc.Name, doc.Reader())
		}); err != nil {
			return fmt.Errorf("%s: %w", doc.Name, err)
		}

		st, err := waitUpload(ctx, loop, svc, changes, out)
		if err != nil {
			return err
		}
		if st.notice == service.NoticeUploadFailed {
			return fmt.Errorf("%s: %s: %w", doc.Name, st.notice, st.err)
		}
		if st.notice != "" {
			fmt.Fprintln(out, st.notice)
		}
		printRecord(out, st.current, e.client.ReportURL(st.current.DocID), width)
	}
	return nil
}

func waitUpload(ctx context.Context, loop *worker.Loop, svc *service.Service, changes <-chan struct{}, out io.Writer) (uploadState, error) {
	var last string
	for {
		var st uploadState
		if err := loop.Call(ctx, "upload.poll", func(context.Context) error {
			st = uploadState{
				uploading: svc.Uploading(),
				progress:  svc.Progress(),
				notice:    svc.Notice(),
				err:       svc.Err(),
			}
			st.current, _ = svc.Current()
			return nil
		}); err != nil {
			return st, err
		}

		if st.progress != "" && st.progress != last {
			fmt.Fprintln(out, st.progress)
			last = st.progress
		}
		if !st.uploading {
			return st, nil
		}

		select {
		case <-changes:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}
