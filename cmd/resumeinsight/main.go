// Package main provides the resumeinsight command: an interactive terminal
// client for AI resume analysis plus headless subcommands.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/resumeinsight/internal/adapters/auth"
	"github.com/okian/resumeinsight/internal/adapters/http/client"
	"github.com/okian/resumeinsight/internal/config"
	"github.com/okian/resumeinsight/pkg/logger"
	"github.com/okian/resumeinsight/pkg/metrics"
)

// env is the per-invocation wiring shared by every subcommand.
type env struct {
	cfg     *config.Config
	session *auth.Session
	client  *client.Client
	logger  logger.Logger
}

type rootFlags struct {
	baseURL  string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}
	e := &env{}

	root := &cobra.Command{
		Use:           "resumeinsight",
		Short:         "Upload resumes and browse their AI evaluations",
		Long:          "resumeinsight uploads resumes to the analysis backend, shows the structured evaluation and browses the history of past evaluations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd.Context(), e)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "Backend root URL (overrides base_url)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log_level)")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		interactive := cmd == root
		return e.setup(cmd.Context(), flags, interactive, stderr)
	}
	root.PersistentPostRun = func(*cobra.Command, []string) {
		_ = logger.Sync()
	}

	root.AddCommand(
		newHistoryCmd(e),
		newShowCmd(e),
		newUploadCmd(e),
		newReportCmd(e),
		newLoginCmd(e),
		newLogoutCmd(e),
		newWhoamiCmd(e),
	)
	return root
}

// setup loads configuration and builds the shared collaborators. The
// interactive UI owns the terminal, so it logs to a file.
func (e *env) setup(ctx context.Context, flags *rootFlags, interactive bool, stderr io.Writer) error {
	if err := logger.InitWithWriter(stderr); err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	if interactive && cfg.LogFile != "" {
		if err := logger.InitFile(cfg.LogFile); err != nil {
			return err
		}
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	e.logger = logger.Get().Named("cli")

	session, err := auth.NewSession(auth.NewFileStore(cfg.CredentialsFile))
	if err != nil {
		return err
	}

	c, err := client.New(cfg.BaseURL,
		client.WithTimeout(cfg.RequestTimeout()),
		client.WithTokenSource(session),
	)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go metrics.RunSystemCollector(ctx)
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				e.logger.Error(ctx, "metrics server failed", logger.Error(err))
			}
		}()
		e.logger.Info(ctx, "serving metrics", logger.String("addr", cfg.MetricsAddr))
	}

	e.cfg, e.session, e.client = cfg, session, c
	return nil
}
