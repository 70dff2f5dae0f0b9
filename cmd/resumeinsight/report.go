package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newReportCmd(e *env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "report <doc_id>",
		Short: "Download the PDF report of an evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docID := args[0]
			if output == "-" {
				_, err := e.client.DownloadReport(cmd.Context(), docID, cmd.OutOrStdout())
				return err
			}

			path := output
			if path == "" {
				path = docID + ".pdf"
			}
			n, err := downloadTo(cmd, e, docID, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", path, n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file, or - for stdout (default <doc_id>.pdf)")
	return cmd
}

// downloadTo writes the report to a temporary file next to path and
// renames it into place once complete.
func downloadTo(cmd *cobra.Command, e *env, docID, path string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return 0, fmt.Errorf("create report file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := e.client.DownloadReport(cmd.Context(), docID, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return n, fmt.Errorf("save report: %w", err)
	}
	return n, nil
}
