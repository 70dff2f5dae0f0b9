package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/internal/domain/normalize"
	"github.com/okian/resumeinsight/internal/domain/types"
	"github.com/okian/resumeinsight/internal/ui"
)

func newHistoryCmd(e *env) *cobra.Command {
	var (
		query  string
		sort   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past evaluations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := types.ParseSortOrder(sort)
			if err != nil {
				return err
			}

			records, err := e.client.ListInsights(cmd.Context(), types.HistoryQuery{Text: query, Sort: order})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			printHistory(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by filename or content")
	cmd.Flags().StringVar(&sort, "sort", "newest", "Sort order: newest or oldest")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

func newShowCmd(e *env) *cobra.Command {
	var (
		asJSON bool
		width  int
	)

	cmd := &cobra.Command{
		Use:   "show <doc_id>",
		Short: "Show one evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := e.client.GetInsight(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			printRecord(cmd.OutOrStdout(), rec, e.client.ReportURL(rec.DocID), width)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	return cmd
}

func printHistory(w io.Writer, records []model.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No uploads found.")
		return
	}
	for _, rec := range records {
		r := normalize.Normalize(rec.Insights)
		verdict := "-"
		if r.HasVerdict {
			verdict = r.Verdict
		}
		final := "-"
		if v, ok := r.Data.Scores.Get(model.FinalScore); ok {
			final = fmt.Sprintf("%d", v)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rec.DocID, rec.Filename, ui.FormatTime(rec.Time), final, verdict)
	}
}

func printRecord(w io.Writer, rec model.Record, reportURL string, width int) {
	fmt.Fprintf(w, "%s (%s)\n\n", rec.Filename, ui.FormatTime(rec.Time))
	fmt.Fprintln(w, ui.RenderInsights(ui.InsightsView{
		Result:    normalize.Normalize(rec.Insights),
		ReportURL: reportURL,
		Width:     width,
	}))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
