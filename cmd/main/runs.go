package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const runPreviewLength = 60

func newRunsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved generation runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}

			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if a.format == formatJSON {
				return printJSON(out, runs)
			}
			for _, run := range runs {
				text := []rune(run.Text)
				preview := string(text)
				if len(text) > runPreviewLength {
					preview = string(text[:runPreviewLength]) + "..."
				}
				word := run.SourceWord
				if word == "" {
					word = "-"
				}
				fmt.Fprintf(out, "%s  %-14s  n=%d  %s words  %s\n    %s\n",
					run.ID, humanize.Time(run.CreatedAt), run.Order, humanize.Comma(int64(run.Words)), word, preview)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of runs to list")
	return cmd
}
