package main

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/CTAG07/Glossa/pkg/dictionary"
	"github.com/dustin/go-humanize"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean <input.csv> <output.csv>",
		Short: "Merge duplicate words of a CSV dictionary into a cleaned CSV",
		Long: `Reads a CSV dictionary with word, definition and optional type columns,
merges rows of the same word and writes one row per definition with a
word,type,definition header. Names are always lowercased; definitions and
types are lowercased when the lowercase config option is set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]

			d, err := readCSVFile(in, a.cfg.Lowercase)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err = dictionary.WriteCSV(&buf, d); err != nil {
				return fmt.Errorf("failed to encode cleaned dictionary: %w", err)
			}
			if err = atomic.WriteFile(out, &buf); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			a.logger.InfoContext(cmd.Context(), "Dictionary cleaned",
				slog.String("input", in),
				slog.String("output", out),
				slog.Int("words", d.Len()),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s words (%s definitions) to %s\n",
				humanize.Comma(int64(d.Len())), humanize.Comma(int64(d.DefinitionCount())), out)
			return nil
		},
	}
}
