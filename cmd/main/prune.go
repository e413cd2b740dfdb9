package main

import (
	"fmt"

	"github.com/CTAG07/Glossa/pkg/dictionary"
	"github.com/CTAG07/Glossa/pkg/markov"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newPruneCmd(a *app) *cobra.Command {
	var (
		minTokens int
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove stored words whose definitions are too short to build a model",
		Long: `Removes every stored word whose definitions hold fewer than --min-tokens word
tokens. The default is order+1, the fewest tokens a model of the configured
order can be built from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("min-tokens") {
				minTokens = a.cfg.Generation.Order + 1
			}
			if minTokens < 1 {
				return fmt.Errorf("min-tokens must be positive, got %d", minTokens)
			}

			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			d, err := store.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load dictionary: %w", err)
			}

			cleaner := markov.NewCleaner()
			removed := d.Prune(func(e dictionary.Entry) bool {
				return len(cleaner.Tokenize(e.Definitions)) >= minTokens
			})

			out := cmd.OutOrStdout()
			if dryRun {
				for _, name := range removed {
					fmt.Fprintln(out, name)
				}
				fmt.Fprintf(out, "Would remove %s words\n", humanize.Comma(int64(len(removed))))
				return nil
			}

			n, err := store.Delete(ctx, removed)
			if err != nil {
				return fmt.Errorf("failed to prune dictionary: %w", err)
			}
			fmt.Fprintf(out, "Removed %s words, %s remain\n", humanize.Comma(int64(n)), humanize.Comma(int64(d.Len())))
			return nil
		},
	}

	cmd.Flags().IntVar(&minTokens, "min-tokens", 0, "Minimum number of definition tokens a word needs to be kept")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the words that would be removed without removing them")
	return cmd
}
