package main

import (
	"fmt"

	"github.com/CTAG07/Glossa/pkg/dictionary"
	"github.com/CTAG07/Glossa/pkg/markov"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// DictionaryStats summarizes a dictionary and the model built from all of it.
type DictionaryStats struct {
	Words       int               `json:"words"`
	Definitions int               `json:"definitions"`
	Tokens      int               `json:"tokens"`
	Model       markov.ModelStats `json:"model"`
}

func collectStats(d *dictionary.Dictionary, order int) (DictionaryStats, error) {
	cleaner := markov.NewCleaner()
	tokens := cleaner.Tokenize(d.Definitions())
	chain, err := markov.NewChain(order, markov.WithCleaner(cleaner))
	if err != nil {
		return DictionaryStats{}, err
	}
	if err = chain.ResetTokens(tokens, order); err != nil {
		return DictionaryStats{}, err
	}
	return DictionaryStats{
		Words:       d.Len(),
		Definitions: d.DefinitionCount(),
		Tokens:      len(tokens),
		Model:       chain.Model().Stats(),
	}, nil
}

func newStatsCmd(a *app) *cobra.Command {
	var order int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dictionary and model statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("order") {
				order = a.cfg.Generation.Order
			}

			d, err := a.loadDictionary(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := collectStats(d, order)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.format == formatJSON {
				return printJSON(out, stats)
			}
			fmt.Fprintf(out, "Words:                %s\n", humanize.Comma(int64(stats.Words)))
			fmt.Fprintf(out, "Definitions:          %s\n", humanize.Comma(int64(stats.Definitions)))
			fmt.Fprintf(out, "Tokens:               %s\n", humanize.Comma(int64(stats.Tokens)))
			fmt.Fprintf(out, "Order:                %d\n", stats.Model.Order)
			fmt.Fprintf(out, "States:               %s\n", humanize.Comma(int64(stats.Model.States)))
			fmt.Fprintf(out, "Transitions:          %s\n", humanize.Comma(int64(stats.Model.Transitions)))
			fmt.Fprintf(out, "Terminal transitions: %s\n", humanize.Comma(int64(stats.Model.TerminalTransitions)))
			fmt.Fprintf(out, "Max branching:        %s\n", humanize.Comma(int64(stats.Model.MaxBranching)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&order, "order", "n", 0, "N-gram order (overrides config)")
	return cmd
}
