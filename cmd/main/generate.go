package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/CTAG07/Glossa/pkg/dictionary"
	"github.com/CTAG07/Glossa/pkg/markov"
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		order      int
		iterations int
		seed       uint64
		source     string
		start      string
		save       bool
		stream     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate text from the dictionary",
		Long: `Builds a Markov chain from the dictionary and walks it for a fixed number of
iterations. With --source word the chain is built from the definitions of one
random word, retrying with another word until the model is not empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gc := a.cfg.Generation
			flags := cmd.Flags()
			if flags.Changed("order") {
				gc.Order = order
			}
			if flags.Changed("iterations") {
				gc.Iterations = iterations
			}
			if flags.Changed("seed") {
				gc.Seed = seed
			}
			if flags.Changed("source") {
				gc.Source = source
			}
			cfg := *a.cfg
			cfg.Generation = gc
			if err := cfg.Validate(); err != nil {
				return err
			}

			if stream && (save || a.format == formatJSON) {
				return errors.New("--stream cannot be combined with --save or json output")
			}

			ctx := cmd.Context()
			d, err := a.loadDictionary(ctx)
			if err != nil {
				return err
			}

			if stream {
				return streamGeneration(ctx, cmd.OutOrStdout(), d, gc, markov.State(start), a)
			}

			g, err := runGeneration(ctx, d, gc, markov.State(start), a.logger)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			if save {
				store, closeStore, err := a.openStore()
				if err != nil {
					return err
				}
				defer closeStore()
				if err = recordGeneration(ctx, store, g, gc.Order); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if a.format == formatJSON {
				return printJSON(out, g)
			}
			if g.Word != "" {
				fmt.Fprintf(out, "Model word: %s\n", g.Word)
			}
			fmt.Fprintf(out, "Seed state: %s\n\n%s\n", g.Seed, g.Text)
			if g.RunID != "" {
				fmt.Fprintf(out, "\nSaved as run %s\n", g.RunID)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&order, "order", "n", 0, "N-gram order (overrides config)")
	flags.IntVarP(&iterations, "iterations", "i", 0, "Number of prediction steps (overrides config)")
	flags.Uint64Var(&seed, "seed", 0, "Random seed; 0 picks one from the clock (overrides config)")
	flags.StringVarP(&source, "source", "s", "", "Model source: all or word (overrides config)")
	flags.StringVar(&start, "start", "", "Seed state to start from; must hold exactly order words")
	flags.BoolVar(&save, "save", false, "Store the result in the database")
	flags.BoolVar(&stream, "stream", false, "Print states as they are generated")
	return cmd
}

// streamGeneration prints every generated state as soon as it is produced.
func streamGeneration(ctx context.Context, w io.Writer, d *dictionary.Dictionary, gc GenerationConfig, start markov.State, a *app) error {
	chain, word, err := newChain(ctx, d, gc, a.logger)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	if word != "" {
		fmt.Fprintf(w, "Model word: %s\n\n", word)
	}

	states, err := markov.GenerateStream(ctx, chain, markov.WithIterations(gc.Iterations), markov.WithSeedState(start))
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	count := 0
	for s := range states {
		if count > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprint(w, s)
		count++
	}
	fmt.Fprintln(w)

	a.logger.InfoContext(ctx, "Text streamed",
		slog.String("source", gc.Source),
		slog.String("word", word),
		slog.Int("states", count),
	)
	return ctx.Err()
}
