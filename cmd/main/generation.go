package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CTAG07/Glossa/pkg/dictionary"
	"github.com/CTAG07/Glossa/pkg/markov"
)

// generation is one finished run together with the entry it was built from.
type generation struct {
	*markov.Result
	Source string `json:"source"`
	Word   string `json:"word,omitempty"`
	RunID  string `json:"run_id,omitempty"`
}

// newChain builds a chain over d according to gc. In SourceWord mode the
// model comes from a single random entry, which is returned by name.
func newChain(ctx context.Context, d *dictionary.Dictionary, gc GenerationConfig, logger *slog.Logger) (*markov.Chain, string, error) {
	opts := []markov.ChainOption{markov.WithLogger(logger)}
	if gc.Seed != 0 {
		opts = append(opts, markov.WithSeed(gc.Seed))
	}

	chain, err := markov.NewChain(gc.Order, opts...)
	if err != nil {
		return nil, "", err
	}

	switch gc.Source {
	case SourceWord:
		for _, e := range d.Entries() {
			chain.AddWord(e)
		}
		entry, err := markov.BuildFromRandomEntry(ctx, chain, gc.MaxAttempts)
		if err != nil {
			return nil, "", err
		}
		return chain, entry.Name, nil
	case SourceAll:
		if err = chain.SetDictionary(d); err != nil {
			return nil, "", err
		}
		return chain, "", nil
	default:
		return nil, "", fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, gc.Source)
	}
}

// runGeneration builds a chain over d and generates text from it. An empty
// start picks a random seed state.
func runGeneration(ctx context.Context, d *dictionary.Dictionary, gc GenerationConfig, start markov.State, logger *slog.Logger) (*generation, error) {
	chain, word, err := newChain(ctx, d, gc, logger)
	if err != nil {
		return nil, err
	}

	res, err := markov.Generate(ctx, chain, markov.WithIterations(gc.Iterations), markov.WithSeedState(start))
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Text generated",
		slog.String("source", gc.Source),
		slog.String("word", word),
		slog.Int("order", gc.Order),
		slog.Int("words", res.Words),
		slog.Int("reseeds", res.Reseeds),
	)
	return &generation{Result: res, Source: gc.Source, Word: word}, nil
}

// recordGeneration stores g as a run and sets its ID.
func recordGeneration(ctx context.Context, store *dictionary.Store, g *generation, order int) error {
	run, err := store.RecordRun(ctx, dictionary.Run{
		SourceWord: g.Word,
		Order:      order,
		Iterations: g.Iterations,
		Reseeds:    g.Reseeds,
		Words:      g.Words,
		Text:       g.Text,
	})
	if err != nil {
		return err
	}
	g.RunID = run.ID
	return nil
}
