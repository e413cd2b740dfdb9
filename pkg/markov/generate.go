package markov

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CTAG07/Glossa/pkg/dictionary"
)

var (
	// ErrSeedLength is returned when the seed state does not hold exactly as
	// many words as the model's order.
	ErrSeedLength = errors.New("seed state length does not match n-gram order")
	// ErrNoUsableEntry is returned when no dictionary entry has enough
	// definition text to build a model.
	ErrNoUsableEntry = errors.New("no dictionary entry produced a usable model")
)

// generateOptions is used by Generate to configure default options.
type generateOptions struct {
	iterations int
	seed       State
}

// GenerateOption is a function that configures generation parameters.
type GenerateOption func(*generateOptions)

// WithIterations sets how many prediction steps are taken. Steps that hit a
// dead end and re-seed count towards the total.
func WithIterations(n int) GenerateOption {
	return func(o *generateOptions) { o.iterations = n }
}

// WithSeedState starts generation from s instead of a random state.
func WithSeedState(s State) GenerateOption {
	return func(o *generateOptions) { o.seed = s }
}

// Result is the outcome of one Generate call.
type Result struct {
	Seed       State  `json:"seed"`
	Text       string `json:"text"`
	Words      int    `json:"words"`
	Iterations int    `json:"iterations"`
	Reseeds    int    `json:"reseeds"`
}

// Generate walks the chain for a fixed number of iterations and returns the
// text it produced.
//
// Each step predicts the next state from the current one. When there is no
// prediction, or the prediction runs into the end-marker, the walk re-seeds
// from a random state and continues. Generation stops only when the
// iteration count is reached or ctx is done.
//
// The seed is measured with the chain's cleaner against the order of the
// current model, which may differ from Order() after SetOrder.
func Generate(ctx context.Context, c *Chain, opts ...GenerateOption) (*Result, error) {
	options, seed, err := prepareWalk(c, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Seed: seed}
	var builder strings.Builder
	builder.WriteString(string(seed))

	err = walk(ctx, c, options, res, func(next State) error {
		builder.WriteByte(' ')
		builder.WriteString(string(next))
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Text = builder.String()
	res.Words = c.cleaner.WordCount(res.Text)

	c.logger.DebugContext(ctx, "Generation finished",
		slog.Int("iterations", res.Iterations),
		slog.Int("reseeds", res.Reseeds),
		slog.Int("words", res.Words),
	)
	return res, nil
}

// prepareWalk applies opts and picks a validated seed state.
func prepareWalk(c *Chain, opts []GenerateOption) (*generateOptions, State, error) {
	options := &generateOptions{
		iterations: 500,
	}
	for _, opt := range opts {
		opt(options)
	}

	if c.IsEmpty() {
		return nil, NoState, ErrEmptyModel
	}

	seed := options.seed
	if seed == NoState {
		seed, _ = c.RandomState()
	}
	if seed.IsTerminal() || c.cleaner.WordCount(string(seed)) != c.model.Order() {
		return nil, NoState, fmt.Errorf("seed %q: %w", seed, ErrSeedLength)
	}
	return options, seed, nil
}

// walk runs the prediction loop from res.Seed, passing every appended state
// to emit and counting iterations and re-seeds in res.
func walk(ctx context.Context, c *Chain, options *generateOptions, res *Result, emit func(State) error) error {
	cur := res.Seed
	for res.Iterations < options.iterations {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("generation interrupted after %d iterations: %w", res.Iterations, err)
		}
		res.Iterations++

		next := c.Predict(cur)
		if next == NoState || next.IsTerminal() {
			c.logger.DebugContext(ctx, "Dead end, re-seeding",
				slog.String("state", string(cur)),
				slog.Int("iteration", res.Iterations),
			)
			cur, _ = c.RandomState()
			res.Reseeds++
			continue
		}

		if err := emit(next); err != nil {
			return err
		}
		cur = next
	}
	return nil
}

// BuildFromRandomEntry rebuilds c from the definitions of a single randomly
// picked dictionary entry, moving on to another entry while the model comes
// out empty. At most maxAttempts entries are tried; 0 tries every entry once.
// The entry the model was built from is returned.
func BuildFromRandomEntry(ctx context.Context, c *Chain, maxAttempts int) (dictionary.Entry, error) {
	if c.dict == nil || c.dict.Len() == 0 {
		return dictionary.Entry{}, ErrNoUsableEntry
	}

	candidates := c.RandomEntries(c.dict.Len())
	if maxAttempts > 0 && maxAttempts < len(candidates) {
		candidates = candidates[:maxAttempts]
	}

	for i, entry := range candidates {
		if err := ctx.Err(); err != nil {
			return dictionary.Entry{}, err
		}
		if err := c.Reset(entry.Definitions, c.order); err != nil {
			return dictionary.Entry{}, err
		}
		if !c.IsEmpty() {
			c.logger.InfoContext(ctx, "Model built from dictionary entry",
				slog.String("word", entry.Name),
				slog.Int("attempts", i+1),
				slog.Int("states", c.model.Len()),
			)
			return entry, nil
		}
		c.logger.DebugContext(ctx, "Entry too short for model, trying another",
			slog.String("word", entry.Name),
		)
	}

	return dictionary.Entry{}, fmt.Errorf("tried %d entries: %w", len(candidates), ErrNoUsableEntry)
}
