package markov

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/CTAG07/Glossa/pkg/dictionary"
)

var (
	// ErrInvalidOrder is returned when an n-gram order below 1 is configured.
	ErrInvalidOrder = errors.New("n-gram order must be at least 1")
	// ErrEmptyModel is returned when generation is attempted on a chain
	// without any states.
	ErrEmptyModel = errors.New("markov model is empty")
)

// Chain owns one Markov model together with the order it was built with, the
// dictionary it was derived from and its own random number generator.
//
// A Chain is not safe for concurrent use. Give every goroutine its own chain.
type Chain struct {
	model   *Model
	order   int
	dict    *dictionary.Dictionary
	cleaner *Cleaner
	rng     *rand.Rand
	logger  *slog.Logger
}

// ChainOption is a function that configures a Chain.
type ChainOption func(*Chain)

// WithSeed makes the chain's sampling reproducible.
func WithSeed(seed uint64) ChainOption {
	return func(c *Chain) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand sets the random number generator used for all sampling.
func WithRand(rng *rand.Rand) ChainOption {
	return func(c *Chain) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithCleaner sets the cleaner used by Reset to tokenize lines.
func WithCleaner(cleaner *Cleaner) ChainOption {
	return func(c *Chain) {
		if cleaner != nil {
			c.cleaner = cleaner
		}
	}
}

// WithLogger sets the chain's logger. By default, all logs are discarded.
func WithLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChain creates an empty chain of order n. It fails with ErrInvalidOrder
// if n is below 1.
func NewChain(n int, opts ...ChainOption) (*Chain, error) {
	if n < 1 {
		return nil, fmt.Errorf("new chain with order %d: %w", n, ErrInvalidOrder)
	}

	now := uint64(time.Now().UnixNano())
	c := &Chain{
		model:   newEmptyModel(n),
		order:   n,
		cleaner: defaultCleaner,
		rng:     rand.New(rand.NewPCG(now, now>>1|1)),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewChainFromLines creates a chain of order n and builds its model from
// lines straight away.
func NewChainFromLines(lines []string, n int, opts ...ChainOption) (*Chain, error) {
	c, err := NewChain(n, opts...)
	if err != nil {
		return nil, err
	}
	if err = c.Reset(lines, n); err != nil {
		return nil, err
	}
	return c, nil
}

// SetLogger sets the logger for the Chain.
func (c *Chain) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Reset cleans lines into tokens and rebuilds the model from them.
// See ResetTokens.
func (c *Chain) Reset(lines []string, n int) error {
	if n < 1 {
		return fmt.Errorf("reset with order %d: %w", n, ErrInvalidOrder)
	}
	return c.ResetTokens(c.cleaner.Tokenize(lines), n)
}

// ResetTokens replaces the model with one built from tokens with order n.
// The new model is built completely before it replaces the old one. The only
// error is ErrInvalidOrder, in which case the chain is left untouched; a
// source too short for n produces an empty model, not an error.
func (c *Chain) ResetTokens(tokens []string, n int) error {
	if n < 1 {
		return fmt.Errorf("reset with order %d: %w", n, ErrInvalidOrder)
	}

	model := BuildModel(tokens, n)
	c.model, c.order = model, n

	c.logger.Debug("Model rebuilt",
		slog.Int("order", n),
		slog.Int("tokens", len(tokens)),
		slog.Int("states", model.Len()),
	)
	return nil
}

// SetOrder changes the order used by the next SetDictionary call. It does not
// rebuild the current model; Model().Order() keeps the old value until then.
func (c *Chain) SetOrder(n int) error {
	if n < 1 {
		return fmt.Errorf("set order %d: %w", n, ErrInvalidOrder)
	}
	c.order = n
	return nil
}

// Order returns the chain's configured n-gram size.
func (c *Chain) Order() int {
	return c.order
}

// SetDictionary stores d and rebuilds the model from the definitions of all
// of its entries using the chain's current order.
func (c *Chain) SetDictionary(d *dictionary.Dictionary) error {
	c.dict = d
	var definitions []string
	if d != nil {
		definitions = d.Definitions()
	}
	return c.Reset(definitions, c.order)
}

// AddWord merges e into the chain's dictionary. The model is not rebuilt.
func (c *Chain) AddWord(e dictionary.Entry) {
	if c.dict == nil {
		c.dict = dictionary.New()
	}
	c.dict.Put(e)
}

// Dictionary returns the dictionary the chain was derived from, if any.
func (c *Chain) Dictionary() *dictionary.Dictionary {
	return c.dict
}

// Model returns the chain's current model.
func (c *Chain) Model() *Model {
	return c.model
}

// IsEmpty reports whether the current model has no states. Callers should
// check it after every rebuild and pick another source when it is true.
func (c *Chain) IsEmpty() bool {
	return c.model.IsEmpty()
}

// RandomState picks a state uniformly at random, ignoring how many
// transitions it has, and returns it with its distribution. On an empty
// model it returns NoState and a nil map.
func (c *Chain) RandomState() (State, map[State]float64) {
	if c.model.IsEmpty() {
		return NoState, nil
	}
	s := c.model.states[c.rng.IntN(len(c.model.states))]
	return s, c.model.Transitions(s)
}

// RandomStates returns up to k distinct states picked uniformly at random.
func (c *Chain) RandomStates(k int) []State {
	states := c.model.states
	if k > len(states) {
		k = len(states)
	}
	if k <= 0 {
		return nil
	}
	out := make([]State, 0, k)
	for _, i := range c.rng.Perm(len(states))[:k] {
		out = append(out, states[i])
	}
	return out
}

// RandomEntries returns up to k distinct dictionary entries picked uniformly
// at random.
func (c *Chain) RandomEntries(k int) []dictionary.Entry {
	if c.dict == nil || k <= 0 {
		return nil
	}
	entries := c.dict.Entries()
	if k > len(entries) {
		k = len(entries)
	}
	out := make([]dictionary.Entry, 0, k)
	for _, i := range c.rng.Perm(len(entries))[:k] {
		out = append(out, entries[i])
	}
	return out
}

// Transitions returns the distribution of next states for s, or nil if s is
// not in the model.
func (c *Chain) Transitions(s State) map[State]float64 {
	return c.model.Transitions(s)
}

// RandomTransition picks one of the next states of s uniformly, ignoring
// their probabilities. The boolean is false if s has no transitions.
func (c *Chain) RandomTransition(s State) (State, bool) {
	row := c.model.rows[s]
	if len(row) == 0 {
		return NoState, false
	}
	return row[c.rng.IntN(len(row))].Next, true
}

// Predict draws the next state for current according to the stored
// probabilities. It returns NoState if current is not in the model.
// Repeated calls may return different states.
func (c *Chain) Predict(current State) State {
	row := c.model.rows[current]
	if len(row) == 0 {
		return NoState
	}
	return chooseNext(row, c.rng)
}

// chooseNext is a weighted random pick over a normalized row.
func chooseNext(row []Transition, rng *rand.Rand) State {
	randChoice := rng.Float64()
	for _, t := range row {
		randChoice -= t.Probability
		if randChoice < 0 {
			return t.Next
		}
	}
	// Rounding can leave a tiny remainder once every probability is spent.
	return row[len(row)-1].Next
}
