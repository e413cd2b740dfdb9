package markov

import (
	"context"
	"log/slog"
)

// GenerateStream is the streaming form of Generate. The seed state and every
// appended state are sent on the returned channel as they are produced; the
// channel is closed once the iteration count is reached or ctx is done.
// The chain must not be used by anything else until the channel is closed.
func GenerateStream(ctx context.Context, c *Chain, opts ...GenerateOption) (<-chan State, error) {
	options, seed, err := prepareWalk(c, opts)
	if err != nil {
		return nil, err
	}

	stateChan := make(chan State)
	go func() {
		defer close(stateChan)

		send := func(s State) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case stateChan <- s:
				return nil
			}
		}
		if send(seed) != nil {
			return
		}

		res := &Result{Seed: seed}
		if err := walk(ctx, c, options, res, send); err != nil {
			c.logger.DebugContext(ctx, "Stream stopped early",
				slog.Int("iterations", res.Iterations),
				slog.Any("error", err),
			)
		}
	}()

	return stateChan, nil
}
