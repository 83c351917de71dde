package indexer

import (
	"context"
	"time"
)

// withBackoff runs op up to retries+1 times, doubling the wait between
// attempts. RPC reads are idempotent so repeating them is safe; the
// context cancels the wait, not a running attempt.
func withBackoff(ctx context.Context, retries int, base time.Duration, op func(context.Context) error) error {
	delay := base
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if attempt >= retries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
