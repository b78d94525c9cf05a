package chain

import (
	"context"
	"time"
)

// WithRetry runs fn up to maxRetries additional times on failure, sleeping
// between attempts with the delay scaled by multiplier each round.
func WithRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, multiplier float64, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	if multiplier < 1 {
		multiplier = 1
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * multiplier)
	}
}
