package watcher

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"go.uber.org/zap"
)

const (
	defaultReconnectDelay = 2 * time.Second
	maxReconnectDelay     = 30 * time.Second
)

// reopen retries a dropped subscription until it succeeds or the context
// ends, doubling the pause between attempts up to a cap. The second return
// is false only when the context ended.
func reopen(ctx context.Context, delay time.Duration, logger *zap.Logger, stream string, subscribe func() (ethereum.Subscription, error)) (ethereum.Subscription, bool) {
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(delay):
		}

		sub, err := subscribe()
		if err == nil {
			logger.Info("subscription reopened", zap.String("stream", stream))
			return sub, true
		}
		logger.Warn("resubscribe failed", zap.String("stream", stream), zap.Error(err))

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}
