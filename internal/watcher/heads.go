package watcher

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// HeadSource emits new chain head heights. The channel closes only when the
// context ends.
type HeadSource interface {
	Heads(ctx context.Context) (<-chan uint64, error)
}

// HeadSubscriber is the chain surface the subscription head source needs.
type HeadSubscriber interface {
	SubscribeNewHeads(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error)
}

// HeadReader is the chain surface the polling head source needs.
type HeadReader interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// SubHeadSource delivers heads via a newHeads websocket subscription,
// reopening the subscription when it drops.
type SubHeadSource struct {
	subscriber     HeadSubscriber
	logger         *zap.Logger
	reconnectDelay time.Duration
}

// NewSubHeadSource builds a subscription-driven head source.
func NewSubHeadSource(subscriber HeadSubscriber, logger *zap.Logger) *SubHeadSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubHeadSource{subscriber: subscriber, logger: logger}
}

// Heads opens the subscription and returns the height channel. The initial
// subscribe failing is returned to the caller so it can fall back to polling.
func (s *SubHeadSource) Heads(ctx context.Context) (<-chan uint64, error) {
	headers := make(chan *types.Header, 16)
	sub, err := s.subscriber.SubscribeNewHeads(ctx, headers)
	if err != nil {
		return nil, err
	}

	out := make(chan uint64, 16)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				sub.Unsubscribe()
				return
			case header := <-headers:
				if header == nil || header.Number == nil {
					continue
				}
				out <- header.Number.Uint64()
			case err := <-sub.Err():
				s.logger.Warn("head subscription dropped", zap.Error(err))
				sub.Unsubscribe()

				next, ok := reopen(ctx, s.reconnectDelay, s.logger, "heads", func() (ethereum.Subscription, error) {
					return s.subscriber.SubscribeNewHeads(ctx, headers)
				})
				if !ok {
					return
				}
				sub = next
			}
		}
	}()
	return out, nil
}

// PollHeadSource delivers heads by polling eth_blockNumber on an interval,
// emitting only when the height moved.
type PollHeadSource struct {
	reader   HeadReader
	interval time.Duration
	logger   *zap.Logger
}

// NewPollHeadSource builds a polling head source.
func NewPollHeadSource(reader HeadReader, interval time.Duration, logger *zap.Logger) *PollHeadSource {
	if interval <= 0 {
		interval = 12 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollHeadSource{reader: reader, interval: interval, logger: logger}
}

// Heads starts the polling loop and returns the height channel.
func (p *PollHeadSource) Heads(ctx context.Context) (<-chan uint64, error) {
	out := make(chan uint64, 16)
	go func() {
		defer close(out)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		var last uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				head, err := p.reader.LatestBlockNumber(ctx)
				if err != nil {
					p.logger.Warn("head poll failed", zap.Error(err))
					continue
				}
				if head <= last {
					continue
				}
				last = head
				out <- head
			}
		}
	}()
	return out, nil
}
