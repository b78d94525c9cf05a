package watcher

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"mintwatch/internal/chain"
	"mintwatch/internal/model"
)

// LogSource supplies the logs for an inclusive block range. The pipeline is
// agnostic to whether logs arrive by polling or by push subscription.
type LogSource interface {
	FetchRange(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error)
}

// LogReader is the chain surface the polling source depends on.
type LogReader interface {
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// LogSubscriber is the chain surface the streaming source depends on.
type LogSubscriber interface {
	SubscribeLogs(ctx context.Context, addresses []common.Address, topic0 []common.Hash, ch chan<- types.Log) (ethereum.Subscription, error)
}

// RangeLogSource fetches logs on demand with eth_getLogs, retrying transient
// failures before giving up on the batch.
type RangeLogSource struct {
	reader       LogReader
	filter       Filter
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

// NewRangeLogSource builds a poll-by-range source.
func NewRangeLogSource(reader LogReader, filter Filter, maxRetries int, retryBackoff time.Duration, logger *zap.Logger) *RangeLogSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RangeLogSource{
		reader:       reader,
		filter:       filter,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		logger:       logger,
	}
}

// FetchRange returns the matching logs for the inclusive range.
func (s *RangeLogSource) FetchRange(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	var logs []types.Log
	err := chain.WithRetry(ctx, s.maxRetries, s.retryBackoff, 2, func(ctx context.Context) error {
		var err error
		logs, err = s.reader.FilterLogs(ctx, fromBlock, toBlock, s.filter.Addresses, s.filter.Topic0)
		if err != nil {
			s.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

// StreamLogSource receives logs pushed over a websocket subscription and
// buffers them until the pipeline asks for their range. Logs emitted before
// Start are not replayed; the source begins at the subscription point, which
// matches the no-backfill startup behavior.
type StreamLogSource struct {
	subscriber     LogSubscriber
	filter         Filter
	logger         *zap.Logger
	reconnectDelay time.Duration

	mu     sync.Mutex
	buf    []types.Log
	subErr error
}

// NewStreamLogSource builds a push-subscription source.
func NewStreamLogSource(subscriber LogSubscriber, filter Filter, logger *zap.Logger) *StreamLogSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamLogSource{subscriber: subscriber, filter: filter, logger: logger}
}

// Start opens the subscription and pumps incoming logs into the buffer until
// the context ends. A dropped subscription is reopened with capped backoff;
// fetches fail while disconnected so the cursor holds.
func (s *StreamLogSource) Start(ctx context.Context) error {
	ch := make(chan types.Log, 256)
	sub, err := s.subscriber.SubscribeLogs(ctx, s.filter.Addresses, s.filter.Topic0, ch)
	if err != nil {
		return err
	}

	go s.pump(ctx, sub, ch)
	return nil
}

func (s *StreamLogSource) pump(ctx context.Context, sub ethereum.Subscription, ch chan types.Log) {
	for {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
			return
		case log := <-ch:
			s.mu.Lock()
			s.buf = append(s.buf, log)
			s.mu.Unlock()
		case err := <-sub.Err():
			s.logger.Warn("log subscription dropped", zap.Error(err))
			sub.Unsubscribe()

			s.mu.Lock()
			s.subErr = err
			s.mu.Unlock()

			next, ok := reopen(ctx, s.reconnectDelay, s.logger, "logs", func() (ethereum.Subscription, error) {
				return s.subscriber.SubscribeLogs(ctx, s.filter.Addresses, s.filter.Topic0, ch)
			})
			if !ok {
				return
			}

			s.mu.Lock()
			s.subErr = nil
			s.mu.Unlock()
			sub = next
		}
	}
}

// FetchRange drains buffered logs inside the inclusive range. Buffered logs
// above toBlock stay queued for a later pass; logs below fromBlock are
// dropped as already processed.
func (s *StreamLogSource) FetchRange(_ context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subErr != nil {
		return nil, &model.TransportError{Op: "log stream", Err: s.subErr}
	}

	var matched []types.Log
	var pending []types.Log
	for _, log := range s.buf {
		switch {
		case log.BlockNumber < fromBlock:
		case log.BlockNumber <= toBlock:
			matched = append(matched, log)
		default:
			pending = append(pending, log)
		}
	}
	s.buf = pending

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].BlockNumber != matched[j].BlockNumber {
			return matched[i].BlockNumber < matched[j].BlockNumber
		}
		return matched[i].Index < matched[j].Index
	})
	return matched, nil
}
