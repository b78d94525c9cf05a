package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"mintwatch/internal/model"
	"mintwatch/internal/notify"
	"mintwatch/internal/storage"
	"mintwatch/internal/token"
)

// MetaResolver resolves token symbol/decimals for a contract address.
type MetaResolver interface {
	Resolve(ctx context.Context, contract common.Address) (model.TokenMeta, error)
}

// PipelineConfig holds runtime settings for the pipeline.
type PipelineConfig struct {
	Network       string
	Confirmations uint64
}

// Pipeline turns new-head signals into mint/burn notifications. Each pass
// computes the unprocessed block range, fetches its logs, and runs every log
// through dedup check, classification, metadata resolution and dispatch.
type Pipeline struct {
	cfg      PipelineConfig
	source   LogSource
	resolver MetaResolver
	notifier notify.Notifier
	archive  storage.Archive
	dedup    *Deduplicator
	cursor   *Cursor
	logger   *zap.Logger
}

// NewPipeline wires the pipeline stages together. The archive may be nil.
func NewPipeline(
	cfg PipelineConfig,
	source LogSource,
	resolver MetaResolver,
	notifier notify.Notifier,
	archive storage.Archive,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Confirmations == 0 {
		cfg.Confirmations = 1
	}
	return &Pipeline{
		cfg:      cfg,
		source:   source,
		resolver: resolver,
		notifier: notifier,
		archive:  archive,
		dedup:    NewDeduplicator(),
		cursor:   &Cursor{},
		logger:   logger,
	}
}

// Run consumes head heights until the channel closes or the context ends.
// A failed pass is logged and retried implicitly on the next head, since the
// cursor only advances after a fully processed range.
func (p *Pipeline) Run(ctx context.Context, heads <-chan uint64) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case head, ok := <-heads:
			if !ok {
				return fmt.Errorf("head source closed")
			}
			if err := p.Pass(ctx, head); err != nil {
				p.logger.Warn("pass failed", zap.Uint64("head", head), zap.Error(err))
			}
		}
	}
}

// Pass processes all unprocessed blocks that have cleared the confirmation
// gate at the given head height.
func (p *Pipeline) Pass(ctx context.Context, head uint64) error {
	rng, ok := p.cursor.NextRange(head)
	if !ok {
		p.logger.Debug("stale head", zap.Uint64("head", head))
		return nil
	}

	// Blocks above the confirmed height stay unprocessed; the cursor holds
	// so they are fetched again once enough blocks are built on top.
	confirmed, ok := confirmedHeight(head, p.cfg.Confirmations)
	if !ok || confirmed < rng.From {
		p.logger.Debug("awaiting confirmations",
			zap.Uint64("head", head),
			zap.Uint64("next", rng.From),
			zap.Uint64("confirmations", p.cfg.Confirmations),
		)
		return nil
	}
	if confirmed < rng.To {
		rng.To = confirmed
	}

	logs, err := p.source.FetchRange(ctx, rng.From, rng.To)
	if err != nil {
		return fmt.Errorf("fetch range [%d,%d]: %w", rng.From, rng.To, err)
	}

	for _, log := range logs {
		p.handleLog(ctx, log)
	}

	p.cursor.Advance(rng.To)
	p.logger.Debug("range complete", zap.Uint64("from", rng.From), zap.Uint64("to", rng.To), zap.Int("logs", len(logs)))
	return nil
}

// confirmedHeight returns the highest block that has accumulated the
// required confirmations at the given head.
func confirmedHeight(head, confirmations uint64) (uint64, bool) {
	if confirmations <= 1 {
		return head, true
	}
	if head < confirmations-1 {
		return 0, false
	}
	return head - (confirmations - 1), true
}

// handleLog runs one log through the pipeline. Every failure is absorbed
// here: a bad log or a failed dispatch never aborts the batch.
func (p *Pipeline) handleLog(ctx context.Context, log types.Log) {
	if log.Removed {
		p.logger.Debug("reorged log dropped", zap.String("tx", log.TxHash.Hex()))
		return
	}

	// Membership is checked before any decode work so duplicates stay cheap.
	if p.dedup.Seen(log.TxHash) {
		p.logger.Debug("duplicate tx skipped", zap.String("tx", log.TxHash.Hex()))
		return
	}

	ev, err := token.DecodeTransfer(log)
	if err != nil {
		p.logger.Warn("log skipped", zap.Error(err))
		return
	}

	class := token.Classify(ev)
	if class == model.Ignored {
		return
	}

	meta, err := p.resolver.Resolve(ctx, ev.Token)
	if err != nil {
		p.logger.Warn("metadata unavailable, using fallback",
			zap.String("token", ev.Token.Hex()),
			zap.Error(err),
		)
		meta = model.FallbackTokenMeta(ev.Token.Hex())
	}

	notification := buildNotification(p.cfg.Network, class, meta, ev)

	if err := p.notifier.Notify(ctx, notification); err != nil {
		// Not recorded as seen: a later duplicate of this tx retries delivery.
		p.logger.Warn("notification dispatch failed", zap.String("tx", ev.TxHash.Hex()), zap.Error(err))
		return
	}

	p.dedup.Record(ev.TxHash)

	if p.archive != nil {
		if err := p.archive.PutNotifications(ctx, []model.Notification{notification}); err != nil {
			p.logger.Warn("archive write failed", zap.Error(err))
		}
	}
}

func buildNotification(network string, class model.Classification, meta model.TokenMeta, ev model.TransferEvent) model.Notification {
	return model.Notification{
		Kind:        class.String(),
		Network:     network,
		Symbol:      meta.Symbol,
		Token:       ev.Token.Hex(),
		From:        ev.From.Hex(),
		To:          ev.To.Hex(),
		Amount:      token.FormatAmount(ev.Amount, meta.Decimals),
		RawAmount:   ev.Amount.String(),
		TxHash:      ev.TxHash.Hex(),
		BlockNumber: ev.BlockNumber,
		SentAt:      time.Now().UTC().Format(time.RFC3339Nano),
	}
}
