package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mintwatch/internal/chain"
	"mintwatch/internal/config"
	"mintwatch/internal/model"
	"mintwatch/internal/token"
	"mintwatch/internal/watcher"
)

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.RPCURL == "" {
		return fmt.Errorf("missing required configuration: RPC_URL")
	}
	if cfg.TokenAddress != "" && !common.IsHexAddress(cfg.TokenAddress) {
		return fmt.Errorf("invalid TOKEN_ADDRESS: %s", cfg.TokenAddress)
	}
	if cfg.ArchivePath == "" && cfg.PGDSN == "" {
		return fmt.Errorf("backfill needs an archive: set ARCHIVE_PATH or PG_DSN")
	}

	from, _ := cmd.Flags().GetUint64("from")
	to, _ := cmd.Flags().GetUint64("to")
	batchSize, _ := cmd.Flags().GetUint64("batch-size")

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	if to == 0 {
		latest, err := chainClient.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("fetch chain head: %w", err)
		}
		to = latest
	}

	archive, closeArchive, err := newArchive(ctx, cfg.ArchivePath, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer closeArchive()

	ranges, err := watcher.SplitRange(from, to, batchSize)
	if err != nil {
		return err
	}

	filter := watcher.TransferFilter(cfg.Contract())
	source := watcher.NewRangeLogSource(chainClient, filter, cfg.MaxRetries, cfg.RetryBackoff, logger)
	resolver := token.NewResolver(chainClient, cfg.MaxRetries, cfg.RetryBackoff, logger)
	dedup := watcher.NewDeduplicator()

	logger.Info("backfill start", zap.Uint64("from", from), zap.Uint64("to", to), zap.Uint64("batch_size", batchSize))

	var archived int
	for _, rng := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		logs, err := source.FetchRange(ctx, rng.From, rng.To)
		if err != nil {
			return fmt.Errorf("fetch range [%d,%d]: %w", rng.From, rng.To, err)
		}

		var batch []model.Notification
		for _, log := range logs {
			if log.Removed || dedup.Seen(log.TxHash) {
				continue
			}

			ev, err := token.DecodeTransfer(log)
			if err != nil {
				logger.Warn("log skipped", zap.Error(err))
				continue
			}

			class := token.Classify(ev)
			if class == model.Ignored {
				continue
			}

			meta, err := resolver.Resolve(ctx, ev.Token)
			if err != nil {
				logger.Warn("metadata unavailable, using fallback", zap.String("token", ev.Token.Hex()), zap.Error(err))
				meta = model.FallbackTokenMeta(ev.Token.Hex())
			}

			batch = append(batch, model.Notification{
				Kind:        class.String(),
				Network:     cfg.NetworkName,
				Symbol:      meta.Symbol,
				Token:       ev.Token.Hex(),
				From:        ev.From.Hex(),
				To:          ev.To.Hex(),
				Amount:      token.FormatAmount(ev.Amount, meta.Decimals),
				RawAmount:   ev.Amount.String(),
				TxHash:      ev.TxHash.Hex(),
				BlockNumber: ev.BlockNumber,
				SentAt:      time.Now().UTC().Format(time.RFC3339Nano),
			})
			dedup.Record(ev.TxHash)
		}

		if err := archive.PutNotifications(ctx, batch); err != nil {
			return fmt.Errorf("archive batch: %w", err)
		}
		archived += len(batch)

		logger.Info("batch complete", zap.Uint64("from", rng.From), zap.Uint64("to", rng.To), zap.Int("events", len(batch)))
	}

	logger.Info("backfill done", zap.Int("events", archived))
	return nil
}
