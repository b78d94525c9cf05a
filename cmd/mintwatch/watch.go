package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mintwatch/internal/chain"
	"mintwatch/internal/config"
	"mintwatch/internal/notify"
	"mintwatch/internal/storage"
	"mintwatch/internal/storage/postgres"
	"mintwatch/internal/token"
	"mintwatch/internal/watcher"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

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

	// Connectivity check before anything else starts.
	head, err := chainClient.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("fetch chain head: %w", err)
	}

	telegram := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, cfg.ExplorerURL, logger)
	if err := telegram.Verify(ctx); err != nil {
		return err
	}

	archive, closeArchive, err := newArchive(ctx, cfg.ArchivePath, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer closeArchive()

	filter := watcher.TransferFilter(cfg.Contract())

	var source watcher.LogSource
	if cfg.Source == config.SourceSubscribe {
		stream := watcher.NewStreamLogSource(chainClient, filter, logger)
		if err := stream.Start(ctx); err != nil {
			logger.Warn("log subscription unavailable, falling back to range polling", zap.Error(err))
			source = watcher.NewRangeLogSource(chainClient, filter, cfg.MaxRetries, cfg.RetryBackoff, logger)
		} else {
			source = stream
		}
	} else {
		source = watcher.NewRangeLogSource(chainClient, filter, cfg.MaxRetries, cfg.RetryBackoff, logger)
	}

	heads, err := newHeads(ctx, chainClient, cfg, logger)
	if err != nil {
		return err
	}

	resolver := token.NewResolver(chainClient, cfg.MaxRetries, cfg.RetryBackoff, logger)

	pipeline := watcher.NewPipeline(watcher.PipelineConfig{
		Network:       cfg.NetworkName,
		Confirmations: cfg.Confirmations,
	}, source, resolver, telegram, archive, logger)

	logger.Info("watch start",
		zap.Uint64("head", head),
		zap.String("network", cfg.NetworkName),
		zap.String("token", cfg.TokenAddress),
		zap.Uint64("confirmations", cfg.Confirmations),
		zap.String("source", cfg.Source),
	)

	err = pipeline.Run(ctx, heads)
	if ctx.Err() != nil {
		logger.Info("watch stopped")
		return nil
	}
	return err
}

// newHeads prefers the newHeads subscription and falls back to polling when
// the endpoint does not support subscriptions.
func newHeads(ctx context.Context, chainClient *chain.Client, cfg config.Config, logger *zap.Logger) (<-chan uint64, error) {
	if cfg.Source == config.SourceSubscribe {
		heads, err := watcher.NewSubHeadSource(chainClient, logger).Heads(ctx)
		if err == nil {
			return heads, nil
		}
		logger.Warn("head subscription unavailable, falling back to polling", zap.Error(err))
	}
	return watcher.NewPollHeadSource(chainClient, cfg.PollInterval, logger).Heads(ctx)
}

// newArchive builds the optional notification archive. Postgres wins when
// both are configured.
func newArchive(ctx context.Context, archivePath, pgDSN string) (storage.Archive, func(), error) {
	switch {
	case pgDSN != "":
		store, err := postgres.NewStore(ctx, pgDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect archive db: %w", err)
		}
		return store, store.Close, nil
	case archivePath != "":
		return storage.NewJsonlArchive(archivePath), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
