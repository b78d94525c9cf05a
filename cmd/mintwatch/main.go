package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "mintwatch",
		Short:        "ERC-20 mint/burn watcher with Telegram alerts",
		SilenceUsage: true,
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the chain and relay mint/burn notifications",
		RunE:  runWatch,
	}

	watchCmd.Flags().String("rpc-url", "", "chain RPC endpoint (env RPC_URL)")
	watchCmd.Flags().String("telegram-token", "", "Telegram bot token (env TELEGRAM_TOKEN)")
	watchCmd.Flags().String("telegram-chat-id", "", "Telegram chat id (env TELEGRAM_CHAT_ID)")
	watchCmd.Flags().Uint64("confirmations", 1, "blocks required before notifying")
	watchCmd.Flags().String("token-address", "", "restrict watching to one contract")
	watchCmd.Flags().String("network-name", "Ethereum", "network name shown in messages")
	watchCmd.Flags().String("explorer-url", "https://etherscan.io", "explorer base URL for tx links")
	watchCmd.Flags().String("source", "subscribe", "log acquisition: subscribe or poll")
	watchCmd.Flags().Duration("poll-interval", 12*time.Second, "head poll interval in poll mode")
	watchCmd.Flags().Int("max-retries", 2, "additional attempts for chain calls")
	watchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	watchCmd.Flags().String("archive-path", "", "optional JSONL archive of sent notifications")
	watchCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the notification archive")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(watchCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Scan a historical range and archive mint/burn events",
		RunE:  runBackfill,
	}

	backfillCmd.Flags().String("rpc-url", "", "chain RPC endpoint (env RPC_URL)")
	backfillCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	backfillCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	backfillCmd.Flags().Uint64("batch-size", 2000, "blocks per getLogs batch")
	backfillCmd.Flags().String("token-address", "", "restrict scanning to one contract")
	backfillCmd.Flags().String("network-name", "Ethereum", "network name recorded in the archive")
	backfillCmd.Flags().Int("max-retries", 2, "additional attempts for chain calls")
	backfillCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	backfillCmd.Flags().String("archive-path", "", "JSONL archive output path")
	backfillCmd.Flags().String("pg-dsn", "", "Postgres DSN for the archive")
	backfillCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(backfillCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
