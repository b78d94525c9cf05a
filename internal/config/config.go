package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Source selects how logs are acquired from the chain.
const (
	SourceSubscribe = "subscribe"
	SourcePoll      = "poll"
)

// Config holds configuration values loaded from flags, environment
// variables, or an optional .env file.
type Config struct {
	RPCURL         string
	TelegramToken  string
	TelegramChatID string
	Confirmations  uint64
	TokenAddress   string
	NetworkName    string
	ExplorerURL    string
	Source         string
	PollInterval   time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	ArchivePath    string
	PGDSN          string
	LogLevel       string
}

// Load merges a .env file (when present), environment variables, and flags
// into Config. Environment keys use the flat names (RPC_URL, TELEGRAM_TOKEN,
// TELEGRAM_CHAT_ID, ...).
func Load(flags *pflag.FlagSet) (Config, error) {
	// Missing .env is fine; real environments export variables directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("confirmations", uint64(1))
	v.SetDefault("network-name", "Ethereum")
	v.SetDefault("explorer-url", "https://etherscan.io")
	v.SetDefault("source", SourceSubscribe)
	v.SetDefault("poll-interval", 12*time.Second)
	v.SetDefault("max-retries", 2)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := Config{
		RPCURL:         v.GetString("rpc-url"),
		TelegramToken:  v.GetString("telegram-token"),
		TelegramChatID: v.GetString("telegram-chat-id"),
		Confirmations:  v.GetUint64("confirmations"),
		TokenAddress:   strings.TrimSpace(v.GetString("token-address")),
		NetworkName:    v.GetString("network-name"),
		ExplorerURL:    v.GetString("explorer-url"),
		Source:         strings.ToLower(strings.TrimSpace(v.GetString("source"))),
		PollInterval:   v.GetDuration("poll-interval"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		ArchivePath:    v.GetString("archive-path"),
		PGDSN:          v.GetString("pg-dsn"),
		LogLevel:       v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks required values and value shapes. A non-nil error is
// fatal at startup.
func (c Config) Validate() error {
	var missing []string
	if c.RPCURL == "" {
		missing = append(missing, "RPC_URL")
	}
	if c.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_TOKEN")
	}
	if c.TelegramChatID == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.TokenAddress != "" && !common.IsHexAddress(c.TokenAddress) {
		return fmt.Errorf("invalid TOKEN_ADDRESS: %s", c.TokenAddress)
	}
	if c.Source != SourceSubscribe && c.Source != SourcePoll {
		return fmt.Errorf("invalid SOURCE: %s (want %s or %s)", c.Source, SourceSubscribe, SourcePoll)
	}

	return nil
}

// Contract returns the watched contract address, or nil when every contract
// emitting the Transfer signature is watched.
func (c Config) Contract() *common.Address {
	if c.TokenAddress == "" {
		return nil
	}
	addr := common.HexToAddress(c.TokenAddress)
	return &addr
}
