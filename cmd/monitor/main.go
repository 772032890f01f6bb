package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "monitor",
		Short:        "Token launch monitor",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Follow the chain head and notify on new launches",
		RunE:  runMonitor,
	}

	addCommonFlags(runCmd.Flags())
	runCmd.Flags().Duration("poll-interval", 3*time.Second, "delay between poll ticks")
	runCmd.Flags().Duration("block-delay", 100*time.Millisecond, "pause between blocks when catching up")
	runCmd.Flags().Duration("enrich-timeout", 2*time.Minute, "deadline for enriching one creation")
	runCmd.Flags().String("listen", ":8080", "control API listen address (empty disables)")

	root.AddCommand(runCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Replay a historical block range through the enrichment pipeline",
		RunE:  runBackfill,
	}

	addCommonFlags(backfillCmd.Flags())
	backfillCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	backfillCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	backfillCmd.Flags().Uint64("batch-size", 500, "blocks per batch")
	backfillCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	backfillCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	backfillCmd.Flags().Int("max-retries", 5, "maximum retry attempts per block")
	backfillCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")

	root.AddCommand(backfillCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(fs *pflag.FlagSet) {
	fs.String("rpc", "", "chain RPC URL")
	fs.String("contract", "", "launch contract address")
	fs.String("pg-dsn", "", "Postgres DSN (empty keeps state in memory)")

	fs.String("handle-api-url", "", "address to handle service base URL")
	fs.String("social-api-url", "", "social profile service base URL")
	fs.String("social-api-token", "", "social profile service token")
	fs.Duration("http-timeout", 10*time.Second, "outbound HTTP timeout")
	fs.Duration("profile-ttl", 5*time.Minute, "creator profile cache TTL")
	fs.Int("resolve-attempts", 3, "attempts per profile stage")

	fs.String("arena-api-url", "", "Arena API base URL")
	fs.String("arena-api-token", "", "Arena API token")
	fs.String("discord-champion-webhook", "", "Discord webhook for champion creators")
	fs.String("discord-heavy-webhook", "", "Discord webhook for heavy hitters")
	fs.String("discord-general-webhook", "", "Discord webhook for everyone else")
	fs.Duration("post-ttl", 24*time.Hour, "post dedup cache TTL")
	fs.Int("post-attempts", 2, "attempts per post")

	fs.String("journal", "", "JSONL journal of classified events (empty disables)")
	fs.String("nats-url", "", "NATS server URL (empty disables publishing)")
	fs.String("nats-subject", "launches", "NATS subject prefix")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
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
