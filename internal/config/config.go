package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. MONITOR_RPC.
const EnvPrefix = "MONITOR"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL        string
	Contract      string
	PollInterval  time.Duration
	BlockDelay    time.Duration
	EnrichTimeout time.Duration

	PGDSN string

	HandleAPIURL    string
	SocialAPIURL    string
	SocialAPIToken  string
	HTTPTimeout     time.Duration
	ProfileTTL      time.Duration
	ResolveAttempts int

	ArenaAPIURL            string
	ArenaAPIToken          string
	DiscordChampionWebhook string
	DiscordHeavyWebhook    string
	DiscordGeneralWebhook  string
	PostTTL                time.Duration
	PostAttempts           int

	Journal     string
	NATSURL     string
	NATSSubject string
	Listen      string
	LogLevel    string

	FromBlock         uint64
	ToBlock           uint64
	BatchSize         uint64
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("poll-interval", 3*time.Second)
	v.SetDefault("block-delay", 100*time.Millisecond)
	v.SetDefault("enrich-timeout", 2*time.Minute)
	v.SetDefault("http-timeout", 10*time.Second)
	v.SetDefault("profile-ttl", 5*time.Minute)
	v.SetDefault("resolve-attempts", 3)
	v.SetDefault("post-ttl", 24*time.Hour)
	v.SetDefault("post-attempts", 2)
	v.SetDefault("nats-subject", "launches")
	v.SetDefault("listen", ":8080")
	v.SetDefault("log-level", "info")
	v.SetDefault("batch-size", uint64(500))
	v.SetDefault("checkpoint", "./data/checkpoint.json")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:        v.GetString("rpc"),
		Contract:      strings.TrimSpace(v.GetString("contract")),
		PollInterval:  v.GetDuration("poll-interval"),
		BlockDelay:    v.GetDuration("block-delay"),
		EnrichTimeout: v.GetDuration("enrich-timeout"),

		PGDSN: v.GetString("pg-dsn"),

		HandleAPIURL:    v.GetString("handle-api-url"),
		SocialAPIURL:    v.GetString("social-api-url"),
		SocialAPIToken:  v.GetString("social-api-token"),
		HTTPTimeout:     v.GetDuration("http-timeout"),
		ProfileTTL:      v.GetDuration("profile-ttl"),
		ResolveAttempts: v.GetInt("resolve-attempts"),

		ArenaAPIURL:            v.GetString("arena-api-url"),
		ArenaAPIToken:          v.GetString("arena-api-token"),
		DiscordChampionWebhook: v.GetString("discord-champion-webhook"),
		DiscordHeavyWebhook:    v.GetString("discord-heavy-webhook"),
		DiscordGeneralWebhook:  v.GetString("discord-general-webhook"),
		PostTTL:                v.GetDuration("post-ttl"),
		PostAttempts:           v.GetInt("post-attempts"),

		Journal:     v.GetString("journal"),
		NATSURL:     v.GetString("nats-url"),
		NATSSubject: v.GetString("nats-subject"),
		Listen:      v.GetString("listen"),
		LogLevel:    v.GetString("log-level"),

		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		BatchSize:         v.GetUint64("batch-size"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
	}

	return cfg, nil
}

// Validate checks the settings every command needs.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc is required")
	}
	if c.Contract == "" {
		return fmt.Errorf("contract is required")
	}
	if !common.IsHexAddress(c.Contract) {
		return fmt.Errorf("invalid contract address: %s", c.Contract)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive")
	}
	return nil
}

// ProfilesEnabled reports whether both identity services are configured.
func (c Config) ProfilesEnabled() bool {
	return c.HandleAPIURL != "" && c.SocialAPIURL != ""
}
