package notify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"launchScope/internal/adapter"
	"launchScope/internal/cache"
	"launchScope/internal/metrics"
	"launchScope/internal/model"
	"launchScope/internal/retry"
	"launchScope/internal/tier"
)

// PostTypeSuppressed labels Arena cache entries for regular creators that were never posted.
const PostTypeSuppressed = "suppressed"

// FlagStore reads and writes the persisted posted flags.
type FlagStore interface {
	GetTransactionPostFlags(ctx context.Context, hash string) (model.PostFlags, bool, error)
	SetTransactionPostFlag(ctx context.Context, hash string, channel model.Channel) error
}

type ArenaPoster interface {
	Post(ctx context.Context, content string) error
}

type DiscordPoster interface {
	Post(ctx context.Context, webhookURL string, msg DiscordMessage) error
}

// Webhooks are the Discord endpoints per tier.
type Webhooks struct {
	Champion    string
	HeavyHitter string
	General     string
}

// Route returns the webhook for a tier, falling back to lower tiers when unset.
func (w Webhooks) Route(t tier.Tier) string {
	var candidates []string
	switch t {
	case tier.Champion:
		candidates = []string{w.Champion, w.HeavyHitter, w.General}
	case tier.HeavyHitter:
		candidates = []string{w.HeavyHitter, w.General}
	default:
		candidates = []string{w.General}
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

type Config struct {
	PostTTL        time.Duration
	CacheSize      int
	Attempts       int
	BackoffUnit    time.Duration
	AttemptTimeout time.Duration
	Webhooks       Webhooks
}

func DefaultConfig() Config {
	return Config{
		PostTTL:        24 * time.Hour,
		CacheSize:      20000,
		Attempts:       2,
		BackoffUnit:    time.Second,
		AttemptTimeout: 15 * time.Second,
	}
}

// Result reports which channels were posted to by one Dispatch call.
type Result struct {
	ArenaPosted   bool `json:"arenaPosted"`
	DiscordPosted bool `json:"discordPosted"`
}

type postKey struct {
	channel model.Channel
	hash    string
	wallet  string
	symbol  string
}

// Dispatcher posts creation events at most once per channel.
type Dispatcher struct {
	cfg     Config
	arena   ArenaPoster
	discord DiscordPoster
	flags   FlagStore
	cache   *cache.TTL[postKey, model.PostCacheEntry]
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	inflight map[postKey]struct{}
}

func NewDispatcher(cfg Config, arena ArenaPoster, discord DiscordPoster, flags FlagStore, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.PostTTL <= 0 {
		cfg.PostTTL = def.PostTTL
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}
	return &Dispatcher{
		cfg:      cfg,
		arena:    arena,
		discord:  discord,
		flags:    flags,
		cache:    cache.NewTTL[postKey, model.PostCacheEntry](cfg.CacheSize, cfg.PostTTL),
		logger:   logger,
		metrics:  m,
		inflight: make(map[postKey]struct{}),
	}
}

// Dispatch posts a tiered creation event. Arena receives champions and heavy hitters only;
// Discord receives every tier on its routed webhook.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.ClassifiedEvent, profile *model.CreatorProfile, t tier.Tier) Result {
	var res Result

	base := postKey{
		hash:   strings.ToLower(ev.Tx.Hash),
		wallet: strings.ToLower(ev.CreatorAddress()),
	}
	if ev.Token != nil {
		base.symbol = strings.ToLower(ev.Token.Symbol)
	}
	persisted := d.persistedFlags(ctx, base.hash)

	log := d.logger.With(
		zap.String("tx_hash", base.hash),
		zap.String("creator", base.wallet),
		zap.String("tier", string(t)),
	)

	arenaKey := base
	arenaKey.channel = model.ChannelArena
	switch {
	case persisted.Arena || d.cached(arenaKey):
		d.metrics.Post(string(model.ChannelArena), "skipped")
	case t != tier.Champion && t != tier.HeavyHitter:
		d.mark(arenaKey, PostTypeSuppressed)
		d.metrics.Post(string(model.ChannelArena), "suppressed")
	case d.arena == nil:
		log.Debug("arena client not configured")
	default:
		content := arenaContent(ev, profile, t)
		res.ArenaPosted = d.post(ctx, arenaKey, string(t), log, func(ctx context.Context) error {
			return d.arena.Post(ctx, content)
		})
	}

	discordKey := base
	discordKey.channel = model.ChannelDiscord
	webhook := d.cfg.Webhooks.Route(t)
	switch {
	case persisted.Discord || d.cached(discordKey):
		d.metrics.Post(string(model.ChannelDiscord), "skipped")
	case webhook == "" || d.discord == nil:
		log.Debug("no discord webhook configured for tier")
	default:
		msg := discordMessage(ev, profile, t)
		res.DiscordPosted = d.post(ctx, discordKey, string(t), log, func(ctx context.Context) error {
			return d.discord.Post(ctx, webhook, msg)
		})
	}

	return res
}

func (d *Dispatcher) persistedFlags(ctx context.Context, hash string) model.PostFlags {
	if d.flags == nil {
		return model.PostFlags{}
	}
	flags, _, err := d.flags.GetTransactionPostFlags(ctx, hash)
	if err != nil {
		d.logger.Warn("read posted flags failed", zap.String("tx_hash", hash), zap.Error(err))
		return model.PostFlags{}
	}
	return flags
}

func (d *Dispatcher) cached(key postKey) bool {
	entry, ok := d.cache.Get(key)
	return ok && entry.Posted
}

func (d *Dispatcher) mark(key postKey, postType string) {
	d.cache.Set(key, model.PostCacheEntry{Posted: true, Timestamp: time.Now().UTC(), PostType: postType})
}

// post sends one channel post with retries and records success in both layers.
// Concurrent dispatches of the same key are collapsed to one attempt.
func (d *Dispatcher) post(ctx context.Context, key postKey, postType string, log *zap.Logger, send func(ctx context.Context) error) bool {
	if !d.claim(key) {
		d.metrics.Post(string(key.channel), "skipped")
		return false
	}
	defer d.release(key)

	policy := retry.Policy{
		Attempts:       d.cfg.Attempts,
		NewBackOff:     retry.Linear(d.cfg.BackoffUnit),
		AttemptTimeout: d.cfg.AttemptTimeout,
		Permanent:      permanentPostError,
	}
	err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		err := send(ctx)
		if err != nil {
			log.Debug("post attempt failed", zap.String("channel", string(key.channel)), zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	})
	if err != nil {
		d.metrics.Post(string(key.channel), "failed")
		log.Warn("post failed", zap.String("channel", string(key.channel)), zap.Error(err))
		return false
	}

	d.mark(key, postType)
	if d.flags != nil {
		if err := d.flags.SetTransactionPostFlag(ctx, key.hash, key.channel); err != nil {
			log.Warn("persist posted flag failed", zap.String("channel", string(key.channel)), zap.Error(err))
		}
	}
	d.metrics.Post(string(key.channel), "ok")
	log.Info("posted creation", zap.String("channel", string(key.channel)))
	return true
}

// claim reserves the key for one poster. Keys marked posted since the caller's cache check are
// refused; post marks before it releases.
func (d *Dispatcher) claim(key postKey) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inflight[key]; busy {
		return false
	}
	if d.cached(key) {
		return false
	}
	d.inflight[key] = struct{}{}
	return true
}

func (d *Dispatcher) release(key postKey) {
	d.mu.Lock()
	delete(d.inflight, key)
	d.mu.Unlock()
}

// permanentPostError reports client errors that a retry cannot fix. Rate limits are retried.
func permanentPostError(err error) bool {
	if errors.Is(err, adapter.ErrNotFound) {
		return true
	}
	var status *adapter.StatusError
	if errors.As(err, &status) {
		return status.StatusCode >= 400 && status.StatusCode < 500 && status.StatusCode != http.StatusTooManyRequests
	}
	return false
}
