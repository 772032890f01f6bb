package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"launchScope/internal/adapter"
	"launchScope/internal/cache"
	"launchScope/internal/identity"
	"launchScope/internal/metrics"
	"launchScope/internal/model"
	"launchScope/internal/retry"
)

const (
	stageHandle = "handle"
	stageUser   = "user"
	stageStats  = "stats"
)

// HandleLookup is the address to handle service.
type HandleLookup interface {
	LookupByAddress(ctx context.Context, address string) (*identity.HandleRecord, error)
}

// SocialLookup is the social profile service.
type SocialLookup interface {
	UserByHandle(ctx context.Context, handle string) (*identity.SocialUser, error)
	UserStats(ctx context.Context, userID string) (*identity.SocialStats, error)
}

// Config controls caching, retries and batch resolution.
type Config struct {
	TTL            time.Duration
	CacheSize      int
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	AttemptTimeout time.Duration
	TimeoutStep    time.Duration
	BatchSize      int
	BatchPause     time.Duration
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		TTL:            5 * time.Minute,
		CacheSize:      5000,
		Attempts:       3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     4 * time.Second,
		AttemptTimeout: 8 * time.Second,
		TimeoutStep:    2 * time.Second,
		BatchSize:      3,
		BatchPause:     time.Second,
	}
}

// Resolver builds creator profiles from the handle and social services.
type Resolver struct {
	cfg     Config
	handles HandleLookup
	social  SocialLookup
	cache   *cache.TTL[string, *model.CreatorProfile]
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(cfg Config, handles HandleLookup, social SocialLookup, logger *zap.Logger, m *metrics.Metrics) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	return &Resolver{
		cfg:     cfg,
		handles: handles,
		social:  social,
		cache:   cache.NewTTL[string, *model.CreatorProfile](cfg.CacheSize, cfg.TTL),
		logger:  logger,
		metrics: m,
	}
}

// Resolve returns the profile of address, served from cache within the TTL.
// A nil profile with nil error means the address has no resolvable profile.
func (r *Resolver) Resolve(ctx context.Context, address string) (*model.CreatorProfile, error) {
	key := strings.ToLower(address)
	if p, ok := r.cache.Get(key); ok {
		return p, nil
	}
	return r.resolve(ctx, key)
}

// ForceRefresh resolves address bypassing the cache and replaces the cached entry.
func (r *Resolver) ForceRefresh(ctx context.Context, address string) (*model.CreatorProfile, error) {
	return r.resolve(ctx, strings.ToLower(address))
}

// resolve caches the result even when it is nil so dead addresses do not cause request storms.
func (r *Resolver) resolve(ctx context.Context, key string) (*model.CreatorProfile, error) {
	profile, err := r.build(ctx, key)
	r.cache.Set(key, profile)
	if err != nil {
		r.logger.Warn("profile resolution failed", zap.String("address", key), zap.Error(err))
	}
	return profile, err
}

func (r *Resolver) build(ctx context.Context, address string) (*model.CreatorProfile, error) {
	var rec *identity.HandleRecord
	err := r.call(ctx, stageHandle, address, func(ctx context.Context) error {
		var err error
		rec, err = r.handles.LookupByAddress(ctx, address)
		return err
	})
	if err != nil {
		if errors.Is(err, adapter.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("handle lookup: %w", err)
	}

	profile := &model.CreatorProfile{Address: address}
	if rec == nil || !applyHandleRecord(profile, rec) {
		return nil, nil
	}

	handle := rec.HandleName()
	if handle == "" {
		return profile, nil
	}

	var user *identity.SocialUser
	err = r.call(ctx, stageUser, address, func(ctx context.Context) error {
		var err error
		user, err = r.social.UserByHandle(ctx, handle)
		return err
	})
	if err != nil || user == nil || user.ID == "" {
		profile.IsChampion = false
		return profile, nil
	}
	applySocialUser(profile, user)

	var stats *identity.SocialStats
	err = r.call(ctx, stageStats, address, func(ctx context.Context) error {
		var err error
		stats, err = r.social.UserStats(ctx, user.ID)
		return err
	})
	if err != nil || stats == nil {
		// Unknown champion status is not champion.
		profile.IsChampion = false
		return profile, nil
	}
	applyStats(profile, stats)
	return profile, nil
}

// call runs one stage request with bounded retries. Not-found is terminal.
func (r *Resolver) call(ctx context.Context, stage, address string, fn func(ctx context.Context) error) error {
	policy := retry.Policy{
		Attempts:       r.cfg.Attempts,
		NewBackOff:     retry.Exponential(r.cfg.InitialBackoff, r.cfg.MaxBackoff),
		AttemptTimeout: r.cfg.AttemptTimeout,
		TimeoutStep:    r.cfg.TimeoutStep,
		Permanent:      func(err error) bool { return errors.Is(err, adapter.ErrNotFound) },
	}

	err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		err := fn(ctx)
		if err != nil && !errors.Is(err, adapter.ErrNotFound) {
			r.logger.Debug("profile stage attempt failed",
				zap.String("stage", stage),
				zap.String("address", address),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	})

	switch {
	case err == nil:
		r.metrics.ProfileStage(stage, "ok")
	case errors.Is(err, adapter.ErrNotFound):
		r.metrics.ProfileStage(stage, "not_found")
	default:
		r.metrics.ProfileStage(stage, "failed")
		r.logger.Warn("profile stage failed", zap.String("stage", stage), zap.String("address", address), zap.Error(err))
	}
	return err
}
