package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"launchScope/internal/adapter"
	"launchScope/internal/chain"
	"launchScope/internal/classify"
	"launchScope/internal/config"
	"launchScope/internal/identity"
	"launchScope/internal/metrics"
	"launchScope/internal/model"
	"launchScope/internal/notify"
	"launchScope/internal/pipeline"
	"launchScope/internal/poller"
	"launchScope/internal/publish"
	"launchScope/internal/resolver"
	"launchScope/internal/storage"
	"launchScope/internal/storage/memory"
	"launchScope/internal/storage/postgres"
)

// components are the collaborators shared by the run and backfill commands.
type components struct {
	metrics   *metrics.Metrics
	scanner   *poller.Scanner
	enricher  *pipeline.Enricher
	journal   *storage.Journal
	publisher *publish.Publisher

	closers []func()
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// handlers returns the optional event sinks configured for this process.
func (c *components) handlers(logger *zap.Logger) []func(model.ClassifiedEvent) {
	var hs []func(model.ClassifiedEvent)
	if c.journal != nil {
		hs = append(hs, c.journal.Handler(logger))
	}
	if c.publisher != nil {
		hs = append(hs, c.publisher.Handler())
	}
	return hs
}

func buildComponents(ctx context.Context, cfg config.Config, logger *zap.Logger) (*components, error) {
	c := &components{metrics: metrics.New()}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	c.closers = append(c.closers, chainClient.Close)

	var store storage.Gateway
	if cfg.PGDSN != "" {
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, pg.Close)
		if err := pg.EnsureSchema(ctx); err != nil {
			c.Close()
			return nil, err
		}
		store = pg
	} else {
		logger.Warn("no pg-dsn configured, keeping state in memory")
		store = memory.New()
	}

	httpClient := adapter.NewHTTPClient(nil, cfg.HTTPTimeout)

	var profiles pipeline.ProfileResolver
	if cfg.ProfilesEnabled() {
		rcfg := resolver.DefaultConfig()
		rcfg.TTL = cfg.ProfileTTL
		rcfg.Attempts = cfg.ResolveAttempts
		profiles = resolver.New(
			rcfg,
			identity.NewHandleClient(httpClient, cfg.HandleAPIURL),
			identity.NewSocialClient(httpClient, cfg.SocialAPIURL, cfg.SocialAPIToken),
			logger.Named("resolver"),
			c.metrics,
		)
	} else {
		logger.Warn("profile services not configured, creators will not be tiered")
	}

	var arena notify.ArenaPoster
	if cfg.ArenaAPIURL != "" {
		arena = notify.NewArenaClient(httpClient, cfg.ArenaAPIURL, cfg.ArenaAPIToken)
	}
	dcfg := notify.DefaultConfig()
	dcfg.PostTTL = cfg.PostTTL
	dcfg.Attempts = cfg.PostAttempts
	dcfg.Webhooks = notify.Webhooks{
		Champion:    cfg.DiscordChampionWebhook,
		HeavyHitter: cfg.DiscordHeavyWebhook,
		General:     cfg.DiscordGeneralWebhook,
	}
	dispatcher := notify.NewDispatcher(dcfg, arena, notify.NewDiscordClient(httpClient), store, logger.Named("dispatcher"), c.metrics)

	c.scanner = poller.NewScanner(chainClient, classify.New(logger), cfg.Contract, logger.Named("scanner"), c.metrics)
	c.enricher = pipeline.NewEnricher(store, profiles, chainClient, dispatcher, logger.Named("enricher"))

	if cfg.Journal != "" {
		c.journal = storage.NewJournal(cfg.Journal)
	}
	if cfg.NATSURL != "" {
		pub, err := publish.Connect(publish.Config{
			URL:            cfg.NATSURL,
			Subject:        cfg.NATSSubject,
			ConnectionName: "launch-monitor",
			MaxReconnects:  -1,
			ReconnectWait:  2 * time.Second,
		}, logger.Named("nats"))
		if err != nil {
			c.Close()
			return nil, err
		}
		c.publisher = pub
		c.closers = append(c.closers, pub.Close)
	}

	return c, nil
}
