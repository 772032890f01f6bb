package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"launchScope/internal/api"
	"launchScope/internal/config"
	"launchScope/internal/model"
	"launchScope/internal/poller"
)

const shutdownTimeout = 10 * time.Second

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	onCreation := func(ctx context.Context, ev model.ClassifiedEvent) {
		out := c.enricher.HandleCreation(ctx, ev)
		if c.publisher != nil && out.Tiered {
			if err := c.publisher.PublishOutcome(out); err != nil {
				logger.Warn("publish outcome failed", zap.String("tx_hash", ev.Tx.Hash), zap.Error(err))
			}
		}
	}

	p := poller.New(poller.Config{
		PollInterval:  cfg.PollInterval,
		BlockDelay:    cfg.BlockDelay,
		EnrichTimeout: cfg.EnrichTimeout,
	}, c.scanner, onCreation, logger.Named("poller"), c.metrics)

	unsubscribe := p.Subscribe(func(ev model.ClassifiedEvent) {
		logger.Info("transaction",
			zap.String("kind", string(ev.Kind)),
			zap.String("tx_hash", ev.Tx.Hash),
			zap.Uint64("block", ev.Tx.BlockNumber),
			zap.String("from", ev.Tx.From),
			zap.String("description", ev.Description),
		)
	})
	defer unsubscribe()
	for _, h := range c.handlers(logger) {
		unsub := p.Subscribe(h)
		defer unsub()
	}

	logger.Info("monitor start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("contract", cfg.Contract),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Bool("profiles", cfg.ProfilesEnabled()),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.String("journal", cfg.Journal),
		zap.String("nats", cfg.NATSURL),
	)

	var server *api.Server
	if cfg.Listen != "" {
		server = api.New(api.Config{
			Addr:         cfg.Listen,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}, p, c.metrics.Registry, logger.Named("api"))
		go func() {
			if err := server.ListenAndServe(); err != nil {
				logger.Error("api server stopped", zap.Error(err))
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	p.Stop()
	p.Wait()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("api shutdown failed", zap.Error(err))
		}
	}
	return nil
}
