package indexer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"launchScope/internal/model"
	"launchScope/internal/pipeline"
	"launchScope/internal/retry"
)

// BlockScanner classifies the tracked contract's transactions in one block.
type BlockScanner interface {
	Head(ctx context.Context) (uint64, error)
	ScanBlock(ctx context.Context, number uint64) ([]model.ClassifiedEvent, error)
}

// Enricher records creations and completes them in batches.
type Enricher interface {
	Record(ctx context.Context, ev model.ClassifiedEvent) (model.ClassifiedEvent, int)
	CompleteBatch(ctx context.Context, pending []pipeline.Pending) []pipeline.Outcome
}

// RunConfig holds runtime settings for a backfill.
type RunConfig struct {
	Contract          string
	FromBlock         uint64
	ToBlock           uint64
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Summary counts what a backfill processed.
type Summary struct {
	Blocks        uint64
	Events        int
	Creations     int
	Tiered        int
	ArenaPosts    int
	DiscordPosts  int
	LastProcessed uint64
}

// Runner replays a historical block range through the enrichment pipeline.
type Runner struct {
	cfg        RunConfig
	scanner    BlockScanner
	enricher   Enricher
	handlers   []func(model.ClassifiedEvent)
	logger     *zap.Logger
	seen       map[string]struct{}
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner. Handlers receive every classified event in block order.
func NewRunner(cfg RunConfig, scanner BlockScanner, enricher Enricher, logger *zap.Logger, handlers ...func(model.ClassifiedEvent)) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		scanner:    scanner,
		enricher:   enricher,
		handlers:   handlers,
		logger:     logger,
		seen:       make(map[string]struct{}),
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run executes the backfill.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	if r.scanner == nil {
		return summary, fmt.Errorf("scanner is nil")
	}
	if r.enricher == nil {
		return summary, fmt.Errorf("enricher is nil")
	}
	if r.cfg.BatchSize == 0 {
		return summary, fmt.Errorf("batch size must be greater than zero")
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.scanner.Head(ctx)
		if err != nil {
			return summary, fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load()
		if err != nil {
			return summary, err
		}
		switch {
		case ok && !strings.EqualFold(cp.Contract, r.cfg.Contract):
			r.logger.Warn("ignore checkpoint of another contract", zap.String("checkpoint_contract", cp.Contract))
		case ok && cp.LastProcessedBlock >= from:
			from = cp.LastProcessedBlock + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedBlock), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return summary, nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return summary, err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		r.logger.Info("scan blocks",
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
			zap.Uint64("blocks", blockRange.Len()),
		)

		var pending []pipeline.Pending
		for i := uint64(0); i < blockRange.Len(); i++ {
			number := blockRange.From + i
			events, err := r.scanWithRetry(ctx, number)
			if err != nil {
				return summary, fmt.Errorf("scan block %d: %w", number, err)
			}
			summary.Blocks++
			summary.Events += len(events)

			for _, ev := range events {
				r.publish(ev)
				if !ev.IsCreation() || r.isDuplicate(ev) {
					continue
				}
				summary.Creations++
				recorded, count := r.enricher.Record(ctx, ev)
				if count > 1 {
					pending = append(pending, pipeline.Pending{Event: recorded, ContractsCreated: count})
				}
			}
		}

		for _, out := range r.enricher.CompleteBatch(ctx, pending) {
			if out.Tiered {
				summary.Tiered++
			}
			if out.Dispatch.ArenaPosted {
				summary.ArenaPosts++
			}
			if out.Dispatch.DiscordPosted {
				summary.DiscordPosts++
			}
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(r.cfg.Contract, blockRange.To); err != nil {
				return summary, err
			}
		}
		summary.LastProcessed = blockRange.To

		r.logger.Info("batch complete",
			zap.Int("qualifying", len(pending)),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
		)
	}

	return summary, nil
}

func (r *Runner) scanWithRetry(ctx context.Context, number uint64) ([]model.ClassifiedEvent, error) {
	policy := retry.Policy{
		Attempts:   r.cfg.MaxRetries + 1,
		NewBackOff: retry.Exponential(r.cfg.RetryBackoff, 30*r.cfg.RetryBackoff),
	}
	var events []model.ClassifiedEvent
	err := retry.Do(ctx, policy, func(ctx context.Context, _ int) error {
		var err error
		events, err = r.scanner.ScanBlock(ctx, number)
		if err != nil {
			r.logger.Warn("scan block failed", zap.Error(err), zap.Uint64("block_number", number))
		}
		return err
	})
	return events, err
}

func (r *Runner) publish(ev model.ClassifiedEvent) {
	for _, h := range r.handlers {
		h(ev)
	}
}

func (r *Runner) isDuplicate(ev model.ClassifiedEvent) bool {
	id := strings.ToLower(ev.Tx.Hash)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
