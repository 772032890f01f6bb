package poller

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"launchScope/internal/chain"
	"launchScope/internal/classify"
	"launchScope/internal/metrics"
	"launchScope/internal/model"
)

// BlockSource is the subset of the chain client the scanner reads from.
type BlockSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockWithTransactions(ctx context.Context, number uint64) (*chain.Block, error)
}

// Scanner turns blocks into classified events for one tracked contract.
type Scanner struct {
	source     BlockSource
	classifier *classify.Classifier
	contract   string
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func NewScanner(source BlockSource, classifier *classify.Classifier, contract string, logger *zap.Logger, m *metrics.Metrics) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if classifier == nil {
		classifier = classify.New(logger)
	}
	return &Scanner{
		source:     source,
		classifier: classifier,
		contract:   strings.ToLower(contract),
		logger:     logger,
		metrics:    m,
	}
}

// Head returns the current chain head.
func (s *Scanner) Head(ctx context.Context) (uint64, error) {
	return s.source.LatestBlockNumber(ctx)
}

// ScanBlock fetches a block and classifies every transaction addressed to the tracked contract.
func (s *Scanner) ScanBlock(ctx context.Context, number uint64) ([]model.ClassifiedEvent, error) {
	block, err := s.source.BlockWithTransactions(ctx, number)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, fmt.Errorf("block %d: %w", number, chain.ErrBlockNotFound)
	}
	s.metrics.BlockScanned()

	var events []model.ClassifiedEvent
	for _, tx := range block.Transactions {
		if strings.ToLower(tx.To) != s.contract {
			continue
		}
		ev := s.classifier.ClassifyTransaction(tx)
		s.metrics.EventClassified(string(ev.Kind))
		s.logger.Debug("classified transaction",
			zap.String("tx_hash", tx.Hash),
			zap.Uint64("block", number),
			zap.String("kind", string(ev.Kind)),
			zap.String("method", ev.Method),
		)
		events = append(events, ev)
	}
	return events, nil
}
