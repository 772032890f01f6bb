package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"launchScope/internal/model"
)

// Journal appends classified events to a JSONL file.
type Journal struct {
	path string
	mu   sync.Mutex
}

func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Append writes events as JSON lines.
func (j *Journal) Append(events ...model.ClassifiedEvent) error {
	if len(events) == 0 {
		return nil
	}

	dir := filepath.Dir(j.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, ev := range events {
		line, err := json.Marshal(journalEntry(ev))
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	return nil
}

// Handler returns a subscriber that journals every event and logs write failures.
func (j *Journal) Handler(logger *zap.Logger) func(model.ClassifiedEvent) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ev model.ClassifiedEvent) {
		if err := j.Append(ev); err != nil {
			logger.Warn("journal write failed", zap.String("tx_hash", ev.Tx.Hash), zap.Error(err))
		}
	}
}

type entry struct {
	model.TransactionRecord
	Description string               `json:"description"`
	Selector    string               `json:"selector"`
	Token       *model.TokenMetadata `json:"token,omitempty"`
}

func journalEntry(ev model.ClassifiedEvent) entry {
	rec := model.NewTransactionRecord(ev)
	return entry{
		TransactionRecord: rec,
		Description:       ev.Description,
		Selector:          ev.Tx.Selector,
		Token:             ev.Token,
	}
}
