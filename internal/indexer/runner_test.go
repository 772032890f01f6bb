package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"launchScope/internal/model"
	"launchScope/internal/pipeline"
	"launchScope/internal/tier"
)

const contract = "0xC0DE000000000000000000000000000000000001"

type fakeScanner struct {
	mu      sync.Mutex
	head    uint64
	events  map[uint64][]model.ClassifiedEvent
	fail    map[uint64]int
	scanned []uint64
}

func (f *fakeScanner) Head(context.Context) (uint64, error) {
	return f.head, nil
}

func (f *fakeScanner) ScanBlock(_ context.Context, number uint64) ([]model.ClassifiedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[number] > 0 {
		f.fail[number]--
		return nil, errors.New("rpc unavailable")
	}
	f.scanned = append(f.scanned, number)
	return f.events[number], nil
}

type fakeEnricher struct {
	counts  map[string]int
	batches [][]pipeline.Pending
}

func (f *fakeEnricher) Record(_ context.Context, ev model.ClassifiedEvent) (model.ClassifiedEvent, int) {
	f.counts[ev.Tx.From]++
	return ev, f.counts[ev.Tx.From]
}

func (f *fakeEnricher) CompleteBatch(_ context.Context, pending []pipeline.Pending) []pipeline.Outcome {
	f.batches = append(f.batches, pending)
	out := make([]pipeline.Outcome, 0, len(pending))
	for _, p := range pending {
		out = append(out, pipeline.Outcome{
			Event:            p.Event,
			ContractsCreated: p.ContractsCreated,
			Tiered:           true,
			Tier:             tier.Regular,
		})
	}
	return out
}

func creationAt(block uint64, hash, from string) model.ClassifiedEvent {
	return model.ClassifiedEvent{
		Tx:   model.ChainTransaction{Hash: hash, From: from, BlockNumber: block},
		Kind: model.KindTokenCreation,
	}
}

func TestRunnerBackfill(t *testing.T) {
	scanner := &fakeScanner{
		head: 20,
		events: map[uint64][]model.ClassifiedEvent{
			10: {creationAt(10, "0x01", "alice")},
			11: {{Tx: model.ChainTransaction{Hash: "0x02", From: "bob"}, Kind: model.KindBuy}},
			12: {creationAt(12, "0x03", "alice"), creationAt(12, "0x03", "alice")},
			13: {creationAt(13, "0x04", "carol")},
		},
		fail: map[uint64]int{11: 1},
	}
	enricher := &fakeEnricher{counts: map[string]int{}}

	var published []string
	runner := NewRunner(RunConfig{
		Contract:   contract,
		FromBlock:  10,
		ToBlock:    13,
		BatchSize:  2,
		MaxRetries: 2,
	}, scanner, enricher, nil, func(ev model.ClassifiedEvent) {
		published = append(published, ev.Tx.Hash)
	})

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Blocks != 4 || summary.Events != 5 || summary.Creations != 3 {
		t.Fatalf("summary mismatch: %+v", summary)
	}
	if summary.Tiered != 1 || summary.LastProcessed != 13 {
		t.Fatalf("summary mismatch: %+v", summary)
	}
	if len(published) != 5 {
		t.Fatalf("expected every event to be published, got %v", published)
	}
	if len(enricher.batches) != 2 {
		t.Fatalf("expected one completion per range, got %d", len(enricher.batches))
	}
	if len(enricher.batches[1]) != 1 || enricher.batches[1][0].Event.Tx.Hash != "0x03" {
		t.Fatalf("second range should complete alice's second creation: %+v", enricher.batches[1])
	}
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := NewCheckpointStore(path, true).Save(contract, 14); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	scanner := &fakeScanner{head: 16}
	runner := NewRunner(RunConfig{
		Contract:          contract,
		FromBlock:         10,
		BatchSize:         10,
		CheckpointPath:    path,
		CheckpointEnabled: true,
	}, scanner, &fakeEnricher{counts: map[string]int{}}, nil)

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if fmt.Sprint(scanner.scanned) != "[15 16]" {
		t.Fatalf("expected to resume at 15, scanned %v", scanner.scanned)
	}

	cp, ok, err := NewCheckpointStore(path, true).Load()
	if err != nil || !ok {
		t.Fatalf("load checkpoint: %v %v", ok, err)
	}
	if cp.LastProcessedBlock != 16 {
		t.Fatalf("checkpoint not advanced: %+v", cp)
	}
}

func TestRunnerIgnoresCheckpointOfOtherContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := NewCheckpointStore(path, true).Save("0xother", 14); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	scanner := &fakeScanner{head: 11}
	runner := NewRunner(RunConfig{
		Contract:          contract,
		FromBlock:         10,
		BatchSize:         10,
		CheckpointPath:    path,
		CheckpointEnabled: true,
	}, scanner, &fakeEnricher{counts: map[string]int{}}, nil)

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if fmt.Sprint(scanner.scanned) != "[10 11]" {
		t.Fatalf("expected full range, scanned %v", scanner.scanned)
	}
}

func TestRunnerStopsOnPersistentScanFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	scanner := &fakeScanner{head: 5, fail: map[uint64]int{4: 10}}
	runner := NewRunner(RunConfig{
		Contract:          contract,
		FromBlock:         1,
		ToBlock:           5,
		BatchSize:         2,
		CheckpointPath:    path,
		CheckpointEnabled: true,
		MaxRetries:        1,
	}, scanner, &fakeEnricher{counts: map[string]int{}}, nil)

	summary, err := runner.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if summary.LastProcessed != 2 {
		t.Fatalf("only the first range should complete: %+v", summary)
	}

	cp, ok, err := NewCheckpointStore(path, true).Load()
	if err != nil || !ok || cp.LastProcessedBlock != 2 {
		t.Fatalf("checkpoint mismatch: %+v %v %v", cp, ok, err)
	}
}
