package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"launchScope/internal/model"
)

// Store is an in-process Gateway used when no database is configured and in tests.
type Store struct {
	mu           sync.RWMutex
	transactions map[string]model.TransactionRecord
	tokens       map[string]model.Token
	profiles     map[string]model.CreatorProfile
	creators     map[string]*model.Creator
}

func New() *Store {
	return &Store{
		transactions: make(map[string]model.TransactionRecord),
		tokens:       make(map[string]model.Token),
		profiles:     make(map[string]model.CreatorProfile),
		creators:     make(map[string]*model.Creator),
	}
}

// UpsertTransaction stores the record keyed by hash, keeping posted flags already set.
func (s *Store) UpsertTransaction(_ context.Context, rec model.TransactionRecord) error {
	if rec.Hash == "" {
		return fmt.Errorf("transaction hash required")
	}
	key := strings.ToLower(rec.Hash)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.transactions[key]; ok {
		rec.Arena = rec.Arena || existing.Arena
		rec.Discord = rec.Discord || existing.Discord
	}
	s.transactions[key] = rec
	return nil
}

func (s *Store) UpsertToken(_ context.Context, token model.Token) error {
	if token.TxHash == "" {
		return fmt.Errorf("token tx hash required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[strings.ToLower(token.TxHash)] = token
	return nil
}

func (s *Store) UpsertCreatorProfile(_ context.Context, profile *model.CreatorProfile) error {
	if profile == nil || profile.Address == "" {
		return fmt.Errorf("profile address required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[strings.ToLower(profile.Address)] = *profile
	return nil
}

func (s *Store) GetCreatorByWallet(_ context.Context, wallet string) (*model.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.creators[strings.ToLower(wallet)]
	if !ok {
		return nil, nil
	}
	out := *c
	out.Tickers = append([]model.Ticker(nil), c.Tickers...)
	return &out, nil
}

func (s *Store) IncrementCreatorContracts(_ context.Context, wallet string, ticker model.Ticker) (int, error) {
	if wallet == "" {
		return 0, fmt.Errorf("wallet required")
	}
	key := strings.ToLower(wallet)

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creators[key]
	if !ok {
		c = &model.Creator{WalletAddress: key}
		s.creators[key] = c
	}
	c.RecordContract(ticker)
	return c.ContractsCreated, nil
}

func (s *Store) GetTransactionPostFlags(_ context.Context, hash string) (model.PostFlags, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.transactions[strings.ToLower(hash)]
	if !ok {
		return model.PostFlags{}, false, nil
	}
	return rec.PostFlags, true, nil
}

func (s *Store) SetTransactionPostFlag(_ context.Context, hash string, channel model.Channel) error {
	key := strings.ToLower(hash)

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.transactions[key]
	if !ok {
		return fmt.Errorf("transaction %s not found", hash)
	}
	switch channel {
	case model.ChannelArena:
		rec.Arena = true
	case model.ChannelDiscord:
		rec.Discord = true
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
	s.transactions[key] = rec
	return nil
}

// Token returns the stored token of a creation transaction.
func (s *Store) Token(txHash string) (model.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[strings.ToLower(txHash)]
	return t, ok
}

// Profile returns the stored profile of an address.
func (s *Store) Profile(address string) (model.CreatorProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[strings.ToLower(address)]
	return p, ok
}

// Transaction returns the stored record of a transaction.
func (s *Store) Transaction(hash string) (model.TransactionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.transactions[strings.ToLower(hash)]
	return rec, ok
}
