package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"launchScope/internal/model"
	"launchScope/internal/notify"
	"launchScope/internal/storage"
	"launchScope/internal/tier"
)

// ProfileResolver resolves creator profiles.
type ProfileResolver interface {
	Resolve(ctx context.Context, address string) (*model.CreatorProfile, error)
	ResolveMany(ctx context.Context, addresses []string) map[string]*model.CreatorProfile
}

// TokenLocator finds the token contract deployed by a creation transaction and reads its metadata.
type TokenLocator interface {
	ResolveTokenAddress(ctx context.Context, txHash string, blockNumber uint64) (string, error)
	TokenMetadata(ctx context.Context, address string) (*model.TokenMetadata, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, ev model.ClassifiedEvent, profile *model.CreatorProfile, t tier.Tier) notify.Result
}

// Outcome summarizes the enrichment of one creation event.
type Outcome struct {
	Event            model.ClassifiedEvent `json:"event"`
	ContractsCreated int                   `json:"contractsCreated"`
	Profile          *model.CreatorProfile `json:"profile,omitempty"`
	Tier             tier.Tier             `json:"tier,omitempty"`
	Tiered           bool                  `json:"tiered"`
	Dispatch         notify.Result         `json:"dispatch"`
}

// Enricher persists creation events, resolves and tiers their creators, and dispatches notifications.
// Every collaborator failure degrades the outcome; none aborts it.
type Enricher struct {
	store      storage.Gateway
	resolver   ProfileResolver
	tokens     TokenLocator
	dispatcher Dispatcher
	logger     *zap.Logger
}

func NewEnricher(store storage.Gateway, resolver ProfileResolver, tokens TokenLocator, dispatcher Dispatcher, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		store:      store,
		resolver:   resolver,
		tokens:     tokens,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleCreation runs the full enrichment of one creation event.
func (e *Enricher) HandleCreation(ctx context.Context, ev model.ClassifiedEvent) Outcome {
	if !ev.IsCreation() {
		return Outcome{Event: ev}
	}
	ev, count := e.Record(ctx, ev)
	if count <= 1 {
		return Outcome{Event: ev, ContractsCreated: count}
	}

	var profile *model.CreatorProfile
	if e.resolver != nil {
		var err error
		profile, err = e.resolver.Resolve(ctx, ev.CreatorAddress())
		if err != nil {
			e.logger.Warn("creator profile unavailable", zap.String("tx_hash", ev.Tx.Hash), zap.Error(err))
		}
	}
	return e.Complete(ctx, ev, count, profile)
}

// Record persists the transaction, token and creator aggregate and returns the event with its
// token address filled in, plus the creator's contract count. A failed count is zero.
func (e *Enricher) Record(ctx context.Context, ev model.ClassifiedEvent) (model.ClassifiedEvent, int) {
	ev = e.locateToken(ctx, ev)
	creator := strings.ToLower(ev.CreatorAddress())
	log := e.logger.With(zap.String("tx_hash", ev.Tx.Hash), zap.String("creator", creator))

	if e.store == nil {
		return ev, 0
	}

	if err := e.store.UpsertTransaction(ctx, model.NewTransactionRecord(ev)); err != nil {
		log.Warn("persist transaction failed", zap.Error(err))
	}

	ticker := model.Ticker{
		TxHash:    strings.ToLower(ev.Tx.Hash),
		CreatedAt: ev.Tx.BlockTimestamp.UTC(),
	}
	if ev.Token != nil {
		ticker.Symbol = ev.Token.Symbol
		ticker.Name = ev.Token.Name
		if ev.Token.TokenAddress != nil {
			ticker.Address = *ev.Token.TokenAddress
		}
		token := model.Token{
			Address:        ticker.Address,
			Name:           ev.Token.Name,
			Symbol:         ev.Token.Symbol,
			TotalSupply:    ev.Token.TotalSupply,
			CreatorAddress: creator,
			TxHash:         ticker.TxHash,
			BlockNumber:    ev.Tx.BlockNumber,
			CreatedAt:      ev.Tx.BlockTimestamp.Unix(),
		}
		if err := e.store.UpsertToken(ctx, token); err != nil {
			log.Warn("persist token failed", zap.Error(err))
		}
	}

	count, err := e.store.IncrementCreatorContracts(ctx, creator, ticker)
	if err != nil {
		log.Warn("update creator failed", zap.Error(err))
		return ev, 0
	}
	log.Info("creation recorded", zap.Int("contracts_created", count))
	return ev, count
}

// Complete persists a resolved profile, tiers the creator and dispatches notifications.
func (e *Enricher) Complete(ctx context.Context, ev model.ClassifiedEvent, count int, profile *model.CreatorProfile) Outcome {
	out := Outcome{Event: ev, ContractsCreated: count, Profile: profile}
	log := e.logger.With(zap.String("tx_hash", ev.Tx.Hash), zap.String("creator", ev.CreatorAddress()))

	if profile != nil && e.store != nil {
		if err := e.store.UpsertCreatorProfile(ctx, profile); err != nil {
			log.Warn("persist profile failed", zap.Error(err))
		}
	}

	t, ok := tier.Classify(profile, count)
	if !ok {
		log.Debug("tiering skipped", zap.Int("contracts_created", count), zap.Bool("has_profile", profile != nil))
		return out
	}
	out.Tier = t
	out.Tiered = true
	out.Event = ev.WithProfile(profile)

	if e.dispatcher != nil {
		out.Dispatch = e.dispatcher.Dispatch(ctx, out.Event, profile, t)
	}
	log.Info("creation enriched",
		zap.String("tier", string(t)),
		zap.Bool("arena_posted", out.Dispatch.ArenaPosted),
		zap.Bool("discord_posted", out.Dispatch.DiscordPosted),
	)
	return out
}

// locateToken fills the token contract address without touching the caller's metadata.
// When call data could not be decoded, metadata is read from the deployed token instead.
func (e *Enricher) locateToken(ctx context.Context, ev model.ClassifiedEvent) model.ClassifiedEvent {
	if e.tokens == nil || (ev.Token != nil && ev.Token.TokenAddress != nil) {
		return ev
	}
	addr, err := e.tokens.ResolveTokenAddress(ctx, ev.Tx.Hash, ev.Tx.BlockNumber)
	if err != nil {
		e.logger.Debug("token address not found", zap.String("tx_hash", ev.Tx.Hash), zap.Error(err))
		return ev
	}

	if ev.Token == nil {
		meta, err := e.tokens.TokenMetadata(ctx, addr)
		if err != nil {
			e.logger.Debug("token metadata unavailable", zap.String("token", addr), zap.Error(err))
			return ev
		}
		ev.Token = meta
		return ev
	}

	token := *ev.Token
	token.TokenAddress = &addr
	ev.Token = &token
	return ev
}
