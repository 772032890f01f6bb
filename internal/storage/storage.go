package storage

import (
	"context"

	"launchScope/internal/model"
)

// Gateway is the durable store of creators, tokens, profiles and tracked transactions.
// Getters return nil without error when the row does not exist.
type Gateway interface {
	UpsertTransaction(ctx context.Context, rec model.TransactionRecord) error
	UpsertToken(ctx context.Context, token model.Token) error
	UpsertCreatorProfile(ctx context.Context, profile *model.CreatorProfile) error
	GetCreatorByWallet(ctx context.Context, wallet string) (*model.Creator, error)
	// IncrementCreatorContracts records a created contract and returns the creator's contract count.
	// Replaying a transaction already counted leaves the count unchanged.
	IncrementCreatorContracts(ctx context.Context, wallet string, ticker model.Ticker) (int, error)
	// GetTransactionPostFlags returns false when the transaction is not stored.
	GetTransactionPostFlags(ctx context.Context, hash string) (model.PostFlags, bool, error)
	SetTransactionPostFlag(ctx context.Context, hash string, channel model.Channel) error
}
