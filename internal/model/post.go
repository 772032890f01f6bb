package model

import "time"

// Channel names a notification destination.
type Channel string

const (
	ChannelArena   Channel = "arena"
	ChannelDiscord Channel = "discord"
)

// PostFlags are the persisted "already posted" flags of a transaction record.
type PostFlags struct {
	Arena   bool `json:"posted_to_arena"`
	Discord bool `json:"posted_to_discord"`
}

// Posted returns the flag for the channel.
func (f PostFlags) Posted(ch Channel) bool {
	switch ch {
	case ChannelArena:
		return f.Arena
	case ChannelDiscord:
		return f.Discord
	default:
		return false
	}
}

// PostCacheEntry is the in-process record of a post attempt outcome.
type PostCacheEntry struct {
	Posted    bool      `json:"posted"`
	Timestamp time.Time `json:"timestamp"`
	PostType  string    `json:"post_type"`
}

// TransactionRecord is the persisted form of a tracked transaction.
type TransactionRecord struct {
	Hash           string    `json:"hash"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Value          string    `json:"value"`
	BlockNumber    uint64    `json:"block_number"`
	BlockTimestamp time.Time `json:"block_timestamp"`
	Kind           TxKind    `json:"kind"`
	Method         string    `json:"method"`
	TokenSymbol    string    `json:"token_symbol,omitempty"`
	TokenAddress   string    `json:"token_address,omitempty"`
	CreatorAddress string    `json:"creator_address"`
	PostFlags
}

// NewTransactionRecord builds the persisted record from a classified event.
func NewTransactionRecord(ev ClassifiedEvent) TransactionRecord {
	rec := TransactionRecord{
		Hash:           ev.Tx.Hash,
		From:           ev.Tx.From,
		To:             ev.Tx.To,
		Value:          "0",
		BlockNumber:    ev.Tx.BlockNumber,
		BlockTimestamp: ev.Tx.BlockTimestamp,
		Kind:           ev.Kind,
		Method:         ev.Method,
		CreatorAddress: ev.CreatorAddress(),
	}
	if ev.Tx.Value != nil {
		rec.Value = ev.Tx.Value.String()
	}
	if ev.Token != nil {
		rec.TokenSymbol = ev.Token.Symbol
		if ev.Token.TokenAddress != nil {
			rec.TokenAddress = *ev.Token.TokenAddress
		}
	}
	return rec
}
