package model

import (
	"math/big"
	"time"
)

// TxKind is the classification assigned to a transaction sent to the tracked contract.
type TxKind string

const (
	KindTokenCreation   TxKind = "TOKEN_CREATION"
	KindBuy             TxKind = "BUY"
	KindSell            TxKind = "SELL"
	KindAddLiquidity    TxKind = "ADD_LIQUIDITY"
	KindRemoveLiquidity TxKind = "REMOVE_LIQUIDITY"
	KindApprove         TxKind = "APPROVE"
	KindTransfer        TxKind = "TRANSFER"
	KindUnknown         TxKind = "UNKNOWN"
)

// ChainTransaction is a transaction as fetched from the chain. It is never mutated.
type ChainTransaction struct {
	Hash           string    `json:"hash"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Value          *big.Int  `json:"value"`
	BlockNumber    uint64    `json:"block_number"`
	BlockTimestamp time.Time `json:"block_timestamp"`
	Input          []byte    `json:"input"`
	Selector       string    `json:"selector"`
}

// ClassifiedEvent wraps a transaction with its classification.
// Profile is the only field set after construction.
type ClassifiedEvent struct {
	Tx          ChainTransaction `json:"tx"`
	Kind        TxKind           `json:"kind"`
	Method      string           `json:"method"`
	Description string           `json:"description"`
	Token       *TokenMetadata   `json:"token,omitempty"`
	Profile     *CreatorProfile  `json:"profile,omitempty"`
}

// IsCreation reports whether the event is a token creation.
func (e ClassifiedEvent) IsCreation() bool {
	return e.Kind == KindTokenCreation
}

// CreatorAddress returns the decoded creator override when present, else the sender.
func (e ClassifiedEvent) CreatorAddress() string {
	if e.Token != nil && e.Token.Creator != nil && *e.Token.Creator != "" {
		return *e.Token.Creator
	}
	return e.Tx.From
}

// WithProfile returns a copy of the event with the resolved creator profile attached.
func (e ClassifiedEvent) WithProfile(profile *CreatorProfile) ClassifiedEvent {
	e.Profile = profile
	return e
}
