package model

import (
	"strings"
	"time"
)

// Ticker is one token a creator launched.
type Ticker struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	TxHash    string    `json:"tx_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Creator is the persisted aggregate keyed by wallet address.
type Creator struct {
	WalletAddress    string    `json:"wallet_address"`
	ContractsCreated int       `json:"contracts_created"`
	Tickers          []Ticker  `json:"tickers"`
	FirstSeenAt      time.Time `json:"first_seen_at"`
	LastContractAt   time.Time `json:"last_contract_at"`
}

// HasTicker reports whether the ticker is already recorded by tx hash or symbol.
func (c *Creator) HasTicker(t Ticker) bool {
	for _, existing := range c.Tickers {
		if strings.EqualFold(existing.TxHash, t.TxHash) {
			return true
		}
		if t.Symbol != "" && strings.EqualFold(existing.Symbol, t.Symbol) {
			return true
		}
	}
	return false
}

// RecordsTx reports whether a contract created by the transaction is already counted.
func (c *Creator) RecordsTx(txHash string) bool {
	for _, existing := range c.Tickers {
		if strings.EqualFold(existing.TxHash, txHash) {
			return true
		}
	}
	return false
}

// RecordContract counts a contract and appends its ticker unless the symbol is already listed.
// A transaction that was already counted is ignored and false is returned.
func (c *Creator) RecordContract(t Ticker) bool {
	if t.TxHash != "" && c.RecordsTx(t.TxHash) {
		return false
	}
	c.ContractsCreated++
	if c.FirstSeenAt.IsZero() || t.CreatedAt.Before(c.FirstSeenAt) {
		c.FirstSeenAt = t.CreatedAt
	}
	if t.CreatedAt.After(c.LastContractAt) {
		c.LastContractAt = t.CreatedAt
	}
	if !c.HasTicker(t) {
		c.Tickers = append(c.Tickers, t)
	}
	return true
}
