package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// TransferTopic is the topic0 of the ERC-20 Transfer event.
var TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// MintedTokenAddress returns the address of the first contract that emitted a Transfer
// from the zero address among the logs of the given transaction.
func MintedTokenAddress(logs []types.Log, txHash string) (common.Address, bool) {
	zeroTopic := common.BytesToHash(common.Address{}.Bytes())
	for _, l := range logs {
		if txHash != "" && !strings.EqualFold(l.TxHash.Hex(), txHash) {
			continue
		}
		if len(l.Topics) < 3 || l.Topics[0] != TransferTopic {
			continue
		}
		if l.Topics[1] == zeroTopic {
			return l.Address, true
		}
	}
	return common.Address{}, false
}

// ResolveTokenAddress finds the token contract created by a creation transaction.
// It reads the receipt first and falls back to a log query over the creation block.
func (c *Client) ResolveTokenAddress(ctx context.Context, txHash string, blockNumber uint64) (string, error) {
	receipt, err := c.TransactionReceipt(ctx, txHash)
	if err == nil && receipt != nil {
		logs := make([]types.Log, 0, len(receipt.Logs))
		for _, l := range receipt.Logs {
			if l != nil {
				logs = append(logs, *l)
			}
		}
		if addr, ok := MintedTokenAddress(logs, ""); ok {
			return addr.Hex(), nil
		}
	}

	logs, ferr := c.FilterLogs(ctx, blockNumber, blockNumber, nil, []common.Hash{TransferTopic})
	if ferr != nil {
		if err != nil {
			return "", fmt.Errorf("receipt: %v; filter logs: %w", err, ferr)
		}
		return "", fmt.Errorf("filter logs: %w", ferr)
	}
	if addr, ok := MintedTokenAddress(logs, txHash); ok {
		return addr.Hex(), nil
	}
	return "", fmt.Errorf("no mint log for %s", txHash)
}
