package chain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"launchScope/internal/classify"
	"launchScope/internal/model"
)

type rpcBlock struct {
	Number       hexutil.Uint64   `json:"number"`
	Timestamp    hexutil.Uint64   `json:"timestamp"`
	Transactions []rpcTransaction `json:"transactions"`
}

type rpcTransaction struct {
	Hash  common.Hash     `json:"hash"`
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value"`
	Input hexutil.Bytes   `json:"input"`
}

func (b *rpcBlock) toBlock() *Block {
	number := uint64(b.Number)
	ts := uint64(b.Timestamp)
	blockTime := time.Unix(int64(ts), 0).UTC()

	txs := make([]model.ChainTransaction, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		txs = append(txs, buildChainTransaction(tx, number, blockTime))
	}

	return &Block{
		Number:       number,
		Timestamp:    ts,
		Transactions: txs,
	}
}

func buildChainTransaction(tx rpcTransaction, blockNumber uint64, blockTime time.Time) model.ChainTransaction {
	to := ""
	if tx.To != nil {
		to = tx.To.Hex()
	}
	value := new(big.Int)
	if tx.Value != nil {
		value = tx.Value.ToInt()
	}
	input := []byte(tx.Input)

	return model.ChainTransaction{
		Hash:           tx.Hash.Hex(),
		From:           tx.From.Hex(),
		To:             to,
		Value:          value,
		BlockNumber:    blockNumber,
		BlockTimestamp: blockTime,
		Input:          input,
		Selector:       classify.Selector(input),
	}
}
