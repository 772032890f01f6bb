package model

// TokenMetadata is decoded from creation call data.
type TokenMetadata struct {
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	TotalSupply   string  `json:"total_supply"`
	TaxPercentage *string `json:"tax_percentage,omitempty"`
	Creator       *string `json:"creator,omitempty"`
	TokenAddress  *string `json:"token_address,omitempty"`
}

// Token is the persisted record of a created token.
type Token struct {
	Address        string `json:"address"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	TotalSupply    string `json:"total_supply"`
	CreatorAddress string `json:"creator_address"`
	TxHash         string `json:"tx_hash"`
	BlockNumber    uint64 `json:"block_number"`
	CreatedAt      int64  `json:"created_at"`
}
