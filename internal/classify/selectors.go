package classify

import "launchScope/internal/model"

// CreationFormat identifies which call layout a creation selector uses.
type CreationFormat int

const (
	FormatNone CreationFormat = iota
	FormatA
	FormatB
)

// Method describes a known selector of the tracked contract.
type Method struct {
	Name        string
	Kind        model.TxKind
	Description string
	Format      CreationFormat
}

const (
	SelectorCreateToken          = "0x0b8c6fec"
	SelectorCreateTokenWithCurve = "0x49a4d2c6"
)

var knownMethods = map[string]Method{
	SelectorCreateToken:          {Name: "createToken", Kind: model.KindTokenCreation, Description: "token creation", Format: FormatA},
	SelectorCreateTokenWithCurve: {Name: "createTokenWithCurve", Kind: model.KindTokenCreation, Description: "token creation with bonding curve", Format: FormatB},

	"0xe8e33700": {Name: "addLiquidity", Kind: model.KindAddLiquidity, Description: "liquidity added"},
	"0xf305d719": {Name: "addLiquidityETH", Kind: model.KindAddLiquidity, Description: "liquidity added with native token"},
	"0xbaa2abde": {Name: "removeLiquidity", Kind: model.KindRemoveLiquidity, Description: "liquidity removed"},
	"0x02751cec": {Name: "removeLiquidityETH", Kind: model.KindRemoveLiquidity, Description: "liquidity removed to native token"},

	"0xd96a094a": {Name: "buy", Kind: model.KindBuy, Description: "token buy"},
	"0x7ff36ab5": {Name: "swapExactETHForTokens", Kind: model.KindBuy, Description: "swap native for tokens"},
	"0xfb3bdb41": {Name: "swapETHForExactTokens", Kind: model.KindBuy, Description: "swap native for exact tokens"},
	"0xb6f9de95": {Name: "swapExactETHForTokensSupportingFeeOnTransferTokens", Kind: model.KindBuy, Description: "swap native for fee-on-transfer tokens"},

	"0xe4849b32": {Name: "sell", Kind: model.KindSell, Description: "token sell"},
	"0x18cbafe5": {Name: "swapExactTokensForETH", Kind: model.KindSell, Description: "swap tokens for native"},
	"0x4a25d94a": {Name: "swapTokensForExactETH", Kind: model.KindSell, Description: "swap tokens for exact native"},
	"0x791ac947": {Name: "swapExactTokensForETHSupportingFeeOnTransferTokens", Kind: model.KindSell, Description: "swap fee-on-transfer tokens for native"},

	"0x095ea7b3": {Name: "approve", Kind: model.KindApprove, Description: "spending approval"},
	"0xa9059cbb": {Name: "transfer", Kind: model.KindTransfer, Description: "token transfer"},
	"0x23b872dd": {Name: "transferFrom", Kind: model.KindTransfer, Description: "delegated token transfer"},
	"0x2e1a7d4d": {Name: "withdraw", Kind: model.KindTransfer, Description: "withdrawal"},
	"0xd0e30db0": {Name: "deposit", Kind: model.KindTransfer, Description: "deposit"},
}

// Lookup returns the known method for a selector.
func Lookup(selector string) (Method, bool) {
	m, ok := knownMethods[normalizeSelector(selector)]
	return m, ok
}
