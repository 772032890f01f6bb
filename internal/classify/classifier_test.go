package classify

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"launchScope/internal/model"
)

func packCreation(t *testing.T, selector, method string, args ...interface{}) []byte {
	t.Helper()
	parsed, err := CreationABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	data, err := parsed.Methods[method].Inputs.Pack(args...)
	if err != nil {
		t.Fatalf("pack %s: %v", method, err)
	}
	return append(hexutil.MustDecode(selector), data...)
}

func TestDecodeCreationFormatA(t *testing.T) {
	c := New(zap.NewNop())
	input := packCreation(t, SelectorCreateToken, methodFormatA, "MyToken", "MYT", big.NewInt(1000), big.NewInt(10))

	meta := c.DecodeCreation(Selector(input), input)
	if meta == nil {
		t.Fatalf("expected metadata")
	}
	if meta.Name != "MyToken" || meta.Symbol != "MYT" || meta.TotalSupply != "1000" {
		t.Fatalf("metadata mismatch: %+v", meta)
	}
	if meta.TaxPercentage == nil || *meta.TaxPercentage != "10" {
		t.Fatalf("tax mismatch: %+v", meta.TaxPercentage)
	}
	if meta.Creator != nil {
		t.Fatalf("format A has no creator")
	}
}

func TestDecodeCreationFormatB(t *testing.T) {
	c := New(zap.NewNop())
	creator := common.HexToAddress("0x4444444444444444444444444444444444444444")
	supply, _ := new(big.Int).SetString("1000000000000000000000000000", 10)
	input := packCreation(t, SelectorCreateTokenWithCurve, methodFormatB,
		big.NewInt(5),
		big.NewInt(100),
		big.NewInt(70),
		common.HexToAddress("0x5555555555555555555555555555555555555555"),
		big.NewInt(250),
		"Curve Coin",
		"CRV2",
		supply,
		creator,
	)

	meta := c.DecodeCreation(Selector(input), input)
	if meta == nil {
		t.Fatalf("expected metadata")
	}
	if meta.Name != "Curve Coin" || meta.Symbol != "CRV2" || meta.TotalSupply != supply.String() {
		t.Fatalf("metadata mismatch: %+v", meta)
	}
	if meta.Creator == nil || *meta.Creator != creator.Hex() {
		t.Fatalf("creator mismatch: %v", meta.Creator)
	}
}

func TestDecodeCreationMalformed(t *testing.T) {
	c := New(zap.NewNop())
	input := append(hexutil.MustDecode(SelectorCreateToken), 0x01, 0x02)
	if meta := c.DecodeCreation(SelectorCreateToken, input); meta != nil {
		t.Fatalf("expected nil metadata for malformed input, got %+v", meta)
	}
	if meta := c.DecodeCreation("0xa9059cbb", input); meta != nil {
		t.Fatalf("expected nil metadata for non-creation selector")
	}
}

func TestClassifyKnownSelectors(t *testing.T) {
	c := New(nil)
	cases := []struct {
		selector string
		kind     model.TxKind
		name     string
	}{
		{SelectorCreateToken, model.KindTokenCreation, "createToken"},
		{"0xF305D719", model.KindAddLiquidity, "addLiquidityETH"},
		{"0x02751cec", model.KindRemoveLiquidity, "removeLiquidityETH"},
		{"0x7ff36ab5", model.KindBuy, "swapExactETHForTokens"},
		{"0x791ac947", model.KindSell, "swapExactTokensForETHSupportingFeeOnTransferTokens"},
		{"0x095ea7b3", model.KindApprove, "approve"},
		{"0x23b872dd", model.KindTransfer, "transferFrom"},
	}
	for _, tc := range cases {
		kind, name, _ := c.Classify(tc.selector, big.NewInt(0))
		if kind != tc.kind || name != tc.name {
			t.Fatalf("%s: got %s/%s want %s/%s", tc.selector, kind, name, tc.kind, tc.name)
		}
	}
}

func TestClassifyFallback(t *testing.T) {
	c := New(nil)
	cases := []struct {
		selector string
		value    *big.Int
		kind     model.TxKind
		desc     string
	}{
		{"0xcreate01", big.NewInt(0), model.KindTokenCreation, "possible token creation"},
		{"0x00token0", big.NewInt(5), model.KindTokenCreation, "possible token creation"},
		{"0xdeadbeef", big.NewInt(1), model.KindBuy, "value sent"},
		{"0x", big.NewInt(1), model.KindBuy, "value sent"},
		{"0xdeadbeef", big.NewInt(0), model.KindUnknown, ""},
		{"0xdeadbeef", nil, model.KindUnknown, ""},
	}
	for _, tc := range cases {
		kind, _, desc := c.Classify(tc.selector, tc.value)
		if kind != tc.kind {
			t.Fatalf("%s: kind %s want %s", tc.selector, kind, tc.kind)
		}
		if tc.desc != "" && desc != tc.desc {
			t.Fatalf("%s: desc %q want %q", tc.selector, desc, tc.desc)
		}
	}
}

func TestClassifyTransactionAttachesMetadata(t *testing.T) {
	c := New(nil)
	input := packCreation(t, SelectorCreateToken, methodFormatA, "MyToken", "MYT", big.NewInt(1000), big.NewInt(10))
	ev := c.ClassifyTransaction(model.ChainTransaction{
		Hash:     "0x01",
		Input:    input,
		Selector: Selector(input),
		Value:    big.NewInt(0),
	})
	if !ev.IsCreation() || ev.Token == nil || ev.Token.Symbol != "MYT" {
		t.Fatalf("event mismatch: %+v", ev)
	}

	ev = c.ClassifyTransaction(model.ChainTransaction{Hash: "0x02", Selector: "0x095ea7b3"})
	if ev.Kind != model.KindApprove || ev.Token != nil {
		t.Fatalf("approve event mismatch: %+v", ev)
	}
}

func TestSelector(t *testing.T) {
	if got := Selector([]byte{0x0b, 0x8c, 0x6f, 0xec, 0x00}); got != SelectorCreateToken {
		t.Fatalf("selector mismatch: %s", got)
	}
	if got := Selector([]byte{0x01}); got != "0x" {
		t.Fatalf("short selector mismatch: %s", got)
	}
}
