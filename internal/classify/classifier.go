package classify

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"launchScope/internal/model"
)

// ErrUnknownFormat is returned when a selector has no creation layout.
var ErrUnknownFormat = errors.New("selector has no creation layout")

// Classifier maps call data to transaction kinds and decodes creation metadata.
type Classifier struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{logger: logger}
}

// Selector returns the 0x-prefixed hex of the first four bytes of call data,
// or "0x" when the input is shorter than a selector.
func Selector(input []byte) string {
	if len(input) < 4 {
		return "0x"
	}
	return hexutil.Encode(input[:4])
}

// Classify returns the kind, method name and description for a selector.
// Unknown selectors fall back to a substring heuristic and then to the sent value;
// historical tagging depends on this exact order.
func (c *Classifier) Classify(selector string, value *big.Int) (model.TxKind, string, string) {
	if m, ok := Lookup(selector); ok {
		return m.Kind, m.Name, m.Description
	}

	lower := strings.ToLower(selector)
	if strings.Contains(lower, "create") || strings.Contains(lower, "token") {
		return model.KindTokenCreation, "unknown", "possible token creation"
	}
	if value != nil && value.Sign() > 0 {
		return model.KindBuy, "unknown", "value sent"
	}
	return model.KindUnknown, "unknown", "unknown method " + selector
}

// DecodeCreation decodes token metadata from creation call data. It returns nil when
// the selector has no known layout or the data does not decode; failures are logged.
func (c *Classifier) DecodeCreation(selector string, input []byte) *model.TokenMetadata {
	meta, err := decodeCreation(selector, input)
	if err != nil {
		if !errors.Is(err, ErrUnknownFormat) {
			c.logger.Warn("creation decode failed", zap.String("selector", selector), zap.Error(err))
		}
		return nil
	}
	return meta
}

// ClassifyTransaction builds a ClassifiedEvent for a transaction.
func (c *Classifier) ClassifyTransaction(tx model.ChainTransaction) model.ClassifiedEvent {
	kind, name, desc := c.Classify(tx.Selector, tx.Value)
	ev := model.ClassifiedEvent{
		Tx:          tx,
		Kind:        kind,
		Method:      name,
		Description: desc,
	}
	if kind == model.KindTokenCreation {
		ev.Token = c.DecodeCreation(tx.Selector, tx.Input)
	}
	return ev
}

func decodeCreation(selector string, input []byte) (*model.TokenMetadata, error) {
	m, ok := Lookup(selector)
	if !ok || m.Format == FormatNone {
		return nil, ErrUnknownFormat
	}
	if len(input) < 4 {
		return nil, fmt.Errorf("call data too short: %d bytes", len(input))
	}

	parsed, err := CreationABI()
	if err != nil {
		return nil, fmt.Errorf("parse creation abi: %w", err)
	}

	switch m.Format {
	case FormatA:
		values, err := unpack(parsed, methodFormatA, input[4:])
		if err != nil {
			return nil, err
		}
		name, symbol, supply, err := nameSymbolSupply(values, 0)
		if err != nil {
			return nil, err
		}
		meta := &model.TokenMetadata{Name: name, Symbol: symbol, TotalSupply: supply}
		if tax, ok := values[3].(*big.Int); ok {
			s := tax.String()
			meta.TaxPercentage = &s
		}
		return meta, nil
	case FormatB:
		values, err := unpack(parsed, methodFormatB, input[4:])
		if err != nil {
			return nil, err
		}
		name, symbol, supply, err := nameSymbolSupply(values, 5)
		if err != nil {
			return nil, err
		}
		meta := &model.TokenMetadata{Name: name, Symbol: symbol, TotalSupply: supply}
		if creator, ok := values[8].(common.Address); ok && creator != (common.Address{}) {
			s := creator.Hex()
			meta.Creator = &s
		}
		return meta, nil
	default:
		return nil, ErrUnknownFormat
	}
}

func unpack(parsed abi.ABI, method string, data []byte) ([]interface{}, error) {
	values, err := parsed.Methods[method].Inputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func nameSymbolSupply(values []interface{}, offset int) (string, string, string, error) {
	if len(values) < offset+3 {
		return "", "", "", fmt.Errorf("expected at least %d values, got %d", offset+3, len(values))
	}
	name, ok := values[offset].(string)
	if !ok {
		return "", "", "", fmt.Errorf("name: unsupported type %T", values[offset])
	}
	symbol, ok := values[offset+1].(string)
	if !ok {
		return "", "", "", fmt.Errorf("symbol: unsupported type %T", values[offset+1])
	}
	supply, ok := values[offset+2].(*big.Int)
	if !ok {
		return "", "", "", fmt.Errorf("total supply: unsupported type %T", values[offset+2])
	}
	return name, symbol, supply.String(), nil
}

func normalizeSelector(selector string) string {
	s := strings.ToLower(strings.TrimSpace(selector))
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return s
}
