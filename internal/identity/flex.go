package identity

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexInt decodes integers sent either as JSON numbers or numeric strings, including exponent
// form. Fractional or out-of-range values decode as absent.
type FlexInt struct {
	Value int64
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}
	v, ok := flexInteger(data)
	if !ok || !v.IsInt64() {
		return nil
	}
	*f = FlexInt{Value: v.Int64(), Valid: true}
	return nil
}

// Ptr returns the value as an optional.
func (f FlexInt) Ptr() *int64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// FlexBig decodes arbitrary precision integers sent as numbers or strings, including exponent
// form. Fractional values decode as absent.
type FlexBig struct {
	Value *big.Int
}

func (f *FlexBig) UnmarshalJSON(data []byte) error {
	f.Value = nil
	if v, ok := flexInteger(data); ok {
		f.Value = v
	}
	return nil
}

// Ptr returns a copy of the value, or nil when absent.
func (f FlexBig) Ptr() *big.Int {
	if f.Value == nil {
		return nil
	}
	return new(big.Int).Set(f.Value)
}

// flexInteger parses a JSON number or numeric string. Anything that is not an integral number
// reports false rather than failing the enclosing payload.
func flexInteger(data []byte) (*big.Int, bool) {
	raw, ok := flexRaw(data)
	if !ok {
		return nil, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() {
		return nil, false
	}
	return d.BigInt(), true
}

func flexRaw(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", false
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	return string(data), true
}
