package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Address is a hex-encoded 20-byte account identifier, with or without the
// 0x prefix.
type Address [20]byte

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(a[:]))
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := decodeAddress(raw)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

func decodeAddress(raw string) (Address, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if len(trimmed) != 40 {
		return Address{}, fmt.Errorf("address must be 20 bytes of hex, got %q", raw)
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", raw, err)
	}
	var addr Address
	copy(addr[:], decoded)
	return addr, nil
}

// Amount is a decimal string carrying an arbitrary-precision integer.
// Strings rather than JSON numbers keep i128-scale values intact.
type Amount struct {
	value *big.Int
}

func NewAmount(v *big.Int) Amount {
	if v == nil {
		v = big.NewInt(0)
	}
	return Amount{value: new(big.Int).Set(v)}
}

func (a Amount) Int() *big.Int {
	if a.value == nil {
		return big.NewInt(0)
	}
	return a.value
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Int().String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	value, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return fmt.Errorf("invalid decimal amount %q", raw)
	}
	a.value = value
	return nil
}

func addressList(addrs [][20]byte) []Address {
	out := make([]Address, len(addrs))
	for i, a := range addrs {
		out[i] = Address(a)
	}
	return out
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) == 0 {
		return fmt.Errorf("params object required")
	}
	return json.Unmarshal(req.Params[0], out)
}
