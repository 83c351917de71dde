package dex

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const maxInt24 = 1 << 23

func asAddress(v interface{}) (common.Address, error) {
	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("expected address, got %T", v)
	}
	return addr, nil
}

func asBigInt(v interface{}) (*big.Int, error) {
	switch val := v.(type) {
	case *big.Int:
		return val, nil
	case uint8:
		return big.NewInt(int64(val)), nil
	case uint16:
		return big.NewInt(int64(val)), nil
	case uint32:
		return big.NewInt(int64(val)), nil
	case uint64:
		return new(big.Int).SetUint64(val), nil
	default:
		return nil, fmt.Errorf("expected integer, got %T", v)
	}
}

func asUint8(v interface{}) (uint8, error) {
	n, ok := v.(uint8)
	if !ok {
		return 0, fmt.Errorf("expected uint8, got %T", v)
	}
	return n, nil
}

func int24FromBig(v *big.Int) (int32, error) {
	if v == nil {
		return 0, fmt.Errorf("nil tick value")
	}
	if !v.IsInt64() {
		return 0, fmt.Errorf("tick out of range: %s", v)
	}
	n := v.Int64()
	if n < -maxInt24 || n >= maxInt24 {
		return 0, fmt.Errorf("tick out of range: %d", n)
	}
	return int32(n), nil
}

func bytes32ToString(v interface{}) (string, error) {
	raw, ok := v.([32]byte)
	if !ok {
		return "", fmt.Errorf("expected bytes32, got %T", v)
	}
	trimmed := bytes.TrimRight(raw[:], "\x00")
	return string(trimmed), nil
}
