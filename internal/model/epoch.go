package model

import (
	"fmt"
	"math/big"
	"strings"
)

// Epoch identifies a prediction round. The zero value is epoch 0.
type Epoch struct {
	v *big.Int
}

func NewEpoch(n uint64) Epoch {
	return Epoch{v: new(big.Int).SetUint64(n)}
}

// EpochFromBig copies n into a new Epoch.
func EpochFromBig(n *big.Int) Epoch {
	if n == nil {
		return Epoch{}
	}
	return Epoch{v: new(big.Int).Set(n)}
}

// ParseEpoch parses a base-10 epoch.
func ParseEpoch(input string) (Epoch, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Epoch{}, fmt.Errorf("empty epoch")
	}
	n, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return Epoch{}, fmt.Errorf("invalid epoch: %s", input)
	}
	if n.Sign() < 0 {
		return Epoch{}, fmt.Errorf("negative epoch: %s", input)
	}
	return Epoch{v: n}, nil
}

// Big returns a copy of the epoch value, safe to hand to ABI packing.
func (e Epoch) Big() *big.Int {
	if e.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(e.v)
}

// String returns the display form used in history records.
func (e Epoch) String() string {
	if e.v == nil {
		return "0"
	}
	return e.v.String()
}

func (e Epoch) Cmp(other Epoch) int {
	return e.Big().Cmp(other.Big())
}

// Add returns e+n.
func (e Epoch) Add(n uint64) Epoch {
	return Epoch{v: new(big.Int).Add(e.Big(), new(big.Int).SetUint64(n))}
}

func (e Epoch) IsZero() bool {
	return e.v == nil || e.v.Sign() == 0
}
