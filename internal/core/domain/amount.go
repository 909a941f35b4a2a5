package domain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const addressLen = 20

// MaxUint256 is the largest amount the raffle can hold.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// NormalizeAddress validates a 0x-prefixed 20-byte hex address and returns it
// lower-cased.
func NormalizeAddress(addr string) (string, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")
	if len(trimmed) == len(addr) {
		return "", fmt.Errorf("%w: missing 0x prefix", ErrInvalidAddress)
	}
	buf, err := hex.DecodeString(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	if len(buf) != addressLen {
		return "", fmt.Errorf(
			"%w: expected %d bytes, got %d", ErrInvalidAddress, addressLen, len(buf),
		)
	}
	return "0x" + hex.EncodeToString(buf), nil
}

// ParseAmount parses a base-10 amount in the uint256 range.
func ParseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a base-10 integer", ErrInvalidAmount, s)
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return amount, nil
}

func ValidateAmount(amount *big.Int) error {
	if amount == nil {
		return fmt.Errorf("%w: missing amount", ErrInvalidAmount)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidAmount)
	}
	if amount.Cmp(MaxUint256) > 0 {
		return fmt.Errorf("%w: amount overflows uint256", ErrInvalidAmount)
	}
	return nil
}

func copyAmount(amount *big.Int) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(amount)
}
