// Package amount converts between human token quantities and on-chain base units.
//
// A quantity such as "10" or "1.5" is scaled by 10^decimals into an unsigned 256-bit
// base-unit value before it is handed to a contract call.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// DefaultDecimals is the scaling exponent of the token: one token is 10^9 base units.
const DefaultDecimals int32 = 9

// maxDecimals keeps 10^decimals inside 256 bits.
const maxDecimals int32 = 77

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrOverflow        = errors.New("amount overflows 256 bits")
	ErrInvalidDecimals = errors.New("invalid decimals")
	ErrOutOfRange      = errors.New("value does not fit the pad width")
	ErrInvalidHex      = errors.New("invalid hex amount")
)

func checkDecimals(decimals int32) error {
	if decimals < 0 || decimals > maxDecimals {
		return fmt.Errorf("%w: %d", ErrInvalidDecimals, decimals)
	}
	return nil
}

// Denominator returns 10^decimals.
func Denominator(decimals int32) (*uint256.Int, error) {
	if err := checkDecimals(decimals); err != nil {
		return nil, err
	}
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals))), nil
}

// ParseQuantity parses a human-facing quantity like "10", "1.5" or "1e3".
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidQuantity)
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return q, nil
}

// ToBaseUnits scales a strictly positive quantity by 10^decimals.
// Quantities finer than one base unit are rejected instead of rounded.
func ToBaseUnits(q decimal.Decimal, decimals int32) (*uint256.Int, error) {
	if err := checkDecimals(decimals); err != nil {
		return nil, err
	}
	if q.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive", ErrInvalidQuantity, q)
	}

	scaled := q.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidQuantity, q, decimals)
	}

	value, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w: %s", ErrOverflow, q)
	}
	return value, nil
}

// ParseToBaseUnits is ParseQuantity followed by ToBaseUnits.
func ParseToBaseUnits(s string, decimals int32) (*uint256.Int, error) {
	q, err := ParseQuantity(s)
	if err != nil {
		return nil, err
	}
	return ToBaseUnits(q, decimals)
}

// FromBaseUnits converts base units back into a human quantity for display.
func FromBaseUnits(v *uint256.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v.ToBig(), -decimals)
}

// EncodeAmount renders value as "0x" followed by exactly padWidth hex digits.
// Negative values use the two's complement over the pad width: 2^(4*padWidth) - |value|.
// The value must fit the signed range of the width so that DecodeAmount can invert it.
func EncodeAmount(value *big.Int, padWidth int) (string, error) {
	if padWidth <= 0 {
		return "", fmt.Errorf("%w: pad width %d", ErrOutOfRange, padWidth)
	}
	if value == nil {
		value = new(big.Int)
	}

	modulus := new(big.Int).Lsh(big.NewInt(1), uint(4*padWidth))
	half := new(big.Int).Rsh(modulus, 1)

	encoded := new(big.Int).Set(value)
	if value.Sign() < 0 {
		if new(big.Int).Neg(value).Cmp(half) > 0 {
			return "", fmt.Errorf("%w: %s over %d digits", ErrOutOfRange, value, padWidth)
		}
		encoded.Sub(modulus, new(big.Int).Abs(value))
	} else if value.Cmp(half) >= 0 {
		return "", fmt.Errorf("%w: %s over %d digits", ErrOutOfRange, value, padWidth)
	}

	return fmt.Sprintf("0x%0*x", padWidth, encoded), nil
}

// DecodeAmount inverts EncodeAmount: a set top bit over the pad width means a negative value.
func DecodeAmount(s string, padWidth int) (*big.Int, error) {
	if padWidth <= 0 {
		return nil, fmt.Errorf("%w: pad width %d", ErrOutOfRange, padWidth)
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if digits == "" || len(digits) > padWidth {
		return nil, fmt.Errorf("%w: %q for pad width %d", ErrInvalidHex, s, padWidth)
	}

	value, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	modulus := new(big.Int).Lsh(big.NewInt(1), uint(4*padWidth))
	if value.Cmp(new(big.Int).Rsh(modulus, 1)) >= 0 {
		value.Sub(value, modulus)
	}
	return value, nil
}
