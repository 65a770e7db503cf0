package amount

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestToBaseUnits(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		quantity string
		decimals int32
		expected string
		err      error
	}{
		{"Ten", "10", DefaultDecimals, "10000000000", nil},
		{"TenMillion", "10000000", DefaultDecimals, "10000000000000000", nil},
		{"Fraction", "1.5", DefaultDecimals, "1500000000", nil},
		{"SmallestUnit", "0.000000001", DefaultDecimals, "1", nil},
		{"ZeroDecimals", "42", 0, "42", nil},
		{"TooPrecise", "0.0000000001", DefaultDecimals, "", ErrInvalidQuantity},
		{"Zero", "0", DefaultDecimals, "", ErrInvalidQuantity},
		{"Negative", "-1", DefaultDecimals, "", ErrInvalidQuantity},
		{"NotANumber", "ten", DefaultDecimals, "", ErrInvalidQuantity},
		{"Empty", " ", DefaultDecimals, "", ErrInvalidQuantity},
		{"Overflow", "1e70", DefaultDecimals, "", ErrOverflow},
		{"BadDecimals", "1", 78, "", ErrInvalidDecimals},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			value, err := ParseToBaseUnits(tc.quantity, tc.decimals)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, value.Dec())
		})
	}
}

func TestMintScaling(t *testing.T) {
	t.Parallel()

	value, err := ToBaseUnits(decimal.NewFromInt(10), DefaultDecimals)
	require.NoError(t, err)

	denominator, err := Denominator(DefaultDecimals)
	require.NoError(t, err)
	require.Equal(t, new(uint256.Int).Mul(uint256.NewInt(10), denominator), value)
}

func TestFromBaseUnits(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1.5", FromBaseUnits(uint256.NewInt(1_500_000_000), DefaultDecimals).String())
	require.Equal(t, "0", FromBaseUnits(nil, DefaultDecimals).String())
}

func TestEncodeAmount(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		value    int64
		width    int
		expected string
	}{
		{0, 4, "0x0000"},
		{255, 4, "0x00ff"},
		{-1, 4, "0xffff"},
		{-255, 4, "0xff01"},
		{-32768, 4, "0x8000"},
		{32767, 4, "0x7fff"},
		{10_000_000_000, 64, "0x00000000000000000000000000000000000000000000000000000002540be400"},
	}

	for _, tc := range testCases {
		encoded, err := EncodeAmount(big.NewInt(tc.value), tc.width)
		require.NoError(t, err)
		require.Equal(t, tc.expected, encoded)

		decoded, err := DecodeAmount(encoded, tc.width)
		require.NoError(t, err)
		require.Equal(t, tc.value, decoded.Int64())
	}
}

func TestEncodeAmountOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := EncodeAmount(big.NewInt(32768), 4)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = EncodeAmount(big.NewInt(-32769), 4)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = EncodeAmount(big.NewInt(1), 0)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestDecodeAmountInvalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "0x", "0xzz", "0x12345"} {
		_, err := DecodeAmount(input, 4)
		require.ErrorIs(t, err, ErrInvalidHex, input)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		width := rapid.IntRange(1, 64).Draw(t, "width")
		bits := uint(4 * width)

		half := new(big.Int).Lsh(big.NewInt(1), bits-1)
		raw := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "raw")
		value := new(big.Int).SetBytes(raw)
		value.Mod(value, half)
		if rapid.Bool().Draw(t, "negative") {
			// the signed range includes -2^(bits-1)
			value.Neg(value)
			if rapid.Bool().Draw(t, "minimum") {
				value.Neg(half)
			}
		}

		encoded, err := EncodeAmount(value, width)
		if err != nil {
			t.Fatalf("encode %s over %d digits: %v", value, width, err)
		}
		if len(encoded) != width+2 {
			t.Fatalf("encoded %q has wrong width %d", encoded, width)
		}

		decoded, err := DecodeAmount(encoded, width)
		if err != nil {
			t.Fatalf("decode %q: %v", encoded, err)
		}
		if decoded.Cmp(value) != 0 {
			t.Fatalf("round trip mismatch: %s -> %s -> %s", value, encoded, decoded)
		}
	})
}
