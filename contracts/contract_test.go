package contracts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

func TestTokenAbi(t *testing.T) {
	t.Parallel()

	tokenAbi, err := LoadAbi("")
	require.NoError(t, err)

	for name, selector := range map[string]string{
		"balanceOf":    "0x70a08231",
		"allowance":    "0xdd62ed3e",
		"approve":      "0x095ea7b3",
		"transferFrom": "0x23b872dd",
		"mint":         "0x40c10f19",
	} {
		method, ok := tokenAbi.Methods[name]
		require.True(t, ok, name)
		require.Equal(t, selector, hexutil.Encode(method.ID), name)
	}

	transfer, ok := tokenAbi.Events["Transfer"]
	require.True(t, ok)
	require.Equal(t,
		common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"),
		transfer.ID)

	_, ok = tokenAbi.Errors["ERC20InsufficientAllowance"]
	require.True(t, ok)
}

func TestLoadAbiFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "erc20.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"inputs":[{"name":"account","type":"address"}],`+
		`"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`), 0o600))

	parsed, err := LoadAbi(path)
	require.NoError(t, err)
	require.Contains(t, parsed.Methods, "balanceOf")

	_, err = LoadAbi(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	_, err = LoadAbi(path)
	require.Error(t, err)
}
