package config

import (
	"strings"
	"testing"

	"github.com/NilFoundation/tokenctl/internal/testaide"
	"github.com/stretchr/testify/require"
)

func TestRenderSettings(t *testing.T) {
	t.Parallel()

	out, err := RenderSettings(map[string]any{
		"token": map[string]any{
			"rpc_endpoint": "http://127.0.0.1:8545",
			"gas_limit":    100000,
		},
		"identities": map[string]any{
			"minter": testaide.MinterKeyHex,
			"short":  "0x1234",
		},
	})
	require.NoError(t, err)

	require.Contains(t, out, "minter: 4f3e...3b1d\n")
	require.Contains(t, out, "rpc_endpoint: http://127.0.0.1:8545\n")
	require.NotContains(t, out, "1234")
	require.Less(t, strings.Index(out, "identities:"), strings.Index(out, "token:"))
	require.NotContains(t, out, testaide.MinterKeyHex)
}
