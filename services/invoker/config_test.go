package invoker

import (
	"testing"
	"time"

	"github.com/NilFoundation/tokenctl/internal/testaide"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := NewConfig(DefaultEndpoint, testaide.TokenAddress.Hex())
	require.NoError(t, valid.Validate())
	require.Equal(t, uint64(100_000), valid.GasLimit)
	require.Equal(t, int32(9), valid.Decimals)
	require.Zero(t, valid.ReceiptTimeout)

	for name, mutate := range map[string]func(*Config){
		"empty endpoint":    func(c *Config) { c.Endpoint = "" },
		"bad contract":      func(c *Config) { c.ContractAddressHex = "0x1234" },
		"zero gas limit":    func(c *Config) { c.GasLimit = 0 },
		"negative decimals": func(c *Config) { c.Decimals = -1 },
		"negative timeout":  func(c *Config) { c.ReceiptTimeout = -time.Second },
		"zero poll":         func(c *Config) { c.ReceiptPollInterval = 0 },
	} {
		cfg := valid
		mutate(&cfg)
		require.Error(t, cfg.Validate(), name)
	}
}
