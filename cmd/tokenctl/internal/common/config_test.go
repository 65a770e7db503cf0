package common

import (
	"crypto/ecdsa"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/NilFoundation/tokenctl/internal/telemetry"
	"github.com/NilFoundation/tokenctl/internal/testaide"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func loadConfig(t *testing.T, path string) *Config {
	t.Helper()
	v := viper.New()
	SetConfigFile(v, path)
	SetDefaults(v)
	cfg, err := LoadConfig(v, path, logging.NewNopLogger())
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `[token]
rpc_endpoint = "http://node:8545"
contract_address = `+testaide.TokenAddress.Hex()+`
gas_limit = 200000
receipt_timeout = 2m
receipt_poll_interval = 250ms

[identities]
minter = `+testaide.MinterKeyHex+`
Client = 0x`+testaide.ClientKeyHex+`

[telemetry]
metrics = stdout
traces = grpc
trace_sampling_rate = 0.5
`)

	cfg := loadConfig(t, path)
	require.Equal(t, "http://node:8545", cfg.Token.Endpoint)
	require.Equal(t, testaide.TokenAddress.Hex(), cfg.Token.ContractAddressHex)
	require.Equal(t, uint64(200_000), cfg.Token.GasLimit)
	require.Equal(t, int32(9), cfg.Token.Decimals)
	require.Equal(t, 2*time.Minute, cfg.Token.ReceiptTimeout)
	require.Equal(t, 250*time.Millisecond, cfg.Token.ReceiptPollInterval)
	require.NoError(t, ValidateConfig(cfg, logging.NewNopLogger()))

	require.Len(t, cfg.Identities, 2)
	registry, err := NewRegistry(cfg, nil)
	require.NoError(t, err)
	minter, err := registry.Get(identity.RoleMinter)
	require.NoError(t, err)
	require.Equal(t, testaide.MinterAddress, minter.Address)
	client, err := registry.Get(identity.RoleClient)
	require.NoError(t, err)
	require.Equal(t, testaide.ClientAddress, client.Address)

	require.Equal(t, telemetry.ExportOptionStdout, cfg.Telemetry.MetricExportOption)
	require.Equal(t, telemetry.ExportOptionGrpc, cfg.Telemetry.TraceExportOption)
	require.InDelta(t, 0.5, cfg.Telemetry.TraceSamplingRate, 1e-9)
	require.Equal(t, "tokenctl", cfg.Telemetry.ServiceName)
}

func TestLoadConfigCreatesTemplate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.ini")
	cfg := loadConfig(t, path)

	require.FileExists(t, path)
	require.Equal(t, "http://127.0.0.1:8545", cfg.Token.Endpoint)
	require.Empty(t, cfg.Identities)
	require.Error(t, ValidateConfig(cfg, logging.NewNopLogger()), "contract address is not set in the template")
}

func TestLoadConfigRejectsBadKey(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "[identities]\nminter = nothex\n")
	v := viper.New()
	SetConfigFile(v, path)
	SetDefaults(v)
	_, err := LoadConfig(v, path, logging.NewNopLogger())
	require.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"_TOKEN_RPC_ENDPOINT", "http://env-node:8545")

	cfg := loadConfig(t, writeConfig(t, "[token]\nrpc_endpoint = http://file-node:8545\n"))
	require.Equal(t, "http://env-node:8545", cfg.Token.Endpoint)
}

func TestIdentitiesFromEnv(t *testing.T) {
	t.Parallel()

	keys := IdentitiesFromEnv([]string{
		"HOME=/root",
		IdentityEnvPrefix + "RELAYER=" + testaide.RelayerKeyHex,
		IdentityEnvPrefix + "=ignored",
		"TOKENCTL_TOKEN_GAS_LIMIT=1",
	})
	require.Equal(t, map[string]string{"relayer": testaide.RelayerKeyHex}, keys)
}

func TestNewRegistryEnvironmentWins(t *testing.T) {
	t.Parallel()

	key, err := identity.ParsePrivateKey(testaide.MinterKeyHex)
	require.NoError(t, err)
	cfg := &Config{Identities: map[string]*ecdsa.PrivateKey{identity.RoleClient: key}}

	registry, err := NewRegistry(cfg, []string{IdentityEnvPrefix + "CLIENT=" + testaide.ClientKeyHex})
	require.NoError(t, err)
	client, err := registry.Get(identity.RoleClient)
	require.NoError(t, err)
	require.Equal(t, testaide.ClientAddress, client.Address)

	_, err = NewRegistry(cfg, []string{IdentityEnvPrefix + "CLIENT=zz"})
	require.ErrorIs(t, err, identity.ErrInvalidKey)
}

func TestPatchConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.ini")
	_, err := InitDefaultConfig(path)
	require.NoError(t, err)

	require.NoError(t, PatchConfig(path, map[string]any{
		"token.rpc_endpoint":     "http://patched:8545",
		"identities.relayer":     testaide.RelayerKeyHex,
		"telemetry.service_name": "tokenctl-test",
	}))
	require.NoError(t, PatchConfig(path, map[string]any{"token.rpc_endpoint": "http://patched-again:8545"}))

	cfg := loadConfig(t, path)
	require.Equal(t, "http://patched-again:8545", cfg.Token.Endpoint)
	require.Equal(t, "tokenctl-test", cfg.Telemetry.ServiceName)
	require.Contains(t, cfg.Identities, identity.RoleRelayer)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "; Gas-limit ceiling of every state-changing call")

	require.Error(t, PatchConfig(path, map[string]any{"rpc_endpoint": "x"}))
}

func TestPatchConfigCreatesFileAndSection(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "[token]\ngas_limit = 1\n")
	require.NoError(t, PatchConfig(path, map[string]any{"identities.minter": testaide.MinterKeyHex}))

	cfg := loadConfig(t, path)
	require.Equal(t, uint64(1), cfg.Token.GasLimit)
	require.Contains(t, cfg.Identities, identity.RoleMinter)

	missing := filepath.Join(t.TempDir(), "fresh.ini")
	require.NoError(t, PatchConfig(missing, map[string]any{"token.decimals": 6}))
	require.Equal(t, int32(6), loadConfig(t, missing).Token.Decimals)
}

func TestIsSupportedOption(t *testing.T) {
	t.Parallel()

	require.True(t, IsSupportedOption("token.rpc_endpoint"))
	require.True(t, IsSupportedOption("identities.treasury"))
	require.False(t, IsSupportedOption("identities."))
	require.False(t, IsSupportedOption("token.private_key"))
}

func TestQuantityValue(t *testing.T) {
	t.Parallel()

	value := NewQuantityValue(10)
	require.Equal(t, "10", value.String())
	require.NoError(t, value.Set("1.5"))
	require.Equal(t, "1.5", value.String())
	require.Equal(t, "quantity", value.Type())
	require.Error(t, value.Set("ten"))
}
