package run

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/NilFoundation/tokenctl/internal/testaide"
	"github.com/NilFoundation/tokenctl/services/invoker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, ledger *testaide.Ledger) *common.Session {
	t.Helper()
	return newSessionWithLogger(t, ledger, logging.NewNopLogger())
}

func newSessionWithLogger(t *testing.T, ledger *testaide.Ledger, logger logging.Logger) *common.Session {
	t.Helper()

	cfg := invoker.NewConfig("http://ledger.invalid", testaide.TokenAddress.Hex())
	cfg.ReceiptPollInterval = 5 * time.Millisecond
	registry := testaide.NewRegistry()

	inv, err := invoker.NewInvokerWithEthClient(
		context.Background(), cfg, ledger, registry, logger)
	require.NoError(t, err)
	return &common.Session{Identities: registry, Invoker: inv}
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}

func TestScenario(t *testing.T) {
	t.Parallel()

	ledger := testaide.NewDefaultLedger()
	session := newSession(t, ledger)
	defer session.Close()

	failed, err := Scenario(context.Background(), session, NewDefaultParams())
	require.NoError(t, err)
	require.Zero(t, failed)

	require.Equal(t, tokens(10_000_000-5), ledger.Balance(testaide.ClientAddress))
	require.Equal(t, tokens(5), ledger.Balance(testaide.MinterAddress))
	require.Equal(t, tokens(5), ledger.AllowanceOf(testaide.ClientAddress, testaide.RelayerAddress))
	require.Len(t, ledger.Calls(), 3)
}

func TestScenarioContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	ledger := testaide.NewDefaultLedger()
	session := newSession(t, ledger)
	defer session.Close()

	params := NewDefaultParams()
	require.NoError(t, params.Transfer.Set("20"))

	failed, err := Scenario(context.Background(), session, params)
	require.NoError(t, err)
	require.Equal(t, 1, failed)

	require.Equal(t, tokens(10_000_000), ledger.Balance(testaide.ClientAddress))
	require.Equal(t, tokens(10), ledger.AllowanceOf(testaide.ClientAddress, testaide.RelayerAddress))
	require.Len(t, ledger.Calls(), 3)
}

func TestScenarioStopsOnCancel(t *testing.T) {
	t.Parallel()

	ledger := testaide.NewDefaultLedger()
	session := newSession(t, ledger)
	defer session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scenario(ctx, session, NewDefaultParams())
	require.ErrorIs(t, err, context.Canceled)
	require.LessOrEqual(t, len(ledger.Calls()), 1)
}

// Replaces the package-wide Output, so it must not run in parallel.
func TestScenarioFailureIsLoggedOnce(t *testing.T) {
	var stdout, logs bytes.Buffer
	prev := common.Output
	common.Output = &stdout
	t.Cleanup(func() { common.Output = prev })

	ledger := testaide.NewDefaultLedger()
	session := newSessionWithLogger(t, ledger, zerolog.New(&logs).Level(zerolog.ErrorLevel))
	defer session.Close()

	params := NewDefaultParams()
	require.NoError(t, params.Transfer.Set("20"))

	failed, err := Scenario(context.Background(), session, params)
	require.NoError(t, err)
	require.Equal(t, 1, failed)

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "transferFrom failed")

	require.NotContains(t, stdout.String(), "Failed")
	require.NotContains(t, stdout.String(), "insufficient allowance")
	require.Contains(t, stdout.String(), "Signature")
}
