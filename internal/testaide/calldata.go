package testaide

import (
	"testing"

	"github.com/NilFoundation/tokenctl/contracts"
	"github.com/stretchr/testify/require"
)

// NewCallData packs a token method call for tests.
func NewCallData(t *testing.T, methodName string, args ...any) []byte {
	t.Helper()

	tokenAbi, err := contracts.GetAbi(contracts.NameToken)
	require.NoError(t, err)

	calldata, err := tokenAbi.Pack(methodName, args...)
	require.NoError(t, err)
	return calldata
}
