package identity_test

import (
	"crypto/ecdsa"
	"sync"
	"testing"

	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/NilFoundation/tokenctl/internal/testaide"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry := testaide.NewRegistry()
	require.Equal(t, []string{identity.RoleClient, identity.RoleMinter, identity.RoleRelayer}, registry.Names())

	minter, err := registry.Get(identity.RoleMinter)
	require.NoError(t, err)
	require.Equal(t, testaide.MinterAddress, minter.Address)

	client, err := registry.Get(" Client ")
	require.NoError(t, err)
	require.Equal(t, testaide.ClientAddress, client.Address)

	relayer, err := registry.ByAddress(testaide.RelayerAddress)
	require.NoError(t, err)
	require.Equal(t, identity.RoleRelayer, relayer.Name)

	_, err = registry.Get("stranger")
	require.ErrorIs(t, err, identity.ErrUnknownSigner)

	_, err = registry.ByAddress(testaide.TokenAddress)
	require.ErrorIs(t, err, identity.ErrUnknownSigner)
}

func TestRegistryAddOnly(t *testing.T) {
	t.Parallel()

	registry := identity.NewRegistry()
	_, err := registry.AddHex("client", "0x"+testaide.ClientKeyHex)
	require.NoError(t, err)

	_, err = registry.AddHex("client", testaide.MinterKeyHex)
	require.ErrorIs(t, err, identity.ErrDuplicateIdentity)

	_, err = registry.AddHex("broken", "0x1234")
	require.ErrorIs(t, err, identity.ErrInvalidKey)

	_, err = registry.Add("", nil)
	require.ErrorIs(t, err, identity.ErrEmptyName)

	_, err = registry.Add("nokey", nil)
	require.ErrorIs(t, err, identity.ErrInvalidKey)

	require.Equal(t, 1, registry.Len())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := testaide.NewRegistry()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, err := crypto.GenerateKey()
			if err != nil {
				return
			}
			_, _ = registry.Add(crypto.PubkeyToAddress(key.PublicKey).Hex(), key)
			_, _ = registry.Get(identity.RoleClient)
		}()
	}
	wg.Wait()

	require.Equal(t, 11, registry.Len())
}

func TestNewRegistryFromKeys(t *testing.T) {
	t.Parallel()

	key, err := identity.ParsePrivateKey(testaide.RelayerKeyHex)
	require.NoError(t, err)

	registry, err := identity.NewRegistryFromKeys(map[string]*ecdsa.PrivateKey{"relayer": key})
	require.NoError(t, err)

	relayer, err := registry.Get(identity.RoleRelayer)
	require.NoError(t, err)
	require.Equal(t, testaide.RelayerAddress, relayer.Address)
	require.Equal(t, testaide.RelayerKeyHex, hexutil.Encode(crypto.FromECDSA(relayer.PrivateKey()))[2:])
}
