package sign

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/NilFoundation/tokenctl/internal/testaide"
	"github.com/stretchr/testify/require"
)

func TestPayloadFile(t *testing.T) {
	t.Parallel()

	client, err := testaide.NewRegistry().Get(identity.RoleClient)
	require.NoError(t, err)
	sig, err := client.Sign([]byte("hello"))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "signed")
	path, err := WritePayload(dir, NewSignedPayload(sig))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "68656c6c6f.json"), path)

	payload, err := ReadPayload(path)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), []byte(payload.Message))
	require.Equal(t, identity.RoleClient, payload.Signer)
	require.Equal(t, testaide.ClientAddress.Hex(), payload.Address)
	require.Equal(t, sig.Hex(), payload.Signature)
	require.Equal(t, sig.CompactHex(), payload.CompactSignature)

	recovered, err := identity.Recover(payload.Message, sig.Bytes())
	require.NoError(t, err)
	require.Equal(t, testaide.ClientAddress, recovered)
}

func TestPayloadFileLongMessage(t *testing.T) {
	t.Parallel()

	client, err := testaide.NewRegistry().Get(identity.RoleClient)
	require.NoError(t, err)
	sig, err := client.Sign([]byte(strings.Repeat("a", 200)))
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := WritePayload(dir, NewSignedPayload(sig))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, strings.TrimPrefix(sig.Hash.Hex(), "0x")+".json"), path)

	payload, err := ReadPayload(path)
	require.NoError(t, err)
	require.Len(t, payload.Message, 200)
	require.Equal(t, sig.Hash.Hex(), payload.Hash)
}

func TestReadPayloadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadPayload(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
