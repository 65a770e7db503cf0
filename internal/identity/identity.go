// Package identity keeps the in-memory signing identities used by the token invoker.
package identity

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	RoleMinter  = "minter"
	RoleClient  = "client"
	RoleRelayer = "relayer"
)

var (
	ErrUnknownSigner     = errors.New("unknown signer")
	ErrDuplicateIdentity = errors.New("identity already registered")
	ErrInvalidKey        = errors.New("invalid private key")
	ErrEmptyName         = errors.New("identity name is empty")
)

type Identity struct {
	Name    string
	Address common.Address

	key *ecdsa.PrivateKey
}

func (i *Identity) PrivateKey() *ecdsa.PrivateKey {
	return i.key
}

func (i *Identity) String() string {
	return fmt.Sprintf("%s(%s)", i.Name, i.Address.Hex())
}

// Registry maps names to identities. Identities can only be added.
type Registry struct {
	mutex     sync.RWMutex
	byName    map[string]*Identity
	byAddress map[common.Address]*Identity
}

func NewRegistry() *Registry {
	return &Registry{
		byName:    make(map[string]*Identity),
		byAddress: make(map[common.Address]*Identity),
	}
}

// NewRegistryFromKeys registers every key under its map key, in name order.
func NewRegistryFromKeys(keys map[string]*ecdsa.PrivateKey) (*Registry, error) {
	registry := NewRegistry()
	for _, name := range slices.Sorted(maps.Keys(keys)) {
		if _, err := registry.Add(name, keys[name]); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *Registry) Add(name string, key *ecdsa.PrivateKey) (*Identity, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if key == nil {
		return nil, fmt.Errorf("%w: nil key for %q", ErrInvalidKey, name)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateIdentity, name)
	}

	identity := &Identity{
		Name:    name,
		Address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
	}
	r.byName[name] = identity
	if _, exists := r.byAddress[identity.Address]; !exists {
		r.byAddress[identity.Address] = identity
	}
	return identity, nil
}

// AddHex registers a hex encoded private key, with or without the 0x prefix.
func (r *Registry) AddHex(name string, keyHex string) (*Identity, error) {
	key, err := ParsePrivateKey(keyHex)
	if err != nil {
		return nil, fmt.Errorf("identity %q: %w", name, err)
	}
	return r.Add(name, key)
}

func (r *Registry) Get(name string) (*Identity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	identity, ok := r.byName[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSigner, name)
	}
	return identity, nil
}

func (r *Registry) ByAddress(address common.Address) (*Identity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	identity, ok := r.byAddress[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSigner, address.Hex())
	}
	return identity, nil
}

func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return slices.Sorted(maps.Keys(r.byName))
}

func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.byName)
}

func ParsePrivateKey(keyHex string) (*ecdsa.PrivateKey, error) {
	keyHex = strings.TrimPrefix(strings.TrimSpace(keyHex), "0x")
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return key, nil
}
