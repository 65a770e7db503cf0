package testaide

import (
	"github.com/NilFoundation/tokenctl/common/check"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/ethereum/go-ethereum/common"
)

// Deterministic development accounts of a local ganache/anvil-style node.
// They are public test fixtures and must never hold real funds.
const (
	MinterKeyHex  = "4f3edf983ac636a65a842ce7c78d9aa706d3b113bce9c46f30d7d21715b23b1d"
	ClientKeyHex  = "6cbed15c793ce57650b9877cf6fa156fbef513c4e6134f022a85b1ffdd59b2a1"
	RelayerKeyHex = "6370fd033278c143179d81c5526140625662b8daa446c22ee2d73db3707e620c"
)

var (
	MinterAddress  = common.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	ClientAddress  = common.HexToAddress("0xFFcf8FDEE72ac11b5c542428B35EEF5769C409f0")
	RelayerAddress = common.HexToAddress("0x22d491Bde2303f2f43325b2108D26f1eAbA1e32b")

	TokenAddress = common.HexToAddress("0xD833215cBcc3f914bD1C9ece3EE7BF8B14f841bb")
)

// NewRegistry returns a registry with the minter, client and relayer roles.
func NewRegistry() *identity.Registry {
	registry := identity.NewRegistry()
	for name, keyHex := range map[string]string{
		identity.RoleMinter:  MinterKeyHex,
		identity.RoleClient:  ClientKeyHex,
		identity.RoleRelayer: RelayerKeyHex,
	} {
		_, err := registry.AddHex(name, keyHex)
		check.PanicIfErr(err)
	}
	return registry
}
