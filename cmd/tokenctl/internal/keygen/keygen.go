package keygen

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var logger = logging.NewLogger("keygenCommand")

type keygen struct {
	name       string
	privateKey *ecdsa.PrivateKey
	save       bool
}

func GetCommand(configPath *string) *cobra.Command {
	state := &keygen{}

	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new identity key or import one from hex",
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if state.privateKey == nil {
				return nil
			}
			keyHex := fmt.Sprintf("%x", crypto.FromECDSA(state.privateKey))
			common.PrintField("Identity", state.name)
			common.PrintField("Address", crypto.PubkeyToAddress(state.privateKey.PublicKey).Hex())
			common.PrintResult("Private key", keyHex)

			if !state.save {
				return nil
			}
			if err := common.PatchConfig(*configPath, map[string]any{
				common.IdentitiesSection + "." + state.name: keyHex,
			}); err != nil {
				logger.Error().Err(err).Msg("failed to save the private key in the config file")
				return err
			}
			common.PrintSuccess("Saved identity %q to %s", state.name, *configPath)
			return nil
		},
		SilenceUsage: true,
	}
	keygenCmd.PersistentFlags().BoolVar(&state.save, "save", true, "Store the key in the [identities] section")

	keygenCmd.AddCommand(
		NewCommand(state),
		FromHexCommand(state),
	)
	return keygenCmd
}

func NewCommand(state *keygen) *cobra.Command {
	return &cobra.Command{
		Use:   "new [name]",
		Short: "Generate a new private key for an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			state.name = strings.ToLower(args[0])
			state.privateKey = key
			return nil
		},
		SilenceUsage: true,
	}
}

func FromHexCommand(state *keygen) *cobra.Command {
	return &cobra.Command{
		Use:   "from-hex [name] [hex]",
		Short: "Import an identity from a hex private key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := identity.ParsePrivateKey(args[1])
			if err != nil {
				return err
			}
			state.name = strings.ToLower(args[0])
			state.privateKey = key
			return nil
		},
		SilenceUsage: true,
	}
}
