package sign

import (
	"errors"
	"fmt"

	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

func RecoverCommand(cfg *common.Config) *cobra.Command {
	var payloadPath string

	cmd := &cobra.Command{
		Use:   "recover [message] [signature]",
		Short: "Recover the signer address of a signed message",
		Long:  "Recover accepts 65-byte r||s||v and 64-byte compact signatures, or a payload file written by sign.",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecover(args, cfg, payloadPath)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&payloadPath, "payload", "", "Signed payload file written by sign --out-dir")

	return cmd
}

func runRecover(args []string, cfg *common.Config, payloadPath string) error {
	var message, signature []byte
	switch {
	case payloadPath != "" && len(args) == 0:
		payload, err := ReadPayload(payloadPath)
		if err != nil {
			return err
		}
		message = payload.Message
		if signature, err = hexutil.Decode(payload.Signature); err != nil {
			return fmt.Errorf("%w: %w", identity.ErrInvalidSignature, err)
		}
	case payloadPath == "" && len(args) == 2:
		var err error
		if message, err = identity.ParseMessage(args[0]); err != nil {
			return err
		}
		if signature, err = hexutil.Decode(args[1]); err != nil {
			return fmt.Errorf("%w: %w", identity.ErrInvalidSignature, err)
		}
	default:
		return errors.New("pass either [message] [signature] or --payload")
	}

	address, err := identity.Recover(message, signature)
	if err != nil {
		return err
	}

	// Naming the signer is best effort: recovery itself does not need any identity.
	if registry, err := common.NewRegistry(cfg, nil); err == nil {
		if id, err := registry.ByAddress(address); err == nil {
			common.PrintField("Identity", id.Name)
		}
	}
	common.PrintResult("Address", address.Hex())
	return nil
}
