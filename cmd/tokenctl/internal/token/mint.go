package token

import (
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/spf13/cobra"
)

func MintCommand(cfg *common.Config) *cobra.Command {
	params := &callParams{}

	cmd := &cobra.Command{
		Use:   "mint [to] [quantity]",
		Short: "Mint tokens to an address or identity",
		Long:  "Mint scales the quantity by 10^decimals and submits mint(to, amount) signed by the minter identity.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMint(cmd, args, cfg, params)
		},
		SilenceUsage: true,
	}
	params.register(cmd, identity.RoleMinter)

	return cmd
}

func runMint(cmd *cobra.Command, args []string, cfg *common.Config, params *callParams) error {
	session, err := common.NewSession(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	result, err := session.Invoker.Mint(cmd.Context(), session.Account(args[0]), args[1], params.options()...)
	if err != nil {
		return common.Reported(err)
	}
	common.PrintCallResult(result, cfg.Token.Decimals)
	return nil
}
