package token

import (
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/spf13/cobra"
)

func TransferFromCommand(cfg *common.Config) *cobra.Command {
	params := &callParams{}

	cmd := &cobra.Command{
		Use:   "transfer-from [from] [to] [quantity]",
		Short: "Transfer tokens from an owner who approved the signer",
		Long: "Transfer-from submits transferFrom(from, to, amount). The signer must have been approved by the owner " +
			"beforehand; the allowance is checked by the contract only.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransferFrom(cmd, args, cfg, params)
		},
		SilenceUsage: true,
	}
	params.register(cmd, identity.RoleClient)

	return cmd
}

func runTransferFrom(cmd *cobra.Command, args []string, cfg *common.Config, params *callParams) error {
	session, err := common.NewSession(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	result, err := session.Invoker.TransferFrom(
		cmd.Context(), session.Account(args[0]), session.Account(args[1]), args[2], params.options()...)
	if err != nil {
		return common.Reported(err)
	}
	common.PrintCallResult(result, cfg.Token.Decimals)
	return nil
}
