package token

import (
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/spf13/cobra"
)

func ApproveCommand(cfg *common.Config) *cobra.Command {
	params := &callParams{}

	cmd := &cobra.Command{
		Use:   "approve [spender] [quantity]",
		Short: "Allow a spender to transfer tokens of the signer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApprove(cmd, args, cfg, params)
		},
		SilenceUsage: true,
	}
	params.register(cmd, identity.RoleClient)

	return cmd
}

func runApprove(cmd *cobra.Command, args []string, cfg *common.Config, params *callParams) error {
	session, err := common.NewSession(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	result, err := session.Invoker.Approve(cmd.Context(), session.Account(args[0]), args[1], params.options()...)
	if err != nil {
		return common.Reported(err)
	}
	common.PrintCallResult(result, cfg.Token.Decimals)
	return nil
}
