package token

import (
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/spf13/cobra"
)

func AllowanceCommand(cfg *common.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allowance [owner] [spender]",
		Short: "Show how much a spender may still transfer from an owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAllowance(cmd, args, cfg)
		},
		SilenceUsage: true,
	}

	return cmd
}

func runAllowance(cmd *cobra.Command, args []string, cfg *common.Config) error {
	session, err := common.NewSession(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	allowance, err := session.Invoker.Allowance(cmd.Context(), session.Account(args[0]), session.Account(args[1]))
	if err != nil {
		return common.Reported(err)
	}
	common.PrintResult("Allowance", common.FormatAmount(allowance, cfg.Token.Decimals))
	return nil
}
