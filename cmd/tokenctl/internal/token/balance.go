package token

import (
	"context"
	"fmt"

	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func BalanceCommand(cfg *common.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance [account...]",
		Short: "Show token balances of addresses or identities",
		Long:  "Balance queries every account concurrently; without arguments all configured identities are shown.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(cmd, args, cfg)
		},
		SilenceUsage: true,
	}

	return cmd
}

func runBalance(cmd *cobra.Command, args []string, cfg *common.Config) error {
	session, err := common.NewSession(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	accounts := args
	if len(accounts) == 0 {
		accounts = session.Identities.Names()
	}

	balances, err := QueryBalances(cmd.Context(), session, accounts)
	if err != nil {
		return common.Reported(err)
	}
	for i, account := range accounts {
		common.PrintResult(account, common.FormatAmount(balances[i], cfg.Token.Decimals))
	}
	return nil
}

// QueryBalances fetches balances concurrently; the result is ordered like accounts.
func QueryBalances(ctx context.Context, session *common.Session, accounts []string) ([]*uint256.Int, error) {
	balances := make([]*uint256.Int, len(accounts))

	group, ctx := errgroup.WithContext(ctx)
	for i, account := range accounts {
		group.Go(func() error {
			balance, err := session.Invoker.BalanceOf(ctx, session.Account(account))
			if err != nil {
				return fmt.Errorf("balance of %s: %w", account, err)
			}
			balances[i] = balance
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return balances, nil
}
