package run

import (
	"context"

	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/token"
	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/NilFoundation/tokenctl/services/invoker"
	"github.com/spf13/cobra"
)

var logger = logging.NewLogger("runCommand")

type Params struct {
	Mint     *common.QuantityValue
	Approve  *common.QuantityValue
	Transfer *common.QuantityValue
	Message  string
}

func NewDefaultParams() *Params {
	return &Params{
		Mint:     common.NewQuantityValue(10_000_000),
		Approve:  common.NewQuantityValue(10),
		Transfer: common.NewQuantityValue(5),
		Message:  "hello",
	}
}

func GetCommand(cfg *common.Config) *cobra.Command {
	params := NewDefaultParams()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the demo scenario: mint, approve, transfer-from and sign",
		Long: "Run mints to the client, lets the client approve the relayer, has the relayer pull tokens " +
			"to the minter with transferFrom and finally signs a message with the client key. " +
			"Every step is independent: a failure is logged once and the next step still runs.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := common.NewSession(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer session.Close()

			_, err = Scenario(cmd.Context(), session, params)
			return err
		},
		SilenceUsage: true,
	}
	cmd.Flags().Var(params.Mint, "mint", "Quantity minted to the client")
	cmd.Flags().Var(params.Approve, "approve", "Quantity the client approves for the relayer")
	cmd.Flags().Var(params.Transfer, "transfer", "Quantity the relayer transfers from the client to the minter")
	cmd.Flags().StringVar(&params.Message, "message", params.Message, "Message signed by the client")

	return cmd
}

// Scenario runs every step even when an earlier one fails and returns the number of failed steps.
// Failed steps were already logged by the invoker, so they are not an error of the scenario.
func Scenario(ctx context.Context, session *common.Session, params *Params) (int, error) {
	inv := session.Invoker
	minter := session.Account(identity.RoleMinter)
	client := session.Account(identity.RoleClient)
	relayer := session.Account(identity.RoleRelayer)
	decimals := inv.Decimals()

	steps := []func() error{
		func() error {
			result, err := inv.Mint(ctx, client, params.Mint.String())
			if err == nil {
				common.PrintCallResult(result, decimals)
			}
			return err
		},
		func() error {
			result, err := inv.Approve(ctx, relayer, params.Approve.String())
			if err == nil {
				common.PrintCallResult(result, decimals)
			}
			return err
		},
		func() error {
			result, err := inv.TransferFrom(ctx, client, minter, params.Transfer.String(),
				invoker.WithSigner(identity.RoleRelayer))
			if err == nil {
				common.PrintCallResult(result, decimals)
			}
			return err
		},
		func() error {
			sig, err := inv.SignMessage(params.Message, identity.RoleClient)
			if err == nil {
				common.PrintResult("Signature", sig.Hex())
			}
			return err
		},
	}

	failed := 0
	for _, step := range steps {
		if err := step(); err != nil {
			failed++
		}
		if ctx.Err() != nil {
			return failed, ctx.Err()
		}
	}

	names := []string{identity.RoleMinter, identity.RoleClient, identity.RoleRelayer}
	balances, err := token.QueryBalances(ctx, session, names)
	if err != nil {
		return failed, common.Reported(err)
	}
	for i, name := range names {
		common.PrintResult(name, common.FormatAmount(balances[i], decimals))
	}
	return failed, nil
}
