package token

import (
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/NilFoundation/tokenctl/services/invoker"
	"github.com/spf13/cobra"
)

var logger = logging.NewLogger("tokenCommand")

type callParams struct {
	signer   string
	gasLimit uint64
}

func (p *callParams) register(cmd *cobra.Command, defaultSigner string) {
	cmd.Flags().StringVarP(&p.signer, "signer", "s", defaultSigner, "Name of the identity that signs the call")
	cmd.Flags().Uint64Var(&p.gasLimit, "gas-limit", 0, "Gas-limit ceiling for this call (0 uses the configured one)")
}

func (p *callParams) options() []invoker.CallOption {
	opts := []invoker.CallOption{invoker.WithSigner(p.signer)}
	if p.gasLimit != 0 {
		opts = append(opts, invoker.WithGasLimit(p.gasLimit))
	}
	return opts
}

// GetCommands returns the token operation commands; they are mounted directly on the root.
func GetCommands(cfg *common.Config) []*cobra.Command {
	return []*cobra.Command{
		MintCommand(cfg),
		ApproveCommand(cfg),
		TransferFromCommand(cfg),
		BalanceCommand(cfg),
		AllowanceCommand(cfg),
		EventsCommand(cfg),
	}
}
