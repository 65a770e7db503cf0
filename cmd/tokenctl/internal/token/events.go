package token

import (
	"fmt"

	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/spf13/cobra"
)

type eventsParams struct {
	fromBlock uint64
	toBlock   int64
}

func EventsCommand(cfg *common.Config) *cobra.Command {
	params := &eventsParams{}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List Transfer events of the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(cmd, cfg, params)
		},
		SilenceUsage: true,
	}
	cmd.Flags().Uint64Var(&params.fromBlock, "from-block", 0, "First block to scan")
	cmd.Flags().Int64Var(&params.toBlock, "to-block", -1, "Last block to scan (-1 means latest)")

	return cmd
}

func runEvents(cmd *cobra.Command, cfg *common.Config, params *eventsParams) error {
	session, err := common.NewSession(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	var toBlock *uint64
	if params.toBlock >= 0 {
		to := uint64(params.toBlock)
		toBlock = &to
	}

	events, err := session.Invoker.TransferEvents(cmd.Context(), params.fromBlock, toBlock)
	if err != nil {
		return common.Reported(err)
	}
	for _, event := range events {
		common.PrintResult(fmt.Sprintf("Block %d", event.BlockNumber),
			fmt.Sprintf("%s -> %s: %s (tx %s)", event.From.Hex(), event.To.Hex(), event.Value, event.TxHash.Hex()))
	}
	if len(events) == 0 {
		common.PrintSuccess("no Transfer events found")
	}
	return nil
}
