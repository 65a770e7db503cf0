package common

import (
	"fmt"
	"io"

	"github.com/NilFoundation/tokenctl/internal/amount"
	"github.com/NilFoundation/tokenctl/services/invoker"
	"github.com/fatih/color"
	"github.com/holiman/uint256"
)

// Quiet makes commands print bare results without labels.
var Quiet = false

// Output receives every printed result line.
var Output io.Writer = color.Output

var (
	labelColor   = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen, color.Bold)
)

func PrintField(label string, value any) {
	if Quiet {
		return
	}
	_, _ = labelColor.Fprintf(Output, "%-14s", label+":")
	_, _ = fmt.Fprintln(Output, value)
}

// PrintResult prints the primary value of a command; in quiet mode it is the only output.
func PrintResult(label string, value any) {
	if Quiet {
		_, _ = fmt.Fprintln(Output, value)
		return
	}
	PrintField(label, value)
}

func PrintSuccess(format string, args ...any) {
	if Quiet {
		return
	}
	_, _ = successColor.Fprintf(Output, format+"\n", args...)
}

func FormatAmount(value *uint256.Int, decimals int32) string {
	return fmt.Sprintf("%s (%s base units)", amount.FromBaseUnits(value, decimals).String(), value.Dec())
}

func PrintCallResult(result *invoker.CallResult, decimals int32) {
	PrintSuccess("%s succeeded", result.Operation)
	PrintField("Signer", fmt.Sprintf("%s (%s)", result.Signer, result.SignerAddress.Hex()))
	PrintField("Amount", FormatAmount(result.BaseAmount, decimals))
	PrintField("Block", result.BlockNumber)
	PrintField("Gas used", fmt.Sprintf("%d / %d", result.GasUsed, result.GasLimit))
	for _, transfer := range result.Transfers {
		PrintField("Transfer", fmt.Sprintf("%s -> %s: %s",
			transfer.From.Hex(), transfer.To.Hex(), transfer.Value))
	}
	for _, approval := range result.Approvals {
		PrintField("Approval", fmt.Sprintf("%s -> %s: %s",
			approval.Owner.Hex(), approval.Spender.Hex(), approval.Value))
	}
	PrintResult("TX Hash", result.TxHash.Hex())
}
