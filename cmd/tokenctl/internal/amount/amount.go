package amount

import (
	"fmt"
	"math/big"

	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/internal/amount"
	"github.com/spf13/cobra"
)

const defaultPadWidth = 64

func GetCommand() *cobra.Command {
	amountCmd := &cobra.Command{
		Use:   "amount",
		Short: "Encode, decode and scale token amounts locally",
	}

	amountCmd.AddCommand(
		EncodeCommand(),
		DecodeCommand(),
		ScaleCommand(),
	)
	return amountCmd
}

func EncodeCommand() *cobra.Command {
	var padWidth int

	cmd := &cobra.Command{
		Use:   "encode [value]",
		Short: "Encode a signed integer as fixed-width two's complement hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, ok := new(big.Int).SetString(args[0], 0)
			if !ok {
				return fmt.Errorf("%w: %q is not an integer", amount.ErrInvalidQuantity, args[0])
			}
			encoded, err := amount.EncodeAmount(value, padWidth)
			if err != nil {
				return err
			}
			common.PrintResult("Encoded", encoded)
			return nil
		},
		SilenceUsage: true,
	}
	cmd.Flags().IntVarP(&padWidth, "width", "w", defaultPadWidth, "Number of hex digits")

	return cmd
}

func DecodeCommand() *cobra.Command {
	var padWidth int

	cmd := &cobra.Command{
		Use:   "decode [hex]",
		Short: "Decode fixed-width two's complement hex into a signed integer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := amount.DecodeAmount(args[0], padWidth)
			if err != nil {
				return err
			}
			common.PrintResult("Decoded", value)
			return nil
		},
		SilenceUsage: true,
	}
	cmd.Flags().IntVarP(&padWidth, "width", "w", defaultPadWidth, "Number of hex digits")

	return cmd
}

func ScaleCommand() *cobra.Command {
	var decimals int32

	cmd := &cobra.Command{
		Use:   "scale [quantity]",
		Short: "Convert a human quantity into base units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseUnits, err := amount.ParseToBaseUnits(args[0], decimals)
			if err != nil {
				return err
			}
			common.PrintResult("Base units", baseUnits.Dec())
			return nil
		},
		SilenceUsage: true,
	}
	cmd.Flags().Int32VarP(&decimals, "decimals", "d", amount.DefaultDecimals, "Token decimals")

	return cmd
}
