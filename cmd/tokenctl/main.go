package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/amount"
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/config"
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/keygen"
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/run"
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/sign"
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/token"
	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/version"
	"github.com/NilFoundation/tokenctl/common/concurrent"
	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/NilFoundation/tokenctl/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type RootCommand struct {
	baseCmd  *cobra.Command
	viper    *viper.Viper
	config   common.Config
	cfgFile  string
	logLevel string
	verbose  bool
}

var logger = logging.NewLogger("root")

var noConfigCmd = map[string]struct{}{
	"help":             {},
	"keygen":           {},
	"amount":           {},
	"completion":       {},
	"__complete":       {},
	"__completeNoDesc": {},
	"config":           {},
	"version":          {},
}

func main() {
	cobra.EnableTraverseRunHooks = true

	rootCmd := NewRootCommand()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go concurrent.OnSignal(ctx, logger, cancel, syscall.SIGINT, syscall.SIGTERM)

	rootCmd.Execute(ctx)
}

func NewRootCommand() *RootCommand {
	rootCmd := &RootCommand{viper: viper.New()}

	rootCmd.baseCmd = &cobra.Command{
		Use:   "tokenctl",
		Short: "CLI tool for invoking token operations over JSON-RPC",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !rootCmd.verbose {
				// Failed operations are still reported, one line each.
				zerolog.SetGlobalLevel(zerolog.ErrorLevel)
			} else if !cmd.Flags().Changed("log-level") {
				logging.SetLogSeverityFromEnv()
			} else if err := logging.TrySetupGlobalLevel(rootCmd.logLevel); err != nil {
				return err
			}

			common.SetConfigFile(rootCmd.viper, rootCmd.cfgFile)
			common.SetDefaults(rootCmd.viper)

			// Traverse up to find the top-level command
			for cmd.HasParent() && cmd.Parent() != rootCmd.baseCmd {
				cmd = cmd.Parent()
			}

			if _, withoutConfig := noConfigCmd[cmd.Name()]; withoutConfig {
				return nil
			}
			cfg, err := common.LoadConfig(rootCmd.viper, rootCmd.cfgFile, logger)
			if err != nil {
				return err
			}
			rootCmd.config = *cfg

			if err := telemetry.Init(cmd.Context(), &rootCmd.config.Telemetry); err != nil {
				return fmt.Errorf("failed to initialize telemetry: %w", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.baseCmd.PersistentFlags().StringVarP(
		&rootCmd.cfgFile, "config", "c", common.DefaultConfigPath, "Path to config file")
	rootCmd.baseCmd.PersistentFlags().StringVarP(
		&rootCmd.logLevel, "log-level", "l", "info", "Log level: trace|debug|info|warn|error|fatal|panic (LOG_LEVEL when not set)")
	rootCmd.baseCmd.PersistentFlags().BoolVarP(
		&common.Quiet,
		"quiet",
		"q",
		false,
		"Quiet mode (print only the result and exit)",
	)
	rootCmd.baseCmd.PersistentFlags().BoolVarP(
		&rootCmd.verbose,
		"verbose",
		"v",
		false,
		"Verbose mode (print logs)",
	)

	rootCmd.registerSubCommands()
	return rootCmd
}

// registerSubCommands adds all subcommands to the root command
func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(token.GetCommands(&rc.config)...)
	rc.baseCmd.AddCommand(
		amount.GetCommand(),
		config.GetCommand(&rc.cfgFile, rc.viper),
		keygen.GetCommand(&rc.cfgFile),
		run.GetCommand(&rc.config),
		sign.GetCommand(&rc.config),
		sign.RecoverCommand(&rc.config),
		version.GetCommand(),
	)
}

// Execute runs the root command and handles any errors
func (rc *RootCommand) Execute(ctx context.Context) {
	err := rc.baseCmd.ExecuteContext(ctx)
	// Flushes exporters; a no-op when telemetry was not initialized.
	telemetry.Shutdown(context.WithoutCancel(ctx))
	// Operation failures were logged once by the operation itself.
	if err != nil && !common.IsReported(err) {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		os.Exit(1)
	}
}
