package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var logger = logging.NewLogger("configCommand")

var noConfigCmd = map[string]struct{}{
	"help": {},
	"init": {},
	"set":  {},
}

func GetCommand(configPath *string, v *viper.Viper) *cobra.Command {
	configCmd := &cobra.Command{
		Use:          "config",
		Short:        "Configuration management",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			common.SetConfigFile(v, *configPath)

			if _, withoutConfig := noConfigCmd[cmd.Name()]; withoutConfig {
				return nil
			}

			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Initialize config file",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := common.InitDefaultConfig(*configPath)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to create config")
				return err
			}

			common.PrintResult("Config initialized", path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:          "show",
		Short:        "Show the effective configuration as YAML (private keys are masked)",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			common.PrintField("Config file", v.ConfigFileUsed())

			out, err := RenderSettings(v.AllSettings())
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:          "get [section.key]",
		Short:        "Get a config value",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])
			if !v.IsSet(key) {
				logger.Warn().Msgf("Key %q is not found in config", key)
				return nil
			}
			value := v.Get(key)
			if strings.HasPrefix(key, common.IdentitiesSection+".") {
				value = maskKey(fmt.Sprint(value))
			}
			common.PrintResult(key, value)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set [section.key] [value]",
		Short: "Set a config value",
		Long: "Set updates the config file in place. Supported keys: " + strings.Join(common.SupportedOptions, ", ") +
			" and identities.<name>.",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])
			if !common.IsSupportedOption(key) {
				return fmt.Errorf("key %q is not known", args[0])
			}

			if err := common.PatchConfig(*configPath, map[string]any{key: args[1]}); err != nil {
				logger.Error().Err(err).Msg("Failed to set config value")
				return err
			}
			common.PrintSuccess("Set %q", key)
			return nil
		},
	}

	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(getCmd)
	configCmd.AddCommand(setCmd)

	return configCmd
}

// RenderSettings renders viper settings as YAML with sorted keys and masked identity keys.
func RenderSettings(settings map[string]any) (string, error) {
	if identities, ok := settings[common.IdentitiesSection].(map[string]any); ok {
		masked := make(map[string]any, len(identities))
		for name, key := range identities {
			masked[name] = maskKey(fmt.Sprint(key))
		}
		settings[common.IdentitiesSection] = masked
	}

	sections := make([]string, 0, len(settings))
	for section := range settings {
		sections = append(sections, section)
	}
	slices.Sort(sections)

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, section := range sections {
		value := &yaml.Node{}
		if err := value.Encode(settings[section]); err != nil {
			return "", err
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: section}, value)
	}

	var out strings.Builder
	encoder := yaml.NewEncoder(&out)
	encoder.SetIndent(2)
	if err := encoder.Encode(root); err != nil {
		return "", err
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}
	return out.String(), nil
}

func maskKey(key string) string {
	key = strings.TrimPrefix(key, "0x")
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
