package common

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/NilFoundation/tokenctl/internal/telemetry"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

func decodePrivateKey(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() == reflect.String && t == reflect.TypeOf(&ecdsa.PrivateKey{}) {
		s, _ := data.(string)
		return identity.ParsePrivateKey(s)
	}
	return data, nil
}

func decodeExportOption(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() == reflect.String && t == reflect.TypeOf(telemetry.ExportOptionNone) {
		s, _ := data.(string)
		return telemetry.ParseExportOption(s)
	}
	return data, nil
}

func updateDecoderConfig(config *mapstructure.DecoderConfig) {
	config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		config.DecodeHook,
		decodePrivateKey,
		decodeExportOption,
	)
}

// LoadConfig reads the config file, creating it from the template when it is missing, and decodes it.
func LoadConfig(v *viper.Viper, cfgFile string, logger logging.Logger) (*Config, error) {
	err := v.ReadInConfig()

	// Create file if it doesn't exist
	if errors.As(err, new(viper.ConfigFileNotFoundError)) || errors.Is(err, os.ErrNotExist) {
		logger.Info().Msg("Config file not found. Creating a new one...")

		path, errCfg := InitDefaultConfig(cfgFile)
		if errCfg != nil {
			logger.Error().Err(errCfg).Msg("Failed to create config")
			return nil, errCfg
		}

		logger.Info().Msgf("Config file created successfully at %s", path)
		logger.Info().Msgf("set via `%s config set <section.option> <value>` or via config file", os.Args[0])
		err = v.ReadInConfig()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return DecodeConfig(v)
}

func DecodeConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg, updateDecoderConfig); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return cfg, nil
}

// ValidateConfig perform some simple configuration validation
func ValidateConfig(cfg *Config, logger logging.Logger) error {
	if err := cfg.Token.Validate(); err != nil {
		logger.Info().Msgf("set via `%s config set token.<option> <value>` or via config file", os.Args[0])
		return fmt.Errorf("invalid [%s] section: %w", TokenSection, err)
	}
	return nil
}
