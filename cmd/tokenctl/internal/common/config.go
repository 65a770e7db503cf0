package common

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/NilFoundation/tokenctl/common/check"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/NilFoundation/tokenctl/internal/telemetry"
	"github.com/NilFoundation/tokenctl/services/invoker"
	"github.com/spf13/viper"
)

type Config struct {
	Token      invoker.Config               `mapstructure:"token"`
	Identities map[string]*ecdsa.PrivateKey `mapstructure:"identities"`
	Telemetry  telemetry.Config             `mapstructure:"telemetry"`
}

const (
	TokenSection      = "token"
	IdentitiesSection = "identities"
	TelemetrySection  = "telemetry"

	RPCEndpointField         = "rpc_endpoint"
	ContractAddressField     = "contract_address"
	AbiPathField             = "abi_path"
	GasLimitField            = "gas_limit"
	DecimalsField            = "decimals"
	ReceiptTimeoutField      = "receipt_timeout"
	ReceiptPollIntervalField = "receipt_poll_interval"

	MetricsField           = "metrics"
	TracesField            = "traces"
	TraceSamplingRateField = "trace_sampling_rate"
	ServiceNameField       = "service_name"

	EnvPrefix         = "TOKENCTL"
	IdentityEnvPrefix = EnvPrefix + "_IDENTITY_"
)

const InitConfigTemplate = `; Configuration for invoking token operations
[token]

; JSON-RPC endpoint of the node
; rpc_endpoint = "http://127.0.0.1:8545"

; Address of the deployed token contract
; contract_address = "0xWRITE_THE_TOKEN_ADDRESS_HERE"

; Path to a JSON ABI of the token; the embedded ERC-20 ABI is used when empty
; abi_path = ""

; Gas-limit ceiling of every state-changing call
; gas_limit = 100000

; Token decimals used to scale quantities into base units
; decimals = 9

; How long to wait for a receipt; 0 waits until the command is interrupted
; receipt_timeout = 0s
; receipt_poll_interval = 500ms

; Signing identities: <name> = <hex private key>.
; The minter, client and relayer roles are used by default.
; Keys may also come from TOKENCTL_IDENTITY_<NAME> environment variables.
; You can generate a new key with "tokenctl keygen new <name>".
[identities]

[telemetry]
; none | stdout | grpc
; metrics = none
; traces = none
; trace_sampling_rate = 1.0
; service_name = tokenctl
`

// SupportedOptions lists the keys "config get/set" accept, as section.key.
var SupportedOptions = []string{
	TokenSection + "." + RPCEndpointField,
	TokenSection + "." + ContractAddressField,
	TokenSection + "." + AbiPathField,
	TokenSection + "." + GasLimitField,
	TokenSection + "." + DecimalsField,
	TokenSection + "." + ReceiptTimeoutField,
	TokenSection + "." + ReceiptPollIntervalField,
	TelemetrySection + "." + MetricsField,
	TelemetrySection + "." + TracesField,
	TelemetrySection + "." + TraceSamplingRateField,
	TelemetrySection + "." + ServiceNameField,
}

// IsSupportedOption accepts the fixed options plus any identities.<name>.
func IsSupportedOption(key string) bool {
	if name, ok := strings.CutPrefix(key, IdentitiesSection+"."); ok {
		return name != ""
	}
	return slices.Contains(SupportedOptions, key)
}

var DefaultConfigPath string

func init() {
	homeDir, err := os.UserHomeDir()
	check.PanicIfErr(err)

	DefaultConfigPath = filepath.Join(homeDir, ".config/tokenctl/config.ini")
}

// SetDefaults registers defaults for every option, which also lets env variables override them.
func SetDefaults(v *viper.Viper) {
	defaults := invoker.NewDefaultConfig()
	v.SetDefault(TokenSection+"."+RPCEndpointField, defaults.Endpoint)
	v.SetDefault(TokenSection+"."+ContractAddressField, defaults.ContractAddressHex)
	v.SetDefault(TokenSection+"."+AbiPathField, defaults.AbiPath)
	v.SetDefault(TokenSection+"."+GasLimitField, defaults.GasLimit)
	v.SetDefault(TokenSection+"."+DecimalsField, defaults.Decimals)
	v.SetDefault(TokenSection+"."+ReceiptTimeoutField, defaults.ReceiptTimeout)
	v.SetDefault(TokenSection+"."+ReceiptPollIntervalField, defaults.ReceiptPollInterval)

	telemetryDefaults := telemetry.NewDefaultConfig()
	v.SetDefault(TelemetrySection+"."+MetricsField, telemetryDefaults.MetricExportOption.String())
	v.SetDefault(TelemetrySection+"."+TracesField, telemetryDefaults.TraceExportOption.String())
	v.SetDefault(TelemetrySection+"."+TraceSamplingRateField, 1.0)
	v.SetDefault(TelemetrySection+"."+ServiceNameField, telemetryDefaults.ServiceName)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// IdentitiesFromEnv collects TOKENCTL_IDENTITY_<NAME>=<hex key> pairs; names are lower-cased.
func IdentitiesFromEnv(environ []string) map[string]string {
	keys := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		name, ok = strings.CutPrefix(name, IdentityEnvPrefix)
		if !ok || name == "" {
			continue
		}
		keys[strings.ToLower(name)] = value
	}
	return keys
}

// NewRegistry registers config identities first; the environment overrides keys with the same name.
func NewRegistry(cfg *Config, environ []string) (*identity.Registry, error) {
	keys := make(map[string]*ecdsa.PrivateKey, len(cfg.Identities))
	for name, key := range cfg.Identities {
		keys[strings.ToLower(name)] = key
	}
	for name, keyHex := range IdentitiesFromEnv(environ) {
		key, err := identity.ParsePrivateKey(keyHex)
		if err != nil {
			return nil, fmt.Errorf("%s%s: %w", IdentityEnvPrefix, strings.ToUpper(name), err)
		}
		keys[name] = key
	}
	return identity.NewRegistryFromKeys(keys)
}

func InitDefaultConfig(configPath string) (string, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	dirPath := filepath.Dir(configPath)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// Keys end up in this file, so it is private to the user.
	file, err := os.OpenFile(configPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	_, err = file.WriteString(InitConfigTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to write template to config file: %w", err)
	}
	return configPath, nil
}

// PatchConfig sets section.key options in the config file, keeping comments and unrelated lines.
// Existing keys are replaced in place; missing ones are appended to their section.
func PatchConfig(configPath string, delta map[string]any) error {
	if _, err := os.Stat(configPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			configPath, err = InitDefaultConfig(configPath)
		}
		if err != nil {
			return err
		}
	}

	cfg, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	pending := make(map[string]map[string]any)
	for fullKey, value := range delta {
		section, key, ok := strings.Cut(fullKey, ".")
		if !ok {
			return fmt.Errorf("option %q must look like section.key", fullKey)
		}
		if pending[section] == nil {
			pending[section] = make(map[string]any)
		}
		pending[section][key] = value
	}

	var lines []string
	flush := func(section string) {
		for _, key := range sortedKeys(pending[section]) {
			lines = append(lines, fmt.Sprintf("%s = %v", key, pending[section][key]))
		}
		delete(pending, section)
	}

	section := ""
	for _, line := range strings.Split(strings.TrimRight(string(cfg), "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			flush(section)
			section = strings.ToLower(strings.Trim(trimmed, "[]"))
			lines = append(lines, line)
			continue
		}
		key := strings.TrimSpace(strings.Split(trimmed, "=")[0])
		if value, ok := pending[section][key]; ok && !strings.HasPrefix(trimmed, ";") {
			lines = append(lines, fmt.Sprintf("%s = %v", key, value))
			delete(pending[section], key)
			continue
		}
		lines = append(lines, line)
	}
	flush(section)

	for _, name := range sortedKeys(pending) {
		lines = append(lines, "", "["+name+"]")
		flush(name)
	}
	return os.WriteFile(configPath, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// SetConfigFile sets the config file for the viper
func SetConfigFile(v *viper.Viper, cfgFile string) {
	v.SetConfigType("ini")
	v.SetConfigFile(cfgFile)
}
