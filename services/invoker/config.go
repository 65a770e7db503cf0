package invoker

import (
	"errors"
	"fmt"
	"time"

	"github.com/NilFoundation/tokenctl/internal/amount"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

const (
	DefaultEndpoint            = "http://127.0.0.1:8545"
	DefaultGasLimit            = 100_000
	DefaultReceiptPollInterval = 500 * time.Millisecond
)

type Config struct {
	Endpoint           string `yaml:"rpcEndpoint,omitempty" mapstructure:"rpc_endpoint"`
	ContractAddressHex string `yaml:"contractAddress,omitempty" mapstructure:"contract_address"`
	// AbiPath points to a JSON ABI file; empty means the embedded token ABI.
	AbiPath  string `yaml:"abiPath,omitempty" mapstructure:"abi_path"`
	GasLimit uint64 `yaml:"gasLimit,omitempty" mapstructure:"gas_limit"`
	Decimals int32  `yaml:"decimals,omitempty" mapstructure:"decimals"`
	// ReceiptTimeout bounds the wait for a receipt; zero leaves it to the caller's context.
	ReceiptTimeout      time.Duration `yaml:"receiptTimeout,omitempty" mapstructure:"receipt_timeout"`
	ReceiptPollInterval time.Duration `yaml:"receiptPollInterval,omitempty" mapstructure:"receipt_poll_interval"`
}

func NewConfig(endpoint string, contractAddressHex string) Config {
	cfg := NewDefaultConfig()
	cfg.Endpoint = endpoint
	cfg.ContractAddressHex = contractAddressHex
	return cfg
}

func NewDefaultConfig() Config {
	return Config{
		Endpoint:            DefaultEndpoint,
		GasLimit:            DefaultGasLimit,
		Decimals:            amount.DefaultDecimals,
		ReceiptPollInterval: DefaultReceiptPollInterval,
	}
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("rpc endpoint is not set")
	}
	if !ethcommon.IsHexAddress(c.ContractAddressHex) {
		return fmt.Errorf("%w: contract address %q", ErrInvalidAddress, c.ContractAddressHex)
	}
	if c.GasLimit == 0 {
		return errors.New("gas limit must be positive")
	}
	if _, err := amount.Denominator(c.Decimals); err != nil {
		return err
	}
	if c.ReceiptTimeout < 0 {
		return errors.New("receipt timeout must not be negative")
	}
	if c.ReceiptPollInterval <= 0 {
		return errors.New("receipt poll interval must be positive")
	}
	return nil
}
