package sign

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/NilFoundation/tokenctl/cmd/tokenctl/internal/common"
	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/NilFoundation/tokenctl/services/invoker"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var logger = logging.NewLogger("signCommand")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Longer messages are stored under their hash to keep file names short.
const maxFileNameMessageLength = 64

type signParams struct {
	signer  string
	compact bool
	outDir  string
}

// SignedPayload is the file written by "sign --out-dir".
type SignedPayload struct {
	Message          hexutil.Bytes `json:"message"`
	Hash             string        `json:"hash"`
	Signer           string        `json:"signer"`
	Address          string        `json:"address"`
	V                uint8         `json:"v"`
	R                string        `json:"r"`
	S                string        `json:"s"`
	Signature        string        `json:"signature"`
	CompactSignature string        `json:"compactSignature"`
}

func NewSignedPayload(sig *identity.Signature) *SignedPayload {
	return &SignedPayload{
		Message:          sig.Message,
		Hash:             sig.Hash.Hex(),
		Signer:           sig.Signer,
		Address:          sig.Address.Hex(),
		V:                sig.V,
		R:                sig.R.Hex(),
		S:                sig.S.Hex(),
		Signature:        sig.Hex(),
		CompactSignature: sig.CompactHex(),
	}
}

func GetCommand(cfg *common.Config) *cobra.Command {
	params := &signParams{}

	cmd := &cobra.Command{
		Use:   "sign [message]",
		Short: "Sign a message locally with an identity",
		Long: "Sign hashes the message with the Ethereum signed-message prefix and signs it. " +
			"A 0x-prefixed message is treated as hex bytes, anything else as text. No network call is made.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(args, cfg, params)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&params.signer, "signer", "s", identity.RoleClient, "Name of the identity that signs")
	cmd.Flags().BoolVar(&params.compact, "compact", false, "Print the 64-byte EIP-2098 signature")
	cmd.Flags().StringVar(&params.outDir, "out-dir", "", "Also write the signed payload to <dir>/<message-hex>.json (hash hex for long messages)")

	return cmd
}

func runSign(args []string, cfg *common.Config, params *signParams) error {
	registry, err := common.NewRegistryFromEnv(cfg, logger)
	if err != nil {
		return err
	}

	sig, err := invoker.SignMessage(registry, args[0], params.signer, logger)
	if err != nil {
		return common.Reported(err)
	}

	common.PrintField("Address", sig.Address.Hex())
	common.PrintField("Hash", sig.Hash.Hex())
	common.PrintField("V", sig.V)
	common.PrintField("R", sig.R.Hex())
	common.PrintField("S", sig.S.Hex())
	if params.compact {
		common.PrintResult("Signature", sig.CompactHex())
	} else {
		common.PrintResult("Signature", sig.Hex())
	}

	if params.outDir != "" {
		path, err := WritePayload(params.outDir, NewSignedPayload(sig))
		if err != nil {
			return err
		}
		common.PrintField("Saved to", path)
	}
	return nil
}

// WritePayload stores the payload as <dir>/<message-hex>.json and returns the file path.
// The hex is unprefixed; a message longer than 64 bytes is named by its hash instead.
func WritePayload(dir string, payload *SignedPayload) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, payloadFileName(payload))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write signed payload: %w", err)
	}
	return path, nil
}

func payloadFileName(payload *SignedPayload) string {
	if len(payload.Message) > maxFileNameMessageLength {
		return ethcommon.Bytes2Hex(ethcommon.FromHex(payload.Hash)) + ".json"
	}
	return ethcommon.Bytes2Hex(payload.Message) + ".json"
}

func ReadPayload(path string) (*SignedPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	payload := &SignedPayload{}
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("failed to parse signed payload %s: %w", path, err)
	}
	return payload, nil
}
