package contracts

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// NameToken is the embedded ERC-20 interface used when no ABI file is configured.
const NameToken = "Token"

func GetAbi(name string) (*abi.ABI, error) {
	data, err := Fs.ReadFile("compiled/" + name + ".abi")
	if err != nil {
		return nil, err
	}
	return parseAbi(data)
}

// LoadAbi reads an ABI from path, falling back to the embedded token ABI for an empty path.
func LoadAbi(path string) (*abi.ABI, error) {
	if path == "" {
		return GetAbi(NameToken)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ABI file: %w", err)
	}
	return parseAbi(data)
}

func parseAbi(data []byte) (*abi.ABI, error) {
	contractAbi, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return &contractAbi, nil
}
