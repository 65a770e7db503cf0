package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidMessage   = errors.New("invalid message")
	ErrInvalidSignature = errors.New("invalid signature")
)

const (
	signatureLength        = crypto.SignatureLength // r || s || v
	compactSignatureLength = 64
	recoveryIdOffset       = 27
)

// Signature is a signed-message signature in the Ethereum personal message format.
type Signature struct {
	Signer  string         `json:"signer"`
	Message hexutil.Bytes  `json:"message"`
	Hash    common.Hash    `json:"hash"`
	V       uint8          `json:"v"`
	R       common.Hash    `json:"r"`
	S       common.Hash    `json:"s"`
	Address common.Address `json:"address"`
}

// Bytes returns r || s || v with v in {27, 28}.
func (s *Signature) Bytes() []byte {
	out := make([]byte, 0, signatureLength)
	out = append(out, s.R.Bytes()...)
	out = append(out, s.S.Bytes()...)
	return append(out, s.V)
}

// Compact returns the 64-byte EIP-2098 form: the y-parity is stored in the top bit of s.
func (s *Signature) Compact() []byte {
	out := make([]byte, 0, compactSignatureLength)
	out = append(out, s.R.Bytes()...)
	yParityAndS := s.S
	if s.V-recoveryIdOffset == 1 {
		yParityAndS[0] |= 0x80
	}
	return append(out, yParityAndS.Bytes()...)
}

func (s *Signature) Hex() string {
	return hexutil.Encode(s.Bytes())
}

func (s *Signature) CompactHex() string {
	return hexutil.Encode(s.Compact())
}

// Sign signs message with the "\x19Ethereum Signed Message:\n" prefix.
// The result is deterministic for a fixed (message, key) pair.
func (i *Identity) Sign(message []byte) (*Signature, error) {
	hash := accounts.TextHash(message)
	sig, err := crypto.Sign(hash, i.key)
	if err != nil {
		return nil, fmt.Errorf("signing with %s: %w", i.Name, err)
	}

	recovered, err := recoverAddress(hash, sig)
	if err != nil {
		return nil, err
	}
	if recovered != i.Address {
		return nil, fmt.Errorf("%w: recovered %s instead of %s", ErrInvalidSignature, recovered.Hex(), i.Address.Hex())
	}

	return &Signature{
		Signer:  i.Name,
		Message: message,
		Hash:    common.BytesToHash(hash),
		V:       sig[crypto.RecoveryIDOffset] + recoveryIdOffset,
		R:       common.BytesToHash(sig[:32]),
		S:       common.BytesToHash(sig[32:64]),
		Address: recovered,
	}, nil
}

// SignMessage parses message like ParseMessage and signs it with the named identity.
func (r *Registry) SignMessage(message string, signer string) (*Signature, error) {
	id, err := r.Get(signer)
	if err != nil {
		return nil, err
	}
	payload, err := ParseMessage(message)
	if err != nil {
		return nil, err
	}
	return id.Sign(payload)
}

// Recover returns the address that produced sig over message.
// Both the 65-byte r || s || v form and the 64-byte compact form are accepted.
func Recover(message []byte, sig []byte) (common.Address, error) {
	var raw [signatureLength]byte
	switch len(sig) {
	case signatureLength:
		copy(raw[:], sig)
		if raw[64] >= recoveryIdOffset {
			raw[64] -= recoveryIdOffset
		}
	case compactSignatureLength:
		copy(raw[:64], sig)
		raw[64] = raw[32] >> 7
		raw[32] &= 0x7f
	default:
		return common.Address{}, fmt.Errorf("%w: unexpected length %d", ErrInvalidSignature, len(sig))
	}
	if raw[64] > 1 {
		return common.Address{}, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, raw[64])
	}

	return recoverAddress(accounts.TextHash(message), raw[:])
}

func recoverAddress(hash []byte, sig []byte) (common.Address, error) {
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// ParseMessage treats a 0x-prefixed string as hex bytes and anything else as UTF-8 text.
func ParseMessage(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return []byte(s), nil
	}
	message, err := hexutil.Decode("0x" + s[2:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return message, nil
}
