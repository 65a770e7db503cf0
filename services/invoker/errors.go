package invoker

import (
	"errors"
	"fmt"

	"github.com/NilFoundation/tokenctl/internal/identity"
)

var (
	ErrUnknownSigner   = identity.ErrUnknownSigner
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidAbi      = errors.New("invalid contract abi")
	ErrEndpoint        = errors.New("endpoint error")
	ErrExecutionFailed = errors.New("execution failed")
	ErrOutOfGas        = errors.New("out of gas")

	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrUnauthorized          = errors.New("caller is not authorized")
	ErrInvalidReceiver       = errors.New("invalid receiver")
	ErrInvalidSender         = errors.New("invalid sender")
	ErrInvalidSpender        = errors.New("invalid spender")
	ErrInvalidApprover       = errors.New("invalid approver")
)

type contractError struct {
	MethodName string
	Args       map[string]any
}

func (e contractError) Error() string {
	return fmt.Sprintf("contract error: %s with args %v", e.MethodName, e.Args)
}

// abigen doesn't generate error types, have to specify them manually
var contractErrorMap = map[string]error{
	"ERC20InsufficientAllowance": ErrInsufficientAllowance,
	"ERC20InsufficientBalance":   ErrInsufficientBalance,
	"ERC20InvalidApprover":       ErrInvalidApprover,
	"ERC20InvalidReceiver":       ErrInvalidReceiver,
	"ERC20InvalidSender":         ErrInvalidSender,
	"ERC20InvalidSpender":        ErrInvalidSpender,
	"OwnableUnauthorizedAccount": ErrUnauthorized,
}

// errorByName wraps a decoded contract error with its sentinel, if there is one.
func errorByName(cerr contractError) error {
	if mappedErr, ok := contractErrorMap[cerr.MethodName]; ok {
		return fmt.Errorf("%w: %w", mappedErr, cerr)
	}
	return cerr
}
