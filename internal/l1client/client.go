package l1client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// EthClient is the subset of the node API the token invoker needs.
// *ethclient.Client implements it; tests substitute an in-memory ledger.
type EthClient interface {
	bind.ContractBackend

	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*ethtypes.Receipt, error)
	Close()
}

var _ EthClient = (*ethclient.Client)(nil)

// NewEthClient dials the JSON-RPC endpoint. No request timeout is applied here:
// callers bound every call through ctx.
func NewEthClient(ctx context.Context, endpoint string, logger logging.Logger) (EthClient, error) {
	startTime := time.Now()

	rpcClient, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	logger.Debug().
		Str(logging.FieldUrl, endpoint).
		Dur(logging.FieldDuration, time.Since(startTime)).
		Msg("connected to endpoint")

	return ethclient.NewClient(rpcClient), nil
}
