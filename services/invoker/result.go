package invoker

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type Operation string

const (
	OperationMint           Operation = "mint"
	OperationApprove        Operation = "approve"
	OperationTransferFrom   Operation = "transferFrom"
	OperationSignMessage    Operation = "signMessage"
	OperationEncodeAmount   Operation = "encodeAmount"
	OperationBalanceOf      Operation = "balanceOf"
	OperationAllowance      Operation = "allowance"
	OperationTransferEvents Operation = "transferEvents"
)

type TransferEvent struct {
	From        ethcommon.Address `json:"from"`
	To          ethcommon.Address `json:"to"`
	Value       *big.Int          `json:"value"`
	BlockNumber uint64            `json:"blockNumber"`
	TxHash      ethcommon.Hash    `json:"txHash"`
	LogIndex    uint              `json:"logIndex"`
}

type ApprovalEvent struct {
	Owner       ethcommon.Address `json:"owner"`
	Spender     ethcommon.Address `json:"spender"`
	Value       *big.Int          `json:"value"`
	BlockNumber uint64            `json:"blockNumber"`
	TxHash      ethcommon.Hash    `json:"txHash"`
	LogIndex    uint              `json:"logIndex"`
}

// CallResult describes a mined, successful state-changing call.
type CallResult struct {
	Operation     Operation         `json:"operation"`
	Signer        string            `json:"signer"`
	SignerAddress ethcommon.Address `json:"signerAddress"`
	TxHash        ethcommon.Hash    `json:"txHash"`
	BlockHash     ethcommon.Hash    `json:"blockHash"`
	BlockNumber   uint64            `json:"blockNumber"`
	GasLimit      uint64            `json:"gasLimit"`
	GasUsed       uint64            `json:"gasUsed"`
	BaseAmount    *uint256.Int      `json:"baseAmount"`
	Transfers     []TransferEvent   `json:"transfers,omitempty"`
	Approvals     []ApprovalEvent   `json:"approvals,omitempty"`
}
