package invoker

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/NilFoundation/tokenctl/common"
	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/NilFoundation/tokenctl/contracts"
	"github.com/NilFoundation/tokenctl/internal/amount"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/NilFoundation/tokenctl/internal/l1client"
	"github.com/NilFoundation/tokenctl/internal/telemetry"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Invoker submits token operations to a single endpoint on behalf of registered identities.
// Operations are independent: nothing is serialized, retried or rolled back.
// Canceling ctx stops waiting for a receipt; a submitted transaction cannot be withdrawn.
type Invoker interface {
	Mint(ctx context.Context, to string, quantity string, opts ...CallOption) (*CallResult, error)

	Approve(ctx context.Context, spender string, quantity string, opts ...CallOption) (*CallResult, error)

	// TransferFrom moves tokens from an owner that approved the signer beforehand.
	// The allowance is not checked locally.
	TransferFrom(ctx context.Context, from string, to string, quantity string, opts ...CallOption) (*CallResult, error)

	BalanceOf(ctx context.Context, account string) (*uint256.Int, error)

	Allowance(ctx context.Context, owner string, spender string) (*uint256.Int, error)

	TransferEvents(ctx context.Context, fromBlock uint64, toBlock *uint64) ([]TransferEvent, error)

	SignMessage(message string, signer string) (*identity.Signature, error)

	EncodeAmount(value *big.Int, padWidth int) (string, error)

	ContractAddress() ethcommon.Address

	ChainID() *big.Int

	Decimals() int32

	Close()
}

const (
	instrumentationName  = "tokenctl/invoker"
	operationsMetricName = "token_operations"

	methodMint         = "mint"
	methodApprove      = "approve"
	methodTransferFrom = "transferFrom"
	methodBalanceOf    = "balanceOf"
	methodAllowance    = "allowance"
	eventTransfer      = "Transfer"
	eventApproval      = "Approval"
)

type invokerImpl struct {
	cfg             Config
	contract        *bind.BoundContract
	contractAddress ethcommon.Address
	abi             *abi.ABI
	chainID         *big.Int
	ethClient       l1client.EthClient
	identities      *identity.Registry

	*observer
}

// observer wraps every operation in a span, its metrics and a single log line.
type observer struct {
	logger logging.Logger
	meter  telemetry.Meter
	tracer telemetry.Tracer
}

func newObserver(logger logging.Logger) *observer {
	return &observer{
		logger: logger,
		meter:  telemetry.NewMeter(instrumentationName),
		tracer: telemetry.NewTracer(instrumentationName),
	}
}

var _ Invoker = (*invokerImpl)(nil)

// NewInvoker dials cfg.Endpoint and binds the token contract.
func NewInvoker(
	ctx context.Context,
	cfg Config,
	identities *identity.Registry,
	logger logging.Logger,
) (Invoker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ethClient, err := l1client.NewEthClient(ctx, cfg.Endpoint, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEndpoint, err)
	}

	invoker, err := NewInvokerWithEthClient(ctx, cfg, ethClient, identities, logger)
	if err != nil {
		ethClient.Close()
		return nil, err
	}
	return invoker, nil
}

func NewInvokerWithEthClient(
	ctx context.Context,
	cfg Config,
	ethClient l1client.EthClient,
	identities *identity.Registry,
	logger logging.Logger,
) (Invoker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	abiDefinition, err := contracts.LoadAbi(cfg.AbiPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAbi, err)
	}
	if err := checkAbi(abiDefinition); err != nil {
		return nil, err
	}

	chainID, err := ethClient.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve chain ID: %w", ErrEndpoint, err)
	}

	contractAddress := ethcommon.HexToAddress(cfg.ContractAddressHex)
	return &invokerImpl{
		cfg:             cfg,
		contract:        bind.NewBoundContract(contractAddress, *abiDefinition, ethClient, ethClient, ethClient),
		contractAddress: contractAddress,
		abi:             abiDefinition,
		chainID:         chainID,
		ethClient:       ethClient,
		identities:      identities,
		observer: newObserver(logger.With().
			Str(logging.FieldContract, contractAddress.Hex()).
			Str(logging.FieldChainId, chainID.String()).
			Logger()),
	}, nil
}

func checkAbi(abiDefinition *abi.ABI) error {
	for _, method := range []string{methodMint, methodApprove, methodTransferFrom, methodBalanceOf, methodAllowance} {
		if _, ok := abiDefinition.Methods[method]; !ok {
			return fmt.Errorf("%w: method %s is missing", ErrInvalidAbi, method)
		}
	}
	for _, event := range []string{eventTransfer, eventApproval} {
		if _, ok := abiDefinition.Events[event]; !ok {
			return fmt.Errorf("%w: event %s is missing", ErrInvalidAbi, event)
		}
	}
	return nil
}

func (i *invokerImpl) ContractAddress() ethcommon.Address {
	return i.contractAddress
}

func (i *invokerImpl) ChainID() *big.Int {
	return new(big.Int).Set(i.chainID)
}

func (i *invokerImpl) Decimals() int32 {
	return i.cfg.Decimals
}

func (i *invokerImpl) Close() {
	i.ethClient.Close()
}

func (i *invokerImpl) Mint(ctx context.Context, to string, quantity string, opts ...CallOption) (*CallResult, error) {
	options := newCallOptions(identity.RoleMinter, i.cfg.GasLimit, opts)

	var result *CallResult
	err := i.observe(ctx, OperationMint, zerolog.InfoLevel, func(ctx context.Context, fields logFields) error {
		fields[logging.FieldSigner] = options.signer
		signer, err := i.identities.Get(options.signer)
		if err != nil {
			return err
		}

		toAddress, err := parseAddress(to)
		if err != nil {
			return fmt.Errorf("recipient: %w", err)
		}
		fields[logging.FieldTo] = toAddress.Hex()

		baseAmount, err := i.toBaseUnits(quantity)
		if err != nil {
			return err
		}
		fields[logging.FieldAmount] = baseAmount.Dec()

		result, err = i.transact(ctx, fields, OperationMint, signer, options.gasLimit, baseAmount,
			methodMint, toAddress, baseAmount.ToBig())
		return err
	})
	return result, err
}

func (i *invokerImpl) Approve(
	ctx context.Context, spender string, quantity string, opts ...CallOption,
) (*CallResult, error) {
	options := newCallOptions(identity.RoleClient, i.cfg.GasLimit, opts)

	var result *CallResult
	err := i.observe(ctx, OperationApprove, zerolog.InfoLevel, func(ctx context.Context, fields logFields) error {
		fields[logging.FieldSigner] = options.signer
		signer, err := i.identities.Get(options.signer)
		if err != nil {
			return err
		}

		spenderAddress, err := parseAddress(spender)
		if err != nil {
			return fmt.Errorf("spender: %w", err)
		}
		fields[logging.FieldSpender] = spenderAddress.Hex()

		baseAmount, err := i.toBaseUnits(quantity)
		if err != nil {
			return err
		}
		fields[logging.FieldAmount] = baseAmount.Dec()

		result, err = i.transact(ctx, fields, OperationApprove, signer, options.gasLimit, baseAmount,
			methodApprove, spenderAddress, baseAmount.ToBig())
		return err
	})
	return result, err
}

func (i *invokerImpl) TransferFrom(
	ctx context.Context, from string, to string, quantity string, opts ...CallOption,
) (*CallResult, error) {
	options := newCallOptions(identity.RoleClient, i.cfg.GasLimit, opts)

	var result *CallResult
	err := i.observe(ctx, OperationTransferFrom, zerolog.InfoLevel, func(ctx context.Context, fields logFields) error {
		fields[logging.FieldSigner] = options.signer
		signer, err := i.identities.Get(options.signer)
		if err != nil {
			return err
		}

		fromAddress, err := parseAddress(from)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		fields[logging.FieldFrom] = fromAddress.Hex()

		toAddress, err := parseAddress(to)
		if err != nil {
			return fmt.Errorf("destination: %w", err)
		}
		fields[logging.FieldTo] = toAddress.Hex()

		baseAmount, err := i.toBaseUnits(quantity)
		if err != nil {
			return err
		}
		fields[logging.FieldAmount] = baseAmount.Dec()

		result, err = i.transact(ctx, fields, OperationTransferFrom, signer, options.gasLimit, baseAmount,
			methodTransferFrom, fromAddress, toAddress, baseAmount.ToBig())
		return err
	})
	return result, err
}

func (i *invokerImpl) BalanceOf(ctx context.Context, account string) (*uint256.Int, error) {
	var balance *uint256.Int
	err := i.observe(ctx, OperationBalanceOf, zerolog.DebugLevel, func(ctx context.Context, fields logFields) error {
		accountAddress, err := parseAddress(account)
		if err != nil {
			return err
		}
		fields[logging.FieldTo] = accountAddress.Hex()

		balance, err = i.callUint256(ctx, methodBalanceOf, accountAddress)
		if err != nil {
			return err
		}
		fields[logging.FieldAmount] = balance.Dec()
		return nil
	})
	return balance, err
}

func (i *invokerImpl) Allowance(ctx context.Context, owner string, spender string) (*uint256.Int, error) {
	var allowance *uint256.Int
	err := i.observe(ctx, OperationAllowance, zerolog.DebugLevel, func(ctx context.Context, fields logFields) error {
		ownerAddress, err := parseAddress(owner)
		if err != nil {
			return fmt.Errorf("owner: %w", err)
		}
		fields[logging.FieldFrom] = ownerAddress.Hex()

		spenderAddress, err := parseAddress(spender)
		if err != nil {
			return fmt.Errorf("spender: %w", err)
		}
		fields[logging.FieldSpender] = spenderAddress.Hex()

		allowance, err = i.callUint256(ctx, methodAllowance, ownerAddress, spenderAddress)
		if err != nil {
			return err
		}
		fields[logging.FieldAmount] = allowance.Dec()
		return nil
	})
	return allowance, err
}

// TransferEvents returns Transfer logs of the token in [fromBlock, toBlock]; nil toBlock means latest.
func (i *invokerImpl) TransferEvents(ctx context.Context, fromBlock uint64, toBlock *uint64) ([]TransferEvent, error) {
	var events []TransferEvent
	err := i.observe(ctx, OperationTransferEvents, zerolog.DebugLevel, func(ctx context.Context, fields logFields) error {
		query := ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(fromBlock),
			Addresses: []ethcommon.Address{i.contractAddress},
			Topics:    [][]ethcommon.Hash{{i.abi.Events[eventTransfer].ID}},
		}
		if toBlock != nil {
			if *toBlock < fromBlock {
				return fmt.Errorf("invalid block range [%d, %d]", fromBlock, *toBlock)
			}
			query.ToBlock = new(big.Int).SetUint64(*toBlock)
		}
		fields[logging.FieldBlockNumber] = fromBlock

		logs, err := i.ethClient.FilterLogs(ctx, query)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEndpoint, err)
		}
		for _, log := range logs {
			event, err := i.unpackTransfer(log)
			if err != nil {
				return err
			}
			events = append(events, *event)
		}
		fields["events"] = len(events)
		return nil
	})
	return events, err
}

func (i *invokerImpl) SignMessage(message string, signer string) (*identity.Signature, error) {
	return i.signMessage(i.identities, message, signer)
}

// SignMessage signs with an identity of identities without any endpoint.
// It reports the operation exactly like Invoker.SignMessage does.
func SignMessage(
	identities *identity.Registry, message string, signer string, logger logging.Logger,
) (*identity.Signature, error) {
	return newObserver(logger).signMessage(identities, message, signer)
}

func (o *observer) signMessage(
	identities *identity.Registry, message string, signer string,
) (*identity.Signature, error) {
	var signature *identity.Signature
	err := o.observe(context.Background(), OperationSignMessage, zerolog.InfoLevel,
		func(_ context.Context, fields logFields) error {
			fields[logging.FieldSigner] = signer

			var err error
			signature, err = identities.SignMessage(message, signer)
			if err != nil {
				return err
			}
			fields[logging.FieldSignerAddress] = signature.Address.Hex()
			return nil
		})
	return signature, err
}

func (i *invokerImpl) EncodeAmount(value *big.Int, padWidth int) (string, error) {
	var encoded string
	err := i.observe(context.Background(), OperationEncodeAmount, zerolog.DebugLevel,
		func(_ context.Context, fields logFields) error {
			var err error
			encoded, err = amount.EncodeAmount(value, padWidth)
			fields[logging.FieldAmount] = encoded
			return err
		})
	return encoded, err
}

type logFields map[string]any

// observe runs one operation inside a span, records its metrics and writes its single log line.
func (o *observer) observe(
	ctx context.Context,
	op Operation,
	level zerolog.Level,
	body func(ctx context.Context, fields logFields) error,
) error {
	reqId := uuid.NewString()
	ctx, span := o.tracer.Start(ctx, string(op), trace.WithAttributes(
		attribute.String(logging.FieldOperation, string(op)),
		attribute.String(logging.FieldReqId, reqId),
	))
	defer span.End()

	measurer, measurerErr := telemetry.NewMeasurer(o.meter, operationsMetricName)

	fields := logFields{}
	err := body(ctx, fields)

	outcome := "success"
	event := o.logger.WithLevel(level)
	if err != nil {
		outcome = "failure"
		event = o.logger.Error().Err(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if measurerErr == nil {
		measurer.Measure(ctx, metric.WithAttributes(
			attribute.String(logging.FieldOperation, string(op)),
			attribute.String("outcome", outcome),
		))
	}

	event.
		Str(logging.FieldOperation, string(op)).
		Str(logging.FieldReqId, reqId).
		Fields(map[string]any(fields)).
		Msgf("%s %s", op, outcomeMessage(err))
	return err
}

func outcomeMessage(err error) string {
	if err != nil {
		return "failed"
	}
	return "succeeded"
}

func parseAddress(s string) (ethcommon.Address, error) {
	s = strings.TrimSpace(s)
	if !ethcommon.IsHexAddress(s) {
		return ethcommon.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return ethcommon.HexToAddress(s), nil
}

func (i *invokerImpl) toBaseUnits(quantity string) (*uint256.Int, error) {
	baseAmount, err := amount.ParseToBaseUnits(quantity, i.cfg.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuantity, err)
	}
	return baseAmount, nil
}

func (i *invokerImpl) getEthCallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func (i *invokerImpl) callUint256(ctx context.Context, method string, args ...any) (*uint256.Int, error) {
	var out []any
	if err := i.contract.Call(i.getEthCallOpts(ctx), &out, method, args...); err != nil {
		return nil, i.classifyError(err)
	}
	value := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)

	result, overflow := uint256.FromBig(value)
	if overflow {
		return nil, fmt.Errorf("%s returned a value wider than 256 bits", method)
	}
	return result, nil
}

func (i *invokerImpl) getEthTransactOpts(
	ctx context.Context, signer *identity.Identity, gasLimit uint64,
) (*bind.TransactOpts, error) {
	transactOpts, err := bind.NewKeyedTransactorWithChainID(signer.PrivateKey(), i.chainID)
	if err != nil {
		return nil, fmt.Errorf("creating keyed transactor with chain ID: %w", err)
	}
	transactOpts.Context = ctx
	// A fixed limit skips eth_estimateGas, so reverts surface in the receipt.
	transactOpts.GasLimit = gasLimit
	return transactOpts, nil
}

func (i *invokerImpl) transact(
	ctx context.Context,
	fields logFields,
	op Operation,
	signer *identity.Identity,
	gasLimit uint64,
	baseAmount *uint256.Int,
	method string,
	args ...any,
) (*CallResult, error) {
	fields[logging.FieldSignerAddress] = signer.Address.Hex()

	transactOpts, err := i.getEthTransactOpts(ctx, signer, gasLimit)
	if err != nil {
		return nil, err
	}

	tx, err := i.contract.Transact(transactOpts, method, args...)
	if err != nil {
		return nil, i.classifyError(err)
	}
	fields[logging.FieldTxHash] = tx.Hash().Hex()
	fields[logging.FieldGasLimit] = tx.Gas()

	receipt, err := i.waitForReceipt(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}
	addReceiptDetails(fields, receipt)

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, i.explainFailure(ctx, signer.Address, tx, receipt)
	}

	result := &CallResult{
		Operation:     op,
		Signer:        signer.Name,
		SignerAddress: signer.Address,
		TxHash:        receipt.TxHash,
		BlockHash:     receipt.BlockHash,
		BlockNumber:   receipt.BlockNumber.Uint64(),
		GasLimit:      tx.Gas(),
		GasUsed:       receipt.GasUsed,
		BaseAmount:    baseAmount,
	}
	if err := i.collectEvents(receipt.Logs, result); err != nil {
		return nil, err
	}
	return result, nil
}

// waitForReceipt polls for the receipt, treating `NotFound` as "not mined yet".
func (i *invokerImpl) waitForReceipt(ctx context.Context, txHash ethcommon.Hash) (*ethtypes.Receipt, error) {
	receipt, err := common.WaitForValue(
		ctx,
		i.cfg.ReceiptTimeout,
		i.cfg.ReceiptPollInterval,
		func(ctx context.Context) (*ethtypes.Receipt, error) {
			receipt, err := i.ethClient.TransactionReceipt(ctx, txHash)
			if errors.Is(err, ethereum.NotFound) {
				// retry
				return nil, nil
			}
			return receipt, err
		})
	if err != nil {
		return nil, fmt.Errorf("%w: waiting for receipt of %s: %w", ErrEndpoint, txHash.Hex(), err)
	}
	return receipt, nil
}

func addReceiptDetails(fields logFields, receipt *ethtypes.Receipt) {
	fields["status"] = receipt.Status
	fields[logging.FieldGasUsed] = receipt.GasUsed
	fields[logging.FieldBlockHash] = receipt.BlockHash.Hex()
	if receipt.BlockNumber != nil {
		fields[logging.FieldBlockNumber] = receipt.BlockNumber.Uint64()
	}
	if receipt.EffectiveGasPrice != nil {
		fields["effectiveGasPrice"] = receipt.EffectiveGasPrice.String()
	}
}

// explainFailure replays a failed transaction with eth_call at its block to recover the revert reason.
func (i *invokerImpl) explainFailure(
	ctx context.Context, from ethcommon.Address, tx *ethtypes.Transaction, receipt *ethtypes.Receipt,
) error {
	msg := ethereum.CallMsg{
		From:  from,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err := i.ethClient.CallContract(ctx, msg, receipt.BlockNumber)
	switch {
	case err == nil && receipt.GasUsed >= tx.Gas():
		return fmt.Errorf("%w: tx %s: %w", ErrExecutionFailed, tx.Hash().Hex(), ErrOutOfGas)
	case err == nil:
		return fmt.Errorf("%w: tx %s reverted without reason", ErrExecutionFailed, tx.Hash().Hex())
	case isRevert(err):
		return fmt.Errorf("%w: tx %s: %w", ErrExecutionFailed, tx.Hash().Hex(), i.decodeContractError(err))
	default:
		return fmt.Errorf("%w: tx %s (reason unavailable: %w)", ErrExecutionFailed, tx.Hash().Hex(), err)
	}
}

// classifyError splits call errors into execution failures and endpoint errors.
func (i *invokerImpl) classifyError(err error) error {
	if isRevert(err) {
		return fmt.Errorf("%w: %w", ErrExecutionFailed, i.decodeContractError(err))
	}
	return fmt.Errorf("%w: %w", ErrEndpoint, err)
}

func isRevert(err error) bool {
	if _, ok := ethclient.RevertErrorData(err); ok {
		return true
	}
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == 3
}

func (i *invokerImpl) decodeContractError(err error) error {
	revertData, errorDecoded := ethclient.RevertErrorData(err)
	if !errorDecoded {
		return fmt.Errorf("error couldn't be decoded: %w", err)
	}

	if len(revertData) < 4 {
		return fmt.Errorf("not enough data to unparse error: %w", err)
	}
	var selector [4]byte
	copy(selector[:], revertData[:4])

	errorMethod, err := i.abi.ErrorByID(selector)
	if err != nil {
		return err
	}

	args := make(map[string]any)
	err = errorMethod.Inputs.UnpackIntoMap(args, revertData[4:])
	if err != nil {
		return fmt.Errorf("args upack error: %w", err)
	}

	return errorByName(contractError{errorMethod.Name, args})
}

type transferLog struct {
	From  ethcommon.Address
	To    ethcommon.Address
	Value *big.Int
}

type approvalLog struct {
	Owner   ethcommon.Address
	Spender ethcommon.Address
	Value   *big.Int
}

func (i *invokerImpl) unpackTransfer(log ethtypes.Log) (*TransferEvent, error) {
	var unpacked transferLog
	if err := i.contract.UnpackLog(&unpacked, eventTransfer, log); err != nil {
		return nil, fmt.Errorf("unpacking %s log: %w", eventTransfer, err)
	}
	return &TransferEvent{
		From:        unpacked.From,
		To:          unpacked.To,
		Value:       unpacked.Value,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
		LogIndex:    log.Index,
	}, nil
}

func (i *invokerImpl) collectEvents(logs []*ethtypes.Log, result *CallResult) error {
	transferID := i.abi.Events[eventTransfer].ID
	approvalID := i.abi.Events[eventApproval].ID

	for _, log := range logs {
		if log.Address != i.contractAddress || len(log.Topics) == 0 {
			continue
		}
		switch log.Topics[0] {
		case transferID:
			event, err := i.unpackTransfer(*log)
			if err != nil {
				return err
			}
			result.Transfers = append(result.Transfers, *event)
		case approvalID:
			var unpacked approvalLog
			if err := i.contract.UnpackLog(&unpacked, eventApproval, *log); err != nil {
				return fmt.Errorf("unpacking %s log: %w", eventApproval, err)
			}
			result.Approvals = append(result.Approvals, ApprovalEvent{
				Owner:       unpacked.Owner,
				Spender:     unpacked.Spender,
				Value:       unpacked.Value,
				BlockNumber: log.BlockNumber,
				TxHash:      log.TxHash,
				LogIndex:    log.Index,
			})
		}
	}
	return nil
}
