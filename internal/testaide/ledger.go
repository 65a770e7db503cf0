package testaide

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/NilFoundation/tokenctl/common/check"
	"github.com/NilFoundation/tokenctl/contracts"
	"github.com/NilFoundation/tokenctl/internal/l1client"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	LedgerChainID       = 1337
	DefaultIntrinsicGas = 30_000

	gasUsedPerCall = 50_000
	gasPriceWei    = 1_000_000_000
)

var ErrSubscriptionsNotSupported = errors.New("subscriptions are not supported by the test ledger")

// RecordedCall is a token transaction accepted by the ledger, successful or not.
type RecordedCall struct {
	From     common.Address
	Method   string
	Args     []any
	GasLimit uint64
	TxHash   common.Hash
	Status   uint64
}

// revertError mimics the JSON-RPC error a node returns for a reverted eth_call.
type revertError struct {
	data []byte
}

func (e *revertError) Error() string  { return "execution reverted" }
func (e *revertError) ErrorCode() int { return 3 }
func (e *revertError) ErrorData() any { return hexutil.Encode(e.data) }

// Ledger is an in-memory ERC-20 node: it verifies transaction signatures, applies
// mint/approve/transfer/transferFrom with OpenZeppelin semantics and serves receipts and logs.
type Ledger struct {
	mutex sync.Mutex

	chainID *big.Int
	signer  ethtypes.Signer
	abi     *abi.ABI
	token   common.Address
	owner   common.Address

	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
	nonces      map[common.Address]uint64

	blockNumber  uint64
	logIndex     uint
	receipts     map[common.Hash]*ethtypes.Receipt
	receiptPolls map[common.Hash]int
	logs         []ethtypes.Log
	calls        []RecordedCall

	sendErr      error
	miningDelay  int
	intrinsicGas uint64
}

var _ l1client.EthClient = (*Ledger)(nil)

func NewLedger(token common.Address, owner common.Address) *Ledger {
	tokenAbi, err := contracts.GetAbi(contracts.NameToken)
	check.PanicIfErr(err)

	chainID := big.NewInt(LedgerChainID)
	return &Ledger{
		chainID:      chainID,
		signer:       ethtypes.LatestSignerForChainID(chainID),
		abi:          tokenAbi,
		token:        token,
		owner:        owner,
		totalSupply:  new(big.Int),
		balances:     make(map[common.Address]*big.Int),
		allowances:   make(map[common.Address]map[common.Address]*big.Int),
		nonces:       make(map[common.Address]uint64),
		receipts:     make(map[common.Hash]*ethtypes.Receipt),
		receiptPolls: make(map[common.Hash]int),
		intrinsicGas: DefaultIntrinsicGas,
	}
}

// NewDefaultLedger deploys the token at TokenAddress owned by the minter fixture.
func NewDefaultLedger() *Ledger {
	return NewLedger(TokenAddress, MinterAddress)
}

// SetSendError makes every following SendTransaction fail with err (nil restores sending).
func (l *Ledger) SetSendError(err error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.sendErr = err
}

// SetMiningDelay makes TransactionReceipt report NotFound for the first n polls of every transaction.
func (l *Ledger) SetMiningDelay(n int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.miningDelay = n
}

// SetIntrinsicGas sets the gas below which a transaction runs out of gas.
func (l *Ledger) SetIntrinsicGas(gas uint64) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.intrinsicGas = gas
}

func (l *Ledger) Balance(account common.Address) *big.Int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return new(big.Int).Set(l.balanceOf(account))
}

func (l *Ledger) AllowanceOf(owner, spender common.Address) *big.Int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return new(big.Int).Set(l.allowance(owner, spender))
}

func (l *Ledger) Calls() []RecordedCall {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return slices.Clone(l.calls)
}

func (l *Ledger) balanceOf(account common.Address) *big.Int {
	if balance, ok := l.balances[account]; ok {
		return balance
	}
	return new(big.Int)
}

func (l *Ledger) allowance(owner, spender common.Address) *big.Int {
	if allowance, ok := l.allowances[owner][spender]; ok {
		return allowance
	}
	return new(big.Int)
}

func (l *Ledger) setAllowance(owner, spender common.Address, value *big.Int) {
	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[common.Address]*big.Int)
	}
	l.allowances[owner][spender] = new(big.Int).Set(value)
}

func (l *Ledger) revert(name string, args ...any) *revertError {
	abiErr, ok := l.abi.Errors[name]
	check.PanicIfNotf(ok, "unknown contract error %s", name)

	packed, err := abiErr.Inputs.Pack(args...)
	check.PanicIfErr(err)

	data := make([]byte, 0, 4+len(packed))
	data = append(data, abiErr.ID.Bytes()[:4]...)
	return &revertError{data: append(data, packed...)}
}

func (l *Ledger) newLog(eventName string, topics []common.Address, value *big.Int) *ethtypes.Log {
	event, ok := l.abi.Events[eventName]
	check.PanicIfNotf(ok, "unknown event %s", eventName)

	data, err := event.Inputs.NonIndexed().Pack(value)
	check.PanicIfErr(err)

	log := &ethtypes.Log{
		Address: l.token,
		Topics:  []common.Hash{event.ID},
		Data:    data,
	}
	for _, topic := range topics {
		log.Topics = append(log.Topics, common.BytesToHash(topic.Bytes()))
	}
	return log
}

// execute runs a token method on behalf of sender. State changes only when commit is set.
func (l *Ledger) execute(
	sender common.Address, data []byte, commit bool,
) (*abi.Method, []any, []byte, []*ethtypes.Log, *revertError) {
	if len(data) < 4 {
		return nil, nil, nil, nil, &revertError{}
	}
	method, err := l.abi.MethodById(data[:4])
	if err != nil {
		return nil, nil, nil, nil, &revertError{}
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return method, nil, nil, nil, &revertError{}
	}

	output := func(values ...any) []byte {
		packed, err := method.Outputs.Pack(values...)
		check.PanicIfErr(err)
		return packed
	}

	switch method.Name {
	case "balanceOf":
		return method, args, output(new(big.Int).Set(l.balanceOf(args[0].(common.Address)))), nil, nil
	case "allowance":
		owner, spender := args[0].(common.Address), args[1].(common.Address)
		return method, args, output(new(big.Int).Set(l.allowance(owner, spender))), nil, nil
	case "totalSupply":
		return method, args, output(new(big.Int).Set(l.totalSupply)), nil, nil
	case "decimals":
		return method, args, output(uint8(9)), nil, nil
	case "owner":
		return method, args, output(l.owner), nil, nil
	case "name":
		return method, args, output("Test Token"), nil, nil
	case "symbol":
		return method, args, output("TT"), nil, nil

	case "mint":
		to, value := args[0].(common.Address), args[1].(*big.Int)
		if sender != l.owner {
			return method, args, nil, nil, l.revert("OwnableUnauthorizedAccount", sender)
		}
		if to == (common.Address{}) {
			return method, args, nil, nil, l.revert("ERC20InvalidReceiver", to)
		}
		if commit {
			l.balances[to] = new(big.Int).Add(l.balanceOf(to), value)
			l.totalSupply = new(big.Int).Add(l.totalSupply, value)
		}
		return method, args, nil, []*ethtypes.Log{l.newLog("Transfer", []common.Address{{}, to}, value)}, nil

	case "approve":
		spender, value := args[0].(common.Address), args[1].(*big.Int)
		if spender == (common.Address{}) {
			return method, args, nil, nil, l.revert("ERC20InvalidSpender", spender)
		}
		if commit {
			l.setAllowance(sender, spender, value)
		}
		return method, args, output(true), []*ethtypes.Log{l.newLog("Approval", []common.Address{sender, spender}, value)}, nil

	case "transfer":
		to, value := args[0].(common.Address), args[1].(*big.Int)
		if revert := l.move(sender, to, value, commit); revert != nil {
			return method, args, nil, nil, revert
		}
		return method, args, output(true), []*ethtypes.Log{l.newLog("Transfer", []common.Address{sender, to}, value)}, nil

	case "transferFrom":
		from, to, value := args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)
		return l.transferFrom(method, args, sender, from, to, value, commit)
	}

	return method, args, nil, nil, &revertError{}
}

func (l *Ledger) transferFrom(
	method *abi.Method, args []any, spender, from, to common.Address, value *big.Int, commit bool,
) (*abi.Method, []any, []byte, []*ethtypes.Log, *revertError) {
	allowance := l.allowance(from, spender)
	if allowance.Cmp(value) < 0 {
		return method, args, nil, nil, l.revert("ERC20InsufficientAllowance", spender, new(big.Int).Set(allowance), value)
	}
	if revert := l.move(from, to, value, false); revert != nil {
		return method, args, nil, nil, revert
	}
	if commit {
		l.setAllowance(from, spender, new(big.Int).Sub(allowance, value))
		l.move(from, to, value, true)
	}

	packed, err := method.Outputs.Pack(true)
	check.PanicIfErr(err)
	return method, args, packed, []*ethtypes.Log{l.newLog("Transfer", []common.Address{from, to}, value)}, nil
}

func (l *Ledger) move(from, to common.Address, value *big.Int, commit bool) *revertError {
	balance := l.balanceOf(from)
	if to == (common.Address{}) {
		return l.revert("ERC20InvalidReceiver", to)
	}
	if balance.Cmp(value) < 0 {
		return l.revert("ERC20InsufficientBalance", from, new(big.Int).Set(balance), value)
	}
	if commit {
		l.balances[from] = new(big.Int).Sub(balance, value)
		l.balances[to] = new(big.Int).Add(l.balanceOf(to), value)
	}
	return nil
}

func (l *Ledger) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(l.chainID), nil
}

func (l *Ledger) BlockNumber(context.Context) (uint64, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.blockNumber, nil
}

func (l *Ledger) HeaderByNumber(_ context.Context, _ *big.Int) (*ethtypes.Header, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return &ethtypes.Header{
		Number:  new(big.Int).SetUint64(l.blockNumber),
		BaseFee: big.NewInt(gasPriceWei),
	}, nil
}

func (l *Ledger) CodeAt(_ context.Context, contract common.Address, _ *big.Int) ([]byte, error) {
	if contract == l.token {
		return []byte{0x60, 0x80}, nil
	}
	return nil, nil
}

func (l *Ledger) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return l.CodeAt(ctx, account, nil)
}

func (l *Ledger) PendingNonceAt(_ context.Context, account common.Address) (uint64, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.nonces[account], nil
}

func (l *Ledger) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(gasPriceWei), nil
}

func (l *Ledger) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(gasPriceWei), nil
}

func (l *Ledger) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	if _, err := l.CallContract(ctx, call, nil); err != nil {
		return 0, err
	}
	return gasUsedPerCall, nil
}

func (l *Ledger) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if call.To == nil || *call.To != l.token {
		return nil, nil
	}
	_, _, output, _, revert := l.execute(call.From, call.Data, false)
	if revert != nil {
		return nil, revert
	}
	return output, nil
}

func (l *Ledger) SendTransaction(_ context.Context, tx *ethtypes.Transaction) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.sendErr != nil {
		return l.sendErr
	}

	from, err := ethtypes.Sender(l.signer, tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if tx.Nonce() != l.nonces[from] {
		return fmt.Errorf("invalid nonce for %s: expected %d, got %d", from.Hex(), l.nonces[from], tx.Nonce())
	}
	l.nonces[from]++
	l.blockNumber++

	receipt := &ethtypes.Receipt{
		Type:              tx.Type(),
		Status:            ethtypes.ReceiptStatusSuccessful,
		CumulativeGasUsed: gasUsedPerCall,
		GasUsed:           gasUsedPerCall,
		TxHash:            tx.Hash(),
		EffectiveGasPrice: big.NewInt(gasPriceWei),
		BlockHash:         crypto.Keccak256Hash(new(big.Int).SetUint64(l.blockNumber).Bytes()),
		BlockNumber:       new(big.Int).SetUint64(l.blockNumber),
	}
	call := RecordedCall{From: from, GasLimit: tx.Gas(), TxHash: tx.Hash()}

	switch {
	case tx.Gas() < l.intrinsicGas:
		receipt.Status = ethtypes.ReceiptStatusFailed
		receipt.GasUsed = tx.Gas()
	case tx.To() == nil || *tx.To() != l.token:
		receipt.GasUsed = 21_000
	default:
		method, args, _, logs, revert := l.execute(from, tx.Data(), true)
		if method != nil {
			call.Method = method.Name
			call.Args = args
		}
		if revert != nil {
			receipt.Status = ethtypes.ReceiptStatusFailed
			break
		}
		for _, log := range logs {
			log.TxHash = receipt.TxHash
			log.BlockHash = receipt.BlockHash
			log.BlockNumber = l.blockNumber
			log.Index = l.logIndex
			l.logIndex++
			receipt.Logs = append(receipt.Logs, log)
			l.logs = append(l.logs, *log)
		}
	}

	call.Status = receipt.Status
	l.calls = append(l.calls, call)
	l.receipts[receipt.TxHash] = receipt
	return nil
}

func (l *Ledger) TransactionReceipt(_ context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	receipt, ok := l.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	if l.receiptPolls[txHash] < l.miningDelay {
		l.receiptPolls[txHash]++
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (l *Ledger) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var result []ethtypes.Log
	for _, log := range l.logs {
		if matchLog(&log, &q) {
			result = append(result, log)
		}
	}
	return result, nil
}

func matchLog(log *ethtypes.Log, q *ethereum.FilterQuery) bool {
	if len(q.Addresses) > 0 && !slices.Contains(q.Addresses, log.Address) {
		return false
	}
	if q.FromBlock != nil && log.BlockNumber < q.FromBlock.Uint64() {
		return false
	}
	if q.ToBlock != nil && log.BlockNumber > q.ToBlock.Uint64() {
		return false
	}
	for i, alternatives := range q.Topics {
		if len(alternatives) == 0 {
			continue
		}
		if i >= len(log.Topics) || !slices.Contains(alternatives, log.Topics[i]) {
			return false
		}
	}
	return true
}

func (l *Ledger) SubscribeFilterLogs(
	context.Context, ethereum.FilterQuery, chan<- ethtypes.Log,
) (ethereum.Subscription, error) {
	return nil, ErrSubscriptionsNotSupported
}

func (l *Ledger) Close() {}
