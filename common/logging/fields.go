package logging

const (
	FieldComponent = "component"
	FieldChainId   = "chainId"

	FieldDuration = "duration"
	FieldUrl      = "url"
	FieldReqId    = "reqId"

	FieldOperation     = "operation"
	FieldSigner        = "signer"
	FieldSignerAddress = "signerAddress"

	FieldTxHash   = "txHash"
	FieldGasLimit = "gasLimit"
	FieldGasUsed  = "gasUsed"

	FieldContract = "contract"
	FieldFrom     = "from"
	FieldTo       = "to"
	FieldSpender  = "spender"
	FieldAmount   = "amount"

	FieldBlockHash   = "blockHash"
	FieldBlockNumber = "blockNumber"
)
