package parameters

import (
	"strconv"

	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/storage"
)

const (
	feeUnshieldingGasLimitSeg = "fee_unshielding_gas_limit"
	maxSignaturesSeg          = "max_signatures_per_transaction"
	nativeTokenSeg            = "native_token"
	transferCodeHashSeg       = "transfer_code_hash"
	proposalExecutionSeg      = "proposal_execution"
)

// Address owns the protocol-parameter namespace.
var Address = address.NewInternal(address.InternalParameters)

// GovernanceAddress owns the proposal-execution markers this predicate
// consults.
var GovernanceAddress = address.NewInternal(address.InternalGovernance)

// FeeUnshieldingGasLimitKey holds the gas budget granted to a wrapper's
// nested fee-unshielding transaction.
func FeeUnshieldingGasLimitKey() storage.Key {
	return storage.AddressKey(Address).MustPush(feeUnshieldingGasLimitSeg)
}

// MaxSignaturesPerTransactionKey holds the signature-count ceiling enforced
// during quorum verification.
func MaxSignaturesPerTransactionKey() storage.Key {
	return storage.AddressKey(Address).MustPush(maxSignaturesSeg)
}

// NativeTokenKey holds the address of the chain's staking and fee token.
func NativeTokenKey() storage.Key {
	return storage.AddressKey(Address).MustPush(nativeTokenSeg)
}

// TransferCodeHashKey holds the code hash of the transfer transaction used
// to run a wrapper's nested fee unshielding.
func TransferCodeHashKey() storage.Key {
	return storage.AddressKey(Address).MustPush(transferCodeHashSeg)
}

// ProposalExecutionKey marks that the governance proposal with the given id
// was accepted and is executing in the current block.
func ProposalExecutionKey(id uint64) storage.Key {
	return storage.AddressKey(GovernanceAddress).MustPush(proposalExecutionSeg).MustPush(strconv.FormatUint(id, 10))
}
