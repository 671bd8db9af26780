package protocol

import (
	"github.com/hashicorp/go-multierror"

	"github.com/khoangkhac118/namada/ledger/gas"
	"github.com/khoangkhac118/namada/ledger/state"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/storage"
)

// VpsResult is the merged outcome of one validity-predicate fold.
type VpsResult struct {
	// AcceptedVps and RejectedVps partition the evaluated verifier set.
	AcceptedVps []address.Address
	RejectedVps []address.Address

	// Errors carries evaluation failures attached to a partial result
	// before the fold propagates them. A completed fold has none: a hard
	// predicate error aborts the transaction instead.
	Errors *multierror.Error

	// GasUsed is the summed consumption of all child meters.
	GasUsed uint64
}

// IsAccepted reports whether every evaluated predicate accepted.
func (r VpsResult) IsAccepted() bool {
	return len(r.RejectedVps) == 0
}

// MergeVpsResults combines two partial fold results. The operation is
// associative and commutative up to ordering, which the merge restores by
// sorting, so branches may complete in any order.
func MergeVpsResults(a, b VpsResult) (VpsResult, error) {
	gasUsed, err := gas.Sum(a.GasUsed, b.GasUsed)
	if err != nil {
		return VpsResult{}, err
	}
	merged := VpsResult{
		AcceptedVps: mergeAddrs(a.AcceptedVps, b.AcceptedVps),
		RejectedVps: mergeAddrs(a.RejectedVps, b.RejectedVps),
		Errors:      multierror.Append(a.Errors, b.Errors.WrappedErrors()...),
		GasUsed:     gasUsed,
	}
	if merged.Errors != nil && len(merged.Errors.Errors) == 0 {
		merged.Errors = nil
	}
	return merged, nil
}

func mergeAddrs(a, b []address.Address) []address.Address {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]address.Address, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	address.Sort(out)
	return out
}

// TxResult describes one applied transaction.
type TxResult struct {
	// GasUsed is the transaction meter's final consumption.
	GasUsed uint64

	// ChangedKeys are the storage keys the transaction modified.
	ChangedKeys storage.KeySet

	// VpsResult is the validity-predicate verdict. Zero for wrapper and
	// protocol transactions, which run no predicates.
	VpsResult VpsResult

	// InitializedAccounts are the accounts the transaction created.
	InitializedAccounts []address.Address

	// IbcEvents are the events the transaction emitted for relayers.
	IbcEvents []state.IbcEvent
}

// IsAccepted reports whether the transaction's effects should be committed.
func (r *TxResult) IsAccepted() bool {
	return r.VpsResult.IsAccepted()
}
