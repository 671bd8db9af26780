// Package replay owns the replay-protection namespace. The protocol writes
// a marker under a transaction's header hash when it first lands; nothing
// else may ever touch the namespace, so the predicate rejects any change
// attributed to transaction code.
package replay

import (
	"github.com/khoangkhac118/namada/ledger/vp"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/hash"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/tx"
)

// Address owns the replay-protection namespace.
var Address = address.NewInternal(address.InternalReplayProtection)

// Prefix is the storage prefix of all replay markers.
func Prefix() storage.Key {
	return storage.AddressKey(Address)
}

// Key is the marker key of a transaction with the given header hash.
func Key(h hash.Hash) storage.Key {
	return Prefix().MustPush(h.String())
}

// VP rejects every transaction that reaches it: a replay key in the changed
// set can only mean transaction code wrote where only the protocol may.
type VP struct{}

// New builds the predicate.
func New() *VP {
	return &VP{}
}

var _ vp.VP = (*VP)(nil)

// ValidateTx implements vp.VP.
func (*VP) ValidateTx(ctx *vp.Ctx, transaction *tx.Tx, keysChanged storage.KeySet, verifiers address.Set) (bool, error) {
	for _, key := range keysChanged.Sorted() {
		if owner, ok := key.Owner(); ok && owner == Address {
			return false, nil
		}
	}
	return true, nil
}
