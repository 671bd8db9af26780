// Package state holds a transaction's uncommitted effects. The WriteLog
// layers tx-scoped changes over a precommit buffer over block-scoped
// changes; the Store underneath serves committed pre-state. Validity
// predicates read both sides but never write.
package state

import (
	"fmt"

	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/hash"
	"github.com/khoangkhac118/namada/model/storage"
)

// ModificationKind discriminates write-log entries.
type ModificationKind uint8

const (
	// ModWrite sets a value.
	ModWrite ModificationKind = iota
	// ModDelete removes a value.
	ModDelete
	// ModInitAccount creates an established account with the given
	// validity-predicate code hash.
	ModInitAccount
)

// Modification is one pending change to a storage key.
type Modification struct {
	Kind   ModificationKind
	Value  []byte
	VpHash hash.Hash
}

// IbcEventAttribute is one key-value pair of an emitted IBC event.
// Attributes are kept as an ordered slice so event encoding stays
// deterministic.
type IbcEventAttribute struct {
	Key   string
	Value string
}

// IbcEvent is an event emitted by transaction code for IBC relayers.
type IbcEvent struct {
	Type       string
	Attributes []IbcEventAttribute
}

// WriteLog accumulates a transaction's changes in three layers: the block
// layer (committed by previous transactions in this block), the precommit
// buffer (changes pinned before a risky nested execution), and the open
// tx layer.
type WriteLog struct {
	block     map[string]Modification
	precommit map[string]Modification
	txLog     map[string]Modification
	ibcEvents []IbcEvent
}

// NewWriteLog builds an empty write log.
func NewWriteLog() *WriteLog {
	return &WriteLog{
		block:     make(map[string]Modification),
		precommit: make(map[string]Modification),
		txLog:     make(map[string]Modification),
	}
}

// Write records a value write in the tx layer.
func (l *WriteLog) Write(key storage.Key, value []byte) {
	stored := make([]byte, len(value))
	copy(stored, value)
	l.txLog[key.String()] = Modification{Kind: ModWrite, Value: stored}
}

// Delete records a deletion in the tx layer.
func (l *WriteLog) Delete(key storage.Key) {
	l.txLog[key.String()] = Modification{Kind: ModDelete}
}

// InitAccount records the creation of an established account in the tx
// layer, storing its validity-predicate code hash.
func (l *WriteLog) InitAccount(vpKey storage.Key, vpHash hash.Hash) {
	l.txLog[vpKey.String()] = Modification{Kind: ModInitAccount, VpHash: vpHash}
}

// Read returns the modification visible at key, looking through the tx,
// precommit and block layers in that order.
func (l *WriteLog) Read(key storage.Key) (Modification, bool) {
	rendered := key.String()
	for _, layer := range []map[string]Modification{l.txLog, l.precommit, l.block} {
		if mod, ok := layer[rendered]; ok {
			return mod, true
		}
	}
	return Modification{}, false
}

// GetKeys returns the keys changed by the open tx layer.
func (l *WriteLog) GetKeys() storage.KeySet {
	return keysOf(l.txLog)
}

// GetKeysWithPrecommit returns the keys changed by the open tx layer and
// the precommit buffer together, the set a wrapper's fee step reports.
func (l *WriteLog) GetKeysWithPrecommit() storage.KeySet {
	set := keysOf(l.precommit)
	set.Union(keysOf(l.txLog))
	return set
}

func keysOf(layer map[string]Modification) storage.KeySet {
	set := make(storage.KeySet, len(layer))
	for rendered := range layer {
		set[rendered] = struct{}{}
	}
	return set
}

// GetInitializedAccounts returns the addresses of accounts created by the
// open tx layer.
func (l *WriteLog) GetInitializedAccounts() []address.Address {
	var out []address.Address
	for rendered, mod := range l.txLog {
		if mod.Kind != ModInitAccount {
			continue
		}
		key, err := storage.ParseKey(rendered)
		if err != nil {
			continue
		}
		if owner, ok := key.Owner(); ok {
			out = append(out, owner)
		}
	}
	address.Sort(out)
	return out
}

// EmitIbcEvent queues an event for relayers.
func (l *WriteLog) EmitIbcEvent(event IbcEvent) {
	l.ibcEvents = append(l.ibcEvents, event)
}

// TakeIbcEvents returns the queued events and clears the queue.
func (l *WriteLog) TakeIbcEvents() []IbcEvent {
	events := l.ibcEvents
	l.ibcEvents = nil
	return events
}

// VerifiersAndChangedKeys returns the full verifier set, the
// transaction-requested addresses plus the owner of every changed key,
// together with the changed-key set.
func (l *WriteLog) VerifiersAndChangedKeys(verifiersFromTx address.Set) (address.Set, storage.KeySet) {
	changed := l.GetKeys()
	verifiers := address.NewSet()
	verifiers.Union(verifiersFromTx)
	for _, key := range changed.Sorted() {
		if owner, ok := key.Owner(); ok {
			verifiers.Add(owner)
		}
	}
	return verifiers, changed
}

// PrecommitTx pins the open tx layer into the precommit buffer, leaving a
// clean tx layer for a nested execution.
func (l *WriteLog) PrecommitTx() {
	for key, mod := range l.txLog {
		l.precommit[key] = mod
	}
	l.txLog = make(map[string]Modification)
}

// DropTx discards the open tx layer and the precommit buffer.
func (l *WriteLog) DropTx() {
	l.txLog = make(map[string]Modification)
	l.precommit = make(map[string]Modification)
}

// DropTxKeepPrecommit discards the open tx layer only, restoring the state
// pinned by the last PrecommitTx.
func (l *WriteLog) DropTxKeepPrecommit() {
	l.txLog = make(map[string]Modification)
}

// CommitTx moves the precommit buffer and the open tx layer into the block
// layer as one unit.
func (l *WriteLog) CommitTx() {
	for key, mod := range l.precommit {
		l.block[key] = mod
	}
	for key, mod := range l.txLog {
		l.block[key] = mod
	}
	l.precommit = make(map[string]Modification)
	l.txLog = make(map[string]Modification)
}

// CommitBlock flushes the block layer into the committed store and resets
// the log.
func (l *WriteLog) CommitBlock(store *Store) error {
	if err := store.applyBlock(l.block); err != nil {
		return fmt.Errorf("commit block write log: %w", err)
	}
	l.block = make(map[string]Modification)
	return nil
}
