// Package vp defines the contract a native validity predicate implements
// and the gas-metered pre/post read context every evaluation runs with.
// Native predicates only read; the write log is already sealed when they
// run.
package vp

import (
	"github.com/khoangkhac118/namada/ledger/gas"
	"github.com/khoangkhac118/namada/ledger/state"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/codec"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/tx"
)

// VP judges one transaction's effect on the state an address guards.
// The boolean is the verdict; a non-nil error aborts the whole fold.
type VP interface {
	ValidateTx(ctx *Ctx, transaction *tx.Tx, keysChanged storage.KeySet, verifiers address.Set) (bool, error)
}

// Func adapts a function to the VP interface.
type Func func(ctx *Ctx, transaction *tx.Tx, keysChanged storage.KeySet, verifiers address.Set) (bool, error)

// ValidateTx implements VP.
func (f Func) ValidateTx(ctx *Ctx, transaction *tx.Tx, keysChanged storage.KeySet, verifiers address.Set) (bool, error) {
	return f(ctx, transaction, keysChanged, verifiers)
}

// Ctx is the read context of one validity-predicate evaluation. Pre reads
// see only committed state; post reads see the transaction's write log over
// it. Every read charges the evaluation's gas meter.
type Ctx struct {
	store *state.Store
	log   *state.WriteLog

	// Gas is the evaluation's child meter.
	Gas *gas.VpGasMeter

	// NativeToken is the chain's staking and fee token.
	NativeToken address.Address
}

// NewCtx builds a read context over the given state.
func NewCtx(store *state.Store, log *state.WriteLog, meter *gas.VpGasMeter, nativeToken address.Address) *Ctx {
	return &Ctx{store: store, log: log, Gas: meter, NativeToken: nativeToken}
}

// ReadPre returns the committed value at key, before this transaction.
func (c *Ctx) ReadPre(key storage.Key) ([]byte, bool, error) {
	value, found, err := c.store.Read(key)
	if err != nil {
		return nil, false, err
	}
	if err := c.chargeRead(value); err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// ReadPost returns the value at key as this transaction left it.
func (c *Ctx) ReadPost(key storage.Key) ([]byte, bool, error) {
	if mod, ok := c.log.Read(key); ok {
		switch mod.Kind {
		case state.ModDelete:
			if err := c.chargeRead(nil); err != nil {
				return nil, false, err
			}
			return nil, false, nil
		case state.ModInitAccount:
			value := mod.VpHash[:]
			if err := c.chargeRead(value); err != nil {
				return nil, false, err
			}
			return value, true, nil
		default:
			if err := c.chargeRead(mod.Value); err != nil {
				return nil, false, err
			}
			return mod.Value, true, nil
		}
	}
	return c.ReadPre(key)
}

// HasKeyPre reports whether key existed before this transaction.
func (c *Ctx) HasKeyPre(key storage.Key) (bool, error) {
	_, found, err := c.ReadPre(key)
	return found, err
}

// HasKeyPost reports whether key exists as this transaction left it.
func (c *Ctx) HasKeyPost(key storage.Key) (bool, error) {
	_, found, err := c.ReadPost(key)
	return found, err
}

func (c *Ctx) chargeRead(value []byte) error {
	charge, err := gas.Sum(gas.StorageAccessGas, uint64(len(value))*gas.StorageReadGasPerByte)
	if err != nil {
		return err
	}
	return c.Gas.Consume(charge)
}

// ReadPreValue decodes the committed value at key into T. Absence is
// reported, not an error.
func ReadPreValue[T any](c *Ctx, key storage.Key) (T, bool, error) {
	var out T
	raw, found, err := c.ReadPre(key)
	if err != nil || !found {
		return out, false, err
	}
	if err := codec.UnmarshalBorsh(raw, &out); err != nil {
		return out, false, err
	}
	return out, true, nil
}

// ReadPostValue decodes the post-transaction value at key into T.
func ReadPostValue[T any](c *Ctx, key storage.Key) (T, bool, error) {
	var out T
	raw, found, err := c.ReadPost(key)
	if err != nil || !found {
		return out, false, err
	}
	if err := codec.UnmarshalBorsh(raw, &out); err != nil {
		return out, false, err
	}
	return out, true, nil
}
