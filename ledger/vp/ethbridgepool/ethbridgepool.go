// Package ethbridgepool guards the bridge pool's storage namespace: a
// transaction may append exactly one pending transfer, with the relay fee
// escrowed to the pool and the transferred asset escrowed to its holding
// account.
package ethbridgepool

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/khoangkhac118/namada/ledger/vp"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/ethbridge"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/token"
	"github.com/khoangkhac118/namada/model/tx"
)

// VP is the bridge-pool escrow validity predicate.
type VP struct {
	log zerolog.Logger
}

// New builds the predicate.
func New(log zerolog.Logger) *VP {
	return &VP{log: log.With().Str("vp", "eth_bridge_pool").Logger()}
}

var _ vp.VP = (*VP)(nil)

// legKind distinguishes the two sides of an escrow movement.
type legKind uint8

const (
	legDebit legKind = iota
	legCredit
)

// escrowLeg is one expected balance change: account's balance of token
// moves by amount in the given direction.
type escrowLeg struct {
	kind    legKind
	token   address.Address
	account address.Address
	amount  token.Amount
}

// ValidateTx implements vp.VP.
func (v *VP) ValidateTx(ctx *vp.Ctx, transaction *tx.Tx, keysChanged storage.KeySet, verifiers address.Set) (bool, error) {
	data, ok := transaction.Data()
	if !ok {
		return false, fmt.Errorf("bridge pool: transaction has no data section")
	}
	transfer, err := ethbridge.DecodePendingTransfer(data)
	if err != nil {
		return false, fmt.Errorf("bridge pool: %w", err)
	}

	poolKey := ethbridge.PendingKey(transfer)
	if exists, err := ctx.HasKeyPre(poolKey); err != nil {
		return false, err
	} else if exists {
		v.log.Debug().Str("key", poolKey.String()).Msg("transfer already in pool")
		return false, nil
	}

	// The only pool-namespace key a user transaction may touch is the new
	// entry itself.
	for _, key := range keysChanged.Sorted() {
		if ethbridge.IsBridgePoolKey(key) && !key.Equal(poolKey) {
			v.log.Debug().Str("key", key.String()).Msg("unauthorized bridge pool write")
			return false, nil
		}
	}

	stored, found, err := ctx.ReadPost(poolKey)
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("bridge pool: no pool entry written at %s", poolKey)
	}
	written, err := ethbridge.DecodePendingTransfer(stored)
	if err != nil {
		return false, fmt.Errorf("bridge pool: stored entry: %w", err)
	}
	if written.Keccak() != transfer.Keccak() {
		v.log.Debug().Msg("pool entry does not match transfer data")
		return false, nil
	}

	legs, err := v.expectedLegs(ctx, transfer)
	if err != nil {
		return false, err
	}
	for _, leg := range legs {
		ok, err := v.checkLeg(ctx, leg)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// expectedLegs derives the balance movements the transfer must perform. The
// relay fee always escrows to the pool in the native token. The asset
// escrows to the pool's holding account, except the wrapped native token,
// which escrows to the bridge account backing the Ethereum-side mint. When
// the fee payer is also the sender of a native-token transfer, both debits
// land on one balance and only their sum is observable.
func (v *VP) expectedLegs(ctx *vp.Ctx, transfer ethbridge.PendingTransfer) ([]escrowLeg, error) {
	wnam, found, err := vp.ReadPreValue[ethbridge.EthAddress](ctx, ethbridge.NativeErc20Key())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("bridge pool: wrapped native token address not in storage")
	}

	gas := transfer.GasFee
	asset := transfer.Transfer
	isNative := asset.TransferKind() == ethbridge.KindErc20 && asset.Asset == wnam

	if isNative {
		legs := []escrowLeg{
			{legCredit, ctx.NativeToken, ethbridge.BridgePoolAddress, gas.Amount},
			{legCredit, ctx.NativeToken, ethbridge.BridgeAddress, asset.Amount},
		}
		if gas.Payer == asset.Sender {
			combined, ok := gas.Amount.CheckedAdd(asset.Amount)
			if !ok {
				return nil, fmt.Errorf("bridge pool: escrow amount overflow")
			}
			return append(legs, escrowLeg{legDebit, ctx.NativeToken, gas.Payer, combined}), nil
		}
		return append(legs,
			escrowLeg{legDebit, ctx.NativeToken, gas.Payer, gas.Amount},
			escrowLeg{legDebit, ctx.NativeToken, asset.Sender, asset.Amount},
		), nil
	}

	return []escrowLeg{
		{legDebit, ctx.NativeToken, gas.Payer, gas.Amount},
		{legCredit, ctx.NativeToken, ethbridge.BridgePoolAddress, gas.Amount},
		{legDebit, transfer.TokenAddress(), asset.Sender, asset.Amount},
		{legCredit, transfer.TokenAddress(), ethbridge.BridgePoolAddress, asset.Amount},
	}, nil
}

func (v *VP) checkLeg(ctx *vp.Ctx, leg escrowLeg) (bool, error) {
	delta, err := balanceDelta(ctx, leg.token, leg.account)
	if err != nil {
		return false, err
	}
	matched := false
	switch leg.kind {
	case legDebit:
		matched = delta.Debited(leg.amount)
	case legCredit:
		matched = delta.Credited(leg.amount)
	}
	if !matched {
		v.log.Debug().
			Str("account", leg.account.String()).
			Str("token", leg.token.String()).
			Str("delta", delta.String()).
			Str("expected", leg.amount.String()).
			Msg("escrow delta mismatch")
	}
	return matched, nil
}

// balanceDelta reads an account's pre and post balance of tok. A balance
// missing on both sides means the transaction references an account the
// state knows nothing about, a hard error rather than a rejection.
func balanceDelta(ctx *vp.Ctx, tok, owner address.Address) (token.Delta, error) {
	key := token.BalanceKey(tok, owner)
	preRaw, preFound, err := ctx.ReadPre(key)
	if err != nil {
		return token.Delta{}, err
	}
	postRaw, postFound, err := ctx.ReadPost(key)
	if err != nil {
		return token.Delta{}, err
	}
	if !preFound && !postFound {
		return token.Delta{}, fmt.Errorf("bridge pool: no balance of %s for %s", tok, owner)
	}
	var pre, post token.Amount
	if preFound {
		if pre, err = token.DecodeAmount(preRaw); err != nil {
			return token.Delta{}, err
		}
	}
	if postFound {
		if post, err = token.DecodeAmount(postRaw); err != nil {
			return token.Delta{}, err
		}
	}
	return token.DeltaOf(pre, post), nil
}
