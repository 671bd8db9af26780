// Package nut guards non-usable tokens: assets recovered from a compromised
// bridge contract. A NUT balance may only move toward the bridge pool for
// repatriation to Ethereum, never circulate between accounts.
package nut

import (
	"github.com/rs/zerolog"

	"github.com/khoangkhac118/namada/ledger/vp"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/ethbridge"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/token"
	"github.com/khoangkhac118/namada/model/tx"
)

// VP is the non-usable-token validity predicate.
type VP struct {
	log zerolog.Logger
}

// New builds the predicate.
func New(log zerolog.Logger) *VP {
	return &VP{log: log.With().Str("vp", "nut").Logger()}
}

var _ vp.VP = (*VP)(nil)

// ValidateTx implements vp.VP.
func (v *VP) ValidateTx(ctx *vp.Ctx, transaction *tx.Tx, keysChanged storage.KeySet, verifiers address.Set) (bool, error) {
	for _, key := range keysChanged.Sorted() {
		tok, owner, ok := token.IsBalanceKey(key)
		if !ok {
			continue
		}
		if kind, internal := tok.IsInternal(); !internal || kind != address.InternalNut {
			continue
		}
		delta, err := v.balanceDelta(ctx, key)
		if err != nil {
			return false, err
		}
		if owner == ethbridge.BridgePoolAddress {
			if delta.Sign == token.Negative {
				v.log.Debug().Str("key", key.String()).Msg("nut drained from bridge pool")
				return false, nil
			}
			continue
		}
		if delta.Sign == token.Positive {
			v.log.Debug().Str("key", key.String()).Str("owner", owner.String()).Msg("nut credited outside bridge pool")
			return false, nil
		}
	}
	return true, nil
}

func (v *VP) balanceDelta(ctx *vp.Ctx, key storage.Key) (token.Delta, error) {
	var pre, post token.Amount
	if raw, found, err := ctx.ReadPre(key); err != nil {
		return token.Delta{}, err
	} else if found {
		if pre, err = token.DecodeAmount(raw); err != nil {
			return token.Delta{}, err
		}
	}
	if raw, found, err := ctx.ReadPost(key); err != nil {
		return token.Delta{}, err
	} else if found {
		if post, err = token.DecodeAmount(raw); err != nil {
			return token.Delta{}, err
		}
	}
	return token.DeltaOf(pre, post), nil
}
