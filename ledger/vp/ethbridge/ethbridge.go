// Package ethbridge guards the bridge's own escrow account. The account
// backs wrapped-native-token mints on Ethereum; user transactions may only
// top it up through the bridge pool, never write its namespace or drain its
// balance.
package ethbridge

import (
	"github.com/rs/zerolog"

	"github.com/khoangkhac118/namada/ledger/vp"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/ethbridge"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/token"
	"github.com/khoangkhac118/namada/model/tx"
)

// VP is the bridge escrow-account validity predicate.
type VP struct {
	log zerolog.Logger
}

// New builds the predicate.
func New(log zerolog.Logger) *VP {
	return &VP{log: log.With().Str("vp", "eth_bridge").Logger()}
}

var _ vp.VP = (*VP)(nil)

// ValidateTx implements vp.VP.
func (v *VP) ValidateTx(ctx *vp.Ctx, transaction *tx.Tx, keysChanged storage.KeySet, verifiers address.Set) (bool, error) {
	for _, key := range keysChanged.Sorted() {
		if owner, ok := key.Owner(); ok && owner == ethbridge.BridgeAddress {
			v.log.Debug().Str("key", key.String()).Msg("direct write to bridge namespace")
			return false, nil
		}
		tok, owner, ok := token.IsBalanceKey(key)
		if !ok || owner != ethbridge.BridgeAddress {
			continue
		}
		if tok != ctx.NativeToken {
			v.log.Debug().Str("token", tok.String()).Msg("non-native balance change at bridge escrow")
			return false, nil
		}
		delta, err := v.escrowDelta(ctx, key)
		if err != nil {
			return false, err
		}
		if delta.Sign == token.Negative {
			v.log.Debug().Str("delta", delta.String()).Msg("bridge escrow drained")
			return false, nil
		}
		// A top-up is only legitimate as the asset leg of a pool entry.
		if !verifiers.Contains(ethbridge.BridgePoolAddress) {
			v.log.Debug().Msg("bridge escrow credited outside the bridge pool")
			return false, nil
		}
	}
	return true, nil
}

func (v *VP) escrowDelta(ctx *vp.Ctx, key storage.Key) (token.Delta, error) {
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
