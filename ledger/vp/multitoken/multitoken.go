// Package multitoken enforces balance conservation: for every token a
// transaction touches, value only moves between accounts, and the total
// supply changes only through a mint authorized by the token's minter.
package multitoken

import (
	"github.com/rs/zerolog"

	"github.com/khoangkhac118/namada/ledger/vp"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/token"
	"github.com/khoangkhac118/namada/model/tx"
)

// VP is the balance-conservation validity predicate.
type VP struct {
	log zerolog.Logger
}

// New builds the predicate.
func New(log zerolog.Logger) *VP {
	return &VP{log: log.With().Str("vp", "multitoken").Logger()}
}

var _ vp.VP = (*VP)(nil)

// tally accumulates one token's net movement across the changed keys.
// Credits and debits are kept separately so the unsigned arithmetic stays
// checked.
type tally struct {
	credited token.Amount
	debited  token.Amount
	minted   token.Delta
	hasMint  bool
}

// ValidateTx implements vp.VP.
func (v *VP) ValidateTx(ctx *vp.Ctx, transaction *tx.Tx, keysChanged storage.KeySet, verifiers address.Set) (bool, error) {
	tallies := make(map[address.Address]*tally)
	get := func(tok address.Address) *tally {
		t, ok := tallies[tok]
		if !ok {
			t = &tally{}
			tallies[tok] = t
		}
		return t
	}

	for _, key := range keysChanged.Sorted() {
		if tok, owner, ok := token.IsBalanceKey(key); ok {
			delta, err := v.keyDelta(ctx, key)
			if err != nil {
				return false, err
			}
			t := get(tok)
			var addOk bool
			switch delta.Sign {
			case token.Positive:
				t.credited, addOk = t.credited.CheckedAdd(delta.Magnitude)
			case token.Negative:
				t.debited, addOk = t.debited.CheckedAdd(delta.Magnitude)
			default:
				addOk = true
			}
			if !addOk {
				v.log.Debug().Str("token", tok.String()).Str("owner", owner.String()).Msg("balance delta overflow")
				return false, nil
			}
			continue
		}
		if tok, ok := token.IsMintedBalanceKey(key); ok {
			delta, err := v.keyDelta(ctx, key)
			if err != nil {
				return false, err
			}
			t := get(tok)
			t.minted = delta
			t.hasMint = true
		}
	}

	for tok, t := range tallies {
		ok, err := v.checkToken(ctx, tok, t, verifiers)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// checkToken accepts iff the token's net balance movement equals its
// minted-supply change, and any supply change was triggered by the token's
// registered minter.
func (v *VP) checkToken(ctx *vp.Ctx, tok address.Address, t *tally, verifiers address.Set) (bool, error) {
	net := token.DeltaOf(t.debited, t.credited)
	if !t.hasMint {
		if net.Sign != token.Zero {
			v.log.Debug().Str("token", tok.String()).Str("net", net.String()).Msg("unbalanced transfer")
			return false, nil
		}
		return true, nil
	}
	if net != t.minted {
		v.log.Debug().
			Str("token", tok.String()).
			Str("net", net.String()).
			Str("minted", t.minted.String()).
			Msg("supply change does not cover net movement")
		return false, nil
	}
	minter, found, err := vp.ReadPostValue[address.Address](ctx, token.MinterKey(tok))
	if err != nil {
		return false, err
	}
	if !found {
		v.log.Debug().Str("token", tok.String()).Msg("supply changed without a registered minter")
		return false, nil
	}
	if !verifiers.Contains(minter) {
		v.log.Debug().Str("token", tok.String()).Str("minter", minter.String()).Msg("minter did not authorize supply change")
		return false, nil
	}
	return true, nil
}

func (v *VP) keyDelta(ctx *vp.Ctx, key storage.Key) (token.Delta, error) {
	pre, err := v.readAmount(ctx.ReadPre, key)
	if err != nil {
		return token.Delta{}, err
	}
	post, err := v.readAmount(ctx.ReadPost, key)
	if err != nil {
		return token.Delta{}, err
	}
	return token.DeltaOf(pre, post), nil
}

func (v *VP) readAmount(read func(storage.Key) ([]byte, bool, error), key storage.Key) (token.Amount, error) {
	raw, found, err := read(key)
	if err != nil || !found {
		return 0, err
	}
	return token.DecodeAmount(raw)
}
