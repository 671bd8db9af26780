// Package parameters guards the protocol-parameter namespace. Parameters
// change only through an accepted governance proposal; a transaction
// touching them must carry the id of a proposal whose execution the
// governance subsystem has recorded.
package parameters

import (
	"github.com/rs/zerolog"

	"github.com/khoangkhac118/namada/ledger/vp"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/codec"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/tx"
)

// VP is the protocol-parameter validity predicate.
type VP struct {
	log zerolog.Logger
}

// New builds the predicate.
func New(log zerolog.Logger) *VP {
	return &VP{log: log.With().Str("vp", "parameters").Logger()}
}

var _ vp.VP = (*VP)(nil)

// ValidateTx implements vp.VP.
func (v *VP) ValidateTx(ctx *vp.Ctx, transaction *tx.Tx, keysChanged storage.KeySet, verifiers address.Set) (bool, error) {
	touched := false
	for _, key := range keysChanged.Sorted() {
		if owner, ok := key.Owner(); ok && owner == Address {
			touched = true
			break
		}
	}
	if !touched {
		return true, nil
	}

	data, ok := transaction.Data()
	if !ok {
		v.log.Debug().Msg("parameter change without proposal data")
		return false, nil
	}
	var proposalID uint64
	if err := codec.UnmarshalBorsh(data, &proposalID); err != nil {
		v.log.Debug().Err(err).Msg("parameter change with undecodable proposal id")
		return false, nil
	}
	accepted, err := ctx.HasKeyPre(ProposalExecutionKey(proposalID))
	if err != nil {
		return false, err
	}
	if !accepted {
		v.log.Debug().Uint64("proposal", proposalID).Msg("parameter change without accepted proposal")
	}
	return accepted, nil
}
