package tx

import (
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/hash"
	"github.com/khoangkhac118/namada/model/keys"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/token"
)

// GasLimit caps the gas a wrapper transaction may consume.
type GasLimit uint64

// Fee is the price per gas unit a wrapper transaction offers, in the given
// token.
type Fee struct {
	Amount token.Amount
	Token  address.Address
}

// WrapperTx is the header metadata of a fee-carrying outer transaction: the
// offered fee, the fee payer's key, the epoch the tx was constructed for,
// the gas limit, and optionally the hash of a MASP section unshielding
// funds to cover the fee.
type WrapperTx struct {
	Fee                 Fee
	Pk                  keys.PublicKey
	Epoch               storage.Epoch
	GasLimit            GasLimit
	UnshieldSectionHash *hash.Hash `bin:"optional"`
}

// NewWrapperTx builds wrapper metadata. unshield may be nil when the fee is
// paid from the transparent balance alone.
func NewWrapperTx(fee Fee, pk keys.PublicKey, epoch storage.Epoch, gasLimit GasLimit, unshield *hash.Hash) WrapperTx {
	return WrapperTx{
		Fee:                 fee,
		Pk:                  pk,
		Epoch:               epoch,
		GasLimit:            gasLimit,
		UnshieldSectionHash: unshield,
	}
}

// FeePayer derives the fee payer's implicit address from the embedded key.
func (w WrapperTx) FeePayer() address.Address {
	return w.Pk.Address()
}

// TxFee is the total fee owed: price per gas unit times the gas limit.
// Reports false on overflow, which fee charging treats like an insufficient
// balance.
func (w WrapperTx) TxFee() (token.Amount, bool) {
	return w.Fee.Amount.CheckedMul(token.Amount(w.GasLimit))
}
