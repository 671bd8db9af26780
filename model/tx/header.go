package tx

import (
	"time"

	"github.com/khoangkhac118/namada/model/codec"
	"github.com/khoangkhac118/namada/model/hash"
)

// Header indicates where a transaction's subcomponents can be found: the
// code and data hashes address exactly one Code and one Data section among
// the transaction's sections whenever the transaction executes.
type Header struct {
	ChainID    string
	Expiration *string `bin:"optional"`
	Timestamp  string
	CodeHash   hash.Hash
	DataHash   hash.Hash
	TxType     TxType
}

// NewHeader builds a header of the given type, timestamped now. The code
// and data hashes start out as the zero sentinel until sections are added.
func NewHeader(txType TxType) Header {
	return Header{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		TxType:    txType,
	}
}

// Hash folds the header's canonical encoding into the running hasher.
func (h Header) Hash(hasher hash.Hasher) hash.Hasher {
	_, _ = hasher.Write(codec.MustMarshalBorsh(h))
	return hasher
}

// GetHash finalizes the digest of the header wrapped as a Header-variant
// section, the hash that identifies the whole transaction.
func (h Header) GetHash() hash.Hash {
	sec := HeaderSection(h)
	return sec.GetHash()
}

// Wrapper returns the wrapper metadata if the header carries it.
func (h Header) Wrapper() (WrapperTx, bool) {
	if h.TxType.Kind() == TxKindWrapper {
		return h.TxType.Wrapper, true
	}
	return WrapperTx{}, false
}

// Protocol returns the protocol-tx metadata if the header carries it.
func (h Header) Protocol() (ProtocolTx, bool) {
	if h.TxType.Kind() == TxKindProtocol {
		return h.TxType.Protocol, true
	}
	return ProtocolTx{}, false
}
