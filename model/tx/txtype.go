package tx

import (
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/khoangkhac118/namada/model/keys"
)

// TxKind discriminates the transaction type variants.
type TxKind uint8

const (
	TxKindRaw TxKind = iota
	TxKindWrapper
	TxKindDecrypted
	TxKindProtocol
)

func (k TxKind) String() string {
	switch k {
	case TxKindRaw:
		return "raw"
	case TxKindWrapper:
		return "wrapper"
	case TxKindDecrypted:
		return "decrypted"
	case TxKindProtocol:
		return "protocol"
	}
	return fmt.Sprintf("tx_type(%d)", uint8(k))
}

// TxType tags a transaction with how it is to be processed. Variant order
// is wire format; do not reorder.
type TxType struct {
	Enum      bin.BorshEnum `borsh_enum:"true"`
	Raw       bin.EmptyVariant
	Wrapper   WrapperTx
	Decrypted DecryptedTx
	Protocol  ProtocolTx
}

// RawType is the type of an inner, not yet wrapped transaction.
func RawType() TxType {
	return TxType{Enum: bin.BorshEnum(TxKindRaw)}
}

// WrapperType tags a transaction as a fee-carrying wrapper.
func WrapperType(w WrapperTx) TxType {
	return TxType{Enum: bin.BorshEnum(TxKindWrapper), Wrapper: w}
}

// DecryptedType tags a transaction as the decryption of a wrapper payload.
func DecryptedType(d DecryptedTx) TxType {
	return TxType{Enum: bin.BorshEnum(TxKindDecrypted), Decrypted: d}
}

// ProtocolType tags a transaction as validator-submitted protocol machinery.
func ProtocolType(p ProtocolTx) TxType {
	return TxType{Enum: bin.BorshEnum(TxKindProtocol), Protocol: p}
}

// Kind returns the variant tag.
func (t TxType) Kind() TxKind {
	return TxKind(t.Enum)
}

// DecryptedKind discriminates the outcomes of threshold decryption.
type DecryptedKind uint8

const (
	// Decrypted marks a successfully decrypted payload.
	Decrypted DecryptedKind = iota
	// Undecryptable marks a ciphertext the validators could not decrypt. It
	// is still applied, as a no-op, so its replay protection persists.
	Undecryptable
)

// DecryptedTx distinguishes a successfully decrypted payload from an
// undecryptable one. Variant order is wire format; do not reorder.
type DecryptedTx struct {
	Enum          bin.BorshEnum `borsh_enum:"true"`
	Decrypted     bin.EmptyVariant
	Undecryptable bin.EmptyVariant
}

// NewDecrypted marks a successfully decrypted payload.
func NewDecrypted() DecryptedTx {
	return DecryptedTx{Enum: bin.BorshEnum(Decrypted)}
}

// NewUndecryptable marks a payload that failed threshold decryption.
func NewUndecryptable() DecryptedTx {
	return DecryptedTx{Enum: bin.BorshEnum(Undecryptable)}
}

// Kind returns the variant tag.
func (d DecryptedTx) Kind() DecryptedKind {
	return DecryptedKind(d.Enum)
}

// ProtocolTxKind discriminates the closed set of protocol transaction
// payloads, all applied through the single-shot protocol-tx applier.
type ProtocolTxKind uint8

const (
	ProtocolEthereumEvents ProtocolTxKind = iota
	ProtocolBridgePoolVote
	ProtocolValidatorSetUpdate
)

func (k ProtocolTxKind) String() string {
	switch k {
	case ProtocolEthereumEvents:
		return "ethereum_events"
	case ProtocolBridgePoolVote:
		return "bridge_pool_vote"
	case ProtocolValidatorSetUpdate:
		return "validator_set_update"
	}
	return fmt.Sprintf("protocol_tx(%d)", uint8(k))
}

// protocolTxTag is the canonical encoding of a ProtocolTxKind. Variant
// order is wire format; do not reorder.
type protocolTxTag struct {
	Enum               bin.BorshEnum `borsh_enum:"true"`
	EthereumEvents     bin.EmptyVariant
	BridgePoolVote     bin.EmptyVariant
	ValidatorSetUpdate bin.EmptyVariant
}

// ProtocolTx is the header metadata of a validator-submitted protocol
// transaction: the submitting validator's key and the payload kind.
type ProtocolTx struct {
	Pk  keys.PublicKey
	Tag protocolTxTag
}

// NewProtocolTx builds protocol-tx metadata for the given payload kind.
func NewProtocolTx(pk keys.PublicKey, kind ProtocolTxKind) ProtocolTx {
	return ProtocolTx{Pk: pk, Tag: protocolTxTag{Enum: bin.BorshEnum(kind)}}
}

// Kind returns the payload kind.
func (p ProtocolTx) Kind() ProtocolTxKind {
	return ProtocolTxKind(p.Tag.Enum)
}
