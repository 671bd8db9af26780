// Package tx defines the content-addressed transaction envelope: a header
// cross-referencing an ordered list of hashable sections. Sections are
// compared by hash everywhere in the protocol, never by structural equality.
package tx

import (
	"encoding/binary"
	"fmt"
	"sort"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/onflow/crypto"

	"github.com/khoangkhac118/namada/model/account"
	"github.com/khoangkhac118/namada/model/codec"
	"github.com/khoangkhac118/namada/model/hash"
	"github.com/khoangkhac118/namada/model/keys"
)

// newSalt disambiguates otherwise identical payloads built at different
// times, so re-submitting the same logical content yields a fresh section
// hash.
func newSalt() [8]byte {
	var salt [8]byte
	binary.LittleEndian.PutUint64(salt[:], uint64(time.Now().UnixMilli()))
	return salt
}

// Data is a section carrying opaque application data.
type Data struct {
	Salt [8]byte
	Data []byte
}

// NewData builds a data section with a fresh salt.
func NewData(data []byte) Data {
	return Data{Salt: newSalt(), Data: data}
}

// Hash folds the section's canonical encoding into the running hasher.
func (d Data) Hash(h hash.Hasher) hash.Hasher {
	_, _ = h.Write(codec.MustMarshalBorsh(d))
	return h
}

// Code is a section carrying transaction or validity-predicate code, either
// inline or contracted to its hash.
type Code struct {
	Salt [8]byte
	Code Commitment
}

// NewCode builds a code section holding the code inline.
func NewCode(code []byte) Code {
	return Code{Salt: newSalt(), Code: CommitmentFromBytes(code)}
}

// CodeFromHash builds a code section referencing code by hash.
func CodeFromHash(h hash.Hash) Code {
	return Code{Salt: newSalt(), Code: CommitmentFromHash(h)}
}

// Hash folds the salt and the code commitment's digest, not the code bytes,
// so the section hash survives contraction.
func (c Code) Hash(h hash.Hasher) hash.Hasher {
	_, _ = h.Write(c.Salt[:])
	digest := c.Code.Digest()
	_, _ = h.Write(digest[:])
	return h
}

// SignatureIndex pairs a raw signature with the signer's index in an
// externally supplied account key ordering.
type SignatureIndex struct {
	Signature keys.Signature
	Index     uint8
}

// Verify resolves the index back to a public key and checks the signature
// over digest. An unresolvable index is ErrMissingData; a well-formed but
// wrong signature returns (false, nil).
func (s SignatureIndex) Verify(keyMap *account.PublicKeysIndexMap, digest hash.Hash) (bool, error) {
	pk, ok := keyMap.KeyAt(s.Index)
	if !ok {
		return false, ErrMissingData
	}
	return pk.Verify(s.Signature, digest.Bytes())
}

// MultiSignature is a section carrying indexed signatures from several
// signers over an explicit list of target section hashes.
type MultiSignature struct {
	Targets    []hash.Hash
	Signatures []SignatureIndex
}

// NewMultiSignature signs the target list with each of the given keys,
// tagging every signature with the key's index in keyMap. Keys absent from
// the map are skipped, matching the offline-signing flow where a tx is
// signed by more parties than one account knows.
func NewMultiSignature(targets []hash.Hash, sks []crypto.PrivateKey, keyMap *account.PublicKeysIndexMap) (MultiSignature, error) {
	sec := MultiSignature{Targets: targets}
	digest := sec.RawHash()
	for _, sk := range sks {
		pk, err := keys.PublicKeyFromCrypto(sk.PublicKey())
		if err != nil {
			return MultiSignature{}, err
		}
		index, ok := keyMap.IndexOf(pk)
		if !ok {
			continue
		}
		sig, err := keys.Sign(sk, digest.Bytes())
		if err != nil {
			return MultiSignature{}, err
		}
		sec.Signatures = append(sec.Signatures, SignatureIndex{Signature: sig, Index: index})
	}
	sort.Slice(sec.Signatures, func(i, j int) bool {
		return sec.Signatures[i].Index < sec.Signatures[j].Index
	})
	return sec, nil
}

// Hash folds the section's canonical encoding into the running hasher.
func (m MultiSignature) Hash(h hash.Hasher) hash.Hasher {
	_, _ = h.Write(codec.MustMarshalBorsh(m))
	return h
}

// RawHash is the digest the signatures are computed over: the section's own
// hash with the signature set cleared.
func (m MultiSignature) RawHash() hash.Hash {
	stripped := MultiSignature{Targets: m.Targets}
	return hash.Sum(stripped.Hash(hash.NewHasher()))
}

// Signature is a section carrying a single signature over an explicit list
// of target section hashes, the form a wrapper fee payer produces.
type Signature struct {
	Targets   []hash.Hash
	Signature *keys.Signature `bin:"optional"`
}

// NewSignature signs the target list with the given key.
func NewSignature(targets []hash.Hash, sk crypto.PrivateKey) (Signature, error) {
	sec := Signature{Targets: targets}
	sig, err := keys.Sign(sk, sec.RawHash().Bytes())
	if err != nil {
		return Signature{}, err
	}
	sec.Signature = &sig
	return sec, nil
}

// Hash folds the section's canonical encoding into the running hasher.
func (s Signature) Hash(h hash.Hasher) hash.Hasher {
	_, _ = h.Write(codec.MustMarshalBorsh(s))
	return h
}

// RawHash is the digest the signature is computed over: the section's own
// hash with the signature cleared.
func (s Signature) RawHash() hash.Hash {
	stripped := Signature{Targets: s.Targets}
	return hash.Sum(stripped.Hash(hash.NewHasher()))
}

// Verify checks the held signature against pk. A missing signature is
// ErrMissingData; a wrong signature is ErrInvalidWrapperSignature.
func (s Signature) Verify(pk keys.PublicKey) error {
	if s.Signature == nil {
		return ErrMissingData
	}
	valid, err := pk.Verify(*s.Signature, s.RawHash().Bytes())
	if err != nil {
		return err
	}
	if !valid {
		return ErrInvalidWrapperSignature
	}
	return nil
}

// Ciphertext is a section holding the encryption of other sections. The
// threshold-decryption scheme lives outside this engine, so the payload is
// opaque here.
type Ciphertext struct {
	Opaque []byte
}

// Hash folds the section's canonical encoding into the running hasher.
func (c Ciphertext) Hash(h hash.Hasher) hash.Hasher {
	_, _ = h.Write(codec.MustMarshalBorsh(c))
	return h
}

// MaspTx is an opaque shielded transaction artifact. The payload digest
// stands in for the shielded transaction id.
type MaspTx struct {
	Payload []byte
}

// Hash folds the payload bytes into the running hasher.
func (m MaspTx) Hash(h hash.Hasher) hash.Hasher {
	_, _ = h.Write(m.Payload)
	return h
}

// MaspBuilder is a section carrying the auxiliary inputs used to construct
// the shielded transaction it targets. It contains viewing keys and must
// never reach the protocol; see Tx.ProtocolFilter.
type MaspBuilder struct {
	Target   hash.Hash
	Metadata []byte
}

// Hash folds the section's canonical encoding into the running hasher.
func (m MaspBuilder) Hash(h hash.Hasher) hash.Hasher {
	_, _ = h.Write(codec.MustMarshalBorsh(m))
	return h
}

// SectionKind discriminates the section variants. The values are the wire
// discriminants and feed into section hashes; do not reorder.
type SectionKind uint8

const (
	KindData SectionKind = iota
	KindExtraData
	KindCode
	KindMultiSignature
	KindSignature
	KindCiphertext
	KindMaspTx
	KindMaspBuilder
	KindHeader
)

func (k SectionKind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindExtraData:
		return "extra_data"
	case KindCode:
		return "code"
	case KindMultiSignature:
		return "multisignature"
	case KindSignature:
		return "signature"
	case KindCiphertext:
		return "ciphertext"
	case KindMaspTx:
		return "masp_tx"
	case KindMaspBuilder:
		return "masp_builder"
	case KindHeader:
		return "header"
	}
	return fmt.Sprintf("section(%d)", uint8(k))
}

// Section is a tagged union over the independently hashable fragments of a
// transaction. The Header variant exists only to give the header a hash of
// the same shape as every other section. Variant order is wire format; do
// not reorder.
type Section struct {
	Enum           bin.BorshEnum `borsh_enum:"true"`
	Data           Data
	ExtraData      Code
	Code           Code
	MultiSignature MultiSignature
	Signature      Signature
	Ciphertext     Ciphertext
	MaspTx         MaspTx
	MaspBuilder    MaspBuilder
	Header         Header
}

// DataSection wraps a data payload in a section.
func DataSection(d Data) Section {
	return Section{Enum: bin.BorshEnum(KindData), Data: d}
}

// ExtraDataSection wraps a code commitment carrying auxiliary data.
func ExtraDataSection(c Code) Section {
	return Section{Enum: bin.BorshEnum(KindExtraData), ExtraData: c}
}

// CodeSection wraps a code payload in a section.
func CodeSection(c Code) Section {
	return Section{Enum: bin.BorshEnum(KindCode), Code: c}
}

// MultiSignatureSection wraps a multi-signer signature in a section.
func MultiSignatureSection(m MultiSignature) Section {
	return Section{Enum: bin.BorshEnum(KindMultiSignature), MultiSignature: m}
}

// SignatureSection wraps a single-signer signature in a section.
func SignatureSection(s Signature) Section {
	return Section{Enum: bin.BorshEnum(KindSignature), Signature: s}
}

// CiphertextSection wraps an encrypted bundle in a section.
func CiphertextSection(c Ciphertext) Section {
	return Section{Enum: bin.BorshEnum(KindCiphertext), Ciphertext: c}
}

// MaspTxSection wraps a shielded transaction in a section.
func MaspTxSection(m MaspTx) Section {
	return Section{Enum: bin.BorshEnum(KindMaspTx), MaspTx: m}
}

// MaspBuilderSection wraps shielded-transaction build inputs in a section.
func MaspBuilderSection(m MaspBuilder) Section {
	return Section{Enum: bin.BorshEnum(KindMaspBuilder), MaspBuilder: m}
}

// HeaderSection wraps a header copy for hashing purposes.
func HeaderSection(h Header) Section {
	return Section{Enum: bin.BorshEnum(KindHeader), Header: h}
}

// Kind returns the section's variant tag.
func (s *Section) Kind() SectionKind {
	return SectionKind(s.Enum)
}

// Hash folds the variant discriminant byte and the variant's canonical
// content into the running hasher. This is the identity of the section.
func (s *Section) Hash(h hash.Hasher) hash.Hasher {
	_, _ = h.Write([]byte{byte(s.Enum)})
	switch s.Kind() {
	case KindData:
		return s.Data.Hash(h)
	case KindExtraData:
		return s.ExtraData.Hash(h)
	case KindCode:
		return s.Code.Hash(h)
	case KindMultiSignature:
		return s.MultiSignature.Hash(h)
	case KindSignature:
		return s.Signature.Hash(h)
	case KindCiphertext:
		return s.Ciphertext.Hash(h)
	case KindMaspTx:
		return s.MaspTx.Hash(h)
	case KindMaspBuilder:
		return s.MaspBuilder.Hash(h)
	case KindHeader:
		return s.Header.Hash(h)
	}
	return h
}

// GetHash finalizes a fresh hash of the section.
func (s *Section) GetHash() hash.Hash {
	return hash.Sum(s.Hash(hash.NewHasher()))
}

// AsData returns the data payload, if this is a data section.
func (s *Section) AsData() (Data, bool) {
	if s.Kind() == KindData {
		return s.Data, true
	}
	return Data{}, false
}

// AsCode returns the code payload, if this is a code section.
func (s *Section) AsCode() (Code, bool) {
	if s.Kind() == KindCode {
		return s.Code, true
	}
	return Code{}, false
}

// AsExtraData returns the extra-data payload, if this is an extra-data
// section.
func (s *Section) AsExtraData() (Code, bool) {
	if s.Kind() == KindExtraData {
		return s.ExtraData, true
	}
	return Code{}, false
}

// AsMaspTx returns the shielded transaction, if this is a MASP tx section.
func (s *Section) AsMaspTx() (MaspTx, bool) {
	if s.Kind() == KindMaspTx {
		return s.MaspTx, true
	}
	return MaspTx{}, false
}
