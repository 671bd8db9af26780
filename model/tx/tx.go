package tx

import (
	"fmt"
	"sort"

	"github.com/onflow/crypto"

	"github.com/khoangkhac118/namada/model/account"
	"github.com/khoangkhac118/namada/model/hash"
	"github.com/khoangkhac118/namada/model/keys"
	"github.com/khoangkhac118/namada/model/storage"
)

// MaxSignatures caps how many signatures a multisignature section may carry
// when no tighter protocol parameter is supplied.
const MaxSignatures = 255

// SigGasMeter meters the cost of signature verification. Running out of gas
// during verification is a fatal gas error, never an authentication failure.
type SigGasMeter interface {
	ConsumeSignatureVerification() error
}

// Tx is a transaction: a header followed by the sections it
// cross-references. A Tx exclusively owns its sections.
type Tx struct {
	Header   Header
	Sections []Section
}

// NewTx starts a raw transaction builder for the given chain. expiration
// may be nil.
func NewTx(chainID string, expiration *string) *Tx {
	header := NewHeader(RawType())
	header.ChainID = chainID
	header.Expiration = expiration
	return &Tx{Header: header}
}

// FromType starts a transaction of the given type.
func FromType(txType TxType) *Tx {
	return &Tx{Header: NewHeader(txType)}
}

// HeaderHash is the hash identifying this transaction: the digest of the
// header wrapped as a Header-variant section.
func (t *Tx) HeaderHash() hash.Hash {
	return t.Header.GetHash()
}

// Sechashes returns the header hash followed by every section's hash in
// section order. This sequence is what wrapper signatures are computed
// over.
func (t *Tx) Sechashes() []hash.Hash {
	hashes := make([]hash.Hash, 0, len(t.Sections)+1)
	hashes = append(hashes, t.HeaderHash())
	for i := range t.Sections {
		hashes = append(hashes, t.Sections[i].GetHash())
	}
	return hashes
}

// UpdateHeader swaps the transaction type while keeping all section
// cross-references intact. Deriving the inner (raw) header hash of a
// wrapper goes through here.
func (t *Tx) UpdateHeader(txType TxType) *Tx {
	t.Header.TxType = txType
	return t
}

// GetSection finds the section with the given hash. The header is matched
// synthetically first, so a header hash resolves like any section hash.
func (t *Tx) GetSection(h hash.Hash) (Section, bool) {
	if t.HeaderHash() == h {
		return HeaderSection(t.Header), true
	}
	for i := range t.Sections {
		if t.Sections[i].GetHash() == h {
			return t.Sections[i], true
		}
	}
	return Section{}, false
}

// AddSection appends a section and returns its hash for cross-referencing.
func (t *Tx) AddSection(sec Section) hash.Hash {
	t.Sections = append(t.Sections, sec)
	return t.Sections[len(t.Sections)-1].GetHash()
}

// CodeSechash returns the code hash recorded in the header.
func (t *Tx) CodeSechash() hash.Hash {
	return t.Header.CodeHash
}

// SetCodeSechash records the code hash in the header.
func (t *Tx) SetCodeSechash(h hash.Hash) {
	t.Header.CodeHash = h
}

// DataSechash returns the data hash recorded in the header.
func (t *Tx) DataSechash() hash.Hash {
	return t.Header.DataHash
}

// SetDataSechash records the data hash in the header.
func (t *Tx) SetDataSechash(h hash.Hash) {
	t.Header.DataHash = h
}

// SetCode appends a code section and points the header at it.
func (t *Tx) SetCode(c Code) *Tx {
	t.SetCodeSechash(t.AddSection(CodeSection(c)))
	return t
}

// AddCode appends inline code and points the header at it.
func (t *Tx) AddCode(code []byte) *Tx {
	return t.SetCode(NewCode(code))
}

// AddCodeFromHash appends a code reference and points the header at it.
func (t *Tx) AddCodeFromHash(codeHash hash.Hash) *Tx {
	return t.SetCode(CodeFromHash(codeHash))
}

// Code returns the inline code addressed by the header, if present and not
// contracted.
func (t *Tx) Code() ([]byte, bool) {
	sec, ok := t.GetSection(t.CodeSechash())
	if !ok {
		return nil, false
	}
	code, ok := sec.AsCode()
	if !ok {
		return nil, false
	}
	return code.Code.Bytes()
}

// SetData appends a data section and points the header at it.
func (t *Tx) SetData(d Data) *Tx {
	t.SetDataSechash(t.AddSection(DataSection(d)))
	return t
}

// AddData appends a data payload and points the header at it.
func (t *Tx) AddData(data []byte) *Tx {
	return t.SetData(NewData(data))
}

// Data returns the data payload addressed by the header.
func (t *Tx) Data() ([]byte, bool) {
	sec, ok := t.GetSection(t.DataSechash())
	if !ok {
		return nil, false
	}
	data, ok := sec.AsData()
	if !ok {
		return nil, false
	}
	return data.Data, true
}

// AddExtraSection appends an inline extra-data section and returns its hash
// for the caller to cross-reference.
func (t *Tx) AddExtraSection(data []byte) hash.Hash {
	return t.AddSection(ExtraDataSection(NewCode(data)))
}

// AddExtraSectionFromHash appends an extra-data reference and returns its
// hash.
func (t *Tx) AddExtraSectionFromHash(h hash.Hash) hash.Hash {
	return t.AddSection(ExtraDataSection(CodeFromHash(h)))
}

// AddMaspTxSection appends a shielded transaction and returns its hash, the
// value a wrapper's unshield reference points at.
func (t *Tx) AddMaspTxSection(m MaspTx) hash.Hash {
	return t.AddSection(MaspTxSection(m))
}

// AddMaspBuilder appends shielded-transaction build inputs.
func (t *Tx) AddMaspBuilder(m MaspBuilder) *Tx {
	t.AddSection(MaspBuilderSection(m))
	return t
}

// AddWrapper turns the transaction into a wrapper with the given fee
// metadata.
func (t *Tx) AddWrapper(fee Fee, pk keys.PublicKey, epoch storage.Epoch, gasLimit GasLimit, unshield *hash.Hash) *Tx {
	t.Header.TxType = WrapperType(NewWrapperTx(fee, pk, epoch, gasLimit, unshield))
	return t
}

// InnerSectionTargets returns the sorted hashes of the Data and Code
// sections: the canonical target set for multisignatures over the
// transaction's payload.
func (t *Tx) InnerSectionTargets() []hash.Hash {
	var targets []hash.Hash
	for i := range t.Sections {
		switch t.Sections[i].Kind() {
		case KindData, KindCode:
			targets = append(targets, t.Sections[i].GetHash())
		}
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Less(targets[j])
	})
	return targets
}

// ProtocolFilter removes the sections that must never reach the protocol
// (MASP builders carry viewing keys) and returns them to the caller.
func (t *Tx) ProtocolFilter() []Section {
	var filtered []Section
	for i := len(t.Sections) - 1; i >= 0; i-- {
		if t.Sections[i].Kind() == KindMaspBuilder {
			filtered = append(filtered, t.Sections[i])
			t.Sections = append(t.Sections[:i], t.Sections[i+1:]...)
		}
	}
	return filtered
}

// WalletFilter contracts the sections a constrained signing device need not
// see in full, shrinking code and extra-data payloads to their hashes, and
// returns the originals. Section hashes, and so all header references, are
// unchanged.
func (t *Tx) WalletFilter() []Section {
	var filtered []Section
	for i := len(t.Sections) - 1; i >= 0; i-- {
		switch t.Sections[i].Kind() {
		case KindCode:
			filtered = append(filtered, t.Sections[i])
			t.Sections[i].Code.Code.Contract()
		case KindExtraData:
			filtered = append(filtered, t.Sections[i])
			t.Sections[i].ExtraData.Code.Contract()
		}
	}
	return filtered
}

// SignWrapper attaches the single signature a wrapper fee payer must
// produce: one Signature section over the full sechashes sequence.
func (t *Tx) SignWrapper(sk crypto.PrivateKey) error {
	t.ProtocolFilter()
	sec, err := NewSignature(t.Sechashes(), sk)
	if err != nil {
		return err
	}
	t.AddSection(SignatureSection(sec))
	return nil
}

// SignRaw attaches a multisignature over the inner section targets, each
// signature tagged with its key's index in keyMap.
func (t *Tx) SignRaw(sks []crypto.PrivateKey, keyMap *account.PublicKeysIndexMap) error {
	t.ProtocolFilter()
	sec, err := NewMultiSignature(t.InnerSectionTargets(), sks, keyMap)
	if err != nil {
		return err
	}
	t.AddSection(MultiSignatureSection(sec))
	return nil
}

// AddSignatures attaches prebuilt indexed signatures over the inner section
// targets, the shape offline co-signing produces.
func (t *Tx) AddSignatures(sigs []SignatureIndex) *Tx {
	t.ProtocolFilter()
	sorted := make([]SignatureIndex, len(sigs))
	copy(sorted, sigs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})
	t.AddSection(MultiSignatureSection(MultiSignature{
		Targets:    t.InnerSectionTargets(),
		Signatures: sorted,
	}))
	return t
}

// VerifySignature finds a Signature section covering all the given hashes
// under pk and verifies it. A section's own hash counts as implicitly
// covered, so a signature may omit itself from its target list. Every
// target recorded in a candidate section must resolve to a present section,
// else verification fails rather than silently narrowing its scope.
func (t *Tx) VerifySignature(pk keys.PublicKey, hashes []hash.Hash) (Signature, error) {
	for i := range t.Sections {
		sec := &t.Sections[i]
		if sec.Kind() != KindSignature {
			continue
		}
		if !coversAll(sec, sec.Signature.Targets, hashes) {
			continue
		}
		for _, target := range sec.Signature.Targets {
			if _, ok := t.GetSection(target); !ok {
				return Signature{}, fmt.Errorf("%w: target section is missing", ErrInvalidSectionSignature)
			}
		}
		if err := sec.Signature.Verify(pk); err != nil {
			return Signature{}, ErrInvalidWrapperSignature
		}
		return sec.Signature, nil
	}
	return Signature{}, ErrInvalidWrapperSignature
}

// VerifySectionSignatures checks that a quorum of the account's keys signed
// the given hashes: at least threshold valid signatures out of at most
// maxSignatures considered, each verification paid for through meter.
func (t *Tx) VerifySectionSignatures(
	hashes []hash.Hash,
	keyMap *account.PublicKeysIndexMap,
	threshold uint8,
	maxSignatures uint8,
	meter SigGasMeter,
) error {
	valid := uint8(0)
	for i := range t.Sections {
		sec := &t.Sections[i]
		if sec.Kind() != KindMultiSignature {
			continue
		}
		multisig := &sec.MultiSignature
		if !coversAll(sec, multisig.Targets, hashes) {
			return fmt.Errorf("%w: missing target hash", ErrInvalidSectionSignature)
		}
		for _, target := range multisig.Targets {
			if _, ok := t.GetSection(target); !ok {
				return fmt.Errorf("%w: missing target section", ErrInvalidSectionSignature)
			}
		}
		if len(multisig.Signatures) > int(maxSignatures) {
			return fmt.Errorf("%w: too many signatures", ErrInvalidSectionSignature)
		}
		if len(multisig.Signatures) < int(threshold) {
			return fmt.Errorf("%w: too few signatures", ErrInvalidSectionSignature)
		}
		rawHash := multisig.RawHash()
		for _, sigIndex := range multisig.Signatures {
			ok, _ := sigIndex.Verify(keyMap, rawHash)
			if err := meter.ConsumeSignatureVerification(); err != nil {
				return err
			}
			if ok {
				valid++
			}
			if valid >= threshold {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: not enough valid signatures", ErrInvalidSectionSignature)
}

// coversAll reports whether every hash is among targets or is the signing
// section's own hash.
func coversAll(sec *Section, targets []hash.Hash, hashes []hash.Hash) bool {
	secHash := sec.GetHash()
	for _, h := range hashes {
		if h == secHash {
			continue
		}
		found := false
		for _, target := range targets {
			if target == h {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ValidateTx authenticates the transaction according to its type. Wrapper
// and protocol transactions require a signature by the embedded key over
// the full sechashes sequence; raw and decrypted transactions carry no
// authentication of their own and return no signature and no error.
func (t *Tx) ValidateTx() (*Signature, error) {
	switch t.Header.TxType.Kind() {
	case TxKindWrapper:
		sig, err := t.VerifySignature(t.Header.TxType.Wrapper.Pk, t.Sechashes())
		if err != nil {
			return nil, fmt.Errorf("wrapper signature verification failed: %w", err)
		}
		return &sig, nil
	case TxKindProtocol:
		sig, err := t.VerifySignature(t.Header.TxType.Protocol.Pk, t.Sechashes())
		if err != nil {
			return nil, fmt.Errorf("protocol signature verification failed: %w", err)
		}
		return &sig, nil
	default:
		return nil, nil
	}
}
