package tx

import (
	bin "github.com/gagliardetto/binary"

	"github.com/khoangkhac118/namada/model/hash"
)

// Commitment is either some content bytes or their digest. Code payloads
// travel contracted to their hash wherever the full bytes are not needed,
// so section hashes must be invariant under the substitution. Variant order
// is wire format; do not reorder.
type Commitment struct {
	Enum bin.BorshEnum `borsh_enum:"true"`
	Hash hash.Hash
	Id   []byte
}

const (
	commitmentHash = iota
	commitmentId
)

// CommitmentFromHash builds a reference commitment.
func CommitmentFromHash(h hash.Hash) Commitment {
	return Commitment{Enum: commitmentHash, Hash: h}
}

// CommitmentFromBytes builds an inline commitment.
func CommitmentFromBytes(b []byte) Commitment {
	return Commitment{Enum: commitmentId, Id: b}
}

// Digest returns the held hash, or the hash of the held bytes. Invariant
// under Contract and successful Expand.
func (c Commitment) Digest() hash.Hash {
	if c.Enum == commitmentId {
		return hash.Sha256(c.Id)
	}
	return c.Hash
}

// Bytes returns the inline content, if any.
func (c Commitment) Bytes() ([]byte, bool) {
	if c.Enum == commitmentId {
		return c.Id, true
	}
	return nil, false
}

// Contract substitutes inline content with its digest. One-way and
// idempotent.
func (c *Commitment) Contract() {
	if c.Enum == commitmentId {
		*c = CommitmentFromHash(hash.Sha256(c.Id))
	}
}

// Expand substitutes a digest with the supplied content, provided the
// content hashes to it (or is already held verbatim). On mismatch it
// returns ErrCommitmentMismatch and leaves the commitment unchanged.
func (c *Commitment) Expand(content []byte) error {
	if inline, ok := c.Bytes(); ok {
		if string(inline) == string(content) {
			return nil
		}
		return ErrCommitmentMismatch
	}
	if hash.Sha256(content) != c.Hash {
		return ErrCommitmentMismatch
	}
	*c = CommitmentFromBytes(content)
	return nil
}
