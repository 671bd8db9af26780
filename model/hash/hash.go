// Package hash provides the content-address digest used throughout the
// ledger: a SHA2-256 hash over a canonical byte encoding.
package hash

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/onflow/crypto/hash"
)

// Hasher is the streaming hasher interface sections fold themselves into.
type Hasher = hash.Hasher

// Length is the number of bytes in a Hash.
const Length = 32

// Hash is a 256-bit content address. The zero value marks "no hash".
type Hash [Length]byte

// Zero is the all-zero hash, used as a sentinel for unset header fields.
var Zero Hash

// DefaultHasher computes one-shot digests. SHA2 hashers are not safe for
// concurrent use, so the shared instance is guarded by a mutex; streaming
// callers should allocate their own hasher with NewHasher.
var DefaultHasher hash.Hasher

type defaultHasher struct {
	hash.Hasher
	sync.Mutex
}

func (h *defaultHasher) ComputeHash(b []byte) hash.Hash {
	h.Lock()
	defer h.Unlock()
	return h.Hasher.ComputeHash(b)
}

func init() {
	DefaultHasher = &defaultHasher{
		hash.NewSHA2_256(),
		sync.Mutex{},
	}
}

// NewHasher returns a fresh streaming hasher using the ledger's hash
// function. The returned hasher is an io.Writer; fold bytes in with Write
// and finalize with Sum.
func NewHasher() hash.Hasher {
	return hash.NewSHA2_256()
}

// Sum finalizes a streaming hasher into a Hash.
func Sum(h hash.Hasher) Hash {
	var out Hash
	copy(out[:], h.SumHash())
	return out
}

// Sha256 hashes the concatenation of the given byte slices.
func Sha256(data ...[]byte) Hash {
	h := NewHasher()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	return Sum(h)
}

// FromBytes converts exactly Length bytes into a Hash.
func FromBytes(b []byte) (Hash, error) {
	var out Hash
	if len(b) != Length {
		return out, fmt.Errorf("invalid hash length %d, expected %d", len(b), Length)
	}
	copy(out[:], b)
	return out, nil
}

// FromHex parses a hex string (upper or lower case) into a Hash.
func FromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid hash encoding: %w", err)
	}
	return FromBytes(b)
}

// IsZero reports whether the hash is the unset sentinel.
func (h Hash) IsZero() bool {
	return h == Zero
}

// Bytes returns a copy of the digest bytes.
func (h Hash) Bytes() []byte {
	return h[:]
}

// String renders the digest in upper-case hex, the transport form used for
// hashes on this chain.
func (h Hash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// Less orders hashes lexicographically by digest bytes.
func (h Hash) Less(other Hash) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return []byte(`"` + h.String() + `"`), nil
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid hash: not a JSON string")
	}
	parsed, err := FromHex(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
