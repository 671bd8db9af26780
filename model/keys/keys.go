// Package keys wraps the ECDSA schemes accepted for transaction authorization
// behind canonical, scheme-tagged encodings. Raw key and signature bytes only
// appear inside the tagged unions defined here, so every hashed or stored
// artifact pins the scheme it was produced under.
package keys

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/onflow/crypto"

	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/codec"
	"github.com/khoangkhac118/namada/model/hash"
)

const (
	// PublicKeyLength is the raw encoding width of both supported schemes,
	// the two curve point coordinates.
	PublicKeyLength = 64
	// SignatureLength is the raw encoding width of both supported schemes,
	// the r and s scalars.
	SignatureLength = 64
)

// Scheme identifies a supported signature scheme.
type Scheme uint8

const (
	SchemeP256 Scheme = iota
	SchemeSecp256k1
)

func (s Scheme) String() string {
	switch s {
	case SchemeP256:
		return "p256"
	case SchemeSecp256k1:
		return "secp256k1"
	}
	return fmt.Sprintf("scheme(%d)", uint8(s))
}

// SigningAlgorithm maps the scheme onto the underlying crypto library
// algorithm identifier.
func (s Scheme) SigningAlgorithm() (crypto.SigningAlgorithm, error) {
	switch s {
	case SchemeP256:
		return crypto.ECDSAP256, nil
	case SchemeSecp256k1:
		return crypto.ECDSASecp256k1, nil
	}
	return crypto.UnknownSigningAlgorithm, fmt.Errorf("unsupported signature scheme %s", s)
}

// SchemeOf maps a crypto library algorithm onto its scheme tag.
func SchemeOf(algo crypto.SigningAlgorithm) (Scheme, error) {
	switch algo {
	case crypto.ECDSAP256:
		return SchemeP256, nil
	case crypto.ECDSASecp256k1:
		return SchemeSecp256k1, nil
	}
	return 0, fmt.Errorf("unsupported signing algorithm %s", algo)
}

// PublicKey is a scheme-tagged public key. Variant order is wire format; do
// not reorder.
type PublicKey struct {
	Enum      bin.BorshEnum `borsh_enum:"true"`
	P256      [PublicKeyLength]byte
	Secp256k1 [PublicKeyLength]byte
}

// PublicKeyFromCrypto tags the raw encoding of pk with its scheme.
func PublicKeyFromCrypto(pk crypto.PublicKey) (PublicKey, error) {
	scheme, err := SchemeOf(pk.Algorithm())
	if err != nil {
		return PublicKey{}, err
	}
	raw := pk.Encode()
	if len(raw) != PublicKeyLength {
		return PublicKey{}, fmt.Errorf("unexpected %s public key length %d", scheme, len(raw))
	}
	out := PublicKey{Enum: bin.BorshEnum(scheme)}
	switch scheme {
	case SchemeP256:
		copy(out.P256[:], raw)
	case SchemeSecp256k1:
		copy(out.Secp256k1[:], raw)
	}
	return out, nil
}

// Scheme returns the scheme tag.
func (pk PublicKey) Scheme() Scheme {
	return Scheme(pk.Enum)
}

func (pk PublicKey) raw() []byte {
	switch pk.Scheme() {
	case SchemeSecp256k1:
		return pk.Secp256k1[:]
	default:
		return pk.P256[:]
	}
}

// Crypto decodes the key for use with the crypto library.
func (pk PublicKey) Crypto() (crypto.PublicKey, error) {
	algo, err := pk.Scheme().SigningAlgorithm()
	if err != nil {
		return nil, err
	}
	decoded, err := crypto.DecodePublicKey(algo, pk.raw())
	if err != nil {
		return nil, fmt.Errorf("decode %s public key: %w", pk.Scheme(), err)
	}
	return decoded, nil
}

// Verify checks sig over msg under this key. A well-formed but wrong
// signature returns false with no error.
func (pk PublicKey) Verify(sig Signature, msg []byte) (bool, error) {
	if sig.Scheme() != pk.Scheme() {
		return false, nil
	}
	decoded, err := pk.Crypto()
	if err != nil {
		return false, err
	}
	valid, err := decoded.Verify(sig.raw(), msg, hash.NewHasher())
	if err != nil {
		return false, fmt.Errorf("verify %s signature: %w", pk.Scheme(), err)
	}
	return valid, nil
}

// Hash returns the public key hash, the leading bytes of the digest of the
// canonical key encoding.
func (pk PublicKey) Hash() [address.HashLength]byte {
	digest := hash.Sha256(codec.MustMarshalBorsh(pk))
	var out [address.HashLength]byte
	copy(out[:], digest[:address.HashLength])
	return out
}

// Address returns the implicit address derived from the key.
func (pk PublicKey) Address() address.Address {
	return address.NewImplicit(pk.Hash())
}

func (pk PublicKey) String() string {
	return fmt.Sprintf("%s:%x", pk.Scheme(), pk.raw())
}

// Signature is a scheme-tagged signature. Variant order is wire format; do
// not reorder.
type Signature struct {
	Enum      bin.BorshEnum `borsh_enum:"true"`
	P256      [SignatureLength]byte
	Secp256k1 [SignatureLength]byte
}

// SignatureFromRaw tags raw signature bytes with their scheme.
func SignatureFromRaw(scheme Scheme, raw []byte) (Signature, error) {
	if len(raw) != SignatureLength {
		return Signature{}, fmt.Errorf("unexpected %s signature length %d", scheme, len(raw))
	}
	out := Signature{Enum: bin.BorshEnum(scheme)}
	switch scheme {
	case SchemeP256:
		copy(out.P256[:], raw)
	case SchemeSecp256k1:
		copy(out.Secp256k1[:], raw)
	default:
		return Signature{}, fmt.Errorf("unsupported signature scheme %s", scheme)
	}
	return out, nil
}

// Scheme returns the scheme tag.
func (s Signature) Scheme() Scheme {
	return Scheme(s.Enum)
}

func (s Signature) raw() []byte {
	switch s.Scheme() {
	case SchemeSecp256k1:
		return s.Secp256k1[:]
	default:
		return s.P256[:]
	}
}

// Sign produces a scheme-tagged signature over msg with sk.
func Sign(sk crypto.PrivateKey, msg []byte) (Signature, error) {
	scheme, err := SchemeOf(sk.Algorithm())
	if err != nil {
		return Signature{}, err
	}
	raw, err := sk.Sign(msg, hash.NewHasher())
	if err != nil {
		return Signature{}, fmt.Errorf("sign with %s: %w", scheme, err)
	}
	return SignatureFromRaw(scheme, raw)
}
