package tx

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/khoangkhac118/namada/model/codec"
)

// The wire envelope is a minimal protobuf message with a single bytes
// field holding the canonical transaction encoding.
const envelopeDataField = protowire.Number(1)

// ToBytes wraps the canonical encoding of the transaction in the wire
// envelope.
func (t *Tx) ToBytes() []byte {
	inner := codec.MustMarshalBorsh(t)
	out := protowire.AppendTag(nil, envelopeDataField, protowire.BytesType)
	return protowire.AppendBytes(out, inner)
}

// FromBytes decodes a wire envelope back into a transaction. Malformed
// framing is ErrDecoding; a malformed payload is ErrDeserializing.
func FromBytes(raw []byte) (*Tx, error) {
	var inner []byte
	rest := raw
	for len(rest) > 0 {
		num, typ, n := protowire.ConsumeTag(rest)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrDecoding, protowire.ParseError(n))
		}
		rest = rest[n:]
		if num != envelopeDataField || typ != protowire.BytesType {
			return nil, fmt.Errorf("%w: unexpected field %d", ErrDecoding, num)
		}
		inner, n = protowire.ConsumeBytes(rest)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrDecoding, protowire.ParseError(n))
		}
		rest = rest[n:]
	}
	if inner == nil {
		return nil, fmt.Errorf("%w: empty envelope", ErrDecoding)
	}
	var t Tx
	if err := codec.UnmarshalBorsh(inner, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserializing, err)
	}
	return &t, nil
}

// Serialize renders the canonical transaction encoding as upper-case hex,
// the transport form for text-oriented side channels.
func (t *Tx) Serialize() string {
	return strings.ToUpper(hex.EncodeToString(codec.MustMarshalBorsh(t)))
}

// Deserialize parses a JSON-wrapped upper-case hex string back into a
// transaction. All failure modes map to ErrOfflineDeserialization.
func Deserialize(data []byte) (*Tx, error) {
	raw, err := decodeOffline(data)
	if err != nil {
		return nil, err
	}
	var t Tx
	if err := codec.UnmarshalBorsh(raw, &t); err != nil {
		return nil, ErrOfflineDeserialization
	}
	return &t, nil
}

// Serialize renders the signature-index encoding as upper-case hex for the
// offline co-signing flow.
func (s SignatureIndex) Serialize() string {
	return strings.ToUpper(hex.EncodeToString(codec.MustMarshalBorsh(s)))
}

// DeserializeSignatureIndex parses a JSON-wrapped upper-case hex string
// back into a signature index.
func DeserializeSignatureIndex(data []byte) (SignatureIndex, error) {
	raw, err := decodeOffline(data)
	if err != nil {
		return SignatureIndex{}, err
	}
	var s SignatureIndex
	if err := codec.UnmarshalBorsh(raw, &s); err != nil {
		return SignatureIndex{}, ErrOfflineDeserialization
	}
	return s, nil
}

func decodeOffline(data []byte) ([]byte, error) {
	var hexForm string
	if err := json.Unmarshal(data, &hexForm); err != nil {
		return nil, ErrOfflineDeserialization
	}
	raw, err := hex.DecodeString(strings.ToLower(hexForm))
	if err != nil {
		return nil, ErrOfflineDeserialization
	}
	return raw, nil
}
