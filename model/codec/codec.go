// Package codec wraps the borsh serializer used for every canonical
// encoding in the ledger: section payloads, storage values and the byte
// images that content-address hashing runs over. Encoding is tag-driven;
// types opt into union layout with a borsh_enum field and into optional
// fields with pointer fields tagged bin:"optional".
package codec

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// MarshalBorsh returns the canonical borsh encoding of v.
func MarshalBorsh(v interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, fmt.Errorf("borsh encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

// MustMarshalBorsh is MarshalBorsh for values whose encoding cannot fail,
// such as fixed-shape structs with no unconstrained interface fields.
func MustMarshalBorsh(v interface{}) []byte {
	out, err := MarshalBorsh(v)
	if err != nil {
		panic(err)
	}
	return out
}

// UnmarshalBorsh decodes the canonical borsh encoding of v. Trailing bytes
// after the value are rejected, so a value has exactly one accepted
// encoding.
func UnmarshalBorsh(data []byte, v interface{}) error {
	dec := bin.NewBorshDecoder(data)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("borsh decode %T: %w", v, err)
	}
	if dec.Remaining() != 0 {
		return fmt.Errorf("borsh decode %T: %d trailing bytes", v, dec.Remaining())
	}
	return nil
}
