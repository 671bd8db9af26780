// Package storage defines the ledger storage key model and the block-level
// scalar types shared across the state machine. Keys are ordered segment
// paths; a segment is either a plain string or an account address, the
// latter marked with a '#' prefix in the rendered form.
package storage

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/khoangkhac118/namada/model/address"
)

// KeySeparator joins segments in the rendered key form.
const KeySeparator = "/"

// AddressSegmentPrefix marks a segment that carries an encoded address.
const AddressSegmentPrefix = "#"

// Key is an immutable storage path. The zero value is the empty key, the
// prefix of every key.
type Key struct {
	segments []string
}

// NewKey builds a key from plain string segments.
func NewKey(segments ...string) (Key, error) {
	k := Key{}
	for _, seg := range segments {
		var err error
		k, err = k.Push(seg)
		if err != nil {
			return Key{}, err
		}
	}
	return k, nil
}

// MustNewKey is NewKey for static, known-valid segments.
func MustNewKey(segments ...string) Key {
	k, err := NewKey(segments...)
	if err != nil {
		panic(err)
	}
	return k
}

// AddressKey builds the one-segment key that roots an account's storage
// subspace.
func AddressKey(addr address.Address) Key {
	return Key{segments: []string{AddressSegmentPrefix + addr.String()}}
}

// ParseKey parses the rendered form produced by String.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, nil
	}
	parts := strings.Split(s, KeySeparator)
	k := Key{segments: make([]string, 0, len(parts))}
	for _, seg := range parts {
		if err := validateSegment(seg); err != nil {
			return Key{}, err
		}
		if addrSeg, ok := strings.CutPrefix(seg, AddressSegmentPrefix); ok {
			if _, err := address.Decode(addrSeg); err != nil {
				return Key{}, fmt.Errorf("invalid address segment %q: %w", seg, err)
			}
		}
		k.segments = append(k.segments, seg)
	}
	return k, nil
}

func validateSegment(seg string) error {
	if seg == "" {
		return fmt.Errorf("empty key segment")
	}
	if strings.Contains(seg, KeySeparator) {
		return fmt.Errorf("key segment %q contains separator", seg)
	}
	return nil
}

// Push appends a plain string segment, returning the extended key.
func (k Key) Push(seg string) (Key, error) {
	if err := validateSegment(seg); err != nil {
		return Key{}, err
	}
	if strings.HasPrefix(seg, AddressSegmentPrefix) {
		return Key{}, fmt.Errorf("key segment %q is reserved for addresses", seg)
	}
	return k.push(seg), nil
}

// MustPush is Push for static, known-valid segments.
func (k Key) MustPush(seg string) Key {
	out, err := k.Push(seg)
	if err != nil {
		panic(err)
	}
	return out
}

// PushAddress appends an address segment, returning the extended key.
func (k Key) PushAddress(addr address.Address) Key {
	return k.push(AddressSegmentPrefix + addr.String())
}

func (k Key) push(seg string) Key {
	segments := make([]string, len(k.segments)+1)
	copy(segments, k.segments)
	segments[len(k.segments)] = seg
	return Key{segments: segments}
}

// Join appends all segments of other.
func (k Key) Join(other Key) Key {
	segments := make([]string, 0, len(k.segments)+len(other.segments))
	segments = append(segments, k.segments...)
	segments = append(segments, other.segments...)
	return Key{segments: segments}
}

// Len returns the segment count.
func (k Key) Len() int {
	return len(k.segments)
}

// IsEmpty reports whether the key has no segments.
func (k Key) IsEmpty() bool {
	return len(k.segments) == 0
}

// Segment returns the rendered segment at index i.
func (k Key) Segment(i int) string {
	return k.segments[i]
}

// SegmentAddress decodes the segment at index i as an address.
func (k Key) SegmentAddress(i int) (address.Address, bool) {
	seg, ok := strings.CutPrefix(k.segments[i], AddressSegmentPrefix)
	if !ok {
		return address.Address{}, false
	}
	addr, err := address.Decode(seg)
	if err != nil {
		return address.Address{}, false
	}
	return addr, true
}

// Owner returns the address rooting the key's subspace, if the first
// segment is an address segment.
func (k Key) Owner() (address.Address, bool) {
	if len(k.segments) == 0 {
		return address.Address{}, false
	}
	return k.SegmentAddress(0)
}

// HasPrefix reports whether prefix is a segment-wise prefix of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix.segments) > len(k.segments) {
		return false
	}
	for i, seg := range prefix.segments {
		if k.segments[i] != seg {
			return false
		}
	}
	return true
}

// String renders the key with '/' between segments.
func (k Key) String() string {
	return strings.Join(k.segments, KeySeparator)
}

// Equal reports segment-wise equality.
func (k Key) Equal(other Key) bool {
	if len(k.segments) != len(other.segments) {
		return false
	}
	for i, seg := range k.segments {
		if other.segments[i] != seg {
			return false
		}
	}
	return true
}

// Less orders keys by their rendered form.
func (k Key) Less(other Key) bool {
	return k.String() < other.String()
}

// KeySet is a set of keys, stored by rendered form for comparability.
type KeySet map[string]struct{}

// NewKeySet builds a set from the given keys.
func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts a key.
func (s KeySet) Add(k Key) {
	s[k.String()] = struct{}{}
}

// Contains reports membership.
func (s KeySet) Contains(k Key) bool {
	_, ok := s[k.String()]
	return ok
}

// Union inserts all keys from other.
func (s KeySet) Union(other KeySet) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Sorted returns the member keys in lexicographic order of their rendered
// form.
func (s KeySet) Sorted() []Key {
	rendered := maps.Keys(s)
	slices.Sort(rendered)
	out := make([]Key, 0, len(rendered))
	for _, r := range rendered {
		k, err := ParseKey(r)
		if err != nil {
			// Members are only inserted via Add, so they re-parse.
			panic(err)
		}
		out = append(out, k)
	}
	return out
}
