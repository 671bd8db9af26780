// Package account models on-chain account metadata: the authorized public
// keys with their signing indices, the signature threshold, and the storage
// schema these live under.
package account

import (
	"fmt"

	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/keys"
	"github.com/khoangkhac118/namada/model/storage"
)

const (
	vpSegment        = "vp"
	thresholdSegment = "threshold"
	publicKeySegment = "pks"
)

// VpKey is the storage key holding the code hash of addr's validity
// predicate.
func VpKey(addr address.Address) storage.Key {
	return storage.AddressKey(addr).MustPush(vpSegment)
}

// ThresholdKey is the storage key holding addr's signature threshold.
func ThresholdKey(addr address.Address) storage.Key {
	return storage.AddressKey(addr).MustPush(thresholdSegment)
}

// PublicKeyKey is the storage key holding addr's authorized key at the given
// signing index.
func PublicKeyKey(addr address.Address, index uint8) storage.Key {
	return storage.AddressKey(addr).MustPush(publicKeySegment).MustPush(fmt.Sprintf("%d", index))
}

// PublicKeysIndexMap maps an account's authorized keys to their signing
// indices and back. Signing indices are the positions keys were registered
// in and appear inside multisignature sections.
type PublicKeysIndexMap struct {
	byIndex []keys.PublicKey
	byKey   map[keys.PublicKey]uint8
}

// NewPublicKeysIndexMap indexes the given keys in registration order. At
// most 256 keys are addressable; duplicates are rejected.
func NewPublicKeysIndexMap(pks []keys.PublicKey) (*PublicKeysIndexMap, error) {
	if len(pks) > 256 {
		return nil, fmt.Errorf("too many public keys: %d", len(pks))
	}
	m := &PublicKeysIndexMap{
		byIndex: make([]keys.PublicKey, len(pks)),
		byKey:   make(map[keys.PublicKey]uint8, len(pks)),
	}
	for i, pk := range pks {
		if _, dup := m.byKey[pk]; dup {
			return nil, fmt.Errorf("duplicate public key at index %d", i)
		}
		m.byIndex[i] = pk
		m.byKey[pk] = uint8(i)
	}
	return m, nil
}

// SingleKey indexes one key at index zero, the shape used for implicit
// accounts.
func SingleKey(pk keys.PublicKey) *PublicKeysIndexMap {
	m, err := NewPublicKeysIndexMap([]keys.PublicKey{pk})
	if err != nil {
		panic(err)
	}
	return m
}

// Len returns the number of indexed keys.
func (m *PublicKeysIndexMap) Len() int {
	return len(m.byIndex)
}

// IndexOf returns the signing index of pk.
func (m *PublicKeysIndexMap) IndexOf(pk keys.PublicKey) (uint8, bool) {
	idx, ok := m.byKey[pk]
	return idx, ok
}

// KeyAt returns the key registered at the given signing index.
func (m *PublicKeysIndexMap) KeyAt(index uint8) (keys.PublicKey, bool) {
	if int(index) >= len(m.byIndex) {
		return keys.PublicKey{}, false
	}
	return m.byIndex[index], true
}

// Keys returns the indexed keys in registration order.
func (m *PublicKeysIndexMap) Keys() []keys.PublicKey {
	out := make([]keys.PublicKey, len(m.byIndex))
	copy(out, m.byIndex)
	return out
}
