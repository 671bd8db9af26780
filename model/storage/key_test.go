package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/storage"
)

func TestKeyBuildAndRender(t *testing.T) {
	owner := address.NewInternal(address.InternalEthBridgePool)
	key := storage.AddressKey(owner).MustPush("pending").MustPush("abcd")

	require.Equal(t, 3, key.Len())
	assert.Equal(t, "#"+owner.String()+"/pending/abcd", key.String())

	got, ok := key.Owner()
	require.True(t, ok)
	assert.Equal(t, owner, got)
	assert.Equal(t, "pending", key.Segment(1))
}

func TestKeyParseRoundTrip(t *testing.T) {
	owner := address.NewEstablished([address.HashLength]byte{9})
	key := storage.AddressKey(owner).MustPush("balance").PushAddress(address.NewInternal(address.InternalPoS))

	parsed, err := storage.ParseKey(key.String())
	require.NoError(t, err)
	assert.True(t, key.Equal(parsed))

	addr, ok := parsed.SegmentAddress(2)
	require.True(t, ok)
	assert.Equal(t, address.NewInternal(address.InternalPoS), addr)
}

func TestKeyValidation(t *testing.T) {
	_, err := storage.NewKey("a", "")
	assert.Error(t, err, "empty segment")

	_, err = storage.NewKey("a/b")
	assert.Error(t, err, "separator inside segment")

	_, err = storage.NewKey("#notanaddress")
	assert.Error(t, err, "address marker on plain segment")

	_, err = storage.ParseKey("a//b")
	assert.Error(t, err, "empty segment in rendered form")

	_, err = storage.ParseKey("#zz/b")
	assert.Error(t, err, "malformed address segment")
}

func TestKeyPrefix(t *testing.T) {
	pool := storage.AddressKey(address.NewInternal(address.InternalEthBridgePool))
	pending := pool.MustPush("pending")
	entry := pending.MustPush("abcd")

	assert.True(t, entry.HasPrefix(pool))
	assert.True(t, entry.HasPrefix(pending))
	assert.True(t, entry.HasPrefix(storage.Key{}))
	assert.False(t, pending.HasPrefix(entry))

	other := storage.AddressKey(address.NewInternal(address.InternalPoS)).MustPush("pending")
	assert.False(t, other.HasPrefix(pool))
}

func TestKeyImmutability(t *testing.T) {
	base := storage.MustNewKey("queue")
	a := base.MustPush("left")
	b := base.MustPush("right")

	assert.Equal(t, "queue/left", a.String())
	assert.Equal(t, "queue/right", b.String())
	assert.Equal(t, "queue", base.String())
}

func TestKeySet(t *testing.T) {
	a := storage.MustNewKey("a")
	b := storage.MustNewKey("b")
	c := storage.MustNewKey("c")

	s := storage.NewKeySet(b, a, a)
	assert.Len(t, s, 2)
	assert.True(t, s.Contains(a))
	assert.False(t, s.Contains(c))

	s.Union(storage.NewKeySet(c))
	sorted := s.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, "a", sorted[0].String())
	assert.Equal(t, "c", sorted[2].String())
}
