package token_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/token"
)

func TestCheckedArithmetic(t *testing.T) {
	sum, ok := token.Amount(40).CheckedAdd(2)
	require.True(t, ok)
	assert.Equal(t, token.Amount(42), sum)

	_, ok = token.Amount(math.MaxUint64).CheckedAdd(1)
	assert.False(t, ok)

	diff, ok := token.Amount(40).CheckedSub(2)
	require.True(t, ok)
	assert.Equal(t, token.Amount(38), diff)

	_, ok = token.Amount(1).CheckedSub(2)
	assert.False(t, ok)

	product, ok := token.Amount(6).CheckedMul(7)
	require.True(t, ok)
	assert.Equal(t, token.Amount(42), product)

	product, ok = token.Amount(0).CheckedMul(math.MaxUint64)
	require.True(t, ok)
	assert.True(t, product.IsZero())

	_, ok = token.Amount(math.MaxUint64).CheckedMul(2)
	assert.False(t, ok)
}

func TestAmountEncoding(t *testing.T) {
	for _, a := range []token.Amount{0, 1, 1_000_000, math.MaxUint64} {
		decoded, err := token.DecodeAmount(a.Encode())
		require.NoError(t, err)
		assert.Equal(t, a, decoded)
	}

	_, err := token.DecodeAmount([]byte{1, 2, 3})
	assert.Error(t, err)

	_, err = token.DecodeAmount(append(token.Amount(1).Encode(), 0))
	assert.Error(t, err, "trailing bytes")
}

func TestDelta(t *testing.T) {
	d := token.DeltaOf(100, 60)
	assert.Equal(t, token.Negative, d.Sign)
	assert.True(t, d.Debited(40))
	assert.False(t, d.Debited(41))
	assert.False(t, d.Credited(40))
	assert.Equal(t, "-40", d.String())

	d = token.DeltaOf(60, 100)
	assert.Equal(t, token.Positive, d.Sign)
	assert.True(t, d.Credited(40))
	assert.False(t, d.Debited(40))

	d = token.DeltaOf(7, 7)
	assert.Equal(t, token.Zero, d.Sign)
	assert.True(t, d.Debited(0))
	assert.True(t, d.Credited(0))
	assert.Equal(t, "0", d.String())
}

func TestBalanceKeySchema(t *testing.T) {
	nam := address.NewEstablished([address.HashLength]byte{1})
	owner := address.NewImplicit([address.HashLength]byte{2})

	key := token.BalanceKey(nam, owner)
	assert.Equal(t, "#"+nam.String()+"/balance/#"+owner.String(), key.String())
	assert.True(t, key.HasPrefix(token.BalancePrefix(nam)))

	gotToken, gotOwner, ok := token.IsBalanceKey(key)
	require.True(t, ok)
	assert.Equal(t, nam, gotToken)
	assert.Equal(t, owner, gotOwner)

	_, _, ok = token.IsBalanceKey(token.MintedBalanceKey(nam))
	assert.False(t, ok, "minted key is not an account balance")

	_, _, ok = token.IsBalanceKey(token.BalancePrefix(nam))
	assert.False(t, ok, "prefix alone is not a balance key")
}
