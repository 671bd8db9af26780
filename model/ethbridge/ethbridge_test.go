package ethbridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/ethbridge"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/utils/unittest"
)

func TestPendingTransferEncodeDecode(t *testing.T) {
	original := unittest.PendingTransferFixture()

	decoded, err := ethbridge.DecodePendingTransfer(original.Encode())
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	_, err = ethbridge.DecodePendingTransfer([]byte("junk"))
	require.Error(t, err)
}

func TestPendingTransferKeccak(t *testing.T) {
	transfer := unittest.PendingTransferFixture()
	assert.Equal(t, transfer.Keccak(), transfer.Keccak(), "content address is stable")

	other := transfer
	other.GasFee.Amount++
	assert.NotEqual(t, transfer.Keccak(), other.Keccak(),
		"any field change moves the content address")
}

func TestTokenAddress(t *testing.T) {
	erc20 := unittest.PendingTransferFixture()
	require.Equal(t, ethbridge.KindErc20, erc20.Transfer.TransferKind())
	kind, internal := erc20.TokenAddress().IsInternal()
	require.True(t, internal)
	assert.Equal(t, address.InternalErc20, kind)

	nut := unittest.PendingTransferFixture(func(p *ethbridge.PendingTransfer) {
		p.Transfer = ethbridge.NewTransferToEthereum(
			ethbridge.KindNut,
			p.Transfer.Asset,
			p.Transfer.Recipient,
			p.Transfer.Sender,
			p.Transfer.Amount,
		)
	})
	kind, internal = nut.TokenAddress().IsInternal()
	require.True(t, internal)
	assert.Equal(t, address.InternalNut, kind)

	assert.NotEqual(t, erc20.TokenAddress(), nut.TokenAddress(),
		"seized assets live under a distinct sub-address")
}

func TestPoolKeys(t *testing.T) {
	transfer := unittest.PendingTransferFixture()
	key := ethbridge.PendingKey(transfer)

	assert.True(t, ethbridge.IsBridgePoolKey(key))
	assert.True(t, ethbridge.IsBridgePoolKey(ethbridge.SignedRootKey()))
	assert.True(t, key.HasPrefix(ethbridge.PendingKeyPrefix()))

	t.Run("foreign namespaces are not pool keys", func(t *testing.T) {
		foreign := storage.AddressKey(unittest.AddressFixture()).MustPush("pending_transfers")
		assert.False(t, ethbridge.IsBridgePoolKey(foreign))
		assert.False(t, ethbridge.IsBridgePoolKey(ethbridge.NativeErc20Key()),
			"the wrapped-native-token pointer lives under the bridge account")
	})
}
