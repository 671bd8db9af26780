package ethbridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoangkhac118/namada/ledger/gas"
	"github.com/khoangkhac118/namada/ledger/state"
	"github.com/khoangkhac118/namada/ledger/vp"
	vpethbridge "github.com/khoangkhac118/namada/ledger/vp/ethbridge"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/ethbridge"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/token"
	"github.com/khoangkhac118/namada/storage/memdb"
	"github.com/khoangkhac118/namada/utils/unittest"
)

func TestEthBridgeVp(t *testing.T) {
	predicate := vpethbridge.New(unittest.Logger())

	setup := func() (*memdb.DB, *state.WriteLog, *vp.Ctx, address.Address) {
		db := memdb.New()
		wlog := state.NewWriteLog()
		native := unittest.AddressFixture()
		ctx := vp.NewCtx(state.NewStore(db), wlog, gas.NewVpGasMeter(gas.NewTxGasMeter(1_000_000)), native)
		return db, wlog, ctx, native
	}

	escrowKey := func(native address.Address) storage.Key {
		return token.BalanceKey(native, ethbridge.BridgeAddress)
	}

	t.Run("escrow top-up through the pool passes", func(t *testing.T) {
		db, wlog, ctx, native := setup()
		unittest.BalanceSetup(db, native, ethbridge.BridgeAddress, 100)
		wlog.Write(escrowKey(native), token.Amount(110).Encode())

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(),
			address.NewSet(ethbridge.BridgePoolAddress))
		require.NoError(t, err)
		assert.True(t, accepted)
	})

	t.Run("top-up without the pool rejects", func(t *testing.T) {
		db, wlog, ctx, native := setup()
		unittest.BalanceSetup(db, native, ethbridge.BridgeAddress, 100)
		wlog.Write(escrowKey(native), token.Amount(110).Encode())

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(), address.NewSet())
		require.NoError(t, err)
		assert.False(t, accepted)
	})

	t.Run("draining the escrow rejects", func(t *testing.T) {
		db, wlog, ctx, native := setup()
		unittest.BalanceSetup(db, native, ethbridge.BridgeAddress, 100)
		wlog.Write(escrowKey(native), token.Amount(90).Encode())

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(),
			address.NewSet(ethbridge.BridgePoolAddress))
		require.NoError(t, err)
		assert.False(t, accepted)
	})

	t.Run("non-native balance at the escrow rejects", func(t *testing.T) {
		db, wlog, ctx, _ := setup()
		other := unittest.AddressFixture()
		unittest.BalanceSetup(db, other, ethbridge.BridgeAddress, 0)
		wlog.Write(token.BalanceKey(other, ethbridge.BridgeAddress), token.Amount(10).Encode())

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(),
			address.NewSet(ethbridge.BridgePoolAddress))
		require.NoError(t, err)
		assert.False(t, accepted)
	})

	t.Run("direct namespace write rejects", func(t *testing.T) {
		_, wlog, ctx, _ := setup()
		wlog.Write(storage.AddressKey(ethbridge.BridgeAddress).MustPush("config"), []byte{1})

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(),
			address.NewSet(ethbridge.BridgePoolAddress))
		require.NoError(t, err)
		assert.False(t, accepted)
	})
}
