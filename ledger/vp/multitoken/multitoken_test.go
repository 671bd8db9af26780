package multitoken_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoangkhac118/namada/ledger/gas"
	"github.com/khoangkhac118/namada/ledger/state"
	"github.com/khoangkhac118/namada/ledger/vp"
	"github.com/khoangkhac118/namada/ledger/vp/multitoken"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/codec"
	"github.com/khoangkhac118/namada/model/token"
	"github.com/khoangkhac118/namada/storage/memdb"
	"github.com/khoangkhac118/namada/utils/unittest"
)

func TestMultitokenVp(t *testing.T) {
	predicate := multitoken.New(unittest.Logger())

	setup := func() (*memdb.DB, *state.WriteLog, *vp.Ctx) {
		db := memdb.New()
		wlog := state.NewWriteLog()
		ctx := vp.NewCtx(state.NewStore(db), wlog, gas.NewVpGasMeter(gas.NewTxGasMeter(1_000_000)), unittest.AddressFixture())
		return db, wlog, ctx
	}

	t.Run("balanced transfer passes", func(t *testing.T) {
		db, wlog, ctx := setup()
		tok := unittest.AddressFixture()
		from := unittest.AddressFixture()
		to := unittest.AddressFixture()
		unittest.BalanceSetup(db, tok, from, 100)
		unittest.BalanceSetup(db, tok, to, 0)
		wlog.Write(token.BalanceKey(tok, from), token.Amount(70).Encode())
		wlog.Write(token.BalanceKey(tok, to), token.Amount(30).Encode())

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(), address.NewSet())
		require.NoError(t, err)
		assert.True(t, accepted)
	})

	t.Run("value out of thin air rejects", func(t *testing.T) {
		db, wlog, ctx := setup()
		tok := unittest.AddressFixture()
		to := unittest.AddressFixture()
		unittest.BalanceSetup(db, tok, to, 0)
		wlog.Write(token.BalanceKey(tok, to), token.Amount(30).Encode())

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(), address.NewSet())
		require.NoError(t, err)
		assert.False(t, accepted)
	})

	t.Run("burn without a supply change rejects", func(t *testing.T) {
		db, wlog, ctx := setup()
		tok := unittest.AddressFixture()
		from := unittest.AddressFixture()
		unittest.BalanceSetup(db, tok, from, 100)
		wlog.Write(token.BalanceKey(tok, from), token.Amount(60).Encode())

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(), address.NewSet())
		require.NoError(t, err)
		assert.False(t, accepted)
	})

	t.Run("authorized mint passes", func(t *testing.T) {
		db, wlog, ctx := setup()
		tok := unittest.AddressFixture()
		to := unittest.AddressFixture()
		minter := unittest.AddressFixture()
		unittest.BalanceSetup(db, tok, to, 0)
		unittest.Seed(db, token.MintedBalanceKey(tok), token.Amount(0).Encode())
		unittest.Seed(db, token.MinterKey(tok), codec.MustMarshalBorsh(minter))
		wlog.Write(token.BalanceKey(tok, to), token.Amount(30).Encode())
		wlog.Write(token.MintedBalanceKey(tok), token.Amount(30).Encode())

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(), address.NewSet(minter))
		require.NoError(t, err)
		assert.True(t, accepted)
	})

	t.Run("mint the minter did not authorize rejects", func(t *testing.T) {
		db, wlog, ctx := setup()
		tok := unittest.AddressFixture()
		to := unittest.AddressFixture()
		minter := unittest.AddressFixture()
		unittest.BalanceSetup(db, tok, to, 0)
		unittest.Seed(db, token.MintedBalanceKey(tok), token.Amount(0).Encode())
		unittest.Seed(db, token.MinterKey(tok), codec.MustMarshalBorsh(minter))
		wlog.Write(token.BalanceKey(tok, to), token.Amount(30).Encode())
		wlog.Write(token.MintedBalanceKey(tok), token.Amount(30).Encode())

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(), address.NewSet())
		require.NoError(t, err)
		assert.False(t, accepted)
	})

	t.Run("supply change without a registered minter rejects", func(t *testing.T) {
		db, wlog, ctx := setup()
		tok := unittest.AddressFixture()
		to := unittest.AddressFixture()
		unittest.BalanceSetup(db, tok, to, 0)
		unittest.Seed(db, token.MintedBalanceKey(tok), token.Amount(0).Encode())
		wlog.Write(token.BalanceKey(tok, to), token.Amount(30).Encode())
		wlog.Write(token.MintedBalanceKey(tok), token.Amount(30).Encode())

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(), address.NewSet())
		require.NoError(t, err)
		assert.False(t, accepted)
	})

	t.Run("supply change not covering the movement rejects", func(t *testing.T) {
		db, wlog, ctx := setup()
		tok := unittest.AddressFixture()
		to := unittest.AddressFixture()
		minter := unittest.AddressFixture()
		unittest.BalanceSetup(db, tok, to, 0)
		unittest.Seed(db, token.MintedBalanceKey(tok), token.Amount(0).Encode())
		unittest.Seed(db, token.MinterKey(tok), codec.MustMarshalBorsh(minter))
		wlog.Write(token.BalanceKey(tok, to), token.Amount(30).Encode())
		wlog.Write(token.MintedBalanceKey(tok), token.Amount(20).Encode())

		accepted, err := predicate.ValidateTx(ctx, unittest.TxFixture(), wlog.GetKeys(), address.NewSet(minter))
		require.NoError(t, err)
		assert.False(t, accepted)
	})
}
