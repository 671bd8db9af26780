package tx_test

import (
	"testing"

	"github.com/onflow/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoangkhac118/namada/ledger/gas"
	"github.com/khoangkhac118/namada/model/account"
	"github.com/khoangkhac118/namada/model/hash"
	"github.com/khoangkhac118/namada/model/keys"
	"github.com/khoangkhac118/namada/model/tx"
	"github.com/khoangkhac118/namada/utils/unittest"
)

// countingSigMeter meters signature verifications out of a fixed budget.
type countingSigMeter struct {
	budget int
	used   int
}

func (m *countingSigMeter) ConsumeSignatureVerification() error {
	if m.used >= m.budget {
		return gas.ErrOutOfGas
	}
	m.used++
	return nil
}

func TestHeaderHash(t *testing.T) {
	transaction := unittest.TxFixture()
	before := transaction.HeaderHash()

	t.Run("changes with the transaction type", func(t *testing.T) {
		transaction.UpdateHeader(tx.DecryptedType(tx.NewDecrypted()))
		assert.NotEqual(t, before, transaction.HeaderHash())
		transaction.UpdateHeader(tx.RawType())
		assert.Equal(t, before, transaction.HeaderHash())
	})

	t.Run("changes with section references", func(t *testing.T) {
		transaction.AddData([]byte("other payload"))
		assert.NotEqual(t, before, transaction.HeaderHash())
	})
}

func TestGetSectionResolvesHeader(t *testing.T) {
	transaction := unittest.TxFixture()

	sec, ok := transaction.GetSection(transaction.HeaderHash())
	require.True(t, ok)
	assert.Equal(t, tx.KindHeader, sec.Kind())

	_, ok = transaction.GetSection(unittest.HashFixture())
	assert.False(t, ok)
}

func TestSechashesLeadWithHeader(t *testing.T) {
	transaction := unittest.TxFixture()
	hashes := transaction.Sechashes()
	require.Len(t, hashes, len(transaction.Sections)+1)
	assert.Equal(t, transaction.HeaderHash(), hashes[0])
	for i := range transaction.Sections {
		assert.Equal(t, transaction.Sections[i].GetHash(), hashes[i+1])
	}
}

func TestWalletFilter(t *testing.T) {
	transaction := unittest.TxFixture()
	transaction.AddExtraSection([]byte("auxiliary payload"))
	before := transaction.Sechashes()

	originals := transaction.WalletFilter()
	require.Len(t, originals, 2, "one code and one extra-data section")

	assert.Equal(t, before, transaction.Sechashes(),
		"contraction must not move any section hash")
	_, inline := transaction.Code()
	assert.False(t, inline, "code payload is contracted away")

	for i := range originals {
		switch originals[i].Kind() {
		case tx.KindCode:
			_, ok := originals[i].Code.Code.Bytes()
			assert.True(t, ok, "the returned originals keep their payloads")
		case tx.KindExtraData:
			_, ok := originals[i].ExtraData.Code.Bytes()
			assert.True(t, ok, "the returned originals keep their payloads")
		}
	}
}

func TestProtocolFilter(t *testing.T) {
	transaction := unittest.TxFixture()
	transaction.AddMaspBuilder(tx.MaspBuilder{
		Target:   unittest.HashFixture(),
		Metadata: []byte("viewing keys live here"),
	})

	removed := transaction.ProtocolFilter()
	require.Len(t, removed, 1)
	assert.Equal(t, tx.KindMaspBuilder, removed[0].Kind())
	for i := range transaction.Sections {
		assert.NotEqual(t, tx.KindMaspBuilder, transaction.Sections[i].Kind())
	}

	assert.Empty(t, transaction.ProtocolFilter(), "second pass finds nothing")
}

func TestSignWrapperValidateTx(t *testing.T) {
	sk := unittest.PrivateKeyFixture()
	pk, err := keys.PublicKeyFromCrypto(sk.PublicKey())
	require.NoError(t, err)

	transaction := unittest.TxFixture(
		unittest.WithWrapper(pk, unittest.AddressFixture(), 1, 100),
	)
	require.NoError(t, transaction.SignWrapper(sk))

	sig, err := transaction.ValidateTx()
	require.NoError(t, err)
	require.NotNil(t, sig)

	t.Run("tampered section rejects", func(t *testing.T) {
		tampered := unittest.TxFixture(
			unittest.WithWrapper(pk, unittest.AddressFixture(), 1, 100),
		)
		require.NoError(t, tampered.SignWrapper(sk))
		tampered.AddData([]byte("inserted after signing"))
		_, err := tampered.ValidateTx()
		require.ErrorIs(t, err, tx.ErrInvalidWrapperSignature)
	})

	t.Run("wrong signer rejects", func(t *testing.T) {
		otherPk, err := keys.PublicKeyFromCrypto(unittest.PrivateKeyFixture().PublicKey())
		require.NoError(t, err)
		forged := unittest.TxFixture(
			unittest.WithWrapper(otherPk, unittest.AddressFixture(), 1, 100),
		)
		require.NoError(t, forged.SignWrapper(sk))
		_, err = forged.ValidateTx()
		require.ErrorIs(t, err, tx.ErrInvalidWrapperSignature)
	})

	t.Run("raw carries no authentication", func(t *testing.T) {
		sig, err := unittest.TxFixture().ValidateTx()
		require.NoError(t, err)
		assert.Nil(t, sig)
	})
}

func TestInnerSectionTargetsSorted(t *testing.T) {
	transaction := unittest.TxFixture()
	transaction.AddData([]byte("a second payload"))
	transaction.AddExtraSection([]byte("not a target"))

	targets := transaction.InnerSectionTargets()
	require.Len(t, targets, 3, "two data sections and one code section")
	for i := 1; i < len(targets); i++ {
		assert.True(t, targets[i-1].Less(targets[i]))
	}
}

func TestVerifySectionSignatures(t *testing.T) {
	sks := []crypto.PrivateKey{
		unittest.PrivateKeyFixture(),
		unittest.PrivateKeyFixture(),
		unittest.PrivateKeyFixture(),
	}
	pks := make([]keys.PublicKey, len(sks))
	for i, sk := range sks {
		pk, err := keys.PublicKeyFromCrypto(sk.PublicKey())
		require.NoError(t, err)
		pks[i] = pk
	}
	keyMap, err := account.NewPublicKeysIndexMap(pks)
	require.NoError(t, err)

	signedTx := func(signers []crypto.PrivateKey) *tx.Tx {
		transaction := unittest.TxFixture()
		require.NoError(t, transaction.SignRaw(signers, keyMap))
		return transaction
	}

	targetsOf := func(transaction *tx.Tx) []hash.Hash {
		return transaction.InnerSectionTargets()
	}

	t.Run("quorum met", func(t *testing.T) {
		transaction := signedTx(sks[:2])
		meter := &countingSigMeter{budget: 10}
		require.NoError(t, transaction.VerifySectionSignatures(
			targetsOf(transaction), keyMap, 2, tx.MaxSignatures, meter))
		assert.Equal(t, 2, meter.used, "verification stops at the quorum")
	})

	t.Run("one short of quorum", func(t *testing.T) {
		transaction := signedTx(sks[:2])
		err := transaction.VerifySectionSignatures(
			targetsOf(transaction), keyMap, 3, tx.MaxSignatures, &countingSigMeter{budget: 10})
		require.ErrorIs(t, err, tx.ErrInvalidSectionSignature)
	})

	t.Run("invalid signatures do not count", func(t *testing.T) {
		transaction := signedTx(sks[:1])
		// Graft a signature computed over different targets onto the section.
		badSec, err := tx.NewMultiSignature(
			[]hash.Hash{unittest.HashFixture()}, sks[1:2], keyMap)
		require.NoError(t, err)
		for i := range transaction.Sections {
			if transaction.Sections[i].Kind() == tx.KindMultiSignature {
				transaction.Sections[i].MultiSignature.Signatures = append(
					transaction.Sections[i].MultiSignature.Signatures,
					badSec.Signatures...,
				)
			}
		}
		err = transaction.VerifySectionSignatures(
			targetsOf(transaction), keyMap, 2, tx.MaxSignatures, &countingSigMeter{budget: 10})
		require.ErrorIs(t, err, tx.ErrInvalidSectionSignature)
	})

	t.Run("too many signatures", func(t *testing.T) {
		transaction := signedTx(sks)
		err := transaction.VerifySectionSignatures(
			targetsOf(transaction), keyMap, 2, 2, &countingSigMeter{budget: 10})
		require.ErrorIs(t, err, tx.ErrInvalidSectionSignature)
	})

	t.Run("gas exhaustion is fatal, not a rejection", func(t *testing.T) {
		transaction := signedTx(sks)
		err := transaction.VerifySectionSignatures(
			targetsOf(transaction), keyMap, 3, tx.MaxSignatures, &countingSigMeter{budget: 1})
		require.ErrorIs(t, err, gas.ErrOutOfGas)
	})
}
