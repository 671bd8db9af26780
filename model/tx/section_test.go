package tx_test

import (
	"testing"

	"github.com/onflow/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/khoangkhac118/namada/model/account"
	"github.com/khoangkhac118/namada/model/hash"
	"github.com/khoangkhac118/namada/model/keys"
	"github.com/khoangkhac118/namada/model/tx"
	"github.com/khoangkhac118/namada/utils/unittest"
)

func TestSectionHashSensitivity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 1, 128).Draw(t, "payload")
		flip := rapid.IntRange(0, len(payload)-1).Draw(t, "flip")

		d := tx.NewData(payload)
		sec := tx.DataSection(d)
		original := sec.GetHash()

		mutated := make([]byte, len(payload))
		copy(mutated, payload)
		mutated[flip] ^= 0x01
		d.Data = mutated
		flipped := tx.DataSection(d)
		assert.NotEqual(t, original, flipped.GetHash(),
			"flipping any byte must change the section hash")
	})
}

func TestSectionHashDependsOnKind(t *testing.T) {
	code := tx.NewCode([]byte("payload"))
	asCode := tx.CodeSection(code)
	asExtra := tx.ExtraDataSection(code)
	assert.NotEqual(t, asCode.GetHash(), asExtra.GetHash(),
		"the discriminant byte feeds the section hash")
}

func TestCodeHashSurvivesContraction(t *testing.T) {
	code := tx.NewCode([]byte("some wasm blob"))
	sec := tx.CodeSection(code)
	before := sec.GetHash()

	sec.Code.Code.Contract()
	assert.Equal(t, before, sec.GetHash())

	_, inline := sec.Code.Code.Bytes()
	assert.False(t, inline)
}

func TestSignatureVerify(t *testing.T) {
	sk := unittest.PrivateKeyFixture()
	pk, err := keys.PublicKeyFromCrypto(sk.PublicKey())
	require.NoError(t, err)

	targets := []hash.Hash{unittest.HashFixture(), unittest.HashFixture()}
	sec, err := tx.NewSignature(targets, sk)
	require.NoError(t, err)
	require.NoError(t, sec.Verify(pk))

	// Signature by a different key.
	otherPk, err := keys.PublicKeyFromCrypto(unittest.PrivateKeyFixture().PublicKey())
	require.NoError(t, err)
	require.ErrorIs(t, sec.Verify(otherPk), tx.ErrInvalidWrapperSignature)

	// Tampered target list breaks the raw hash.
	sec.Targets = append(sec.Targets, unittest.HashFixture())
	require.ErrorIs(t, sec.Verify(pk), tx.ErrInvalidWrapperSignature)

	// Unsigned section.
	unsigned := tx.Signature{Targets: targets}
	require.ErrorIs(t, unsigned.Verify(pk), tx.ErrMissingData)
}

func TestMultiSignatureRawHashIgnoresSignatures(t *testing.T) {
	sk := unittest.PrivateKeyFixture()
	pk, err := keys.PublicKeyFromCrypto(sk.PublicKey())
	require.NoError(t, err)
	keyMap := account.SingleKey(pk)

	targets := []hash.Hash{unittest.HashFixture()}
	sec, err := tx.NewMultiSignature(targets, []crypto.PrivateKey{sk}, keyMap)
	require.NoError(t, err)
	require.Len(t, sec.Signatures, 1)

	stripped := tx.MultiSignature{Targets: targets}
	assert.Equal(t, stripped.RawHash(), sec.RawHash())

	valid, err := sec.Signatures[0].Verify(keyMap, sec.RawHash())
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestMultiSignatureSkipsUnknownKeys(t *testing.T) {
	known := unittest.PrivateKeyFixture()
	stranger := unittest.PrivateKeyFixture()
	knownPk, err := keys.PublicKeyFromCrypto(known.PublicKey())
	require.NoError(t, err)
	keyMap := account.SingleKey(knownPk)

	sec, err := tx.NewMultiSignature(
		[]hash.Hash{unittest.HashFixture()},
		[]crypto.PrivateKey{stranger, known},
		keyMap,
	)
	require.NoError(t, err)
	require.Len(t, sec.Signatures, 1, "keys outside the account map are skipped")
	assert.Equal(t, uint8(0), sec.Signatures[0].Index)
}

func TestSignatureIndexUnresolvableIndex(t *testing.T) {
	pk := unittest.PublicKeyFixture()
	keyMap := account.SingleKey(pk)

	_, err := tx.SignatureIndex{Index: 3}.Verify(keyMap, unittest.HashFixture())
	require.ErrorIs(t, err, tx.ErrMissingData)
}
