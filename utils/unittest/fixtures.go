// Package unittest holds the fixtures and fakes shared by package tests.
package unittest

import (
	"context"
	"crypto/rand"

	"github.com/onflow/crypto"

	"github.com/khoangkhac118/namada/ledger/gas"
	"github.com/khoangkhac118/namada/ledger/state"
	"github.com/khoangkhac118/namada/ledger/vm"
	"github.com/khoangkhac118/namada/ledger/vp"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/ethbridge"
	"github.com/khoangkhac118/namada/model/hash"
	"github.com/khoangkhac118/namada/model/keys"
	modelstorage "github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/token"
	"github.com/khoangkhac118/namada/model/tx"
	"github.com/khoangkhac118/namada/storage/memdb"
)

// RandomBytes returns n random bytes.
func RandomBytes(n int) []byte {
	out := make([]byte, n)
	if _, err := rand.Read(out); err != nil {
		panic(err)
	}
	return out
}

// PrivateKeyFixture generates a fresh P-256 private key.
func PrivateKeyFixture() crypto.PrivateKey {
	return PrivateKeyWithAlgo(crypto.ECDSAP256)
}

// PrivateKeyWithAlgo generates a fresh private key of the given scheme.
func PrivateKeyWithAlgo(algo crypto.SigningAlgorithm) crypto.PrivateKey {
	sk, err := crypto.GeneratePrivateKey(algo, RandomBytes(crypto.KeyGenSeedMinLen))
	if err != nil {
		panic(err)
	}
	return sk
}

// PublicKeyFixture generates a fresh scheme-tagged public key.
func PublicKeyFixture() keys.PublicKey {
	pk, err := keys.PublicKeyFromCrypto(PrivateKeyFixture().PublicKey())
	if err != nil {
		panic(err)
	}
	return pk
}

// AddressFixture generates a random established address.
func AddressFixture() address.Address {
	var payload [address.HashLength]byte
	copy(payload[:], RandomBytes(address.HashLength))
	return address.NewEstablished(payload)
}

// EthAddressFixture generates a random Ethereum address.
func EthAddressFixture() ethbridge.EthAddress {
	var out ethbridge.EthAddress
	copy(out[:], RandomBytes(len(out)))
	return out
}

// HashFixture generates a random digest.
func HashFixture() hash.Hash {
	var out hash.Hash
	copy(out[:], RandomBytes(hash.Length))
	return out
}

// TxFixture builds a Raw transaction with one code and one data section,
// then applies opts.
func TxFixture(opts ...func(*tx.Tx)) *tx.Tx {
	t := tx.NewTx(ChainID, nil)
	t.AddCode(RandomBytes(32))
	t.AddData(RandomBytes(64))
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithWrapper turns the fixture into a wrapper paying fees in tok.
func WithWrapper(pk keys.PublicKey, tok address.Address, feeAmount token.Amount, gasLimit tx.GasLimit) func(*tx.Tx) {
	return func(t *tx.Tx) {
		t.AddWrapper(tx.Fee{Amount: feeAmount, Token: tok}, pk, 0, gasLimit, nil)
	}
}

// PendingTransferFixture builds a bridge-pool transfer with distinct random
// sender and payer, then applies opts.
func PendingTransferFixture(opts ...func(*ethbridge.PendingTransfer)) ethbridge.PendingTransfer {
	transfer := ethbridge.PendingTransfer{
		Transfer: ethbridge.NewTransferToEthereum(
			ethbridge.KindErc20,
			EthAddressFixture(),
			EthAddressFixture(),
			AddressFixture(),
			100,
		),
		GasFee: ethbridge.GasFee{
			Amount: 10,
			Payer:  AddressFixture(),
		},
	}
	for _, opt := range opts {
		opt(&transfer)
	}
	return transfer
}

// StateFixture builds an empty in-memory store with a fresh write log.
func StateFixture() (*state.Store, *state.WriteLog) {
	return state.NewStore(memdb.New()), state.NewWriteLog()
}

// Seed writes a committed value directly into the store backing db.
func Seed(db *memdb.DB, key modelstorage.Key, value []byte) {
	if err := db.Set(key, value); err != nil {
		panic(err)
	}
}

// BalanceSetup seeds a committed balance.
func BalanceSetup(db *memdb.DB, tok, owner address.Address, amount token.Amount) {
	Seed(db, token.BalanceKey(tok, owner), amount.Encode())
}

// FakeRunner is a configurable vm.Runner.
type FakeRunner struct {
	// OnTx handles RunTx; nil means "no verifiers, no error".
	OnTx func(codeHash hash.Hash, data []byte, meter *gas.TxGasMeter) (address.Set, error)
	// OnVp handles RunVp; nil accepts everything.
	OnVp func(codeHash hash.Hash, input vm.VpInput, meter *gas.VpGasMeter) (bool, error)
}

var _ vm.Runner = (*FakeRunner)(nil)

func (r *FakeRunner) RunTx(_ context.Context, codeHash hash.Hash, data []byte, meter *gas.TxGasMeter) (address.Set, error) {
	if r.OnTx == nil {
		return address.NewSet(), nil
	}
	return r.OnTx(codeHash, data, meter)
}

func (r *FakeRunner) RunVp(_ context.Context, codeHash hash.Hash, input vm.VpInput, meter *gas.VpGasMeter) (bool, error) {
	if r.OnVp == nil {
		return true, nil
	}
	return r.OnVp(codeHash, input, meter)
}

// FakeVp is a configurable native predicate.
type FakeVp struct {
	Accept bool
	Err    error
	// Panic, when set, makes the predicate panic with this value.
	Panic any
}

var _ vp.VP = (*FakeVp)(nil)

func (f *FakeVp) ValidateTx(*vp.Ctx, *tx.Tx, modelstorage.KeySet, address.Set) (bool, error) {
	if f.Panic != nil {
		panic(f.Panic)
	}
	return f.Accept, f.Err
}

// ChainID is the fixture chain id used across tests.
const ChainID = "namada-test.0000000000000"
