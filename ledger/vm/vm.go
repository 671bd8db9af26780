// Package vm defines the execution seam between the state machine and the
// code it runs. The protocol layer drives transaction code and validity
// predicates through these interfaces; concrete runtimes (and the test
// doubles) plug in behind them.
package vm

import (
	"context"

	"github.com/khoangkhac118/namada/ledger/gas"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/hash"
	"github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/model/tx"
)

// TxRunner executes a transaction's code section against the host state.
// It returns the addresses the code explicitly requested as verifiers.
type TxRunner interface {
	RunTx(ctx context.Context, codeHash hash.Hash, data []byte, meter *gas.TxGasMeter) (address.Set, error)
}

// VpInput is everything one validity-predicate evaluation sees: the
// transaction under judgment, the address whose state it guards, the keys
// the transaction changed, and the full verifier set.
type VpInput struct {
	Tx          *tx.Tx
	Address     address.Address
	KeysChanged storage.KeySet
	Verifiers   address.Set
}

// VpRunner evaluates one non-native validity predicate. The boolean is the
// predicate's verdict; a non-nil error means the evaluation itself failed
// and the verdict is void.
type VpRunner interface {
	RunVp(ctx context.Context, codeHash hash.Hash, input VpInput, meter *gas.VpGasMeter) (bool, error)
}

// Runner is a full runtime, able to execute both sides.
type Runner interface {
	TxRunner
	VpRunner
}
