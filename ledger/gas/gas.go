// Package gas meters the work a transaction performs. One TxGasMeter
// spans the whole transaction; every concurrently evaluated validity
// predicate gets its own VpGasMeter seeded from the transaction meter's
// remaining budget, and the consumed amounts are reconciled back into the
// transaction meter exactly once during the sequential result merge.
package gas

import (
	"errors"
	"fmt"
)

// Gas costs. Storage costs scale with the byte length of the value moved.
const (
	// TxSizeGasPerByte is charged per byte of the wrapper's wire encoding.
	TxSizeGasPerByte uint64 = 10
	// VerifyTxSigGas is charged per signature verification.
	VerifyTxSigGas uint64 = 9_795
	// StorageReadGasPerByte is charged per byte read from storage.
	StorageReadGasPerByte uint64 = 2
	// StorageWriteGasPerByte is charged per byte written to the write log.
	StorageWriteGasPerByte uint64 = 5
	// StorageAccessGas is the flat cost of touching a storage key.
	StorageAccessGas uint64 = 100
)

var (
	// ErrOutOfGas marks consumption past the meter's limit. Fatal for the
	// transaction; block processing continues.
	ErrOutOfGas = errors.New("gas limit exceeded")

	// ErrGasOverflow marks arithmetic overflow while summing gas. Treated
	// exactly like running out of gas.
	ErrGasOverflow = errors.New("gas overflow")
)

// Meter is the consumption interface lower layers charge against.
type Meter interface {
	Consume(gas uint64) error
}

// TxGasMeter enforces a transaction's gas limit.
type TxGasMeter struct {
	limit    uint64
	consumed uint64
}

// NewTxGasMeter builds a meter with the given limit.
func NewTxGasMeter(limit uint64) *TxGasMeter {
	return &TxGasMeter{limit: limit}
}

// Consume charges gas, failing with ErrOutOfGas once the limit is passed.
func (m *TxGasMeter) Consume(gas uint64) error {
	sum := m.consumed + gas
	if sum < m.consumed {
		return ErrGasOverflow
	}
	if sum > m.limit {
		return fmt.Errorf("%w: %d of %d", ErrOutOfGas, sum, m.limit)
	}
	m.consumed = sum
	return nil
}

// AddTxSizeGas charges for the wrapper's wire size.
func (m *TxGasMeter) AddTxSizeGas(txBytes []byte) error {
	size := uint64(len(txBytes))
	if size > 0 && TxSizeGasPerByte > ^uint64(0)/size {
		return ErrGasOverflow
	}
	return m.Consume(size * TxSizeGasPerByte)
}

// AddVpsGas folds the merged validity-predicate consumption back into the
// transaction meter.
func (m *TxGasMeter) AddVpsGas(gas uint64) error {
	return m.Consume(gas)
}

// WouldExceed reports whether charging extra would push the meter past its
// limit, without charging it.
func (m *TxGasMeter) WouldExceed(extra uint64) bool {
	sum := m.consumed + extra
	return sum < m.consumed || sum > m.limit
}

// GasUsed returns the consumption so far.
func (m *TxGasMeter) GasUsed() uint64 {
	return m.consumed
}

// Limit returns the meter's limit.
func (m *TxGasMeter) Limit() uint64 {
	return m.limit
}

// Remaining returns the budget left.
func (m *TxGasMeter) Remaining() uint64 {
	return m.limit - m.consumed
}

// VpGasMeter meters one validity-predicate evaluation. Its budget is the
// parent transaction meter's remaining gas at fork time; the parent is not
// touched until the merge step reads GasUsed.
type VpGasMeter struct {
	budget   uint64
	consumed uint64
}

// NewVpGasMeter forks a child meter from the transaction meter.
func NewVpGasMeter(parent *TxGasMeter) *VpGasMeter {
	return &VpGasMeter{budget: parent.Remaining()}
}

// Consume charges gas against the child budget.
func (m *VpGasMeter) Consume(gas uint64) error {
	sum := m.consumed + gas
	if sum < m.consumed {
		return ErrGasOverflow
	}
	if sum > m.budget {
		return fmt.Errorf("%w: %d of %d", ErrOutOfGas, sum, m.budget)
	}
	m.consumed = sum
	return nil
}

// ConsumeSignatureVerification charges one signature check.
func (m *VpGasMeter) ConsumeSignatureVerification() error {
	return m.Consume(VerifyTxSigGas)
}

// GasUsed returns the consumption so far.
func (m *VpGasMeter) GasUsed() uint64 {
	return m.consumed
}

// Sum adds two gas amounts with an overflow check.
func Sum(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrGasOverflow
	}
	return sum, nil
}
