package protocol

import (
	"errors"
	"fmt"

	"github.com/khoangkhac118/namada/model/address"
)

var (
	// ErrTxType marks a transaction type the dispatcher refuses outright,
	// such as a bare Raw transaction arriving from the outside.
	ErrTxType = errors.New("transaction type not allowed")

	// ErrReplay marks a transaction whose replay marker already exists.
	ErrReplay = errors.New("transaction already applied")
)

// MissingAddressError marks a verifier address with no validity predicate in
// storage. Fatal for the transaction.
type MissingAddressError struct {
	Address address.Address
}

func (e MissingAddressError) Error() string {
	return fmt.Sprintf("no validity predicate for address %s", e.Address)
}

// AccessForbiddenError marks a transaction touching an internal account
// that accepts no transaction at all.
type AccessForbiddenError struct {
	Address address.Address
}

func (e AccessForbiddenError) Error() string {
	return fmt.Sprintf("access to internal address %s is forbidden", e.Address)
}

// FeeError marks a wrapper whose fee could not be paid in full. The payer's
// balance has already been drained into the write log when it is returned.
type FeeError struct {
	Reason string
}

func (e FeeError) Error() string {
	return "fee payment failed: " + e.Reason
}

// PosVpRuntimeError wraps a panic escaping the proof-of-stake predicate.
type PosVpRuntimeError struct {
	Recovered any
}

func (e PosVpRuntimeError) Error() string {
	return fmt.Sprintf("proof-of-stake predicate panicked: %v", e.Recovered)
}

// vpError tags a predicate failure with the address it belongs to before the
// fold propagates it.
type vpError struct {
	addr address.Address
	err  error
}

func (e vpError) Error() string {
	return fmt.Sprintf("vp of %s: %v", e.addr, e.err)
}

func (e vpError) Unwrap() error {
	return e.err
}
