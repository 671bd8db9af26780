// Package token models fungible token amounts and the storage schema for
// account balances. Amounts are unsigned integers in the token's base unit;
// all arithmetic is checked, and overflow is surfaced to callers rather than
// wrapped.
package token

import (
	"fmt"

	"github.com/khoangkhac118/namada/model/codec"
)

// Amount is a token amount in base units.
type Amount uint64

// CheckedAdd returns a+b, reporting false on overflow.
func (a Amount) CheckedAdd(b Amount) (Amount, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// CheckedSub returns a-b, reporting false on underflow.
func (a Amount) CheckedSub(b Amount) (Amount, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// CheckedMul returns a*b, reporting false on overflow.
func (a Amount) CheckedMul(b Amount) (Amount, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/a != b {
		return 0, false
	}
	return product, true
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == 0
}

func (a Amount) String() string {
	return fmt.Sprintf("%d", uint64(a))
}

// Encode returns the canonical encoding stored under balance keys.
func (a Amount) Encode() []byte {
	return codec.MustMarshalBorsh(uint64(a))
}

// DecodeAmount parses the encoding produced by Encode.
func DecodeAmount(raw []byte) (Amount, error) {
	var v uint64
	if err := codec.UnmarshalBorsh(raw, &v); err != nil {
		return 0, fmt.Errorf("invalid amount encoding: %w", err)
	}
	return Amount(v), nil
}

// Sign classifies a balance delta.
type Sign int8

const (
	Negative Sign = iota - 1
	Zero
	Positive
)

func (s Sign) String() string {
	switch s {
	case Negative:
		return "negative"
	case Positive:
		return "positive"
	}
	return "zero"
}

// Delta is the signed difference between two balances of one account.
type Delta struct {
	Sign      Sign
	Magnitude Amount
}

// DeltaOf returns post minus pre as a signed delta.
func DeltaOf(pre, post Amount) Delta {
	switch {
	case post > pre:
		return Delta{Sign: Positive, Magnitude: post - pre}
	case pre > post:
		return Delta{Sign: Negative, Magnitude: pre - post}
	}
	return Delta{Sign: Zero}
}

// Debited reports whether the delta is a decrease of exactly amount.
func (d Delta) Debited(amount Amount) bool {
	return d.Sign == Negative && d.Magnitude == amount || amount == 0 && d.Sign == Zero
}

// Credited reports whether the delta is an increase of exactly amount.
func (d Delta) Credited(amount Amount) bool {
	return d.Sign == Positive && d.Magnitude == amount || amount == 0 && d.Sign == Zero
}

func (d Delta) String() string {
	switch d.Sign {
	case Negative:
		return "-" + d.Magnitude.String()
	case Positive:
		return "+" + d.Magnitude.String()
	}
	return "0"
}
