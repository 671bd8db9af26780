// Package address defines ledger account addresses. An address is one of
// three kinds: established (on-chain accounts created by transactions),
// implicit (derived from a public key), or internal (protocol-owned accounts
// with native validity predicates, drawn from a closed tag set).
package address

import (
	"encoding/hex"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// HashLength is the number of bytes in an established or implicit address
// payload. Internal Erc20, Nut and IbcToken tags carry a payload of the same
// width.
const HashLength = 20

// Kind discriminates the three address families.
type Kind uint8

const (
	KindEstablished Kind = iota
	KindImplicit
	KindInternal
)

// InternalKind discriminates the closed set of protocol-internal accounts.
// The set is closed: the VP dispatch switch matches it exhaustively, so
// adding a tag here is a compile-time-checked extension point.
type InternalKind uint8

const (
	InternalPoS InternalKind = iota
	InternalPosSlashPool
	InternalParameters
	InternalIbc
	InternalIbcToken
	InternalGovernance
	InternalEthBridge
	InternalEthBridgePool
	InternalErc20
	InternalNut
	InternalMultitoken
	InternalPgf
	InternalReplayProtection
)

func (k InternalKind) String() string {
	switch k {
	case InternalPoS:
		return "pos"
	case InternalPosSlashPool:
		return "pos_slash_pool"
	case InternalParameters:
		return "parameters"
	case InternalIbc:
		return "ibc"
	case InternalIbcToken:
		return "ibc_token"
	case InternalGovernance:
		return "governance"
	case InternalEthBridge:
		return "eth_bridge"
	case InternalEthBridgePool:
		return "eth_bridge_pool"
	case InternalErc20:
		return "erc20"
	case InternalNut:
		return "nut"
	case InternalMultitoken:
		return "multitoken"
	case InternalPgf:
		return "pgf"
	case InternalReplayProtection:
		return "replay_protection"
	}
	return fmt.Sprintf("internal(%d)", uint8(k))
}

// InternalAddress is the canonical encoding of an internal account tag.
// Variant order is wire format; do not reorder.
type InternalAddress struct {
	Enum             bin.BorshEnum `borsh_enum:"true"`
	PoS              bin.EmptyVariant
	PosSlashPool     bin.EmptyVariant
	Parameters       bin.EmptyVariant
	Ibc              bin.EmptyVariant
	IbcToken         [HashLength]byte
	Governance       bin.EmptyVariant
	EthBridge        bin.EmptyVariant
	EthBridgePool    bin.EmptyVariant
	Erc20            [HashLength]byte
	Nut              [HashLength]byte
	Multitoken       bin.EmptyVariant
	Pgf              bin.EmptyVariant
	ReplayProtection bin.EmptyVariant
}

// Address is a tagged union over the three address kinds. The zero-padded
// representation keeps Address comparable, so it can key maps and sets
// directly. Variant order is wire format; do not reorder.
type Address struct {
	Enum        bin.BorshEnum `borsh_enum:"true"`
	Established [HashLength]byte
	Implicit    [HashLength]byte
	Internal    InternalAddress
}

// NewEstablished builds an established address from its payload hash.
func NewEstablished(payload [HashLength]byte) Address {
	return Address{Enum: bin.BorshEnum(KindEstablished), Established: payload}
}

// NewImplicit builds an implicit address from a public key hash.
func NewImplicit(pkh [HashLength]byte) Address {
	return Address{Enum: bin.BorshEnum(KindImplicit), Implicit: pkh}
}

// NewInternal builds an internal address for a payload-less tag. Erc20, Nut
// and IbcToken tags carry a payload; use their dedicated constructors.
func NewInternal(kind InternalKind) Address {
	return Address{
		Enum:     bin.BorshEnum(KindInternal),
		Internal: InternalAddress{Enum: bin.BorshEnum(kind)},
	}
}

// NewErc20 builds the multitoken sub-address of a wrapped ERC20 asset.
func NewErc20(asset [HashLength]byte) Address {
	return Address{
		Enum:     bin.BorshEnum(KindInternal),
		Internal: InternalAddress{Enum: bin.BorshEnum(InternalErc20), Erc20: asset},
	}
}

// NewNut builds the multitoken sub-address of a non-usable-token asset.
func NewNut(asset [HashLength]byte) Address {
	return Address{
		Enum:     bin.BorshEnum(KindInternal),
		Internal: InternalAddress{Enum: bin.BorshEnum(InternalNut), Nut: asset},
	}
}

// NewIbcToken builds the multitoken sub-address of an IBC denomination hash.
func NewIbcToken(denom [HashLength]byte) Address {
	return Address{
		Enum:     bin.BorshEnum(KindInternal),
		Internal: InternalAddress{Enum: bin.BorshEnum(InternalIbcToken), IbcToken: denom},
	}
}

// Kind returns the address family.
func (a Address) Kind() Kind {
	return Kind(a.Enum)
}

// IsInternal reports whether the address is protocol-internal and, if so,
// which tag it carries.
func (a Address) IsInternal() (InternalKind, bool) {
	if a.Kind() != KindInternal {
		return 0, false
	}
	return InternalKind(a.Internal.Enum), true
}

// InternalPayload returns the asset payload of an Erc20, Nut or IbcToken
// internal address.
func (a Address) InternalPayload() [HashLength]byte {
	switch InternalKind(a.Internal.Enum) {
	case InternalIbcToken:
		return a.Internal.IbcToken
	case InternalErc20:
		return a.Internal.Erc20
	case InternalNut:
		return a.Internal.Nut
	}
	return [HashLength]byte{}
}

// Bytes returns the canonical encoding of the address: the enum discriminant
// followed by the variant payload.
func (a Address) Bytes() []byte {
	switch a.Kind() {
	case KindEstablished:
		return append([]byte{byte(KindEstablished)}, a.Established[:]...)
	case KindImplicit:
		return append([]byte{byte(KindImplicit)}, a.Implicit[:]...)
	case KindInternal:
		out := []byte{byte(KindInternal), byte(a.Internal.Enum)}
		switch InternalKind(a.Internal.Enum) {
		case InternalIbcToken, InternalErc20, InternalNut:
			payload := a.InternalPayload()
			out = append(out, payload[:]...)
		}
		return out
	}
	return nil
}

// String renders the canonical encoding in hex. This is also the form used
// for address segments inside storage keys.
func (a Address) String() string {
	return hex.EncodeToString(a.Bytes())
}

// Decode parses the hex form produced by String.
func Decode(s string) (Address, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address encoding: %w", err)
	}
	return FromBytes(raw)
}

// FromBytes parses the canonical encoding produced by Bytes.
func FromBytes(raw []byte) (Address, error) {
	if len(raw) == 0 {
		return Address{}, fmt.Errorf("empty address")
	}
	payload := raw[1:]
	switch Kind(raw[0]) {
	case KindEstablished:
		var p [HashLength]byte
		if len(payload) != HashLength {
			return Address{}, fmt.Errorf("invalid established address length %d", len(payload))
		}
		copy(p[:], payload)
		return NewEstablished(p), nil
	case KindImplicit:
		var p [HashLength]byte
		if len(payload) != HashLength {
			return Address{}, fmt.Errorf("invalid implicit address length %d", len(payload))
		}
		copy(p[:], payload)
		return NewImplicit(p), nil
	case KindInternal:
		if len(payload) == 0 {
			return Address{}, fmt.Errorf("missing internal address tag")
		}
		kind := InternalKind(payload[0])
		rest := payload[1:]
		switch kind {
		case InternalIbcToken, InternalErc20, InternalNut:
			var p [HashLength]byte
			if len(rest) != HashLength {
				return Address{}, fmt.Errorf("invalid %s address length %d", kind, len(rest))
			}
			copy(p[:], rest)
			switch kind {
			case InternalIbcToken:
				return NewIbcToken(p), nil
			case InternalErc20:
				return NewErc20(p), nil
			default:
				return NewNut(p), nil
			}
		default:
			if kind > InternalReplayProtection {
				return Address{}, fmt.Errorf("unknown internal address tag %d", kind)
			}
			if len(rest) != 0 {
				return Address{}, fmt.Errorf("unexpected payload on %s address", kind)
			}
			return NewInternal(kind), nil
		}
	}
	return Address{}, fmt.Errorf("unknown address kind %d", raw[0])
}

// Less orders addresses by their canonical encoding, the order used wherever
// a deterministic address sequence is required.
func (a Address) Less(other Address) bool {
	return a.String() < other.String()
}

// Sort sorts addresses in place into canonical order.
func Sort(addrs []Address) {
	slices.SortFunc(addrs, func(a, b Address) int {
		return strings.Compare(a.String(), b.String())
	})
}

// Set is an address set with deterministic iteration via Sorted.
type Set map[Address]struct{}

// NewSet builds a set from the given addresses.
func NewSet(addrs ...Address) Set {
	s := make(Set, len(addrs))
	for _, a := range addrs {
		s[a] = struct{}{}
	}
	return s
}

// Add inserts an address.
func (s Set) Add(a Address) {
	s[a] = struct{}{}
}

// Contains reports membership.
func (s Set) Contains(a Address) bool {
	_, ok := s[a]
	return ok
}

// Union inserts all addresses from other.
func (s Set) Union(other Set) {
	for a := range other {
		s[a] = struct{}{}
	}
}

// Sorted returns the members in canonical order.
func (s Set) Sorted() []Address {
	out := maps.Keys(s)
	Sort(out)
	return out
}
