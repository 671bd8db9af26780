// Package ethbridge models the Ethereum bridge pool: user-initiated
// transfers of value from this chain to Ethereum, waiting in a mempool-like
// pool with the gas fee escrowed to pay for their eventual relay.
package ethbridge

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	bin "github.com/gagliardetto/binary"

	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/codec"
	"github.com/khoangkhac118/namada/model/token"
)

// EthAddress is an Ethereum account or ERC20 contract address.
type EthAddress = ethcommon.Address

// TransferKind discriminates how the transferred asset is represented on
// this chain.
type TransferKind uint8

const (
	// KindErc20 is a wrapped ERC20 asset held by the multitoken account.
	KindErc20 TransferKind = iota
	// KindNut is a non-usable token: an asset seized from a compromised
	// bridge, only allowed to travel back to Ethereum.
	KindNut
)

func (k TransferKind) String() string {
	switch k {
	case KindErc20:
		return "erc20"
	case KindNut:
		return "nut"
	}
	return fmt.Sprintf("transfer_kind(%d)", uint8(k))
}

// transferKindTag is the canonical encoding of a TransferKind. Variant
// order is wire format; do not reorder.
type transferKindTag struct {
	Enum  bin.BorshEnum `borsh_enum:"true"`
	Erc20 bin.EmptyVariant
	Nut   bin.EmptyVariant
}

// TransferToEthereum describes the value movement a pending transfer asks
// for: which asset, from which local sender, to which Ethereum recipient.
type TransferToEthereum struct {
	Kind      transferKindTag
	Asset     EthAddress
	Recipient EthAddress
	Sender    address.Address
	Amount    token.Amount
}

// NewTransferToEthereum builds the transfer leg of a pending transfer.
func NewTransferToEthereum(kind TransferKind, asset EthAddress, recipient EthAddress, sender address.Address, amount token.Amount) TransferToEthereum {
	return TransferToEthereum{
		Kind:      transferKindTag{Enum: bin.BorshEnum(kind)},
		Asset:     asset,
		Recipient: recipient,
		Sender:    sender,
		Amount:    amount,
	}
}

// TransferKind returns the asset representation tag.
func (t TransferToEthereum) TransferKind() TransferKind {
	return TransferKind(t.Kind.Enum)
}

// GasFee is the relay fee leg of a pending transfer: the amount the payer
// escrows to the pool for the eventual Ethereum-side relay.
type GasFee struct {
	Amount token.Amount
	Payer  address.Address
}

// PendingTransfer is one entry in the bridge pool.
type PendingTransfer struct {
	Transfer TransferToEthereum
	GasFee   GasFee
}

// TokenAddress returns the multitoken sub-address holding balances of the
// transferred asset on this chain.
func (p PendingTransfer) TokenAddress() address.Address {
	asset := [address.HashLength]byte(p.Transfer.Asset)
	switch p.Transfer.TransferKind() {
	case KindNut:
		return address.NewNut(asset)
	default:
		return address.NewErc20(asset)
	}
}

// Keccak is the Ethereum-compatible content address of the transfer, the
// identity its pool entry is stored and relayed under.
func (p PendingTransfer) Keccak() [32]byte {
	var out [32]byte
	copy(out[:], ethcrypto.Keccak256(codec.MustMarshalBorsh(p)))
	return out
}

// Encode returns the canonical encoding stored at the pool key.
func (p PendingTransfer) Encode() []byte {
	return codec.MustMarshalBorsh(p)
}

// DecodePendingTransfer parses the encoding produced by Encode.
func DecodePendingTransfer(raw []byte) (PendingTransfer, error) {
	var p PendingTransfer
	if err := codec.UnmarshalBorsh(raw, &p); err != nil {
		return PendingTransfer{}, fmt.Errorf("invalid pending transfer encoding: %w", err)
	}
	return p, nil
}
