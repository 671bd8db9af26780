package token

import (
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/storage"
)

const (
	balanceSegment = "balance"
	mintedSegment  = "minted"
	minterSegment  = "minter"
)

// BalanceKey is the storage key holding owner's balance of token.
func BalanceKey(token, owner address.Address) storage.Key {
	return BalancePrefix(token).PushAddress(owner)
}

// BalancePrefix is the storage prefix under which all balances of token
// live.
func BalancePrefix(token address.Address) storage.Key {
	return storage.AddressKey(token).MustPush(balanceSegment)
}

// MintedBalanceKey is the storage key holding the total minted supply of
// token.
func MintedBalanceKey(token address.Address) storage.Key {
	return BalancePrefix(token).MustPush(mintedSegment)
}

// MinterKey is the storage key holding the address allowed to change
// token's minted supply.
func MinterKey(token address.Address) storage.Key {
	return storage.AddressKey(token).MustPush(minterSegment)
}

// IsMintedBalanceKey reports whether key holds a token's minted supply and,
// if so, of which token.
func IsMintedBalanceKey(key storage.Key) (address.Address, bool) {
	if key.Len() != 3 || key.Segment(1) != balanceSegment || key.Segment(2) != mintedSegment {
		return address.Address{}, false
	}
	return key.SegmentAddress(0)
}

// IsBalanceKey reports whether key holds a balance and, if so, of which
// token and owner. Minted-supply keys are not balance keys.
func IsBalanceKey(key storage.Key) (token, owner address.Address, ok bool) {
	if key.Len() != 3 || key.Segment(1) != balanceSegment {
		return address.Address{}, address.Address{}, false
	}
	token, tokOk := key.SegmentAddress(0)
	owner, ownOk := key.SegmentAddress(2)
	if !tokOk || !ownOk {
		return address.Address{}, address.Address{}, false
	}
	return token, owner, true
}
