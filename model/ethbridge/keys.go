package ethbridge

import (
	"encoding/hex"

	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/storage"
)

const (
	pendingSegment    = "pending_transfers"
	signedRootSegment = "signed_root"
	nativeErc20Seg    = "native_erc20"
)

// BridgePoolAddress owns the pool's storage namespace and its gas-fee
// escrow balance.
var BridgePoolAddress = address.NewInternal(address.InternalEthBridgePool)

// BridgeAddress owns the bridge's own escrow balance, the account backing
// wrapped-native-token mints on Ethereum.
var BridgeAddress = address.NewInternal(address.InternalEthBridge)

// PendingKeyPrefix is the storage prefix under which all pool entries live.
func PendingKeyPrefix() storage.Key {
	return storage.AddressKey(BridgePoolAddress).MustPush(pendingSegment)
}

// PendingKey is the storage key of transfer's pool entry, derived from the
// transfer's keccak content address.
func PendingKey(transfer PendingTransfer) storage.Key {
	digest := transfer.Keccak()
	return PendingKeyPrefix().MustPush(hex.EncodeToString(digest[:]))
}

// SignedRootKey holds the pool's latest validator-signed Merkle root.
func SignedRootKey() storage.Key {
	return storage.AddressKey(BridgePoolAddress).MustPush(signedRootSegment)
}

// IsBridgePoolKey reports whether key lives in the pool's storage
// namespace. Balance keys of the pool's escrow account do not: they belong
// to the owning token's namespace.
func IsBridgePoolKey(key storage.Key) bool {
	owner, ok := key.Owner()
	return ok && owner == BridgePoolAddress
}

// NativeErc20Key holds the Ethereum address of the wrapped native token,
// the asset whose transfers mint on Ethereum instead of escrowing to the
// pool.
func NativeErc20Key() storage.Key {
	return storage.AddressKey(BridgeAddress).MustPush(nativeErc20Seg)
}
