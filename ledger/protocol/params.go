package protocol

import (
	"fmt"

	"github.com/khoangkhac118/namada/ledger/state"
	"github.com/khoangkhac118/namada/ledger/vp/parameters"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/codec"
	"github.com/khoangkhac118/namada/model/tx"
)

// Params are the protocol parameters the pipeline needs per block. They are
// read from the parameter storage keys at block start and passed by value;
// mid-block parameter changes take effect at the next block.
type Params struct {
	// NativeToken is the chain's staking and fee token.
	NativeToken address.Address

	// FeeUnshieldingGasLimit is the gas budget granted to a wrapper's
	// nested fee-unshielding transaction.
	FeeUnshieldingGasLimit uint64

	// MaxSignaturesPerTransaction caps the signatures a quorum check will
	// look at.
	MaxSignaturesPerTransaction uint8
}

// DefaultFeeUnshieldingGasLimit applies when the parameter key is unset.
const DefaultFeeUnshieldingGasLimit uint64 = 20_000

// LoadParams reads the protocol parameters from committed storage, applying
// defaults for the optional ones. A missing native token is an error: the
// chain cannot charge fees without it.
func LoadParams(store *state.Store) (Params, error) {
	params := Params{
		FeeUnshieldingGasLimit:      DefaultFeeUnshieldingGasLimit,
		MaxSignaturesPerTransaction: tx.MaxSignatures,
	}

	raw, found, err := store.Read(parameters.NativeTokenKey())
	if err != nil {
		return Params{}, fmt.Errorf("read native token parameter: %w", err)
	}
	if !found {
		return Params{}, fmt.Errorf("native token parameter not in storage")
	}
	if err := codec.UnmarshalBorsh(raw, &params.NativeToken); err != nil {
		return Params{}, fmt.Errorf("native token parameter: %w", err)
	}

	if raw, found, err = store.Read(parameters.FeeUnshieldingGasLimitKey()); err != nil {
		return Params{}, fmt.Errorf("read fee unshielding gas limit: %w", err)
	} else if found {
		if err := codec.UnmarshalBorsh(raw, &params.FeeUnshieldingGasLimit); err != nil {
			return Params{}, fmt.Errorf("fee unshielding gas limit: %w", err)
		}
	}

	if raw, found, err = store.Read(parameters.MaxSignaturesPerTransactionKey()); err != nil {
		return Params{}, fmt.Errorf("read max signatures parameter: %w", err)
	} else if found {
		if err := codec.UnmarshalBorsh(raw, &params.MaxSignaturesPerTransaction); err != nil {
			return Params{}, fmt.Errorf("max signatures parameter: %w", err)
		}
	}

	return params, nil
}
