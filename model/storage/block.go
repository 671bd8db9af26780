package storage

import "fmt"

// BlockHeight is the chain height of a block, starting at 1 for the first
// committed block.
type BlockHeight uint64

// Next returns the following height.
func (h BlockHeight) Next() BlockHeight {
	return h + 1
}

func (h BlockHeight) String() string {
	return fmt.Sprintf("%d", uint64(h))
}

// Epoch counts protocol epochs from genesis.
type Epoch uint64

// Next returns the following epoch.
func (e Epoch) Next() Epoch {
	return e + 1
}

func (e Epoch) String() string {
	return fmt.Sprintf("%d", uint64(e))
}

// TxIndex is the position of a transaction within its block.
type TxIndex uint32
