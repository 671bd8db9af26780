// Package storage defines the persistent key-value seam under the state
// machine. The Merkle-tree layer above it is an external collaborator; this
// interface only carries committed bytes keyed by rendered storage keys.
package storage

import (
	"errors"

	"github.com/khoangkhac118/namada/model/storage"
)

// ErrClosed is returned by operations on a closed database.
var ErrClosed = errors.New("storage: database closed")

// DB is a committed key-value store. Implementations must be safe for
// concurrent readers, which the parallel VP fold relies on.
type DB interface {
	// Get returns the value at key, reporting false when absent.
	Get(key storage.Key) (value []byte, found bool, err error)
	// Set writes the value at key.
	Set(key storage.Key, value []byte) error
	// Delete removes the value at key. Deleting an absent key is a no-op.
	Delete(key storage.Key) error
	// Close releases the database.
	Close() error
}

// Batch applies a set of writes and deletes atomically.
type Batch interface {
	Set(key storage.Key, value []byte)
	Delete(key storage.Key)
	// Commit applies the batch. A committed batch must not be reused.
	Commit() error
}

// BatchWriter is implemented by databases supporting atomic multi-key
// writes; block commit uses it when available.
type BatchWriter interface {
	NewBatch() Batch
}
