// Package memdb provides the in-memory storage.DB used by tests and
// dry-run tooling.
package memdb

import (
	"sync"

	modelstorage "github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/storage"
)

// DB is an in-memory key-value store guarded by a read-write mutex.
type DB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

var _ storage.DB = (*DB)(nil)
var _ storage.BatchWriter = (*DB)(nil)

// New builds an empty in-memory database.
func New() *DB {
	return &DB{data: make(map[string][]byte)}
}

// Get implements storage.DB.
func (db *DB) Get(key modelstorage.Key) ([]byte, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, false, storage.ErrClosed
	}
	value, ok := db.data[key.String()]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set implements storage.DB.
func (db *DB) Set(key modelstorage.Key, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return storage.ErrClosed
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	db.data[key.String()] = stored
	return nil
}

// Delete implements storage.DB.
func (db *DB) Delete(key modelstorage.Key) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return storage.ErrClosed
	}
	delete(db.data, key.String())
	return nil
}

// Close implements storage.DB.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	db.data = nil
	return nil
}

type batch struct {
	db      *DB
	sets    map[string][]byte
	deletes map[string]struct{}
}

// NewBatch implements storage.BatchWriter.
func (db *DB) NewBatch() storage.Batch {
	return &batch{
		db:      db,
		sets:    make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (b *batch) Set(key modelstorage.Key, value []byte) {
	stored := make([]byte, len(value))
	copy(stored, value)
	rendered := key.String()
	delete(b.deletes, rendered)
	b.sets[rendered] = stored
}

func (b *batch) Delete(key modelstorage.Key) {
	rendered := key.String()
	delete(b.sets, rendered)
	b.deletes[rendered] = struct{}{}
}

func (b *batch) Commit() error {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	if b.db.closed {
		return storage.ErrClosed
	}
	for key, value := range b.sets {
		b.db.data[key] = value
	}
	for key := range b.deletes {
		delete(b.db.data, key)
	}
	b.sets = nil
	b.deletes = nil
	return nil
}
