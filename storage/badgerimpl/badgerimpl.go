// Package badgerimpl implements storage.DB on badger, the persistent
// backend a full node runs with.
package badgerimpl

import (
	"errors"

	"github.com/dgraph-io/badger/v2"

	modelstorage "github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/storage"
)

// DB wraps a badger instance behind storage.DB.
type DB struct {
	db *badger.DB
}

var _ storage.DB = (*DB)(nil)
var _ storage.BatchWriter = (*DB)(nil)

// Open opens or creates a badger database at dir.
func Open(dir string) (*DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

// Wrap adopts an already opened badger instance. The caller keeps
// ownership of its lifecycle.
func Wrap(db *badger.DB) *DB {
	return &DB{db: db}
}

// Get implements storage.DB.
func (d *DB) Get(key modelstorage.Key) ([]byte, bool, error) {
	var value []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key.String()))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set implements storage.DB.
func (d *DB) Set(key modelstorage.Key, value []byte) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key.String()), value)
	})
}

// Delete implements storage.DB.
func (d *DB) Delete(key modelstorage.Key) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key.String()))
	})
}

// Close implements storage.DB.
func (d *DB) Close() error {
	return d.db.Close()
}

type batch struct {
	wb *badger.WriteBatch
}

// NewBatch implements storage.BatchWriter.
func (d *DB) NewBatch() storage.Batch {
	return &batch{wb: d.db.NewWriteBatch()}
}

func (b *batch) Set(key modelstorage.Key, value []byte) {
	// WriteBatch errors surface on Flush.
	_ = b.wb.Set([]byte(key.String()), value)
}

func (b *batch) Delete(key modelstorage.Key) {
	_ = b.wb.Delete([]byte(key.String()))
}

func (b *batch) Commit() error {
	return b.wb.Flush()
}
