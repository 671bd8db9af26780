package state

import (
	"fmt"

	"github.com/khoangkhac118/namada/model/account"
	"github.com/khoangkhac118/namada/model/address"
	"github.com/khoangkhac118/namada/model/hash"
	modelstorage "github.com/khoangkhac118/namada/model/storage"
	"github.com/khoangkhac118/namada/storage"
)

// Store serves the committed pre-state to transaction and validity-predicate
// execution. It is a thin view over a storage.DB; everything uncommitted
// lives in the WriteLog above it.
type Store struct {
	db storage.DB
}

// NewStore wraps a committed database.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// Read returns the committed value at key.
func (s *Store) Read(key modelstorage.Key) ([]byte, bool, error) {
	return s.db.Get(key)
}

// Has reports whether key exists in committed state.
func (s *Store) Has(key modelstorage.Key) (bool, error) {
	_, found, err := s.db.Get(key)
	return found, err
}

// ValidityPredicate returns the code hash of addr's validity predicate from
// committed state, with the byte length read so callers can charge gas for
// it.
func (s *Store) ValidityPredicate(addr address.Address) (hash.Hash, uint64, error) {
	value, found, err := s.db.Get(account.VpKey(addr))
	if err != nil {
		return hash.Hash{}, 0, fmt.Errorf("read validity predicate of %s: %w", addr, err)
	}
	if !found {
		return hash.Hash{}, 0, fmt.Errorf("no validity predicate for %s", addr)
	}
	h, err := hash.FromBytes(value)
	if err != nil {
		return hash.Hash{}, 0, fmt.Errorf("validity predicate of %s: %w", addr, err)
	}
	return h, uint64(len(value)), nil
}

// applyBlock writes a block layer into the database, using an atomic batch
// when the backend supports one.
func (s *Store) applyBlock(block map[string]Modification) error {
	if bw, ok := s.db.(storage.BatchWriter); ok {
		batch := bw.NewBatch()
		for rendered, mod := range block {
			key, err := modelstorage.ParseKey(rendered)
			if err != nil {
				return err
			}
			applyToBatch(batch, key, mod)
		}
		return batch.Commit()
	}
	for rendered, mod := range block {
		key, err := modelstorage.ParseKey(rendered)
		if err != nil {
			return err
		}
		if err := s.applyDirect(key, mod); err != nil {
			return err
		}
	}
	return nil
}

func applyToBatch(batch storage.Batch, key modelstorage.Key, mod Modification) {
	switch mod.Kind {
	case ModDelete:
		batch.Delete(key)
	case ModInitAccount:
		batch.Set(key, mod.VpHash[:])
	default:
		batch.Set(key, mod.Value)
	}
}

func (s *Store) applyDirect(key modelstorage.Key, mod Modification) error {
	switch mod.Kind {
	case ModDelete:
		return s.db.Delete(key)
	case ModInitAccount:
		return s.db.Set(key, mod.VpHash[:])
	default:
		return s.db.Set(key, mod.Value)
	}
}
