package kv

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Badger is a Store backed by an embedded Badger database.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger database in dir.
func OpenBadger(dir string) (*Badger, error) {
	if err := ensureDir(dir); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Badger{db: db}, nil
}

// Get implements Store.
func (b *Badger) Get(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return out, nil
}

// Set implements Store.
func (b *Badger) Set(key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete implements Store. Deleting an absent key is not an error.
func (b *Badger) Delete(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close implements Store.
func (b *Badger) Close() error {
	return b.db.Close()
}
