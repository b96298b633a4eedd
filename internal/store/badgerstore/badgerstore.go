// Package badgerstore implements store.Store on top of
// github.com/dgraph-io/badger/v4, a pure-Go embedded LSM engine. It is the
// concrete answer to spec.md §6.1's store contract: point get/put/delete
// via short-lived transactions, an atomic write batch via badger's own
// WriteBatch, and same-prefix forward/reverse iteration via badger's
// native IteratorOptions{Prefix, Reverse}.
package badgerstore

import (
	"bytes"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/edirooss/lodis/internal/lodiserr"
	"github.com/edirooss/lodis/internal/store"
)

// Store wraps a *badger.DB.
type Store struct {
	db  *badger.DB
	log *zap.Logger
}

// Options configures Open.
type Options struct {
	// Dir is the badger data directory (used for both the value log and
	// the LSM tree; badger.DefaultOptions keeps them together).
	Dir string
	// InMemory opens badger with no on-disk footprint, for tests and
	// throwaway instances.
	InMemory bool
}

// Open opens (or creates) a badger store at opts.Dir.
func Open(opts Options, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	bopts := badger.DefaultOptions(opts.Dir)
	bopts.InMemory = opts.InMemory
	bopts.Logger = nil // badger's own logger is noisy at Info; we log around it instead

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, wrapStoreErr("open", err)
	}
	log.Info("badger store opened", zap.String("dir", opts.Dir), zap.Bool("in_memory", opts.InMemory))
	return &Store{db: db, log: log.Named("badgerstore")}, nil
}

func wrapStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &storeErr{op: op, err: err}
}

type storeErr struct {
	op  string
	err error
}

func (e *storeErr) Error() string { return "badgerstore: " + e.op + ": " + e.err.Error() }
func (e *storeErr) Unwrap() error { return e.err }
func (e *storeErr) Is(target error) bool {
	return target == lodiserr.ErrStore
}

// Get implements store.Store.
func (s *Store) Get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, wrapStoreErr("get", err)
	}
	return val, nil
}

// Put implements store.Store.
func (s *Store) Put(key, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	return wrapStoreErr("put", err)
}

// Delete implements store.Store.
func (s *Store) Delete(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	return wrapStoreErr("delete", err)
}

// Close implements store.Store.
func (s *Store) Close() error {
	return wrapStoreErr("close", s.db.Close())
}

// NewBatch implements store.Store.
func (s *Store) NewBatch() store.Batch {
	return &batch{db: s.db, wb: s.db.NewWriteBatch()}
}

type batch struct {
	db      *badger.DB
	wb      *badger.WriteBatch
	ranges  [][2][]byte
	lastErr error
}

func (b *batch) Put(key, value []byte) {
	if b.lastErr != nil {
		return
	}
	b.lastErr = b.wb.Set(key, value)
}

func (b *batch) Delete(key []byte) {
	if b.lastErr != nil {
		return
	}
	b.lastErr = b.wb.Delete(key)
}

// DeleteRange records a half-open range to purge on Commit. Badger has no
// native range-delete, so this falls back to a read-then-delete pass over
// the range inside the same transactional write batch; everything still
// lands in the one durable WriteBatch.Flush().
func (b *batch) DeleteRange(lo, hi []byte) {
	b.ranges = append(b.ranges, [2][]byte{lo, hi})
}

func (b *batch) Commit() error {
	if b.lastErr != nil {
		return wrapStoreErr("batch", b.lastErr)
	}
	for _, r := range b.ranges {
		if err := b.applyRange(r[0], r[1]); err != nil {
			return wrapStoreErr("batch delete_range", err)
		}
	}
	if err := b.wb.Flush(); err != nil {
		return wrapStoreErr("batch commit", err)
	}
	return nil
}

func (b *batch) applyRange(lo, hi []byte) error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(lo); it.Valid(); it.Next() {
			k := it.Item().KeyCopy(nil)
			if bytes.Compare(k, hi) >= 0 {
				break
			}
			if err := b.wb.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Iterator implements store.Store.
func (s *Store) Iterator(opts store.IterOptions) store.Iterator {
	txn := s.db.NewTransaction(false)
	bopts := badger.DefaultIteratorOptions
	bopts.Reverse = opts.Reverse
	bopts.PrefetchValues = true
	if opts.SamePrefix {
		bopts.Prefix = opts.Prefix
	}
	it := txn.NewIterator(bopts)

	seek := opts.Prefix
	if opts.Reverse && opts.SamePrefix {
		// A reverse seek lands on the largest key <= the seek key, so the
		// prefix followed by a 0xff byte starts the scan at the last key
		// with this prefix (among keys whose next byte is below 0xff); a
		// seek at the bare prefix would land before every longer key.
		seek = append(append([]byte{}, opts.Prefix...), 0xff)
	}
	it.Seek(seek)

	return &iterator{txn: txn, it: it}
}

type iterator struct {
	txn *badger.Txn
	it  *badger.Iterator
}

func (i *iterator) Valid() bool { return i.it.Valid() }
func (i *iterator) Next()       { i.it.Next() }
func (i *iterator) Key() []byte { return i.it.Item().KeyCopy(nil) }
func (i *iterator) Value() ([]byte, error) {
	v, err := i.it.Item().ValueCopy(nil)
	if err != nil {
		return nil, wrapStoreErr("iterator value", err)
	}
	return v, nil
}
func (i *iterator) Close() error {
	i.it.Close()
	i.txn.Discard()
	return nil
}
