// Package store declares the contract lodis' collection engines require
// from an embedded ordered key-value store: point get/put/delete, an
// atomic write batch (puts, deletes, and a half-open delete-range,
// committed together), and forward/reverse iteration in "same-prefix"
// mode. The engines in internal/list, internal/hmap, and
// internal/arraymap only ever talk to this interface; a concrete
// implementation lives in internal/store/badgerstore.
package store

import "errors"

// ErrKeyNotFound is returned by Get when the key is absent. Callers in
// this codebase generally prefer the (nil, nil) convention instead (see
// Store.Get's doc), but the sentinel is exposed for implementations and
// tests that need to distinguish "absent" from "empty value" explicitly.
var ErrKeyNotFound = errors.New("store: key not found")

// Store is the ordered key-value engine lodis is layered on top of.
type Store interface {
	// Get returns the value for key, or (nil, nil) if key is absent.
	Get(key []byte) ([]byte, error)
	// Put writes key/value as a single-operation durable write.
	Put(key, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error

	// NewBatch returns a Batch for grouping multiple mutations into one
	// atomic, durable write.
	NewBatch() Batch

	// Iterator returns an Iterator configured by opts. Callers must Close
	// it when done.
	Iterator(opts IterOptions) Iterator

	// Close releases the store's resources.
	Close() error
}

// Batch groups mutations that must be committed as a single atomic,
// durable write.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	// DeleteRange deletes every key in the half-open interval [lo, hi).
	DeleteRange(lo, hi []byte)
	// Commit durably applies every queued mutation as one write. A Batch
	// must not be reused after Commit.
	Commit() error
}

// IterOptions configures an Iterator.
type IterOptions struct {
	// Prefix is the scan prefix and the seek key: a forward iterator starts
	// at the first key >= Prefix, a Reverse iterator at the last key <=
	// Prefix, and a Reverse SamePrefix iterator at the last key <= Prefix
	// followed by one 0xff byte. With SamePrefix, only keys whose leading
	// len(Prefix) bytes equal Prefix are returned — see SamePrefix.
	Prefix []byte

	// Reverse iterates from high keys to low keys.
	Reverse bool

	// SamePrefix stops iteration at the first key whose leading
	// len(Prefix) bytes differ from Prefix, rather than continuing to the
	// end of the keyspace. This is the "same-prefix" mode spec.md §6.1
	// requires for the list/map prefix scans and the remove protocol's
	// boundary search.
	SamePrefix bool
}

// Iterator walks a range of keys in order.
type Iterator interface {
	// Valid reports whether the iterator is positioned at a usable entry.
	Valid() bool
	// Next advances the iterator.
	Next()
	// Key returns the current key. Only valid while Valid() is true; the
	// returned slice must not be retained past the next call to Next.
	Key() []byte
	// Value returns the current value.
	Value() ([]byte, error)
	// Close releases the iterator's resources.
	Close() error
}
