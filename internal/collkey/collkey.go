// Package collkey holds the structural key-space helpers shared by every
// collection engine: deriving the prefix that follows a collection's own
// prefix, and the bulk "remove whole collection" protocol built on top of
// store.Store's same-prefix iteration. It is grounded on original_source's
// common.rs, which gives List/Map/ArrayMap this same behavior through a
// shared default trait method rather than three copies of it.
package collkey

import (
	"bytes"
	"encoding/binary"

	"github.com/edirooss/lodis/internal/store"
)

// NextPrefix returns the lexicographically-next collection prefix after p:
// the type flag is left untouched and the trailing 8-byte name hash is
// incremented modulo 2^64. Used to bound a collection's key range from
// above without knowing its last live key.
func NextPrefix(p []byte) []byte {
	out := append([]byte{}, p...)
	hash := binary.BigEndian.Uint64(out[len(out)-8:])
	binary.BigEndian.PutUint64(out[len(out)-8:], hash+1)
	return out
}

// Remove deletes every key sharing prefix in one atomic batch: a forward
// same-prefix scan locates the first live key, a reverse scan from
// NextPrefix(prefix) locates the last, and a single DeleteRange plus a
// trailing Delete purge the entire span. A collection with no live keys is
// a silent no-op.
func Remove(s store.Store, prefix []byte) error {
	fwd := s.Iterator(store.IterOptions{Prefix: prefix, SamePrefix: true})
	if !fwd.Valid() {
		fwd.Close()
		return nil
	}
	startKey := append([]byte{}, fwd.Key()...)
	fwd.Close()

	next := NextPrefix(prefix)
	rev := s.Iterator(store.IterOptions{Prefix: next, Reverse: true})
	defer rev.Close()
	if !rev.Valid() {
		return nil
	}
	endKey := append([]byte{}, rev.Key()...)
	if !bytes.HasPrefix(endKey, prefix) {
		return nil
	}

	b := s.NewBatch()
	b.DeleteRange(startKey, endKey)
	b.Delete(endKey)
	return b.Commit()
}
