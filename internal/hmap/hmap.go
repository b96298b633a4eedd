// Package hmap implements lodis' Map engine: a hash map of arbitrary byte
// keys to byte values, with a maintained length counter kept accurate by
// checking existence before every write that might create a new entry.
// Grounded on original_source/lodisdb/src/map.rs.
package hmap

import (
	"fmt"

	"github.com/edirooss/lodis/internal/codec"
	"github.com/edirooss/lodis/internal/collkey"
	"github.com/edirooss/lodis/internal/lodiserr"
	"github.com/edirooss/lodis/internal/store"
)

const entryTag byte = ':' // prefix || ':' || userKey

var sufLength = []byte{'@', 'L'}

// Map is a handle onto one named map collection.
type Map struct {
	s      store.Store
	prefix [codec.PrefixLen]byte
}

// Open returns a handle for the map named name.
func Open(s store.Store, name []byte) *Map {
	return &Map{s: s, prefix: codec.Prefix(codec.TypeMap, name)}
}

// OpenWithPrefix returns a handle using an already-built prefix, letting a
// composite engine (internal/arraymap) stamp its own type flag over an
// otherwise ordinary Map key space.
func OpenWithPrefix(s store.Store, prefix [codec.PrefixLen]byte) *Map {
	return &Map{s: s, prefix: prefix}
}

func (m *Map) metaKey() []byte {
	return append(append([]byte{}, m.prefix[:]...), sufLength...)
}

func (m *Map) entryKey(key []byte) []byte {
	k := append(append([]byte{}, m.prefix[:]...), entryTag)
	return append(k, key...)
}

func (m *Map) entryPrefix() []byte {
	return append(append([]byte{}, m.prefix[:]...), entryTag)
}

// Len returns the number of entries.
func (m *Map) Len() (uint32, error) {
	v, err := m.s.Get(m.metaKey())
	if err != nil {
		return 0, fmt.Errorf("hmap: %w: %v", lodiserr.ErrStore, err)
	}
	if v == nil {
		return 0, nil
	}
	n, err := codec.BytesToU32(v)
	if err != nil {
		return 0, fmt.Errorf("hmap: %w", err)
	}
	return n, nil
}

// incrLength queues the adjusted length counter onto b; the caller commits
// b as part of the same atomic write as the entry mutation it accompanies.
func (m *Map) incrLength(delta int32, b store.Batch) error {
	n, err := m.Len()
	if err != nil {
		return err
	}
	n = uint32(int64(n) + int64(delta))
	b.Put(m.metaKey(), codec.U32ToBytes(n))
	return nil
}

// Exists reports whether key is present.
func (m *Map) Exists(key []byte) (bool, error) {
	v, err := m.s.Get(m.entryKey(key))
	if err != nil {
		return false, fmt.Errorf("hmap: %w: %v", lodiserr.ErrStore, err)
	}
	return v != nil, nil
}

// Get returns the value stored at key.
func (m *Map) Get(key []byte) ([]byte, bool, error) {
	v, err := m.s.Get(m.entryKey(key))
	if err != nil {
		return nil, false, fmt.Errorf("hmap: %w: %v", lodiserr.ErrStore, err)
	}
	return v, v != nil, nil
}

// Set writes key/value, creating the entry if absent.
func (m *Map) Set(key, value []byte) error {
	existed, err := m.Exists(key)
	if err != nil {
		return err
	}
	b := m.s.NewBatch()
	b.Put(m.entryKey(key), value)
	if !existed {
		if err := m.incrLength(1, b); err != nil {
			return err
		}
	}
	if err := b.Commit(); err != nil {
		return fmt.Errorf("hmap: %w: %v", lodiserr.ErrStore, err)
	}
	return nil
}

// Setnx writes key/value only if key is absent. ok reports whether the
// write happened.
func (m *Map) Setnx(key, value []byte) (ok bool, err error) {
	existed, err := m.Exists(key)
	if err != nil {
		return false, err
	}
	if existed {
		return false, nil
	}
	b := m.s.NewBatch()
	b.Put(m.entryKey(key), value)
	if err := m.incrLength(1, b); err != nil {
		return false, err
	}
	if err := b.Commit(); err != nil {
		return false, fmt.Errorf("hmap: %w: %v", lodiserr.ErrStore, err)
	}
	return true, nil
}

// Increase parses the current value at key as an ASCII decimal integer
// (treating an absent key as 0), adds delta, and stores the result back
// in the same encoding. It returns lodiserr.ErrNotNumeric if an existing
// value cannot be parsed.
func (m *Map) Increase(key []byte, delta int64) (int64, error) {
	cur, existed, err := m.Get(key)
	if err != nil {
		return 0, err
	}
	var base int64
	if existed {
		v, ok := codec.ParseDecimal(cur)
		if !ok {
			return 0, fmt.Errorf("hmap: %w", lodiserr.ErrNotNumeric)
		}
		base = v
	}
	next := base + delta

	b := m.s.NewBatch()
	b.Put(m.entryKey(key), codec.FormatDecimal(next))
	if !existed {
		if err := m.incrLength(1, b); err != nil {
			return 0, err
		}
	}
	if err := b.Commit(); err != nil {
		return 0, fmt.Errorf("hmap: %w: %v", lodiserr.ErrStore, err)
	}
	return next, nil
}

// Delete removes key, reporting whether it was present.
func (m *Map) Delete(key []byte) (ok bool, err error) {
	existed, err := m.Exists(key)
	if err != nil || !existed {
		return false, err
	}
	b := m.s.NewBatch()
	b.Delete(m.entryKey(key))
	if err := m.incrLength(-1, b); err != nil {
		return false, err
	}
	if err := b.Commit(); err != nil {
		return false, fmt.Errorf("hmap: %w: %v", lodiserr.ErrStore, err)
	}
	return true, nil
}

// Mset writes every key/value pair in kvs as one atomic batch, adjusting
// the length counter once for however many of them are new entries.
func (m *Map) Mset(kvs [][2][]byte) error {
	b := m.s.NewBatch()
	var incr int32
	for _, kv := range kvs {
		existed, err := m.Exists(kv[0])
		if err != nil {
			return err
		}
		if !existed {
			incr++
		}
		b.Put(m.entryKey(kv[0]), kv[1])
	}
	if err := m.incrLength(incr, b); err != nil {
		return err
	}
	if err := b.Commit(); err != nil {
		return fmt.Errorf("hmap: %w: %v", lodiserr.ErrStore, err)
	}
	return nil
}

// Mget reads the value for each key in keys; missing keys yield a nil
// slice at the corresponding position.
func (m *Map) Mget(keys [][]byte) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		v, _, err := m.Get(k)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// entry pairs up a stored key (with the map's tag prefix stripped) and
// its value, as returned by Keys/Values/All.
type entry struct {
	key   []byte
	value []byte
}

// scan walks every entry in key order, stopping once it has yielded
// length entries (the defensive bound against a length counter that has
// drifted from the true entry count) or once the same-prefix scan runs
// out of entries, whichever comes first.
func (m *Map) scan() ([]entry, error) {
	length, err := m.Len()
	if err != nil || length == 0 {
		return nil, err
	}
	it := m.s.Iterator(store.IterOptions{Prefix: m.entryPrefix(), SamePrefix: true})
	defer it.Close()

	tagPrefix := m.entryPrefix()
	out := make([]entry, 0, length)
	for ; it.Valid() && uint32(len(out)) < length; it.Next() {
		k := it.Key()
		v, err := it.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, entry{key: append([]byte{}, k[len(tagPrefix):]...), value: v})
	}
	return out, nil
}

// Keys returns every key in the map.
func (m *Map) Keys() ([][]byte, error) {
	entries, err := m.scan()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(entries))
	for i, e := range entries {
		out[i] = e.key
	}
	return out, nil
}

// Values returns every value in the map.
func (m *Map) Values() ([][]byte, error) {
	entries, err := m.scan()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out, nil
}

// All returns every key/value pair in the map.
func (m *Map) All() ([][2][]byte, error) {
	entries, err := m.scan()
	if err != nil {
		return nil, err
	}
	out := make([][2][]byte, len(entries))
	for i, e := range entries {
		out[i] = [2][]byte{e.key, e.value}
	}
	return out, nil
}

// Remove deletes the entire map collection.
func (m *Map) Remove() error {
	return collkey.Remove(m.s, m.prefix[:])
}
