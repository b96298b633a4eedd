// Package arraymap implements lodis' ArrayMap engine: an ordered
// collection that is simultaneously indexable by position (like a List)
// and by an arbitrary user key (like a Map). It composes list.List and
// hmap.Map rather than reimplementing either: the List stores
// key_hash||value at each position, the Map stores index||key keyed by
// key_hash, and the two stay in bijection across every mutation,
// including the List's own swap-delete. Grounded on
// original_source/lodisdb/src/arraymap.rs.
package arraymap

import (
	"fmt"

	"github.com/edirooss/lodis/internal/codec"
	"github.com/edirooss/lodis/internal/hmap"
	"github.com/edirooss/lodis/internal/list"
	"github.com/edirooss/lodis/internal/lodiserr"
	"github.com/edirooss/lodis/internal/store"
)

// ArrayMap is a handle onto one named arraymap collection.
type ArrayMap struct {
	l *list.List
	m *hmap.Map
}

// Open returns a handle for the arraymap named name. The embedded List and
// Map are opened under the derived names "name@list"/"name@map", both
// stamped with the ArrayMap type flag rather than their own natural List/
// Map flags — otherwise an arraymap named "foo" would share exact key
// ranges with a standalone List or Map also named "foo".
func Open(s store.Store, name []byte) *ArrayMap {
	listName := append(append([]byte{}, name...), "@list"...)
	mapName := append(append([]byte{}, name...), "@map"...)
	return &ArrayMap{
		l: list.OpenWithPrefix(s, codec.Prefix(codec.TypeArrayMap, listName)),
		m: hmap.OpenWithPrefix(s, codec.Prefix(codec.TypeArrayMap, mapName)),
	}
}

func splitListValue(v []byte) (keyHash []byte, value []byte, err error) {
	if len(v) < 8 {
		return nil, nil, fmt.Errorf("arraymap: %w", lodiserr.ErrShapeMismatch)
	}
	return v[:8], v[8:], nil
}

func joinListValue(keyHash uint64, value []byte) []byte {
	return append(codec.U64ToBytes(keyHash), value...)
}

func splitMapValue(v []byte) (idx uint32, key []byte, err error) {
	if len(v) < 4 {
		return 0, nil, fmt.Errorf("arraymap: %w", lodiserr.ErrShapeMismatch)
	}
	idx, err = codec.BytesToU32(v[:4])
	if err != nil {
		return 0, nil, fmt.Errorf("arraymap: %w", err)
	}
	return idx, v[4:], nil
}

func joinMapValue(idx uint32, key []byte) []byte {
	return append(codec.U32ToBytes(idx), key...)
}

// Len returns the number of pairs.
func (a *ArrayMap) Len() (uint32, error) {
	return a.m.Len()
}

// Exists reports whether key is present.
func (a *ArrayMap) Exists(key []byte) (bool, error) {
	hashKey := codec.U64ToBytes(codec.KeyHash(key))
	return a.m.Exists(hashKey)
}

// Get returns the value stored for key.
func (a *ArrayMap) Get(key []byte) ([]byte, bool, error) {
	hashKey := codec.U64ToBytes(codec.KeyHash(key))
	mv, ok, err := a.m.Get(hashKey)
	if err != nil || !ok {
		return nil, false, err
	}
	idx, storedKey, err := splitMapValue(mv)
	if err != nil {
		return nil, false, err
	}
	if string(storedKey) != string(key) {
		return nil, false, nil // key_hash collision against a different live key
	}
	lv, ok, err := a.l.IndexWithAbsIndex(idx)
	if err != nil || !ok {
		return nil, false, err
	}
	_, value, err := splitListValue(lv)
	return value, value != nil, err
}

// Random returns a uniformly random (key, value) pair.
func (a *ArrayMap) Random(rnd func(n uint32) uint32) (key, value []byte, ok bool, err error) {
	lv, _, ok, err := a.l.Random(rnd)
	if err != nil || !ok {
		return nil, nil, false, err
	}
	hashBytes, v, err := splitListValue(lv)
	if err != nil {
		return nil, nil, false, err
	}
	mv, ok, err := a.m.Get(hashBytes)
	if err != nil || !ok {
		return nil, nil, false, err
	}
	_, k, err := splitMapValue(mv)
	return k, v, true, err
}

// setNewPair creates a brand-new key/value pair, inserting it into the
// List via insert (either Push or PushLeft) and recording the resulting
// position in the Map.
func (a *ArrayMap) setNewPair(key, value []byte, insert func(v []byte) (uint32, error)) error {
	hash := codec.KeyHash(key)
	hashKey := codec.U64ToBytes(hash)
	idx, err := insert(joinListValue(hash, value))
	if err != nil {
		return err
	}
	return a.m.Set(hashKey, joinMapValue(idx, key))
}

// setListItem overwrites the value of an already-live key in place,
// without moving its List position or touching the Map pointer.
func (a *ArrayMap) setListItem(idx uint32, hash uint64, value []byte) error {
	return a.l.SetByAbsIndex(idx, joinListValue(hash, value))
}

func (a *ArrayMap) lookup(key []byte) (hashKey []byte, idx uint32, existed bool, err error) {
	hashKey = codec.U64ToBytes(codec.KeyHash(key))
	mv, ok, err := a.m.Get(hashKey)
	if err != nil || !ok {
		return hashKey, 0, false, err
	}
	idx, _, err = splitMapValue(mv)
	return hashKey, idx, true, err
}

// Push inserts a new pair at the tail, or overwrites the value in place
// if key already exists.
func (a *ArrayMap) Push(key, value []byte) error {
	_, idx, existed, err := a.lookup(key)
	if err != nil {
		return err
	}
	if existed {
		return a.setListItem(idx, codec.KeyHash(key), value)
	}
	return a.setNewPair(key, value, func(v []byte) (uint32, error) {
		idxs, err := a.l.Push(v)
		if err != nil || len(idxs) == 0 {
			return 0, err
		}
		return idxs[0], nil
	})
}

// PushLeft inserts a new pair at the head, or overwrites the value in
// place if key already exists.
func (a *ArrayMap) PushLeft(key, value []byte) error {
	_, idx, existed, err := a.lookup(key)
	if err != nil {
		return err
	}
	if existed {
		return a.setListItem(idx, codec.KeyHash(key), value)
	}
	return a.setNewPair(key, value, func(v []byte) (uint32, error) {
		idxs, err := a.l.PushLeft(v)
		if err != nil || len(idxs) == 0 {
			return 0, err
		}
		return idxs[0], nil
	})
}

// Pushnx inserts a new pair at the tail only if key is absent. ok reports
// whether the insert happened.
func (a *ArrayMap) Pushnx(key, value []byte) (ok bool, err error) {
	existed, err := a.Exists(key)
	if err != nil || existed {
		return false, err
	}
	return true, a.setNewPair(key, value, func(v []byte) (uint32, error) {
		idxs, err := a.l.Push(v)
		if err != nil || len(idxs) == 0 {
			return 0, err
		}
		return idxs[0], nil
	})
}

// PushnxLeft inserts a new pair at the head only if key is absent. ok
// reports whether the insert happened.
func (a *ArrayMap) PushnxLeft(key, value []byte) (ok bool, err error) {
	existed, err := a.Exists(key)
	if err != nil || existed {
		return false, err
	}
	return true, a.setNewPair(key, value, func(v []byte) (uint32, error) {
		idxs, err := a.l.PushLeft(v)
		if err != nil || len(idxs) == 0 {
			return 0, err
		}
		return idxs[0], nil
	})
}

// Increase parses the current value at key as an ASCII decimal integer
// (treating an absent key as 0), adds delta, and stores the result back
// at the tail if key did not already exist.
func (a *ArrayMap) Increase(key []byte, delta int64) (int64, error) {
	_, idx, existed, err := a.lookup(key)
	if err != nil {
		return 0, err
	}
	var base int64
	if existed {
		lv, ok, err := a.l.IndexWithAbsIndex(idx)
		if err != nil {
			return 0, err
		}
		if ok {
			_, v, err := splitListValue(lv)
			if err != nil {
				return 0, err
			}
			n, ok := codec.ParseDecimal(v)
			if !ok {
				return 0, fmt.Errorf("arraymap: %w", lodiserr.ErrNotNumeric)
			}
			base = n
		}
	}
	next := base + delta
	encoded := codec.FormatDecimal(next)
	if existed {
		if err := a.setListItem(idx, codec.KeyHash(key), encoded); err != nil {
			return 0, err
		}
		return next, nil
	}
	return next, a.setNewPair(key, encoded, func(v []byte) (uint32, error) {
		idxs, err := a.l.Push(v)
		if err != nil || len(idxs) == 0 {
			return 0, err
		}
		return idxs[0], nil
	})
}

// popAt removes the List element at abs, repairs the Map bijection if
// the List's swap-delete moved another element into abs's slot, and
// removes the deleted key's own Map pointer. It returns the deleted
// key/value pair.
func (a *ArrayMap) popAt(abs uint32) (key, value []byte, ok bool, err error) {
	head, tail, length, err := a.l.Bounds()
	if err != nil || length == 0 {
		return nil, nil, false, err
	}
	first, last := head+1, tail-1
	swapped := abs != first && abs != last

	victimRaw, ok, err := a.l.DeleteWithAbsIndex(abs)
	if err != nil || !ok {
		return nil, nil, false, err
	}
	victimHash, victimVal, err := splitListValue(victimRaw)
	if err != nil {
		return nil, nil, false, err
	}

	if swapped {
		if err := a.repairSwap(abs); err != nil {
			return nil, nil, false, err
		}
	}

	mv, ok, err := a.m.Get(victimHash)
	if err != nil {
		return nil, nil, false, err
	}
	var victimKey []byte
	if ok {
		_, victimKey, err = splitMapValue(mv)
		if err != nil {
			return nil, nil, false, err
		}
		if _, err := a.m.Delete(victimHash); err != nil {
			return nil, nil, false, err
		}
	}
	return victimKey, victimVal, true, nil
}

// repairSwap fixes up the Map pointer of the element the List's
// swap-delete just moved into abs: it now lives at abs instead of its
// old head slot, but its Map entry still points at the old slot.
func (a *ArrayMap) repairSwap(abs uint32) error {
	movedRaw, ok, err := a.l.IndexWithAbsIndex(abs)
	if err != nil || !ok {
		return err
	}
	movedHash, _, err := splitListValue(movedRaw)
	if err != nil {
		return err
	}
	mv, ok, err := a.m.Get(movedHash)
	if err != nil || !ok {
		return err
	}
	_, movedKey, err := splitMapValue(mv)
	if err != nil {
		return err
	}
	return a.m.Set(movedHash, joinMapValue(abs, movedKey))
}

// Pop removes and returns the tail pair.
func (a *ArrayMap) Pop() (key, value []byte, ok bool, err error) {
	_, tail, length, err := a.l.Bounds()
	if err != nil || length == 0 {
		return nil, nil, false, err
	}
	return a.popAt(tail - 1)
}

// PopLeft removes and returns the head pair.
func (a *ArrayMap) PopLeft() (key, value []byte, ok bool, err error) {
	head, _, length, err := a.l.Bounds()
	if err != nil || length == 0 {
		return nil, nil, false, err
	}
	return a.popAt(head + 1)
}

// PopRandom removes and returns a uniformly random pair.
func (a *ArrayMap) PopRandom(rnd func(n uint32) uint32) (key, value []byte, ok bool, err error) {
	abs, ok, err := a.l.RandomIndex(rnd)
	if err != nil || !ok {
		return nil, nil, false, err
	}
	return a.popAt(abs)
}

// Delete removes the pair stored at key.
func (a *ArrayMap) Delete(key []byte) (value []byte, ok bool, err error) {
	_, idx, existed, err := a.lookup(key)
	if err != nil || !existed {
		return nil, false, err
	}
	_, value, ok, err = a.popAt(idx)
	return value, ok, err
}

func decodePair(a *ArrayMap, lv []byte) (key, value []byte, err error) {
	hash, v, err := splitListValue(lv)
	if err != nil {
		return nil, nil, err
	}
	mv, ok, err := a.m.Get(hash)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, v, nil
	}
	_, k, err := splitMapValue(mv)
	return k, v, err
}

// Range returns the (key, value) pairs from relative index start to stop
// inclusive, forward or reverse.
func (a *ArrayMap) Range(start, stop int64, reverse bool) ([][2][]byte, error) {
	raw, err := a.l.Range(start, stop, reverse)
	if err != nil {
		return nil, err
	}
	out := make([][2][]byte, 0, len(raw))
	for _, lv := range raw {
		k, v, err := decodePair(a, lv)
		if err != nil {
			return nil, err
		}
		out = append(out, [2][]byte{k, v})
	}
	return out, nil
}

// All returns every (key, value) pair in position order.
func (a *ArrayMap) All() ([][2][]byte, error) {
	_, _, length, err := a.l.Bounds()
	if err != nil || length == 0 {
		return nil, err
	}
	return a.Range(0, int64(length)-1, false)
}

// Keys returns every key in position order.
func (a *ArrayMap) Keys() ([][]byte, error) {
	pairs, err := a.All()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(pairs))
	for i, p := range pairs {
		out[i] = p[0]
	}
	return out, nil
}

// Values returns every value in position order.
func (a *ArrayMap) Values() ([][]byte, error) {
	pairs, err := a.All()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(pairs))
	for i, p := range pairs {
		out[i] = p[1]
	}
	return out, nil
}

// Remove deletes the entire arraymap collection: both its List and Map
// halves, since neither alone holds a complete copy of the data.
func (a *ArrayMap) Remove() error {
	if err := a.l.Remove(); err != nil {
		return err
	}
	return a.m.Remove()
}
