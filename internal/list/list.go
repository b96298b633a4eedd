// Package list implements lodis' List engine: a ring buffer of up to 2^32
// slots addressed by absolute index, with head/tail cursors tracking the
// live window. It is grounded on original_source/lodisdb/src/list.rs,
// translated from RocksDB column-family operations onto store.Store.
package list

import (
	"fmt"

	"github.com/edirooss/lodis/internal/codec"
	"github.com/edirooss/lodis/internal/collkey"
	"github.com/edirooss/lodis/internal/lodiserr"
	"github.com/edirooss/lodis/internal/store"
)

const elemTag byte = '$' // prefix || '$' || absidx:4

// maxU32 is the sentinel head takes when the list has never been pushed
// to from the left: head always trails the first live slot by one, so an
// empty list's head is "one before slot 0" (wrapping).
const maxU32 uint32 = 1<<32 - 1

// suffixes for the three metadata cells, kept distinct from the '$'
// element tag so a 1-byte scan can never confuse a cell with an element.
var (
	sufLength = []byte{'@', 'L'}
	sufHead   = []byte{'@', 'H'}
	sufTail   = []byte{'@', 'T'}
)

// List is a handle onto one named list collection. It holds no state of
// its own beyond the prefix; every read/write goes straight to Store.
type List struct {
	s      store.Store
	prefix [codec.PrefixLen]byte
}

// Open returns a handle for the list named name.
func Open(s store.Store, name []byte) *List {
	return &List{s: s, prefix: codec.Prefix(codec.TypeList, name)}
}

// OpenWithPrefix returns a handle using an already-built prefix, letting a
// composite engine (internal/arraymap) stamp its own type flag over an
// otherwise ordinary List key space.
func OpenWithPrefix(s store.Store, prefix [codec.PrefixLen]byte) *List {
	return &List{s: s, prefix: prefix}
}

func (l *List) metaKey(suf []byte) []byte {
	return append(append([]byte{}, l.prefix[:]...), suf...)
}

func (l *List) elemKey(absIdx uint32) []byte {
	k := append(append([]byte{}, l.prefix[:]...), elemTag)
	return append(k, codec.U32ToBytes(absIdx)...)
}

func (l *List) getU32(key []byte) (uint32, bool, error) {
	v, err := l.s.Get(key)
	if err != nil {
		return 0, false, fmt.Errorf("list: %w: %v", lodiserr.ErrStore, err)
	}
	if v == nil {
		return 0, false, nil
	}
	u, err := codec.BytesToU32(v)
	if err != nil {
		return 0, false, fmt.Errorf("list: %w", err)
	}
	return u, true, nil
}

// Len returns the number of live elements.
func (l *List) Len() (uint32, error) {
	n, ok, err := l.getU32(l.metaKey(sufLength))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return n, nil
}

// head returns the head sentinel: one slot before the first live element.
// A list that has never had a metadata cell written defaults to maxU32, so
// the very first push_left lands on slot maxU32 (the next one on maxU32-1).
func (l *List) head() (uint32, error) {
	v, ok, err := l.getU32(l.metaKey(sufHead))
	if err != nil || !ok {
		return maxU32, err
	}
	return v, nil
}

// tail returns the tail sentinel: one slot past the last live element. A
// list that has never had a metadata cell written defaults to 0, so the
// very first push lands on slot 0.
func (l *List) tail() (uint32, error) {
	v, ok, err := l.getU32(l.metaKey(sufTail))
	if err != nil || !ok {
		return 0, err
	}
	return v, nil
}

// Bounds returns the current head sentinel, tail sentinel, and length.
// The live window is the open interval (head, tail): the first live slot
// is head+1, the last is tail-1. head and tail are meaningless when
// length is 0.
func (l *List) Bounds() (head, tail, length uint32, err error) {
	head, err = l.head()
	if err != nil {
		return 0, 0, 0, err
	}
	tail, err = l.tail()
	if err != nil {
		return 0, 0, 0, err
	}
	length, err = l.Len()
	if err != nil {
		return 0, 0, 0, err
	}
	return head, tail, length, nil
}

// AbsIndex resolves a relative index (negative counts from the tail) to an
// absolute slot index. ok is false if idx falls outside [0, length).
func (l *List) AbsIndex(idx int64) (abs uint32, ok bool, err error) {
	head, tail, length, err := l.Bounds()
	if err != nil {
		return 0, false, err
	}
	if length == 0 {
		return 0, false, nil
	}
	if idx >= 0 {
		if idx >= int64(length) {
			return 0, false, nil
		}
		return head + 1 + uint32(idx), true, nil
	}
	if -idx > int64(length) {
		return 0, false, nil
	}
	return tail + uint32(idx), true, nil
}

// Index returns the element at relative index idx.
func (l *List) Index(idx int64) ([]byte, bool, error) {
	abs, ok, err := l.AbsIndex(idx)
	if err != nil || !ok {
		return nil, false, err
	}
	return l.IndexWithAbsIndex(abs)
}

// IndexWithAbsIndex returns the element stored at absolute index abs,
// regardless of whether abs currently falls within the live window.
func (l *List) IndexWithAbsIndex(abs uint32) ([]byte, bool, error) {
	v, err := l.s.Get(l.elemKey(abs))
	if err != nil {
		return nil, false, fmt.Errorf("list: %w: %v", lodiserr.ErrStore, err)
	}
	return v, v != nil, nil
}

// RandomIndex returns a uniformly random absolute index among the live
// elements. The caller supplies the random relative offset through rnd,
// since the engine itself holds no RNG.
func (l *List) RandomIndex(rnd func(n uint32) uint32) (abs uint32, ok bool, err error) {
	head, _, length, err := l.Bounds()
	if err != nil || length == 0 {
		return 0, false, err
	}
	return head + 1 + rnd(length), true, nil
}

// Random returns a uniformly random live element and its absolute index.
func (l *List) Random(rnd func(n uint32) uint32) ([]byte, uint32, bool, error) {
	abs, ok, err := l.RandomIndex(rnd)
	if err != nil || !ok {
		return nil, 0, false, err
	}
	v, ok, err := l.IndexWithAbsIndex(abs)
	return v, abs, ok, err
}

// Range returns the elements from relative index start to stop inclusive
// (Redis-style, negative indices count from the tail). Slots that are
// unexpectedly missing are silently skipped rather than surfaced as an
// error, matching the original engine's defensive scan.
func (l *List) Range(start, stop int64, reverse bool) ([][]byte, error) {
	head, _, length, err := l.Bounds()
	if err != nil || length == 0 {
		return nil, err
	}
	if start < 0 {
		start += int64(length)
	}
	if stop < 0 {
		stop += int64(length)
	}
	if start < 0 {
		start = 0
	}
	if stop >= int64(length) {
		stop = int64(length) - 1
	}
	if start > stop {
		return nil, nil
	}

	first := head + 1
	out := make([][]byte, 0, stop-start+1)
	if !reverse {
		for i := start; i <= stop; i++ {
			v, ok, err := l.IndexWithAbsIndex(first + uint32(i))
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, v)
			}
		}
	} else {
		for i := stop; i >= start; i-- {
			v, ok, err := l.IndexWithAbsIndex(first + uint32(i))
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// All returns every live element in order.
func (l *List) All() ([][]byte, error) {
	_, _, length, err := l.Bounds()
	if err != nil || length == 0 {
		return nil, err
	}
	return l.Range(0, int64(length)-1, false)
}

// withinWindow reports whether abs lies strictly inside the circular
// window (head, tail), accounting for 2^32 wraparound. head and tail
// themselves are never "in window" — they are the one-before/one-after
// sentinels, not live slots.
func withinWindow(abs, head, tail uint32) bool {
	if head < tail {
		return abs > head && abs < tail
	}
	return abs > head || abs < tail
}

// SetByAbsIndex overwrites the value at an already-live absolute index
// abs. Unlike Push/PushLeft it never extends the window: abs must fall
// strictly inside (head, tail) or this returns lodiserr.ErrOutOfRange,
// matching original_source/lodisdb/src/list.rs::set_by_absindex.
func (l *List) SetByAbsIndex(abs uint32, value []byte) error {
	head, tail, _, err := l.Bounds()
	if err != nil {
		return err
	}
	if !withinWindow(abs, head, tail) {
		return fmt.Errorf("list: %w", lodiserr.ErrOutOfRange)
	}
	if err := l.s.Put(l.elemKey(abs), value); err != nil {
		return fmt.Errorf("list: %w: %v", lodiserr.ErrStore, err)
	}
	return nil
}

// Push appends values at the tail, in order, and returns the absolute
// index assigned to each. The whole operation — every element write plus
// the tail/length update — commits as one atomic batch.
func (l *List) Push(values ...[]byte) ([]uint32, error) {
	if len(values) == 0 {
		return nil, nil
	}
	_, tail, length, err := l.Bounds()
	if err != nil {
		return nil, err
	}

	b := l.s.NewBatch()
	out := make([]uint32, 0, len(values))
	idx := tail
	for _, v := range values {
		out = append(out, idx)
		b.Put(l.elemKey(idx), v)
		idx++
	}
	b.Put(l.metaKey(sufTail), codec.U32ToBytes(idx))
	b.Put(l.metaKey(sufLength), codec.U32ToBytes(length+uint32(len(values))))
	if err := b.Commit(); err != nil {
		return nil, fmt.Errorf("list: %w: %v", lodiserr.ErrStore, err)
	}
	return out, nil
}

// PushLeft prepends values at the head, in order (so the final list order
// has the last pushed value first), and returns the absolute index
// assigned to each. Commits as one atomic batch.
func (l *List) PushLeft(values ...[]byte) ([]uint32, error) {
	if len(values) == 0 {
		return nil, nil
	}
	head, _, length, err := l.Bounds()
	if err != nil {
		return nil, err
	}

	b := l.s.NewBatch()
	out := make([]uint32, 0, len(values))
	idx := head
	for _, v := range values {
		out = append(out, idx)
		b.Put(l.elemKey(idx), v)
		idx--
	}
	b.Put(l.metaKey(sufHead), codec.U32ToBytes(idx))
	b.Put(l.metaKey(sufLength), codec.U32ToBytes(length+uint32(len(values))))
	if err := b.Commit(); err != nil {
		return nil, fmt.Errorf("list: %w: %v", lodiserr.ErrStore, err)
	}
	return out, nil
}

// Pop removes and returns the tail element, in one atomic batch.
func (l *List) Pop() ([]byte, bool, error) {
	_, tail, length, err := l.Bounds()
	if err != nil || length == 0 {
		return nil, false, err
	}
	idx := tail - 1
	v, ok, err := l.IndexWithAbsIndex(idx)
	if err != nil || !ok {
		return nil, false, err
	}

	b := l.s.NewBatch()
	b.Delete(l.elemKey(idx))
	b.Put(l.metaKey(sufTail), codec.U32ToBytes(idx))
	b.Put(l.metaKey(sufLength), codec.U32ToBytes(length-1))
	if err := b.Commit(); err != nil {
		return nil, false, fmt.Errorf("list: %w: %v", lodiserr.ErrStore, err)
	}
	return v, true, nil
}

// PopLeft removes and returns the head element, in one atomic batch.
func (l *List) PopLeft() ([]byte, bool, error) {
	head, _, length, err := l.Bounds()
	if err != nil || length == 0 {
		return nil, false, err
	}
	idx := head + 1
	v, ok, err := l.IndexWithAbsIndex(idx)
	if err != nil || !ok {
		return nil, false, err
	}

	b := l.s.NewBatch()
	b.Delete(l.elemKey(idx))
	b.Put(l.metaKey(sufHead), codec.U32ToBytes(idx))
	b.Put(l.metaKey(sufLength), codec.U32ToBytes(length-1))
	if err := b.Commit(); err != nil {
		return nil, false, fmt.Errorf("list: %w: %v", lodiserr.ErrStore, err)
	}
	return v, true, nil
}

// PopRandom removes and returns a uniformly random live element.
func (l *List) PopRandom(rnd func(n uint32) uint32) ([]byte, bool, error) {
	abs, ok, err := l.RandomIndex(rnd)
	if err != nil || !ok {
		return nil, false, err
	}
	return l.DeleteWithAbsIndex(abs)
}

// Delete removes and returns the element at relative index idx.
func (l *List) Delete(idx int64) ([]byte, bool, error) {
	abs, ok, err := l.AbsIndex(idx)
	if err != nil || !ok {
		return nil, false, err
	}
	return l.DeleteWithAbsIndex(abs)
}

// DeleteWithAbsIndex removes and returns the element at absolute index
// abs. Deleting a boundary element (the first or last live slot) just
// shrinks the window; deleting an interior element swaps the first
// element into the vacated slot and shrinks the window from the head
// instead, so the live window always stays a single contiguous arc with
// no gaps. The read, the swap write, and the cursor/length update all
// commit as one atomic batch.
func (l *List) DeleteWithAbsIndex(abs uint32) ([]byte, bool, error) {
	victim, err := l.s.Get(l.elemKey(abs))
	if err != nil {
		return nil, false, fmt.Errorf("list: %w: %v", lodiserr.ErrStore, err)
	}
	if victim == nil {
		return nil, false, nil
	}

	head, tail, length, err := l.Bounds()
	if err != nil {
		return nil, false, err
	}
	first := head + 1
	last := tail - 1

	b := l.s.NewBatch()
	switch abs {
	case first:
		b.Delete(l.elemKey(abs))
		b.Put(l.metaKey(sufHead), codec.U32ToBytes(abs))
		b.Put(l.metaKey(sufLength), codec.U32ToBytes(length-1))
	case last:
		b.Delete(l.elemKey(abs))
		b.Put(l.metaKey(sufTail), codec.U32ToBytes(abs))
		b.Put(l.metaKey(sufLength), codec.U32ToBytes(length-1))
	default:
		firstVal, err := l.s.Get(l.elemKey(first))
		if err != nil {
			return nil, false, fmt.Errorf("list: %w: %v", lodiserr.ErrStore, err)
		}
		b.Delete(l.elemKey(first))
		b.Put(l.metaKey(sufHead), codec.U32ToBytes(first))
		b.Put(l.metaKey(sufLength), codec.U32ToBytes(length-1))
		b.Put(l.elemKey(abs), firstVal)
	}
	if err := b.Commit(); err != nil {
		return nil, false, fmt.Errorf("list: %w: %v", lodiserr.ErrStore, err)
	}
	return victim, true, nil
}

// Remove deletes the entire list collection.
func (l *List) Remove() error {
	return collkey.Remove(l.s, l.prefix[:])
}
