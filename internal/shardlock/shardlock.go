// Package shardlock implements the fixed-size mutex table every lodis
// collection operation locks around: a prime-sized array of plain
// sync.Mutex (not sync.RWMutex, because readers participate in
// multi-step protocols — e.g. ArrayMap's delete invariant repair — that
// must observe an atomic snapshot, not merely a non-corrupting one).
// Grounded on original_source/src/state.rs, which sizes its own lock
// array the same way.
package shardlock

import "sync"

// NumShards is the size of the mutex table. 10007 is prime, chosen (as
// in the original) to spread adjacent collection name hashes across
// distinct shards even when names are sequential or otherwise patterned.
const NumShards = 10007

// ReservedShards is a small fixed tail of the table carved out for
// process-wide structures that are not collections themselves, such as
// internal/registry's own backing map.
const ReservedShards = 2

// Table is a fixed array of mutexes, one per shard.
type Table struct {
	shards [NumShards]sync.Mutex
}

// New returns a ready-to-use Table.
func New() *Table {
	return &Table{}
}

// ShardFor returns the shard index for a collection, derived from the
// 8-byte name hash that its prefix carries after the type flag (the type
// flag is deliberately excluded, so a List and
// a Map that happen to share a name still contend on the same shard —
// matching the original's single lock per name regardless of collection
// kind).
func ShardFor(nameHash uint64) int {
	return int(nameHash % uint64(NumShards-ReservedShards))
}

// ReservedShard returns a shard index reserved for process-wide
// structure n (0-indexed, must be < ReservedShards), kept out of the
// range ShardFor ever returns so a collection can never collide with it.
func ReservedShard(n int) int {
	return NumShards - ReservedShards + n
}

// Lock acquires the mutex for shard i.
func (t *Table) Lock(i int) { t.shards[i].Lock() }

// Unlock releases the mutex for shard i.
func (t *Table) Unlock(i int) { t.shards[i].Unlock() }

// With runs fn while holding shard i's mutex.
func (t *Table) With(i int, fn func() error) error {
	t.Lock(i)
	defer t.Unlock(i)
	return fn()
}
