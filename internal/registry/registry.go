// Package registry tracks which collections exist, independent of the
// core store/list/hmap/arraymap packages (which never learn a
// collection's name once they've hashed it into a prefix). It exists
// because nothing else in the key-value layer can answer "what
// collections exist" or "list everything of this type" — the ability
// original_source/src/state.rs gets for free from an in-process
// key_map/string_map registry. Built on top of internal/hmap rather than
// a bespoke structure, in the same way internal/arraymap composes
// existing engines instead of inventing a new one.
package registry

import (
	"fmt"
	"time"

	"github.com/edirooss/lodis/internal/codec"
	"github.com/edirooss/lodis/internal/hmap"
	"github.com/edirooss/lodis/internal/lodiserr"
	"github.com/edirooss/lodis/internal/store"
)

// name is the registry's own collection name. It is an ordinary Map name:
// the dispatcher does not validate collection names, so a user Map
// collection opened under this same name shares the registry's key space.
var name = []byte("@@@lodis_registry@@@")

// Registry is a handle onto the process-wide collection registry.
type Registry struct {
	m *hmap.Map
}

// Open returns a handle backed by s.
func Open(s store.Store) *Registry {
	return &Registry{m: hmap.Open(s, name)}
}

func entryKey(typeFlag byte, collName []byte) []byte {
	k := make([]byte, 0, 1+len(collName))
	k = append(k, typeFlag)
	return append(k, collName...)
}

// Track records that a collection exists, if it isn't already tracked.
// now's Unix seconds are recorded, as ASCII decimal, as its creation time; callers
// supply it rather than the registry calling time.Now() itself, keeping
// this package free of wall-clock side effects for testing.
func (r *Registry) Track(typeFlag byte, collName []byte, now time.Time) error {
	_, err := r.m.Setnx(entryKey(typeFlag, collName), codec.FormatDecimal(now.Unix()))
	return err
}

// Untrack removes a collection from the registry, e.g. after its remove
// operation has purged all its keys.
func (r *Registry) Untrack(typeFlag byte, collName []byte) error {
	_, err := r.m.Delete(entryKey(typeFlag, collName))
	return err
}

// Entry describes one tracked collection.
type Entry struct {
	TypeFlag byte
	Name     []byte
	Created  time.Time
}

// List returns every collection tracked under typeFlag.
func (r *Registry) List(typeFlag byte) ([]Entry, error) {
	pairs, err := r.m.All()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, p := range pairs {
		k, v := p[0], p[1]
		if len(k) == 0 || k[0] != typeFlag {
			continue
		}
		ts, ok := codec.ParseDecimal(v)
		if !ok {
			return nil, fmt.Errorf("registry: %w", lodiserr.ErrShapeMismatch)
		}
		out = append(out, Entry{
			TypeFlag: typeFlag,
			Name:     append([]byte{}, k[1:]...),
			Created:  time.Unix(ts, 0).UTC(),
		})
	}
	return out, nil
}

// Glob reports the entries from List(typeFlag) whose name matches the
// shell-style pattern (as interpreted by path.Match), used by
// cmd/lodis-gc to select which tracked collections to sweep.
func (r *Registry) Glob(typeFlag byte, pattern string, match func(pattern, name string) (bool, error)) ([]Entry, error) {
	entries, err := r.List(typeFlag)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range entries {
		ok, err := match(pattern, string(e.Name))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}
