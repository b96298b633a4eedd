// Package dispatcher wires a parsed command and its parameters to the
// right collection engine under the right shard lock, and renders the
// result as a wire response. It is the Go analogue of
// original_source/src/handler.rs's per-route handlers, collapsed into
// one table-driven Execute the way the teacher's internal/api handlers
// share one request/response plumbing path.
package dispatcher

import (
	"fmt"
	"time"

	"github.com/edirooss/lodis/internal/arraymap"
	"github.com/edirooss/lodis/internal/codec"
	"github.com/edirooss/lodis/internal/hmap"
	"github.com/edirooss/lodis/internal/list"
	"github.com/edirooss/lodis/internal/lodiserr"
	"github.com/edirooss/lodis/internal/registry"
	"github.com/edirooss/lodis/internal/shardlock"
	"github.com/edirooss/lodis/internal/store"
	"github.com/edirooss/lodis/pkg/frame"
)

// Rand supplies the uniform randomness the *random commands need. The
// engines never generate their own, so tests can inject a deterministic
// source; production wiring uses math/rand/v2 (see cmd/lodis-server).
type Rand func(n uint32) uint32

// Clock supplies the current time for registry bookkeeping.
type Clock func() time.Time

// Dispatcher executes commands against one store.Store.
type Dispatcher struct {
	s      store.Store
	shards *shardlock.Table
	reg    *registry.Registry
	rnd    Rand
	now    Clock
}

// New returns a ready-to-use Dispatcher.
func New(s store.Store, shards *shardlock.Table, reg *registry.Registry, rnd Rand, now Clock) *Dispatcher {
	return &Dispatcher{s: s, shards: shards, reg: reg, rnd: rnd, now: now}
}

// Execute runs cmd against the named collection with params, and returns
// the built response body. The returned error is nil exactly when the
// response's status byte is frame.StatusOK; callers that only need the
// wire body can ignore it and rely on the status byte instead.
func (d *Dispatcher) Execute(cmd Command, name []byte, params [][]byte) ([]byte, error) {
	result, err := d.run(cmd, name, params)
	w := frame.NewWriter(frame.StatusFor(err))
	if err == nil {
		w.WriteRaw(result)
	}
	return w.Bytes(), err
}

func (d *Dispatcher) run(cmd Command, name []byte, params [][]byte) ([]byte, error) {
	typeFlag, ok := cmd.typeFlagOf()
	if !ok {
		return nil, fmt.Errorf("dispatcher: %w: unknown command %q", lodiserr.ErrParamType, cmd)
	}
	nameHash := codec.NameHash(name)
	shard := shardlock.ShardFor(nameHash)

	var out []byte
	err := d.shards.With(shard, func() error {
		var err error
		out, err = d.dispatch(cmd, typeFlag, name, params)
		return err
	})
	return out, err
}

func need(params [][]byte, n int) error {
	if len(params) != n {
		return fmt.Errorf("dispatcher: %w: want %d params, got %d", lodiserr.ErrParamMismatch, n, len(params))
	}
	return nil
}

func needAtLeast(params [][]byte, n int) error {
	if len(params) < n {
		return fmt.Errorf("dispatcher: %w: want at least %d params, got %d", lodiserr.ErrParamMismatch, n, len(params))
	}
	return nil
}

func asInt64(b []byte) (int64, error) {
	v, ok := codec.ParseDecimal(b)
	if !ok {
		return 0, fmt.Errorf("dispatcher: %w", lodiserr.ErrParamType)
	}
	return v, nil
}

func asUint32(b []byte) (uint32, error) {
	v, err := asInt64(b)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("dispatcher: %w", lodiserr.ErrParamType)
	}
	return uint32(v), nil
}

func asBool(b []byte) bool {
	return len(b) == 1 && b[0] != 0
}

func (d *Dispatcher) track(typeFlag byte, name []byte) error {
	if d.reg == nil {
		return nil
	}
	return d.shards.With(shardlock.ReservedShard(0), func() error {
		return d.reg.Track(typeFlag, name, d.now())
	})
}

func (d *Dispatcher) untrack(typeFlag byte, name []byte) error {
	if d.reg == nil {
		return nil
	}
	return d.shards.With(shardlock.ReservedShard(0), func() error {
		return d.reg.Untrack(typeFlag, name)
	})
}

func (d *Dispatcher) dispatch(cmd Command, typeFlag byte, name []byte, params [][]byte) ([]byte, error) {
	switch {
	case typeFlag == codec.TypeList:
		return d.dispatchList(cmd, name, params)
	case typeFlag == codec.TypeMap:
		return d.dispatchMap(cmd, name, params)
	default:
		return d.dispatchArrayMap(cmd, name, params)
	}
}

func (d *Dispatcher) dispatchList(cmd Command, name []byte, params [][]byte) ([]byte, error) {
	l := list.Open(d.s, name)

	switch cmd {
	case CmdListLen:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		n, err := l.Len()
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteLength(n)
		return w.Bytes(), nil

	case CmdListIndex:
		if err := need(params, 1); err != nil {
			return nil, err
		}
		idx, err := asInt64(params[0])
		if err != nil {
			return nil, err
		}
		v, ok, err := l.Index(idx)
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteMaybe(v, ok)
		return w.Bytes(), nil

	case CmdListRandom:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		v, _, ok, err := l.Random(d.rnd)
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteMaybe(v, ok)
		return w.Bytes(), nil

	case CmdListRange:
		if err := need(params, 3); err != nil {
			return nil, err
		}
		start, err := asInt64(params[0])
		if err != nil {
			return nil, err
		}
		stop, err := asInt64(params[1])
		if err != nil {
			return nil, err
		}
		vals, err := l.Range(start, stop, asBool(params[2]))
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteValues(vals)
		return w.Bytes(), nil

	case CmdListAll:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		vals, err := l.All()
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteValues(vals)
		return w.Bytes(), nil

	case CmdListSet:
		if err := need(params, 2); err != nil {
			return nil, err
		}
		abs, err := asUint32(params[0])
		if err != nil {
			return nil, err
		}
		if err := l.SetByAbsIndex(abs, params[1]); err != nil {
			return nil, err
		}
		if err := d.track(codec.TypeList, name); err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteBool(true)
		return w.Bytes(), nil

	case CmdListPush, CmdListPushLeft:
		if err := needAtLeast(params, 1); err != nil {
			return nil, err
		}
		var idxs []uint32
		var err error
		if cmd == CmdListPush {
			idxs, err = l.Push(params...)
		} else {
			idxs, err = l.PushLeft(params...)
		}
		if err != nil {
			return nil, err
		}
		if err := d.track(codec.TypeList, name); err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteLength(uint32(len(idxs)))
		for _, idx := range idxs {
			w.WriteLength(idx)
		}
		return w.Bytes(), nil

	case CmdListPop, CmdListPopLeft, CmdListPopRandom:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		var v []byte
		var ok bool
		var err error
		switch cmd {
		case CmdListPop:
			v, ok, err = l.Pop()
		case CmdListPopLeft:
			v, ok, err = l.PopLeft()
		default:
			v, ok, err = l.PopRandom(d.rnd)
		}
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteMaybe(v, ok)
		return w.Bytes(), nil

	case CmdListDelete:
		if err := need(params, 1); err != nil {
			return nil, err
		}
		idx, err := asInt64(params[0])
		if err != nil {
			return nil, err
		}
		v, ok, err := l.Delete(idx)
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteMaybe(v, ok)
		return w.Bytes(), nil

	case CmdListRemove:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		if err := l.Remove(); err != nil {
			return nil, err
		}
		if err := d.untrack(codec.TypeList, name); err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteBool(true)
		return w.Bytes(), nil

	default:
		return nil, fmt.Errorf("dispatcher: %w: unknown list command %q", lodiserr.ErrParamType, cmd)
	}
}

func (d *Dispatcher) dispatchMap(cmd Command, name []byte, params [][]byte) ([]byte, error) {
	m := hmap.Open(d.s, name)

	switch cmd {
	case CmdMapLen:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		n, err := m.Len()
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteLength(n)
		return w.Bytes(), nil

	case CmdMapExists:
		if err := need(params, 1); err != nil {
			return nil, err
		}
		ok, err := m.Exists(params[0])
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteBool(ok)
		return w.Bytes(), nil

	case CmdMapGet:
		if err := need(params, 1); err != nil {
			return nil, err
		}
		v, ok, err := m.Get(params[0])
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteMaybe(v, ok)
		return w.Bytes(), nil

	case CmdMapSet:
		if err := need(params, 2); err != nil {
			return nil, err
		}
		if err := m.Set(params[0], params[1]); err != nil {
			return nil, err
		}
		if err := d.track(codec.TypeMap, name); err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteBool(true)
		return w.Bytes(), nil

	case CmdMapSetnx:
		if err := need(params, 2); err != nil {
			return nil, err
		}
		ok, err := m.Setnx(params[0], params[1])
		if err != nil {
			return nil, err
		}
		if ok {
			if err := d.track(codec.TypeMap, name); err != nil {
				return nil, err
			}
		}
		w := frame.NewPayload()
		w.WriteBool(ok)
		return w.Bytes(), nil

	case CmdMapIncrease:
		if err := need(params, 2); err != nil {
			return nil, err
		}
		delta, err := asInt64(params[1])
		if err != nil {
			return nil, err
		}
		n, err := m.Increase(params[0], delta)
		if err != nil {
			return nil, err
		}
		if err := d.track(codec.TypeMap, name); err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteFrame(codec.FormatDecimal(n))
		return w.Bytes(), nil

	case CmdMapDelete:
		if err := need(params, 1); err != nil {
			return nil, err
		}
		ok, err := m.Delete(params[0])
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteBool(ok)
		return w.Bytes(), nil

	case CmdMapKeys, CmdMapValues:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		var vals [][]byte
		var err error
		if cmd == CmdMapKeys {
			vals, err = m.Keys()
		} else {
			vals, err = m.Values()
		}
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteValues(vals)
		return w.Bytes(), nil

	case CmdMapAll:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		pairs, err := m.All()
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WritePairs(pairs)
		return w.Bytes(), nil

	case CmdMapMset:
		if len(params)%2 != 0 {
			return nil, fmt.Errorf("dispatcher: %w: mset needs an even number of params", lodiserr.ErrParamMismatch)
		}
		kvs := make([][2][]byte, 0, len(params)/2)
		for i := 0; i < len(params); i += 2 {
			kvs = append(kvs, [2][]byte{params[i], params[i+1]})
		}
		if err := m.Mset(kvs); err != nil {
			return nil, err
		}
		if err := d.track(codec.TypeMap, name); err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteBool(true)
		return w.Bytes(), nil

	case CmdMapMget:
		vals, err := m.Mget(params)
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteLength(uint32(len(vals)))
		for _, v := range vals {
			w.WriteMaybe(v, v != nil)
		}
		return w.Bytes(), nil

	case CmdMapRemove:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		if err := m.Remove(); err != nil {
			return nil, err
		}
		if err := d.untrack(codec.TypeMap, name); err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteBool(true)
		return w.Bytes(), nil

	default:
		return nil, fmt.Errorf("dispatcher: %w: unknown map command %q", lodiserr.ErrParamType, cmd)
	}
}

func (d *Dispatcher) dispatchArrayMap(cmd Command, name []byte, params [][]byte) ([]byte, error) {
	a := arraymap.Open(d.s, name)

	switch cmd {
	case CmdArrayMapLen:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		n, err := a.Len()
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteLength(n)
		return w.Bytes(), nil

	case CmdArrayMapExists:
		if err := need(params, 1); err != nil {
			return nil, err
		}
		ok, err := a.Exists(params[0])
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteBool(ok)
		return w.Bytes(), nil

	case CmdArrayMapGet:
		if err := need(params, 1); err != nil {
			return nil, err
		}
		v, ok, err := a.Get(params[0])
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteMaybe(v, ok)
		return w.Bytes(), nil

	case CmdArrayMapRandom:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		k, v, ok, err := a.Random(d.rnd)
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		if ok {
			w.WritePairs([][2][]byte{{k, v}})
		} else {
			w.WriteLength(0)
		}
		return w.Bytes(), nil

	case CmdArrayMapPush, CmdArrayMapPushLeft:
		if err := need(params, 2); err != nil {
			return nil, err
		}
		var err error
		if cmd == CmdArrayMapPush {
			err = a.Push(params[0], params[1])
		} else {
			err = a.PushLeft(params[0], params[1])
		}
		if err != nil {
			return nil, err
		}
		if err := d.track(codec.TypeArrayMap, name); err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteBool(true)
		return w.Bytes(), nil

	case CmdArrayMapPushnx, CmdArrayMapPushnxLft:
		if err := need(params, 2); err != nil {
			return nil, err
		}
		var ok bool
		var err error
		if cmd == CmdArrayMapPushnx {
			ok, err = a.Pushnx(params[0], params[1])
		} else {
			ok, err = a.PushnxLeft(params[0], params[1])
		}
		if err != nil {
			return nil, err
		}
		if ok {
			if err := d.track(codec.TypeArrayMap, name); err != nil {
				return nil, err
			}
		}
		w := frame.NewPayload()
		w.WriteBool(ok)
		return w.Bytes(), nil

	case CmdArrayMapIncrease:
		if err := need(params, 2); err != nil {
			return nil, err
		}
		delta, err := asInt64(params[1])
		if err != nil {
			return nil, err
		}
		n, err := a.Increase(params[0], delta)
		if err != nil {
			return nil, err
		}
		if err := d.track(codec.TypeArrayMap, name); err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteFrame(codec.FormatDecimal(n))
		return w.Bytes(), nil

	case CmdArrayMapPop, CmdArrayMapPopLeft, CmdArrayMapPopRandom:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		var k, v []byte
		var ok bool
		var err error
		switch cmd {
		case CmdArrayMapPop:
			k, v, ok, err = a.Pop()
		case CmdArrayMapPopLeft:
			k, v, ok, err = a.PopLeft()
		default:
			k, v, ok, err = a.PopRandom(d.rnd)
		}
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		if ok {
			w.WritePairs([][2][]byte{{k, v}})
		} else {
			w.WriteLength(0)
		}
		return w.Bytes(), nil

	case CmdArrayMapDelete:
		if err := need(params, 1); err != nil {
			return nil, err
		}
		v, ok, err := a.Delete(params[0])
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteMaybe(v, ok)
		return w.Bytes(), nil

	case CmdArrayMapRange:
		if err := need(params, 3); err != nil {
			return nil, err
		}
		start, err := asInt64(params[0])
		if err != nil {
			return nil, err
		}
		stop, err := asInt64(params[1])
		if err != nil {
			return nil, err
		}
		pairs, err := a.Range(start, stop, asBool(params[2]))
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WritePairs(pairs)
		return w.Bytes(), nil

	case CmdArrayMapAll:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		pairs, err := a.All()
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WritePairs(pairs)
		return w.Bytes(), nil

	case CmdArrayMapKeys, CmdArrayMapValues:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		var vals [][]byte
		var err error
		if cmd == CmdArrayMapKeys {
			vals, err = a.Keys()
		} else {
			vals, err = a.Values()
		}
		if err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteValues(vals)
		return w.Bytes(), nil

	case CmdArrayMapRemove:
		if err := need(params, 0); err != nil {
			return nil, err
		}
		if err := a.Remove(); err != nil {
			return nil, err
		}
		if err := d.untrack(codec.TypeArrayMap, name); err != nil {
			return nil, err
		}
		w := frame.NewPayload()
		w.WriteBool(true)
		return w.Bytes(), nil

	default:
		return nil, fmt.Errorf("dispatcher: %w: unknown arraymap command %q", lodiserr.ErrParamType, cmd)
	}
}
