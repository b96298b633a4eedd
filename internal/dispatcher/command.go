package dispatcher

import "github.com/edirooss/lodis/internal/codec"

// Command identifies one dispatchable operation. Commands are namespaced
// by collection kind (list., map., arraymap.) the way the original
// Rust handler namespaces its routes by collection type.
type Command string

const (
	CmdListLen       Command = "list.len"
	CmdListIndex     Command = "list.index"
	CmdListRandom    Command = "list.random"
	CmdListRange     Command = "list.range"
	CmdListAll       Command = "list.all"
	CmdListSet       Command = "list.set"
	CmdListPush      Command = "list.push"
	CmdListPushLeft  Command = "list.pushleft"
	CmdListPop       Command = "list.pop"
	CmdListPopLeft   Command = "list.popleft"
	CmdListPopRandom Command = "list.poprandom"
	CmdListDelete    Command = "list.delete"
	CmdListRemove    Command = "list.remove"

	CmdMapLen      Command = "map.len"
	CmdMapExists   Command = "map.exists"
	CmdMapGet      Command = "map.get"
	CmdMapSet      Command = "map.set"
	CmdMapSetnx    Command = "map.setnx"
	CmdMapIncrease Command = "map.increase"
	CmdMapDelete   Command = "map.delete"
	CmdMapKeys     Command = "map.keys"
	CmdMapValues   Command = "map.values"
	CmdMapAll      Command = "map.all"
	CmdMapMset     Command = "map.mset"
	CmdMapMget     Command = "map.mget"
	CmdMapRemove   Command = "map.remove"

	CmdArrayMapLen       Command = "arraymap.len"
	CmdArrayMapExists    Command = "arraymap.exists"
	CmdArrayMapGet       Command = "arraymap.get"
	CmdArrayMapRandom    Command = "arraymap.random"
	CmdArrayMapPush      Command = "arraymap.push"
	CmdArrayMapPushLeft  Command = "arraymap.pushleft"
	CmdArrayMapPushnx    Command = "arraymap.pushnx"
	CmdArrayMapPushnxLft Command = "arraymap.pushnxleft"
	CmdArrayMapIncrease  Command = "arraymap.increase"
	CmdArrayMapPop       Command = "arraymap.pop"
	CmdArrayMapPopLeft   Command = "arraymap.popleft"
	CmdArrayMapPopRandom Command = "arraymap.poprandom"
	CmdArrayMapDelete    Command = "arraymap.delete"
	CmdArrayMapRange     Command = "arraymap.range"
	CmdArrayMapAll       Command = "arraymap.all"
	CmdArrayMapKeys      Command = "arraymap.keys"
	CmdArrayMapValues    Command = "arraymap.values"
	CmdArrayMapRemove    Command = "arraymap.remove"
)

// typeFlagOf returns the codec type flag a command's collection name
// should be hashed and registered under.
func (c Command) typeFlagOf() (byte, bool) {
	switch {
	case len(c) >= 5 && c[:5] == "list.":
		return codec.TypeList, true
	case len(c) >= 4 && c[:4] == "map.":
		return codec.TypeMap, true
	case len(c) >= 9 && c[:9] == "arraymap.":
		return codec.TypeArrayMap, true
	default:
		return 0, false
	}
}
