package template

import "strings"

// Resolve looks up a dotted path (e.g. "collection.title") in ctx.
// It is a total function: a missing segment, or a path that traverses
// through a non-map value, returns (zero, false) and never an error.
// Segment matching is case-sensitive; no array-index syntax exists.
func Resolve(ctx Context, path string) (Value, bool) {
	if ctx == nil || path == "" {
		return Value{}, false
	}
	segs := strings.Split(path, ".")
	cur := ctx
	for i, seg := range segs {
		v, ok := cur[seg]
		if !ok {
			return Value{}, false
		}
		if i == len(segs)-1 {
			return v, true
		}
		if v.Kind != KindMap {
			return Value{}, false
		}
		cur = v.Map
	}
	return Value{}, false
}
