package hydration

// Resolve expands every backreference reachable from node into a
// fresh, self-contained value tree. Resolution is memoized per table
// index and cycle-safe: the second visit to an index already on the
// active expansion path yields nil at that occurrence instead of
// recursing forever. Resolve never fails; malformed shapes degrade to
// structural copies and cyclic positions degrade to nil.
//
// The memo cache and the visiting set live only for this one call, so
// concurrent resolutions of different keys over the same table cannot
// interfere with each other's in-flight state.
func Resolve(table Table, node any) any {
	cache := map[int]any{}
	visiting := map[int]struct{}{}
	return resolve(table, node, cache, visiting)
}

// refIndex reports whether v is a whole number inside the table
// bounds, the only shape a backreference can take on the wire. JSON
// numbers arrive as float64, so integerness has to be checked rather
// than assumed.
func refIndex(table Table, v any) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	i := int(f)
	if float64(i) != f || i < 0 || i >= len(table) {
		return 0, false
	}
	return i, true
}

func resolve(table Table, node any, cache map[int]any, visiting map[int]struct{}) any {
	idx, isRef := refIndex(table, node)
	if !isRef {
		// literal case: copy containers structurally, pass
		// primitives and out-of-range integers through untouched
		switch v := node.(type) {
		case []any:
			out := make([]any, len(v))
			for i, el := range v {
				out[i] = resolve(table, el, cache, visiting)
			}
			return out
		case map[string]any:
			out := make(map[string]any, len(v))
			for k, el := range v {
				out[k] = resolve(table, el, cache, visiting)
			}
			return out
		default:
			return v
		}
	}

	if cached, ok := cache[idx]; ok {
		return cached
	}
	if _, ok := visiting[idx]; ok {
		// cycle: this occurrence collapses to nil, but the result
		// is deliberately not cached so the index can still resolve
		// to a real value through a non-cyclic path
		return nil
	}
	visiting[idx] = struct{}{}

	var resolved any
	switch target := table[idx].(type) {
	case []any:
		out := make([]any, len(target))
		for i, el := range target {
			out[i] = resolve(table, el, cache, visiting)
		}
		resolved = out
	case map[string]any:
		out := make(map[string]any, len(target))
		for k, el := range target {
			out[k] = resolve(table, el, cache, visiting)
		}
		resolved = out
	default:
		// a primitive stored at a referenced slot is terminal,
		// even when it happens to look like another index
		resolved = target
	}

	delete(visiting, idx)
	cache[idx] = resolved
	return resolved
}
