package document

// Props holds a block instance's parameter state. Values are expected
// to be JSON-compatible (strings, numbers, bools, nested maps and
// slices) so that snapshots encode without surprises.
type Props map[string]any

// Clone returns a deep copy of p. Nested maps and slices are copied;
// scalar values are shared, which is safe because they are immutable.
func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge applies patch onto p and returns p. A key with an explicit nil
// value deletes the key; all other keys overwrite.
func (p Props) Merge(patch Props) Props {
	for k, v := range patch {
		if v == nil {
			delete(p, k)
			continue
		}
		p[k] = cloneValue(v)
	}
	return p
}

// Equal reports whether two prop sets carry the same keys and values.
// Nested maps and slices compare structurally.
func (p Props) Equal(other Props) bool {
	if len(p) != len(other) {
		return false
	}
	for k, v := range p {
		ov, ok := other[k]
		if !ok || !equalValue(v, ov) {
			return false
		}
	}
	return true
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}
		return out
	case Props:
		return map[string]any(val.Clone())
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func equalValue(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, e := range av {
			be, ok := bv[k]
			if !ok || !equalValue(e, be) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i, e := range av {
			if !equalValue(e, bv[i]) {
				return false
			}
		}
		return true
	default:
		if af, ok := numeric(a); ok {
			bf, ok := numeric(b)
			return ok && af == bf
		}
		return a == b
	}
}

// numeric widens the number types a prop value passes through, so an
// int written by an editor equals the float64 the same value decodes
// to from a JSON snapshot.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
