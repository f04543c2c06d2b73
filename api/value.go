package api

import (
	"fmt"
	"sort"
	"strings"
)

// Kind discriminates the variants of a record-tree Value.
type Kind int

const (
	// KindMissing marks an explicitly absent leaf. Distinct from a nil
	// *Value, which means "no node at all" during resolution.
	KindMissing Kind = iota
	KindScalar
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one node of a record tree: a map with ordered keys, an array, a
// scalar leaf (string, int64, float64, bool or nil), or the missing
// sentinel. Values are read-only once built; the resolver only traverses
// them.
type Value struct {
	kind   Kind
	keys   []string
	fields map[string]*Value
	elems  []*Value
	scalar any
}

// Missing returns the missing-leaf sentinel value.
func Missing() *Value {
	return &Value{kind: KindMissing}
}

// Scalar wraps a scalar leaf. Integer types normalize to int64 and float32
// to float64; anything outside the scalar set is stored as its string form.
func Scalar(v any) *Value {
	switch s := v.(type) {
	case nil, string, bool, int64, float64:
		return &Value{kind: KindScalar, scalar: s}
	case int:
		return &Value{kind: KindScalar, scalar: int64(s)}
	case int32:
		return &Value{kind: KindScalar, scalar: int64(s)}
	case uint:
		return &Value{kind: KindScalar, scalar: int64(s)}
	case uint32:
		return &Value{kind: KindScalar, scalar: int64(s)}
	case uint64:
		return &Value{kind: KindScalar, scalar: int64(s)}
	case float32:
		return &Value{kind: KindScalar, scalar: float64(s)}
	default:
		return &Value{kind: KindScalar, scalar: fmt.Sprint(v)}
	}
}

// Array builds an array node from its elements, in order.
func Array(elems ...*Value) *Value {
	return &Value{kind: KindArray, elems: elems}
}

// NewMap builds an empty map node. Keys keep insertion order.
func NewMap() *Value {
	return &Value{kind: KindMap, fields: make(map[string]*Value)}
}

// Set adds or replaces a key on a map node and returns the node for
// chaining. Replacing keeps the key's original position.
func (v *Value) Set(key string, child *Value) *Value {
	if v.kind != KindMap {
		panic("api: Set on non-map value")
	}
	if _, ok := v.fields[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = child
	return v
}

// Kind reports the variant of this node.
func (v *Value) Kind() Kind { return v.kind }

// IsMissing reports whether this node is the missing sentinel.
func (v *Value) IsMissing() bool { return v.kind == KindMissing }

// Field looks up a map key. Returns (nil, false) on non-maps and absent keys.
func (v *Value) Field(key string) (*Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	child, ok := v.fields[key]
	return child, ok
}

// Keys returns a map node's keys in order. Nil for non-maps.
func (v *Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	return v.keys
}

// Len returns the element count of an array node, 0 otherwise.
func (v *Value) Len() int {
	if v.kind != KindArray {
		return 0
	}
	return len(v.elems)
}

// At returns the i-th array element, or nil when out of range or non-array.
func (v *Value) At(i int) *Value {
	if v.kind != KindArray || i < 0 || i >= len(v.elems) {
		return nil
	}
	return v.elems[i]
}

// ScalarValue returns the wrapped scalar, or nil for non-scalars.
func (v *Value) ScalarValue() any {
	if v.kind != KindScalar {
		return nil
	}
	return v.scalar
}

// FromAny converts a parsed JSON value (maps, slices, scalars) into a record
// tree. Go maps do not preserve source order, so keys sort lexically to keep
// conversion deterministic.
func FromAny(v any) *Value {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, FromAny(t[k]))
		}
		return m
	case []any:
		elems := make([]*Value, len(t))
		for i, e := range t {
			elems[i] = FromAny(e)
		}
		return Array(elems...)
	default:
		return Scalar(v)
	}
}

// Interface converts a record tree back to plain Go values (map[string]any,
// []any, scalars). Missing becomes nil.
func (v *Value) Interface() any {
	switch v.kind {
	case KindMap:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.fields[k].Interface()
		}
		return out
	case KindArray:
		out := make([]any, len(v.elems))
		for i, e := range v.elems {
			out[i] = e.Interface()
		}
		return out
	case KindScalar:
		return v.scalar
	default:
		return nil
	}
}

// Equal reports deep equality, including map key order.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindMap:
		if len(v.keys) != len(o.keys) {
			return false
		}
		for i, k := range v.keys {
			if o.keys[i] != k || !v.fields[k].Equal(o.fields[k]) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i, e := range v.elems {
			if !e.Equal(o.elems[i]) {
				return false
			}
		}
		return true
	case KindScalar:
		return v.scalar == o.scalar
	default:
		return true
	}
}

// String renders a compact JSON-ish form for debugging and test failures.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v *Value) write(b *strings.Builder) {
	switch v.kind {
	case KindMap:
		b.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(b, "%q:", k)
			v.fields[k].write(b)
		}
		b.WriteByte('}')
	case KindArray:
		b.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				b.WriteByte(',')
			}
			e.write(b)
		}
		b.WriteByte(']')
	case KindScalar:
		if s, ok := v.scalar.(string); ok {
			fmt.Fprintf(b, "%q", s)
		} else {
			fmt.Fprintf(b, "%v", v.scalar)
		}
	default:
		b.WriteString("<missing>")
	}
}
