package walk

import (
	"fmt"

	"github.com/trellis-data/trellis/api"
)

// FlattenKeys enumerates the concrete keys of every repeated leaf under a
// row, in traversal order. Arrays descend with their indices; maps and
// scalars are leaves and yield the key accumulated so far. The row id is
// the first segment of every key, making keys unique across a dataset.
func FlattenKeys(rowid string, v *api.Value) []api.Path {
	var out []api.Path
	flattenKeys(v, api.Path{rowid}, &out)
	return out
}

func flattenKeys(v *api.Value, key api.Path, out *[]api.Path) {
	if v == nil {
		return
	}
	if v.Kind() != api.KindArray {
		*out = append(*out, key.Clone())
		return
	}
	for i := 0; i < v.Len(); i++ {
		flattenKeys(v.At(i), append(key, api.Index(i)), out)
	}
}

// CountLeaves counts the non-array leaves a value flattens to.
func CountLeaves(v *api.Value) int {
	if v == nil {
		return 0
	}
	if v.Kind() != api.KindArray {
		return 1
	}
	n := 0
	for i := 0; i < v.Len(); i++ {
		n += CountLeaves(v.At(i))
	}
	return n
}

// WrapInShape nests a computed value back into the record shape described by
// shape: each entry is the map-key chain for one repetition level, and the
// value recurses through array levels between entries. Nil input at a
// non-final level wraps to an empty map so sparse outputs stay sparse.
//
// A scalar or map where an array level is expected is a caller error, not a
// data irregularity.
func WrapInShape(v *api.Value, shape []api.Path) (*api.Value, error) {
	if len(shape) == 0 {
		return v, nil
	}
	props := shape[0]
	if len(shape) == 1 {
		return wrapInProps(v, props), nil
	}
	if v == nil || v.IsMissing() {
		return api.NewMap(), nil
	}
	if v.Kind() != api.KindArray {
		return nil, fmt.Errorf("wrap in shape: expected array at level %s, got %s", props, v.Kind())
	}
	elems := make([]*api.Value, v.Len())
	for i := 0; i < v.Len(); i++ {
		wrapped, err := WrapInShape(v.At(i), shape[1:])
		if err != nil {
			return nil, err
		}
		elems[i] = wrapped
	}
	return wrapInProps(api.Array(elems...), props), nil
}

func wrapInProps(v *api.Value, props api.Path) *api.Value {
	if v == nil {
		v = api.Missing()
	}
	for i := len(props) - 1; i >= 0; i-- {
		v = api.NewMap().Set(props[i], v)
	}
	return v
}

// SparseToDense densifies a sparse slice before calling fn and re-expands
// the result, so fn only sees present values. fn must return one output per
// input.
func SparseToDense[Tin, Tout any](in []*Tin, fn func([]Tin) []Tout) ([]*Tout, error) {
	dense := make([]Tin, 0, len(in))
	for _, v := range in {
		if v != nil {
			dense = append(dense, *v)
		}
	}
	computed := fn(dense)
	if len(computed) != len(dense) {
		return nil, fmt.Errorf("sparse to dense: fn returned %d outputs for %d inputs", len(computed), len(dense))
	}
	out := make([]*Tout, len(in))
	j := 0
	for i, v := range in {
		if v != nil {
			out[i] = &computed[j]
			j++
		}
	}
	return out, nil
}

// ShardRange computes the half-open row range for one shard of numItems.
// A non-positive shardCount means a single shard covering everything.
func ShardRange(shardID, shardCount, numItems int) (int, int) {
	if shardCount <= 0 {
		return 0, numItems
	}
	size := (numItems + shardCount - 1) / shardCount
	start := shardID * size
	if start > numItems {
		start = numItems
	}
	end := (shardID + 1) * size
	if end > numItems {
		end = numItems
	}
	return start, end
}
