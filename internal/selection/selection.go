// Package selection tracks which rows of a source match field patterns,
// as bitmaps of row ordinals. Stacked filters compose with set operations,
// so each added filter narrows (or, negated, prunes) the previous set.
package selection

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/trellis-data/trellis/api"
	"github.com/trellis-data/trellis/internal/source"
	"github.com/trellis-data/trellis/internal/walk"
)

// Filter is one pattern to apply. Negate keeps rows with no match instead.
type Filter struct {
	Pattern api.Path
	Negate  bool
}

// FromPattern returns the ordinals of rows where the pattern resolves to at
// least one value node.
func FromPattern(src source.Source, pattern api.Path) (*roaring.Bitmap, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	bm := roaring.New()
	for i := 0; i < src.NumRows(); i++ {
		row, err := src.Row(i)
		if err != nil {
			return nil, err
		}
		nodes, err := walk.Resolve(row, pattern)
		if err != nil {
			return nil, err
		}
		if len(nodes) > 0 {
			bm.Add(uint32(i))
		}
	}
	return bm, nil
}

// All returns the bitmap of every row ordinal in the source.
func All(src source.Source) *roaring.Bitmap {
	bm := roaring.New()
	n := src.NumRows()
	if n > 0 {
		bm.AddRange(0, uint64(n))
	}
	return bm
}

// Apply intersects the filters' row sets, starting from all rows. Negated
// filters subtract their matches instead.
func Apply(src source.Source, filters []Filter) (*roaring.Bitmap, error) {
	result := All(src)
	for _, f := range filters {
		bm, err := FromPattern(src, f.Pattern)
		if err != nil {
			return nil, err
		}
		if f.Negate {
			result.AndNot(bm)
		} else {
			result.And(bm)
		}
	}
	return result, nil
}

// Union returns the rows matching any of the patterns.
func Union(src source.Source, patterns []api.Path) (*roaring.Bitmap, error) {
	result := roaring.New()
	for _, p := range patterns {
		bm, err := FromPattern(src, p)
		if err != nil {
			return nil, err
		}
		result.Or(bm)
	}
	return result, nil
}

// Ordinals lists a bitmap's row ordinals in ascending order.
func Ordinals(bm *roaring.Bitmap) []uint32 {
	return bm.ToArray()
}
