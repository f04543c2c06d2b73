package schema

import (
	"math/rand"

	"github.com/trellis-data/trellis/api"
)

// InferConfig controls the schema inference pipeline.
type InferConfig struct {
	SampleSize int   // max rows to sample (default 1000)
	Seed       int64 // random seed for reservoir sampling (0 = deterministic)
}

// DefaultInferConfig returns sensible defaults.
func DefaultInferConfig() InferConfig {
	return InferConfig{SampleSize: 1000}
}

// Infer unifies the shapes of sampled rows into a schema. Field order is
// first appearance across the sample. Scalar type conflicts widen
// (int+float → float, anything else → string); shape conflicts (scalar vs
// container, map vs array) mark the field mixed and stop descending.
func Infer(rows []*api.Value, cfg InferConfig) *Schema {
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = DefaultInferConfig().SampleSize
	}
	sampled := reservoirSample(rows, cfg.SampleSize, cfg.Seed)

	root := &builder{}
	for _, row := range sampled {
		root.observe(row)
	}
	return &Schema{Fields: root.build().Fields}
}

// builder accumulates observed shapes for one schema node.
type builder struct {
	dtype    DType
	hasLeaf  bool
	mixed    bool
	names    []string
	fields   map[string]*builder
	repeated *builder
}

func (b *builder) observe(v *api.Value) {
	if v == nil || b.mixed {
		return
	}
	switch v.Kind() {
	case api.KindMissing:
		// Contributes nothing to the shape.
	case api.KindScalar:
		if b.fields != nil || b.repeated != nil {
			b.markMixed()
			return
		}
		dt := scalarDType(v.ScalarValue())
		if b.hasLeaf {
			b.dtype = mergeDType(b.dtype, dt)
		} else {
			b.dtype = dt
			b.hasLeaf = true
		}
	case api.KindArray:
		if b.hasLeaf || b.fields != nil {
			b.markMixed()
			return
		}
		if b.repeated == nil {
			b.repeated = &builder{}
		}
		for i := 0; i < v.Len(); i++ {
			b.repeated.observe(v.At(i))
		}
	case api.KindMap:
		if b.hasLeaf || b.repeated != nil {
			b.markMixed()
			return
		}
		if b.fields == nil {
			b.fields = make(map[string]*builder)
		}
		for _, k := range v.Keys() {
			child, ok := b.fields[k]
			if !ok {
				child = &builder{}
				b.fields[k] = child
				b.names = append(b.names, k)
			}
			fv, _ := v.Field(k)
			child.observe(fv)
		}
	}
}

func (b *builder) markMixed() {
	b.mixed = true
	b.fields = nil
	b.names = nil
	b.repeated = nil
	b.hasLeaf = false
}

func (b *builder) build() *Field {
	switch {
	case b.mixed:
		return &Field{DType: DTypeMixed}
	case b.repeated != nil:
		return &Field{Repeated: b.repeated.build()}
	case b.fields != nil:
		fields := make([]NamedField, 0, len(b.names))
		for _, name := range b.names {
			fields = append(fields, NamedField{Name: name, Field: b.fields[name].build()})
		}
		return &Field{Fields: fields}
	case b.hasLeaf:
		return &Field{DType: b.dtype}
	default:
		// Only missing values observed.
		return &Field{DType: DTypeNull}
	}
}

func scalarDType(v any) DType {
	switch v.(type) {
	case string:
		return DTypeString
	case int64:
		return DTypeInt
	case float64:
		return DTypeFloat
	case bool:
		return DTypeBool
	default:
		return DTypeNull
	}
}

func mergeDType(a, b DType) DType {
	if a == b {
		return a
	}
	if a == DTypeNull {
		return b
	}
	if b == DTypeNull {
		return a
	}
	if (a == DTypeInt && b == DTypeFloat) || (a == DTypeFloat && b == DTypeInt) {
		return DTypeFloat
	}
	return DTypeString
}

// reservoirSample performs reservoir sampling on the rows.
func reservoirSample(rows []*api.Value, k int, seed int64) []*api.Value {
	if len(rows) <= k {
		return rows
	}
	rng := rand.New(rand.NewSource(seed))
	reservoir := make([]*api.Value, k)
	copy(reservoir, rows[:k])
	for i := k; i < len(rows); i++ {
		j := rng.Intn(i + 1)
		if j < k {
			reservoir[j] = rows[i]
		}
	}
	return reservoir
}
