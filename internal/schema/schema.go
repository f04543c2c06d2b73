// Package schema models the declared shape of a dataset: named fields,
// repeated fields, and primitive type tags. Schemas come from inference over
// sampled rows or from a cached sidecar; consumers use them to enumerate
// leaf paths and to filter embedding/comparison candidates by type.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trellis-data/trellis/api"
)

// DType tags the primitive type of a leaf field.
type DType string

const (
	DTypeString DType = "string"
	DTypeInt    DType = "int"
	DTypeFloat  DType = "float"
	DTypeBool   DType = "bool"
	DTypeNull   DType = "null"
	// DTypeMixed marks fields whose sampled values disagree on shape.
	// Inference stops descending below a mixed field.
	DTypeMixed DType = "mixed"
)

// Field describes one node of the schema tree. Exactly one of DType,
// Fields, or Repeated is meaningful: a leaf, a map, or a repeated field.
type Field struct {
	DType    DType
	Fields   []NamedField
	Repeated *Field
}

// NamedField pairs a map key with its field, preserving declaration order.
type NamedField struct {
	Name  string
	Field *Field
}

// Schema is the root of a field tree.
type Schema struct {
	Fields []NamedField
}

// Leaf is a leaf field with its full pattern path (wildcards at repeated
// positions).
type Leaf struct {
	Path  api.Path
	Field *Field
}

// child returns the named child of a field, if any.
func (f *Field) child(name string) *Field {
	for _, nf := range f.Fields {
		if nf.Name == name {
			return nf.Field
		}
	}
	return nil
}

// FieldAt walks a pattern path through the schema: wildcards descend into
// repeated fields, other segments into named fields. Concrete indices also
// descend into repeated fields, so concrete row paths resolve too.
func (s *Schema) FieldAt(p api.Path) (*Field, bool) {
	cur := &Field{Fields: s.Fields}
	for _, seg := range p {
		if seg == api.Wildcard || api.IsIndex(seg) {
			if cur.Repeated == nil {
				return nil, false
			}
			cur = cur.Repeated
			continue
		}
		next := cur.child(seg)
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// ContainsPath reports whether the schema declares a field at the path.
func (s *Schema) ContainsPath(p api.Path) bool {
	_, ok := s.FieldAt(p)
	return ok
}

// Leafs enumerates all leaf fields depth-first in declaration order, each
// with its pattern path.
func (s *Schema) Leafs() []Leaf {
	var out []Leaf
	for _, nf := range s.Fields {
		collectLeafs(nf.Field, api.Path{nf.Name}, &out)
	}
	return out
}

func collectLeafs(f *Field, p api.Path, out *[]Leaf) {
	switch {
	case f.Repeated != nil:
		collectLeafs(f.Repeated, p.Concat(api.Path{api.Wildcard}), out)
	case len(f.Fields) > 0:
		for _, nf := range f.Fields {
			collectLeafs(nf.Field, p.Concat(api.Path{nf.Name}), out)
		}
	default:
		*out = append(*out, Leaf{Path: p, Field: f})
	}
}

// LeafsOfType filters Leafs by dtype. Used to pick candidate fields for
// embeddings and comparisons, which only make sense over one primitive type.
func (s *Schema) LeafsOfType(dt DType) []Leaf {
	var out []Leaf
	for _, l := range s.Leafs() {
		if l.Field.DType == dt {
			out = append(out, l)
		}
	}
	return out
}

// String renders the schema as an indented tree for CLI output.
func (s *Schema) String() string {
	var b strings.Builder
	for _, nf := range s.Fields {
		writeField(&b, nf.Name, nf.Field, 0)
	}
	return b.String()
}

func writeField(b *strings.Builder, name string, f *Field, depth int) {
	indent := strings.Repeat("  ", depth)
	switch {
	case f.Repeated != nil:
		fmt.Fprintf(b, "%s%s: repeated\n", indent, name)
		writeField(b, api.Wildcard, f.Repeated, depth+1)
	case len(f.Fields) > 0:
		fmt.Fprintf(b, "%s%s:\n", indent, name)
		for _, nf := range f.Fields {
			writeField(b, nf.Name, nf.Field, depth+1)
		}
	default:
		fmt.Fprintf(b, "%s%s: %s\n", indent, name, f.DType)
	}
}

// jsonField mirrors Field for the sidecar cache encoding.
type jsonField struct {
	DType    DType            `json:"dtype,omitempty"`
	Fields   []jsonNamedField `json:"fields,omitempty"`
	Repeated *jsonField       `json:"repeated,omitempty"`
}

type jsonNamedField struct {
	Name  string    `json:"name"`
	Field jsonField `json:"field"`
}

// Encode serializes a schema for storage.
func (s *Schema) Encode() ([]byte, error) {
	root := jsonField{Fields: toJSONFields(s.Fields)}
	return json.Marshal(root)
}

// Decode restores a schema produced by Encode.
func Decode(data []byte) (*Schema, error) {
	var root jsonField
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return &Schema{Fields: fromJSONFields(root.Fields)}, nil
}

func toJSONFields(fields []NamedField) []jsonNamedField {
	out := make([]jsonNamedField, len(fields))
	for i, nf := range fields {
		out[i] = jsonNamedField{Name: nf.Name, Field: *toJSONField(nf.Field)}
	}
	return out
}

func toJSONField(f *Field) *jsonField {
	jf := &jsonField{DType: f.DType, Fields: toJSONFields(f.Fields)}
	if f.Repeated != nil {
		jf.Repeated = toJSONField(f.Repeated)
	}
	return jf
}

func fromJSONFields(fields []jsonNamedField) []NamedField {
	if len(fields) == 0 {
		return nil
	}
	out := make([]NamedField, len(fields))
	for i, jf := range fields {
		f := jf.Field
		out[i] = NamedField{Name: jf.Name, Field: fromJSONField(&f)}
	}
	return out
}

func fromJSONField(jf *jsonField) *Field {
	f := &Field{DType: jf.DType, Fields: fromJSONFields(jf.Fields)}
	if jf.Repeated != nil {
		f.Repeated = fromJSONField(jf.Repeated)
	}
	return f
}
