// Package walk resolves pattern paths against record trees. It is the core
// of the repeated-value flattener: wildcard segments fan out over array
// elements, producing one concrete ValueNode per reached location, and
// RootGroups splits patterns into the per-repetition blocks the renderer
// draws. Resolution is a pure read traversal; irregular data yields fewer
// results, never an error.
package walk

import (
	"github.com/trellis-data/trellis/api"
)

// ValueNode is a resolved location in a record tree: the concrete path from
// the root (wildcards substituted with array indices) and the value there.
type ValueNode struct {
	Path  api.Path
	Value *api.Value
}

// Resolve walks the tree from root, consuming pattern segments one at a
// time. Literal segments descend into maps (by key) or arrays (by index);
// wildcard segments fan out over every element of an array in order. Absent
// keys, out-of-range indices and container/scalar mismatches terminate a
// branch with zero results. The only error is an invalid pattern.
//
// The result order is deterministic for a fixed tree and pattern:
// outer-to-inner, left-to-right at every array fan-out.
func Resolve(root *api.Value, pattern api.Path) ([]ValueNode, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	var out []ValueNode
	resolveInto(root, nil, pattern, &out)
	return out, nil
}

func resolveInto(node *api.Value, prefix api.Path, rest api.Path, out *[]ValueNode) {
	if node == nil {
		return
	}
	if len(rest) == 0 {
		*out = append(*out, ValueNode{Path: prefix.Clone(), Value: node})
		return
	}

	seg := rest[0]
	if seg == api.Wildcard {
		// Wildcard requires an array here; anything else is branch-absent.
		if node.Kind() != api.KindArray {
			return
		}
		for i := 0; i < node.Len(); i++ {
			resolveInto(node.At(i), append(prefix, api.Index(i)), rest[1:], out)
		}
		return
	}

	switch node.Kind() {
	case api.KindMap:
		// Maps may use digit keys, so dispatch on the node, not the segment.
		child, ok := node.Field(seg)
		if !ok {
			return
		}
		resolveInto(child, append(prefix, seg), rest[1:], out)
	case api.KindArray:
		if !api.IsIndex(seg) {
			return
		}
		i := indexOf(seg)
		if i < 0 || i >= node.Len() {
			return
		}
		resolveInto(node.At(i), append(prefix, seg), rest[1:], out)
	default:
		// Scalar or missing with pattern left to consume: no match.
	}
}

func indexOf(seg string) int {
	n := 0
	for i := 0; i < len(seg); i++ {
		n = n*10 + int(seg[i]-'0')
		if n < 0 {
			return -1
		}
	}
	return n
}

// RootGroup is one repetition block for a pattern with wildcards.
// ResolvedRoot is the concrete path to the repetition extended with the
// pattern suffix up to (excluding) the next wildcard; it is the new grouping
// root for recursive rendering. RemainderShow is the display sub-path for
// the nested group: the pattern portion past the next wildcard, with
// wildcard markers stripped.
type RootGroup struct {
	ResolvedRoot  api.Path
	RemainderShow api.Path
}

// RootGroups computes the repetition blocks for a pattern. A pattern with no
// wildcard yields exactly one group: the pattern itself with an empty
// remainder, meaning a single leaf block and no grouping container.
func RootGroups(root *api.Value, pattern api.Path) ([]RootGroup, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}

	w, ok := pattern.FirstWildcard()
	if !ok {
		return []RootGroup{{ResolvedRoot: pattern.Clone(), RemainderShow: api.Path{}}}, nil
	}

	nodes, err := Resolve(root, pattern[:w+1])
	if err != nil {
		return nil, err
	}

	suffix := pattern[w+1:]
	next, hasNext := suffix.FirstWildcard()
	var extend, remainder api.Path
	if hasNext {
		extend = suffix[:next]
		remainder = stripWildcards(suffix[next+1:])
	} else {
		extend = suffix
		remainder = api.Path{}
	}

	groups := make([]RootGroup, 0, len(nodes))
	for _, n := range nodes {
		groups = append(groups, RootGroup{
			ResolvedRoot:  n.Path.Concat(extend),
			RemainderShow: remainder.Clone(),
		})
	}
	return groups, nil
}

func stripWildcards(p api.Path) api.Path {
	out := make(api.Path, 0, len(p))
	for _, seg := range p {
		if seg != api.Wildcard {
			out = append(out, seg)
		}
	}
	return out
}
