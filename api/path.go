package api

import (
	"errors"
	"strconv"
	"strings"
)

// Wildcard is the path segment meaning "every array index at this position".
const Wildcard = "*"

// ErrInvalidPattern reports a caller-constructed pattern that violates the
// path contract (an empty segment). Irregular data never causes it.
var ErrInvalidPattern = errors.New("invalid path pattern")

// Path is an ordered sequence of segments. A segment is a map key, a decimal
// array index, or the Wildcard marker. A path with no wildcards is concrete
// and names at most one location in a record tree.
type Path []string

// ParsePath splits a dotted path string into segments. Keys containing dots
// cannot be expressed in the dotted form; build the Path directly for those.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	return Path(strings.Split(s, "."))
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Index formats a concrete array index segment.
func Index(i int) string {
	return strconv.Itoa(i)
}

// IsIndex reports whether a segment is a concrete array index.
func IsIndex(seg string) bool {
	if seg == "" {
		return false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Concat returns a new path of p followed by q.
func (p Path) Concat(q Path) Path {
	out := make(Path, 0, len(p)+len(q))
	out = append(out, p...)
	out = append(out, q...)
	return out
}

// Validate rejects patterns with empty segments. This is the only
// precondition the resolver enforces.
func (p Path) Validate() error {
	for _, seg := range p {
		if seg == "" {
			return ErrInvalidPattern
		}
	}
	return nil
}

// PathEqual compares two paths with wildcard-aware segment equality: equal
// length, and each segment pair either identical or one side a wildcard
// standing in for the other's concrete index. Symmetric in both arguments.
func PathEqual(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !segmentEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func segmentEqual(a, b string) bool {
	if a == b {
		return true
	}
	if a == Wildcard && IsIndex(b) {
		return true
	}
	if b == Wildcard && IsIndex(a) {
		return true
	}
	return false
}

// FirstWildcard returns the index of the first wildcard segment, or false
// when the path is concrete.
func (p Path) FirstWildcard() (int, bool) {
	for i, seg := range p {
		if seg == Wildcard {
			return i, true
		}
	}
	return 0, false
}

// HasWildcard reports whether any segment is a wildcard.
func (p Path) HasWildcard() bool {
	_, ok := p.FirstWildcard()
	return ok
}

// CardinalityPrefix returns the prefix up to the last wildcard. Two paths
// with equal cardinality prefixes repeat in lockstep and can be rendered as
// sibling columns.
func (p Path) CardinalityPrefix() Path {
	idx := 0
	for i, seg := range p {
		if seg == Wildcard {
			idx = i
		}
	}
	return p[:idx].Clone()
}

// SameCardinality reports whether two paths repeat with the same shape.
func SameCardinality(a, b Path) bool {
	return a.CardinalityPrefix().String() == b.CardinalityPrefix().String()
}

// SiblingOutputPath derives the path of a derived sibling column by
// suffixing the last non-wildcard segment, e.g. ("docs.*.text", "len") →
// "docs.*.text_len".
func (p Path) SiblingOutputPath(suffix string) Path {
	idx := 0
	for i, seg := range p {
		if seg != Wildcard {
			idx = i
		}
	}
	out := p.Clone()
	out[idx] = out[idx] + "_" + suffix
	return out
}

// CommonAncestor returns the longest shared prefix of two paths plus the
// first segment of each below the split point (empty when one path is a
// prefix of the other).
func CommonAncestor(a, b Path) (Path, string, string) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i].Clone(), a[i], b[i]
		}
	}
	var segA, segB string
	if n < len(a) {
		segA = a[n]
	}
	if n < len(b) {
		segB = b[n]
	}
	return a[:n].Clone(), segA, segB
}
