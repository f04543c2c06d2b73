// Package manifest reads the per-field embedding manifest: for every field
// path, the list of embedding identifiers computed for it, in the fixed
// order established when the dataset was built. Pick resolves which of them
// a session should use.
package manifest

import (
	"fmt"
	"io"

	billy "github.com/go-git/go-billy/v5"
	"github.com/ohler55/ojg/oj"

	"github.com/trellis-data/trellis/api"
)

// entry pairs a field pattern with its computed embedding names.
type entry struct {
	path     api.Path
	computed []string
}

// Manifest lists computed embeddings per field path.
type Manifest struct {
	entries []entry
}

// Load reads a manifest file of the form
//
//	{"fields": {"reviews.*.text": ["sbert", "openai"]}}
//
// The array order of each field is the computed order and is preserved.
func Load(fs billy.Filesystem, path string) (*Manifest, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() // safe to ignore

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	parsed, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	root, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("manifest %s: top-level value must be an object", path)
	}
	fieldsRaw, ok := root["fields"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("manifest %s: missing \"fields\" object", path)
	}

	m := &Manifest{}
	for key, val := range fieldsRaw {
		names, ok := val.([]any)
		if !ok {
			return nil, fmt.Errorf("manifest %s: field %q must map to an array", path, key)
		}
		computed := make([]string, 0, len(names))
		for _, n := range names {
			s, ok := n.(string)
			if !ok {
				return nil, fmt.Errorf("manifest %s: field %q has a non-string embedding name", path, key)
			}
			computed = append(computed, s)
		}
		m.entries = append(m.entries, entry{path: api.ParsePath(key), computed: computed})
	}
	return m, nil
}

// Add registers computed embeddings for a field path. Used by tests and
// programmatic construction.
func (m *Manifest) Add(p api.Path, computed ...string) {
	m.entries = append(m.entries, entry{path: p.Clone(), computed: computed})
}

// Embeddings returns the computed embedding names for a field path, in
// computed order. Lookup is wildcard-aware in both directions, so a
// concrete row path finds its pattern's entry.
func (m *Manifest) Embeddings(p api.Path) []string {
	for _, e := range m.entries {
		if api.PathEqual(e.path, p) {
			return e.computed
		}
	}
	return nil
}

// Pick selects the embedding to use for a field: the session preference if
// it was computed, else the dataset preference if computed, else the first
// computed embedding. False when nothing was computed. Pure function of its
// arguments.
func Pick(computed []string, datasetPref, sessionPref string) (string, bool) {
	if len(computed) == 0 {
		return "", false
	}
	if sessionPref != "" && contains(computed, sessionPref) {
		return sessionPref, true
	}
	if datasetPref != "" && contains(computed, datasetPref) {
		return datasetPref, true
	}
	return computed[0], true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
