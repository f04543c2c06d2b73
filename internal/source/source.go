// Package source loads dataset rows from files into record trees. Sources
// are read eagerly and indexed by ordinal; everything downstream (resolver,
// selections, renderer) treats them as an opaque row provider.
package source

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/ohler55/ojg/oj"

	"github.com/trellis-data/trellis/api"
)

// RowIDKey is the reserved record key carrying an externally assigned row
// id. Rows without it get a generated one.
const RowIDKey = "__rowid__"

// Source is an ordered collection of dataset rows.
type Source interface {
	NumRows() int
	Row(i int) (*api.Value, error)
	RowID(i int) string
}

// memSource holds fully parsed rows.
type memSource struct {
	rows []*api.Value
	ids  []string
}

func (s *memSource) NumRows() int { return len(s.rows) }

func (s *memSource) Row(i int) (*api.Value, error) {
	if i < 0 || i >= len(s.rows) {
		return nil, fmt.Errorf("row %d out of range (%d rows)", i, len(s.rows))
	}
	return s.rows[i], nil
}

func (s *memSource) RowID(i int) string {
	if i < 0 || i >= len(s.ids) {
		return ""
	}
	return s.ids[i]
}

// FromValues wraps already-built rows as a Source, generating ids.
// Used by tests and programmatic callers.
func FromValues(rows []*api.Value) Source {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = rowID(row)
	}
	return &memSource{rows: rows, ids: ids}
}

// Open reads a dataset file from fs, dispatching on extension: ".json" for
// a top-level array of records, ".jsonl" / ".ndjson" for one record per
// line.
func Open(fs billy.Filesystem, path string) (Source, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return openJSON(fs, path)
	case ".jsonl", ".ndjson":
		return openJSONL(fs, path)
	default:
		return nil, fmt.Errorf("unsupported dataset extension %q (want .json, .jsonl or .ndjson)", ext)
	}
}

func openJSON(fs billy.Filesystem, path string) (Source, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() // safe to ignore

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	parsed, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	records, ok := parsed.([]any)
	if !ok {
		return nil, fmt.Errorf("dataset %s: top-level value must be an array of records", path)
	}

	src := &memSource{}
	for _, rec := range records {
		row := api.FromAny(rec)
		src.rows = append(src.rows, row)
		src.ids = append(src.ids, rowID(row))
	}
	return src, nil
}

func openJSONL(fs billy.Filesystem, path string) (Source, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() // safe to ignore

	src := &memSource{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parsed, err := oj.Parse([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", path, lineNo, err)
		}
		row := api.FromAny(parsed)
		src.rows = append(src.rows, row)
		src.ids = append(src.ids, rowID(row))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan dataset %s: %w", path, err)
	}
	return src, nil
}

// rowID returns the row's declared id or generates a 16-char url-safe token.
func rowID(row *api.Value) string {
	if row != nil {
		if v, ok := row.Field(RowIDKey); ok {
			if s, ok := v.ScalarValue().(string); ok && s != "" {
				return s
			}
		}
	}
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform entropy source is broken.
		panic(fmt.Sprintf("source: read random bytes: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
