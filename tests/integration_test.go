package tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-data/trellis/api"
	"github.com/trellis-data/trellis/internal/cache"
	"github.com/trellis-data/trellis/internal/manifest"
	"github.com/trellis-data/trellis/internal/render"
	"github.com/trellis-data/trellis/internal/schema"
	"github.com/trellis-data/trellis/internal/selection"
	"github.com/trellis-data/trellis/internal/settings"
	"github.com/trellis-data/trellis/internal/source"
	"github.com/trellis-data/trellis/internal/walk"
)

const testRows = `{"title":"Night Train","reviews":[{"text":"great","stars":5},{"text":"meh","stars":2}]}
{"title":"Daybreak","reviews":[]}
{"title":"Static"}
`

const testConfig = `
dataset "books" {
  source              = "books.jsonl"
  manifest            = "embeddings.json"
  preferred_embedding = "cohere"

  view "compact" {
    patterns = ["title", "reviews.*.text"]
  }
}
`

const testManifest = `{"fields": {"reviews.*.text": ["sbert", "openai"], "title": []}}`

// fixture lays out a project directory the way a user would check one in:
// the dataset file, its embedding manifest, and a trellis.hcl next to them.
type fixture struct {
	dir     string
	dataset *settings.Dataset
	src     source.Source
	schema  *schema.Schema
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books.jsonl"), []byte(testRows), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "embeddings.json"), []byte(testManifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trellis.hcl"), []byte(testConfig), 0o644))

	cfg, err := settings.LoadDatasetFile(filepath.Join(dir, "trellis.hcl"))
	require.NoError(t, err)
	ds, err := cfg.Dataset("books")
	require.NoError(t, err)

	src, err := source.Open(osfs.New(dir), ds.Source)
	require.NoError(t, err)

	rows := make([]*api.Value, src.NumRows())
	for i := range rows {
		rows[i], err = src.Row(i)
		require.NoError(t, err)
	}

	return &fixture{
		dir:     dir,
		dataset: ds,
		src:     src,
		schema:  schema.Infer(rows, schema.DefaultInferConfig()),
	}
}

func TestLoadAndInfer(t *testing.T) {
	fx := setup(t)

	require.Equal(t, 3, fx.src.NumRows())

	f, ok := fx.schema.FieldAt(api.ParsePath("reviews.*.stars"))
	require.True(t, ok)
	assert.Equal(t, schema.DTypeInt, f.DType)

	// Parsed rows sort map keys, so leaf order is alphabetical.
	leafs := fx.schema.Leafs()
	var paths []string
	for _, l := range leafs {
		paths = append(paths, l.Path.String())
	}
	assert.Equal(t, []string{"reviews.*.stars", "reviews.*.text", "title"}, paths)
}

func TestResolveAcrossRows(t *testing.T) {
	fx := setup(t)

	row, err := fx.src.Row(0)
	require.NoError(t, err)
	nodes, err := walk.Resolve(row, api.ParsePath("reviews.*.text"))
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "reviews.0.text", nodes[0].Path.String())
	assert.Equal(t, "great", nodes[0].Value.ScalarValue())

	// Rows without matching branches resolve to nothing, never an error.
	for _, i := range []int{1, 2} {
		row, err = fx.src.Row(i)
		require.NoError(t, err)
		nodes, err = walk.Resolve(row, api.ParsePath("reviews.*.text"))
		require.NoError(t, err)
		assert.Empty(t, nodes)
	}
}

func TestRenderViewPatterns(t *testing.T) {
	fx := setup(t)
	view := fx.dataset.View("compact")
	require.NotNil(t, view)

	row, err := fx.src.Row(0)
	require.NoError(t, err)
	out, err := render.RenderRow(row, view.Patterns, render.Options{Plain: true})
	require.NoError(t, err)
	assert.Equal(t, "title: Night Train\nreviews.0.text: great\nreviews.1.text: meh\n", out)

	// A row where only the first pattern matches renders only that section.
	row, err = fx.src.Row(2)
	require.NoError(t, err)
	out, err = render.RenderRow(row, view.Patterns, render.Options{Plain: true})
	require.NoError(t, err)
	assert.Equal(t, "title: Static\n", out)
}

func TestSelectionFilters(t *testing.T) {
	fx := setup(t)

	bm, err := selection.Apply(fx.src, []selection.Filter{
		{Pattern: api.ParsePath("title")},
		{Pattern: api.ParsePath("reviews.*.text"), Negate: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, selection.Ordinals(bm))
}

func TestEmbeddingPick(t *testing.T) {
	fx := setup(t)

	man, err := manifest.Load(osfs.New(fx.dir), fx.dataset.Manifest)
	require.NoError(t, err)

	computed := man.Embeddings(api.ParsePath("reviews.*.text"))
	assert.Equal(t, []string{"sbert", "openai"}, computed)

	session := &settings.Session{PreferredEmbedding: "openai"}
	name, ok := manifest.Pick(computed, fx.dataset.PreferredEmbedding, session.EmbeddingFor("books"))
	require.True(t, ok)
	assert.Equal(t, "openai", name, "session preference beats the dataset's uncomputed one")

	name, ok = manifest.Pick(computed, fx.dataset.PreferredEmbedding, "")
	require.True(t, ok)
	assert.Equal(t, "sbert", name, "dataset prefers cohere, which was never computed")

	_, ok = manifest.Pick(man.Embeddings(api.ParsePath("title")), "", "")
	assert.False(t, ok)
}

func TestSchemaCacheRoundTrip(t *testing.T) {
	fx := setup(t)

	c, err := cache.Open(filepath.Join(fx.dir, ".trellis.cache.db"))
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	info, err := os.Stat(filepath.Join(fx.dir, "books.jsonl"))
	require.NoError(t, err)
	size, mtime := info.Size(), info.ModTime().UnixNano()

	_, ok, err := c.Get("books.jsonl", size, mtime)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Put("books.jsonl", size, mtime, fx.schema))

	got, ok, err := c.Get("books.jsonl", size, mtime)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fx.schema.String(), got.String())
}
