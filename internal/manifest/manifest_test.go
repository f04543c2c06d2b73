package manifest

import (
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-data/trellis/api"
)

func writeFile(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	f, err := fs.Create(path)
	require.NoError(t, err)
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestLoad(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "embeddings.json", `{
		"fields": {
			"reviews.*.text": ["sbert", "openai"],
			"title": []
		}
	}`)

	m, err := Load(fs, "embeddings.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"sbert", "openai"}, m.Embeddings(api.ParsePath("reviews.*.text")))
	assert.Empty(t, m.Embeddings(api.ParsePath("title")))
	assert.Nil(t, m.Embeddings(api.ParsePath("unknown")))
}

func TestLoad_Malformed(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "bad1.json", `["not", "an", "object"]`)
	writeFile(t, fs, "bad2.json", `{"fields": {"p": "not-a-list"}}`)
	writeFile(t, fs, "bad3.json", `{"fields": {"p": [1]}}`)

	for _, name := range []string{"bad1.json", "bad2.json", "bad3.json"} {
		_, err := Load(fs, name)
		assert.Error(t, err, name)
	}
}

func TestEmbeddings_WildcardAwareLookup(t *testing.T) {
	m := &Manifest{}
	m.Add(api.ParsePath("reviews.*.text"), "sbert")

	// A concrete row path resolves to its pattern's entry.
	assert.Equal(t, []string{"sbert"}, m.Embeddings(api.ParsePath("reviews.3.text")))
	assert.Nil(t, m.Embeddings(api.ParsePath("reviews.*.stars")))
}

func TestPick(t *testing.T) {
	computed := []string{"sbert", "openai"}

	name, ok := Pick(computed, "cohere", "openai")
	require.True(t, ok)
	assert.Equal(t, "openai", name, "session preference wins when computed")

	name, ok = Pick(computed, "openai", "")
	require.True(t, ok)
	assert.Equal(t, "openai", name, "dataset preference applies without a session one")

	name, ok = Pick(computed, "cohere", "cohere")
	require.True(t, ok)
	assert.Equal(t, "sbert", name, "uncomputed preferences fall through to first computed")

	_, ok = Pick(nil, "cohere", "openai")
	assert.False(t, ok)

	_, ok = Pick([]string{}, "", "")
	assert.False(t, ok)
}
