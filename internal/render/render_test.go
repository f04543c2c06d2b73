package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-data/trellis/api"
)

func reviewRow() *api.Value {
	return api.FromAny(map[string]any{
		"title": "Night Train",
		"reviews": []any{
			map[string]any{"text": "great", "stars": int64(5)},
			map[string]any{"text": "meh", "stars": int64(2)},
		},
	})
}

func plain() Options { return Options{Plain: true} }

func TestBlocks_NoWildcard(t *testing.T) {
	blocks, err := Blocks(reviewRow(), api.ParsePath("title"))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "title", blocks[0].Label)
	require.NotNil(t, blocks[0].Node)
	assert.Equal(t, "Night Train", blocks[0].Node.Value.ScalarValue())
	assert.Empty(t, blocks[0].Children)
}

func TestBlocks_AbsentPath(t *testing.T) {
	blocks, err := Blocks(reviewRow(), api.ParsePath("missing.key"))
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestBlocks_SingleWildcard(t *testing.T) {
	blocks, err := Blocks(reviewRow(), api.ParsePath("reviews.*.text"))
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, "reviews.0.text", blocks[0].Label)
	assert.Equal(t, "great", blocks[0].Node.Value.ScalarValue())
	assert.Equal(t, "reviews.1.text", blocks[1].Label)
}

func TestBlocks_NestedWildcards(t *testing.T) {
	row := api.FromAny(map[string]any{
		"docs": []any{
			map[string]any{"parts": []any{
				map[string]any{"text": "p0"},
				map[string]any{"text": "p1"},
			}},
			map[string]any{"parts": []any{}},
		},
	})

	blocks, err := Blocks(row, api.ParsePath("docs.*.parts.*.text"))
	require.NoError(t, err)
	require.Len(t, blocks, 1, "the empty parts array contributes no group")

	g := blocks[0]
	assert.Equal(t, "docs.0.parts", g.Label)
	assert.Equal(t, "text", g.Sub)
	assert.Nil(t, g.Node)
	require.Len(t, g.Children, 2)
	assert.Equal(t, "docs.0.parts.0.text", g.Children[0].Label)
	assert.Equal(t, "p1", g.Children[1].Node.Value.ScalarValue())
}

func TestBlocks_InvalidPattern(t *testing.T) {
	_, err := Blocks(reviewRow(), api.Path{"a", ""})
	assert.ErrorIs(t, err, api.ErrInvalidPattern)
}

func TestRenderRow_Plain(t *testing.T) {
	patterns := []api.Path{
		api.ParsePath("title"),
		api.ParsePath("reviews.*.stars"),
		api.ParsePath("absent"),
	}
	out, err := RenderRow(reviewRow(), patterns, plain())
	require.NoError(t, err)

	assert.Equal(t, "title: Night Train\nreviews.0.stars: 5\nreviews.1.stars: 2\n", out)
}

func TestRenderRow_NestedGroups(t *testing.T) {
	row := api.FromAny(map[string]any{
		"docs": []any{
			map[string]any{"parts": []any{map[string]any{"text": "p0"}}},
		},
	})
	out, err := RenderRow(row, []api.Path{api.ParsePath("docs.*.parts.*.text")}, plain())
	require.NoError(t, err)
	assert.Equal(t, "docs.0.parts › text\n  docs.0.parts.0.text: p0\n", out)
}

func TestFormatValue(t *testing.T) {
	opts := plain()
	assert.Equal(t, "(missing)", formatValue(api.Missing(), opts))
	assert.Equal(t, "null", formatValue(api.Scalar(nil), opts))
	assert.Equal(t, "5", formatValue(api.Scalar(int64(5)), opts))
	assert.Equal(t, `["x"]`, formatValue(api.Array(api.Scalar("x")), opts))
}

func TestFormatValue_Truncation(t *testing.T) {
	opts := Options{Plain: true, MaxValueLen: 4}
	assert.Equal(t, "abcd…", formatValue(api.Scalar("abcdefgh"), opts))
	assert.Equal(t, "abcd", formatValue(api.Scalar("abcd"), opts))
}

func TestRenderBlocks_StyledContainsText(t *testing.T) {
	blocks, err := Blocks(reviewRow(), api.ParsePath("title"))
	require.NoError(t, err)
	out := RenderBlocks(blocks, Options{Styles: DefaultStyles()})
	assert.Contains(t, out, "title")
	assert.Contains(t, out, "Night Train")
}
