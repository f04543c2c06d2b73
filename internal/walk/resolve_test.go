package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-data/trellis/api"
)

// {"a": [{"b": "x"}, {"b": "y"}]}
func twoElemTree() *api.Value {
	return api.NewMap().Set("a", api.Array(
		api.NewMap().Set("b", api.Scalar("x")),
		api.NewMap().Set("b", api.Scalar("y")),
	))
}

func TestResolve_WildcardFanOut(t *testing.T) {
	nodes, err := Resolve(twoElemTree(), api.ParsePath("a.*.b"))
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "a.0.b", nodes[0].Path.String())
	assert.Equal(t, "x", nodes[0].Value.ScalarValue())
	assert.Equal(t, "a.1.b", nodes[1].Path.String())
	assert.Equal(t, "y", nodes[1].Value.ScalarValue())
}

func TestResolve_MissingKeyYieldsNothing(t *testing.T) {
	nodes, err := Resolve(twoElemTree(), api.ParsePath("a.*.c"))
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestResolve_NoWildcardAtMostOne(t *testing.T) {
	tree := twoElemTree()
	for _, p := range []string{"a", "a.0", "a.0.b", "a.5", "a.0.b.z", "nope"} {
		nodes, err := Resolve(tree, api.ParsePath(p))
		require.NoError(t, err, p)
		assert.LessOrEqual(t, len(nodes), 1, "pattern %s", p)
	}
}

func TestResolve_ConcretizationIsIdempotent(t *testing.T) {
	tree := api.NewMap().Set("docs", api.Array(
		api.NewMap().Set("spans", api.Array(api.Scalar("s0"), api.Scalar("s1"))),
		api.NewMap().Set("spans", api.Array(api.Scalar("s2"))),
	))

	nodes, err := Resolve(tree, api.ParsePath("docs.*.spans.*"))
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	for _, n := range nodes {
		again, err := Resolve(tree, n.Path)
		require.NoError(t, err)
		require.Len(t, again, 1)
		assert.Equal(t, n.Path.String(), again[0].Path.String())
		assert.True(t, n.Value.Equal(again[0].Value))
	}
}

func TestResolve_WildcardOverNonArray(t *testing.T) {
	tree := api.NewMap().Set("a", api.Scalar("not an array"))
	nodes, err := Resolve(tree, api.ParsePath("a.*"))
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestResolve_IndexOutOfRange(t *testing.T) {
	tree := api.NewMap().Set("a", api.Array(api.Scalar(1)))
	nodes, err := Resolve(tree, api.ParsePath("a.3"))
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestResolve_ScalarAtLiteralSegment(t *testing.T) {
	tree := api.NewMap().Set("a", api.Scalar("leaf"))
	nodes, err := Resolve(tree, api.ParsePath("a.b.c"))
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestResolve_EmptyArrayYieldsNothing(t *testing.T) {
	tree := api.NewMap().Set("a", api.Array())
	nodes, err := Resolve(tree, api.ParsePath("a.*.b"))
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestResolve_EmptyPatternReturnsRoot(t *testing.T) {
	tree := twoElemTree()
	nodes, err := Resolve(tree, api.Path{})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Empty(t, nodes[0].Path)
	assert.True(t, nodes[0].Value.Equal(tree))
}

func TestResolve_MissingLeafIsStillANode(t *testing.T) {
	tree := api.NewMap().Set("a", api.Missing())
	nodes, err := Resolve(tree, api.ParsePath("a"))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].Value.IsMissing())
}

func TestResolve_DigitMapKeys(t *testing.T) {
	// Maps may use digit keys; dispatch is on the node kind.
	tree := api.NewMap().Set("0", api.Scalar("zero"))
	nodes, err := Resolve(tree, api.ParsePath("0"))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "zero", nodes[0].Value.ScalarValue())
}

func TestResolve_InvalidPattern(t *testing.T) {
	_, err := Resolve(twoElemTree(), api.Path{"a", ""})
	assert.ErrorIs(t, err, api.ErrInvalidPattern)
}

func TestResolve_OrderIsDeterministic(t *testing.T) {
	tree := api.NewMap().Set("m", api.Array(
		api.NewMap().Set("v", api.Array(api.Scalar(0), api.Scalar(1))),
		api.NewMap().Set("v", api.Array(api.Scalar(2))),
		api.NewMap().Set("v", api.Array(api.Scalar(3), api.Scalar(4))),
	))
	nodes, err := Resolve(tree, api.ParsePath("m.*.v.*"))
	require.NoError(t, err)
	require.Len(t, nodes, 5)
	want := []string{"m.0.v.0", "m.0.v.1", "m.1.v.0", "m.2.v.0", "m.2.v.1"}
	for i, n := range nodes {
		assert.Equal(t, want[i], n.Path.String())
		assert.Equal(t, int64(i), n.Value.ScalarValue())
	}
}

func TestRootGroups_NoWildcard(t *testing.T) {
	groups, err := RootGroups(twoElemTree(), api.ParsePath("a.0.b"))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "a.0.b", groups[0].ResolvedRoot.String())
	assert.Empty(t, groups[0].RemainderShow)
}

func TestRootGroups_TrailingWildcard(t *testing.T) {
	tree := api.NewMap().Set("tags", api.Array(api.Scalar("a"), api.Scalar("b"), api.Scalar("c")))
	groups, err := RootGroups(tree, api.ParsePath("tags.*"))
	require.NoError(t, err)
	require.Len(t, groups, 3)
	for i, g := range groups {
		assert.Equal(t, "tags."+api.Index(i), g.ResolvedRoot.String())
		assert.Empty(t, g.RemainderShow)
	}
}

func TestRootGroups_SingleWildcardWithSuffix(t *testing.T) {
	groups, err := RootGroups(twoElemTree(), api.ParsePath("a.*.b"))
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "a.0.b", groups[0].ResolvedRoot.String())
	assert.Equal(t, "a.1.b", groups[1].ResolvedRoot.String())
	assert.Empty(t, groups[0].RemainderShow)
}

func TestRootGroups_NestedWildcards(t *testing.T) {
	tree := api.NewMap().Set("docs", api.Array(
		api.NewMap().Set("parts", api.Array(
			api.NewMap().Set("text", api.Scalar("t0")),
		)),
		api.NewMap().Set("parts", api.Array()),
	))

	groups, err := RootGroups(tree, api.ParsePath("docs.*.parts.*.text"))
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Resolved root extends to just before the second wildcard.
	assert.Equal(t, "docs.0.parts", groups[0].ResolvedRoot.String())
	assert.Equal(t, "docs.1.parts", groups[1].ResolvedRoot.String())
	// Remainder is the display path past the second wildcard.
	assert.Equal(t, "text", groups[0].RemainderShow.String())
}

func TestRootGroups_WildcardOverNonArray(t *testing.T) {
	tree := api.NewMap().Set("a", api.NewMap().Set("b", api.Scalar(1)))
	groups, err := RootGroups(tree, api.ParsePath("a.*.b"))
	require.NoError(t, err)
	assert.Empty(t, groups)
}
