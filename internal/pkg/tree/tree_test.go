package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id     string
	parent string
}

func build(rows ...row) []*Node[row] {
	return Build(rows,
		func(r row) string { return r.id },
		func(r row) (string, bool) { return r.parent, r.parent != "" },
	)
}

func ids(nodes []*Node[row]) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Value.id)
	}
	return out
}

func TestBuild_Empty(t *testing.T) {
	roots := build()
	require.NotNil(t, roots)
	assert.Empty(t, roots)
}

func TestBuild_TwoLevels(t *testing.T) {
	roots := build(
		row{id: "a"},
		row{id: "b"},
		row{id: "a1", parent: "a"},
		row{id: "a2", parent: "a"},
		row{id: "b1", parent: "b"},
	)

	require.Len(t, roots, 2)
	assert.Equal(t, []string{"a", "b"}, ids(roots))
	assert.Equal(t, []string{"a1", "a2"}, ids(roots[0].Children))
	assert.Equal(t, []string{"b1"}, ids(roots[1].Children))
	assert.NotNil(t, roots[0].Children[0].Children)
	assert.Empty(t, roots[0].Children[0].Children)
}

func TestBuild_PreservesInputOrder(t *testing.T) {
	roots := build(
		row{id: "c"},
		row{id: "c3", parent: "c"},
		row{id: "a"},
		row{id: "c1", parent: "c"},
		row{id: "c2", parent: "c"},
	)

	assert.Equal(t, []string{"c", "a"}, ids(roots))
	assert.Equal(t, []string{"c3", "c1", "c2"}, ids(roots[0].Children))
}

func TestBuild_DropsOrphans(t *testing.T) {
	roots := build(
		row{id: "a"},
		row{id: "x", parent: "missing"},
		row{id: "a1", parent: "a"},
	)

	assert.Equal(t, []string{"a"}, ids(roots))
	assert.Equal(t, []string{"a1"}, ids(roots[0].Children))
	assert.Equal(t, 2, Count(roots))
}

func TestBuild_DescendantsOfOrphanAreDropped(t *testing.T) {
	roots := build(
		row{id: "a"},
		row{id: "x", parent: "missing"},
		row{id: "x1", parent: "x"},
	)

	assert.Equal(t, 1, Count(roots))
}

// A -> B -> C: the grandchild stays under its immediate parent.
func TestBuild_ThreeLevels(t *testing.T) {
	roots := build(
		row{id: "A"},
		row{id: "B", parent: "A"},
		row{id: "C", parent: "B"},
	)

	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 1)
	b := roots[0].Children[0]
	assert.Equal(t, "B", b.Value.id)
	require.Len(t, b.Children, 1)
	assert.Equal(t, "C", b.Children[0].Value.id)
	assert.Equal(t, 3, Count(roots))
}

func TestBuild_ChildBeforeParentInInput(t *testing.T) {
	roots := build(
		row{id: "a1", parent: "a"},
		row{id: "a"},
	)

	require.Len(t, roots, 1)
	assert.Equal(t, []string{"a1"}, ids(roots[0].Children))
}

func TestWalk_Depth(t *testing.T) {
	roots := build(
		row{id: "A"},
		row{id: "B", parent: "A"},
		row{id: "C", parent: "B"},
		row{id: "D"},
	)

	depths := map[string]int{}
	Walk(roots, func(n *Node[row], depth int) {
		depths[n.Value.id] = depth
	})
	assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3, "D": 1}, depths)
}
