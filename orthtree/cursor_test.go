package orthtree_test

import (
	"slices"
	"testing"

	"github.com/pypcl/compgeom/orthtree"
	"github.com/stretchr/testify/require"
)

func TestLevelCursor(t *testing.T) {
	tree := newTree(t, 2, 2)
	buildUniform(t, tree, 2)

	require.Len(t, slices.Collect(tree.Level(0)), 1)
	require.Len(t, slices.Collect(tree.Level(1)), 4)
	require.Len(t, slices.Collect(tree.Level(2)), 16)
	require.Empty(t, slices.Collect(tree.Level(3)))

	require.Len(t, slices.Collect(tree.All()), 21)
	require.Len(t, slices.Collect(tree.AllFrom(1)), 20)
	require.Len(t, slices.Collect(tree.AllFrom(2)), 16)
}

func TestLeafCursor(t *testing.T) {
	tree := newTree(t, 2, 2)
	buildQuadrant(t, tree)

	leaves := slices.Collect(tree.Leaves())
	require.Len(t, leaves, 7)
	for _, c := range leaves {
		require.True(t, c.Node.Leaf)
	}

	// levels ascend across the sequence
	prev := 0
	for _, c := range leaves {
		lvl := tree.Codec().Level(c.Key)
		require.GreaterOrEqual(t, lvl, prev)
		prev = lvl
	}

	require.Len(t, slices.Collect(tree.LeavesFrom(2)), 4)
}

func TestBoundaryMask(t *testing.T) {
	// in a uniform 4×4 grid exactly the 12 perimeter cells are
	// boundary leaves
	tree := newTree(t, 2, 2)
	buildUniform(t, tree, 2)

	boundary := slices.Collect(tree.BoundaryFrom(2))
	require.Len(t, boundary, 12)
	for _, c := range boundary {
		off := tree.Codec().OffsetWithinLevel(c.Key)
		onEdge := off[0] == 0 || off[0] == 3 || off[1] == 0 || off[1] == 3
		require.True(t, onEdge, "offset %v is not on the perimeter", off)
	}

	interior := slices.Collect(tree.InteriorFrom(2))
	require.Len(t, interior, 4)
	for _, c := range interior {
		off := tree.Codec().OffsetWithinLevel(c.Key)
		require.NotContains(t, []int{0, 3}, off[0])
		require.NotContains(t, []int{0, 3}, off[1])
	}
}

func TestBoundaryWholeTree(t *testing.T) {
	tree := newTree(t, 2, 2)
	buildUniform(t, tree, 2)

	// the root and every level-1 cell touch the domain edge, so the
	// whole-tree boundary cursor sees everything but the 4 interior
	// leaves
	require.Len(t, slices.Collect(tree.Boundary()), 17)
	require.Len(t, slices.Collect(tree.Interior()), 4)
}

func TestBoundaryAtDepthChange(t *testing.T) {
	tree := newTree(t, 3, 2)
	buildUniform(t, tree, 2)

	// carve a hole in the level-2 grid: its same-level neighbors
	// become boundary, including those on the max side, which do not
	// touch the domain edge
	hole := mustKey3(t, tree, 2, 1, 1, 1)
	tree.Erase(hole, 2)

	for axis := range 3 {
		nk, ok := tree.Codec().NeighborMax(hole, axis)
		require.True(t, ok)
		require.True(t, tree.IsBoundary(nk))
		nk, ok = tree.Codec().NeighborMin(hole, axis)
		require.True(t, ok)
		require.True(t, tree.IsBoundary(nk))
	}

	// a diagonal cell keeps all its axis-aligned neighbors
	diag := mustKey3(t, tree, 2, 2, 2, 2)
	require.False(t, tree.IsBoundary(diag))
}

func TestHeterogeneousBoundary(t *testing.T) {
	tree := newTree(t, 2, 2)
	buildQuadrant(t, tree)

	// every leaf is adjacent to the domain edge or to a depth change,
	// so the leaf-level boundary cursor sees all of them
	var boundaryLeaves int
	for c := range tree.Boundary() {
		if c.Node.Leaf {
			boundaryLeaves++
		}
	}
	require.Equal(t, 7, boundaryLeaves)
}

func TestCursorEarlyStop(t *testing.T) {
	tree := newTree(t, 2, 2)
	buildUniform(t, tree, 2)

	var n int
	for range tree.Leaves() {
		n++
		if n == 3 {
			break
		}
	}
	require.Equal(t, 3, n)
}

func mustKey3(t *testing.T, tree *orthtree.Tree[int], lvl, x, y, z int) orthtree.Key {
	t.Helper()
	k, err := tree.Codec().KeyFromLevelOffset(lvl, []int{x, y, z})
	require.NoError(t, err)
	return k
}
