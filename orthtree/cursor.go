package orthtree

import (
	"iter"

	"deedles.dev/xiter"
)

// All yields every node of the tree, levels ascending.
func (t *Tree[V]) All() iter.Seq[Cell[V]] { return t.nodes.All() }

// AllFrom yields every node from the given level through the last
// populated level.
func (t *Tree[V]) AllFrom(lvl int) iter.Seq[Cell[V]] { return t.nodes.AllFrom(lvl) }

// Level yields the nodes of one level.
func (t *Tree[V]) Level(lvl int) iter.Seq[Cell[V]] { return t.nodes.Level(lvl) }

// Leaves yields the leaf nodes, levels ascending.
func (t *Tree[V]) Leaves() iter.Seq[Cell[V]] {
	return leaves(t.All())
}

// LeavesFrom yields the leaf nodes from the given level onward.
func (t *Tree[V]) LeavesFrom(lvl int) iter.Seq[Cell[V]] {
	return leaves(t.AllFrom(lvl))
}

func leaves[V any](seq iter.Seq[Cell[V]]) iter.Seq[Cell[V]] {
	return xiter.Filter(seq, func(c Cell[V]) bool { return c.Node.Leaf })
}

// IsBoundary reports whether k's cell is a boundary cell: it touches
// the surface of the unit cube, or at least one of its axis-aligned
// same-level neighbors is absent from the tree.
func (t *Tree[V]) IsBoundary(k Key) bool {
	if t.codec.IsBoundary(k) {
		return true
	}
	for axis := range t.codec.Dim() {
		if nk, ok := t.codec.NeighborMin(k, axis); ok {
			if _, _, found := t.nodes.Find(nk); !found {
				return true
			}
		}
		if nk, ok := t.codec.NeighborMax(k, axis); ok {
			if _, _, found := t.nodes.Find(nk); !found {
				return true
			}
		}
	}
	return false
}

// Boundary yields the boundary nodes, levels ascending.
func (t *Tree[V]) Boundary() iter.Seq[Cell[V]] {
	return t.boundary(t.All(), true)
}

// BoundaryFrom yields the boundary nodes from the given level onward.
func (t *Tree[V]) BoundaryFrom(lvl int) iter.Seq[Cell[V]] {
	return t.boundary(t.AllFrom(lvl), true)
}

// Interior yields the non-boundary nodes, levels ascending.
func (t *Tree[V]) Interior() iter.Seq[Cell[V]] {
	return t.boundary(t.All(), false)
}

// InteriorFrom yields the non-boundary nodes from the given level
// onward.
func (t *Tree[V]) InteriorFrom(lvl int) iter.Seq[Cell[V]] {
	return t.boundary(t.AllFrom(lvl), false)
}

func (t *Tree[V]) boundary(seq iter.Seq[Cell[V]], want bool) iter.Seq[Cell[V]] {
	return xiter.Filter(seq, func(c Cell[V]) bool { return t.IsBoundary(c.Key) == want })
}
