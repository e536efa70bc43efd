package orthtree

import (
	"iter"
	"maps"
	"slices"
)

// Node is a cell's payload: the stored value and the leaf flag. An
// internal node must own all of its children in the container; a
// leaf must own none. The tree maintains that coupling — mutating
// Leaf directly without the matching child mutation breaks it.
type Node[V any] struct {
	Value V
	Leaf  bool
}

// Cell pairs a key with the node stored under it. Cursors yield
// Cells; the node pointer stays valid until the next mutation of the
// tree.
type Cell[V any] struct {
	Key  Key
	Node *Node[V]
}

// Container stores key→node associations partitioned by level.
// Sequences visit levels in ascending order; the order within one
// level is implementation-defined but stable between mutations.
type Container[V any] interface {
	// Insert stores n under k at the given level. When k is already
	// present at that level the existing node is kept; the returned
	// node is the one stored, and inserted reports whether it is n.
	Insert(k Key, lvl int, n *Node[V]) (stored *Node[V], inserted bool)
	// Erase removes k from the given level, if present.
	Erase(k Key, lvl int)
	// Find scans levels in ascending order for k. The first hit wins;
	// keys are unique across levels under the codec recurrence, but
	// the container does not enforce that.
	Find(k Key) (n *Node[V], lvl int, ok bool)
	// FindAt looks k up at one level only.
	FindAt(k Key, lvl int) (*Node[V], bool)
	// Len returns the total number of nodes.
	Len() int

	// All yields every node, levels ascending.
	All() iter.Seq[Cell[V]]
	// AllFrom yields every node from the given level through the last
	// populated level.
	AllFrom(lvl int) iter.Seq[Cell[V]]
	// Level yields the nodes of one level.
	Level(lvl int) iter.Seq[Cell[V]]
}

// LevelContainer is the default Container: one hashed map per level,
// iterated in ascending key order within a level.
type LevelContainer[V any] struct {
	levels []map[Key]*Node[V]
	count  int
}

// NewLevelContainer returns an empty LevelContainer.
func NewLevelContainer[V any]() *LevelContainer[V] {
	return &LevelContainer[V]{}
}

func (c *LevelContainer[V]) Insert(k Key, lvl int, n *Node[V]) (*Node[V], bool) {
	for len(c.levels) <= lvl {
		c.levels = append(c.levels, nil)
	}
	if c.levels[lvl] == nil {
		c.levels[lvl] = make(map[Key]*Node[V])
	}
	if old, ok := c.levels[lvl][k]; ok {
		return old, false
	}
	c.levels[lvl][k] = n
	c.count++
	return n, true
}

func (c *LevelContainer[V]) Erase(k Key, lvl int) {
	if lvl < 0 || lvl >= len(c.levels) {
		return
	}
	if _, ok := c.levels[lvl][k]; ok {
		delete(c.levels[lvl], k)
		c.count--
	}
}

func (c *LevelContainer[V]) Find(k Key) (*Node[V], int, bool) {
	for lvl, m := range c.levels {
		if n, ok := m[k]; ok {
			return n, lvl, true
		}
	}
	return nil, 0, false
}

func (c *LevelContainer[V]) FindAt(k Key, lvl int) (*Node[V], bool) {
	if lvl < 0 || lvl >= len(c.levels) {
		return nil, false
	}
	n, ok := c.levels[lvl][k]
	return n, ok
}

func (c *LevelContainer[V]) Len() int { return c.count }

func (c *LevelContainer[V]) All() iter.Seq[Cell[V]] { return c.AllFrom(0) }

func (c *LevelContainer[V]) AllFrom(lvl int) iter.Seq[Cell[V]] {
	return func(yield func(Cell[V]) bool) {
		for l := max(lvl, 0); l < len(c.levels); l++ {
			for _, k := range slices.Sorted(maps.Keys(c.levels[l])) {
				if !yield(Cell[V]{Key: k, Node: c.levels[l][k]}) {
					return
				}
			}
		}
	}
}

func (c *LevelContainer[V]) Level(lvl int) iter.Seq[Cell[V]] {
	return func(yield func(Cell[V]) bool) {
		if lvl < 0 || lvl >= len(c.levels) {
			return
		}
		for _, k := range slices.Sorted(maps.Keys(c.levels[lvl])) {
			if !yield(Cell[V]{Key: k, Node: c.levels[lvl][k]}) {
				return
			}
		}
	}
}
