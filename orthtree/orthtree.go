// Package orthtree implements an orthogonal multi-level tree: a
// dimension-parameterized spatial index that recursively subdivides
// the unit cube [0,1]^d by a constant factor r along each axis, so
// every internal cell has r^d children.
//
// The tree composes a [Codec], which relates integer keys to levels,
// lattice offsets, and boxes, with a [Container] holding the nodes
// per level. Trees are built top-down from caller-supplied
// collaborators ([PrototypeMap], [RefineOracle], [Inserter]) and
// queried through cursor sequences and a nearest-leaf interpolation
// query.
//
// A tree is not safe for concurrent mutation. Read-only queries may
// run concurrently as long as no mutation is in flight.
package orthtree

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/pypcl/compgeom/geom"
)

// DefaultMaxLevel is the deepest refinement level addressed by trees
// built without WithMaxLevel. Shapes whose keys cannot reach it in
// 64 bits get the deepest addressable level instead.
const DefaultMaxLevel = 16

// PrototypeMap supplies the initial value for each cell visited
// during bulk construction.
type PrototypeMap[V any] interface {
	Value(k Key) V
}

// PrototypeFunc adapts a function to the PrototypeMap interface.
type PrototypeFunc[V any] func(Key) V

func (f PrototypeFunc[V]) Value(k Key) V { return f(k) }

// RefineOracle decides, during bulk construction, whether the
// subtree under a key needs further subdivision. IsUniform true
// means it does not.
type RefineOracle interface {
	IsUniform(k Key) bool
}

// OracleFunc adapts a function to the RefineOracle interface.
type OracleFunc func(Key) bool

func (f OracleFunc) IsUniform(k Key) bool { return f(k) }

// Inserter publishes each node created during bulk construction. The
// returned node is the stored one, which the builder mutates to mark
// refinement.
type Inserter[V any] interface {
	Insert(t *Tree[V], k Key, n *Node[V]) (stored *Node[V], inserted bool)
}

// InserterFunc adapts a function to the Inserter interface.
type InserterFunc[V any] func(*Tree[V], Key, *Node[V]) (*Node[V], bool)

func (f InserterFunc[V]) Insert(t *Tree[V], k Key, n *Node[V]) (*Node[V], bool) {
	return f(t, k, n)
}

// containerInserter is the default Inserter: straight into the
// tree's container.
type containerInserter[V any] struct{}

func (containerInserter[V]) Insert(t *Tree[V], k Key, n *Node[V]) (*Node[V], bool) {
	return t.Insert(k, n)
}

// Tree is an orthogonal multi-level tree over the unit cube.
type Tree[V any] struct {
	codec Codec
	nodes Container[V]
}

// Option configures a Tree at construction.
type Option[V any] func(*treeConfig[V])

type treeConfig[V any] struct {
	maxLevel int
	codec    Codec
	nodes    Container[V]
}

// WithMaxLevel caps the deepest level the default codec addresses.
func WithMaxLevel[V any](lvl int) Option[V] {
	return func(cfg *treeConfig[V]) { cfg.maxLevel = lvl }
}

// WithCodec replaces the default integral codec.
func WithCodec[V any](c Codec) Option[V] {
	return func(cfg *treeConfig[V]) { cfg.codec = c }
}

// WithContainer replaces the default level container.
func WithContainer[V any](c Container[V]) Option[V] {
	return func(cfg *treeConfig[V]) { cfg.nodes = c }
}

// New returns an empty tree over [0,1]^dim with refinement factor
// rfactor.
func New[V any](dim, rfactor int, opts ...Option[V]) (*Tree[V], error) {
	cfg := treeConfig[V]{maxLevel: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.codec == nil {
		lvl := cfg.maxLevel
		if lvl < 0 {
			lvl = min(DefaultMaxLevel, MaxAddressableLevel(dim, rfactor))
		}
		codec, err := NewIntegralCodec(dim, rfactor, lvl)
		if err != nil {
			return nil, err
		}
		cfg.codec = codec
	}
	if cfg.nodes == nil {
		cfg.nodes = NewLevelContainer[V]()
	}
	return &Tree[V]{codec: cfg.codec, nodes: cfg.nodes}, nil
}

// Codec returns the tree's key codec.
func (t *Tree[V]) Codec() Codec { return t.codec }

// Len returns the number of nodes in the tree.
func (t *Tree[V]) Len() int { return t.nodes.Len() }

// Find scans levels in ascending order for k.
func (t *Tree[V]) Find(k Key) (*Node[V], bool) {
	n, _, ok := t.nodes.Find(k)
	return n, ok
}

// FindAt looks k up at one level only.
func (t *Tree[V]) FindAt(k Key, lvl int) (*Node[V], bool) {
	return t.nodes.FindAt(k, lvl)
}

// Insert stores n under k at the level the codec derives from k.
// When k is already present the existing node is kept; the returned
// node is the stored one. Inserting around the build and refine
// protocols is the caller's responsibility to keep structurally
// sound.
func (t *Tree[V]) Insert(k Key, n *Node[V]) (*Node[V], bool) {
	return t.nodes.Insert(k, t.codec.Level(k), n)
}

// Erase removes k from the given level, if present. Like Insert it
// does not maintain the parent/child coupling on its own.
func (t *Tree[V]) Erase(k Key, lvl int) {
	t.nodes.Erase(k, lvl)
}

// Build constructs the subtree under key depth-first. Each visited
// cell receives its value from pm and is published through ins (the
// container itself when ins is nil). A cell is left as a leaf when
// it reaches lvlStop, or when oracle reports the subtree uniform and
// the level is at least lvlMin; otherwise it is marked internal and
// all of its children are built. The root of the whole tree is
// key 0 at level 0.
func (t *Tree[V]) Build(lvlMin, lvlStop int, pm PrototypeMap[V], oracle RefineOracle, ins Inserter[V], key Key, lvl int) error {
	if lvlStop > t.codec.MaxLevel() {
		return fmt.Errorf("build to level %d: %w", lvlStop, ErrLevelExceeded)
	}
	if lvl > lvlStop {
		return fmt.Errorf("build from level %d past stop level %d: %w", lvl, lvlStop, ErrLevelExceeded)
	}
	if ins == nil {
		ins = containerInserter[V]{}
	}
	t.build(lvlMin, lvlStop, pm, oracle, ins, key, lvl)
	return nil
}

func (t *Tree[V]) build(lvlMin, lvlStop int, pm PrototypeMap[V], oracle RefineOracle, ins Inserter[V], key Key, lvl int) {
	n, _ := ins.Insert(t, key, &Node[V]{Value: pm.Value(key), Leaf: true})

	if lvl == lvlStop {
		return
	}
	if oracle.IsUniform(key) && lvl >= lvlMin {
		return
	}

	n.Leaf = false
	for s := range t.codec.ChildCount() {
		t.build(lvlMin, lvlStop, pm, oracle, ins, t.codec.Child(key, s), lvl+1)
	}
}

// RefineCell splits the leaf at k: every child receives a copy of
// the leaf's value and k becomes internal. Refining an internal node
// fails with ErrNotLeaf.
func (t *Tree[V]) RefineCell(k Key) error {
	n, lvl, ok := t.nodes.Find(k)
	if !ok {
		return fmt.Errorf("refine %d: %w", k, ErrInvalidKey)
	}
	if !n.Leaf {
		return fmt.Errorf("refine %d: %w", k, ErrNotLeaf)
	}
	if lvl+1 > t.codec.MaxLevel() {
		return fmt.Errorf("refine %d at level %d: %w", k, lvl, ErrLevelExceeded)
	}

	for s := range t.codec.ChildCount() {
		t.nodes.Insert(t.codec.Child(k, s), lvl+1, &Node[V]{Value: n.Value, Leaf: true})
	}
	n.Leaf = false
	return nil
}

// PruneChildren erases the subtrees under each of k's children and
// turns k back into a leaf keeping its value. Pruning a leaf fails
// with ErrNotInternal.
func (t *Tree[V]) PruneChildren(k Key) error {
	n, lvl, ok := t.nodes.Find(k)
	if !ok {
		return fmt.Errorf("prune %d: %w", k, ErrInvalidKey)
	}
	if n.Leaf {
		return fmt.Errorf("prune %d: %w", k, ErrNotInternal)
	}
	if err := t.pruneBelow(k, lvl); err != nil {
		return fmt.Errorf("prune %d: %w", k, err)
	}
	n.Leaf = true
	return nil
}

func (t *Tree[V]) pruneBelow(k Key, lvl int) error {
	for s := range t.codec.ChildCount() {
		ck := t.codec.Child(k, s)
		cn, ok := t.nodes.FindAt(ck, lvl+1)
		if !ok {
			return fmt.Errorf("child %d: %w", ck, ErrMissingChild)
		}
		if !cn.Leaf {
			if err := t.pruneBelow(ck, lvl+1); err != nil {
				return err
			}
		}
		t.nodes.Erase(ck, lvl+1)
	}
	return nil
}

// Validate checks the structural invariant: every internal node owns
// all of its children and every leaf owns none.
func (t *Tree[V]) Validate() error {
	for c := range t.nodes.All() {
		lvl := t.codec.Level(c.Key)
		for s := range t.codec.ChildCount() {
			ck := t.codec.Child(c.Key, s)
			_, ok := t.nodes.FindAt(ck, lvl+1)
			if c.Node.Leaf && ok {
				return fmt.Errorf("leaf %d owns child %d: %w", c.Key, ck, ErrNotInternal)
			}
			if !c.Node.Leaf && !ok {
				return fmt.Errorf("internal %d: child %d: %w", c.Key, ck, ErrMissingChild)
			}
		}
	}
	return nil
}

// Sample identifies a leaf cell contributing to an interpolation:
// the cell's key and the displacement Δ from the query point to the
// cell's sampling position.
type Sample struct {
	Key   Key
	Delta geom.Point
}

// InterpolateTo returns the leaf cells that should contribute to
// interpolation at p ∈ [0,1]^d, sorted by ascending ‖Δ‖ and
// duplicate-free. offset is a per-cell displacement in [−½, ½]^d of
// the sampling position from each cell's center, in units of the
// cell size; nil means cell centers. Neighbors of the leaf holding p
// that are absent from the tree are substituted by their nearest
// existing ancestor; neighbors that are internal are substituted by
// their leaf descendants. The result is bounded at (2r)^d − 1
// entries.
func (t *Tree[V]) InterpolateTo(p, offset geom.Point) ([]Sample, error) {
	dim := t.codec.Dim()
	if len(p) != dim {
		return nil, fmt.Errorf("interpolate to %v: dimension %d, want %d: %w", p, len(p), dim, ErrInvalidKey)
	}
	if offset == nil {
		offset = geom.Zero(dim)
	}

	k, err := t.leafAt(p)
	if err != nil {
		return nil, err
	}

	// Collect candidate cells around the leaf. Keys only ever move to
	// ancestors or descendants here, so the walk terminates; the seen
	// set keeps it duplicate-free.
	work := t.codec.EqualSizedNeighbors(k)
	seen := make(map[Key]bool, len(work))
	var cells []Key
	for i := 0; i < len(work); i++ {
		nk := work[i]
		n, _, ok := t.nodes.Find(nk)
		for !ok {
			// coarser neighbor substitutes
			parent, perr := t.codec.Parent(nk)
			if perr != nil {
				return nil, fmt.Errorf("interpolate to %v: %w", p, perr)
			}
			nk = parent
			n, _, ok = t.nodes.Find(nk)
		}
		if seen[nk] {
			continue
		}
		seen[nk] = true
		if !n.Leaf {
			// finer neighbors substitute
			for s := range t.codec.ChildCount() {
				work = append(work, t.codec.Child(nk, s))
			}
			continue
		}
		cells = append(cells, nk)
	}

	out := make([]Sample, 0, len(cells))
	for _, ck := range cells {
		at := t.codec.Box(ck).Center().Add(offset.Scale(t.codec.CellSize(ck)))
		out = append(out, Sample{Key: ck, Delta: at.Sub(p)})
	}
	slices.SortFunc(out, func(a, b Sample) int {
		if c := cmp.Compare(a.Delta.NormSq(), b.Delta.NormSq()); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	if limit := t.sampleCap(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// leafAt descends from the root to the leaf whose cell contains p.
func (t *Tree[V]) leafAt(p geom.Point) (Key, error) {
	k := Key(0)
	n, _, ok := t.nodes.Find(k)
	if !ok {
		return 0, fmt.Errorf("interpolate in empty tree: %w", ErrInvalidKey)
	}
	lvl := 0
	for !n.Leaf {
		lvl++
		if lvl > t.codec.MaxLevel() {
			return 0, fmt.Errorf("descend past level %d: %w", t.codec.MaxLevel(), ErrLevelExceeded)
		}
		size := t.codec.LevelSize(lvl)
		off := p.Scale(float64(size)).Floor()
		for a, o := range off {
			off[a] = min(max(o, 0), size-1)
		}
		ck, err := t.codec.KeyFromLevelOffset(lvl, off)
		if err != nil {
			return 0, err
		}
		cn, ok := t.nodes.FindAt(ck, lvl)
		if !ok {
			return 0, fmt.Errorf("descend to %d: %w", ck, ErrMissingChild)
		}
		k, n = ck, cn
	}
	return k, nil
}

// sampleCap bounds an interpolation result after coarser and finer
// substitution.
func (t *Tree[V]) sampleCap() int {
	n := 1
	for range t.codec.Dim() {
		n *= 2 * t.codec.Rfactor()
	}
	return n - 1
}
