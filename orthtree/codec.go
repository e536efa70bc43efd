package orthtree

import (
	"fmt"
	"math"
	"slices"

	"github.com/pypcl/compgeom/geom"
)

// Key identifies a unique cell at some level of refinement. Under the
// default codec the root is key 0 and the children of key k are
// k·r^d + 1 + s for sibling indices s ∈ [0, r^d). Keys are an
// in-memory contract; they are not meant to be persisted.
type Key uint64

// Codec translates between a key and its spatial meaning: the level,
// the sibling index among the parent's children, the lattice offset
// within the level's grid, and the cell box inside the unit cube.
type Codec interface {
	// Dim returns the number of dimensions.
	Dim() int
	// Rfactor returns the per-axis refinement factor between levels.
	Rfactor() int
	// ChildCount returns r^d, the number of children of an internal
	// node.
	ChildCount() int
	// MaxLevel returns the deepest level the codec can address.
	MaxLevel() int

	// Level returns the refinement level of k; the root is level 0.
	Level(k Key) int
	// SiblingIndex returns k's index among its parent's children.
	// Fails with ErrInvalidKey for the root.
	SiblingIndex(k Key) (int, error)
	// Parent returns the key of k's parent cell. Fails with
	// ErrInvalidKey for the root.
	Parent(k Key) (Key, error)
	// Child returns the key of k's child with the given sibling
	// index. The sibling index must be in [0, ChildCount()).
	Child(k Key, sibling int) Key

	// LevelStart returns the first key of the given level.
	LevelStart(lvl int) (Key, error)
	// LevelEnd returns the last key of the given level.
	LevelEnd(lvl int) (Key, error)
	// LevelSize returns the per-axis cell count r^lvl of the given
	// level's grid.
	LevelSize(lvl int) int

	// OffsetWithinParent returns k's lattice offset relative to its
	// parent cell, in [0, r)^d.
	OffsetWithinParent(k Key) geom.IntPoint
	// OffsetWithinLevel returns k's lattice offset within its level's
	// grid, in [0, r^lvl)^d.
	OffsetWithinLevel(k Key) geom.IntPoint
	// KeyFromLevelOffset returns the key of the cell at the given
	// lattice offset of the given level. It inverts OffsetWithinLevel.
	KeyFromLevelOffset(lvl int, off geom.IntPoint) (Key, error)

	// NeighborMin returns the same-level neighbor of k one cell
	// toward the minimum side of the given axis. ok is false when the
	// neighbor falls outside the unit cube.
	NeighborMin(k Key, axis int) (Key, bool)
	// NeighborMax is NeighborMin toward the maximum side.
	NeighborMax(k Key, axis int) (Key, bool)
	// EqualSizedNeighbors returns the same-level keys forming the
	// axis-aligned cube of neighbors around k, k included. Neighbors
	// outside the unit cube are omitted, so the result holds at most
	// 3^d keys and is duplicate-free.
	EqualSizedNeighbors(k Key) []Key

	// IsBoundary reports whether k's cell touches the surface of the
	// unit cube.
	IsBoundary(k Key) bool

	// Box returns k's cell as a box inside the unit cube.
	Box(k Key) geom.Box
	// CellSize returns the side length r^(−lvl) of k's cell.
	CellSize(k Key) float64
}

// IntegralCodec is the default stateless Codec over integral keys.
// Level key ranges are precomputed up to the maximum level at
// construction.
type IntegralCodec struct {
	dim      int
	rfactor  int
	ssize    int // r^dim, the child count
	maxLevel int
	start    []Key // first key per level
	end      []Key // last key per level
}

// NewIntegralCodec returns a codec for the given dimension and
// refinement factor addressing levels 0 through maxLevel.
func NewIntegralCodec(dim, rfactor, maxLevel int) (*IntegralCodec, error) {
	if dim < 1 || rfactor < 2 || maxLevel < 0 {
		return nil, fmt.Errorf("orthtree: bad codec shape: dim %d, rfactor %d, max level %d", dim, rfactor, maxLevel)
	}

	ssize := 1
	for range dim {
		if ssize > math.MaxInt/rfactor {
			return nil, fmt.Errorf("orthtree: %d^%d children overflow: %w", rfactor, dim, ErrLevelExceeded)
		}
		ssize *= rfactor
	}

	c := IntegralCodec{
		dim:      dim,
		rfactor:  rfactor,
		ssize:    ssize,
		maxLevel: maxLevel,
		start:    make([]Key, maxLevel+1),
		end:      make([]Key, maxLevel+1),
	}
	count := Key(1)
	for lvl := 0; lvl <= maxLevel; lvl++ {
		if lvl > 0 {
			if count > math.MaxUint64/Key(ssize) {
				return nil, fmt.Errorf("orthtree: keys at level %d overflow: %w", lvl, ErrLevelExceeded)
			}
			count *= Key(ssize)
			c.start[lvl] = c.start[lvl-1] + count/Key(ssize)
		}
		c.end[lvl] = c.start[lvl] + count - 1
	}
	return &c, nil
}

// MaxAddressableLevel returns the deepest level whose keys still fit
// in a Key for the given dimension and refinement factor.
func MaxAddressableLevel(dim, rfactor int) int {
	ssize := 1
	for range dim {
		if ssize > math.MaxInt/rfactor {
			return 0
		}
		ssize *= rfactor
	}
	lvl := 0
	count := Key(1)
	for count <= math.MaxUint64/Key(ssize) {
		count *= Key(ssize)
		lvl++
	}
	return lvl
}

func (c *IntegralCodec) Dim() int        { return c.dim }
func (c *IntegralCodec) Rfactor() int    { return c.rfactor }
func (c *IntegralCodec) ChildCount() int { return c.ssize }
func (c *IntegralCodec) MaxLevel() int   { return c.maxLevel }

func (c *IntegralCodec) Level(k Key) int {
	lvl := 0
	for k > 0 {
		lvl++
		k = (k - 1) / Key(c.ssize)
	}
	return lvl
}

func (c *IntegralCodec) SiblingIndex(k Key) (int, error) {
	if k == 0 {
		return 0, fmt.Errorf("sibling index of root: %w", ErrInvalidKey)
	}
	return int((k - 1) % Key(c.ssize)), nil
}

func (c *IntegralCodec) Parent(k Key) (Key, error) {
	if k == 0 {
		return 0, fmt.Errorf("parent of root: %w", ErrInvalidKey)
	}
	return (k - 1) / Key(c.ssize), nil
}

func (c *IntegralCodec) Child(k Key, sibling int) Key {
	if sibling < 0 || sibling >= c.ssize {
		panic(fmt.Sprintf("orthtree: sibling index %d out of [0, %d)", sibling, c.ssize))
	}
	return k*Key(c.ssize) + 1 + Key(sibling)
}

func (c *IntegralCodec) LevelStart(lvl int) (Key, error) {
	if lvl < 0 || lvl > c.maxLevel {
		return 0, fmt.Errorf("level %d: %w", lvl, ErrLevelExceeded)
	}
	return c.start[lvl], nil
}

func (c *IntegralCodec) LevelEnd(lvl int) (Key, error) {
	if lvl < 0 || lvl > c.maxLevel {
		return 0, fmt.Errorf("level %d: %w", lvl, ErrLevelExceeded)
	}
	return c.end[lvl], nil
}

func (c *IntegralCodec) LevelSize(lvl int) int {
	size := 1
	for range lvl {
		size *= c.rfactor
	}
	return size
}

func (c *IntegralCodec) OffsetWithinParent(k Key) geom.IntPoint {
	off := geom.IZero(c.dim)
	if k == 0 {
		return off
	}
	s := int((k - 1) % Key(c.ssize))
	for a := range off {
		off[a] = s % c.rfactor
		s /= c.rfactor
	}
	return off
}

func (c *IntegralCodec) OffsetWithinLevel(k Key) geom.IntPoint {
	off := geom.IZero(c.dim)
	mult := 1
	for k > 0 {
		off = off.Add(c.OffsetWithinParent(k).Scale(mult))
		k = (k - 1) / Key(c.ssize)
		mult *= c.rfactor
	}
	return off
}

func (c *IntegralCodec) KeyFromLevelOffset(lvl int, off geom.IntPoint) (Key, error) {
	start, err := c.LevelStart(lvl)
	if err != nil {
		return 0, err
	}
	if len(off) != c.dim {
		return 0, fmt.Errorf("offset %v has dimension %d, want %d: %w", off, len(off), c.dim, ErrInvalidKey)
	}
	size := c.LevelSize(lvl)
	for _, o := range off {
		if o < 0 || o >= size {
			return 0, fmt.Errorf("offset %v outside level %d grid: %w", off, lvl, ErrInvalidKey)
		}
	}

	// Interleave the base-r digits of each coordinate: digit i of
	// every axis forms the sibling index at depth lvl−i.
	o := slices.Clone(off)
	key := Key(0)
	ct := Key(1)
	for range lvl {
		sib := Key(0)
		mult := Key(1)
		for a := range o {
			sib += Key(o[a]%c.rfactor) * mult
			mult *= Key(c.rfactor)
			o[a] /= c.rfactor
		}
		key += ct * sib
		ct *= Key(c.ssize)
	}
	return start + key, nil
}

func (c *IntegralCodec) NeighborMin(k Key, axis int) (Key, bool) {
	return c.neighbor(k, axis, -1)
}

func (c *IntegralCodec) NeighborMax(k Key, axis int) (Key, bool) {
	return c.neighbor(k, axis, +1)
}

func (c *IntegralCodec) neighbor(k Key, axis, delta int) (Key, bool) {
	lvl := c.Level(k)
	off := c.OffsetWithinLevel(k)
	off[axis] += delta
	if off[axis] < 0 || off[axis] >= c.LevelSize(lvl) {
		return 0, false
	}
	nk, err := c.KeyFromLevelOffset(lvl, off)
	if err != nil {
		return 0, false
	}
	return nk, true
}

func (c *IntegralCodec) EqualSizedNeighbors(k Key) []Key {
	lvl := c.Level(k)
	size := c.LevelSize(lvl)
	center := c.OffsetWithinLevel(k)

	n := 1
	for range c.dim {
		n *= 3
	}
	keys := make([]Key, 0, n)
	for i := range n {
		off := slices.Clone(center)
		t := i
		inside := true
		for a := range off {
			off[a] += t%3 - 1
			t /= 3
			if off[a] < 0 || off[a] >= size {
				inside = false
				break
			}
		}
		if !inside {
			continue
		}
		nk, err := c.KeyFromLevelOffset(lvl, off)
		if err != nil {
			continue
		}
		keys = append(keys, nk)
	}
	return keys
}

func (c *IntegralCodec) IsBoundary(k Key) bool {
	max := c.LevelSize(c.Level(k)) - 1
	for _, o := range c.OffsetWithinLevel(k) {
		if o == 0 || o == max {
			return true
		}
	}
	return false
}

func (c *IntegralCodec) Box(k Key) geom.Box {
	h := c.CellSize(k)
	lo := c.OffsetWithinLevel(k).ToPoint().Scale(h)
	return geom.Box{Lo: lo, Hi: lo.Add(geom.Uniform(c.dim, h))}
}

func (c *IntegralCodec) CellSize(k Key) float64 {
	return 1 / float64(c.LevelSize(c.Level(k)))
}
