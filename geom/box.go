package geom

import (
	"fmt"
	"iter"
	"math"
)

// Box is an axis-aligned interval [Lo, Hi] in len(Lo) dimensions.
// Lo[i] ≤ Hi[i] must hold on every axis.
type Box struct {
	Lo, Hi Point
}

// Bx is shorthand for constructing a Box from its corners.
func Bx(lo, hi Point) Box { return Box{Lo: lo, Hi: hi} }

// Dim returns the dimension of the box.
func (b Box) Dim() int { return len(b.Lo) }

// Size returns the per-axis extent Hi − Lo.
func (b Box) Size() Point { return b.Hi.Sub(b.Lo) }

// Center returns the midpoint of the box.
func (b Box) Center() Point { return b.Lo.Add(b.Hi).Scale(0.5) }

// DistSq returns the squared distance from the box to p, zero if p
// is inside.
func (b Box) DistSq(p Point) float64 {
	var dsq float64
	for i, x := range p {
		if x < b.Lo[i] {
			dsq += (x - b.Lo[i]) * (x - b.Lo[i])
		}
		if x > b.Hi[i] {
			dsq += (x - b.Hi[i]) * (x - b.Hi[i])
		}
	}
	return dsq
}

// Dist returns the distance from the box to p, zero if p is inside.
func (b Box) Dist(p Point) float64 { return math.Sqrt(b.DistSq(p)) }

// Contains reports whether p lies inside the box, boundary included.
func (b Box) Contains(p Point) bool { return b.DistSq(p) == 0 }

// Union returns the smallest box containing both b and other.
func (b Box) Union(other Box) Box {
	lo := make(Point, b.Dim())
	hi := make(Point, b.Dim())
	for i := range lo {
		lo[i] = math.Min(b.Lo[i], other.Lo[i])
		hi[i] = math.Max(b.Hi[i], other.Hi[i])
	}
	return Box{Lo: lo, Hi: hi}
}

// Subdivide yields the r^d equal sub-boxes of b, ordered so that the
// first axis varies fastest. The ordering matches the sibling-index
// order of an orthtree cell's children.
func (b Box) Subdivide(r int) iter.Seq[Box] {
	return func(yield func(Box) bool) {
		dim := b.Dim()
		cell := b.Size().Scale(1 / float64(r))
		n := 1
		for range dim {
			n *= r
		}

		for s := range n {
			lo := make(Point, dim)
			t := s
			for a := range dim {
				lo[a] = b.Lo[a] + float64(t%r)*cell[a]
				t /= r
			}
			if !yield(Box{Lo: lo, Hi: lo.Add(cell)}) {
				return
			}
		}
	}
}

func (b Box) String() string { return fmt.Sprintf("lo:%v hi:%v", b.Lo, b.Hi) }
