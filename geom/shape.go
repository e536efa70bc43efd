package geom

import "math"

// Plane is an oriented plane in 3-space. PosX is the in-plane
// direction that projects to the positive x axis.
type Plane struct {
	Origin, Normal, PosX Point
}

// Project maps a 3-dimensional point onto the plane's 2-dimensional
// coordinate system. The y direction is Normal × PosX.
func (pl Plane) Project(pt Point) Point {
	v := pt.Sub(pl.Origin)
	posy := Cross(pl.Normal, pl.PosX)
	return Pt(v.Dot(pl.PosX), v.Dot(posy))
}

// Line is an infinite line through Pt in direction Dir.
type Line struct {
	Pt, Dir Point
}

// LineThrough returns the line through p in direction d, with d
// normalized.
func LineThrough(p, d Point) Line {
	return Line{Pt: p, Dir: d.Normalize()}
}

// Sider is a curve segment that can classify which side of itself a
// 2-dimensional point lies on. Side returns a positive value when p
// is to the left of the segment viewed from its begin point toward
// its end point, a negative value when p is to the right, and zero
// when p lies on the segment. Side is total: ambiguous inputs report
// zero rather than an arbitrary side.
type Sider interface {
	Side(p Point) float64
}

// LineSegment is a straight segment between two 2-dimensional points.
type LineSegment struct {
	Begin, End Point
}

func (s LineSegment) Side(p Point) float64 {
	return (s.End[0]-s.Begin[0])*(p[1]-s.Begin[1]) -
		(p[0]-s.Begin[0])*(s.End[1]-s.Begin[1])
}

// CircleSegment is a circular arc between two 2-dimensional points.
// CenterLeft reports whether the circle center lies to the left of
// the chord viewed from Begin toward End; RunsLeft reports whether
// the arc itself bulges to the left.
type CircleSegment struct {
	Begin, End Point
	Radius     float64
	CenterLeft bool
	RunsLeft   bool
}

// Side classifies p against the arc's circle: traveling the arc from
// Begin to End with the center on the left, the circle interior is
// the left side; with the center on the right it is the right side.
// Points on the circle report zero. An arc whose radius is shorter
// than half its chord cannot exist; it degenerates to the chord test.
func (s CircleSegment) Side(p Point) float64 {
	c, ok := s.center()
	if !ok {
		return LineSegment{Begin: s.Begin, End: s.End}.Side(p)
	}
	d := s.Radius - p.Dist(c)
	if !s.CenterLeft {
		return -d
	}
	return d
}

// center returns the arc's circle center, or ok=false when the
// radius is shorter than half the chord.
func (s CircleSegment) center() (Point, bool) {
	chord := s.End.Sub(s.Begin)
	half := 0.5 * chord.Norm()
	if s.Radius < half {
		return nil, false
	}

	mid := s.Begin.Add(s.End).Scale(0.5)
	h := math.Sqrt(s.Radius*s.Radius - half*half)
	// unit normal pointing left of the chord
	left := Pt(-chord[1], chord[0]).Normalize()
	if !s.CenterLeft {
		left = left.Scale(-1)
	}
	return mid.Add(left.Scale(h)), true
}

// Hull is a polygonal hull whose points are assumed to be in
// consecutive order.
type Hull struct {
	Points []Point
}
