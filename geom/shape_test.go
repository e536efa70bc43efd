package geom_test

import (
	"testing"

	"github.com/pypcl/compgeom/geom"
	"github.com/stretchr/testify/require"
)

func TestPlaneProject(t *testing.T) {
	xy := geom.Plane{
		Origin: geom.Pt(0, 0, 0),
		Normal: geom.Pt(0, 0, 1),
		PosX:   geom.Pt(1, 0, 0),
	}
	require.True(t, xy.Project(geom.Pt(2, 3, 7)).Equal(geom.Pt(2, 3)))

	shifted := geom.Plane{
		Origin: geom.Pt(1, 1, 1),
		Normal: geom.Pt(0, 0, 1),
		PosX:   geom.Pt(0, 1, 0),
	}
	// posy is Normal × PosX = (-1, 0, 0)
	require.True(t, shifted.Project(geom.Pt(3, 4, 5)).Equal(geom.Pt(3, -2)))
}

func TestLineThrough(t *testing.T) {
	l := geom.LineThrough(geom.Pt(1, 1), geom.Pt(3, 4))
	require.InDelta(t, 1, l.Dir.Norm(), 1e-15)
	require.True(t, l.Pt.Equal(geom.Pt(1, 1)))
}

func TestLineSegmentSide(t *testing.T) {
	s := geom.LineSegment{Begin: geom.Pt(0, 0), End: geom.Pt(1, 0)}

	require.Positive(t, s.Side(geom.Pt(0.5, 1)))
	require.Negative(t, s.Side(geom.Pt(0.5, -1)))
	require.Zero(t, s.Side(geom.Pt(2, 0)), "collinear points are on the segment")
}

func TestCircleSegmentSide(t *testing.T) {
	// upper half of the unit circle, traversed counterclockwise: the
	// center (0,0) is the midpoint of the chord (1,0)→(-1,0) and lies
	// to the left of the direction of travel along the arc.
	arc := geom.CircleSegment{
		Begin:      geom.Pt(1, 0),
		End:        geom.Pt(-1, 0),
		Radius:     1,
		CenterLeft: true,
		RunsLeft:   true,
	}

	require.Positive(t, arc.Side(geom.Pt(0, 0)), "circle interior is left")
	require.Negative(t, arc.Side(geom.Pt(0, 2)), "circle exterior is right")
	require.Zero(t, arc.Side(geom.Pt(0, 1)), "points on the circle are on the segment")

	// same arc traversed the other way: sides flip
	flipped := geom.CircleSegment{
		Begin:      geom.Pt(-1, 0),
		End:        geom.Pt(1, 0),
		Radius:     1,
		CenterLeft: false,
		RunsLeft:   false,
	}
	require.Negative(t, flipped.Side(geom.Pt(0, 0)))
	require.Positive(t, flipped.Side(geom.Pt(0, 2)))
	require.Zero(t, flipped.Side(geom.Pt(0, -1)))
}

func TestCircleSegmentSideDegenerate(t *testing.T) {
	// radius shorter than half the chord: falls back to the chord test
	s := geom.CircleSegment{
		Begin:  geom.Pt(0, 0),
		End:    geom.Pt(2, 0),
		Radius: 0.5,
	}
	require.Positive(t, s.Side(geom.Pt(1, 1)))
	require.Negative(t, s.Side(geom.Pt(1, -1)))
}
