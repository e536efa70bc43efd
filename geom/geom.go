// Package geom provides geometric primitives for constructive solid
// geometry: real and integer vectors of arbitrary dimension,
// axis-aligned boxes, planes, lines, segments, hulls, and
// triangulated surfaces.
//
// All types have value semantics: operations return fresh values and
// never mutate their receivers.
package geom

import "golang.org/x/exp/constraints"

// Scalar is a constraint for the coordinate types that geom's
// generic helpers can handle.
type Scalar interface {
	constraints.Integer | constraints.Float
}
