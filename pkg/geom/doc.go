// Package geom provides the 2D geometry kernel for folder enclosures.
//
// # Overview
//
// The package is a set of pure, stateless functions over [Point] values:
// side-of-line classification, an unnormalized line distance used for
// farthest-point search, Euclidean distance, axis-aligned bounding boxes and
// a QuickHull implementation of the convex hull.
//
// [Point] is an alias for gonum's [r2.Vec], so the vector helpers from
// gonum.org/v1/gonum/spatial/r2 (Add, Sub, Scale, Norm, ...) apply directly.
//
// # Convex Hull
//
// [ConvexHull] uses recursive divide and conquer (QuickHull):
//
//	hull := geom.ConvexHull([]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 8}, {X: 5, Y: 2}})
//	// hull contains the three outer points; (5,2) is interior
//
// Inputs with fewer than three points are returned unchanged. The hull is a
// set of unique points; use [SortCounterClockwise] to obtain a drawable
// polygon.
//
// # Concurrency
//
// All functions are safe for concurrent use. They never retain or mutate
// their input slices.
//
// [r2.Vec]: https://pkg.go.dev/gonum.org/v1/gonum/spatial/r2#Vec
package geom
