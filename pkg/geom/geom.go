package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is an immutable pair of coordinates. Points have no identity and are
// compared by value.
type Point = r2.Vec

// Box is an axis-aligned bounding box.
type Box = r2.Box

// cross returns (p.y-p1.y)(p2.x-p1.x) - (p2.y-p1.y)(p.x-p1.x), the signed
// area spanned by p1→p2 and p1→p.
func cross(p1, p2, p Point) float64 {
	return r2.Cross(r2.Sub(p2, p1), r2.Sub(p, p1))
}

// Side reports on which side of the directed line p1→p2 the point p lies.
// It returns +1, -1, or 0 when p is collinear with the line.
func Side(p1, p2, p Point) int {
	switch v := cross(p1, p2, p); {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// LineDistance returns a value proportional to the distance between p and the
// line through p1 and p2. It is the magnitude of the cross product used by
// [Side] and is only meaningful for comparisons against the same line.
func LineDistance(p1, p2, p Point) float64 {
	return math.Abs(cross(p1, p2, p))
}

// Dist returns the Euclidean distance between p and q.
func Dist(p, q Point) float64 {
	return r2.Norm(r2.Sub(q, p))
}

// BoundingBox returns the axis-aligned bounding box of points.
// The zero Box is returned for an empty slice.
func BoundingBox(points []Point) Box {
	if len(points) == 0 {
		return Box{}
	}
	b := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min.X = min(b.Min.X, p.X)
		b.Min.Y = min(b.Min.Y, p.Y)
		b.Max.X = max(b.Max.X, p.X)
		b.Max.Y = max(b.Max.Y, p.Y)
	}
	return b
}

// BoxCenter returns the midpoint of b.
func BoxCenter(b Box) Point {
	return Point{
		X: b.Min.X + (b.Max.X-b.Min.X)/2,
		Y: b.Min.Y + (b.Max.Y-b.Min.Y)/2,
	}
}

// Centroid returns the arithmetic mean of points, or the origin when points
// is empty.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range points {
		c = r2.Add(c, p)
	}
	return r2.Scale(1/float64(len(points)), c)
}
