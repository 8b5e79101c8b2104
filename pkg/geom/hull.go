package geom

import (
	"math"
	"slices"
)

// ConvexHull returns the unique points of the convex hull of points, computed
// with the QuickHull algorithm.
//
// With fewer than three points no hull is computed and a copy of the input is
// returned as-is (duplicates included). Otherwise the extremes in x (first
// occurrence wins on ties) split the set, and each half-plane is refined
// recursively by [quickHull]. The result lists each hull vertex once, in the
// order it was discovered; it is not sorted for drawing.
//
// Collinear points on a hull edge are not reported. The hull depends only on
// the point set: permuting a generic-position input yields the same set.
func ConvexHull(points []Point) []Point {
	if len(points) < 3 {
		return slices.Clone(points)
	}

	minX, maxX := 0, 0
	for i := 1; i < len(points); i++ {
		if points[i].X < points[minX].X {
			minX = i
		}
		if points[i].X > points[maxX].X {
			maxX = i
		}
	}

	h := &hullSet{seen: make(map[Point]struct{})}
	quickHull(points, points[minX], points[maxX], 1, h)
	quickHull(points, points[minX], points[maxX], -1, h)
	return h.points
}

// quickHull adds the hull vertices of points lying on side of the line p1→p2.
// When no point lies strictly on that side, p1 and p2 are hull vertices.
func quickHull(points []Point, p1, p2 Point, side int, h *hullSet) {
	idx := -1
	maxDist := 0.0
	for i, p := range points {
		if Side(p1, p2, p) != side {
			continue
		}
		if d := LineDistance(p1, p2, p); d > maxDist {
			idx, maxDist = i, d
		}
	}

	if idx == -1 {
		h.add(p1)
		h.add(p2)
		return
	}

	q := points[idx]
	quickHull(points, q, p1, -Side(q, p1, p2), h)
	quickHull(points, q, p2, -Side(q, p2, p1), h)
}

// hullSet collects unique points in insertion order.
type hullSet struct {
	seen   map[Point]struct{}
	points []Point
}

func (h *hullSet) add(p Point) {
	if _, ok := h.seen[p]; ok {
		return
	}
	h.seen[p] = struct{}{}
	h.points = append(h.points, p)
}

// SortCounterClockwise returns a copy of points ordered by angle around their
// centroid, starting at -π. It turns an unordered hull into a polygon.
func SortCounterClockwise(points []Point) []Point {
	sorted := slices.Clone(points)
	c := Centroid(sorted)
	slices.SortStableFunc(sorted, func(a, b Point) int {
		angleA := math.Atan2(a.Y-c.Y, a.X-c.X)
		angleB := math.Atan2(b.Y-c.Y, b.X-c.X)
		switch {
		case angleA < angleB:
			return -1
		case angleA > angleB:
			return 1
		default:
			return 0
		}
	})
	return sorted
}

// Contains reports whether p lies inside or on the boundary of the convex
// polygon (vertices in counter-clockwise or clockwise order). A tolerance
// eps absorbs floating point error on the edges.
func Contains(polygon []Point, p Point, eps float64) bool {
	n := len(polygon)
	switch n {
	case 0:
		return false
	case 1:
		return Dist(polygon[0], p) <= eps
	}
	sign := 0
	for i := range n {
		a, b := polygon[i], polygon[(i+1)%n]
		v := cross(a, b, p)
		if math.Abs(v) <= eps*math.Max(1, Dist(a, b)) {
			continue
		}
		s := 1
		if v < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return true
}
