// Package cluster implements a folder visualization: the enclosure drawn
// around the graph nodes of one folder and the force field that keeps
// foreign nodes out of it.
//
// # Geometry
//
// Each frame, [Cluster.Update] recomputes, in order:
//
//  1. the convex hull of the member node positions ([geom.ConvexHull])
//  2. the center, as the midpoint of the hull's bounding box
//  3. the radius, as the largest center-to-hull distance plus a padding
//
// The center is deliberately the bounding-box midpoint, not the centroid or
// the minimum enclosing circle. The resulting circle is what gets drawn.
//
// # Forces
//
// [Cluster.ApplyForce] pushes a non-member node radially away from the center
// while it is within radius + MarginMin. The push strength eases out
// quadratically from HullForceK at the center to zero at the boundary. Nodes
// being pushed are pinned in the external simulation through a [Forcer];
// once a pushed node leaves the zone it is released exactly once.
//
// Members of the cluster are never pushed by it.
//
// # Concurrency
//
// A Cluster is not safe for concurrent use. It is driven from a single
// render-tick callback.
package cluster
