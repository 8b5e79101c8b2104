package cluster

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/foldergraph/pkg/geom"
)

// Defaults for [Options].
const (
	DefaultPadding    = 30.0  // visual margin added to the hull radius
	DefaultMarginMin  = 100.0 // extra reach of the repulsion beyond the radius
	DefaultHullForceK = 20.0  // peak push per frame, at the center
)

// DefaultColor is the puddle fill colour (RGB) used when none is set.
const DefaultColor = 0x516497

// Node is the view of a simulated graph node that a cluster needs.
// The host owns node lifetime; a cluster only reads and nudges positions.
type Node interface {
	ID() string
	Position() geom.Point
	SetPosition(geom.Point)
}

// Forcer receives the pin and release requests a cluster issues while it
// pushes nodes. Implementations forward them to the external simulation.
type Forcer interface {
	// Pin fixes node id at p in the simulation.
	Pin(id string, p geom.Point)
	// Unpin hands node id back to the native simulation forces.
	Unpin(id string)
}

// Options configures the enclosure and force constants of a cluster.
type Options struct {
	Padding    float64
	MarginMin  float64
	HullForceK float64
}

// DefaultOptions returns the standard enclosure and push constants.
func DefaultOptions() Options {
	return Options{
		Padding:    DefaultPadding,
		MarginMin:  DefaultMarginMin,
		HullForceK: DefaultHullForceK,
	}
}

// Cluster is the visualization of one folder.
type Cluster struct {
	group   string
	opts    Options
	forcer  Forcer
	color   uint32
	members []Node
	ids     map[string]struct{}
	forced  map[string]struct{}

	hull   []geom.Point
	center geom.Point
	radius float64
}

// New creates an empty cluster for group. A nil forcer discards pin and
// release requests.
func New(group string, forcer Forcer, opts Options) *Cluster {
	if forcer == nil {
		forcer = nopForcer{}
	}
	return &Cluster{
		group:  group,
		opts:   opts,
		forcer: forcer,
		color:  DefaultColor,
		ids:    make(map[string]struct{}),
		forced: make(map[string]struct{}),
	}
}

// Group returns the folder this cluster visualizes.
func (c *Cluster) Group() string { return c.group }

// Options returns the constants the cluster was created with.
func (c *Cluster) Options() Options { return c.opts }

// AddMember appends n to the members. Adding the same node ID twice is a
// no-op.
func (c *Cluster) AddMember(n Node) {
	if _, ok := c.ids[n.ID()]; ok {
		return
	}
	c.ids[n.ID()] = struct{}{}
	c.members = append(c.members, n)
}

// Members returns the member nodes in insertion order.
func (c *Cluster) Members() []Node { return slices.Clone(c.members) }

// IsMember reports whether the node with the given ID belongs to the cluster.
func (c *Cluster) IsMember(id string) bool {
	_, ok := c.ids[id]
	return ok
}

// SetColor sets the puddle fill colour as 0xRRGGBB.
func (c *Cluster) SetColor(rgb uint32) { c.color = rgb & 0xFFFFFF }

// Color returns the puddle fill colour as 0xRRGGBB.
func (c *Cluster) Color() uint32 { return c.color }

// Update recomputes the hull, center and radius from the current member
// positions.
func (c *Cluster) Update() {
	c.recomputeHull()
	c.recomputeCenter()
	c.recomputeRadius()
}

func (c *Cluster) recomputeHull() {
	points := make([]geom.Point, len(c.members))
	for i, n := range c.members {
		points[i] = n.Position()
	}
	c.hull = geom.ConvexHull(points)
}

// recomputeCenter uses the midpoint of the hull's bounding box. An empty hull
// leaves the center at the origin.
func (c *Cluster) recomputeCenter() {
	c.center = geom.BoxCenter(geom.BoundingBox(c.hull))
}

func (c *Cluster) recomputeRadius() {
	c.radius = 0
	for _, p := range c.hull {
		if r := geom.Dist(c.center, p) + c.opts.Padding; r > c.radius {
			c.radius = r
		}
	}
}

// Hull returns the hull points as of the last Update, unordered.
func (c *Cluster) Hull() []geom.Point { return slices.Clone(c.hull) }

// Center returns the enclosure center as of the last Update.
func (c *Cluster) Center() geom.Point { return c.center }

// Radius returns the enclosure radius as of the last Update.
func (c *Cluster) Radius() float64 { return c.radius }

// RepelRadius returns the distance from the center within which foreign
// nodes are pushed.
func (c *Cluster) RepelRadius() float64 { return c.radius + c.opts.MarginMin }

// Circle returns the drawable enclosure.
func (c *Cluster) Circle() (center geom.Point, radius float64) {
	return c.center, c.radius
}

// Polygon returns the hull sorted counter-clockwise around its centroid, for
// diagnostic rendering. It returns nil when the hull has fewer than three
// points.
func (c *Cluster) Polygon() []geom.Point {
	if len(c.hull) < 3 {
		return nil
	}
	return geom.SortCounterClockwise(c.hull)
}

// Forced reports whether the cluster is currently pushing node id.
func (c *Cluster) Forced(id string) bool {
	_, ok := c.forced[id]
	return ok
}

// ForcedCount returns how many nodes the cluster is currently pushing.
func (c *Cluster) ForcedCount() int { return len(c.forced) }

// easeOutQuad scales value by 1 - t².
func easeOutQuad(value, t float64) float64 {
	return value * (1 - t*t)
}

// Strength returns the push applied to a node at distance dist from the
// center.
func (c *Cluster) Strength(dist float64) float64 {
	repel := c.RepelRadius()
	if repel <= 0 || dist > repel {
		return 0
	}
	return easeOutQuad(c.opts.HullForceK, dist/repel)
}

// Result describes what ApplyForce did to a node.
type Result int

const (
	// Untouched means the node was neither in range nor previously pushed.
	Untouched Result = iota
	// Pushed means the node was displaced and pinned.
	Pushed
	// Released means a previously pushed node was handed back.
	Released
)

// String returns the lowercase name of the result.
func (r Result) String() string {
	switch r {
	case Pushed:
		return "pushed"
	case Released:
		return "released"
	default:
		return "untouched"
	}
}

// ApplyForce pushes n out of the enclosure if it is a foreign node within
// [Cluster.RepelRadius], or releases it if it was pushed before and has left
// the zone.
//
// A node sitting exactly on the center has no defined direction; it is
// pushed along +X.
func (c *Cluster) ApplyForce(n Node) Result {
	id := n.ID()
	repel := c.RepelRadius()
	pos := n.Position()
	d := r2.Sub(pos, c.center)
	dist := r2.Norm(d)

	if !c.IsMember(id) && repel > 0 && dist <= repel {
		k := easeOutQuad(c.opts.HullForceK, dist/repel)
		dir := geom.Point{X: 1}
		if dist > 0 {
			dir = r2.Scale(1/dist, d)
		}
		pos = r2.Add(pos, r2.Scale(k, dir))
		n.SetPosition(pos)
		c.forced[id] = struct{}{}
		c.forcer.Pin(id, pos)
		return Pushed
	}

	if _, ok := c.forced[id]; ok {
		delete(c.forced, id)
		c.forcer.Unpin(id)
		return Released
	}
	return Untouched
}

// ReleaseAll hands every pushed node back to the simulation. It is used when
// a view is torn down.
func (c *Cluster) ReleaseAll() {
	ids := make([]string, 0, len(c.forced))
	for id := range c.forced {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		delete(c.forced, id)
		c.forcer.Unpin(id)
	}
}

type nopForcer struct{}

func (nopForcer) Pin(string, geom.Point) {}
func (nopForcer) Unpin(string)           {}
