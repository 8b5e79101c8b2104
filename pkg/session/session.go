package session

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/foldergraph/pkg/cluster"
	"github.com/matzehuels/foldergraph/pkg/errors"
	"github.com/matzehuels/foldergraph/pkg/observability"
	"github.com/matzehuels/foldergraph/pkg/render"
	"github.com/matzehuels/foldergraph/pkg/sim"
)

// Host is the graph view a session decorates.
type Host interface {
	// Nodes returns the nodes currently shown.
	Nodes() []cluster.Node
	// DragNode returns the node held by the user, or nil.
	DragNode() cluster.Node
	// Camera returns the view state for the frame being drawn.
	Camera() render.Camera
}

// Lookuper resolves a node ID to the folder it belongs to.
type Lookuper interface {
	Lookup(path string) (group string, ok bool)
}

// Option configures a [Session].
type Option func(*Session)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithSender sets where pin and release requests go. Without a sender the
// clusters still push nodes locally but the simulation is never told.
func WithSender(out sim.Sender) Option {
	return func(s *Session) { s.out = out }
}

// WithCanvas sets the canvas enclosures are drawn on.
func WithCanvas(c render.Canvas) Option {
	return func(s *Session) { s.canvas = c }
}

// WithClusterOptions overrides the enclosure and force constants.
func WithClusterOptions(o cluster.Options) Option {
	return func(s *Session) { s.clusterOpts = o }
}

// WithPolygons additionally draws each hull as a polygon.
func WithPolygons() Option {
	return func(s *Session) { s.polygons = true }
}

// WithColors sets per-folder fill colours as 0xRRGGBB.
func WithColors(colors map[string]uint32) Option {
	return func(s *Session) { s.colors = colors }
}

// WithChanged registers the redraw request issued after every pin and
// release.
func WithChanged(fn func()) Option {
	return func(s *Session) { s.changed = fn }
}

// WithContext sets the context handed to observability hooks.
func WithContext(ctx context.Context) Option {
	return func(s *Session) { s.ctx = ctx }
}

// WithID fixes the session ID instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session is the set of folder clusters of one graph view.
type Session struct {
	id          string
	ctx         context.Context
	host        Host
	logger      *log.Logger
	out         sim.Sender
	adapter     *sim.Adapter
	canvas      render.Canvas
	clusterOpts cluster.Options
	polygons    bool
	colors      map[string]uint32
	changed     func()

	clusters []*cluster.Cluster
	byGroup  map[string]*cluster.Cluster
	frames   int
	closed   bool
}

// Build creates the clusters for the nodes host shows right now, looking up
// each node's folder in index. Nodes without a folder stay unclustered.
func Build(host Host, index Lookuper, opts ...Option) *Session {
	s := &Session{
		ctx:         context.Background(),
		host:        host,
		logger:      log.New(io.Discard),
		clusterOpts: cluster.DefaultOptions(),
		byGroup:     make(map[string]*cluster.Cluster),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}

	var forcer cluster.Forcer
	if s.out != nil {
		s.adapter = sim.NewAdapter(s.id, s.out, sim.WithChanged(s.changed), sim.WithContext(s.ctx))
		forcer = s.adapter
	}

	for _, n := range host.Nodes() {
		group, ok := index.Lookup(n.ID())
		if !ok {
			continue
		}
		c, ok := s.byGroup[group]
		if !ok {
			c = cluster.New(group, forcer, s.clusterOpts)
			if rgb, ok := s.colors[group]; ok {
				c.SetColor(rgb)
			}
			s.byGroup[group] = c
			s.clusters = append(s.clusters, c)
		}
		c.AddMember(n)
	}

	s.logger.Debug("session built", "session", s.id, "clusters", len(s.clusters))
	return s
}

// ID returns the identifier stamped on this session's messages.
func (s *Session) ID() string { return s.id }

// Clusters returns the clusters in construction order.
func (s *Session) Clusters() []*cluster.Cluster {
	out := make([]*cluster.Cluster, len(s.clusters))
	copy(out, s.clusters)
	return out
}

// Cluster returns the cluster of group.
func (s *Session) Cluster(group string) (*cluster.Cluster, bool) {
	c, ok := s.byGroup[group]
	return c, ok
}

// Frames returns how many frames were ticked.
func (s *Session) Frames() int { return s.frames }

// Closed reports whether Close was called.
func (s *Session) Closed() bool { return s.closed }

// Forced returns the number of (cluster, node) pairs currently pushed.
func (s *Session) Forced() int {
	n := 0
	for _, c := range s.clusters {
		n += c.ForcedCount()
	}
	return n
}

// FrameStats summarizes one force pass.
type FrameStats struct {
	Pushed     int // pin requests issued
	Released   int // release requests issued
	Violations int // nodes released after being pinned in the same pass
	Faults     int // recovered panics, per cluster and node
}

// Tick runs one frame: enclosures are recomputed and drawn from the current
// member positions, then foreign nodes are pushed out of them. It does
// nothing once the session is closed.
func (s *Session) Tick() FrameStats {
	if s.closed {
		return FrameStats{}
	}
	start := time.Now()
	observability.Frame().OnFrameStart(s.ctx, s.id, len(s.clusters))

	faults := s.Update()
	stats := s.ApplyForces()
	stats.Faults += faults
	s.frames++

	observability.Frame().OnFrameComplete(s.ctx, s.id, len(s.clusters), s.Forced(), time.Since(start))
	return stats
}

// ApplyForces offers every node except the dragged one to every cluster, in
// cluster order. A later cluster may move a node an earlier one just moved.
func (s *Session) ApplyForces() FrameStats {
	var stats FrameStats
	if s.closed {
		return stats
	}

	var dragID string
	if d := s.host.DragNode(); d != nil {
		dragID = d.ID()
	}

	for _, n := range s.host.Nodes() {
		id := n.ID()
		if id == dragID {
			continue
		}
		pinned := false
		for _, c := range s.clusters {
			res, err := s.applyForce(c, n)
			if err != nil {
				stats.Faults++
				continue
			}
			switch res {
			case cluster.Pushed:
				pinned = true
				stats.Pushed++
			case cluster.Released:
				stats.Released++
				if pinned {
					stats.Violations++
					s.violation(id, c.Group())
				}
			}
		}
	}
	return stats
}

// violation reports a release that overrides an earlier pin of the same
// frame. The node ends up free in the simulation while another cluster still
// pushes it locally; the next frame pins it again.
func (s *Session) violation(id, group string) {
	err := errors.New(errors.ErrCodeInvariant, "%s released by %s after being pinned this frame", id, group)
	s.logger.Warn("pin protocol violation", "session", s.id, "node", id, "cluster", group, "err", err)
	observability.Force().OnInvariantViolation(s.ctx, s.id, id, err)
}

func (s *Session) applyForce(c *cluster.Cluster, n cluster.Node) (res cluster.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = s.fault(c, r, "apply force to %s", n.ID())
		}
	}()
	return c.ApplyForce(n), nil
}

// Update recomputes every cluster and draws the enclosures under the host's
// viewport transform. It returns the number of clusters that failed.
func (s *Session) Update() int {
	if s.closed {
		return 0
	}
	if s.canvas != nil {
		s.canvas.Clear()
		s.canvas.SetTransform(render.ViewportFromCamera(s.host.Camera()))
	}

	faults := 0
	for _, c := range s.clusters {
		if err := s.updateCluster(c); err != nil {
			faults++
			continue
		}
		s.draw(c)
	}
	return faults
}

func (s *Session) updateCluster(c *cluster.Cluster) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = s.fault(c, r, "update")
		}
	}()
	c.Update()
	return nil
}

func (s *Session) fault(c *cluster.Cluster, recovered any, format string, args ...any) error {
	err := errors.PanicError(recovered, format, args...)
	s.logger.Error("cluster fault", "session", s.id, "cluster", c.Group(), "err", err)
	observability.Force().OnClusterFault(s.ctx, s.id, c.Group(), err)
	return err
}

func (s *Session) draw(c *cluster.Cluster) {
	if s.canvas == nil {
		return
	}
	fill := render.Fill{Color: c.Color(), Alpha: render.DefaultFill.Alpha}
	center, radius := c.Circle()
	s.canvas.Circle(c.Group(), center, radius, fill)
	if s.polygons {
		if poly := c.Polygon(); poly != nil {
			fill.Stroke = 2
			s.canvas.Polygon(c.Group(), poly, fill)
		}
	}
}

// Close releases every pushed node and tells the simulation the session is
// over. Further calls to Tick do nothing. Close is idempotent.
func (s *Session) Close() {
	if s.closed {
		return
	}
	for _, c := range s.clusters {
		c.ReleaseAll()
	}
	if s.adapter != nil {
		s.adapter.Close()
	}
	s.closed = true
	s.logger.Debug("session closed", "session", s.id, "frames", s.frames)
}
