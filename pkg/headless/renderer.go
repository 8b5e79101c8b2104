package headless

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/foldergraph/pkg/cluster"
	"github.com/matzehuels/foldergraph/pkg/config"
	"github.com/matzehuels/foldergraph/pkg/errors"
	"github.com/matzehuels/foldergraph/pkg/geom"
	"github.com/matzehuels/foldergraph/pkg/render"
	"github.com/matzehuels/foldergraph/pkg/session"
	"github.com/matzehuels/foldergraph/pkg/sim"
)

// Node is the renderer's record of one graph node. Its position is the
// local copy drawn this frame; the simulation holds the authoritative one.
type Node struct {
	id  string
	pos geom.Point
}

// ID returns the vault path of the node.
func (n *Node) ID() string { return n.id }

// Position returns the local position.
func (n *Node) Position() geom.Point { return n.pos }

// SetPosition overwrites the local position.
func (n *Node) SetPosition(p geom.Point) { n.pos = p }

// Option configures a [Renderer].
type Option func(*Renderer)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithSender routes force messages to out instead of applying them in
// process. The caller then drives the simulation, usually with
// [sim.Simulation.Run] on the other end of a channel, and [Renderer.Frame]
// no longer steps it.
func WithSender(out sim.Sender) Option {
	return func(r *Renderer) { r.out = out }
}

// WithLocal renders a local graph view, which has its own folder toggle.
func WithLocal() Option {
	return func(r *Renderer) { r.local = true }
}

// WithContext sets the context handed to the session's hooks.
func WithContext(ctx context.Context) Option {
	return func(r *Renderer) { r.ctx = ctx }
}

// Renderer is a headless graph view.
type Renderer struct {
	ctx    context.Context
	logger *log.Logger
	cfg    config.Config
	index  session.Lookuper
	local  bool

	world *sim.Simulation
	queue *sim.Queue // in-process delivery, nil with WithSender
	out   sim.Sender

	nodes  []*Node
	byID   map[string]*Node
	links  []render.Link
	drag   *Node
	camera render.Camera
	frame  *render.Frame
	sess   *session.Session
	frames int
}

// New builds a renderer for g. Nodes start on a phyllotaxis spiral. When
// folders are enabled for the view, a session is built right away from the
// current contents of index.
func New(g *Graph, index session.Lookuper, cfg config.Config, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		ctx:    context.Background(),
		logger: log.New(io.Discard),
		cfg:    cfg,
		index:  index,
		world:  sim.New(cfg.Simulation.Params()),
		byID:   make(map[string]*Node, len(g.Nodes)),
		links:  g.Links,
		camera: render.Camera{Scale: 1, TargetScale: 1},
		frame:  render.NewFrame(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.out == nil {
		r.queue = &sim.Queue{}
		r.out = r.queue
	}

	for i, id := range g.Nodes {
		p := sim.Phyllotaxis(i)
		if err := r.world.AddNode(id, p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "add node")
		}
		n := &Node{id: id, pos: p}
		r.nodes = append(r.nodes, n)
		r.byID[id] = n
	}
	for _, l := range g.Links {
		if err := r.world.AddLink(l.From, l.To); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "add link")
		}
	}

	if cfg.Render.Enabled(r.local) {
		if err := r.open(); err != nil {
			return nil, err
		}
	}
	r.logger.Debug("renderer ready", "nodes", len(r.nodes), "links", len(r.links), "folders", r.sess != nil)
	return r, nil
}

func (r *Renderer) open() error {
	colors, err := r.cfg.Render.ColorMap()
	if err != nil {
		return err
	}
	opts := []session.Option{
		session.WithLogger(r.logger),
		session.WithContext(r.ctx),
		session.WithSender(r.out),
		session.WithCanvas(r.frame),
		session.WithClusterOptions(r.cfg.Forces.ClusterOptions()),
		session.WithColors(colors),
	}
	if r.cfg.Render.Polygons {
		opts = append(opts, session.WithPolygons())
	}
	r.sess = session.Build(r, r.index, opts...)
	return nil
}

// Nodes implements [session.Host].
func (r *Renderer) Nodes() []cluster.Node {
	out := make([]cluster.Node, len(r.nodes))
	for i, n := range r.nodes {
		out[i] = n
	}
	return out
}

// DragNode implements [session.Host].
func (r *Renderer) DragNode() cluster.Node {
	if r.drag == nil {
		return nil
	}
	return r.drag
}

// Camera implements [session.Host].
func (r *Renderer) Camera() render.Camera { return r.camera }

// SetCamera replaces the camera used from the next frame on.
func (r *Renderer) SetCamera(c render.Camera) { r.camera = c }

// SetDrag marks id as held by the user. An empty id releases the drag.
func (r *Renderer) SetDrag(id string) error {
	if id == "" {
		r.drag = nil
		return nil
	}
	n, ok := r.byID[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q", id)
	}
	r.drag = n
	return nil
}

// SetShowFolders toggles the puddles. Turning them off closes the session;
// turning them on builds a new one from the current index.
func (r *Renderer) SetShowFolders(on bool) error {
	switch {
	case on && r.sess == nil:
		return r.open()
	case !on && r.sess != nil:
		r.sess.Close()
		r.sess = nil
		r.frame.Clear()
		r.deliver()
	}
	return nil
}

// Session returns the folder session, or nil while folders are hidden.
func (r *Renderer) Session() *session.Session { return r.sess }

// Simulation returns the reference simulation behind the view.
func (r *Renderer) Simulation() *sim.Simulation { return r.world }

// Canvas returns the frame the puddles are drawn into.
func (r *Renderer) Canvas() *render.Frame { return r.frame }

// Frames returns how many frames were rendered.
func (r *Renderer) Frames() int { return r.frames }

// Links returns the graph links.
func (r *Renderer) Links() []render.Link { return r.links }

// Frame renders one frame: deliver queued requests and step the simulation
// (in-process mode only), copy the simulated positions onto the nodes, then
// tick the folder session.
func (r *Renderer) Frame() session.FrameStats {
	if r.queue != nil {
		r.deliver()
		r.world.Step()
	}
	for _, st := range r.world.Snapshot() {
		if n, ok := r.byID[st.ID]; ok {
			n.pos = st.Position
		}
	}
	r.frames++
	if r.sess == nil {
		return session.FrameStats{}
	}
	return r.sess.Tick()
}

func (r *Renderer) deliver() {
	if r.queue == nil {
		return
	}
	for _, m := range r.queue.Drain() {
		r.world.Apply(m)
	}
}

// FrameInfo is passed to the callback of [Renderer.Run].
type FrameInfo struct {
	Frame    int
	Stats    session.FrameStats
	Duration time.Duration
}

// Run renders frames every interval until ctx is done or, when frames is
// positive, that many frames were drawn. onFrame may be nil.
func (r *Renderer) Run(ctx context.Context, frames int, interval time.Duration, onFrame func(FrameInfo)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for frames <= 0 || r.frames < frames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			stats := r.Frame()
			if onFrame != nil {
				onFrame(FrameInfo{Frame: r.frames, Stats: stats, Duration: time.Since(start)})
			}
		}
	}
	return nil
}

// Snapshot returns the nodes as drawn in the last frame, with their folder
// and whether the simulation currently pins them.
func (r *Renderer) Snapshot() []render.Node {
	pinned := make(map[string]bool)
	for _, st := range r.world.Snapshot() {
		if st.Pinned {
			pinned[st.ID] = true
		}
	}
	out := make([]render.Node, len(r.nodes))
	for i, n := range r.nodes {
		group, _ := r.index.Lookup(n.id)
		out[i] = render.Node{ID: n.id, Pos: n.pos, Group: group, Pinned: pinned[n.id]}
	}
	return out
}

// SVG renders the last frame.
func (r *Renderer) SVG(opts ...render.SVGOption) []byte {
	opts = append([]render.SVGOption{render.WithLinks(r.links)}, opts...)
	if r.cfg.Render.Labels {
		opts = append(opts, render.WithLabels())
	}
	if r.cfg.Render.Polygons {
		opts = append(opts, render.WithPolygons())
	}
	return render.RenderSVG(r.frame, r.Snapshot(), opts...)
}

// DOT renders the last frame as a pinned Graphviz graph.
func (r *Renderer) DOT() string {
	return render.ToDOT(r.Snapshot(), r.links, render.DOTOptions{Labels: r.cfg.Render.Labels})
}

// Close ends the folder session. Pending requests are still delivered in
// in-process mode.
func (r *Renderer) Close() {
	if r.sess != nil {
		r.sess.Close()
	}
	r.deliver()
}

var _ session.Host = (*Renderer)(nil)
