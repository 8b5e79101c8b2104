package headless

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/matzehuels/foldergraph/pkg/config"
	"github.com/matzehuels/foldergraph/pkg/errors"
	"github.com/matzehuels/foldergraph/pkg/membership"
	"github.com/matzehuels/foldergraph/pkg/render"
	"github.com/matzehuels/foldergraph/pkg/session"
	"github.com/matzehuels/foldergraph/pkg/sim"
)

func testGraph() (*Graph, *membership.Index) {
	g := &Graph{
		Nodes: []string{"a/1.md", "a/2.md", "a/3.md", "x.md"},
		Links: []render.Link{{From: "a/1.md", To: "a/2.md"}},
	}
	idx := membership.New()
	for _, n := range g.Nodes[:3] {
		idx.RecordLeaf(membership.Leaf{Path: n, Parent: "a"})
	}
	idx.RecordLeaf(membership.Leaf{Path: "x.md", Parent: membership.RootPath})
	return g, idx
}

// quietConfig keeps the simulated nodes where they start, so only the
// folder forces move them.
func quietConfig() config.Config {
	cfg := config.Default()
	cfg.Simulation.Repulsion = 0
	cfg.Simulation.LinkStrength = 0
	cfg.Simulation.Gravity = 0
	return cfg
}

func TestRendererPushesForeignNode(t *testing.T) {
	g, idx := testGraph()
	r, err := New(g, idx, quietConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if r.Session() == nil || len(r.Session().Clusters()) != 1 {
		t.Fatalf("Session() = %v, want one cluster", r.Session())
	}

	if stats := r.Frame(); stats.Pushed == 0 {
		t.Errorf("first frame pushed nothing, want x.md pushed")
	}
	r.Frame()

	if !r.Simulation().Pinned("x.md") {
		t.Error("simulation does not pin x.md after two frames")
	}
	for _, n := range r.Snapshot() {
		if n.ID == "x.md" && !n.Pinned {
			t.Error("Snapshot() shows x.md unpinned")
		}
		if n.ID == "a/1.md" && n.Group != "a" {
			t.Errorf("Snapshot() group of a/1.md = %q, want a", n.Group)
		}
	}
	if len(r.Canvas().Circles()) != 1 {
		t.Errorf("circles = %d, want 1", len(r.Canvas().Circles()))
	}
	if r.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", r.Frames())
	}

	r.Close()
	if r.Simulation().Pinned("x.md") {
		t.Error("x.md still pinned after Close")
	}
}

func TestRendererFoldersHidden(t *testing.T) {
	g, idx := testGraph()

	cfg := quietConfig()
	cfg.Render.ShowFolders = false
	r, err := New(g, idx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if r.Session() != nil {
		t.Error("Session() built although folders are hidden")
	}
	if stats := r.Frame(); stats != (session.FrameStats{}) {
		t.Errorf("Frame() = %+v, want zero", stats)
	}
	if len(r.Canvas().Shapes) != 0 {
		t.Errorf("Canvas() has %d shapes, want 0", len(r.Canvas().Shapes))
	}

	// The local view has its own toggle.
	local, err := New(g, idx, cfg, WithLocal())
	if err != nil {
		t.Fatal(err)
	}
	if local.Session() == nil {
		t.Error("local view has no session although show_folders_local is on")
	}
}

func TestRendererToggleFolders(t *testing.T) {
	g, idx := testGraph()
	r, err := New(g, idx, quietConfig())
	if err != nil {
		t.Fatal(err)
	}
	r.Frame()
	r.Frame()
	first := r.Session().ID()

	if err := r.SetShowFolders(false); err != nil {
		t.Fatal(err)
	}
	if r.Session() != nil || r.Simulation().Pinned("x.md") {
		t.Error("hiding folders did not close the session and release x.md")
	}
	if !r.Simulation().Closed(first) {
		t.Error("simulation did not learn that the session ended")
	}

	if err := r.SetShowFolders(true); err != nil {
		t.Fatal(err)
	}
	if r.Session() == nil || r.Session().ID() == first {
		t.Error("showing folders again did not build a new session")
	}
}

func TestRendererDrag(t *testing.T) {
	g, idx := testGraph()
	r, err := New(g, idx, quietConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetDrag("x.md"); err != nil {
		t.Fatal(err)
	}
	if stats := r.Frame(); stats.Pushed != 0 {
		t.Errorf("Frame() pushed %d nodes while x.md is dragged, want 0", stats.Pushed)
	}
	if err := r.SetDrag("nope.md"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("SetDrag(nope.md) error = %v, want NOT_FOUND", err)
	}
	if err := r.SetDrag(""); err != nil || r.DragNode() != nil {
		t.Errorf("SetDrag(\"\") = %v, DragNode() = %v", err, r.DragNode())
	}
}

func TestRendererWithSender(t *testing.T) {
	g, idx := testGraph()
	var q sim.Queue
	r, err := New(g, idx, quietConfig(), WithSender(&q))
	if err != nil {
		t.Fatal(err)
	}
	r.Frame()
	if q.Len() == 0 {
		t.Error("no messages reached the external sender")
	}
	if r.Simulation().Steps() != 0 {
		t.Errorf("Steps() = %d, want 0 when the caller drives the simulation", r.Simulation().Steps())
	}
}

func TestRendererRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	g, idx := testGraph()
	r, err := New(g, idx, quietConfig())
	if err != nil {
		t.Fatal(err)
	}

	var seen []int
	err = r.Run(context.Background(), 3, time.Millisecond, func(fi FrameInfo) { seen = append(seen, fi.Frame) })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(seen) != 3 || seen[2] != 3 {
		t.Errorf("frames seen = %v, want [1 2 3]", seen)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx, 0, time.Millisecond, nil); err != context.Canceled {
		t.Errorf("Run(canceled) error = %v, want %v", err, context.Canceled)
	}
}

func TestRendererExports(t *testing.T) {
	g, idx := testGraph()
	cfg := quietConfig()
	cfg.Render.Labels = true
	r, err := New(g, idx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	r.Frame()

	svg := string(r.SVG())
	for _, want := range []string{`class="puddle" data-group="a"`, `>x.md</text>`, "<line"} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG() missing %q", want)
		}
	}
	dot := r.DOT()
	for _, want := range []string{`subgraph "cluster_a"`, `"a/1.md" -- "a/2.md";`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT() missing %q", want)
		}
	}
}
