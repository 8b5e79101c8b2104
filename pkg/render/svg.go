package render

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"math"
	"slices"

	"github.com/matzehuels/foldergraph/pkg/geom"
)

// Node is a graph node as drawn in a snapshot.
type Node struct {
	ID     string
	Pos    geom.Point // world coordinates
	Group  string     // folder, empty for root level files
	Pinned bool       // currently pushed by an enclosure
}

// Link connects two nodes by ID.
type Link struct {
	From, To string
}

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	links      []Link
	labels     bool
	polygons   bool
	nodeRadius float64
	margin     float64
}

// WithLinks draws the given links between nodes.
func WithLinks(links []Link) SVGOption { return func(r *svgRenderer) { r.links = links } }

// WithLabels writes node IDs next to the nodes.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithPolygons draws recorded polygon shapes. They are skipped by default.
func WithPolygons() SVGOption { return func(r *svgRenderer) { r.polygons = true } }

// WithNodeRadius sets the screen radius of node dots.
func WithNodeRadius(rad float64) SVGOption { return func(r *svgRenderer) { r.nodeRadius = rad } }

// RenderSVG writes frame and nodes as an SVG document. Puddles are drawn
// first so nodes stay on top. All coordinates are mapped through the frame's
// transform and the view box is fitted to the result.
func RenderSVG(frame *Frame, nodes []Node, opts ...SVGOption) []byte {
	r := svgRenderer{nodeRadius: 4, margin: 20}
	for _, opt := range opts {
		opt(&r)
	}
	if frame == nil {
		frame = NewFrame()
	}
	v := frame.Transform

	sorted := slices.Clone(nodes)
	slices.SortFunc(sorted, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })

	minX, minY, maxX, maxY := r.bounds(frame, sorted)
	w, h := maxX-minX, maxY-minY

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		minX, minY, w, h, w, h)

	buf.WriteString(`  <g class="puddles">` + "\n")
	for _, s := range frame.Shapes {
		switch {
		case s.Kind == ShapeCircle:
			c := v.Apply(s.Center)
			fmt.Fprintf(&buf, `    <circle class="puddle" data-group="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.2f"%s/>`+"\n",
				html.EscapeString(s.Group), c.X, c.Y, v.ApplyLength(s.Radius), s.Fill.Hex(), s.Fill.Alpha, stroke(s.Fill))
		case s.Kind == ShapePolygon && r.polygons:
			var pts bytes.Buffer
			for i, p := range s.Points {
				if i > 0 {
					pts.WriteByte(' ')
				}
				q := v.Apply(p)
				fmt.Fprintf(&pts, "%.2f,%.2f", q.X, q.Y)
			}
			fmt.Fprintf(&buf, `    <polygon class="puddle-hull" data-group="%s" points="%s" fill="%s" fill-opacity="%.2f"%s/>`+"\n",
				html.EscapeString(s.Group), pts.String(), s.Fill.Hex(), s.Fill.Alpha, stroke(s.Fill))
		}
	}
	buf.WriteString("  </g>\n")

	if len(r.links) > 0 {
		pos := make(map[string]geom.Point, len(sorted))
		for _, n := range sorted {
			pos[n.ID] = v.Apply(n.Pos)
		}
		buf.WriteString(`  <g class="links" stroke="#999" stroke-width="1">` + "\n")
		for _, l := range r.links {
			a, okA := pos[l.From]
			b, okB := pos[l.To]
			if !okA || !okB {
				continue
			}
			fmt.Fprintf(&buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", a.X, a.Y, b.X, b.Y)
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range sorted {
		p := v.Apply(n.Pos)
		fill := "#444"
		if n.Pinned {
			fill = "#c0392b"
		}
		fmt.Fprintf(&buf, `    <circle class="node" id="node-%s" cx="%.2f" cy="%.2f" r="%.1f" fill="%s"/>`+"\n",
			html.EscapeString(n.ID), p.X, p.Y, r.nodeRadius, fill)
		if r.labels {
			fmt.Fprintf(&buf, `    <text x="%.2f" y="%.2f" font-size="10" font-family="sans-serif">%s</text>`+"\n",
				p.X+r.nodeRadius+2, p.Y+3, html.EscapeString(n.ID))
		}
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func stroke(f Fill) string {
	if f.Stroke <= 0 {
		return ""
	}
	return fmt.Sprintf(` stroke="%s" stroke-width="%.1f"`, f.Hex(), f.Stroke)
}

// bounds returns the screen space box of everything drawn, grown by the
// margin. An empty drawing yields a box of twice the margin around the
// origin.
func (r svgRenderer) bounds(frame *Frame, nodes []Node) (minX, minY, maxX, maxY float64) {
	v := frame.Transform
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	grow := func(p geom.Point, rad float64) {
		minX = math.Min(minX, p.X-rad)
		minY = math.Min(minY, p.Y-rad)
		maxX = math.Max(maxX, p.X+rad)
		maxY = math.Max(maxY, p.Y+rad)
	}
	for _, s := range frame.Shapes {
		switch s.Kind {
		case ShapeCircle:
			grow(v.Apply(s.Center), v.ApplyLength(s.Radius))
		case ShapePolygon:
			if r.polygons {
				for _, p := range s.Points {
					grow(v.Apply(p), 0)
				}
			}
		}
	}
	for _, n := range nodes {
		grow(v.Apply(n.Pos), r.nodeRadius)
	}
	if math.IsInf(minX, 1) {
		return -r.margin, -r.margin, r.margin, r.margin
	}
	return minX - r.margin, minY - r.margin, maxX + r.margin, maxY + r.margin
}
