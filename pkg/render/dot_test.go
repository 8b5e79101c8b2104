package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/foldergraph/pkg/errors"
	"github.com/matzehuels/foldergraph/pkg/geom"
)

func snapshot() ([]Node, []Link) {
	nodes := []Node{
		{ID: "top.md", Pos: geom.Point{X: 0, Y: 0}},
		{ID: "a/x.md", Pos: geom.Point{X: 10, Y: 20}, Group: "a"},
		{ID: "a/y.md", Pos: geom.Point{X: 30, Y: 20}, Group: "a", Pinned: true},
		{ID: "b/z.md", Pos: geom.Point{X: -40, Y: 5}, Group: "b"},
	}
	links := []Link{{From: "top.md", To: "a/x.md"}}
	return nodes, links
}

func TestToDOT(t *testing.T) {
	nodes, links := snapshot()
	dot := ToDOT(nodes, links, DOTOptions{Labels: true})

	for _, want := range []string{
		"graph G {",
		"layout=neato;",
		`subgraph "cluster_a" {`,
		`subgraph "cluster_b" {`,
		`fillcolor="#5164974d"`,
		`"a/x.md" [pos="10.00,-20.00!", label="a/x.md"];`,
		`"a/y.md" [pos="30.00,-20.00!", label="a/y.md", color="#c0392b"];`,
		`"top.md" -- "a/x.md";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in\n%s", want, dot)
		}
	}
	if strings.Count(dot, "subgraph") != 2 {
		t.Errorf("ToDOT() has %d subgraphs, want 2", strings.Count(dot, "subgraph"))
	}
	// top level node sits outside every cluster
	if i := strings.Index(dot, `"top.md" [`); i > strings.Index(dot, "subgraph") {
		t.Error("ToDOT() placed the root level node after the clusters")
	}
}

func TestToDOTPoints(t *testing.T) {
	nodes, _ := snapshot()
	dot := ToDOT(nodes, nil, DOTOptions{})
	if !strings.Contains(dot, "shape=point") {
		t.Error("ToDOT() without labels should draw points")
	}
	if strings.Contains(dot, "label=\"a/x.md\"") {
		t.Error("ToDOT() without labels wrote node labels")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="10 20 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderDOTSVG(t *testing.T) {
	nodes, links := snapshot()
	svg, err := RenderDOTSVG(context.Background(), ToDOT(nodes, links, DOTOptions{Labels: true}))
	if err != nil {
		t.Fatalf("RenderDOTSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderDOTSVG() output missing <svg> tag")
	}
}

func TestRenderDOTSVG_InvalidDOT(t *testing.T) {
	_, err := RenderDOTSVG(context.Background(), `not valid DOT {{{`)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("RenderDOTSVG() error = %v, want INVALID_FORMAT", err)
	}
}
