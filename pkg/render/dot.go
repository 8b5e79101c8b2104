package render

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/foldergraph/pkg/errors"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Labels shows node IDs. When false nodes are drawn as points.
	Labels bool
	// Fill styles the folder clusters. The zero value uses DefaultFill.
	Fill Fill
}

// ToDOT converts a snapshot to Graphviz DOT with every node pinned at its
// position, so neato reproduces the simulated layout instead of computing
// its own. Nodes sharing a group are placed in one cluster subgraph; nodes
// without a group stay at the top level.
func ToDOT(nodes []Node, links []Link, opts DOTOptions) string {
	fill := opts.Fill
	if fill == (Fill{}) {
		fill = DefaultFill
	}

	sorted := slices.Clone(nodes)
	slices.SortFunc(sorted, func(a, b Node) int {
		if c := cmp.Compare(a.Group, b.Group); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Labels {
		buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10, width=0.2, fixedsize=false];\n")
	} else {
		buf.WriteString("  node [shape=point, width=0.1];\n")
	}
	buf.WriteString("\n")

	for i := 0; i < len(sorted); {
		group := sorted[i].Group
		j := i
		for j < len(sorted) && sorted[j].Group == group {
			j++
		}
		if group == "" {
			for _, n := range sorted[i:j] {
				writeDOTNode(&buf, "  ", n, opts.Labels)
			}
		} else {
			fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+group)
			fmt.Fprintf(&buf, "    label=%q;\n", group)
			fmt.Fprintf(&buf, "    style=filled;\n    color=%q;\n    fillcolor=%q;\n", fill.Hex(), rgba(fill))
			for _, n := range sorted[i:j] {
				writeDOTNode(&buf, "    ", n, opts.Labels)
			}
			buf.WriteString("  }\n")
		}
		i = j
	}

	buf.WriteString("\n")
	for _, l := range links {
		fmt.Fprintf(&buf, "  %q -- %q;\n", l.From, l.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeDOTNode flips Y since Graphviz points upward.
func writeDOTNode(buf *bytes.Buffer, indent string, n Node, labels bool) {
	attrs := fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.Pos.X, -n.Pos.Y)
	if labels {
		attrs += fmt.Sprintf(", label=%q", n.ID)
	}
	if n.Pinned {
		attrs += ", color=\"#c0392b\""
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, attrs)
}

func rgba(f Fill) string {
	a := int(f.Alpha*255 + 0.5)
	a = max(0, min(255, a))
	return fmt.Sprintf("%s%02x", f.Hex(), a)
}

// RenderDOTSVG renders a DOT graph to SVG using Graphviz.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderDOTPNG renders a DOT graph as PNG via SVG conversion.
func RenderDOTPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderDOTSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}

// RenderDOTPDF renders a DOT graph as PDF via SVG conversion.
func RenderDOTPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderDOTSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt based size with a unitless one so
// the snapshot scales like the documents from RenderSVG.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %.2f %.2f" width="%.0f" height="%.0f">`,
		match[1], match[2], w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
