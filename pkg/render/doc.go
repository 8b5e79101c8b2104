// Package render draws folder enclosures and exports graph snapshots.
//
// # Viewport
//
// Enclosures are computed in world coordinates and must follow the host's
// camera. [ViewportFromCamera] derives the transform the host is about to
// use for the current frame, easing the scale toward its target and
// anticipating keyboard or mouse panning, so puddles do not lag one frame
// behind the nodes.
//
// # Canvas
//
// A session draws through the [Canvas] interface. [Frame] is the in-memory
// implementation used by the headless renderer and by tests; it records the
// transform and every shape of one frame.
//
// # Output
//
// [RenderSVG] turns a frame plus node positions into an SVG document with
// the puddles behind the nodes. [ToDOT] and [RenderDOTSVG] produce a Graphviz
// snapshot with pinned positions and one cluster per folder. [ToPDF] and
// [ToPNG] convert any SVG using the external rsvg-convert tool:
//
//	svg := render.RenderSVG(frame, nodes)
//	png, err := render.ToPNG(svg, 2.0)
package render
