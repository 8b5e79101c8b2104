package render

import (
	"fmt"
	"slices"

	"github.com/matzehuels/foldergraph/pkg/geom"
)

// Fill describes how a shape is painted.
type Fill struct {
	Color  uint32  // 0xRRGGBB
	Alpha  float64 // fill opacity
	Stroke float64 // outline width, 0 for none
}

// DefaultFill is the puddle style of the folder view.
var DefaultFill = Fill{Color: 0x516497, Alpha: 0.3}

// Hex returns the colour as #rrggbb.
func (f Fill) Hex() string {
	return fmt.Sprintf("#%06x", f.Color&0xFFFFFF)
}

// Canvas receives the enclosure geometry of one frame. Shapes are given in
// world coordinates; the transform set last applies to all of them.
type Canvas interface {
	Clear()
	SetTransform(Viewport)
	Circle(group string, center geom.Point, radius float64, fill Fill)
	Polygon(group string, points []geom.Point, fill Fill)
}

// ShapeKind distinguishes the recorded shapes.
type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapePolygon
)

// Shape is one drawn enclosure.
type Shape struct {
	Kind   ShapeKind
	Group  string
	Center geom.Point // circles
	Radius float64    // circles
	Points []geom.Point
	Fill   Fill
}

// Frame is a Canvas that records what was drawn.
type Frame struct {
	Transform Viewport
	Shapes    []Shape
}

// NewFrame returns an empty frame with the identity transform.
func NewFrame() *Frame {
	return &Frame{Transform: Identity}
}

// Clear drops all shapes. The transform is kept.
func (f *Frame) Clear() { f.Shapes = f.Shapes[:0] }

// SetTransform sets the viewport for the frame.
func (f *Frame) SetTransform(v Viewport) { f.Transform = v }

// Circle records a circular enclosure.
func (f *Frame) Circle(group string, center geom.Point, radius float64, fill Fill) {
	f.Shapes = append(f.Shapes, Shape{Kind: ShapeCircle, Group: group, Center: center, Radius: radius, Fill: fill})
}

// Polygon records a polygonal enclosure.
func (f *Frame) Polygon(group string, points []geom.Point, fill Fill) {
	f.Shapes = append(f.Shapes, Shape{Kind: ShapePolygon, Group: group, Points: slices.Clone(points), Fill: fill})
}

// Circles returns the recorded circles.
func (f *Frame) Circles() []Shape {
	var out []Shape
	for _, s := range f.Shapes {
		if s.Kind == ShapeCircle {
			out = append(out, s)
		}
	}
	return out
}

var _ Canvas = (*Frame)(nil)
