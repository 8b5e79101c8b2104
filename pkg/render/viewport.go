package render

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/foldergraph/pkg/geom"
)

// Camera is the host renderer's view state for one frame.
type Camera struct {
	Pan         geom.Point // current pan offset
	PanVelocity geom.Point // keyboard pan velocity, per second
	Scale       float64
	TargetScale float64    // scale the zoom animation is heading to
	Panning     bool       // a mouse drag pan is in progress
	Mouse       geom.Point // current pointer position
	LastMouse   geom.Point // pointer position recorded by the view
}

// Viewport maps world coordinates to screen coordinates:
// screen = world*Scale + Offset.
type Viewport struct {
	Offset geom.Point
	Scale  float64
}

// Identity is the viewport that leaves coordinates unchanged.
var Identity = Viewport{Scale: 1}

// ViewportFromCamera returns the transform the host will apply this frame.
// The scale is blended 85/15 toward the target scale. While keyboard panning
// the offset is advanced by the velocity of one 60 Hz frame, scaled by 1000;
// while mouse panning it follows the pointer since it was last recorded.
func ViewportFromCamera(c Camera) Viewport {
	v := Viewport{Scale: 0.85*c.Scale + 0.15*c.TargetScale}
	if !c.Panning {
		v.Offset = r2.Add(c.Pan, r2.Scale(1000.0/60, c.PanVelocity))
	} else {
		v.Offset = r2.Add(c.Pan, r2.Sub(c.Mouse, c.LastMouse))
	}
	return v
}

// Apply maps a world point to the screen.
func (v Viewport) Apply(p geom.Point) geom.Point {
	return r2.Add(r2.Scale(v.Scale, p), v.Offset)
}

// ApplyLength maps a world distance to the screen.
func (v Viewport) ApplyLength(d float64) float64 {
	return d * v.Scale
}
