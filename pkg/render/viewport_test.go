package render

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/matzehuels/foldergraph/pkg/geom"
)

func TestViewportFromCamera(t *testing.T) {
	tests := []struct {
		name   string
		camera Camera
		want   Viewport
	}{
		{
			name:   "at rest",
			camera: Camera{Pan: geom.Point{X: 10, Y: -5}, Scale: 1, TargetScale: 1},
			want:   Viewport{Offset: geom.Point{X: 10, Y: -5}, Scale: 1},
		},
		{
			name:   "zooming",
			camera: Camera{Scale: 1, TargetScale: 2},
			want:   Viewport{Scale: 1.15},
		},
		{
			name:   "keyboard panning",
			camera: Camera{Pan: geom.Point{X: 100}, PanVelocity: geom.Point{X: 6, Y: -3}, Scale: 1, TargetScale: 1},
			want:   Viewport{Offset: geom.Point{X: 200, Y: -50}, Scale: 1},
		},
		{
			name: "mouse panning",
			camera: Camera{
				Pan:         geom.Point{X: 100, Y: 100},
				PanVelocity: geom.Point{X: 60},
				Panning:     true,
				Mouse:       geom.Point{X: 50, Y: 40},
				LastMouse:   geom.Point{X: 20, Y: 60},
				Scale:       2,
				TargetScale: 2,
			},
			want: Viewport{Offset: geom.Point{X: 130, Y: 80}, Scale: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ViewportFromCamera(tt.camera)
			if !scalar.EqualWithinAbs(got.Scale, tt.want.Scale, 1e-9) {
				t.Errorf("Scale = %v, want %v", got.Scale, tt.want.Scale)
			}
			if !scalar.EqualWithinAbs(got.Offset.X, tt.want.Offset.X, 1e-9) ||
				!scalar.EqualWithinAbs(got.Offset.Y, tt.want.Offset.Y, 1e-9) {
				t.Errorf("Offset = %v, want %v", got.Offset, tt.want.Offset)
			}
		})
	}
}

func TestViewportApply(t *testing.T) {
	v := Viewport{Offset: geom.Point{X: 10, Y: 20}, Scale: 2}
	if got, want := v.Apply(geom.Point{X: 1, Y: 2}), (geom.Point{X: 12, Y: 24}); got != want {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
	if got := v.ApplyLength(5); got != 10 {
		t.Errorf("ApplyLength(5) = %v, want 10", got)
	}
	if got := Identity.Apply(geom.Point{X: 3, Y: 4}); got != (geom.Point{X: 3, Y: 4}) {
		t.Errorf("Identity.Apply() = %v, want unchanged", got)
	}
}
