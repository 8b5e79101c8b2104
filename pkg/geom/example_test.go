package geom_test

import (
	"fmt"

	"github.com/matzehuels/foldergraph/pkg/geom"
)

func ExampleConvexHull() {
	points := []geom.Point{
		{X: 0, Y: 0},
		{X: 4, Y: 1},
		{X: 10, Y: 0},
		{X: 5, Y: 8},
	}
	hull := geom.SortCounterClockwise(geom.ConvexHull(points))
	for _, p := range hull {
		fmt.Printf("(%g, %g)\n", p.X, p.Y)
	}
	// Output:
	// (0, 0)
	// (10, 0)
	// (5, 8)
}
