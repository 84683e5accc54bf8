package homography

import (
	"fmt"

	"github.com/philipparndt/gocalib/pkg/geometry"
)

// Rectangle returns the corners of a width × height rectangle scaled by density,
// in role order: top-left, top-right, bottom-right, bottom-left
func Rectangle(width, height, density float64) [4]geometry.Point {
	w := width * density
	h := height * density
	return [4]geometry.Point{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: w, Y: h},
		{X: 0, Y: h},
	}
}

// RectToQuad solves the homography mapping the scaled rectangle onto four screen points
func RectToQuad(points []geometry.Point, width, height, density float64) (geometry.Matrix, error) {
	if len(points) != 4 {
		return geometry.Matrix{}, fmt.Errorf("need exactly 4 points, got %d", len(points))
	}
	var dst [4]geometry.Point
	copy(dst[:], points)
	return Solve(Rectangle(width, height, density), dst)
}
