package calibration

import (
	"math"

	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/homography"
	"github.com/philipparndt/gocalib/pkg/units"
)

// NudgeStepsPerUnit is the number of single arrow steps per inch. The step is
// normalised by density/96, so one step is 1/40 inch in every unit, including cm
// and mm, before scaling by the mat size relative to 24x18.
const NudgeStepsPerUnit = 40.0

// PerspectiveOffset converts a nudge vector in arrow steps into the screen
// displacement of corner index under the perspective homography. The corner moves
// by a constant amount in rectangle space, so the screen delta depends on where
// the corner sits in the warped grid.
func PerspectiveOffset(perspective geometry.Matrix, index int, vector geometry.Point, width, height, density float64) geometry.Point {
	if index < 0 || index >= MaxPoints {
		return geometry.Point{}
	}

	start, end := nudgeSegment(index, vector, width, height, density)
	t := geometry.TransformPoints([]geometry.Point{start, end}, perspective)
	return t[1].Sub(t[0])
}

// nudgeSegment returns the pre-perspective start and end of a nudge
func nudgeSegment(index int, vector geometry.Point, width, height, density float64) (geometry.Point, geometry.Point) {
	stepsScaled := NudgeStepsPerUnit * (density / units.PointsPerInch)
	factor := math.Min(height/18, width/24) * density / stepsScaled

	start := homography.Rectangle(width, height, density)[index]
	return start, start.Add(vector.Mul(factor))
}
