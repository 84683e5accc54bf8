package geometry

import "math"

// CirclePoints approximates a circle with a closed polygon of the given segment count.
// The first vertex lies at angle zero and vertices advance counter-clockwise.
func CirclePoints(center Point, radius float64, segments int) []Point {
	if segments < 3 {
		segments = 3
	}
	points := make([]Point, segments)
	for i := range points {
		angle := float64(i) / float64(segments) * 2 * math.Pi
		points[i] = Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	return points
}

// CrosshairPoints returns the two arm segments of a crosshair as
// [right, left, down, up] endpoints around center
func CrosshairPoints(center Point, size float64) [4]Point {
	return [4]Point{
		{X: center.X + size, Y: center.Y},
		{X: center.X - size, Y: center.Y},
		{X: center.X, Y: center.Y + size},
		{X: center.X, Y: center.Y - size},
	}
}
