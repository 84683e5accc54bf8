package geometry

import "math"

// Point represents a position in a 2D coordinate space
type Point struct {
	X, Y float64
}

// NewPoint creates a new 2D point
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points
func (p Point) Add(other Point) Point {
	return Point{
		X: p.X + other.X,
		Y: p.Y + other.Y,
	}
}

// Sub returns the difference between two points
func (p Point) Sub(other Point) Point {
	return Point{
		X: p.X - other.X,
		Y: p.Y - other.Y,
	}
}

// Mul multiplies the point by a scalar
func (p Point) Mul(scalar float64) Point {
	return Point{
		X: p.X * scalar,
		Y: p.Y * scalar,
	}
}

// Div divides the point by a scalar
func (p Point) Div(scalar float64) Point {
	return Point{
		X: p.X / scalar,
		Y: p.Y / scalar,
	}
}

// Length returns the distance of the point from the origin
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the distance between two points
func (p Point) Distance(other Point) float64 {
	return math.Sqrt(SqrDist(p, other))
}

// IsFinite reports whether both coordinates are finite numbers
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// SqrDist returns the squared euclidean distance between two points.
// Hit-testing compares against squared margins so no square root is needed.
func SqrDist(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// MinIndex returns the index of the smallest value, or -1 for an empty slice.
// Ties resolve to the first occurrence.
func MinIndex(values []float64) int {
	if len(values) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[best] {
			best = i
		}
	}
	return best
}

// Interp linearly interpolates between a and b
func Interp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// InterpPoint linearly interpolates between two points
func InterpPoint(a, b Point, t float64) Point {
	return Point{
		X: Interp(a.X, b.X, t),
		Y: Interp(a.Y, b.Y, t),
	}
}

// ClonePoints returns a copy of the given points
func ClonePoints(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}
