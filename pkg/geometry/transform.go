package geometry

import (
	"errors"
	"math"
)

// ErrCoincidentPoints is returned when two points that must define a line are the same
var ErrCoincidentPoints = errors.New("points are coincident")

// coincidentEpsilon is the squared distance below which two points are treated as equal
const coincidentEpsilon = 1e-24

// TransformPoint applies a projective matrix to a point, including the perspective divide
func TransformPoint(p Point, m Matrix) Point {
	x := m[0]*p.X + m[1]*p.Y + m[2]
	y := m[3]*p.X + m[4]*p.Y + m[5]
	w := m[6]*p.X + m[7]*p.Y + m[8]
	return Point{X: x / w, Y: y / w}
}

// TransformPoints applies a projective matrix to every point.
// The input slice is left untouched.
func TransformPoints(points []Point, m Matrix) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = TransformPoint(p, m)
	}
	return out
}

// Translate builds a translation matrix
func Translate(vec Point) Matrix {
	return Matrix{
		1, 0, vec.X,
		0, 1, vec.Y,
		0, 0, 1,
	}
}

// Scale builds a scale matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{
		sx, 0, 0,
		0, sy, 0,
		0, 0, 1,
	}
}

// RotateMatrixDeg builds a rotation matrix about the origin
func RotateMatrixDeg(deg float64) Matrix {
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return Matrix{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// MirrorMatrix2Points composes m with the reflection across the line through p1 and p2.
// The reflection is applied after m. Coincident points do not define a line and
// yield ErrCoincidentPoints.
func MirrorMatrix2Points(m Matrix, p1, p2 Point) (Matrix, error) {
	d := p2.Sub(p1)
	lenSq := d.X*d.X + d.Y*d.Y
	if lenSq <= coincidentEpsilon {
		return Matrix{}, ErrCoincidentPoints
	}

	cos2 := (d.X*d.X - d.Y*d.Y) / lenSq
	sin2 := 2 * d.X * d.Y / lenSq
	reflect := Matrix{
		cos2, sin2, 0,
		sin2, -cos2, 0,
		0, 0, 1,
	}

	mirror := Translate(p1).Mul(reflect).Mul(Translate(p1.Mul(-1)))
	return mirror.Mul(m), nil
}

// ExtractTranslationMatrix returns a pure translation carrying the translation of m
func ExtractTranslationMatrix(m Matrix) Matrix {
	return Translate(Point{X: m[2], Y: m[5]})
}
