// Package homography computes the projective transform between two quadrilaterals.
package homography

import (
	"errors"
	"fmt"
	"math"

	"github.com/philipparndt/gocalib/pkg/geometry"
)

// ErrDegenerate is the sentinel wrapped by every DegenerateError
var ErrDegenerate = errors.New("degenerate quadrilateral")

// relativeEpsilon scales the degeneracy tolerance with the size of the quadrilateral
const relativeEpsilon = 1e-9

// DegenerateError describes why a set of corners cannot define a homography
type DegenerateError struct {
	Role    string // "source" or "destination"
	Reason  string // "coincident", "collinear" or "singular"
	Indices []int  // Offending corner indices
}

func (e *DegenerateError) Error() string {
	if len(e.Indices) == 0 {
		return fmt.Sprintf("%s: %s corners are %s", ErrDegenerate, e.Role, e.Reason)
	}
	return fmt.Sprintf("%s: %s corners %v are %s", ErrDegenerate, e.Role, e.Indices, e.Reason)
}

func (e *DegenerateError) Unwrap() error {
	return ErrDegenerate
}

// Solve computes M such that TransformPoint(src[i], M) equals dst[i] for all four corners.
//
// The eight unknowns h00..h21 (h22 = 1) follow from two equations per correspondence:
//
//	x' = (h00 X + h01 Y + h02) / (h20 X + h21 Y + 1)
//	y' = (h10 X + h11 Y + h12) / (h20 X + h21 Y + 1)
//
// solved by Gaussian elimination with partial pivoting.
func Solve(src, dst [4]geometry.Point) (geometry.Matrix, error) {
	if err := checkQuad("source", src); err != nil {
		return geometry.Matrix{}, err
	}
	if err := checkQuad("destination", dst); err != nil {
		return geometry.Matrix{}, err
	}

	var a [8][8]float64
	var b [8]float64
	for i := range 4 {
		X, Y := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i

		a[r] = [8]float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x}
		b[r] = x

		a[r+1] = [8]float64{0, 0, 0, X, Y, 1, -X * y, -Y * y}
		b[r+1] = y
	}

	h, ok := solve8x8(a, b)
	if !ok {
		return geometry.Matrix{}, &DegenerateError{Role: "source", Reason: "singular"}
	}

	m := geometry.Matrix{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}
	if !m.IsFinite() {
		return geometry.Matrix{}, &DegenerateError{Role: "source", Reason: "singular"}
	}
	return m, nil
}

// checkQuad rejects coincident corners and collinear corner triples
func checkQuad(role string, q [4]geometry.Point) error {
	for i, p := range q {
		if !p.IsFinite() {
			return &DegenerateError{Role: role, Reason: "not finite", Indices: []int{i}}
		}
	}

	scale := extent(q)
	if scale == 0 {
		return &DegenerateError{Role: role, Reason: "coincident", Indices: []int{0, 1, 2, 3}}
	}
	tol := relativeEpsilon * scale * scale

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if geometry.SqrDist(q[i], q[j]) <= tol {
				return &DegenerateError{Role: role, Reason: "coincident", Indices: []int{i, j}}
			}
		}
	}

	triples := [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
	for _, t := range triples {
		if math.Abs(cross(q[t[0]], q[t[1]], q[t[2]])) <= tol {
			return &DegenerateError{Role: role, Reason: "collinear", Indices: t[:]}
		}
	}
	return nil
}

// extent returns the larger side of the bounding box
func extent(q [4]geometry.Point) float64 {
	minX, maxX := q[0].X, q[0].X
	minY, maxY := q[0].Y, q[0].Y
	for _, p := range q[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return math.Max(maxX-minX, maxY-minY)
}

// cross returns twice the signed area of triangle abc
func cross(a, b, c geometry.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func solve8x8(a [8][8]float64, b [8]float64) ([8]float64, bool) {
	for col := range 8 {
		pivot := col
		maxAbs := math.Abs(a[col][col])
		for r := col + 1; r < 8; r++ {
			if v := math.Abs(a[r][col]); v > maxAbs {
				maxAbs = v
				pivot = r
			}
		}
		if maxAbs < 1e-15 {
			return [8]float64{}, false
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			b[col], b[pivot] = b[pivot], b[col]
		}

		div := a[col][col]
		for c := col; c < 8; c++ {
			a[col][c] /= div
		}
		b[col] /= div

		for r := range 8 {
			if r == col {
				continue
			}
			factor := a[r][col]
			if factor == 0 {
				continue
			}
			for c := col; c < 8; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}
	return b, true
}
