package geometry

import (
	"errors"
	"math"
)

// ErrSingularMatrix is returned when a matrix has no inverse
var ErrSingularMatrix = errors.New("matrix is singular")

// singularEpsilon is the determinant magnitude below which a matrix is treated as singular
const singularEpsilon = 1e-12

// Matrix is a 3×3 projective matrix stored row-major.
// It is a value type: every operation returns a new matrix.
type Matrix [9]float64

// Identity returns the identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Mul returns m × other
func (m Matrix) Mul(other Matrix) Matrix {
	var out Matrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = m[r*3+0]*other[0*3+c] + m[r*3+1]*other[1*3+c] + m[r*3+2]*other[2*3+c]
		}
	}
	return out
}

// Det returns the determinant of the matrix
func (m Matrix) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Inverse returns the inverse of the matrix or ErrSingularMatrix
func (m Matrix) Inverse() (Matrix, error) {
	d := m.Det()
	if math.Abs(d) < singularEpsilon || math.IsNaN(d) {
		return Matrix{}, ErrSingularMatrix
	}
	invD := 1.0 / d
	return Matrix{
		(m[4]*m[8] - m[5]*m[7]) * invD,
		(m[2]*m[7] - m[1]*m[8]) * invD,
		(m[1]*m[5] - m[2]*m[4]) * invD,
		(m[5]*m[6] - m[3]*m[8]) * invD,
		(m[0]*m[8] - m[2]*m[6]) * invD,
		(m[2]*m[3] - m[0]*m[5]) * invD,
		(m[3]*m[7] - m[4]*m[6]) * invD,
		(m[1]*m[6] - m[0]*m[7]) * invD,
		(m[0]*m[4] - m[1]*m[3]) * invD,
	}, nil
}

// Normalize scales the matrix so that the bottom-right element is 1
func (m Matrix) Normalize() Matrix {
	if m[8] == 0 {
		return m
	}
	var out Matrix
	for i, v := range m {
		out[i] = v / m[8]
	}
	return out
}

// ApproxEqual reports whether every element differs by at most eps
func (m Matrix) ApproxEqual(other Matrix, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-other[i]) > eps {
			return false
		}
	}
	return true
}

// IsFinite reports whether every element is a finite number
func (m Matrix) IsFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
