package draw

import (
	"image/color"

	"github.com/philipparndt/gocalib/pkg/geometry"
)

// MatrixTarget maps every path coordinate through a projective matrix before
// passing it on. Arcs are flattened first since they do not stay circular.
// Translate applies before the matrix.
type MatrixTarget struct {
	next   Target
	m      geometry.Matrix
	offset geometry.Point
}

// NewMatrixTarget wraps t so that path coordinates are transformed by m
func NewMatrixTarget(t Target, m geometry.Matrix) *MatrixTarget {
	return &MatrixTarget{next: t, m: m}
}

func (t *MatrixTarget) point(x, y float64) geometry.Point {
	return geometry.TransformPoint(geometry.Point{X: x, Y: y}.Add(t.offset), t.m)
}

func (t *MatrixTarget) MoveTo(x, y float64) {
	p := t.point(x, y)
	t.next.MoveTo(p.X, p.Y)
}

func (t *MatrixTarget) LineTo(x, y float64) {
	p := t.point(x, y)
	t.next.LineTo(p.X, p.Y)
}

func (t *MatrixTarget) Arc(x, y, radius, startAngle, endAngle float64) {
	for _, p := range arcPoints(x, y, radius, startAngle, endAngle) {
		t.LineTo(p.X, p.Y)
	}
}

func (t *MatrixTarget) BeginPath()                   { t.next.BeginPath() }
func (t *MatrixTarget) ClosePath()                   { t.next.ClosePath() }
func (t *MatrixTarget) Fill()                        { t.next.Fill() }
func (t *MatrixTarget) Stroke()                      { t.next.Stroke() }
func (t *MatrixTarget) SetLineWidth(width float64)   { t.next.SetLineWidth(width) }
func (t *MatrixTarget) SetLineDash(dash []float64)   { t.next.SetLineDash(dash) }
func (t *MatrixTarget) SetStrokeColor(c color.Color) { t.next.SetStrokeColor(c) }
func (t *MatrixTarget) SetFillColor(c color.Color)   { t.next.SetFillColor(c) }

func (t *MatrixTarget) Translate(dx, dy float64) {
	t.offset = t.offset.Add(geometry.Point{X: dx, Y: dy})
}
