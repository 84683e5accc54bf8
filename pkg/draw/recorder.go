package draw

import (
	"image/color"

	"github.com/philipparndt/gocalib/pkg/geometry"
)

// Paint is one recorded Fill or Stroke call
type Paint struct {
	Fill     bool
	Subpaths [][]geometry.Point
	Closed   []bool
	Width    float64
	Dash     []float64
	Color    color.Color
}

// Recorder is a Target that records every paint operation
type Recorder struct {
	path   path
	width  float64
	dash   []float64
	stroke color.Color
	fill   color.Color

	Paints []Paint
}

// NewRecorder creates an empty recorder with canvas defaults
func NewRecorder() *Recorder {
	return &Recorder{width: 1, stroke: color.Black, fill: color.Black}
}

func (r *Recorder) BeginPath()          { r.path.reset() }
func (r *Recorder) MoveTo(x, y float64) { r.path.moveTo(geometry.Point{X: x, Y: y}) }
func (r *Recorder) LineTo(x, y float64) { r.path.lineTo(geometry.Point{X: x, Y: y}) }
func (r *Recorder) ClosePath()          { r.path.closePath() }

func (r *Recorder) Arc(x, y, radius, startAngle, endAngle float64) {
	r.path.arc(x, y, radius, startAngle, endAngle)
}

func (r *Recorder) SetLineWidth(width float64)   { r.width = width }
func (r *Recorder) SetStrokeColor(c color.Color) { r.stroke = c }
func (r *Recorder) SetFillColor(c color.Color)   { r.fill = c }

func (r *Recorder) SetLineDash(dash []float64) {
	r.dash = append([]float64(nil), dash...)
}

func (r *Recorder) Translate(dx, dy float64) {
	r.path.offset = r.path.offset.Add(geometry.Point{X: dx, Y: dy})
}

func (r *Recorder) Fill() {
	r.record(true, r.fill)
}

func (r *Recorder) Stroke() {
	r.record(false, r.stroke)
}

func (r *Recorder) record(fill bool, c color.Color) {
	p := Paint{Fill: fill, Width: r.width, Color: c}
	if !fill {
		p.Dash = append([]float64(nil), r.dash...)
	}
	for _, s := range r.path.drawable() {
		p.Subpaths = append(p.Subpaths, geometry.ClonePoints(s.points))
		p.Closed = append(p.Closed, s.closed)
	}
	r.Paints = append(r.Paints, p)
}

// Strokes returns the recorded stroke operations
func (r *Recorder) Strokes() []Paint {
	var out []Paint
	for _, p := range r.Paints {
		if !p.Fill {
			out = append(out, p)
		}
	}
	return out
}

// Fills returns the recorded fill operations
func (r *Recorder) Fills() []Paint {
	var out []Paint
	for _, p := range r.Paints {
		if p.Fill {
			out = append(out, p)
		}
	}
	return out
}
