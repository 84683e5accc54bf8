// Package draw defines the drawing surface used by the grid renderer and tools,
// with a rasterizing implementation and a recorder for tests.
package draw

import (
	"image/color"
	"math"

	"github.com/philipparndt/gocalib/pkg/geometry"
)

// Target is a path-based drawing surface. Line width, dash and colors apply at
// the time Fill or Stroke is called. Translate shifts all later path coordinates.
type Target interface {
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(x, y, radius, startAngle, endAngle float64)
	ClosePath()
	Fill()
	Stroke()
	SetLineWidth(width float64)
	SetLineDash(dash []float64)
	SetStrokeColor(c color.Color)
	SetFillColor(c color.Color)
	Translate(dx, dy float64)
}

// ArcSegments is the number of line segments used to approximate a full circle
const ArcSegments = 72

// arcPoints flattens an arc into points, including both end points
func arcPoints(x, y, radius, startAngle, endAngle float64) []geometry.Point {
	sweep := endAngle - startAngle
	n := int(math.Ceil(math.Abs(sweep) / (2 * math.Pi) * ArcSegments))
	if n < 1 {
		n = 1
	}
	pts := make([]geometry.Point, n+1)
	for i := 0; i <= n; i++ {
		a := startAngle + sweep*float64(i)/float64(n)
		pts[i] = geometry.Point{X: x + radius*math.Cos(a), Y: y + radius*math.Sin(a)}
	}
	return pts
}

// subpath is one connected run of a path
type subpath struct {
	points []geometry.Point
	closed bool
}

// path accumulates subpaths with canvas semantics: LineTo without a current
// point starts a new subpath, Arc connects to the current point.
type path struct {
	subpaths []subpath
	offset   geometry.Point
}

func (p *path) reset() {
	p.subpaths = nil
}

func (p *path) moveTo(pt geometry.Point) {
	p.subpaths = append(p.subpaths, subpath{points: []geometry.Point{pt.Add(p.offset)}})
}

func (p *path) lineTo(pt geometry.Point) {
	if len(p.subpaths) == 0 || p.current().closed {
		p.moveTo(pt)
		return
	}
	cur := p.current()
	cur.points = append(cur.points, pt.Add(p.offset))
}

func (p *path) arc(x, y, radius, startAngle, endAngle float64) {
	for _, pt := range arcPoints(x, y, radius, startAngle, endAngle) {
		p.lineTo(pt)
	}
}

func (p *path) closePath() {
	if len(p.subpaths) == 0 {
		return
	}
	cur := p.current()
	cur.closed = true
	// a new subpath continues from the start of the closed one
	p.subpaths = append(p.subpaths, subpath{points: []geometry.Point{cur.points[0]}})
}

func (p *path) current() *subpath {
	return &p.subpaths[len(p.subpaths)-1]
}

// drawable returns the subpaths that contain at least one segment
func (p *path) drawable() []subpath {
	var out []subpath
	for _, s := range p.subpaths {
		if len(s.points) > 1 {
			out = append(out, s)
		}
	}
	return out
}
