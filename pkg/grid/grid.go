// Package grid renders the perspective-warped calibration grid and corner handles.
package grid

import (
	"image/color"
	"math"

	"github.com/philipparndt/gocalib/pkg/draw"
	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/homography"
)

const (
	// MajorLine marks every n-th grid line as heavy
	MajorLine = 5
	// DisplayOutset extends the grid beyond the rectangle outside calibration, in units
	DisplayOutset = 8
	// HandleSegments approximates handle circles
	HandleSegments = 36
)

var (
	Black = color.RGBA{A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// CornerColors is the handle palette in corner role order:
// top-left, top-right, bottom-right, bottom-left
var CornerColors = [4]color.RGBA{
	{R: 0xef, G: 0x44, B: 0x44, A: 0xff},
	{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff},
	{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff},
	{R: 0xea, G: 0xb3, B: 0x08, A: 0xff},
}

// CornerColor returns the palette color for a corner index
func CornerColor(index int) color.RGBA {
	return CornerColors[((index%4)+4)%4]
}

// Params describe one render pass
type Params struct {
	// Homography maps rectangle coordinates to screen
	Homography    geometry.Matrix
	HasHomography bool
	Points        []geometry.Point
	// Offset is the live pan offset, applied to everything drawn
	Offset         geometry.Point
	Width, Height  float64
	Density        float64
	Calibrating    bool
	PointToModify  int
	Precision      bool
	ShowAllCorners bool
}

// HandleScale is the handle size in rectangle coordinates
func HandleScale(width, height, density float64) float64 {
	return math.Min(height/18, width/24) * density
}

// Draw renders the quad, grid and corner handles onto t
func Draw(t draw.Target, p Params) {
	t.Translate(p.Offset.X, p.Offset.Y)
	defer t.Translate(-p.Offset.X, -p.Offset.Y)

	t.SetLineDash(nil)
	t.SetFillColor(Black)
	t.BeginPath()
	polygon(t, p.Points)
	if p.Calibrating {
		t.Fill()
	} else {
		border(t)
	}

	if !p.HasHomography {
		return
	}

	t.SetStrokeColor(Black)
	if !p.Calibrating {
		t.SetLineDash([]float64{1})
		lines(t, p, DisplayOutset)
		return
	}

	t.SetStrokeColor(White)
	lines(t, p, 0)
	handles(t, p)
}

// polygon outlines the points starting from the last so the path is closed
func polygon(t draw.Target, points []geometry.Point) {
	if len(points) == 0 {
		return
	}
	last := points[len(points)-1]
	t.MoveTo(last.X, last.Y)
	for _, pt := range points {
		t.LineTo(pt.X, pt.Y)
	}
}

func border(t draw.Target) {
	t.SetStrokeColor(Black)
	t.SetLineWidth(5)
	t.Stroke()
	t.SetLineDash([]float64{4, 4})
	t.SetLineWidth(1)
	t.SetStrokeColor(White)
	t.Stroke()
}

// lines draws unit-spaced grid lines. Horizontal lines are counted from the
// bottom edge to match a cutting mat.
func lines(t draw.Target, p Params, outset float64) {
	d := p.Density
	for i := 0; float64(i) <= p.Width; i++ {
		fi := float64(i)
		line(t, p.Homography,
			geometry.Point{X: fi * d, Y: -outset * d},
			geometry.Point{X: fi * d, Y: (p.Height + outset) * d},
			lineWidth(i, p.Width))
	}
	for i := 0; float64(i) <= p.Height; i++ {
		y := (p.Height - float64(i)) * d
		line(t, p.Homography,
			geometry.Point{X: -outset * d, Y: y},
			geometry.Point{X: (p.Width + outset) * d, Y: y},
			lineWidth(i, p.Height))
	}
}

func lineWidth(i int, last float64) float64 {
	if i%MajorLine == 0 || float64(i) == last {
		return 2
	}
	return 1
}

func line(t draw.Target, m geometry.Matrix, a, b geometry.Point, width float64) {
	pts := geometry.TransformPoints([]geometry.Point{a, b}, m)
	t.BeginPath()
	t.SetLineWidth(width)
	t.MoveTo(pts[0].X, pts[0].Y)
	t.LineTo(pts[1].X, pts[1].Y)
	t.Stroke()
}

// handles draws the corner markers. Geometry is built in rectangle space and
// then projected, so markers shrink with the local perspective.
func handles(t draw.Target, p Params) {
	s := HandleScale(p.Width, p.Height, p.Density)
	corners := homography.Rectangle(p.Width, p.Height, p.Density)

	if p.ShowAllCorners {
		for i, c := range corners {
			if i == p.PointToModify {
				activeHandle(t, p, c, s)
			} else {
				circle(t, p.Homography, c, s)
				t.SetLineWidth(4)
			}
			t.SetStrokeColor(CornerColor(i))
			t.Stroke()
		}
		return
	}

	if p.PointToModify < 0 || p.PointToModify >= len(corners) {
		return
	}
	activeHandle(t, p, corners[p.PointToModify], s)
	t.SetStrokeColor(CornerColor(p.PointToModify))
	t.Stroke()
}

func activeHandle(t draw.Target, p Params, center geometry.Point, s float64) {
	if p.Precision {
		crosshair(t, p.Homography, center, s)
		t.SetLineWidth(2)
		return
	}
	circle(t, p.Homography, center, 2*s)
	t.SetLineWidth(4)
}

func circle(t draw.Target, m geometry.Matrix, center geometry.Point, radius float64) {
	pts := geometry.TransformPoints(geometry.CirclePoints(center, radius, HandleSegments), m)
	t.BeginPath()
	t.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		t.LineTo(pt.X, pt.Y)
	}
	t.ClosePath()
}

func crosshair(t draw.Target, m geometry.Matrix, center geometry.Point, size float64) {
	arms := geometry.CrosshairPoints(center, size)
	pts := geometry.TransformPoints(arms[:], m)
	t.BeginPath()
	t.MoveTo(pts[0].X, pts[0].Y)
	t.LineTo(pts[1].X, pts[1].Y)
	t.MoveTo(pts[2].X, pts[2].Y)
	t.LineTo(pts[3].X, pts[3].Y)
}
