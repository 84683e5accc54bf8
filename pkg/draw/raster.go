package draw

import (
	"image"
	"image/color"
	"math"

	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
)

// Raster is a Target that rasterizes onto an RGBA image
type Raster struct {
	img    *image.RGBA
	dasher *rasterx.Dasher
	filler *rasterx.Filler

	path   path
	width  float64
	dash   []float64
	stroke color.Color
	fill   color.Color
}

// NewRaster creates a w × h raster target
func NewRaster(w, h int) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	return &Raster{
		img:    img,
		dasher: rasterx.NewDasher(w, h, scanner),
		filler: rasterx.NewFiller(w, h, scanner),
		width:  1,
		stroke: color.Black,
		fill:   color.Black,
	}
}

// Image returns the backing image
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Clear fills the whole image with c and resets the translation
func (r *Raster) Clear(c color.Color) {
	xdraw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
	r.path = path{}
}

func (r *Raster) BeginPath()          { r.path.reset() }
func (r *Raster) MoveTo(x, y float64) { r.path.moveTo(geometry.Point{X: x, Y: y}) }
func (r *Raster) LineTo(x, y float64) { r.path.lineTo(geometry.Point{X: x, Y: y}) }
func (r *Raster) ClosePath()          { r.path.closePath() }

func (r *Raster) Arc(x, y, radius, startAngle, endAngle float64) {
	r.path.arc(x, y, radius, startAngle, endAngle)
}

func (r *Raster) SetLineWidth(width float64)   { r.width = width }
func (r *Raster) SetStrokeColor(c color.Color) { r.stroke = c }
func (r *Raster) SetFillColor(c color.Color)   { r.fill = c }

// SetLineDash sets the dash pattern. Odd-length patterns repeat once so that
// dashes and gaps alternate.
func (r *Raster) SetLineDash(dash []float64) {
	if len(dash)%2 == 1 {
		dash = append(append([]float64(nil), dash...), dash...)
	}
	r.dash = append([]float64(nil), dash...)
}

func (r *Raster) Translate(dx, dy float64) {
	r.path.offset = r.path.offset.Add(geometry.Point{X: dx, Y: dy})
}

func (r *Raster) Fill() {
	subpaths := r.path.drawable()
	if len(subpaths) == 0 {
		return
	}
	r.filler.Clear()
	r.filler.SetColor(r.fill)
	for _, s := range subpaths {
		r.filler.Start(toFixed(s.points[0]))
		for _, p := range s.points[1:] {
			r.filler.Line(toFixed(p))
		}
		r.filler.Stop(true)
	}
	r.filler.Draw()
}

func (r *Raster) Stroke() {
	subpaths := r.path.drawable()
	if len(subpaths) == 0 || r.width <= 0 {
		return
	}

	var dash []float64
	if len(r.dash) > 0 {
		dash = r.dash
	}
	width := fixed.Int26_6(math.Round(r.width * 64))
	r.dasher.Clear()
	r.dasher.SetStroke(width, 4*width, rasterx.ButtCap, rasterx.ButtCap, rasterx.FlatGap, rasterx.Miter, dash, 0)
	r.dasher.SetColor(r.stroke)
	for _, s := range subpaths {
		r.dasher.Start(toFixed(s.points[0]))
		for _, p := range s.points[1:] {
			r.dasher.Line(toFixed(p))
		}
		r.dasher.Stop(s.closed)
	}
	r.dasher.Draw()
}

func toFixed(p geometry.Point) fixed.Point26_6 {
	return rasterx.ToFixedP(p.X, p.Y)
}
