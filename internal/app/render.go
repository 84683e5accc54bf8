package app

import (
	"image"
	"image/color"

	"github.com/philipparndt/gocalib/pkg/calibration"
	"github.com/philipparndt/gocalib/pkg/draw"
	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/grid"
	"github.com/philipparndt/gocalib/pkg/settings"
	"github.com/philipparndt/gocalib/pkg/tools"
)

// Scene is everything needed for one frame
type Scene struct {
	Calibration calibration.Snapshot
	Overlay     settings.Transform
	Tool        tools.Tool
}

var (
	background   = color.RGBA{A: 255}
	overlayColor = color.RGBA{R: 0x38, G: 0xbd, B: 0xf8, A: 0xff}
)

// overlayGlyph is an asymmetric marker in unit coordinates so flips and
// translations of the overlay transform are visible
var overlayGlyph = []geometry.Point{
	{X: 1, Y: 1},
	{X: 4, Y: 1},
	{X: 4, Y: 1.5},
	{X: 1.5, Y: 1.5},
	{X: 1.5, Y: 2.5},
	{X: 3, Y: 2.5},
	{X: 3, Y: 3},
	{X: 1.5, Y: 3},
	{X: 1.5, Y: 5},
	{X: 1, Y: 5},
}

// unitToScreen maps unit coordinates onto the screen through the calibration
func unitToScreen(snap calibration.Snapshot) geometry.Matrix {
	return snap.Homography.Mul(geometry.Scale(snap.Density, snap.Density))
}

// DrawScene renders the grid, the overlay content and the active tool
func DrawScene(t draw.Target, s Scene) {
	snap := s.Calibration
	grid.Draw(t, grid.Params{
		Homography:     snap.Homography,
		HasHomography:  snap.HasHomography,
		Points:         snap.Points,
		Offset:         snap.Offset,
		Width:          snap.Width,
		Height:         snap.Height,
		Density:        snap.Density,
		Calibrating:    snap.Calibrating,
		PointToModify:  snap.PointToModify,
		Precision:      snap.Precision,
		ShowAllCorners: s.Overlay.IsFourCorners,
	})

	if snap.Calibrating || !snap.HasHomography {
		return
	}

	unit := unitToScreen(snap)
	content := draw.NewMatrixTarget(t, unit.Mul(s.Overlay.Matrix))
	content.SetLineDash(nil)
	content.SetFillColor(overlayColor)
	content.BeginPath()
	content.MoveTo(overlayGlyph[0].X, overlayGlyph[0].Y)
	for _, p := range overlayGlyph[1:] {
		content.LineTo(p.X, p.Y)
	}
	content.ClosePath()
	content.Fill()

	if s.Tool != nil {
		s.Tool.Draw(draw.NewMatrixTarget(t, unit))
	}
}

// RenderImage rasterizes a scene. scale converts scene coordinates to pixels.
func RenderImage(s Scene, w, h int, scale float64) *image.RGBA {
	r := draw.NewRaster(w, h)
	r.Clear(background)
	DrawScene(draw.NewMatrixTarget(r, geometry.Scale(scale, scale)), s)
	return r.Image()
}
