package app

import (
	"testing"

	"github.com/philipparndt/gocalib/pkg/calibration"
	"github.com/philipparndt/gocalib/pkg/draw"
	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/homography"
	"github.com/philipparndt/gocalib/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityScene is calibrated so that mat points and screen pixels coincide
func identityScene(t *testing.T, calibrating bool) Scene {
	t.Helper()
	rect := homography.Rectangle(24, 18, 96)
	ctrl := calibration.New(calibration.Options{Width: 24, Height: 18, Density: 96})
	require.NoError(t, ctrl.SetPoints(rect[:]))
	ctrl.SetCalibrating(calibrating)
	return Scene{Calibration: ctrl.Snapshot(), Overlay: settings.Default()}
}

func overlayFills(r *draw.Recorder) []draw.Paint {
	var out []draw.Paint
	for _, p := range r.Fills() {
		if p.Color == overlayColor {
			out = append(out, p)
		}
	}
	return out
}

func TestDrawSceneDisplayModeDrawsOverlayInUnits(t *testing.T) {
	r := draw.NewRecorder()
	DrawScene(r, identityScene(t, false))

	fills := overlayFills(r)
	require.Len(t, fills, 1)
	require.Len(t, fills[0].Subpaths, 1)
	first := fills[0].Subpaths[0][0]
	assert.InDelta(t, 96, first.X, 1e-6)
	assert.InDelta(t, 96, first.Y, 1e-6)
}

func TestDrawSceneAppliesOverlayTransform(t *testing.T) {
	s := identityScene(t, false)
	s.Overlay = s.Overlay.WithMatrix(geometry.Translate(geometry.Point{X: 2, Y: 1}))

	r := draw.NewRecorder()
	DrawScene(r, s)

	fills := overlayFills(r)
	require.Len(t, fills, 1)
	first := fills[0].Subpaths[0][0]
	assert.InDelta(t, 3*96, first.X, 1e-6)
	assert.InDelta(t, 2*96, first.Y, 1e-6)
}

func TestDrawSceneCalibratingHidesOverlay(t *testing.T) {
	r := draw.NewRecorder()
	DrawScene(r, identityScene(t, true))

	assert.Empty(t, overlayFills(r))
	assert.NotEmpty(t, r.Strokes())
}

func TestDrawSceneWithoutHomographyDrawsNoOverlay(t *testing.T) {
	ctrl := calibration.New(calibration.Options{Width: 24, Height: 18, Density: 96})
	r := draw.NewRecorder()
	DrawScene(r, Scene{Calibration: ctrl.Snapshot(), Overlay: settings.Default()})

	assert.Empty(t, overlayFills(r))
}

func TestRenderImageScalesToPixels(t *testing.T) {
	img := RenderImage(identityScene(t, false), 200, 100, 0.5)
	require.Equal(t, 200, img.Bounds().Dx())
	require.Equal(t, 100, img.Bounds().Dy())

	// glyph bar from (1,1) to (4,1.5) units lands at 48..192 × 48..72 pixels
	assert.Equal(t, overlayColor, img.RGBAAt(100, 60))
	assert.Equal(t, background, img.RGBAAt(100, 90))
}
