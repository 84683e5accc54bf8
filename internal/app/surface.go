package app

import (
	"image"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gocalib/pkg/calibration"
	"github.com/philipparndt/gocalib/pkg/dragger"
	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/keys"
)

// Surface is the full-window widget that shows the grid and routes input
// either to the calibration controller or to the overlay dragger
type Surface struct {
	widget.BaseWidget

	calibration CalibrationState
	overlay     OverlayState
	input       InputState
	logger      *slog.Logger

	// onToggleCalibrating is called after the calibration mode key was pressed
	onToggleCalibrating func(bool)
	requestFocus        func()
}

// NewSurface creates the surface widget
func NewSurface(cal CalibrationState, overlay OverlayState, logger *slog.Logger) *Surface {
	s := &Surface{
		calibration: cal,
		overlay:     overlay,
		logger:      logger.With("component", "surface"),
	}
	s.input.shiftLeft = keys.NewHeld(s.axisLock, s.axisUnlock, keys.ShiftLeft)
	s.input.shiftRight = keys.NewHeld(s.axisLock, s.axisUnlock, keys.ShiftRight)
	s.input.pressEcho = make(map[keys.Code]bool)
	s.ExtendBaseWidget(s)
	return s
}

// CreateRenderer creates the renderer for the widget
func (s *Surface) CreateRenderer() fyne.WidgetRenderer {
	r := &surfaceRenderer{surface: s}
	r.raster = canvas.NewRaster(r.generate)
	return r
}

// Scene returns the current frame content
func (s *Surface) Scene() Scene {
	return Scene{
		Calibration: s.calibration.controller.Snapshot(),
		Overlay:     s.overlay.transform.Get(),
		Tool:        s.overlay.dragger.Tool(),
	}
}

func (s *Surface) focus() {
	if s.requestFocus != nil {
		s.requestFocus()
	}
}

func (s *Surface) calibrating() bool {
	return s.calibration.controller.Calibrating()
}

func toPoint(p fyne.Position) geometry.Point {
	return geometry.Point{X: float64(p.X), Y: float64(p.Y)}
}

// syncOverlay points the dragger at the current inverse homography
func (s *Surface) syncOverlay() {
	m, ok := s.calibration.controller.Homography()
	if !ok {
		return
	}
	inv, err := m.Inverse()
	if err != nil {
		s.logger.Warn("Calibration homography is not invertible", "error", err)
		return
	}
	s.overlay.dragger.SetPerspective(inv, s.calibration.density)
}

// MouseDown implements desktop.Mouseable
func (s *Surface) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.input.pressed = true
	s.focus()
	p := toPoint(ev.Position)
	if s.calibrating() {
		if err := s.calibration.controller.PointerDown(p); err != nil {
			s.logger.Debug("Pointer down rejected", "error", err)
		}
		return
	}
	s.syncOverlay()
	if !s.overContent(p) {
		return
	}
	s.overlay.dragger.Start(p)
	s.Refresh()
}

// MouseUp implements desktop.Mouseable
func (s *Surface) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.input.pressed = false
	if s.calibrating() {
		s.calibration.controller.PointerUp()
		return
	}
	s.overlay.dragger.End()
}

// MouseIn implements desktop.Hoverable
func (s *Surface) MouseIn(ev *desktop.MouseEvent) {
	s.overlay.dragger.Enter()
	s.MouseMoved(ev)
}

// MouseMoved implements desktop.Hoverable
func (s *Surface) MouseMoved(ev *desktop.MouseEvent) {
	held := ev.Button&desktop.MouseButtonPrimary != 0
	p := toPoint(ev.Position)
	s.input.hover, s.input.hasHover = p, true
	if s.calibrating() {
		if err := s.calibration.controller.PointerMove(p, held); err != nil {
			s.logger.Debug("Pointer move rejected", "error", err)
		}
		return
	}
	if held {
		// drag motion arrives through Dragged once past the drag threshold
		return
	}
	s.overlay.dragger.Move(p, false)
}

// MouseOut implements desktop.Hoverable
func (s *Surface) MouseOut() {
	s.input.hasHover = false
}

// Dragged implements fyne.Draggable
func (s *Surface) Dragged(ev *fyne.DragEvent) {
	p := toPoint(ev.Position)
	if s.calibrating() {
		var err error
		if s.input.touching {
			err = s.calibration.controller.TouchMove(p)
		} else {
			err = s.calibration.controller.PointerMove(p, true)
		}
		if err != nil {
			s.logger.Debug("Drag rejected", "error", err)
		}
		return
	}
	s.overlay.dragger.Move(p, true)
}

// DragEnd implements fyne.Draggable
func (s *Surface) DragEnd() {
	s.input.pressed = false
	if s.calibrating() {
		if s.input.touching {
			s.input.touching = false
			s.calibration.controller.TouchEnd()
			return
		}
		s.calibration.controller.PointerUp()
		return
	}
	s.overlay.dragger.End()
}

// Tapped implements fyne.Tappable. Taps outside calibration go to the active tool.
func (s *Surface) Tapped(ev *fyne.PointEvent) {
	if s.calibrating() {
		return
	}
	s.syncOverlay()
	s.overlay.dragger.Click(toPoint(ev.Position))
}

// TouchDown implements mobile.Touchable
func (s *Surface) TouchDown(ev *mobile.TouchEvent) {
	s.input.touching = true
	s.focus()
	p := toPoint(ev.Position)
	if s.calibrating() {
		if err := s.calibration.controller.TouchStart(p); err != nil {
			s.logger.Debug("Touch start rejected", "error", err)
		}
		return
	}
	s.syncOverlay()
	if s.overContent(p) {
		s.overlay.dragger.Start(p)
	}
}

// TouchUp implements mobile.Touchable
func (s *Surface) TouchUp(*mobile.TouchEvent) {
	s.endTouch()
}

// TouchCancel implements mobile.Touchable
func (s *Surface) TouchCancel(*mobile.TouchEvent) {
	s.endTouch()
}

func (s *Surface) endTouch() {
	if !s.input.touching {
		return
	}
	s.input.touching = false
	if s.calibrating() {
		s.calibration.controller.TouchEnd()
		return
	}
	s.overlay.dragger.End()
}

// FocusGained implements fyne.Focusable
func (s *Surface) FocusGained() {}

// FocusLost implements fyne.Focusable
func (s *Surface) FocusLost() {}

// TypedRune implements fyne.Focusable
func (s *Surface) TypedRune(rune) {}

// TypedKey implements fyne.Focusable. Desktop drivers report only the first
// press through KeyDown; held arrows repeat through here.
func (s *Surface) TypedKey(ev *fyne.KeyEvent) {
	code, ok := keyCode(ev.Name)
	if !ok || !keys.IsArrow(code) {
		return
	}
	if s.input.pressEcho[code] {
		s.input.pressEcho[code] = false
		return
	}
	s.calibration.controller.KeyDown(code, s.shiftHeld())
}

// AcceptsTab keeps Tab for corner cycling instead of focus traversal
func (s *Surface) AcceptsTab() bool {
	return true
}

// KeyDown implements desktop.Keyable
func (s *Surface) KeyDown(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyC {
		s.toggleCalibrating()
		return
	}
	code, ok := keyCode(ev.Name)
	if !ok {
		return
	}
	s.input.shiftLeft.KeyDown(code)
	s.input.shiftRight.KeyDown(code)
	if keys.IsArrow(code) {
		s.input.pressEcho[code] = true
	}
	s.calibration.controller.KeyDown(code, s.shiftHeld())
}

// KeyUp implements desktop.Keyable
func (s *Surface) KeyUp(ev *fyne.KeyEvent) {
	code, ok := keyCode(ev.Name)
	if !ok {
		return
	}
	s.input.shiftLeft.KeyUp(code)
	s.input.shiftRight.KeyUp(code)
	delete(s.input.pressEcho, code)
	s.calibration.controller.KeyUp(code)
}

func (s *Surface) shiftHeld() bool {
	return s.input.shiftLeft.Active() || s.input.shiftRight.Active()
}

func (s *Surface) axisLock() {
	s.overlay.dragger.SetAxisLocked(true)
}

func (s *Surface) axisUnlock() {
	s.overlay.dragger.SetAxisLocked(s.shiftHeld())
}

func (s *Surface) toggleCalibrating() {
	on := !s.calibrating()
	s.calibration.controller.SetCalibrating(on)
	s.overlay.dragger.End()
	s.overlay.dragger.ResetTool()
	s.logger.Info("Calibration mode changed", "calibrating", on)
	if s.onToggleCalibrating != nil {
		s.onToggleCalibrating(on)
	}
}

// Cursor implements desktop.Cursorable
func (s *Surface) Cursor() desktop.Cursor {
	if s.calibrating() {
		if s.calibration.controller.Cursor() == calibration.CursorCorner {
			return desktop.CrosshairCursor
		}
		return desktop.DefaultCursor
	}
	c := s.overlay.dragger.ViewportCursor()
	if s.input.hasHover && s.overContent(s.input.hover) {
		c = s.overlay.dragger.Cursor()
	}
	switch c {
	case dragger.CursorHidden:
		return desktop.HiddenCursor
	case dragger.CursorGrab, dragger.CursorGrabbing:
		return desktop.PointerCursor
	}
	return desktop.DefaultCursor
}

// overContent reports whether p is inside the calibrated mat
func (s *Surface) overContent(p geometry.Point) bool {
	m, ok := s.calibration.controller.Homography()
	if !ok {
		return false
	}
	inv, err := m.Inverse()
	if err != nil {
		return false
	}
	p = geometry.TransformPoint(p, inv)
	w := s.calibration.width * s.calibration.density
	h := s.calibration.height * s.calibration.density
	return p.X >= 0 && p.Y >= 0 && p.X <= w && p.Y <= h
}

// surfaceRenderer implements fyne.WidgetRenderer
type surfaceRenderer struct {
	surface *Surface
	raster  *canvas.Raster
}

func (r *surfaceRenderer) generate(w, h int) image.Image {
	size := r.surface.Size()
	scale := 1.0
	if size.Width > 0 {
		scale = float64(w) / float64(size.Width)
	}
	return RenderImage(r.surface.Scene(), w, h, scale)
}

func (r *surfaceRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
}

func (r *surfaceRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

func (r *surfaceRenderer) Refresh() {
	canvas.Refresh(r.raster)
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.raster}
}

func (r *surfaceRenderer) Destroy() {}
