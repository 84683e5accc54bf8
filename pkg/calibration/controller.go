// Package calibration turns pointer, touch and keyboard events into edits of the
// four calibration corners and keeps the rectangle-to-screen homography current.
package calibration

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/homography"
	"github.com/philipparndt/gocalib/pkg/keys"
	"github.com/philipparndt/gocalib/pkg/sched"
	"github.com/philipparndt/gocalib/pkg/settings"
)

const (
	// MaxPoints is one point per rectangle corner
	MaxPoints = 4
	// CornerMargin is the distance below which a press grabs a corner instead of panning
	CornerMargin = 150.0

	PrecisionThreshold = 15.0
	PrecisionRatio     = 5.0
	PrecisionDelay     = 500 * time.Millisecond
)

var ErrNonFinite = errors.New("non-finite pointer position")

// Persister stores the point set after every completed edit
type Persister interface {
	SavePoints(points []geometry.Point) error
}

// Options configure a Controller. Zero values fall back to defaults.
type Options struct {
	Width, Height float64
	Density       float64

	Scheduler sched.Scheduler
	Settings  settings.Source
	Persister Persister
	Logger    *slog.Logger
	Steps     []float64

	// OnChange is called after any visible change, outside the controller lock
	OnChange func()
	// OnBlur is called when Escape releases the keyboard selection
	OnBlur func()
}

// Controller owns the calibration points and the interaction state machine
type Controller struct {
	mu sync.Mutex

	width, height, density float64

	points        []geometry.Point
	tracker       *homography.Tracker
	state         State
	pointToModify int
	calibrating   bool
	cursor        Cursor
	nudged        bool
	lastErr       error

	clock          sched.Scheduler
	precision      *sched.Deferred
	precisionToken uuid.UUID
	arrows         *keys.Arrows

	settings  settings.Source
	persister Persister
	logger    *slog.Logger
	onChange  func()
	onBlur    func()
}

// New creates a controller with no points and no selection
func New(opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = sched.Real()
	}
	if opts.Settings == nil {
		opts.Settings = settings.NewHolder(settings.Default())
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Controller{
		width:         opts.Width,
		height:        opts.Height,
		density:       opts.Density,
		tracker:       homography.NewTracker(opts.Width, opts.Height, opts.Density),
		state:         Idle{},
		pointToModify: -1,
		clock:         opts.Scheduler,
		precision:     sched.NewDeferred(opts.Scheduler),
		arrows:        keys.NewArrows(opts.Steps),
		settings:      opts.Settings,
		persister:     opts.Persister,
		logger:        opts.Logger.With("component", "calibration"),
		onChange:      opts.OnChange,
		onBlur:        opts.OnBlur,
	}
}

// effects collects side effects to run once the lock is released
type effects struct {
	changed bool
	persist []geometry.Point
	blur    bool
	toggle  bool
}

func (c *Controller) apply(e effects) {
	if e.toggle {
		c.settings.Set(c.settings.Get().ToggleFourCorners())
	}
	if e.persist != nil && c.persister != nil {
		if err := c.persister.SavePoints(e.persist); err != nil {
			c.logger.Error("Failed to persist points", "error", err)
		}
	}
	if e.blur && c.onBlur != nil {
		c.onBlur()
	}
	if (e.changed || e.toggle) && c.onChange != nil {
		c.onChange()
	}
}

// SetCalibrating switches between calibration and display mode.
// Leaving calibration ends any gesture and persists the points.
func (c *Controller) SetCalibrating(on bool) {
	c.mu.Lock()
	c.calibrating = on
	e := effects{changed: true}
	if !on {
		if _, idle := c.state.(Idle); !idle {
			e.persist = c.finishGestureLocked()
		}
		c.resetDragLocked()
		c.state = Idle{}
		c.cursor = CursorDefault
	}
	c.mu.Unlock()

	c.apply(e)
}

// Calibrating reports whether pointer editing is enabled
func (c *Controller) Calibrating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calibrating
}

// SetDimensions changes the rectangle size and density and recomputes the homography
func (c *Controller) SetDimensions(width, height, density float64) {
	c.mu.Lock()
	c.width, c.height, c.density = width, height, density
	c.tracker.SetDimensions(width, height, density)
	c.recomputeLocked()
	c.mu.Unlock()

	c.apply(effects{changed: true})
}

// SetPoints replaces the point set, for example when restoring persisted points
func (c *Controller) SetPoints(points []geometry.Point) error {
	for _, p := range points {
		if !p.IsFinite() {
			return ErrNonFinite
		}
	}
	if len(points) > MaxPoints {
		return fmt.Errorf("too many points: %d", len(points))
	}

	c.mu.Lock()
	c.resetDragLocked()
	c.state = Idle{}
	c.points = geometry.ClonePoints(points)
	if c.pointToModify >= len(c.points) {
		c.pointToModify = -1
	}
	c.recomputeLocked()
	c.mu.Unlock()

	c.apply(effects{changed: true})
	return nil
}

// Points returns a copy of the current point set
func (c *Controller) Points() []geometry.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return geometry.ClonePoints(c.points)
}

// State returns the current interaction state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PointToModify returns the selected corner index, or -1 when nothing is selected
func (c *Controller) PointToModify() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pointToModify
}

// Cursor returns the current hover affordance
func (c *Controller) Cursor() Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// LastError returns the most recent homography failure, if the current points are degenerate
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// PointerDown handles a primary button press
func (c *Controller) PointerDown(p geometry.Point) error {
	if !p.IsFinite() {
		c.logger.Warn("Dropping pointer event", "error", ErrNonFinite)
		return ErrNonFinite
	}

	c.mu.Lock()
	if !c.calibrating {
		c.mu.Unlock()
		return nil
	}

	if len(c.points) < MaxPoints {
		c.points = append(geometry.ClonePoints(c.points), p)
		c.state = Placing{}
		c.recomputeLocked()
		c.logger.Debug("Placed point", "index", len(c.points)-1, "x", p.X, "y", p.Y)
		c.mu.Unlock()
		c.apply(effects{changed: true})
		return nil
	}

	idx, ok := c.nearestCornerLocked(p)
	if ok {
		c.resetDragLocked()
		c.pointToModify = idx
		c.state = DraggingCorner{
			Index:      idx,
			StartTime:  c.clock.Now(),
			StartMouse: p,
			StartPoint: c.points[idx],
			Last:       p,
		}
		c.precisionToken = c.precision.Schedule(PrecisionDelay, c.precisionTimerFired)
	} else {
		c.resetDragLocked()
		c.pointToModify = -1
		c.state = Panning{StartMouse: p}
	}
	c.mu.Unlock()

	c.apply(effects{changed: true})
	return nil
}

// PointerMove handles pointer motion. When the primary button is not held the
// move ends any drag and only updates the hover cursor.
func (c *Controller) PointerMove(p geometry.Point, primaryHeld bool) error {
	if !primaryHeld {
		c.PointerUp()
		return c.Hover(p)
	}
	return c.move(p)
}

// PointerUp handles a primary button release. The selection is kept so the
// keyboard can continue to nudge the corner.
func (c *Controller) PointerUp() {
	c.release(false)
}

// TouchStart handles the start of a touch
func (c *Controller) TouchStart(p geometry.Point) error {
	return c.PointerDown(p)
}

// TouchMove handles touch motion
func (c *Controller) TouchMove(p geometry.Point) error {
	return c.move(p)
}

// TouchEnd handles the end of a touch and clears the selection
func (c *Controller) TouchEnd() {
	c.release(true)
}

// Hover updates the cursor affordance without touching drag state
func (c *Controller) Hover(p geometry.Point) error {
	if !p.IsFinite() {
		return ErrNonFinite
	}

	c.mu.Lock()
	cursor := CursorPan
	if _, ok := c.nearestCornerLocked(p); ok {
		cursor = CursorCorner
	}
	changed := c.cursor != cursor
	c.cursor = cursor
	c.mu.Unlock()

	c.apply(effects{changed: changed})
	return nil
}

func (c *Controller) move(p geometry.Point) error {
	if !p.IsFinite() {
		c.logger.Warn("Dropping pointer event", "error", ErrNonFinite)
		return ErrNonFinite
	}

	c.mu.Lock()
	switch s := c.state.(type) {
	case DraggingCorner:
		s = c.updatePrecisionLocked(s, p)
		s.Last = p

		points := geometry.ClonePoints(c.points)
		points[s.Index] = s.destination(p)
		c.points = points
		c.state = s
		c.recomputeLocked()
	case Panning:
		s.Offset = p.Sub(s.StartMouse)
		c.state = s
	default:
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.apply(effects{changed: true})
	return nil
}

// updatePrecisionLocked applies the move-based precision rules: a move after the
// delay that stayed within the threshold activates precision, a move beyond the
// threshold disables it for the rest of the drag.
func (c *Controller) updatePrecisionLocked(s DraggingCorner, p geometry.Point) DraggingCorner {
	if s.Precision || s.PrecisionDisabled {
		return s
	}

	dist := s.StartMouse.Distance(p)
	if c.clock.Now().Sub(s.StartTime) > PrecisionDelay && dist < PrecisionThreshold {
		c.precision.Cancel()
		c.precisionToken = uuid.Nil
		return c.activatePrecisionLocked(s)
	}
	if dist > PrecisionThreshold {
		c.precision.Cancel()
		c.precisionToken = uuid.Nil
		s.PrecisionDisabled = true
		c.logger.Debug("Precision movement disabled for this drag", "index", s.Index)
	}
	return s
}

func (c *Controller) activatePrecisionLocked(s DraggingCorner) DraggingCorner {
	s.Precision = true
	s.Anchor = c.points[s.Index]
	s.Anchored = true
	c.logger.Debug("Precision movement activated", "index", s.Index)
	return s
}

func (c *Controller) precisionTimerFired(token sched.Token) {
	c.mu.Lock()
	if token != c.precisionToken {
		c.mu.Unlock()
		return
	}
	c.precisionToken = uuid.Nil

	s, ok := c.state.(DraggingCorner)
	if !ok || s.Precision || s.PrecisionDisabled || s.StartMouse.Distance(s.Last) >= PrecisionThreshold {
		c.mu.Unlock()
		return
	}
	c.state = c.activatePrecisionLocked(s)
	c.mu.Unlock()

	c.apply(effects{changed: true})
}

func (c *Controller) release(touch bool) {
	c.mu.Lock()
	var e effects
	if _, idle := c.state.(Idle); !idle {
		e.persist = c.finishGestureLocked()
		e.changed = true
	}
	if touch && c.pointToModify >= 0 {
		c.pointToModify = -1
		e.changed = true
	}
	c.mu.Unlock()

	c.apply(e)
}

// finishGestureLocked ends the current gesture, baking a pan offset into the
// points, and returns the points to persist
func (c *Controller) finishGestureLocked() []geometry.Point {
	if s, ok := c.state.(Panning); ok && s.Offset != (geometry.Point{}) {
		points := make([]geometry.Point, len(c.points))
		for i, pt := range c.points {
			points[i] = pt.Add(s.Offset)
		}
		c.points = points
		c.recomputeLocked()
	}
	c.resetDragLocked()
	c.state = Idle{}
	return geometry.ClonePoints(c.points)
}

// KeyDown handles a key press and reports whether it was consumed
func (c *Controller) KeyDown(code keys.Code, shift bool) bool {
	c.mu.Lock()
	if !c.calibrating {
		c.mu.Unlock()
		return false
	}

	var e effects
	handled := false
	switch {
	case code == keys.Tab && shift:
		e.toggle = true
		handled = true
	case code == keys.Tab:
		if len(c.points) > 0 {
			next := 0
			if c.pointToModify >= 0 {
				next = (c.pointToModify + 1) % len(c.points)
			}
			c.selectLocked(next, &e)
			e.changed = true
		}
		handled = true
	case code == keys.Escape:
		if c.pointToModify >= 0 {
			c.selectLocked(-1, &e)
			e.blur = true
			e.changed = true
			handled = true
		}
	case keys.IsArrow(code):
		handled = c.nudgeLocked(code)
		e.changed = handled
	}
	c.mu.Unlock()

	c.apply(e)
	return handled
}

// KeyUp handles a key release. Releasing an arrow after a nudge persists the points.
func (c *Controller) KeyUp(code keys.Code) {
	c.arrows.KeyUp(code)
	if !keys.IsArrow(code) {
		return
	}

	c.mu.Lock()
	var e effects
	if c.nudged {
		c.nudged = false
		e.persist = geometry.ClonePoints(c.points)
	}
	c.mu.Unlock()

	c.apply(e)
}

func (c *Controller) nudgeLocked(code keys.Code) bool {
	idx := c.pointToModify
	if idx < 0 || idx >= len(c.points) || len(c.points) != MaxPoints {
		return false
	}
	m, ok := c.tracker.Matrix()
	if !ok {
		return false
	}
	n, ok := c.arrows.KeyDown(code)
	if !ok {
		return false
	}

	offset := PerspectiveOffset(m, idx, geometry.Point{X: n.DX, Y: n.DY}, c.width, c.height, c.density)
	points := geometry.ClonePoints(c.points)
	points[idx] = points[idx].Add(offset)
	c.points = points
	c.nudged = true
	c.recomputeLocked()
	return true
}

// selectLocked changes the selection. A running corner drag is finished and
// persisted so precision state never carries over to another corner.
func (c *Controller) selectLocked(idx int, e *effects) {
	if idx == c.pointToModify {
		return
	}
	if _, dragging := c.state.(DraggingCorner); dragging {
		e.persist = c.finishGestureLocked()
	}
	c.pointToModify = idx
}

// nearestCornerLocked returns the closest corner when it lies within CornerMargin.
// An empty point set has no corner in reach.
func (c *Controller) nearestCornerLocked(p geometry.Point) (int, bool) {
	if len(c.points) == 0 {
		return -1, false
	}
	dists := make([]float64, len(c.points))
	for i, pt := range c.points {
		dists[i] = geometry.SqrDist(pt, p)
	}
	idx := geometry.MinIndex(dists)
	return idx, dists[idx] < CornerMargin*CornerMargin
}

func (c *Controller) resetDragLocked() {
	c.precision.Cancel()
	c.precisionToken = uuid.Nil
}

func (c *Controller) recomputeLocked() {
	if len(c.points) != MaxPoints {
		c.lastErr = nil
		return
	}
	if _, err := c.tracker.Update(c.points); err != nil {
		if c.lastErr == nil {
			c.logger.Warn("Keeping last valid homography", "error", err)
		}
		c.lastErr = err
		return
	}
	c.lastErr = nil
}
