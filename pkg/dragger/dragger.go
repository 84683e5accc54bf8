// Package dragger edits the overlay transform by dragging it and forwards
// clicks to the active tool.
package dragger

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/sched"
	"github.com/philipparndt/gocalib/pkg/settings"
	"github.com/philipparndt/gocalib/pkg/tools"
)

// IdleTimeout hides the cursor after this long without pointer movement
const IdleTimeout = 1500 * time.Millisecond

// Cursor is the pointer affordance over the dragged content
type Cursor int

const (
	CursorGrab Cursor = iota
	CursorGrabbing
	CursorHidden
	CursorDefault
)

func (c Cursor) String() string {
	switch c {
	case CursorGrab:
		return "grab"
	case CursorGrabbing:
		return "grabbing"
	case CursorHidden:
		return "none"
	default:
		return "default"
	}
}

// Options configure a Dragger
type Options struct {
	// Perspective maps screen coordinates into calibration rectangle coordinates
	Perspective geometry.Matrix
	Density     float64
	Tool        tools.Tool
	Settings    settings.Source
	Scheduler   sched.Scheduler
	Logger      *slog.Logger
	OnChange    func()
}

// Dragger translates the overlay transform in unit space
type Dragger struct {
	mu sync.Mutex

	perspective    geometry.Matrix
	hasPerspective bool
	density        float64

	dragging       bool
	dragStart      geometry.Point
	transformStart geometry.Matrix
	last           geometry.Point
	hasLast        bool
	axisLocked     bool
	idle           bool

	idleTimer *sched.Deferred
	tool      tools.Tool
	settings  settings.Source
	logger    *slog.Logger
	onChange  func()
}

// New creates a dragger
func New(opts Options) *Dragger {
	if opts.Scheduler == nil {
		opts.Scheduler = sched.Real()
	}
	if opts.Settings == nil {
		opts.Settings = settings.NewHolder(settings.Default())
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Dragger{
		perspective:    opts.Perspective,
		hasPerspective: validPerspective(opts.Perspective),
		density:        opts.Density,
		idleTimer:      sched.NewDeferred(opts.Scheduler),
		tool:           opts.Tool,
		settings:       opts.Settings,
		logger:         opts.Logger.With("component", "dragger"),
		onChange:       opts.OnChange,
	}
}

// validPerspective rejects the zero matrix and anything that cannot be inverted
func validPerspective(m geometry.Matrix) bool {
	if !m.IsFinite() {
		return false
	}
	_, err := m.Inverse()
	return err == nil
}

// SetPerspective updates the screen-to-rectangle mapping and density
func (d *Dragger) SetPerspective(m geometry.Matrix, density float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.perspective = m
	d.hasPerspective = validPerspective(m)
	d.density = density
	if !d.hasPerspective {
		d.logger.Warn("Ignoring invalid overlay perspective")
	}
}

// HasPerspective reports whether screen positions can be mapped into the rectangle
func (d *Dragger) HasPerspective() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasPerspective
}

// SetTool replaces the active tool
func (d *Dragger) SetTool(t tools.Tool) {
	d.mu.Lock()
	old := d.tool
	d.tool = t
	d.mu.Unlock()

	if old != t {
		resetTool(old)
	}
}

// ResetTool drops any half-finished input of the active tool
func (d *Dragger) ResetTool() {
	resetTool(d.Tool())
	d.notify()
}

func resetTool(t tools.Tool) {
	if r, ok := t.(tools.Resetter); ok {
		r.Reset()
	}
}

// Tool returns the active tool
func (d *Dragger) Tool() tools.Tool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tool
}

// Start begins a drag at screen position p
func (d *Dragger) Start(p geometry.Point) {
	d.mu.Lock()
	start, ok := d.mapLocked(p)
	if !ok {
		d.mu.Unlock()
		d.logger.Debug("Ignoring drag without calibration", "x", p.X, "y", p.Y)
		return
	}
	d.dragging = true
	d.dragStart = start
	d.transformStart = d.settings.Get().Matrix
	d.last = p
	d.hasLast = true
	d.mu.Unlock()

	d.resetIdle()
}

// Move handles pointer motion. A move without the primary button ends the drag.
func (d *Dragger) Move(p geometry.Point, primaryHeld bool) {
	d.resetIdle()

	d.mu.Lock()
	if !d.dragging {
		d.mu.Unlock()
		return
	}
	d.last = p
	d.hasLast = true
	if !primaryHeld {
		d.mu.Unlock()
		d.End()
		return
	}
	ts, ok := d.moveLocked(p)
	d.mu.Unlock()

	if ok {
		d.settings.Set(ts)
	}
}

// End finishes the drag
func (d *Dragger) End() {
	d.mu.Lock()
	changed := d.dragging
	d.dragging = false
	d.mu.Unlock()

	if changed {
		d.notify()
	}
}

// Dragging reports whether a drag is active
func (d *Dragger) Dragging() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dragging
}

// SetAxisLocked constrains the drag to its dominant axis. Toggling the lock
// mid-drag re-applies the last pointer position right away.
func (d *Dragger) SetAxisLocked(locked bool) {
	d.mu.Lock()
	if d.axisLocked == locked {
		d.mu.Unlock()
		return
	}
	d.axisLocked = locked
	var ts settings.Transform
	ok := false
	if d.dragging && d.hasLast {
		ts, ok = d.moveLocked(d.last)
	}
	d.mu.Unlock()

	if ok {
		d.settings.Set(ts)
	}
}

// Click forwards a click to the active tool in unit coordinates
func (d *Dragger) Click(p geometry.Point) {
	d.mu.Lock()
	tool := d.tool
	unit, ok := d.toUnitLocked(p)
	d.mu.Unlock()

	if !ok {
		d.logger.Debug("Ignoring click without calibration", "x", p.X, "y", p.Y)
		return
	}
	if tool == nil {
		d.logger.Debug("No active tool")
		return
	}
	tool.HandlePoint(unit, d.settings.Get(), d.settings.Set)
}

// Enter is called when the pointer enters the surface
func (d *Dragger) Enter() {
	d.resetIdle()
}

// Idle reports whether the pointer has been still for IdleTimeout
func (d *Dragger) Idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idle
}

// Cursor returns the cursor for the dragged content
func (d *Dragger) Cursor() Cursor {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.dragging:
		return CursorGrabbing
	case d.idle:
		return CursorHidden
	default:
		return CursorGrab
	}
}

// ViewportCursor returns the cursor for the area around the content
func (d *Dragger) ViewportCursor() Cursor {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.dragging:
		return CursorGrabbing
	case d.idle:
		return CursorHidden
	default:
		return CursorDefault
	}
}

func (d *Dragger) moveLocked(p geometry.Point) (settings.Transform, bool) {
	if !d.dragging || d.density == 0 {
		return settings.Transform{}, false
	}
	dest, ok := d.mapLocked(p)
	if !ok {
		return settings.Transform{}, false
	}
	vec := dest.Sub(d.dragStart).Div(d.density)
	if d.axisLocked {
		vec = singleAxis(vec)
	}
	m := geometry.Translate(vec).Mul(d.transformStart)
	if !m.IsFinite() {
		return settings.Transform{}, false
	}
	return d.settings.Get().WithMatrix(m), true
}

// mapLocked maps a screen position into rectangle coordinates. It fails
// without a perspective and for non-finite results.
func (d *Dragger) mapLocked(p geometry.Point) (geometry.Point, bool) {
	if !d.hasPerspective || !p.IsFinite() {
		return geometry.Point{}, false
	}
	t := geometry.TransformPoint(p, d.perspective)
	return t, t.IsFinite()
}

func (d *Dragger) toUnitLocked(p geometry.Point) (geometry.Point, bool) {
	t, ok := d.mapLocked(p)
	if !ok || d.density == 0 {
		return geometry.Point{}, false
	}
	return t.Div(d.density), true
}

// singleAxis keeps only the dominant component of vec
func singleAxis(vec geometry.Point) geometry.Point {
	if math.Abs(vec.X) > math.Abs(vec.Y) {
		return geometry.Point{X: vec.X}
	}
	return geometry.Point{Y: vec.Y}
}

func (d *Dragger) resetIdle() {
	d.mu.Lock()
	wasIdle := d.idle
	d.idle = false
	d.mu.Unlock()

	d.idleTimer.Schedule(IdleTimeout, func(sched.Token) {
		d.mu.Lock()
		d.idle = true
		d.mu.Unlock()
		d.notify()
	})
	if wasIdle {
		d.notify()
	}
}

func (d *Dragger) notify() {
	if d.onChange != nil {
		d.onChange()
	}
}
