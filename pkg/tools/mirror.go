package tools

import (
	"image/color"
	"log/slog"
	"sync"

	"github.com/philipparndt/gocalib/pkg/draw"
	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/settings"
)

// markerSize is the half-size of the pending start marker, in units
const markerSize = 0.25

var lineColor = color.RGBA{R: 0xf9, G: 0x73, B: 0x16, A: 0xff}

// MirrorTool flips the transform across the line through two picked points.
// The first click records the start, the second the end, then the tool resets.
type MirrorTool struct {
	mu       sync.Mutex
	start    geometry.Point
	hasStart bool
	last     [2]geometry.Point
	hasLast  bool
	logger   *slog.Logger
}

// NewMirror creates a mirror tool
func NewMirror(logger *slog.Logger) *MirrorTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorTool{logger: logger.With("tool", "mirror")}
}

func (m *MirrorTool) HandlePoint(unit geometry.Point, ts settings.Transform, set func(settings.Transform)) {
	m.mu.Lock()
	if !m.hasStart {
		m.start = unit
		m.hasStart = true
		m.mu.Unlock()
		// unchanged copy so the pending marker gets drawn
		set(ts)
		return
	}
	start := m.start
	m.hasStart = false
	m.last = [2]geometry.Point{start, unit}
	m.hasLast = true
	m.mu.Unlock()

	mirrored, err := geometry.MirrorMatrix2Points(ts.Matrix, start, unit)
	if err != nil {
		m.logger.Warn("Ignoring mirror axis", "error", err, "x", unit.X, "y", unit.Y)
		set(ts)
		return
	}
	m.logger.Debug("Mirrored transform", "start", start, "end", unit)
	set(ts.WithMatrix(mirrored))
}

// Reset forgets the picked points
func (m *MirrorTool) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasStart = false
	m.hasLast = false
}

// Pending reports whether a start point waits for its end point
func (m *MirrorTool) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasStart
}

func (m *MirrorTool) Draw(t draw.Target) {
	m.mu.Lock()
	start, hasStart := m.start, m.hasStart
	last, hasLast := m.last, m.hasLast
	m.mu.Unlock()

	t.SetLineDash(nil)
	t.SetStrokeColor(lineColor)
	t.SetLineWidth(2)

	if hasStart {
		arms := geometry.CrosshairPoints(start, markerSize)
		t.BeginPath()
		t.MoveTo(arms[0].X, arms[0].Y)
		t.LineTo(arms[1].X, arms[1].Y)
		t.MoveTo(arms[2].X, arms[2].Y)
		t.LineTo(arms[3].X, arms[3].Y)
		t.Stroke()
		return
	}
	if hasLast {
		t.BeginPath()
		t.MoveTo(last[0].X, last[0].Y)
		t.LineTo(last[1].X, last[1].Y)
		t.Stroke()
	}
}
