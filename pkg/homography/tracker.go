package homography

import (
	"sync"

	"github.com/philipparndt/gocalib/pkg/geometry"
)

// Tracker maintains the rectangle-to-screen homography for a changing point set.
// A degenerate update keeps the last valid matrix.
type Tracker struct {
	mu      sync.RWMutex
	width   float64
	height  float64
	density float64
	current geometry.Matrix
	valid   bool
	lastErr error
}

// NewTracker creates a tracker for a width × height rectangle at the given density
func NewTracker(width, height, density float64) *Tracker {
	return &Tracker{
		width:   width,
		height:  height,
		density: density,
	}
}

// SetDimensions changes the rectangle size and density.
// The caller is expected to call Update afterwards.
func (t *Tracker) SetDimensions(width, height, density float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width = width
	t.height = height
	t.density = density
}

// Update recomputes the homography from the given points.
// On failure the previous matrix is retained and the error is returned.
func (t *Tracker) Update(points []geometry.Point) (geometry.Matrix, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, err := RectToQuad(points, t.width, t.height, t.density)
	if err != nil {
		t.lastErr = err
		return t.current, err
	}
	t.current = m
	t.valid = true
	t.lastErr = nil
	return m, nil
}

// Matrix returns the last valid homography and whether one exists
func (t *Tracker) Matrix() (geometry.Matrix, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current, t.valid
}

// LastError returns the error of the most recent update, if it failed
func (t *Tracker) LastError() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastErr
}
