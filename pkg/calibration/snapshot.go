package calibration

import (
	"github.com/philipparndt/gocalib/pkg/geometry"
)

// Snapshot is an immutable view of the controller for one render pass
type Snapshot struct {
	Points        []geometry.Point
	Offset        geometry.Point
	Homography    geometry.Matrix
	HasHomography bool
	Width, Height float64
	Density       float64
	Calibrating   bool
	PointToModify int
	Precision     bool
	Cursor        Cursor
	State         State
}

// Snapshot captures the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.tracker.Matrix()
	s := Snapshot{
		Points:        geometry.ClonePoints(c.points),
		Homography:    m,
		HasHomography: ok,
		Width:         c.width,
		Height:        c.height,
		Density:       c.density,
		Calibrating:   c.calibrating,
		PointToModify: c.pointToModify,
		Cursor:        c.cursor,
		State:         c.state,
	}
	switch st := c.state.(type) {
	case Panning:
		s.Offset = st.Offset
	case DraggingCorner:
		s.Precision = st.Precision
	}
	return s
}

// Homography returns the last valid rectangle-to-screen homography
func (c *Controller) Homography() (geometry.Matrix, bool) {
	return c.tracker.Matrix()
}
