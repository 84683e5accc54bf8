package calibration

import (
	"time"

	"github.com/philipparndt/gocalib/pkg/geometry"
)

// State is the interaction state of a calibration surface.
// Exactly one variant is current at any time.
type State interface {
	isState()
	String() string
}

// Idle means no pointer is pressed
type Idle struct{}

// Placing means a pointer press appended a new point and has not been released yet
type Placing struct{}

// DraggingCorner is an active drag of one corner point
type DraggingCorner struct {
	Index      int
	StartTime  time.Time
	StartMouse geometry.Point
	StartPoint geometry.Point
	// Last is the most recent pointer position of this drag
	Last geometry.Point

	Precision         bool
	PrecisionDisabled bool
	// Anchor is the point position at the moment precision movement activated.
	// Only meaningful when Anchored is set.
	Anchor   geometry.Point
	Anchored bool
}

// Panning moves the whole point set by Offset until release
type Panning struct {
	StartMouse geometry.Point
	Offset     geometry.Point
}

func (Idle) isState()           {}
func (Placing) isState()        {}
func (DraggingCorner) isState() {}
func (Panning) isState()        {}

func (Idle) String() string           { return "idle" }
func (Placing) String() string        { return "placing" }
func (DraggingCorner) String() string { return "dragging-corner" }
func (Panning) String() string        { return "panning" }

// destination computes the new corner position for pointer position p.
// Continuity holds across precision activation and across repeated drags
// of the same point.
func (d DraggingCorner) destination(p geometry.Point) geometry.Point {
	ratio := 1.0
	if d.Precision {
		ratio = PrecisionRatio
	}

	dest := geometry.Point{
		X: d.StartMouse.X + (p.X-d.StartMouse.X)/ratio,
		Y: d.StartMouse.Y + (p.Y-d.StartMouse.Y)/ratio,
	}
	dest.X -= d.StartMouse.X - d.StartPoint.X
	dest.Y -= d.StartMouse.Y - d.StartPoint.Y

	if d.Anchored {
		dest.X += d.Anchor.X - d.StartPoint.X
		dest.Y += d.Anchor.Y - d.StartPoint.Y
	}
	return dest
}

// Cursor is the pointer affordance shown over the calibration surface
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorCorner
	CursorPan
)

func (c Cursor) String() string {
	switch c {
	case CursorCorner:
		return "corner"
	case CursorPan:
		return "pan"
	default:
		return "default"
	}
}
