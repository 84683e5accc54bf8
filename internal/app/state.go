package app

import (
	"fyne.io/fyne/v2"
	"github.com/philipparndt/gocalib/pkg/calibration"
	"github.com/philipparndt/gocalib/pkg/dragger"
	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/keys"
	"github.com/philipparndt/gocalib/pkg/settings"
	"github.com/philipparndt/gocalib/pkg/store"
	"github.com/philipparndt/gocalib/pkg/tools"
	"github.com/philipparndt/gocalib/pkg/watcher"
)

// CalibrationState holds the corner editing state
type CalibrationState struct {
	controller *calibration.Controller
	width      float64 // mat width in units
	height     float64 // mat height in units
	density    float64 // points per unit
}

// OverlayState holds the free transform applied to overlay content
type OverlayState struct {
	transform *settings.Holder
	dragger   *dragger.Dragger
	tool      tools.Tool
}

// PersistenceState holds point storage and external reload
type PersistenceState struct {
	points      *store.PointStore
	fileWatcher *watcher.FileWatcher // nil when the backend has no file to watch
	watchPath   string
}

// InputState tracks modifier keys across events
type InputState struct {
	shiftLeft  *keys.Held
	shiftRight *keys.Held
	touching   bool // a touch sequence is in progress
	pressed    bool // primary mouse button is down
	hover      geometry.Point
	hasHover   bool
	// arrows whose press was already handled by KeyDown; the driver echoes
	// the press to TypedKey before any repeats
	pressEcho map[keys.Code]bool
}

// UIState holds window level state
type UIState struct {
	window  fyne.Window
	surface *Surface
}
