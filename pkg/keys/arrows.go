package keys

import "sync"

// DefaultSteps are the step sizes used while an arrow key keeps repeating
var DefaultSteps = []float64{1, 3, 5, 10}

// RepeatsPerStep is the number of repeats before moving to the next step size
const RepeatsPerStep = 5

// Nudge is a direction and magnitude produced by an arrow key
type Nudge struct {
	DX, DY float64
	Step   float64
}

// Arrows selects progressively larger steps while the same arrow key repeats.
// Releasing the key resets to the first step.
type Arrows struct {
	mu      sync.Mutex
	steps   []float64
	current Code
	repeats int
}

// NewArrows creates a repeater; nil or empty steps fall back to DefaultSteps
func NewArrows(steps []float64) *Arrows {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	return &Arrows{steps: append([]float64(nil), steps...)}
}

// IsArrow reports whether code is one of the four arrow keys
func IsArrow(code Code) bool {
	switch code {
	case ArrowUp, ArrowDown, ArrowLeft, ArrowRight:
		return true
	}
	return false
}

// KeyDown returns the nudge for an arrow key press, or false for other keys
func (a *Arrows) KeyDown(code Code) (Nudge, bool) {
	if !IsArrow(code) {
		return Nudge{}, false
	}

	a.mu.Lock()
	if code != a.current {
		a.current = code
		a.repeats = 0
	}
	idx := a.repeats / RepeatsPerStep
	if idx >= len(a.steps) {
		idx = len(a.steps) - 1
	}
	step := a.steps[idx]
	a.repeats++
	a.mu.Unlock()

	n := Nudge{Step: step}
	switch code {
	case ArrowUp:
		n.DY = -step
	case ArrowDown:
		n.DY = step
	case ArrowLeft:
		n.DX = -step
	case ArrowRight:
		n.DX = step
	}
	return n, true
}

// KeyUp resets the progression when the repeating key is released
func (a *Arrows) KeyUp(code Code) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if code == a.current {
		a.current = ""
		a.repeats = 0
	}
}
