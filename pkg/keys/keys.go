// Package keys turns raw key-down/key-up events into held-combo notifications
// and progressive arrow-key steps.
package keys

import "sync"

// Code is a normalized key code
type Code string

const (
	ArrowUp    Code = "ArrowUp"
	ArrowDown  Code = "ArrowDown"
	ArrowLeft  Code = "ArrowLeft"
	ArrowRight Code = "ArrowRight"
	Tab        Code = "Tab"
	Escape     Code = "Escape"
	ShiftLeft  Code = "ShiftLeft"
	ShiftRight Code = "ShiftRight"
)

// Held tracks a key combination. OnHeld fires when every key of the combo is
// down; OnRelease fires when the combo goes from fully held to one key short.
type Held struct {
	mu        sync.Mutex
	codes     map[Code]bool
	held      map[Code]bool
	onHeld    func()
	onRelease func()
}

// NewHeld creates a combo tracker for the given codes
func NewHeld(onHeld, onRelease func(), codes ...Code) *Held {
	h := &Held{
		codes:     make(map[Code]bool, len(codes)),
		held:      make(map[Code]bool, len(codes)),
		onHeld:    onHeld,
		onRelease: onRelease,
	}
	for _, c := range codes {
		h.codes[c] = true
	}
	return h
}

// KeyDown records a key press. Codes outside the combo are ignored.
func (h *Held) KeyDown(code Code) {
	h.mu.Lock()
	if !h.codes[code] || h.held[code] {
		h.mu.Unlock()
		return
	}
	h.held[code] = true
	fire := len(h.held) == len(h.codes)
	h.mu.Unlock()

	if fire && h.onHeld != nil {
		h.onHeld()
	}
}

// KeyUp records a key release
func (h *Held) KeyUp(code Code) {
	h.mu.Lock()
	if !h.held[code] {
		h.mu.Unlock()
		return
	}
	wasFull := len(h.held) == len(h.codes)
	delete(h.held, code)
	fire := wasFull && len(h.codes) > 0
	h.mu.Unlock()

	if fire && h.onRelease != nil {
		h.onRelease()
	}
}

// Active reports whether the whole combo is held
func (h *Held) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.codes) > 0 && len(h.held) == len(h.codes)
}
