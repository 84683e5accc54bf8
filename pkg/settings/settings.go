// Package settings holds the free overlay transform and its display flags.
package settings

import (
	"sync"

	"github.com/philipparndt/gocalib/pkg/geometry"
)

// Transform is the overlay transform together with the handle display mode.
// Values are replaced whole, never mutated in place.
type Transform struct {
	Matrix        geometry.Matrix
	IsFourCorners bool
}

// Default returns the identity transform with only the active corner shown
func Default() Transform {
	return Transform{Matrix: geometry.Identity()}
}

// WithMatrix returns a copy of t using m
func (t Transform) WithMatrix(m geometry.Matrix) Transform {
	t.Matrix = m
	return t
}

// ToggleFourCorners returns a copy of t with IsFourCorners flipped
func (t Transform) ToggleFourCorners() Transform {
	t.IsFourCorners = !t.IsFourCorners
	return t
}

// Source exposes the current transform and a replace-whole setter
type Source interface {
	Get() Transform
	Set(Transform)
}

// Holder is a thread-safe Source that notifies subscribers on every Set
type Holder struct {
	mu        sync.RWMutex
	value     Transform
	listeners []func(Transform)
}

// NewHolder creates a holder with an initial value
func NewHolder(initial Transform) *Holder {
	return &Holder{value: initial}
}

func (h *Holder) Get() Transform {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value
}

func (h *Holder) Set(t Transform) {
	h.mu.Lock()
	h.value = t
	listeners := append([]func(Transform){}, h.listeners...)
	h.mu.Unlock()

	for _, l := range listeners {
		l(t)
	}
}

// Subscribe registers fn to be called after every Set
func (h *Holder) Subscribe(fn func(Transform)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}
