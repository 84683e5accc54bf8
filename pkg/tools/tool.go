// Package tools provides click-driven editors of the overlay transform.
package tools

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/philipparndt/gocalib/pkg/draw"
	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/settings"
)

// Tool reacts to clicks in unit coordinates and may replace the transform
type Tool interface {
	// Draw renders the tool's pending state in unit coordinates
	Draw(t draw.Target)
	// HandlePoint receives a click and the current transform. The tool replaces
	// the transform only through set.
	HandlePoint(unit geometry.Point, ts settings.Transform, set func(settings.Transform))
}

// Resetter is implemented by tools that keep picked points between clicks
type Resetter interface {
	Reset()
}

var ErrUnknownTool = errors.New("unknown tool")

type factory func(logger *slog.Logger) Tool

var registry = map[string]factory{
	"mirror": func(logger *slog.Logger) Tool { return NewMirror(logger) },
}

// New creates the named tool
func New(name string, logger *slog.Logger) (Tool, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return f(logger), nil
}

// Names lists the registered tools
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
