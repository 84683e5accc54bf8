package tools

import (
	"testing"

	"github.com/philipparndt/gocalib/pkg/draw"
	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorAcrossVerticalLine(t *testing.T) {
	holder := settings.NewHolder(settings.Default())
	tool := NewMirror(nil)

	tool.HandlePoint(geometry.Point{X: 0, Y: 0}, holder.Get(), holder.Set)
	assert.True(t, tool.Pending())
	assert.Equal(t, geometry.Identity(), holder.Get().Matrix)

	tool.HandlePoint(geometry.Point{X: 0, Y: 10}, holder.Get(), holder.Set)
	assert.False(t, tool.Pending())

	got := geometry.TransformPoint(geometry.Point{X: 5, Y: 5}, holder.Get().Matrix)
	assert.InDelta(t, -5.0, got.X, 1e-9)
	assert.InDelta(t, 5.0, got.Y, 1e-9)
}

func TestMirrorSetsUnchangedCopyOnFirstClick(t *testing.T) {
	tool := NewMirror(nil)
	initial := settings.Default().ToggleFourCorners()

	var calls []settings.Transform
	tool.HandlePoint(geometry.Point{X: 1, Y: 1}, initial, func(ts settings.Transform) {
		calls = append(calls, ts)
	})
	require.Len(t, calls, 1)
	assert.Equal(t, initial, calls[0])
}

func TestMirrorResetsForNextPair(t *testing.T) {
	holder := settings.NewHolder(settings.Default())
	tool := NewMirror(nil)

	tool.HandlePoint(geometry.Point{X: 0, Y: 0}, holder.Get(), holder.Set)
	tool.HandlePoint(geometry.Point{X: 0, Y: 10}, holder.Get(), holder.Set)
	tool.HandlePoint(geometry.Point{X: 0, Y: 0}, holder.Get(), holder.Set)
	tool.HandlePoint(geometry.Point{X: 0, Y: 10}, holder.Get(), holder.Set)

	// mirroring twice across the same axis restores the original transform
	assert.True(t, holder.Get().Matrix.ApproxEqual(geometry.Identity(), 1e-9))
}

func TestMirrorCoincidentPointsKeepTransform(t *testing.T) {
	start := settings.Default().WithMatrix(geometry.Translate(geometry.Point{X: 3, Y: 4}))
	holder := settings.NewHolder(start)
	tool := NewMirror(nil)

	tool.HandlePoint(geometry.Point{X: 2, Y: 2}, holder.Get(), holder.Set)
	tool.HandlePoint(geometry.Point{X: 2, Y: 2}, holder.Get(), holder.Set)

	assert.Equal(t, start, holder.Get())
	assert.False(t, tool.Pending())
}

func TestMirrorDraw(t *testing.T) {
	holder := settings.NewHolder(settings.Default())
	tool := NewMirror(nil)

	r := draw.NewRecorder()
	tool.Draw(r)
	assert.Empty(t, r.Strokes())

	tool.HandlePoint(geometry.Point{X: 1, Y: 1}, holder.Get(), holder.Set)
	tool.Draw(r)
	require.Len(t, r.Strokes(), 1)
	assert.Len(t, r.Strokes()[0].Subpaths, 2)

	tool.HandlePoint(geometry.Point{X: 1, Y: 5}, holder.Get(), holder.Set)
	r = draw.NewRecorder()
	tool.Draw(r)
	require.Len(t, r.Strokes(), 1)
	assert.Equal(t, [][]geometry.Point{{{X: 1, Y: 1}, {X: 1, Y: 5}}}, r.Strokes()[0].Subpaths)
}

func TestRegistry(t *testing.T) {
	tool, err := New("mirror", nil)
	require.NoError(t, err)
	assert.IsType(t, &MirrorTool{}, tool)

	_, err = New("lasso", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Equal(t, []string{"mirror"}, Names())
}

func TestMirrorResetDropsPendingStart(t *testing.T) {
	holder := settings.NewHolder(settings.Default())
	tool := NewMirror(nil)
	var _ Resetter = tool

	tool.HandlePoint(geometry.Point{X: 0, Y: 0}, holder.Get(), holder.Set)
	tool.Reset()
	assert.False(t, tool.Pending())

	// the next click starts a new pair instead of finishing the old one
	tool.HandlePoint(geometry.Point{X: 0, Y: 10}, holder.Get(), holder.Set)
	assert.True(t, tool.Pending())
	assert.Equal(t, geometry.Identity(), holder.Get().Matrix)

	r := draw.NewRecorder()
	tool.Reset()
	tool.Draw(r)
	assert.Empty(t, r.Paints)
}
