package calibration

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/philipparndt/gocalib/pkg/geometry"
	"github.com/philipparndt/gocalib/pkg/homography"
	"github.com/philipparndt/gocalib/pkg/keys"
	"github.com/philipparndt/gocalib/pkg/sched"
	"github.com/philipparndt/gocalib/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	mu    sync.Mutex
	saved [][]geometry.Point
}

func (r *recordingPersister) SavePoints(points []geometry.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, points)
	return nil
}

func (r *recordingPersister) last() []geometry.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return nil
	}
	return r.saved[len(r.saved)-1]
}

// stalledScheduler never fires its timers
type stalledScheduler struct {
	*sched.Fake
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func (s stalledScheduler) AfterFunc(time.Duration, func()) sched.Timer {
	return noopTimer{}
}

var unitSquare = []geometry.Point{
	{X: 0, Y: 0},
	{X: 100, Y: 0},
	{X: 100, Y: 100},
	{X: 0, Y: 100},
}

type fixture struct {
	ctrl      *Controller
	clock     *sched.Fake
	persister *recordingPersister
	settings  *settings.Holder
	blurred   int
	changes   int
}

func newFixture(t *testing.T, scheduler sched.Scheduler) *fixture {
	t.Helper()
	f := &fixture{
		clock:     sched.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		persister: &recordingPersister{},
		settings:  settings.NewHolder(settings.Default()),
	}
	if scheduler == nil {
		scheduler = f.clock
	}
	f.ctrl = New(Options{
		Width:     24,
		Height:    18,
		Density:   96,
		Scheduler: scheduler,
		Settings:  f.settings,
		Persister: f.persister,
		OnChange:  func() { f.changes++ },
		OnBlur:    func() { f.blurred++ },
	})
	f.ctrl.SetCalibrating(true)
	return f
}

func (f *fixture) placeSquare(t *testing.T) {
	t.Helper()
	for _, p := range unitSquare {
		require.NoError(t, f.ctrl.PointerDown(p))
		f.ctrl.PointerUp()
	}
	require.Len(t, f.ctrl.Points(), 4)
}

func TestPlacingAppendsPoints(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 1, Y: 2}))
	assert.IsType(t, Placing{}, f.ctrl.State())
	f.ctrl.PointerUp()
	assert.IsType(t, Idle{}, f.ctrl.State())
	assert.Equal(t, []geometry.Point{{X: 1, Y: 2}}, f.persister.last())

	_, ok := f.ctrl.Homography()
	assert.False(t, ok)

	f.placeSquare(t)
	assert.Equal(t, append([]geometry.Point{{X: 1, Y: 2}}, unitSquare[:3]...), f.ctrl.Points())
	_, ok = f.ctrl.Homography()
	assert.True(t, ok)
}

func TestDragCornerScenario(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 5, Y: 5}))
	assert.Equal(t, 0, f.ctrl.PointToModify())
	drag, ok := f.ctrl.State().(DraggingCorner)
	require.True(t, ok)
	assert.Equal(t, 0, drag.Index)

	// the corner keeps its offset to the grab position
	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 50, Y: 50}, true))
	assert.Equal(t, geometry.Point{X: 45, Y: 45}, f.ctrl.Points()[0])

	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 55, Y: 55}, true))
	assert.Equal(t, geometry.Point{X: 50, Y: 50}, f.ctrl.Points()[0])

	f.ctrl.PointerUp()
	assert.Equal(t, []geometry.Point{
		{X: 50, Y: 50},
		{X: 100, Y: 0},
		{X: 100, Y: 100},
		{X: 0, Y: 100},
	}, f.persister.last())
	assert.IsType(t, Idle{}, f.ctrl.State())
	assert.Equal(t, 0, f.ctrl.PointToModify(), "mouse release keeps the selection")
}

func TestGrabOnCornerDoesNotJump(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 95, Y: 3}))
	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 95, Y: 3}, true))
	assert.Equal(t, geometry.Point{X: 100, Y: 0}, f.ctrl.Points()[1])
}

func TestPrecisionActivatesAfterDelay(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 5, Y: 5}))
	f.clock.Advance(PrecisionDelay)

	drag := f.ctrl.State().(DraggingCorner)
	assert.True(t, drag.Precision)
	assert.True(t, drag.Anchored)
	assert.Equal(t, geometry.Point{X: 0, Y: 0}, drag.Anchor)
	assert.True(t, f.ctrl.Snapshot().Precision)

	// displacement is divided by the precision ratio
	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 30, Y: 5}, true))
	assert.InDelta(t, 5.0, f.ctrl.Points()[0].X, 1e-9)
	assert.InDelta(t, 0.0, f.ctrl.Points()[0].Y, 1e-9)
}

func TestPrecisionJumpFree(t *testing.T) {
	paths := []geometry.Point{
		{X: 0, Y: 0},
		{X: 2.4, Y: 3.2},
		{X: -4, Y: 1},
		{X: 0.5, Y: -4.5},
		{X: 3, Y: 3},
	}

	for _, d := range paths {
		f := newFixture(t, nil)
		f.placeSquare(t)

		start := geometry.Point{X: 5, Y: 5}
		require.NoError(t, f.ctrl.PointerDown(start))
		p := start.Add(d)
		require.NoError(t, f.ctrl.PointerMove(p, true))
		before := f.ctrl.Points()[0]

		f.clock.Advance(PrecisionDelay)
		require.True(t, f.ctrl.State().(DraggingCorner).Precision)
		assert.Equal(t, before, f.ctrl.Points()[0], "activation itself does not move the point")

		require.NoError(t, f.ctrl.PointerMove(p, true))
		after := f.ctrl.Points()[0]

		jump := before.Distance(after)
		assert.LessOrEqual(t, jump, d.Length()/PrecisionRatio+1e-9)
		assert.Less(t, jump, 1.0)
	}
}

func TestPrecisionActivatesOnMoveAfterDelay(t *testing.T) {
	f := newFixture(t, nil)
	f.ctrl = New(Options{
		Width: 24, Height: 18, Density: 96,
		Scheduler: stalledScheduler{f.clock},
		Persister: f.persister,
	})
	f.ctrl.SetCalibrating(true)
	f.placeSquare(t)

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 5, Y: 5}))
	f.clock.Advance(PrecisionDelay + time.Millisecond)
	assert.False(t, f.ctrl.State().(DraggingCorner).Precision)

	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 10, Y: 5}, true))
	drag := f.ctrl.State().(DraggingCorner)
	assert.True(t, drag.Precision)
	assert.InDelta(t, 1.0, f.ctrl.Points()[0].X, 1e-9)
}

func TestPrecisionDisabledBeyondThreshold(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 5, Y: 5}))
	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 30, Y: 5}, true))
	assert.True(t, f.ctrl.State().(DraggingCorner).PrecisionDisabled)
	assert.Equal(t, 0, f.clock.Pending())

	// coming back within the threshold does not re-enable precision
	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 6, Y: 5}, true))
	f.clock.Advance(time.Second)
	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 7, Y: 5}, true))
	assert.False(t, f.ctrl.State().(DraggingCorner).Precision)
	assert.Equal(t, geometry.Point{X: 2, Y: 0}, f.ctrl.Points()[0])
}

func TestPrecisionTimerAfterReleaseIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 5, Y: 5}))
	f.ctrl.PointerUp()
	changes := f.changes

	f.clock.Advance(time.Second)
	assert.IsType(t, Idle{}, f.ctrl.State())
	assert.False(t, f.ctrl.Snapshot().Precision)
	assert.Equal(t, changes, f.changes)
}

func TestPrecisionTimerOfEarlierDragIsIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 5, Y: 5}))
	f.clock.Advance(300 * time.Millisecond)
	f.ctrl.PointerUp()
	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 5, Y: 5}))

	f.clock.Advance(300 * time.Millisecond)
	assert.False(t, f.ctrl.State().(DraggingCorner).Precision)

	f.clock.Advance(200 * time.Millisecond)
	assert.True(t, f.ctrl.State().(DraggingCorner).Precision)
}

func TestPanBakesOffset(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)
	f.ctrl.KeyDown(keys.Tab, false)
	require.Equal(t, 0, f.ctrl.PointToModify())

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 500, Y: 500}))
	assert.IsType(t, Panning{}, f.ctrl.State())
	assert.Equal(t, -1, f.ctrl.PointToModify())

	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 510, Y: 520}, true))
	assert.Equal(t, geometry.Point{X: 10, Y: 20}, f.ctrl.Snapshot().Offset)
	assert.Equal(t, unitSquare, f.ctrl.Points())

	f.ctrl.PointerUp()
	expected := []geometry.Point{
		{X: 10, Y: 20},
		{X: 110, Y: 20},
		{X: 110, Y: 120},
		{X: 10, Y: 120},
	}
	assert.Equal(t, expected, f.ctrl.Points())
	assert.Equal(t, expected, f.persister.last())
	assert.Equal(t, geometry.Point{}, f.ctrl.Snapshot().Offset)
}

func TestMoveWithoutButtonReleases(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)
	saves := len(f.persister.saved)

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 5, Y: 5}))
	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 20, Y: 5}, false))
	assert.IsType(t, Idle{}, f.ctrl.State())
	assert.Equal(t, CursorCorner, f.ctrl.Cursor())
	assert.Len(t, f.persister.saved, saves+1)

	// further hover moves do not persist again
	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 400, Y: 400}, false))
	assert.Equal(t, CursorPan, f.ctrl.Cursor())
	assert.Len(t, f.persister.saved, saves+1)
}

func TestHoverOnEmptySetIsPan(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.ctrl.Hover(geometry.Point{X: 1, Y: 1}))
	assert.Equal(t, CursorPan, f.ctrl.Cursor())
	assert.IsType(t, Idle{}, f.ctrl.State())
}

func TestTouchEndClearsSelection(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)

	require.NoError(t, f.ctrl.TouchStart(geometry.Point{X: 98, Y: 98}))
	require.NoError(t, f.ctrl.TouchMove(geometry.Point{X: 100, Y: 100}))
	assert.Equal(t, geometry.Point{X: 102, Y: 102}, f.ctrl.Points()[2])

	f.ctrl.TouchEnd()
	assert.Equal(t, -1, f.ctrl.PointToModify())
	assert.Equal(t, geometry.Point{X: 102, Y: 102}, f.persister.last()[2])
}

func TestTabCyclesSelection(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)

	var seen []int
	for i := 0; i < 5; i++ {
		assert.True(t, f.ctrl.KeyDown(keys.Tab, false))
		seen = append(seen, f.ctrl.PointToModify())
	}
	assert.Equal(t, []int{0, 1, 2, 3, 0}, seen)
}

func TestShiftTabTogglesFourCorners(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)
	f.ctrl.KeyDown(keys.Tab, false)
	f.ctrl.KeyDown(keys.Tab, false)
	require.Equal(t, 1, f.ctrl.PointToModify())
	require.False(t, f.settings.Get().IsFourCorners)

	assert.True(t, f.ctrl.KeyDown(keys.Tab, true))
	assert.True(t, f.settings.Get().IsFourCorners)
	assert.Equal(t, 1, f.ctrl.PointToModify())
}

func TestEscapeClearsSelection(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)

	assert.False(t, f.ctrl.KeyDown(keys.Escape, false))
	assert.Equal(t, 0, f.blurred)

	f.ctrl.KeyDown(keys.Tab, false)
	assert.True(t, f.ctrl.KeyDown(keys.Escape, false))
	assert.Equal(t, -1, f.ctrl.PointToModify())
	assert.Equal(t, 1, f.blurred)
}

func TestSelectionChangeMidDragPersists(t *testing.T) {
	end := map[string]func(c *Controller){
		"tab":    func(c *Controller) { c.KeyDown(keys.Tab, false) },
		"escape": func(c *Controller) { c.KeyDown(keys.Escape, false) },
		"leave":  func(c *Controller) { c.SetCalibrating(false) },
	}
	for name, finish := range end {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.placeSquare(t)

			require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 5, Y: 5}))
			f.clock.Advance(PrecisionDelay)
			require.True(t, f.ctrl.Snapshot().Precision)
			require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 5, Y: 5}, true))

			finish(f.ctrl)
			assert.IsType(t, Idle{}, f.ctrl.State())
			assert.False(t, f.ctrl.Snapshot().Precision)
			assert.Zero(t, f.clock.Pending())
			require.NotNil(t, f.persister.last())
			assert.Equal(t, f.ctrl.Points(), f.persister.last())

			saved := len(f.persister.saved)
			f.ctrl.PointerUp()
			assert.Len(t, f.persister.saved, saved, "release after the drag ended saves nothing")
		})
	}
}

func TestTabMidDragPersistsMovedCorner(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 5, Y: 5}))
	require.NoError(t, f.ctrl.PointerMove(geometry.Point{X: 55, Y: 55}, true))
	require.True(t, f.ctrl.KeyDown(keys.Tab, false))

	assert.Equal(t, 1, f.ctrl.PointToModify())
	assert.Equal(t, geometry.Point{X: 50, Y: 50}, f.persister.last()[0])
	assert.IsType(t, Idle{}, f.ctrl.State())
	assert.Zero(t, f.clock.Pending())

	// the precision timer of the ended drag never fires
	f.clock.Advance(PrecisionDelay)
	assert.IsType(t, Idle{}, f.ctrl.State())
}

func TestArrowNudgeMovesSelectedCorner(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)
	m, ok := f.ctrl.Homography()
	require.True(t, ok)

	assert.False(t, f.ctrl.KeyDown(keys.ArrowRight, false), "no selection, nothing to nudge")

	f.ctrl.KeyDown(keys.Tab, false)
	saves := len(f.persister.saved)
	assert.True(t, f.ctrl.KeyDown(keys.ArrowRight, false))

	expected := PerspectiveOffset(m, 0, geometry.Point{X: 1, Y: 0}, 24, 18, 96)
	got := f.ctrl.Points()[0]
	assert.InDelta(t, expected.X, got.X, 1e-9)
	assert.InDelta(t, expected.Y, got.Y, 1e-9)
	assert.Len(t, f.persister.saved, saves)

	f.ctrl.KeyUp(keys.ArrowRight)
	assert.Len(t, f.persister.saved, saves+1)
	assert.Equal(t, f.ctrl.Points(), f.persister.last())
}

func TestNudgePhysicalDistanceInvariance(t *testing.T) {
	square, err := homography.RectToQuad(unitSquare, 24, 18, 96)
	require.NoError(t, err)
	skewed, err := homography.RectToQuad([]geometry.Point{
		{X: 100, Y: 80},
		{X: 900, Y: 40},
		{X: 1000, Y: 700},
		{X: 60, Y: 620},
	}, 24, 18, 96)
	require.NoError(t, err)

	vector := geometry.Point{X: 3, Y: -1}
	for idx := 0; idx < 4; idx++ {
		var offsets []geometry.Point
		for _, h := range []geometry.Matrix{square, skewed} {
			corner := homography.Rectangle(24, 18, 96)[idx]
			screen := geometry.TransformPoint(corner, h)
			delta := PerspectiveOffset(h, idx, vector, 24, 18, 96)

			inv, err := h.Inverse()
			require.NoError(t, err)
			moved := geometry.TransformPoint(screen.Add(delta), inv)
			offsets = append(offsets, moved.Sub(corner))
		}
		assert.InDelta(t, offsets[0].X, offsets[1].X, 1e-6)
		assert.InDelta(t, offsets[0].Y, offsets[1].Y, 1e-6)
		// 1/40 inch per step at 96 points per inch
		assert.InDelta(t, 3*2.4, offsets[0].X, 1e-6)
		assert.InDelta(t, -2.4, offsets[0].Y, 1e-6)
	}
}

func TestDegenerateKeepsLastHomography(t *testing.T) {
	f := newFixture(t, nil)
	f.placeSquare(t)
	valid, _ := f.ctrl.Homography()

	require.NoError(t, f.ctrl.SetPoints([]geometry.Point{
		{X: 0, Y: 0},
		{X: 50, Y: 0},
		{X: 100, Y: 0},
		{X: 0, Y: 100},
	}))
	assert.ErrorIs(t, f.ctrl.LastError(), homography.ErrDegenerate)

	m, ok := f.ctrl.Homography()
	assert.True(t, ok)
	assert.Equal(t, valid, m)
}

func TestNonFiniteInputRejected(t *testing.T) {
	f := newFixture(t, nil)

	err := f.ctrl.PointerDown(geometry.Point{X: math.NaN(), Y: 0})
	assert.ErrorIs(t, err, ErrNonFinite)
	assert.Empty(t, f.ctrl.Points())

	assert.ErrorIs(t, f.ctrl.SetPoints([]geometry.Point{{X: math.Inf(1)}}), ErrNonFinite)
}

func TestIgnoresPointerWhenNotCalibrating(t *testing.T) {
	f := newFixture(t, nil)
	f.ctrl.SetCalibrating(false)

	require.NoError(t, f.ctrl.PointerDown(geometry.Point{X: 1, Y: 1}))
	assert.Empty(t, f.ctrl.Points())
	assert.False(t, f.ctrl.KeyDown(keys.Tab, false))
}
