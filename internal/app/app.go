// Package app hosts the calibration window.
package app

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/philipparndt/gocalib/internal/config"
	"github.com/philipparndt/gocalib/pkg/dragger"
	"github.com/philipparndt/gocalib/pkg/sched"
	"github.com/philipparndt/gocalib/pkg/settings"
	"github.com/philipparndt/gocalib/pkg/watcher"
)

// AppID identifies the application to fyne preferences and storage
const AppID = "io.github.philipparndt.gocalib"

// ReloadDebounce is how long file changes settle before the points are reloaded
const ReloadDebounce = 100 * time.Millisecond

// App is the calibration window and everything it drives
type App struct {
	session *Session
	ui      UIState
	logger  *slog.Logger
}

// New creates the window on the given fyne application. A nil scheduler runs
// timer callbacks on the fyne UI goroutine.
func New(fa fyne.App, cfg config.Config, logger *slog.Logger, scheduler sched.Scheduler) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if scheduler == nil {
		scheduler = sched.WithDispatcher(fyne.Do)
	}
	a := &App{logger: logger}

	sess, err := NewSession(cfg, logger, SessionOptions{
		Scheduler: scheduler,
		OnChange:  a.changed,
		OnBlur:    a.blur,
	})
	if err != nil {
		return nil, err
	}
	a.session = sess

	sess.Overlay.dragger = dragger.New(dragger.Options{
		Density:   sess.Calibration.density,
		Tool:      sess.Overlay.tool,
		Settings:  sess.Overlay.transform,
		Scheduler: scheduler,
		Logger:    logger,
		OnChange:  a.refresh,
	})

	sess.Overlay.transform.Subscribe(func(settings.Transform) { a.refresh() })

	a.ui.window = fa.NewWindow("gocalib")
	a.ui.surface = NewSurface(sess.Calibration, sess.Overlay, logger)
	a.ui.surface.onToggleCalibrating = func(on bool) {
		a.ui.window.SetTitle(title(on))
	}
	a.ui.surface.requestFocus = a.focus
	a.ui.surface.syncOverlay()

	a.ui.window.SetTitle(title(sess.Calibration.controller.Calibrating()))
	a.ui.window.SetContent(a.ui.surface)
	a.ui.window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	a.ui.window.SetFullScreen(cfg.Window.Fullscreen)
	a.ui.window.SetOnClosed(func() {
		if err := sess.Close(); err != nil {
			logger.Warn("Failed to close session", "error", err)
		}
	})

	if sess.Persistence.watchPath != "" {
		if err := a.watch(scheduler); err != nil {
			logger.Warn("External point changes will not be picked up", "error", err)
		}
	}
	return a, nil
}

// Run opens the window and blocks until it is closed
func Run(cfg config.Config, logger *slog.Logger) error {
	fa := fyneapp.NewWithID(AppID)
	a, err := New(fa, cfg, logger, nil)
	if err != nil {
		return err
	}
	a.logger.Info("Starting calibration window",
		"width", cfg.Width, "height", cfg.Height, "unit", cfg.Unit,
		"store", cfg.Store.Backend, "points", len(a.session.Controller().Points()))
	a.focus()
	a.ui.window.ShowAndRun()
	return nil
}

// Window returns the application window
func (a *App) Window() fyne.Window {
	return a.ui.window
}

// Surface returns the drawing surface
func (a *App) Surface() *Surface {
	return a.ui.surface
}

// Session returns the calibration session
func (a *App) Session() *Session {
	return a.session
}

func title(calibrating bool) string {
	if calibrating {
		return "gocalib - calibrating"
	}
	return "gocalib"
}

// changed runs after every calibration change
func (a *App) changed() {
	if a.ui.surface == nil {
		return
	}
	a.ui.surface.syncOverlay()
	a.ui.surface.Refresh()
}

func (a *App) refresh() {
	if a.ui.surface != nil {
		a.ui.surface.Refresh()
	}
}

func (a *App) focus() {
	if a.ui.window == nil || a.ui.surface == nil {
		return
	}
	a.ui.window.Canvas().Focus(a.ui.surface)
}

// blur releases keyboard focus after Escape cleared the selection
func (a *App) blur() {
	if a.ui.window != nil {
		a.ui.window.Canvas().Unfocus()
	}
}

// watch reloads the points when another process rewrites the store file
func (a *App) watch(scheduler sched.Scheduler) error {
	fw, err := watcher.NewFileWatcher(ReloadDebounce, a.logger)
	if err != nil {
		return err
	}
	fw.SetScheduler(scheduler)
	path := a.session.Persistence.watchPath
	if err := fw.Watch([]string{path}, func(string) { a.reload() }); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	fw.Start()
	a.session.Persistence.fileWatcher = fw
	return nil
}

// reload applies externally stored points unless they match the current set
func (a *App) reload() {
	pts, err := a.session.Points().LoadPoints()
	if err != nil {
		a.logger.Warn("Failed to reload points", "error", err)
		return
	}
	if slices.Equal(pts, a.session.Controller().Points()) {
		return
	}
	if err := a.session.Controller().SetPoints(pts); err != nil {
		a.logger.Warn("Rejected reloaded points", "error", err)
		return
	}
	a.logger.Info("Reloaded calibration points", "count", len(pts))
}
