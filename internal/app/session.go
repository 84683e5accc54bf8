package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/philipparndt/gocalib/internal/config"
	"github.com/philipparndt/gocalib/pkg/calibration"
	"github.com/philipparndt/gocalib/pkg/sched"
	"github.com/philipparndt/gocalib/pkg/settings"
	"github.com/philipparndt/gocalib/pkg/store"
	"github.com/philipparndt/gocalib/pkg/tools"
)

// Session wires the calibration controller to its storage. It is shared by
// the window and the headless commands.
type Session struct {
	Calibration CalibrationState
	Overlay     OverlayState
	Persistence PersistenceState

	store  store.Store
	logger *slog.Logger
}

// SessionOptions customize a session
type SessionOptions struct {
	Scheduler sched.Scheduler
	// Store overrides the configured backend
	Store    store.Store
	OnChange func()
	OnBlur   func()
}

// NewSession opens the configured store, restores the saved points and
// creates the controller
func NewSession(cfg config.Config, logger *slog.Logger, opts SessionOptions) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	density, err := cfg.Density()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	st := opts.Store
	if st == nil {
		st, err = store.Open(cfg.Store.Backend, cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
		}
	}
	points := store.NewPointStore(st)

	var tool tools.Tool
	if cfg.Tool != "" {
		if tool, err = tools.New(cfg.Tool, logger); err != nil {
			return nil, err
		}
	}

	s := &Session{store: st, logger: logger}
	s.Overlay = OverlayState{
		transform: settings.NewHolder(settings.Default()),
		tool:      tool,
	}
	s.Calibration = CalibrationState{
		width:   cfg.Width,
		height:  cfg.Height,
		density: density,
		controller: calibration.New(calibration.Options{
			Width:     cfg.Width,
			Height:    cfg.Height,
			Density:   density,
			Scheduler: opts.Scheduler,
			Settings:  s.Overlay.transform,
			Persister: points,
			Logger:    logger,
			OnChange:  opts.OnChange,
			OnBlur:    opts.OnBlur,
		}),
	}
	s.Persistence = PersistenceState{points: points}
	if p, ok := st.(store.Pather); ok {
		s.Persistence.watchPath = p.Path(store.PointsKey)
	}

	if err := s.Restore(); err != nil {
		logger.Warn("Ignoring stored points", "error", err)
	}
	return s, nil
}

// Restore loads the stored points into the controller. A store without
// points leaves the controller empty.
func (s *Session) Restore() error {
	pts, err := s.Persistence.points.LoadPoints()
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.Calibration.controller.SetPoints(pts); err != nil {
		return err
	}
	s.logger.Debug("Restored calibration points", "count", len(pts))
	return nil
}

// Controller returns the calibration controller
func (s *Session) Controller() *calibration.Controller {
	return s.Calibration.controller
}

// Points returns the point store
func (s *Session) Points() *store.PointStore {
	return s.Persistence.points
}

// Transform returns the overlay transform holder
func (s *Session) Transform() *settings.Holder {
	return s.Overlay.transform
}

// Tool returns the configured overlay tool
func (s *Session) Tool() tools.Tool {
	return s.Overlay.tool
}

// Scene returns the current frame content without any dragger state
func (s *Session) Scene() Scene {
	return Scene{
		Calibration: s.Calibration.controller.Snapshot(),
		Overlay:     s.Overlay.transform.Get(),
		Tool:        s.Overlay.tool,
	}
}

// Close releases the store and the file watcher
func (s *Session) Close() error {
	var errs []error
	if s.Persistence.fileWatcher != nil {
		errs = append(errs, s.Persistence.fileWatcher.Close())
	}
	if c, ok := s.store.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
