// Package sched provides cancellable deferred callbacks for event-driven controllers.
package sched

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Timer is a pending callback that can be stopped
type Timer interface {
	Stop() bool
}

// Scheduler supplies the current time and deferred callbacks
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct {
	dispatch func(func())
}

// Real returns a scheduler backed by time.AfterFunc
func Real() Scheduler {
	return realScheduler{}
}

// WithDispatcher returns a real scheduler whose callbacks are handed to dispatch,
// typically to run them on the UI goroutine
func WithDispatcher(dispatch func(func())) Scheduler {
	return realScheduler{dispatch: dispatch}
}

func (s realScheduler) Now() time.Time {
	return time.Now()
}

func (s realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	if s.dispatch == nil {
		return time.AfterFunc(d, f)
	}
	return time.AfterFunc(d, func() { s.dispatch(f) })
}

// Token identifies one scheduled callback
type Token = uuid.UUID

// Deferred holds at most one pending callback. Scheduling a new callback
// cancels the previous one, and a callback whose token is no longer current
// never runs.
type Deferred struct {
	mu    sync.Mutex
	s     Scheduler
	token Token
	timer Timer
}

// NewDeferred creates a deferred slot on the given scheduler
func NewDeferred(s Scheduler) *Deferred {
	return &Deferred{s: s}
}

// Schedule cancels any pending callback and schedules f after delay.
// The returned token is passed to f so the owner can verify it is still current.
func (d *Deferred) Schedule(delay time.Duration, f func(Token)) Token {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	token := uuid.New()
	d.token = token
	d.timer = d.s.AfterFunc(delay, func() {
		if !d.claim(token) {
			return
		}
		f(token)
	})
	return token
}

// claim consumes the pending slot if token is still current
func (d *Deferred) claim(token Token) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.token != token {
		return false
	}
	d.token = uuid.Nil
	d.timer = nil
	return true
}

// Cancel stops the pending callback, if any
func (d *Deferred) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Pending reports whether a callback is waiting to run
func (d *Deferred) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token != uuid.Nil
}

func (d *Deferred) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.token = uuid.Nil
}
