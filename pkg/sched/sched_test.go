package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestDeferredRunsAfterDelay(t *testing.T) {
	clock := NewFake(epoch)
	d := NewDeferred(clock)

	fired := 0
	var token Token
	token = d.Schedule(500*time.Millisecond, func(got Token) {
		assert.Equal(t, token, got)
		fired++
	})
	assert.True(t, d.Pending())

	clock.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, fired)

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.False(t, d.Pending())
}

func TestDeferredScheduleReplacesPending(t *testing.T) {
	clock := NewFake(epoch)
	d := NewDeferred(clock)

	var calls []string
	d.Schedule(100*time.Millisecond, func(Token) { calls = append(calls, "first") })
	d.Schedule(100*time.Millisecond, func(Token) { calls = append(calls, "second") })

	assert.Equal(t, 1, clock.Pending())
	clock.Advance(time.Second)
	assert.Equal(t, []string{"second"}, calls)
}

func TestDeferredCancel(t *testing.T) {
	clock := NewFake(epoch)
	d := NewDeferred(clock)

	fired := false
	d.Schedule(100*time.Millisecond, func(Token) { fired = true })
	d.Cancel()

	clock.Advance(time.Second)
	assert.False(t, fired)
	assert.False(t, d.Pending())
}

func TestFakeAdvancesClock(t *testing.T) {
	clock := NewFake(epoch)
	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, epoch.Add(1500*time.Millisecond), clock.Now())
}

func TestRealSchedulerDispatches(t *testing.T) {
	done := make(chan struct{})
	dispatched := make(chan struct{}, 1)

	s := WithDispatcher(func(f func()) {
		dispatched <- struct{}{}
		f()
	})
	s.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Len(t, dispatched, 1)
}
