// Package clock carries the time abstraction the coroutine scheduler and
// the timer service run on, generalized from the teacher's root-level
// Clock/Timer/Ticker interfaces (types.go). The teacher's pack declares
// the interfaces but ships no concrete implementation alongside them
// (only test doubles at call sites), so Real below is supplied
// fresh in the same shape, wrapping the standard time package the way
// the interface's doc comments describe.
package clock

import "time"

// Clock abstracts wall-clock time so the scheduler's event timer and the
// $TIMERS built-in can be driven by a synthetic clock in tests.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	After(d time.Duration) <-chan time.Time
	NewTimer(d time.Duration) Timer
	NewTicker(d time.Duration) Ticker
}

// Timer abstracts time.Timer.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

// Ticker abstracts time.Ticker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
	Reset(d time.Duration)
}

type realClock struct{}

// Real returns the process wall-clock.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time                  { return time.Now() }
func (realClock) Since(t time.Time) time.Duration  { return time.Since(t) }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) NewTimer(d time.Duration) Timer {
	return &realTimer{t: time.NewTimer(d)}
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTimer struct{ t *time.Timer }

func (r *realTimer) C() <-chan time.Time      { return r.t.C }
func (r *realTimer) Stop() bool               { return r.t.Stop() }
func (r *realTimer) Reset(d time.Duration) bool { return r.t.Reset(d) }

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time       { return r.t.C }
func (r *realTicker) Stop()                     { r.t.Stop() }
func (r *realTicker) Reset(d time.Duration)     { r.t.Reset(d) }
