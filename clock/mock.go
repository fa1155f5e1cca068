package clock

import (
	"sync"
	"time"
)

// Mock is a manually-advanced clock for deterministic timer and scheduler
// tests, the same role the teacher's tests fill with ad hoc clock doubles
// at each call site (env, slack, stdin all define their own). This one is
// shared across packages instead of being redefined per package.
type Mock struct {
	mu  sync.Mutex
	now time.Time

	firersMu sync.Mutex
	firers   []*mockFirer
}

func NewMock(start time.Time) *Mock { return &Mock{now: start} }

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) Since(t time.Time) time.Duration { return m.Now().Sub(t) }

func (m *Mock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	t := m.NewTimer(d)
	go func() {
		<-t.C()
		ch <- m.Now()
	}()
	return ch
}

// Advance moves the mock clock forward and fires any mock timers/tickers
// whose deadline has passed.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	due := m.now
	m.mu.Unlock()

	m.firersMu.Lock()
	var remaining []*mockFirer
	for _, f := range m.firers {
		if f.fireIfDue(due) {
			if f.repeat > 0 {
				f.next = f.next.Add(f.repeat)
				remaining = append(remaining, f)
			}
			continue
		}
		remaining = append(remaining, f)
	}
	m.firers = remaining
	m.firersMu.Unlock()
}

type mockFirer struct {
	next   time.Time
	repeat time.Duration
	ch     chan time.Time
}

func (f *mockFirer) fireIfDue(now time.Time) bool {
	if now.Before(f.next) {
		return false
	}
	select {
	case f.ch <- now:
	default:
	}
	return true
}

func (m *Mock) NewTimer(d time.Duration) Timer {
	f := &mockFirer{next: m.Now().Add(d), ch: make(chan time.Time, 1)}
	m.firersMu.Lock()
	m.firers = append(m.firers, f)
	m.firersMu.Unlock()
	return &mockTimer{m: m, f: f}
}

func (m *Mock) NewTicker(d time.Duration) Ticker {
	f := &mockFirer{next: m.Now().Add(d), repeat: d, ch: make(chan time.Time, 1)}
	m.firersMu.Lock()
	m.firers = append(m.firers, f)
	m.firersMu.Unlock()
	return &mockTicker{m: m, f: f}
}

type mockTimer struct {
	m *Mock
	f *mockFirer
}

func (t *mockTimer) C() <-chan time.Time { return t.f.ch }
func (t *mockTimer) Stop() bool          { return t.m.removeFirer(t.f) }
func (t *mockTimer) Reset(d time.Duration) bool {
	ok := t.m.removeFirer(t.f)
	t.f.next = t.m.Now().Add(d)
	t.m.firersMu.Lock()
	t.m.firers = append(t.m.firers, t.f)
	t.m.firersMu.Unlock()
	return ok
}

type mockTicker struct {
	m *Mock
	f *mockFirer
}

func (t *mockTicker) C() <-chan time.Time { return t.f.ch }
func (t *mockTicker) Stop()               { t.m.removeFirer(t.f) }
func (t *mockTicker) Reset(d time.Duration) {
	t.m.removeFirer(t.f)
	t.f.next = t.m.Now().Add(d)
	t.f.repeat = d
	t.m.firersMu.Lock()
	t.m.firers = append(t.m.firers, t.f)
	t.m.firersMu.Unlock()
}

func (m *Mock) removeFirer(target *mockFirer) bool {
	m.firersMu.Lock()
	defer m.firersMu.Unlock()
	for i, f := range m.firers {
		if f == target {
			m.firers = append(m.firers[:i], m.firers[i+1:]...)
			return true
		}
	}
	return false
}
