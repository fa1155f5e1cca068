// Package timer implements the interpreter's timer service and the
// reactive $TIMERS built-in set (spec component H), grounded on the
// original's PurcTimer class and its `$TIMERS` native set
// (timer.cpp): named one-shot or repeating timers whose firing posts a
// "fired" message onto the owning coroutine's bus, plus grow/shrink/
// change notifications on the set itself as timers are created,
// destroyed, or have their interval changed.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentflare-ai/hvml-go/bus"
	"github.com/agentflare-ai/hvml-go/clock"
	"github.com/agentflare-ai/hvml-go/value"
	"golang.org/x/time/rate"
)

// DefaultEventInterval is the built-in per-coroutine scan tick the
// original drives expression-variable rescans from when nothing else
// requests a shorter interval.
const DefaultEventInterval = 10 * time.Millisecond

// Entry is one named timer: its interval, whether it repeats, and the
// clock.Timer/Ticker currently backing it.
type Entry struct {
	ID       string
	Interval time.Duration
	Oneshot  bool
	attach   value.Value // arbitrary payload delivered with the fired message

	stop func()
}

// Service owns every timer for one coroutine, plus the $TIMERS reactive
// set that mirrors them as HVML-visible objects.
type Service struct {
	mu      sync.Mutex
	clock   clock.Clock
	bus     *bus.Registry
	entries map[string]*Entry
	set     *value.SetValue

	// scanThrottle bounds how often a storm of near-simultaneous timer
	// fires is allowed to trigger a "change" dispatch on $TIMERS itself,
	// the same backpressure role golang.org/x/time/rate plays for the
	// LLM transport's request pacing.
	scanThrottle *rate.Limiter
}

// NewService creates a timer service driven by clk and posting fired/
// grow/shrink/change messages onto reg.
func NewService(clk clock.Clock, reg *bus.Registry) *Service {
	return &Service{
		clock:        clk,
		bus:          reg,
		entries:      map[string]*Entry{},
		set:          value.MakeSet("id"),
		scanThrottle: rate.NewLimiter(rate.Limit(50), 10),
	}
}

// Set returns the $TIMERS reactive set value, for binding into the
// document's built-in namespace.
func (s *Service) Set() *value.SetValue { return s.set }

// Create registers a new repeating timer, firing every interval, and
// grows $TIMERS with an entry describing it.
func (s *Service) Create(ctx context.Context, id string, interval time.Duration, attach value.Value) error {
	return s.create(ctx, id, interval, false, attach)
}

// CreateOneshot registers a timer that fires exactly once.
func (s *Service) CreateOneshot(ctx context.Context, id string, delay time.Duration, attach value.Value) error {
	return s.create(ctx, id, delay, true, attach)
}

func (s *Service) create(ctx context.Context, id string, interval time.Duration, oneshot bool, attach value.Value) error {
	s.mu.Lock()
	if _, exists := s.entries[id]; exists {
		s.mu.Unlock()
		return fmt.Errorf("timer: id %q already exists", id)
	}
	e := &Entry{ID: id, Interval: interval, Oneshot: oneshot, attach: attach}
	s.entries[id] = e
	s.mu.Unlock()

	s.startLocked(ctx, e)

	obj := value.MakeObject()
	obj.Set(ctx, "id", value.MakeString(id))
	obj.Set(ctx, "interval", value.MakeInt64(interval.Milliseconds()))
	s.set.Add(ctx, obj)
	return nil
}

func (s *Service) startLocked(ctx context.Context, e *Entry) {
	if e.Oneshot {
		t := s.clock.NewTimer(e.Interval)
		stopped := false
		go func() {
			<-t.C()
			s.fire(ctx, e)
		}()
		e.stop = func() {
			if !stopped {
				stopped = true
				t.Stop()
			}
		}
		return
	}
	t := s.clock.NewTicker(e.Interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C():
				s.fire(ctx, e)
			case <-done:
				return
			}
		}
	}()
	e.stop = func() {
		t.Stop()
		close(done)
	}
}

func (s *Service) fire(ctx context.Context, e *Entry) {
	s.bus.Dispatch(ctx, e.ID, "fired", "", e.attach)
	if s.scanThrottle.Allow() {
		s.bus.Dispatch(ctx, s.set, "change", "timer", value.MakeString(e.ID))
	}
	if e.Oneshot {
		s.Destroy(ctx, e.ID)
	}
}

// SetInterval changes a running timer's period, restarting its backing
// clock.Ticker, and fires MsgChange on $TIMERS.
func (s *Service) SetInterval(ctx context.Context, id string, interval time.Duration) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("timer: unknown id %q", id)
	}
	if e.stop != nil {
		e.stop()
	}
	e.Interval = interval
	s.startLocked(ctx, e)
	s.mu.Unlock()

	obj := value.MakeObject()
	obj.Set(ctx, "id", value.MakeString(id))
	obj.Set(ctx, "interval", value.MakeInt64(interval.Milliseconds()))
	s.set.Add(ctx, obj)
	return nil
}

// Stop halts a timer without removing it from $TIMERS.
func (s *Service) Stop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok && e.stop != nil {
		e.stop()
	}
}

// Destroy stops and removes a timer, shrinking $TIMERS.
func (s *Service) Destroy(ctx context.Context, id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		if e.stop != nil {
			e.stop()
		}
		delete(s.entries, id)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	obj := value.MakeObject()
	obj.Set(ctx, "id", value.MakeString(id))
	s.set.Remove(ctx, obj)
}

// SetAttach replaces the arbitrary payload delivered with an entry's
// fired message.
func (s *Service) SetAttach(id string, v value.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.attach = v
	}
}

func (s *Service) GetAttach(id string) (value.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.attach, true
}
