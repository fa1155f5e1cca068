package intr

import "sync"

// RoutineFunc is work posted onto the heap's routine queue: a closure the
// owning coroutine's next step picks up and runs on its own goroutine,
// the mechanism cross-coroutine code (a renderer callback, another
// coroutine's message) uses to hand work back to the coroutine that owns
// it instead of touching its state directly.
type RoutineFunc func()

// Request is anything the heap tracks across its four pending-request
// queues (spec component I's async request bridge), whatever its
// RAW/SYNC/ASYNC type. The four queues
// are PENDING, ACTIVATING, HIBERNATING and DYING, matching the request
// lifecycle fetch.Request implements; Heap only needs to know a
// request's current bucket name to move it between queues; fetch owns
// the state machine.
type Request interface {
	ID() uint64
	Bucket() string // "pending" | "activating" | "hibernating" | "dying"
}

// Heap owns every coroutine that belongs to one interpreter instance. A
// single goroutine drains it (Drain), stepping whichever coroutine is
// ready; coroutines never run concurrently with each other, only their
// async requests and timers do background work that later posts back
// through PostRoutine, matching the original's strictly single-threaded
// per-heap execution model.
type Heap struct {
	mu sync.Mutex

	coroutines map[uint64]*Coroutine
	running    *Coroutine
	nextID     uint64

	routineQueue []RoutineFunc

	pending     []Request
	activating  []Request
	hibernating []Request
	dying       []Request

	// onTerminate, if set, runs once for a coroutine whose stack has
	// emptied with no observers left, just before it is dropped from the
	// heap. The fetch package's Bridge hangs its CancelAll here so an
	// async request's owning coroutine going away still tears down every
	// request still outstanding for it (spec §8 scenario 4), without intr
	// needing to import fetch.
	onTerminate func(co *Coroutine)
}

func NewHeap() *Heap {
	return &Heap{coroutines: map[uint64]*Coroutine{}}
}

// Spawn allocates a fresh coroutine id and registers co under it.
func (h *Heap) Spawn(build func(id uint64) *Coroutine) *Coroutine {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.mu.Unlock()

	co := build(id)
	h.mu.Lock()
	h.coroutines[id] = co
	h.mu.Unlock()
	return co
}

// Remove drops a terminated coroutine from the heap.
func (h *Heap) Remove(id uint64) {
	h.mu.Lock()
	delete(h.coroutines, id)
	h.mu.Unlock()
}

// OnTerminate registers fn to run once for each coroutine Drain retires
// (stack empty, no observers left), before it is removed from the heap.
func (h *Heap) OnTerminate(fn func(co *Coroutine)) {
	h.mu.Lock()
	h.onTerminate = fn
	h.mu.Unlock()
}

func (h *Heap) notifyTerminate(co *Coroutine) {
	h.mu.Lock()
	fn := h.onTerminate
	h.mu.Unlock()
	if fn != nil {
		fn(co)
	}
}

// Coroutines returns a snapshot of the currently registered coroutines.
func (h *Heap) Coroutines() []*Coroutine {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Coroutine, 0, len(h.coroutines))
	for _, co := range h.coroutines {
		out = append(out, co)
	}
	return out
}

func (h *Heap) Running() *Coroutine {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func (h *Heap) setRunning(co *Coroutine) {
	h.mu.Lock()
	h.running = co
	h.mu.Unlock()
}

// PostRoutine enqueues fn to run on the heap's draining goroutine,
// letting code outside the step loop (a renderer reply, a timer tick)
// hand work back in without racing the coroutine it touches.
func (h *Heap) PostRoutine(fn RoutineFunc) {
	h.mu.Lock()
	h.routineQueue = append(h.routineQueue, fn)
	h.mu.Unlock()
}

func (h *Heap) drainRoutines() {
	for {
		h.mu.Lock()
		if len(h.routineQueue) == 0 {
			h.mu.Unlock()
			return
		}
		fn := h.routineQueue[0]
		h.routineQueue = h.routineQueue[1:]
		h.mu.Unlock()
		fn()
	}
}

// PostRequest files req into its declared bucket, moving it out of
// whichever bucket it previously occupied.
func (h *Heap) PostRequest(req Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromAllLocked(req)
	switch req.Bucket() {
	case "pending":
		h.pending = append(h.pending, req)
	case "activating":
		h.activating = append(h.activating, req)
	case "hibernating":
		h.hibernating = append(h.hibernating, req)
	case "dying":
		h.dying = append(h.dying, req)
	}
}

func (h *Heap) removeFromAllLocked(req Request) {
	h.pending = removeRequest(h.pending, req)
	h.activating = removeRequest(h.activating, req)
	h.hibernating = removeRequest(h.hibernating, req)
	h.dying = removeRequest(h.dying, req)
}

func removeRequest(list []Request, req Request) []Request {
	for i, r := range list {
		if r.ID() == req.ID() {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// RequestsIn returns a snapshot of the named bucket ("pending",
// "activating", "hibernating", "dying").
func (h *Heap) RequestsIn(bucket string) []Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch bucket {
	case "pending":
		return append([]Request(nil), h.pending...)
	case "activating":
		return append([]Request(nil), h.activating...)
	case "hibernating":
		return append([]Request(nil), h.hibernating...)
	case "dying":
		return append([]Request(nil), h.dying...)
	default:
		return nil
	}
}
