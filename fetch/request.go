// Package fetch implements the interpreter's asynchronous request bridge
// (spec component I): the state machine tracking one outstanding
// RAW/SYNC/ASYNC request, cancellation on coroutine teardown, and the
// transports (plain HTTP, LLM chat completion) requests run over.
package fetch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/agentflare-ai/hvml-go/intr"
	"github.com/agentflare-ai/hvml-go/value"
)

// Type distinguishes how a request relates to its owner: a RAW request
// is bound to no frame, a SYNC request belongs to the frame that issued
// it, and an ASYNC request belongs to its owning coroutine as a whole.
// Request records the type; nothing in this package acts on it.
type Type int

const (
	TypeRaw Type = iota
	TypeSync
	TypeAsync
)

// State is a request's position in its lifecycle, the four buckets the
// heap's request queues are named after.
type State int

const (
	StatePending State = iota
	StateActivating
	StateHibernating
	StateCancelled
	StateDying
	StateDone
)

func (s State) bucket() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActivating:
		return "activating"
	case StateHibernating:
		return "hibernating"
	default:
		return "dying"
	}
}

// Callbacks are invoked as a request progresses; Owner code supplies
// whichever it needs and leaves the rest nil.
type Callbacks struct {
	OnSuccess func(ctx context.Context, result value.Value)
	OnFailure func(ctx context.Context, err error)
	OnCancel  func(ctx context.Context)
}

var nextID uint64

// Request tracks one outstanding fetch, registered on the owning
// coroutine's heap so that teardown (Cancel) can find and cancel every
// request still in flight for a dying coroutine.
type Request struct {
	mu sync.Mutex

	id    uint64
	Type  Type
	Owner *intr.Coroutine
	state State

	refcount int32

	Callbacks Callbacks
	cancel    context.CancelFunc
	bridge    *Bridge
}

// New allocates a request owned by co, of the given Type.
func New(co *intr.Coroutine, typ Type, cb Callbacks) *Request {
	id := atomic.AddUint64(&nextID, 1)
	return &Request{id: id, Type: typ, Owner: co, state: StatePending, refcount: 1, Callbacks: cb}
}

func (r *Request) ID() uint64 { return r.id }

func (r *Request) Bucket() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.bucket()
}

func (r *Request) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Request) setState(ctx context.Context, h *intr.Heap, s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
	if h != nil {
		h.PostRequest(r)
	}
}

// Activate transitions a pending request to activating, the point at
// which its transport work actually starts running.
func (r *Request) Activate(ctx context.Context, h *intr.Heap) {
	r.setState(ctx, h, StateActivating)
}

// Hibernate parks an activating request (e.g. an ASYNC request whose
// owning coroutine has gone idle waiting on something else) without
// cancelling its underlying transport call.
func (r *Request) Hibernate(ctx context.Context, h *intr.Heap) {
	r.setState(ctx, h, StateHibernating)
}

// Succeed delivers result through OnSuccess and retires the request.
func (r *Request) Succeed(ctx context.Context, h *intr.Heap, result value.Value) {
	r.setState(ctx, h, StateDying)
	if r.Callbacks.OnSuccess != nil {
		r.Callbacks.OnSuccess(ctx, result)
	}
	r.finish(h)
}

// Fail delivers err through OnFailure and retires the request.
func (r *Request) Fail(ctx context.Context, h *intr.Heap, err error) {
	r.setState(ctx, h, StateDying)
	if r.Callbacks.OnFailure != nil {
		r.Callbacks.OnFailure(ctx, err)
	}
	r.finish(h)
}

// Cancel aborts an in-flight request (invoking its context.CancelFunc if
// one was attached) and notifies OnCancel. Cancel is what a coroutine's
// teardown calls on every request it still owns.
func (r *Request) Cancel(ctx context.Context, h *intr.Heap) {
	r.mu.Lock()
	if r.state == StateDone {
		r.mu.Unlock()
		return
	}
	r.state = StateCancelled
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if r.Callbacks.OnCancel != nil {
		r.Callbacks.OnCancel(ctx)
	}
	r.finish(h)
}

func (r *Request) finish(h *intr.Heap) {
	r.mu.Lock()
	r.state = StateDone
	bridge := r.bridge
	r.mu.Unlock()
	if h != nil {
		h.PostRequest(r)
	}
	if bridge != nil {
		bridge.Forget(r)
	}
}

// AttachCancel records the context.CancelFunc backing this request's
// transport call so Cancel can abort it.
func (r *Request) AttachCancel(cancel context.CancelFunc) {
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
}

var _ intr.Request = (*Request)(nil)
