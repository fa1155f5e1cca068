package intr

import (
	"context"
	"sync"

	"github.com/agentflare-ai/hvml-go/bus"
	"github.com/agentflare-ai/hvml-go/diag"
	"github.com/agentflare-ai/hvml-go/expr"
	"github.com/agentflare-ai/hvml-go/scope"
	"github.com/agentflare-ai/hvml-go/value"
	"github.com/agentflare-ai/hvml-go/vdom"
)

// CoState is a coroutine's scheduling state, the Go translation of the
// original's `enum pcintr_coroutine_state`.
type CoState int

const (
	CoReady CoState = iota
	CoRunning
	CoWaiting
	CoStopped
)

func (s CoState) String() string {
	switch s {
	case CoReady:
		return "ready"
	case CoRunning:
		return "running"
	case CoWaiting:
		return "waiting"
	case CoStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Coroutine is one document's independent execution thread: its frame
// stack, its document-level scope, its observer registry, and the
// exception it is currently unwinding, if any.
type Coroutine struct {
	mu sync.Mutex

	ID    uint64
	State CoState
	Exit  bool

	Stack      *Stack
	DocScope   *scope.Map
	ScopeArena *scope.Arena
	Document   vdom.Document
	Observers  *bus.Registry

	exception *diag.Exception
	tracer    diag.Tracer

	variables []*expr.Variable

	heap *Heap
}

// NewCoroutine creates a coroutine over doc, rooted at a fresh document
// scope, ready to have its root element pushed.
func NewCoroutine(id uint64, doc vdom.Document, tracer diag.Tracer) *Coroutine {
	return &Coroutine{
		ID:         id,
		State:      CoReady,
		Stack:      NewStack(),
		DocScope:   scope.NewMap(nil),
		ScopeArena: scope.NewArena(),
		Document:   doc,
		Observers:  bus.NewRegistry(),
		tracer:     tracer,
	}
}

// SetException records the current exception in the coroutine's
// exception slot. It does not unwind the stack by itself: raise (step.go)
// moves only the failing frame to OnPopping, the remaining frames keep
// stepping as usual, and Terminating reports true once the stack has
// emptied with an exception still set.
func (co *Coroutine) SetException(e *diag.Exception) {
	co.mu.Lock()
	co.exception = e
	co.mu.Unlock()
}

func (co *Coroutine) Exception() *diag.Exception {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.exception
}

func (co *Coroutine) ClearException() {
	co.mu.Lock()
	co.exception = nil
	co.mu.Unlock()
}

// Terminating reports whether the coroutine should stop running: either
// it was asked to Exit, or it has an unhandled exception and an empty
// stack.
func (co *Coroutine) Terminating() bool {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.Exit {
		return true
	}
	return co.exception != nil && co.Stack.Empty()
}

// IsObserved reports whether anything still watches this coroutine's
// values or has outstanding async work pending on it; a coroutine for
// which this is false and whose stack is empty is eligible for
// collection by the heap.
func (co *Coroutine) IsObserved() bool {
	return co.Observers.IsObserved() || co.Observers.Waits() > 0
}

// RegisterVariable tracks v so ScanVariables rescans it.
func (co *Coroutine) RegisterVariable(v *expr.Variable) {
	co.mu.Lock()
	co.variables = append(co.variables, v)
	co.mu.Unlock()
}

// ScanVariables re-evaluates every observed expression variable and
// dispatches a "change" message on this coroutine's bus for each one
// whose value actually changed. No timer in this module calls it
// periodically; it runs only when a caller invokes it.
func (co *Coroutine) ScanVariables(ctx context.Context) error {
	co.mu.Lock()
	vars := append([]*expr.Variable(nil), co.variables...)
	co.mu.Unlock()

	for _, v := range vars {
		if !v.Observed() {
			continue
		}
		result, changed, err := v.Scan(ctx)
		if err != nil {
			continue
		}
		if changed {
			co.Observers.Dispatch(ctx, v, "change", "", result)
		}
	}
	return nil
}

// Log reports a diagnostic against the coroutine's tracer, if any.
func (co *Coroutine) Log(code diag.Code, message string, el vdom.Element) {
	if co.tracer != nil {
		co.tracer.Info(code, message, el)
	}
}

func (co *Coroutine) Tracer() diag.Tracer { return co.tracer }

// RootValue returns the value most element bodies resolve `?`/default
// content against when no frame has produced one yet.
func (co *Coroutine) RootValue() value.Value { return value.Undefined() }
