package intr

import (
	"context"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/agentflare-ai/hvml-go/intr")

// Activate pushes the document's root element as co's first frame,
// making it ready to step.
func Activate(co *Coroutine) {
	root := co.Document.DocumentElement()
	if root == nil {
		co.Exit = true
		return
	}
	co.Stack.Push(newChildFrame(co, root, &Frame{Scope: co.DocScope}))
	co.State = CoReady
}

// StepIfReady runs exactly one scheduler step of co if it is eligible
// (not terminating, has a non-empty stack), and reports whether it made
// progress. A coroutine whose stack has emptied without a pending
// exception has finished normally.
func StepIfReady(ctx context.Context, h *Heap, co *Coroutine) (bool, error) {
	ctx, span := tracer.Start(ctx, "intr.StepIfReady")
	defer span.End()

	if co.Stack.Empty() || co.Terminating() {
		return false, nil
	}

	h.setRunning(co)
	co.State = CoRunning
	progressed, err := Step(ctx, co)
	co.State = CoWaiting
	h.setRunning(nil)
	h.drainRoutines()
	return progressed, err
}

// Drain runs the heap's coroutines to quiescence: it repeatedly steps
// every coroutine that has stack depth until none make further progress
// in a full pass, the same "keep stepping until nobody can" loop the
// original's `run_coroutines` implements, generalized to a heap rather
// than a single global coroutine list.
func Drain(ctx context.Context, h *Heap) error {
	ctx, span := tracer.Start(ctx, "intr.Drain")
	defer span.End()

	for {
		anyProgress := false
		for _, co := range h.Coroutines() {
			progressed, err := StepIfReady(ctx, h, co)
			if err != nil {
				return err
			}
			if progressed {
				anyProgress = true
			}
			if co.Stack.Empty() {
				if !co.IsObserved() {
					h.notifyTerminate(co)
					h.Remove(co.ID)
				}
			}
		}
		if !anyProgress {
			return nil
		}
	}
}

// Terminate forces co to stop at its next step, regardless of what its
// stack or observers say, the coroutine-level equivalent of the
// original's `terminating_co`.
func Terminate(co *Coroutine) {
	co.mu.Lock()
	co.Exit = true
	co.mu.Unlock()
}

// Cancel terminates co and unwinds its stack immediately by popping every
// frame's OnPopping in turn, releasing their scopes without running the
// rest of the frame-state machine. This is what tears down a coroutine
// whose owning request was cancelled mid-flight (spec component I).
func Cancel(ctx context.Context, co *Coroutine) {
	Terminate(co)
	for !co.Stack.Empty() {
		fr := co.Stack.Top()
		_ = fr.Ops.OnPopping(ctx, co, fr)
		co.ScopeArena.Destroy(fr.Element)
		co.Stack.Pop()
	}
}
