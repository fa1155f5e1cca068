package intr

import (
	"context"

	"github.com/agentflare-ai/hvml-go/diag"
	"github.com/agentflare-ai/hvml-go/vdom"
)

// defaultOps runs a plain element (no registered ElementOps) as "push,
// run every child element in document order, pop", the behavior any tag
// without special semantics gets for free.
type defaultOps struct{}

func (defaultOps) AfterPushed(ctx context.Context, co *Coroutine, fr *Frame) (bool, error) {
	return true, nil
}

func (defaultOps) SelectChild(ctx context.Context, co *Coroutine, fr *Frame) (vdom.Element, error) {
	children := fr.Element.Children()
	for fr.ChildIndex < len(children) {
		c := children[fr.ChildIndex]
		fr.ChildIndex++
		return c, nil
	}
	return nil, nil
}

func (defaultOps) OnPopping(ctx context.Context, co *Coroutine, fr *Frame) error { return nil }

func (defaultOps) Rerun(ctx context.Context, co *Coroutine, fr *Frame) (bool, error) {
	return fr.ChildIndex < len(fr.Element.Children()), nil
}

func opsFor(tag string) ElementOps {
	if factory, ok := LookupElementOps(tag); ok {
		return factory()
	}
	return defaultOps{}
}

func newChildFrame(co *Coroutine, el vdom.Element, parent *Frame) *Frame {
	sc := co.ScopeArena.CreateIfAbsent(el, parent.Scope)
	return NewFrame(el, opsFor(el.TagName()), sc)
}

// Step advances co by exactly one frame-state transition, returning
// whether the coroutine made progress (false means it is either
// terminated or genuinely blocked waiting on an observer/request).
// This is the Go translation of the original's `next_step` dispatch
// over AFTER_PUSHED/SELECT_CHILD/RERUN/ON_POPPING (interpreter.c).
func Step(ctx context.Context, co *Coroutine) (bool, error) {
	if co.Terminating() {
		return false, nil
	}
	fr := co.Stack.Top()
	if fr == nil {
		return false, nil
	}

	switch fr.State {
	case StateAfterPushed:
		return stepAfterPushed(ctx, co, fr)
	case StateSelectChild:
		return stepSelectChild(ctx, co, fr)
	case StateRerun:
		return stepRerun(ctx, co, fr)
	case StateOnPopping:
		return stepOnPopping(ctx, co, fr)
	default:
		return false, nil
	}
}

func stepAfterPushed(ctx context.Context, co *Coroutine, fr *Frame) (bool, error) {
	proceed, err := fr.Ops.AfterPushed(ctx, co, fr)
	if err != nil {
		raise(co, fr, err)
		return true, nil
	}
	if proceed {
		fr.State = StateSelectChild
	} else {
		fr.State = StateOnPopping
	}
	return true, nil
}

func stepSelectChild(ctx context.Context, co *Coroutine, fr *Frame) (bool, error) {
	child, err := fr.Ops.SelectChild(ctx, co, fr)
	if err != nil {
		raise(co, fr, err)
		return true, nil
	}
	if child == nil {
		fr.State = StateOnPopping
		return true, nil
	}
	childFrame := newChildFrame(co, child, fr)
	co.Stack.Push(childFrame)
	return true, nil
}

func stepRerun(ctx context.Context, co *Coroutine, fr *Frame) (bool, error) {
	again, err := fr.Ops.Rerun(ctx, co, fr)
	if err != nil {
		raise(co, fr, err)
		return true, nil
	}
	if again {
		fr.State = StateSelectChild
	} else {
		fr.State = StateOnPopping
	}
	return true, nil
}

func stepOnPopping(ctx context.Context, co *Coroutine, fr *Frame) (bool, error) {
	if err := fr.Ops.OnPopping(ctx, co, fr); err != nil {
		raise(co, fr, err)
	}
	co.ScopeArena.Destroy(fr.Element)
	co.Stack.Pop()

	parent := co.Stack.Top()
	if parent != nil {
		parent.SetResult(fr.Result())
		parent.State = StateRerun
	}
	return true, nil
}

func raise(co *Coroutine, fr *Frame, err error) {
	if exc, ok := err.(*diag.Exception); ok {
		co.SetException(exc)
	} else {
		co.SetException(diag.NewException(diag.CodeInternalError, "%v", err))
	}
	fr.State = StateOnPopping
}
