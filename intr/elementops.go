package intr

import (
	"context"
	"sync"

	"github.com/agentflare-ai/hvml-go/vdom"
)

// ElementOps is the per-tag behavior vtable, the Go translation of the
// original's `struct pcintr_element_ops` function-pointer table into an
// interface (spec §9's sum-type-over-vtable translation note). Exactly
// one ElementOps implementation exists per element tag; RegisterElementOps
// associates a tag name with a factory that builds one per Frame.
type ElementOps interface {
	// AfterPushed runs once, immediately after the frame is pushed onto
	// the stack, before any child is considered; it may alter the
	// frame's scope/context or abort the element outright.
	AfterPushed(ctx context.Context, co *Coroutine, fr *Frame) (proceed bool, err error)

	// SelectChild returns the next child element to push a frame for,
	// or nil when there is none left to run (which drives OnPopping).
	// Called once per child the element decides to execute, so a
	// conditional element like <match> can skip children its armed
	// branch doesn't select.
	SelectChild(ctx context.Context, co *Coroutine, fr *Frame) (next vdom.Element, err error)

	// OnPopping runs once, as the frame is about to be removed from the
	// stack; it finalizes the element's result (the `?` symbol variable
	// normally) and releases any element-specific state.
	OnPopping(ctx context.Context, co *Coroutine, fr *Frame) error

	// Rerun runs each time one of this element's child frames has
	// popped; it returns true to go back to SelectChild for another
	// child, or false to move on to OnPopping.
	Rerun(ctx context.Context, co *Coroutine, fr *Frame) (again bool, err error)
}

// OpsFactory builds a fresh ElementOps for one frame's element.
type OpsFactory func() ElementOps

var (
	registryMu sync.RWMutex
	registry   = map[string]OpsFactory{}
)

// RegisterElementOps associates tag with factory, the package-level
// registration point each element-tag's own file calls from an init().
func RegisterElementOps(tag string, factory OpsFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag] = factory
}

// LookupElementOps resolves tag to its registered factory, returning
// (nil, false) for a tag with no special handling (which runs as a
// plain foreign/content element: push, run children in order, pop).
func LookupElementOps(tag string) (OpsFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[tag]
	return f, ok
}
