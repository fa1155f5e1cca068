// Package bus implements the interpreter's observer/message dispatch
// (spec component G): elements register interest in named message types
// against an observed value, and Dispatch delivers a posted message to
// every matching registration, partition by partition (element, variable,
// event) and in registration order within each partition.
//
// Observers are partitioned into three lists by what kind of thing they
// observe (a DOM element, a document-level/native variable, or an
// arbitrary in-flight value such as a request handle), mirroring the
// original's three separate observer lists on a coroutine
// (`interpreter.c`'s co_is_observed walks all three before concluding a
// coroutine has nothing left to wait for).
package bus

import (
	"context"
	"regexp"
	"sync"

	"github.com/agentflare-ai/hvml-go/value"
	"github.com/agentflare-ai/hvml-go/vdom"
)

// ObservedKind selects which of the registry's three partitions an
// Observer belongs to.
type ObservedKind int

const (
	ObservedElement ObservedKind = iota
	ObservedVariable
	ObservedEvent
)

// Handler runs when a dispatched message matches an Observer.
type Handler func(ctx context.Context, msgType string, subType string, payload value.Value) error

// Observer is one registered interest: Observed identifies what is being
// watched (an element, a native/document value, or an opaque event
// source token), MsgTypeAtom is the exact message type to match, and
// SubTypePattern, if non-empty, is matched as a regular expression
// against the message's sub-type instead of requiring an exact match.
type Observer struct {
	Kind           ObservedKind
	Observed       interface{} // vdom.Element, value.Value, or an opaque token
	MsgTypeAtom    string
	SubTypePattern string
	Scope          interface{} // owning scope.Map, opaque to this package
	DOMAnchor      vdom.Element
	OnRevoke       func(ctx context.Context)
	Handle         Handler

	compiled *regexp.Regexp
}

func (o *Observer) matchesSubType(sub string) bool {
	if o.SubTypePattern == "" {
		return true
	}
	if o.compiled == nil {
		o.compiled = regexp.MustCompile(o.SubTypePattern)
	}
	return o.compiled.MatchString(sub)
}

// Registry holds all observers belonging to one coroutine, partitioned by
// ObservedKind, plus the coroutine's outstanding-wait counter.
type Registry struct {
	mu    sync.Mutex
	lists [3][]*Observer
	waits int
}

func NewRegistry() *Registry { return &Registry{} }

// Register adds obs to its partition and returns a token for Revoke.
func (r *Registry) Register(obs *Observer) *Observer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[obs.Kind] = append(r.lists[obs.Kind], obs)
	return obs
}

// Revoke removes obs from its partition and invokes its OnRevoke hook, if
// any, the seam a native value's OnForget callback hangs off of.
func (r *Registry) Revoke(ctx context.Context, obs *Observer) {
	r.mu.Lock()
	list := r.lists[obs.Kind]
	for i, o := range list {
		if o == obs {
			r.lists[obs.Kind] = append(list[:i], list[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	if obs.OnRevoke != nil {
		obs.OnRevoke(ctx)
	}
}

// Dispatch delivers (msgType, subType, payload) to every observer across
// all three partitions whose Observed matches observed and whose message
// type/subtype match, partition by partition (element, variable, event)
// and in registration order within each partition. It returns the handler
// errors encountered, collected rather than short-circuiting so one
// observer's failure doesn't suppress delivery to the others.
func (r *Registry) Dispatch(ctx context.Context, observed interface{}, msgType, subType string, payload value.Value) []error {
	r.mu.Lock()
	var matched []*Observer
	for _, list := range r.lists {
		for _, o := range list {
			if o.Observed == observed && o.MsgTypeAtom == msgType && o.matchesSubType(subType) {
				matched = append(matched, o)
			}
		}
	}
	r.mu.Unlock()

	var errs []error
	for _, o := range matched {
		if err := o.Handle(ctx, msgType, subType, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// IncWaits/DecWaits track the number of in-flight asynchronous operations
// (requests, timers) the owning coroutine is blocked on, independent of
// whether any observer is registered; a coroutine with waits > 0 is kept
// alive even if isObserved would otherwise report false.
func (r *Registry) IncWaits() {
	r.mu.Lock()
	r.waits++
	r.mu.Unlock()
}

func (r *Registry) DecWaits() {
	r.mu.Lock()
	if r.waits > 0 {
		r.waits--
	}
	r.mu.Unlock()
}

func (r *Registry) Waits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waits
}

// IsObserved reports whether any of the three partitions is non-empty.
// This performs the literal three-list emptiness check: spec §9 resolves
// the original's `co_is_observed` (which always returned true regardless
// of its own list checks, a latent bug in interpreter.c) in favor of
// what the function's own logic was clearly meant to compute.
func (r *Registry) IsObserved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range r.lists {
		if len(list) > 0 {
			return true
		}
	}
	return false
}
