package value

import (
	"context"

	"github.com/agentflare-ai/go-pipeline"
)

// MessageType names the three post-mutation notifications a container can
// emit, matching the grow/shrink/change triplet the reactive substrate and
// the $TIMERS set both rely on.
type MessageType string

const (
	MsgGrow   MessageType = "grow"
	MsgShrink MessageType = "shrink"
	MsgChange MessageType = "change"
)

// MutationEvent packages a single post-mutation notification delivered to
// listeners registered on a container value. Key is the array/set index or
// object field the mutation touched; Before/After are nil for grow and
// shrink respectively.
type MutationEvent struct {
	Source Value
	Type    MessageType
	Key     Value
	Before  Value
	After   Value
}

// ListenerFunc observes one mutation. An error does not unwind the
// mutation that triggered it; fire collects it and keeps running the
// remaining listeners.
type ListenerFunc func(ctx context.Context, ev *MutationEvent) error

// ListenerHandle identifies a registered listener for later revocation.
type ListenerHandle uint64

type listenerEntry struct {
	handle  ListenerHandle
	msgType MessageType
	fn      ListenerFunc
}

// listenerWriter is the pipeline "writer" accumulator: each stage appends
// its own error rather than aborting the chain, so a panicking or failing
// listener never prevents its siblings from observing the same mutation.
type listenerWriter struct {
	errs []error
}

// listenerSet is embedded by every container value to track its post-
// mutation observers, dispatched through a go-pipeline chain the same way
// the teacher's streaming client chains decode/validate/dispatch stages.
type listenerSet struct {
	nextHandle ListenerHandle
	entries    []listenerEntry
}

func (ls *listenerSet) register(msgType MessageType, fn ListenerFunc) ListenerHandle {
	ls.nextHandle++
	h := ls.nextHandle
	ls.entries = append(ls.entries, listenerEntry{handle: h, msgType: msgType, fn: fn})
	return h
}

func (ls *listenerSet) revoke(h ListenerHandle) {
	for i, e := range ls.entries {
		if e.handle == h {
			ls.entries = append(ls.entries[:i], ls.entries[i+1:]...)
			return
		}
	}
}

// fire dispatches ev to every listener registered for ev.Type, in
// registration order, via a go-pipeline stage per listener. Errors are
// collected on the writer rather than propagated, matching the original's
// "best effort, keep going" notification semantics.
func (ls *listenerSet) fire(ctx context.Context, ev *MutationEvent) []error {
	var matched []listenerEntry
	for _, e := range ls.entries {
		if e.msgType == ev.Type {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	stages := make([]pipeline.Pipe[context.Context, *listenerWriter, *MutationEvent], 0, len(matched))
	for _, e := range matched {
		fn := e.fn
		stages = append(stages, func(ctx context.Context, w *listenerWriter, input *MutationEvent, next pipeline.Next[context.Context, *listenerWriter, *MutationEvent]) error {
			// Run the listener in its own closure so a panic unwinds only
			// that closure: the deferred recover still lets the stage fall
			// through to next(), instead of aborting the remaining chain.
			func() {
				defer func() {
					if r := recover(); r != nil {
						w.errs = append(w.errs, recoverToError(r))
					}
				}()
				if cbErr := fn(ctx, input); cbErr != nil {
					w.errs = append(w.errs, cbErr)
				}
			}()
			return next(ctx, w, input)
		})
	}

	w := &listenerWriter{}
	p := pipeline.New(ctx, stages...)
	_ = p.Process(ctx, w, ev)
	return w.errs
}

func recoverToError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicError{v: r}
}

type panicError struct{ v interface{} }

func (p *panicError) Error() string { return "value: listener panicked" }
