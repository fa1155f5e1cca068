package intr

import (
	"context"
	"fmt"

	"github.com/agentflare-ai/hvml-go/expr"
	"github.com/agentflare-ai/hvml-go/value"
)

// frameEvalEnv adapts a Frame/Coroutine pair to expr.EvalContext: lookup
// checks the symbol variables (`?`, `@`, `!`, `%`, `<`) first, then walks
// the frame's scope chain, then falls back to document-level bindings.
type frameEvalEnv struct {
	co *Coroutine
	fr *Frame
}

func newFrameEvalEnv(co *Coroutine, fr *Frame) *frameEvalEnv {
	return &frameEvalEnv{co: co, fr: fr}
}

var symbolNames = map[string]symbolSlot{
	"?": symQuestion,
	"@": symAt,
	"!": symExclaim,
	"%": symPercent,
	"<": symLess,
}

func (e *frameEvalEnv) Lookup(ctx context.Context, name string) (value.Value, bool) {
	if slot, ok := symbolNames[name]; ok {
		return e.fr.Symbol(slot), true
	}
	if e.fr.Scope != nil {
		if v, ok := e.fr.Scope.Lookup(name); ok {
			return v, true
		}
	}
	if e.co.DocScope != nil {
		if v, ok := e.co.DocScope.Lookup(name); ok {
			return v, true
		}
	}
	return nil, false
}

func (e *frameEvalEnv) Call(ctx context.Context, callee value.Value, args []value.Value) (value.Value, error) {
	switch c := callee.(type) {
	case *value.Dynamic:
		return c.Get(ctx, args...)
	case *value.Native:
		return nil, fmt.Errorf("intr: native value is not directly callable")
	default:
		return nil, fmt.Errorf("intr: %s is not callable", callee.Kind())
	}
}

func (e *frameEvalEnv) Silently() bool { return e.fr.Silently }

var _ expr.EvalContext = (*frameEvalEnv)(nil)
