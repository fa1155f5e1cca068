package expr

import (
	"context"

	"github.com/agentflare-ai/hvml-go/value"
)

// EnvFactory rebuilds the evaluation context for a Variable's tree each
// time it is rescanned, since the scope chain a `$VARIABLE` expression
// closes over can itself mutate between scans (a frame popping off the
// stack, a temporary variable being reassigned).
type EnvFactory func(ctx context.Context) EvalContext

// Variable is a reactive expression variable (spec component C): a vcm
// tree plus the last value it evaluated to, re-evaluated on demand by the
// per-coroutine event timer and reporting whether the value actually
// changed. This is the Go translation of the original's
// `struct pcvcm_ev` getter/const-getter/last_value/on_observe/on_release
// native value (vcm-ev.c).
type Variable struct {
	Tree       Node
	Env        EnvFactory
	Const      bool // a const expression variable never rescans after its first evaluation
	last        value.Value
	evaluated   bool
	observed    bool
}

// NewVariable builds a Variable over tree, evaluated lazily against env.
func NewVariable(tree Node, env EnvFactory, isConst bool) *Variable {
	return &Variable{Tree: tree, Env: env, Const: isConst}
}

// Scan re-evaluates the tree (unless it is const and already evaluated
// once) and reports whether the result differs from the previous value.
// It is the method intr.Coroutine.ScanVariables calls on every observed
// Variable.
func (v *Variable) Scan(ctx context.Context) (value.Value, bool, error) {
	if v.Const && v.evaluated {
		return v.last, false, nil
	}
	env := v.Env(ctx)
	result, err := Eval(ctx, v.Tree, env)
	if err != nil {
		return v.last, false, err
	}
	changed := !v.evaluated || value.Compare(result, v.last, value.CompareAuto) != 0
	v.last = result
	v.evaluated = true
	return result, changed, nil
}

// LastValue returns the most recently evaluated value without rescanning,
// or value.Undefined() before the first scan.
func (v *Variable) LastValue() value.Value {
	if !v.evaluated {
		return value.Undefined()
	}
	return v.last
}

// AsNative wraps v as a value.Native so it can sit in the scope chain and
// in containers alongside ordinary values, with getters forwarding to
// LastValue and observe/release tracking whether the timer needs to keep
// scanning it at all (an unobserved Variable is never rescanned).
func (v *Variable) AsNative() *value.Native {
	return value.MakeNative(v, &value.NativeOps{
		PropertyGetter: func(ctx context.Context, payload interface{}, name string) (value.Value, error) {
			return accessByName(ctx, v.LastValue(), name)
		},
		OnObserve: func(ctx context.Context, payload interface{}) error {
			v.observed = true
			return nil
		},
		OnForget: func(ctx context.Context, payload interface{}) {
			v.observed = false
		},
	})
}

// Observed reports whether any observer currently watches this variable,
// i.e. whether the scan loop should bother re-evaluating it.
func (v *Variable) Observed() bool { return v.observed }
