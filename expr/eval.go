package expr

import (
	"context"
	"fmt"

	"github.com/agentflare-ai/hvml-go/value"
)

// EvalContext is the environment an evaluated tree runs against: scope
// lookup and function dispatch are supplied by the caller (the intr
// package's Frame/Coroutine) rather than imported directly, breaking what
// would otherwise be an expr<->intr->expr import cycle.
type EvalContext interface {
	// Lookup resolves a name through the scope chain (ancestor frames,
	// then document-level bindings). The bool reports whether the name
	// was found at all, distinct from resolving to an undefined value.
	Lookup(ctx context.Context, name string) (value.Value, bool)

	// Call invokes callee (already evaluated) with the evaluated args.
	// callee is typically a *value.Dynamic or *value.Native method.
	Call(ctx context.Context, callee value.Value, args []value.Value) (value.Value, error)

	// Silently reports whether evaluation errors should be swallowed and
	// downgraded to value.Undefined() rather than returned, the `silently`
	// attribute's effect.
	Silently() bool
}

// Eval walks tree against env, returning the resulting value or, for a
// non-silent context, the first error encountered. A silent context never
// returns an error: any failure collapses to value.Undefined().
func Eval(ctx context.Context, tree Node, env EvalContext) (value.Value, error) {
	v, err := eval(ctx, tree, env)
	if err != nil && env.Silently() {
		return value.Undefined(), nil
	}
	return v, err
}

func eval(ctx context.Context, n Node, env EvalContext) (value.Value, error) {
	switch t := n.(type) {
	case *Literal:
		return t.Value, nil

	case *VarRef:
		if v, ok := env.Lookup(ctx, t.Name); ok {
			return v, nil
		}
		return value.Undefined(), fmt.Errorf("expr: undefined variable %q", t.Name)

	case *Access:
		base, err := eval(ctx, t.Base, env)
		if err != nil {
			return nil, err
		}
		return evalAccess(ctx, base, t, env)

	case *Call:
		callee, err := eval(ctx, t.Callee, env)
		if err != nil {
			return nil, err
		}
		args := make([]value.Value, 0, len(t.Args))
		for _, a := range t.Args {
			av, err := eval(ctx, a, env)
			if err != nil {
				return nil, err
			}
			args = append(args, av)
		}
		return env.Call(ctx, callee, args)

	case *BinaryOp:
		return evalBinary(ctx, t, env)

	case *UnaryOp:
		return evalUnary(ctx, t, env)

	case *Template:
		var s string
		for _, p := range t.Parts {
			v, err := eval(ctx, p, env)
			if err != nil {
				return nil, err
			}
			s += value.ToString(v)
		}
		return value.MakeString(s), nil

	case *Construct:
		return evalConstruct(ctx, t, env)

	default:
		return nil, fmt.Errorf("expr: unknown node type %T", n)
	}
}

func evalAccess(ctx context.Context, base value.Value, a *Access, env EvalContext) (value.Value, error) {
	switch a.Kind {
	case AccessMember:
		key, ok := a.Key.(*Literal)
		if !ok {
			return nil, fmt.Errorf("expr: member access key must be a literal")
		}
		name := value.ToString(key.Value)
		return accessByName(ctx, base, name)
	default: // AccessIndex
		key, err := eval(ctx, a.Key, env)
		if err != nil {
			return nil, err
		}
		return accessByValue(ctx, base, key)
	}
}

func accessByName(ctx context.Context, base value.Value, name string) (value.Value, error) {
	switch b := base.(type) {
	case *value.Object:
		if v, ok := b.Get(name); ok {
			return v, nil
		}
		return value.Undefined(), nil
	case *value.Native:
		return b.Property(ctx, name)
	case *value.Dynamic:
		return b.Get(ctx)
	default:
		return nil, fmt.Errorf("expr: cannot access member %q of %s", name, base.Kind())
	}
}

func accessByValue(ctx context.Context, base value.Value, key value.Value) (value.Value, error) {
	switch b := base.(type) {
	case *value.Array:
		idx := int(value.ToInt64(key))
		return b.Get(idx)
	case *value.Object:
		if v, ok := b.Get(value.ToString(key)); ok {
			return v, nil
		}
		return value.Undefined(), nil
	default:
		return nil, fmt.Errorf("expr: cannot index %s", base.Kind())
	}
}

func evalConstruct(ctx context.Context, c *Construct, env EvalContext) (value.Value, error) {
	if c.Keys == nil {
		arr := value.MakeArray()
		for _, el := range c.Elements {
			v, err := eval(ctx, el, env)
			if err != nil {
				return nil, err
			}
			arr.Append(ctx, v.Ref())
		}
		return arr, nil
	}
	obj := value.MakeObject()
	for i, el := range c.Elements {
		v, err := eval(ctx, el, env)
		if err != nil {
			return nil, err
		}
		obj.Set(ctx, c.Keys[i], v.Ref())
	}
	return obj, nil
}
