package expr

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentflare-ai/hvml-go/value"
)

// binaryOps tokenizes the operator table so the parser can build a
// *BinaryOp node by string rather than a dedicated enum per operator,
// matching the tokenised table the original's expression tokenizer
// drives off of (`+ - * ~ / ^ ...`, where `~` is HVML's explicit
// "divide-truncating" operator, distinct from the usual `/`).
var binaryOps = map[string]func(a, b float64) float64{
	"+": func(a, b float64) float64 { return a + b },
	"-": func(a, b float64) float64 { return a - b },
	"*": func(a, b float64) float64 { return a * b },
	"/": func(a, b float64) float64 { return a / b },
	"~": func(a, b float64) float64 { return float64(int64(a) / int64(b)) },
	"^": func(a, b float64) float64 {
		r := 1.0
		n := int64(b)
		for i := int64(0); i < n; i++ {
			r *= a
		}
		return r
	},
}

func evalBinary(ctx context.Context, n *BinaryOp, env EvalContext) (value.Value, error) {
	switch n.Op {
	case "&&":
		l, err := eval(ctx, n.Left, env)
		if err != nil {
			return nil, err
		}
		if !value.ToBool(l) {
			return value.MakeBool(false), nil
		}
		r, err := eval(ctx, n.Right, env)
		if err != nil {
			return nil, err
		}
		return value.MakeBool(value.ToBool(r)), nil

	case "||":
		l, err := eval(ctx, n.Left, env)
		if err != nil {
			return nil, err
		}
		if value.ToBool(l) {
			return value.MakeBool(true), nil
		}
		r, err := eval(ctx, n.Right, env)
		if err != nil {
			return nil, err
		}
		return value.MakeBool(value.ToBool(r)), nil
	}

	l, err := eval(ctx, n.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := eval(ctx, n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "==":
		return value.MakeBool(value.Compare(l, r, value.CompareAuto) == 0), nil
	case "!=":
		return value.MakeBool(value.Compare(l, r, value.CompareAuto) != 0), nil
	case "<":
		return value.MakeBool(value.Compare(l, r, value.CompareAuto) < 0), nil
	case "<=":
		return value.MakeBool(value.Compare(l, r, value.CompareAuto) <= 0), nil
	case ">":
		return value.MakeBool(value.Compare(l, r, value.CompareAuto) > 0), nil
	case ">=":
		return value.MakeBool(value.Compare(l, r, value.CompareAuto) >= 0), nil
	case "concat":
		return value.MakeString(value.ToString(l) + value.ToString(r)), nil
	}

	if fn, ok := binaryOps[n.Op]; ok {
		return value.MakeFloat64(fn(value.ToFloat64(l), value.ToFloat64(r))), nil
	}
	return nil, fmt.Errorf("expr: unknown binary operator %q", n.Op)
}

func evalUnary(ctx context.Context, n *UnaryOp, env EvalContext) (value.Value, error) {
	v, err := eval(ctx, n.Operand, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "-":
		return value.MakeFloat64(-value.ToFloat64(v)), nil
	case "!":
		return value.MakeBool(!value.ToBool(v)), nil
	case "~":
		return value.MakeString(strings.TrimSpace(value.ToString(v))), nil
	default:
		return nil, fmt.Errorf("expr: unknown unary operator %q", n.Op)
	}
}
