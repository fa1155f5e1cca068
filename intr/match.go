package intr

import (
	"context"

	"github.com/agentflare-ai/hvml-go/expr"
	"github.com/agentflare-ai/hvml-go/value"
	"github.com/agentflare-ai/hvml-go/vdom"
)

// matchOps implements <match>: on AfterPushed it evaluates its own `for`
// expression and tests it against the enclosing frame's child-result
// (the parent's `?` symbol, i.e. whatever the previous sibling produced);
// a mismatch skips the element's children entirely by going straight to
// OnPopping. When `for` matches and the `exclusively` attribute is
// present, OnPopping marks the parent frame so it (or whatever reads
// ResultFromChild afterward) knows a branch claimed it. Grounded on the
// original's `ctxt_for_match`/`after_pushed`/`select_child`/`on_popping`
// in match.c, the element vtable the stack-frame machine's branch
// semantics are modeled on.
type matchOps struct {
	matched bool
	forVal  value.Value
}

func init() {
	RegisterElementOps("match", func() ElementOps { return &matchOps{} })
}

func (m *matchOps) AfterPushed(ctx context.Context, co *Coroutine, fr *Frame) (bool, error) {
	forAttr := fr.Element.GetAttribute("for")
	if forAttr == "" {
		m.matched = true
		return true, nil
	}

	tree, err := ParseAttribute(forAttr)
	if err != nil {
		return false, err
	}
	env := newFrameEvalEnv(co, fr)
	v, err := expr.Eval(ctx, tree, env)
	if err != nil {
		return false, err
	}
	m.forVal = v

	var parentResult value.Value = value.Undefined()
	if parent := co.Stack.Parent(); parent != nil {
		parentResult = parent.Result()
	}
	m.matched = value.Compare(v, parentResult, value.CompareAuto) == 0
	return m.matched, nil
}

func (m *matchOps) SelectChild(ctx context.Context, co *Coroutine, fr *Frame) (vdom.Element, error) {
	children := fr.Element.Children()
	for fr.ChildIndex < len(children) {
		c := children[fr.ChildIndex]
		fr.ChildIndex++
		return c, nil
	}
	return nil, nil
}

func (m *matchOps) Rerun(ctx context.Context, co *Coroutine, fr *Frame) (bool, error) {
	return fr.ChildIndex < len(fr.Element.Children()), nil
}

func (m *matchOps) OnPopping(ctx context.Context, co *Coroutine, fr *Frame) error {
	if m.forVal != nil {
		m.forVal.Unref()
	}
	if m.matched && fr.Element.GetAttribute("exclusively") != "" {
		if parent := co.Stack.Parent(); parent != nil {
			parent.SetResultFromChild(true)
		}
	}
	return nil
}
