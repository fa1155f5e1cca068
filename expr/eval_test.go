package expr

import (
	"context"
	"testing"

	"github.com/agentflare-ai/hvml-go/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnv is a minimal EvalContext backed by a flat name->value map, used
// to exercise the evaluator without pulling in the intr package's frame
// machinery.
type fakeEnv struct {
	vars     map[string]value.Value
	silently bool
}

func (e *fakeEnv) Lookup(ctx context.Context, name string) (value.Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e *fakeEnv) Call(ctx context.Context, callee value.Value, args []value.Value) (value.Value, error) {
	dyn, ok := callee.(*value.Dynamic)
	if !ok {
		return nil, assertErr{"not callable"}
	}
	return dyn.Get(ctx, args...)
}

func (e *fakeEnv) Silently() bool { return e.silently }

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }

func TestEvalLiteral(t *testing.T) {
	env := &fakeEnv{vars: map[string]value.Value{}}
	v, err := Eval(context.Background(), &Literal{Value: value.MakeInt64(7)}, env)
	require.NoError(t, err)
	assert.Equal(t, int64(7), value.ToInt64(v))
}

func TestEvalVarRefMissingErrors(t *testing.T) {
	env := &fakeEnv{vars: map[string]value.Value{}}
	_, err := Eval(context.Background(), &VarRef{Name: "$nope"}, env)
	assert.Error(t, err)
}

func TestEvalVarRefMissingSilentlyDowngrades(t *testing.T) {
	env := &fakeEnv{vars: map[string]value.Value{}, silently: true}
	v, err := Eval(context.Background(), &VarRef{Name: "$nope"}, env)
	require.NoError(t, err)
	assert.True(t, value.IsUndefined(v))
}

func TestEvalBinaryArithmetic(t *testing.T) {
	env := &fakeEnv{vars: map[string]value.Value{}}
	tree := &BinaryOp{Op: "+", Left: &Literal{Value: value.MakeInt64(2)}, Right: &Literal{Value: value.MakeInt64(3)}}
	v, err := Eval(context.Background(), tree, env)
	require.NoError(t, err)
	assert.Equal(t, float64(5), value.ToFloat64(v))
}

func TestEvalBinaryShortCircuitAnd(t *testing.T) {
	env := &fakeEnv{vars: map[string]value.Value{}}
	// Right side would error if evaluated; short-circuit must skip it.
	tree := &BinaryOp{Op: "&&", Left: &Literal{Value: value.MakeBool(false)}, Right: &VarRef{Name: "$boom"}}
	v, err := Eval(context.Background(), tree, env)
	require.NoError(t, err)
	assert.False(t, value.ToBool(v))
}

func TestEvalAccessMember(t *testing.T) {
	obj := value.MakeObject()
	obj.Set(context.Background(), "name", value.MakeString("hi"))
	env := &fakeEnv{vars: map[string]value.Value{"$obj": obj}}

	tree := &Access{
		Base: &VarRef{Name: "$obj"},
		Key:  &Literal{Value: value.MakeString("name")},
		Kind: AccessMember,
	}
	v, err := Eval(context.Background(), tree, env)
	require.NoError(t, err)
	assert.Equal(t, "hi", value.ToString(v))
}

func TestEvalConstructArray(t *testing.T) {
	env := &fakeEnv{vars: map[string]value.Value{}}
	tree := &Construct{Elements: []Node{
		&Literal{Value: value.MakeInt64(1)},
		&Literal{Value: value.MakeInt64(2)},
	}}
	v, err := Eval(context.Background(), tree, env)
	require.NoError(t, err)
	arr, ok := v.(*value.Array)
	require.True(t, ok)
	assert.Equal(t, 2, arr.Length())
}

func TestVariableScanReportsChangeOnce(t *testing.T) {
	counter := int64(0)
	env := func(ctx context.Context) EvalContext {
		counter++
		return &fakeEnv{vars: map[string]value.Value{}}
	}
	tree := &Literal{Value: value.MakeInt64(5)}
	v := NewVariable(tree, env, false)

	_, changed, err := v.Scan(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	_, changed, err = v.Scan(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestVariableConstNeverRescans(t *testing.T) {
	calls := 0
	env := func(ctx context.Context) EvalContext {
		calls++
		return &fakeEnv{vars: map[string]value.Value{}}
	}
	v := NewVariable(&Literal{Value: value.MakeInt64(1)}, env, true)

	_, _, err := v.Scan(context.Background())
	require.NoError(t, err)
	_, _, err = v.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
