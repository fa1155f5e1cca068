package intr

import (
	"testing"

	"github.com/agentflare-ai/hvml-go/expr"
	"github.com/agentflare-ai/hvml-go/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttributeLiterals(t *testing.T) {
	n, err := ParseAttribute("42")
	require.NoError(t, err)
	lit, ok := n.(*expr.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(42), value.ToInt64(lit.Value))
}

func TestParseAttributePrecedence(t *testing.T) {
	n, err := ParseAttribute("1 + 2 * 3")
	require.NoError(t, err)
	top, ok := n.(*expr.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "+", top.Op)
	right, ok := top.Right.(*expr.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "*", right.Op)
}

func TestParseAttributeMemberAndIndexChain(t *testing.T) {
	n, err := ParseAttribute("$obj.name[0]")
	require.NoError(t, err)
	idx, ok := n.(*expr.Access)
	require.True(t, ok)
	assert.Equal(t, expr.AccessIndex, idx.Kind)

	member, ok := idx.Base.(*expr.Access)
	require.True(t, ok)
	assert.Equal(t, expr.AccessMember, member.Kind)

	base, ok := member.Base.(*expr.VarRef)
	require.True(t, ok)
	assert.Equal(t, "$obj", base.Name)
}

func TestParseAttributeCallWithArgs(t *testing.T) {
	n, err := ParseAttribute("$STR.concat('a', 'b')")
	require.NoError(t, err)
	call, ok := n.(*expr.Call)
	require.True(t, ok)
	assert.Len(t, call.Args, 2)
}

func TestParseAttributeTrailingGarbageErrors(t *testing.T) {
	_, err := ParseAttribute("1 + 2)")
	assert.Error(t, err)
}

func TestParseAttributeUnterminatedStringErrors(t *testing.T) {
	_, err := ParseAttribute("'abc")
	assert.Error(t, err)
}

func TestParseAttributeKeywordLiterals(t *testing.T) {
	for src, want := range map[string]value.Kind{
		"true":      value.KindBool,
		"false":     value.KindBool,
		"null":      value.KindNull,
		"undefined": value.KindUndefined,
	} {
		n, err := ParseAttribute(src)
		require.NoError(t, err)
		lit, ok := n.(*expr.Literal)
		require.True(t, ok)
		assert.Equal(t, want, lit.Value.Kind())
	}
}
