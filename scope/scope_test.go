package scope

import (
	"testing"

	"github.com/agentflare-ai/hvml-go/value"
	"github.com/agentflare-ai/hvml-go/vdom"
	"github.com/stretchr/testify/assert"
)

func TestLookupWalksAncestorChain(t *testing.T) {
	root := NewMap(nil)
	root.Define("x", value.MakeInt64(1))

	child := NewMap(root)
	v, ok := child.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, int64(1), value.ToInt64(v))
}

func TestShadowingPrefersInnerScope(t *testing.T) {
	root := NewMap(nil)
	root.Define("x", value.MakeInt64(1))

	child := NewMap(root)
	child.Define("x", value.MakeInt64(2))

	v, ok := child.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, int64(2), value.ToInt64(v))

	rv, ok := root.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, int64(1), value.ToInt64(rv))
}

func TestAssignFindsOwningScope(t *testing.T) {
	root := NewMap(nil)
	root.Define("x", value.MakeInt64(1))
	child := NewMap(root)

	ok := child.Assign("x", value.MakeInt64(99))
	assert.True(t, ok)

	v, _ := root.Lookup("x")
	assert.Equal(t, int64(99), value.ToInt64(v))
}

func TestAssignUnboundNameFails(t *testing.T) {
	root := NewMap(nil)
	ok := root.Assign("nope", value.MakeInt64(1))
	assert.False(t, ok)
}

func TestArenaCreateIfAbsentReusesMap(t *testing.T) {
	a := NewArena()
	root := NewMap(nil)
	el := vdom.NewElement("foo", nil)

	m1 := a.CreateIfAbsent(el, root)
	m2 := a.CreateIfAbsent(el, root)
	assert.Same(t, m1, m2)
}

func TestArenaDestroyRemovesMapping(t *testing.T) {
	a := NewArena()
	root := NewMap(nil)
	el := vdom.NewElement("foo", nil)

	a.CreateIfAbsent(el, root)
	a.Destroy(el)
	_, ok := a.Get(el)
	assert.False(t, ok)
}
