package value

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayAppendFiresGrow(t *testing.T) {
	ctx := context.Background()
	arr := MakeArray()
	var got *MutationEvent
	arr.Observe(MsgGrow, func(ctx context.Context, ev *MutationEvent) error {
		got = ev
		return nil
	})

	arr.Append(ctx, MakeInt64(42))

	require.NotNil(t, got)
	assert.Equal(t, MsgGrow, got.Type)
	v, err := arr.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.(*int64Value).Int64())
}

func TestArraySetFiresChangeAndReleasesOld(t *testing.T) {
	ctx := context.Background()
	arr := MakeArray(MakeString("before"))
	var changed *MutationEvent
	arr.Observe(MsgChange, func(ctx context.Context, ev *MutationEvent) error {
		changed = ev
		return nil
	})

	err := arr.Set(ctx, 0, MakeString("after"))
	require.NoError(t, err)
	require.NotNil(t, changed)
	assert.Equal(t, "before", changed.Before.(*stringValue).String())
	assert.Equal(t, "after", changed.After.(*stringValue).String())
	assert.Equal(t, int64(0), changed.Before.RefCount())
}

func TestArrayRemoveOutOfRange(t *testing.T) {
	ctx := context.Background()
	arr := MakeArray()
	err := arr.Remove(ctx, 0)
	require.Error(t, err)
	var rangeErr *RangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestObjectInsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()
	obj := MakeObject()
	obj.Set(ctx, "z", MakeInt64(1))
	obj.Set(ctx, "a", MakeInt64(2))
	obj.Set(ctx, "m", MakeInt64(3))

	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())
}

func TestObjectRemoveFiresShrink(t *testing.T) {
	ctx := context.Background()
	obj := MakeObject()
	obj.Set(ctx, "k", MakeInt64(7))

	var shrunk bool
	obj.Observe(MsgShrink, func(ctx context.Context, ev *MutationEvent) error {
		shrunk = true
		return nil
	})
	obj.Remove(ctx, "k")
	assert.True(t, shrunk)
	assert.Equal(t, 0, obj.Length())
}

func TestSetUniqueKeyReplaces(t *testing.T) {
	ctx := context.Background()
	s := MakeSet("id")

	first := MakeObject()
	first.Set(ctx, "id", MakeString("x"))
	first.Set(ctx, "v", MakeInt64(1))
	s.Add(ctx, first)

	second := MakeObject()
	second.Set(ctx, "id", MakeString("x"))
	second.Set(ctx, "v", MakeInt64(2))

	var changeCount int
	s.Observe(MsgChange, func(ctx context.Context, ev *MutationEvent) error {
		changeCount++
		return nil
	})
	s.Add(ctx, second)

	assert.Equal(t, 1, s.Length())
	assert.Equal(t, 1, changeCount)
}

func TestListenerErrorDoesNotBlockSiblings(t *testing.T) {
	ctx := context.Background()
	arr := MakeArray()
	var ranSecond bool
	arr.Observe(MsgGrow, func(ctx context.Context, ev *MutationEvent) error {
		panic("boom")
	})
	arr.Observe(MsgGrow, func(ctx context.Context, ev *MutationEvent) error {
		ranSecond = true
		return nil
	})

	assert.NotPanics(t, func() {
		arr.Append(ctx, MakeBool(true))
	})
	assert.True(t, ranSecond)
}
