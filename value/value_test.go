package value

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndefinedAndNullSingletons(t *testing.T) {
	assert.True(t, IsUndefined(Undefined()))
	assert.False(t, IsUndefined(Null()))
	assert.True(t, IsNull(Null()))
	assert.True(t, IsUndefined(nil))
}

func TestScalarRefCounting(t *testing.T) {
	v := MakeInt64(10)
	assert.Equal(t, int64(1), v.RefCount())
	v.Ref()
	assert.Equal(t, int64(2), v.RefCount())
	v.Unref()
	assert.Equal(t, int64(1), v.RefCount())
}

func TestCompareAutoNumeric(t *testing.T) {
	assert.Equal(t, 0, Compare(MakeInt64(5), MakeFloat64(5.0), CompareAuto))
	assert.True(t, Compare(MakeInt64(3), MakeInt64(5), CompareAuto) < 0)
}

func TestCompareAutoStringFallback(t *testing.T) {
	assert.Equal(t, 0, Compare(MakeString("abc"), MakeString("abc"), CompareAuto))
	assert.True(t, Compare(MakeString("abc"), MakeString("abd"), CompareAuto) < 0)
}

func TestCompareCaseInsensitive(t *testing.T) {
	assert.Equal(t, 0, Compare(MakeString("ABC"), MakeString("abc"), CompareCaseInsensitive))
}

func TestCompareUndefinedSortsBelowEverything(t *testing.T) {
	assert.True(t, Compare(Undefined(), MakeInt64(0), CompareAuto) < 0)
	assert.True(t, Compare(MakeInt64(0), Undefined(), CompareAuto) > 0)
	assert.Equal(t, 0, Compare(Undefined(), Undefined(), CompareAuto))
}

func TestToBoolTruthiness(t *testing.T) {
	assert.False(t, ToBool(Undefined()))
	assert.False(t, ToBool(Null()))
	assert.False(t, ToBool(MakeBool(false)))
	assert.False(t, ToBool(MakeInt64(0)))
	assert.False(t, ToBool(MakeString("")))
	assert.True(t, ToBool(MakeString("x")))
	assert.True(t, ToBool(MakeInt64(1)))

	arr := MakeArray()
	assert.False(t, ToBool(arr))
	arr.Append(context.Background(), MakeInt64(1))
	assert.True(t, ToBool(arr))
}

func TestToStringScalars(t *testing.T) {
	assert.Equal(t, "undefined", ToString(Undefined()))
	assert.Equal(t, "null", ToString(Null()))
	assert.Equal(t, "true", ToString(MakeBool(true)))
	assert.Equal(t, "42", ToString(MakeInt64(42)))
	assert.Equal(t, "hi", ToString(MakeString("hi")))
}

func TestToInt64TruncatesFloat(t *testing.T) {
	assert.Equal(t, int64(3), ToInt64(MakeFloat64(3.9)))
}

func TestToFloat64ParsesNumericString(t *testing.T) {
	assert.Equal(t, 3.5, ToFloat64(MakeString(" 3.5 ")))
	assert.Equal(t, float64(0), ToFloat64(MakeString("not a number")))
}

func TestDynamicGetSet(t *testing.T) {
	ctx := context.Background()
	var stored Value = MakeInt64(0)
	d := MakeDynamic(
		func(ctx context.Context, args []Value) (Value, error) { return stored, nil },
		func(ctx context.Context, args []Value) (Value, error) {
			stored = args[0]
			return stored, nil
		},
	)

	v, err := d.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ToInt64(v))

	_, err = d.Set(ctx, MakeInt64(9))
	require.NoError(t, err)

	v, err = d.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), ToInt64(v))
}

func TestDynamicWriteOnlyGetErrors(t *testing.T) {
	ctx := context.Background()
	d := MakeDynamic(nil, func(ctx context.Context, args []Value) (Value, error) { return nil, nil })
	_, err := d.Get(ctx)
	assert.Error(t, err)
}

func TestNativePropertyAndObserveLifecycle(t *testing.T) {
	ctx := context.Background()
	var observeCount, forgetCount int
	n := MakeNative("payload", &NativeOps{
		PropertyGetter: func(ctx context.Context, payload interface{}, name string) (Value, error) {
			return MakeString(payload.(string) + "." + name), nil
		},
		OnObserve: func(ctx context.Context, payload interface{}) error {
			observeCount++
			return nil
		},
		OnForget: func(ctx context.Context, payload interface{}) {
			forgetCount++
		},
	})

	v, err := n.Property(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "payload.x", ToString(v))

	require.NoError(t, n.NotifyObserved(ctx))
	require.NoError(t, n.NotifyObserved(ctx)) // second call must not re-fire OnObserve
	assert.Equal(t, 1, observeCount)

	n.NotifyForgotten(ctx)
	assert.Equal(t, 1, forgetCount)
}

func TestNativeMissingOpsReturnErrors(t *testing.T) {
	ctx := context.Background()
	n := MakeNative("x", nil)
	_, err := n.Property(ctx, "x")
	assert.Error(t, err)
	err = n.SetProperty(ctx, "x", MakeInt64(1))
	assert.Error(t, err)
}
