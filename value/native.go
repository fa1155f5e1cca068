package value

import "context"

// NativeOps is the operation table a native value supplies, translating
// the original's `purc_nvariant_ops` vtable of function pointers into a
// struct of optional Go closures. Any entry may be nil; Native's methods
// treat a nil entry as "not supported" rather than panicking.
type NativeOps struct {
	// PropertyGetter resolves a named sub-value, e.g. a `$DATETIME` field.
	PropertyGetter func(ctx context.Context, payload interface{}, name string) (Value, error)
	// PropertySetter assigns a named sub-value.
	PropertySetter func(ctx context.Context, payload interface{}, name string, v Value) error
	// OnObserve is invoked the first time an observer registers against
	// this native value, letting it lazily start backing work (a timer,
	// a subscription).
	OnObserve func(ctx context.Context, payload interface{}) error
	// OnRelease is invoked when the native value's refcount reaches
	// zero, the dual of OnObserve.
	OnRelease func(ctx context.Context, payload interface{})
	// OnForget is invoked when the last observer watching this value is
	// revoked, even if the value itself is still referenced elsewhere.
	OnForget func(ctx context.Context, payload interface{})
}

// Native wraps an opaque payload (a *timer.Service, an *expr.Variable,
// a renderer handle) with the operation table that lets the generic
// value machinery observe and release it without knowing its concrete
// type, exactly as `purc_variant_make_native` does.
type Native struct {
	box
	payload interface{}
	ops     *NativeOps

	observed bool
}

func MakeNative(payload interface{}, ops *NativeOps) *Native {
	if ops == nil {
		ops = &NativeOps{}
	}
	n := &Native{payload: payload, ops: ops}
	n.box = newBox(n.release)
	return n
}

func (n *Native) Kind() Kind      { return KindNative }
func (n *Native) Ref() Value      { n.box.ref(); return n }
func (n *Native) Unref()          { n.box.unref() }
func (n *Native) RefCount() int64 { return n.box.refCount() }

func (n *Native) release() {
	if n.ops.OnRelease != nil {
		n.ops.OnRelease(context.Background(), n.payload)
	}
}

// Payload returns the wrapped opaque value, for callers that know the
// concrete type (e.g. the timer built-in unwrapping its own service).
func (n *Native) Payload() interface{} { return n.payload }

func (n *Native) Property(ctx context.Context, name string) (Value, error) {
	if n.ops.PropertyGetter == nil {
		return nil, newKindError("native.Property", KindUndefined, KindNative)
	}
	return n.ops.PropertyGetter(ctx, n.payload, name)
}

func (n *Native) SetProperty(ctx context.Context, name string, v Value) error {
	if n.ops.PropertySetter == nil {
		return newKindError("native.SetProperty", KindUndefined, KindNative)
	}
	return n.ops.PropertySetter(ctx, n.payload, name, v)
}

// NotifyObserved must be called by the bus the first time an observer
// attaches; it forwards to OnObserve exactly once per observed lifetime.
func (n *Native) NotifyObserved(ctx context.Context) error {
	if n.observed || n.ops.OnObserve == nil {
		n.observed = true
		return nil
	}
	n.observed = true
	return n.ops.OnObserve(ctx, n.payload)
}

// NotifyForgotten must be called by the bus when the last observer on
// this value is revoked.
func (n *Native) NotifyForgotten(ctx context.Context) {
	n.observed = false
	if n.ops.OnForget != nil {
		n.ops.OnForget(ctx, n.payload)
	}
}
