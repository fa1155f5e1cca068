package value

import "context"

// Getter computes a dynamic value's current reading; Setter applies a new
// one. Either may be nil (a write-only or read-only dynamic).
type Getter func(ctx context.Context, args []Value) (Value, error)
type Setter func(ctx context.Context, args []Value) (Value, error)

// Dynamic is a getter/setter pair masquerading as a value: reading it
// invokes Getter, assigning to it invokes Setter. Built-in bindings like
// $EJSON.parse and $STR.concat use this to expose computed, not stored,
// state.
type Dynamic struct {
	box
	get Getter
	set Setter
}

func MakeDynamic(get Getter, set Setter) *Dynamic {
	return &Dynamic{box: newBox(nil), get: get, set: set}
}

func (d *Dynamic) Kind() Kind      { return KindDynamic }
func (d *Dynamic) Ref() Value      { d.box.ref(); return d }
func (d *Dynamic) Unref()          { d.box.unref() }
func (d *Dynamic) RefCount() int64 { return d.box.refCount() }

// Get invokes the getter. Calling Get on a write-only dynamic returns an
// error rather than a zero value, so callers can't silently read garbage.
func (d *Dynamic) Get(ctx context.Context, args ...Value) (Value, error) {
	if d.get == nil {
		return nil, newKindError("dynamic.Get", KindUndefined, KindDynamic)
	}
	return d.get(ctx, args)
}

// Set invokes the setter, same write-only/read-only guard as Get.
func (d *Dynamic) Set(ctx context.Context, args ...Value) (Value, error) {
	if d.set == nil {
		return nil, newKindError("dynamic.Set", KindUndefined, KindDynamic)
	}
	return d.set(ctx, args)
}
