package value

import "context"

// Array is an ordered, reference-counted sequence. Elements are strongly
// held: Append/Set take ownership (the caller should Ref before handing in
// a value it still wants to keep) and Remove/Unref releases the slot.
type Array struct {
	box
	listenerSet
	elems []Value
}

func MakeArray(elems ...Value) *Array {
	a := &Array{elems: append([]Value{}, elems...)}
	a.box = newBox(a.release)
	return a
}

func (a *Array) Kind() Kind       { return KindArray }
func (a *Array) Ref() Value       { a.box.ref(); return a }
func (a *Array) Unref()           { a.box.unref() }
func (a *Array) RefCount() int64  { return a.box.refCount() }

func (a *Array) release() {
	for _, e := range a.elems {
		if e != nil {
			e.Unref()
		}
	}
	a.elems = nil
}

func (a *Array) Length() int { return len(a.elems) }

func (a *Array) Get(i int) (Value, error) {
	if i < 0 || i >= len(a.elems) {
		return nil, &RangeError{Op: "array.Get", Key: i}
	}
	return a.elems[i], nil
}

// Append grows the array by one element and fires MsgGrow.
func (a *Array) Append(ctx context.Context, v Value) {
	a.elems = append(a.elems, v)
	a.fire(ctx, &MutationEvent{Source: a, Type: MsgGrow, Key: MakeInt64(int64(len(a.elems) - 1)), After: v})
}

// Set overwrites the element at i and fires MsgChange, releasing the
// previous occupant.
func (a *Array) Set(ctx context.Context, i int, v Value) error {
	if i < 0 || i >= len(a.elems) {
		return &RangeError{Op: "array.Set", Key: i}
	}
	before := a.elems[i]
	a.elems[i] = v
	a.fire(ctx, &MutationEvent{Source: a, Type: MsgChange, Key: MakeInt64(int64(i)), Before: before, After: v})
	if before != nil {
		before.Unref()
	}
	return nil
}

// Remove deletes the element at i, shifting later elements down, and fires
// MsgShrink.
func (a *Array) Remove(ctx context.Context, i int) error {
	if i < 0 || i >= len(a.elems) {
		return &RangeError{Op: "array.Remove", Key: i}
	}
	before := a.elems[i]
	a.elems = append(a.elems[:i], a.elems[i+1:]...)
	a.fire(ctx, &MutationEvent{Source: a, Type: MsgShrink, Key: MakeInt64(int64(i)), Before: before})
	if before != nil {
		before.Unref()
	}
	return nil
}

func (a *Array) Observe(msgType MessageType, fn ListenerFunc) ListenerHandle {
	return a.register(msgType, fn)
}

func (a *Array) Forget(h ListenerHandle) { a.revoke(h) }

func (a *Array) Each(fn func(i int, v Value) bool) {
	for i, v := range a.elems {
		if !fn(i, v) {
			return
		}
	}
}

// Object is an insertion-ordered string-keyed map, matching HVML's object
// semantics (iteration order is declaration/insertion order, not sorted).
type Object struct {
	box
	listenerSet
	keys   []string
	fields map[string]Value
}

func MakeObject() *Object {
	o := &Object{fields: map[string]Value{}}
	o.box = newBox(o.release)
	return o
}

func (o *Object) Kind() Kind      { return KindObject }
func (o *Object) Ref() Value      { o.box.ref(); return o }
func (o *Object) Unref()          { o.box.unref() }
func (o *Object) RefCount() int64 { return o.box.refCount() }

func (o *Object) release() {
	for _, v := range o.fields {
		if v != nil {
			v.Unref()
		}
	}
	o.fields = nil
	o.keys = nil
}

func (o *Object) Length() int { return len(o.keys) }

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Set inserts or overwrites a field, firing MsgGrow for a new key or
// MsgChange for an existing one.
func (o *Object) Set(ctx context.Context, key string, v Value) {
	before, existed := o.fields[key]
	o.fields[key] = v
	if !existed {
		o.keys = append(o.keys, key)
		o.fire(ctx, &MutationEvent{Source: o, Type: MsgGrow, Key: MakeString(key), After: v})
		return
	}
	o.fire(ctx, &MutationEvent{Source: o, Type: MsgChange, Key: MakeString(key), Before: before, After: v})
	if before != nil {
		before.Unref()
	}
}

// Remove deletes a field and fires MsgShrink. It is a no-op if the key is
// absent.
func (o *Object) Remove(ctx context.Context, key string) {
	before, existed := o.fields[key]
	if !existed {
		return
	}
	delete(o.fields, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	o.fire(ctx, &MutationEvent{Source: o, Type: MsgShrink, Key: MakeString(key), Before: before})
	before.Unref()
}

func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Observe(msgType MessageType, fn ListenerFunc) ListenerHandle {
	return o.register(msgType, fn)
}

func (o *Object) Forget(h ListenerHandle) { o.revoke(h) }

// SetValue is a field-keyed collection: when UniqueKeys is non-empty, elements
// are objects and membership/replacement is decided by comparing those
// named fields, mirroring HVML's `set` unique-key semantics; an empty
// UniqueKeys makes it a plain unordered bag compared by identity.
type SetValue struct {
	box
	listenerSet
	uniqueKeys []string
	elems      []Value
}

func MakeSet(uniqueKeys ...string) *SetValue {
	s := &SetValue{uniqueKeys: append([]string{}, uniqueKeys...)}
	s.box = newBox(s.release)
	return s
}

func (s *SetValue) Kind() Kind      { return KindSet }
func (s *SetValue) Ref() Value      { s.box.ref(); return s }
func (s *SetValue) Unref()          { s.box.unref() }
func (s *SetValue) RefCount() int64 { return s.box.refCount() }

func (s *SetValue) release() {
	for _, e := range s.elems {
		if e != nil {
			e.Unref()
		}
	}
	s.elems = nil
}

func (s *SetValue) Length() int { return len(s.elems) }

func (s *SetValue) Each(fn func(i int, v Value) bool) {
	for i, v := range s.elems {
		if !fn(i, v) {
			return
		}
	}
}

// sameIdentity compares existing and candidate on the set's unique-key
// fields when it has any, falling back to identity comparison otherwise.
func (s *SetValue) sameIdentity(existing, candidate Value) bool {
	if len(s.uniqueKeys) == 0 {
		return existing == candidate
	}
	eo, ok1 := existing.(*Object)
	co, ok2 := candidate.(*Object)
	if !ok1 || !ok2 {
		return existing == candidate
	}
	for _, k := range s.uniqueKeys {
		ev, _ := eo.Get(k)
		cv, _ := co.Get(k)
		if Compare(ev, cv, CompareAuto) != 0 {
			return false
		}
	}
	return true
}

// Add inserts v, replacing any existing element with the same unique-key
// tuple (firing MsgChange) or appending a new one (firing MsgGrow).
func (s *SetValue) Add(ctx context.Context, v Value) {
	for i, e := range s.elems {
		if s.sameIdentity(e, v) {
			before := e
			s.elems[i] = v
			s.fire(ctx, &MutationEvent{Source: s, Type: MsgChange, Key: MakeInt64(int64(i)), Before: before, After: v})
			if before != nil {
				before.Unref()
			}
			return
		}
	}
	s.elems = append(s.elems, v)
	s.fire(ctx, &MutationEvent{Source: s, Type: MsgGrow, Key: MakeInt64(int64(len(s.elems) - 1)), After: v})
}

// Remove deletes the first element matching v's identity/unique key and
// fires MsgShrink.
func (s *SetValue) Remove(ctx context.Context, v Value) {
	for i, e := range s.elems {
		if s.sameIdentity(e, v) {
			s.elems = append(s.elems[:i], s.elems[i+1:]...)
			s.fire(ctx, &MutationEvent{Source: s, Type: MsgShrink, Key: MakeInt64(int64(i)), Before: e})
			e.Unref()
			return
		}
	}
}

func (s *SetValue) Observe(msgType MessageType, fn ListenerFunc) ListenerHandle {
	return s.register(msgType, fn)
}

func (s *SetValue) Forget(h ListenerHandle) { s.revoke(h) }
