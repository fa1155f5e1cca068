package value

// undefinedValue and nullValue are process-wide singletons: they own no
// strong references, so ref-counting them has no release work to do.

type undefinedValue struct{ box }
type nullValue struct{ box }

var (
	theUndefined = &undefinedValue{box: box{count: 1}}
	theNull      = &nullValue{box: box{count: 1}}
)

// Undefined returns the singleton undefined value.
func Undefined() Value { return theUndefined }

// Null returns the singleton null value.
func Null() Value { return theNull }

func (*undefinedValue) Kind() Kind       { return KindUndefined }
func (u *undefinedValue) Ref() Value     { u.box.ref(); return u }
func (u *undefinedValue) Unref()         { u.box.unref() }
func (u *undefinedValue) RefCount() int64 { return u.box.refCount() }

func (*nullValue) Kind() Kind        { return KindNull }
func (n *nullValue) Ref() Value      { n.box.ref(); return n }
func (n *nullValue) Unref()          { n.box.unref() }
func (n *nullValue) RefCount() int64 { return n.box.refCount() }

// IsUndefined/IsNull are convenience predicates used pervasively by the
// evaluator's `silently` downgrade path.
func IsUndefined(v Value) bool { return v == nil || v.Kind() == KindUndefined }
func IsNull(v Value) bool      { return v != nil && v.Kind() == KindNull }

type boolValue struct {
	box
	v bool
}

func MakeBool(v bool) Value { return &boolValue{box: newBox(nil), v: v} }

func (b *boolValue) Kind() Kind        { return KindBool }
func (b *boolValue) Ref() Value        { b.box.ref(); return b }
func (b *boolValue) Unref()            { b.box.unref() }
func (b *boolValue) RefCount() int64   { return b.box.refCount() }
func (b *boolValue) Bool() bool        { return b.v }

type int64Value struct {
	box
	v int64
}

func MakeInt64(v int64) Value { return &int64Value{box: newBox(nil), v: v} }

func (i *int64Value) Kind() Kind      { return KindInt64 }
func (i *int64Value) Ref() Value      { i.box.ref(); return i }
func (i *int64Value) Unref()          { i.box.unref() }
func (i *int64Value) RefCount() int64 { return i.box.refCount() }
func (i *int64Value) Int64() int64    { return i.v }

type uint64Value struct {
	box
	v uint64
}

func MakeUInt64(v uint64) Value { return &uint64Value{box: newBox(nil), v: v} }

func (u *uint64Value) Kind() Kind       { return KindUInt64 }
func (u *uint64Value) Ref() Value       { u.box.ref(); return u }
func (u *uint64Value) Unref()           { u.box.unref() }
func (u *uint64Value) RefCount() int64  { return u.box.refCount() }
func (u *uint64Value) UInt64() uint64   { return u.v }

type float64Value struct {
	box
	v float64
}

func MakeFloat64(v float64) Value { return &float64Value{box: newBox(nil), v: v} }

func (f *float64Value) Kind() Kind       { return KindFloat64 }
func (f *float64Value) Ref() Value       { f.box.ref(); return f }
func (f *float64Value) Unref()           { f.box.unref() }
func (f *float64Value) RefCount() int64  { return f.box.refCount() }
func (f *float64Value) Float64() float64 { return f.v }

// stringValue wraps an immutable Go string; no atom interning is
// performed (unlike the original's `purc_variant_make_string` atom table)
// since Go strings are already cheap to compare and share.
type stringValue struct {
	box
	v string
}

func MakeString(v string) Value { return &stringValue{box: newBox(nil), v: v} }

func (s *stringValue) Kind() Kind       { return KindString }
func (s *stringValue) Ref() Value       { s.box.ref(); return s }
func (s *stringValue) Unref()           { s.box.unref() }
func (s *stringValue) RefCount() int64  { return s.box.refCount() }
func (s *stringValue) String() string   { return s.v }

type bytesValue struct {
	box
	v []byte
}

func MakeBytes(v []byte) Value {
	cp := make([]byte, len(v))
	copy(cp, v)
	return &bytesValue{box: newBox(nil), v: cp}
}

func (b *bytesValue) Kind() Kind       { return KindBytes }
func (b *bytesValue) Ref() Value       { b.box.ref(); return b }
func (b *bytesValue) Unref()           { b.box.unref() }
func (b *bytesValue) RefCount() int64  { return b.box.refCount() }
func (b *bytesValue) Bytes() []byte    { return b.v }
