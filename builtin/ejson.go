package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentflare-ai/hvml-go/value"
	"github.com/tidwall/gjson"
)

// Parse decodes an EJSON-superset text buffer into a value.Value tree.
// EJSON extends plain JSON with byte-sequence and long-integer literals
// the original's own parser handles specially; this implementation
// covers the JSON-compatible subset using gjson (already pulled in
// transitively for go-jsonpatch/go-jsonpointer) and leaves those
// HVML-specific literal extensions to whatever richer EJSON reader the
// document loader chooses to layer on top.
func Parse(text string) (value.Value, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("builtin: invalid EJSON text")
	}
	return fromGJSON(gjson.Parse(text)), nil
}

func fromGJSON(r gjson.Result) value.Value {
	switch r.Type {
	case gjson.Null:
		return value.Null()
	case gjson.False:
		return value.MakeBool(false)
	case gjson.True:
		return value.MakeBool(true)
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) {
			return value.MakeInt64(int64(r.Num))
		}
		return value.MakeFloat64(r.Num)
	case gjson.String:
		return value.MakeString(r.Str)
	default:
		if r.IsArray() {
			arr := value.MakeArray()
			r.ForEach(func(_, v gjson.Result) bool {
				arr.Append(context.Background(), fromGJSON(v))
				return true
			})
			return arr
		}
		if r.IsObject() {
			obj := value.MakeObject()
			r.ForEach(func(k, v gjson.Result) bool {
				obj.Set(context.Background(), k.String(), fromGJSON(v))
				return true
			})
			return obj
		}
		return value.Undefined()
	}
}

// Stringify renders v back to EJSON text. Containers recurse; scalars
// use the same rendering as value.ToString except that strings are
// quoted and escaped and undefined renders as null.
func Stringify(v value.Value) string {
	var sb strings.Builder
	writeEJSON(&sb, v)
	return sb.String()
}

func writeEJSON(sb *strings.Builder, v value.Value) {
	if v == nil {
		sb.WriteString("null")
		return
	}
	switch t := v.Kind(); t {
	case value.KindArray:
		arr := v.(*value.Array)
		sb.WriteByte('[')
		for i := 0; i < arr.Length(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			el, _ := arr.Get(i)
			writeEJSON(sb, el)
		}
		sb.WriteByte(']')
	case value.KindObject:
		obj := v.(*value.Object)
		sb.WriteByte('{')
		for i, k := range obj.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			fv, _ := obj.Get(k)
			writeEJSON(sb, fv)
		}
		sb.WriteByte('}')
	case value.KindString:
		sb.WriteString(strconv.Quote(value.ToString(v)))
	case value.KindUndefined:
		sb.WriteString("null")
	default:
		sb.WriteString(value.ToString(v))
	}
}
