package value

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// toFloat coerces a numeric-ish value to float64 for arithmetic and
// ordering. Non-numeric values yield 0, matching the original's lenient
// "silently" numeric coercion rather than panicking.
func toFloat(v Value) float64 {
	if v == nil {
		return 0
	}
	switch t := v.(type) {
	case *int64Value:
		return float64(t.v)
	case *uint64Value:
		return float64(t.v)
	case *float64Value:
		return t.v
	case *boolValue:
		if t.v {
			return 1
		}
		return 0
	case *stringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(t.v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ToFloat64 is the exported form of toFloat for use outside the package
// (the expression evaluator's arithmetic operators).
func ToFloat64(v Value) float64 { return toFloat(v) }

// ToInt64 truncates the numeric coercion of v toward zero.
func ToInt64(v Value) int64 { return int64(toFloat(v)) }

// ToBool applies HVML's truthiness rule: undefined, null, false, zero,
// empty string/bytes, and empty containers are false; everything else is
// true.
func ToBool(v Value) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case *undefinedValue, *nullValue:
		return false
	case *boolValue:
		return t.v
	case *int64Value:
		return t.v != 0
	case *uint64Value:
		return t.v != 0
	case *float64Value:
		return t.v != 0
	case *stringValue:
		return t.v != ""
	case *bytesValue:
		return len(t.v) != 0
	case *Array:
		return t.Length() != 0
	case *Object:
		return t.Length() != 0
	case *SetValue:
		return t.Length() != 0
	default:
		return true
	}
}

// ToString renders v the way string interpolation and auto comparisons
// expect: scalars print their natural form, byte sequences print as
// standard base64, and containers print their element count rather than
// a full recursive dump (callers that need EJSON should use the ejson
// encoder instead).
func ToString(v Value) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case *undefinedValue:
		return "undefined"
	case *nullValue:
		return "null"
	case *boolValue:
		if t.v {
			return "true"
		}
		return "false"
	case *int64Value:
		return strconv.FormatInt(t.v, 10)
	case *uint64Value:
		return strconv.FormatUint(t.v, 10)
	case *float64Value:
		return strconv.FormatFloat(t.v, 'g', -1, 64)
	case *stringValue:
		return t.v
	case *bytesValue:
		return base64.StdEncoding.EncodeToString(t.v)
	case *Array:
		return "[array " + strconv.Itoa(t.Length()) + "]"
	case *Object:
		return "[object " + strconv.Itoa(t.Length()) + "]"
	case *SetValue:
		return "[set " + strconv.Itoa(t.Length()) + "]"
	default:
		return ""
	}
}
