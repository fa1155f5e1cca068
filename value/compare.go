package value

import (
	"bytes"
	"strings"
)

// CompareMode selects how two values are ordered, matching the original's
// `PCVRNT_COMPARE_METHOD_*` family.
type CompareMode int

const (
	// CompareAuto picks a numeric comparison when both sides are numeric,
	// otherwise falls back to string comparison of their rendered form.
	CompareAuto CompareMode = iota
	CompareNumber
	CompareString
	CompareCaseInsensitive
)

// Compare orders a and b under mode, returning <0, 0, or >0. Undefined
// sorts below everything; two values of incomparable kinds fall back to
// comparing their String() rendering.
func Compare(a, b Value, mode CompareMode) int {
	if IsUndefined(a) && IsUndefined(b) {
		return 0
	}
	if IsUndefined(a) {
		return -1
	}
	if IsUndefined(b) {
		return 1
	}

	switch mode {
	case CompareNumber:
		return compareFloat(toFloat(a), toFloat(b))
	case CompareCaseInsensitive:
		return strings.Compare(strings.ToLower(ToString(a)), strings.ToLower(ToString(b)))
	case CompareString:
		return strings.Compare(ToString(a), ToString(b))
	default: // CompareAuto
		if isNumeric(a) && isNumeric(b) {
			return compareFloat(toFloat(a), toFloat(b))
		}
		if a.Kind() == KindBytes && b.Kind() == KindBytes {
			return bytes.Compare(a.(*bytesValue).v, b.(*bytesValue).v)
		}
		return strings.Compare(ToString(a), ToString(b))
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func isNumeric(v Value) bool {
	switch v.Kind() {
	case KindInt64, KindUInt64, KindFloat64, KindBool:
		return true
	default:
		return false
	}
}
