package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind classifies a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// KindOf reports the Kind of v. Go integer types count as numbers.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64, float32, int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case *Object:
		return KindObject
	default:
		return KindInvalid
	}
}

// TypeError reports a value of the wrong Kind.
type TypeError struct {
	Want Kind
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Want, e.Got)
}

// Normalize converts Go literals into canonical Values: integers become
// float64, maps become Objects (plain Go maps with sorted keys) and typed
// slices become []any. Canonical input is returned as a fresh copy.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, bool, string, float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case int16:
		return float64(t)
	case int8:
		return float64(t)
	case uint:
		return float64(t)
	case uint64:
		return float64(t)
	case uint32:
		return float64(t)
	case uint16:
		return float64(t)
	case uint8:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case []int:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = float64(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		obj := NewObject()
		for _, k := range sortedKeys(t) {
			obj.Set(k, Normalize(t[k]))
		}
		return obj
	case map[string]string:
		obj := NewObject()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, t[k])
		}
		return obj
	case *Object:
		if t == nil {
			return nil
		}
		obj := NewObject()
		for k, e := range t.All() {
			obj.Set(k, Normalize(e))
		}
		return obj
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Plain converts a Value into plain Go maps and slices.
func Plain(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Plain(e)
		}
		return out
	default:
		return v
	}
}

// Clone returns a deep copy of v. Scalars are returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

// Equal reports deep structural equality. Numbers compare by value
// regardless of their Go type; mapping key order is ignored.
func Equal(a, b any) bool {
	if KindOf(a) == KindInvalid {
		if a = Normalize(a); KindOf(a) == KindInvalid {
			return false
		}
	}
	if KindOf(b) == KindInvalid {
		if b = Normalize(b); KindOf(b) == KindInvalid {
			return false
		}
	}
	if an, ok := toFloat64(a); ok {
		bn, ok := toFloat64(b)
		return ok && an == bn
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok {
			return false
		}
		if x == nil || y == nil {
			return x == y
		}
		if x.Len() != y.Len() {
			return false
		}
		for k, xv := range x.All() {
			yv, ok := y.Get(k)
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

func toFloat64(v any) (float64, bool) {
	if KindOf(v) != KindNumber {
		return 0, false
	}
	f, _ := Normalize(v).(float64)
	return f, true
}

// Format renders v as it appears when embedded in a string: strings
// verbatim, numbers in their shortest form, null as "null", and sequences
// and mappings as compact JSON.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case *Object, []any:
		b, err := Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
	if f, ok := toFloat64(v); ok {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// Marshal encodes v as compact JSON, keeping mapping key order.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent encodes v as indented JSON, keeping mapping key order.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}
