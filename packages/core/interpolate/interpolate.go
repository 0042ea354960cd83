// Package interpolate substitutes {{path}} placeholders in strings and trees.
//
// A placeholder is recognized only when the text between the braces, once
// surrounding whitespace is trimmed, consists of letters, digits, '_', '.'
// and '$'. Anything else stays literal text.
//
// A string made of exactly one placeholder yields the referenced value with
// its native type (mapping, sequence, number, ...), or nil when the path
// does not resolve. Strings mixing placeholders and text yield a string, or
// nil when any placeholder fails to resolve.
package interpolate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/hitcall/packages/core/dotpath"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// CodeNonString is the code of the error returned for non-string input.
const CodeNonString = "interpolate_non_string"

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.$]+)\s*\}\}`)

// Error is a usage error with a stable code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsPlaceholder reports whether s consists of exactly one placeholder.
func IsPlaceholder(s string) bool {
	m := placeholderPattern.FindStringIndex(s)
	return m != nil && m[0] == 0 && m[1] == len(s)
}

// Interpolate resolves the placeholders of input against data. Plain Go
// maps and slices in data are accepted and normalized first.
func Interpolate(input any, data any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, &Error{
			Code:    CodeNonString,
			Message: fmt.Sprintf("interpolate: input must be a string, got %s", value.KindOf(input)),
		}
	}
	return interpolateString(s, canonical(data)), nil
}

// canonical returns data in the form dotpath resolves against. Objects are
// used as they are.
func canonical(data any) any {
	if _, ok := data.(*value.Object); ok {
		return data
	}
	return value.Normalize(data)
}

func interpolateString(s string, data any) any {
	matches := placeholderPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(s) {
		v, found := dotpath.Resolve(data, s[matches[0][2]:matches[0][3]])
		if !found {
			return nil
		}
		return value.Clone(v)
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		v, found := dotpath.Resolve(data, s[m[2]:m[3]])
		if !found {
			return nil
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(value.Format(v))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// DeepInterpolate returns a copy of tree with every string leaf
// interpolated against data. Substituted values are not scanned again.
func DeepInterpolate(tree any, data any) any {
	return deepInterpolate(tree, canonical(data))
}

func deepInterpolate(tree any, data any) any {
	switch t := tree.(type) {
	case string:
		return interpolateString(t, data)
	case *value.Object:
		if t == nil {
			return t
		}
		out := value.NewObject()
		for k, v := range t.All() {
			out.Set(k, deepInterpolate(v, data))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = deepInterpolate(v, data)
		}
		return out
	default:
		return tree
	}
}
