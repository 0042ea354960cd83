// Package dotpath navigates value trees with dotted paths such as
// "body.user.id". Segments only index mappings; sequences are never
// indexed by position.
package dotpath

import (
	"strings"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// Separator splits path segments.
const Separator = "."

// Split returns the segments of path.
func Split(path string) []string {
	return strings.Split(path, Separator)
}

// Resolve walks tree along path. The boolean is false when a segment is
// missing or an intermediate value is not a mapping.
func Resolve(tree any, path string) (any, bool) {
	cur := tree
	for _, seg := range Split(path) {
		obj, ok := cur.(*value.Object)
		if !ok {
			return nil, false
		}
		if cur, ok = obj.Get(seg); !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set writes v at path inside obj. Missing or non-mapping intermediates are
// replaced by fresh mappings; existing sibling keys are kept.
func Set(obj *value.Object, path string, v any) {
	segs := Split(path)
	cur := obj
	for _, seg := range segs[:len(segs)-1] {
		next, _ := cur.Get(seg)
		child, ok := next.(*value.Object)
		if !ok || child == nil {
			child = value.NewObject()
			cur.Set(seg, child)
		}
		cur = child
	}
	cur.Set(segs[len(segs)-1], v)
}
