// Package merge layers partial mappings on top of each other.
//
// Merge folds two mappings key by key: where both sides hold mappings they
// are merged recursively, otherwise the right-hand value wins. ArrayMerge
// folds a whole sequence of fragments left to right, and DeepArrayMerge
// collapses every sequence of fragments found anywhere in a tree.
//
// None of the functions modify their arguments.
package merge

import (
	"github.com/abdul-hamid-achik/hitcall/packages/core/interpolate"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// Merge returns base overlaid with override.
func Merge(base, override *value.Object) *value.Object {
	out := base.Clone()
	if out == nil {
		out = value.NewObject()
	}
	for k, ov := range override.All() {
		bv, _ := out.Get(k)
		bo, bok := bv.(*value.Object)
		oo, ook := ov.(*value.Object)
		if bok && ook && bo != nil && oo != nil {
			out.Set(k, Merge(bo, oo))
			continue
		}
		out.Set(k, value.Clone(ov))
	}
	return out
}

// ArrayMerge folds fragments left to right with Merge.
func ArrayMerge(fragments []*value.Object) *value.Object {
	acc := value.NewObject()
	for _, f := range fragments {
		acc = Merge(acc, f)
	}
	return acc
}

// Cascade layers a defaults mapping under an override the way call
// descriptors are built. It follows Merge, except that a mapping default
// sitting under a sequence of fragments is prepended to that sequence, so
// default headers survive a list of header fragments. A sequence is a list
// of fragments when every element is a mapping or a single placeholder
// that may resolve to one; any other sequence replaces the default.
func Cascade(defaults, override *value.Object) *value.Object {
	out := defaults.Clone()
	if out == nil {
		out = value.NewObject()
	}
	for k, ov := range override.All() {
		dv, _ := out.Get(k)
		dobj, dok := dv.(*value.Object)
		if !dok || dobj == nil {
			out.Set(k, value.Clone(ov))
			continue
		}
		switch o := ov.(type) {
		case *value.Object:
			out.Set(k, Cascade(dobj, o))
		case []any:
			if !isFragmentList(o) {
				out.Set(k, value.Clone(ov))
				continue
			}
			seq := make([]any, 0, len(o)+1)
			seq = append(seq, dobj)
			for _, e := range o {
				seq = append(seq, value.Clone(e))
			}
			out.Set(k, seq)
		default:
			out.Set(k, value.Clone(ov))
		}
	}
	return out
}

func isFragmentList(seq []any) bool {
	for _, e := range seq {
		switch t := e.(type) {
		case *value.Object:
		case string:
			if !interpolate.IsPlaceholder(t) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// DeepArrayMerge returns a copy of tree in which every non-empty sequence
// whose elements are all mappings is replaced by their ArrayMerge. Other
// sequences are kept and their elements are visited in turn. An empty
// sequence stays an empty sequence rather than collapsing to an empty
// mapping, so empty lists in bodies and params keep their type.
func DeepArrayMerge(tree any) any {
	switch t := tree.(type) {
	case *value.Object:
		if t == nil {
			return t
		}
		out := value.NewObject()
		for k, v := range t.All() {
			out.Set(k, DeepArrayMerge(v))
		}
		return out
	case []any:
		if fragments, ok := asFragments(t); ok {
			return DeepArrayMerge(ArrayMerge(fragments))
		}
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = DeepArrayMerge(v)
		}
		return out
	default:
		return tree
	}
}

func asFragments(seq []any) ([]*value.Object, bool) {
	if len(seq) == 0 {
		return nil, false
	}
	fragments := make([]*value.Object, 0, len(seq))
	for _, e := range seq {
		obj, ok := e.(*value.Object)
		if !ok || obj == nil {
			return nil, false
		}
		fragments = append(fragments, obj)
	}
	return fragments, true
}
