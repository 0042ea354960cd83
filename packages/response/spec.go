package response

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// Keys of a descriptor's response section with a fixed meaning. Every other
// key is an assertion whose selection is the key itself.
const (
	KeyStatus = "status"
	KeySave   = "save"
	KeyAssert = "assert"
)

// ParseSelection decodes {select, pattern?}. A bare string is a select path.
func ParseSelection(v any) (Selection, error) {
	switch t := v.(type) {
	case string:
		return Selection{Select: t}, nil
	case *value.Object:
		var sel Selection
		s, ok := t.Get("select")
		if !ok {
			return sel, fmt.Errorf("missing select")
		}
		if sel.Select, ok = s.(string); !ok {
			return sel, fmt.Errorf("select: %w", &value.TypeError{Want: value.KindString, Got: value.KindOf(s)})
		}
		if p, ok := t.Get("pattern"); ok && p != nil {
			if sel.Pattern, ok = p.(string); !ok {
				return sel, fmt.Errorf("pattern: %w", &value.TypeError{Want: value.KindString, Got: value.KindOf(p)})
			}
		}
		return sel, nil
	default:
		return Selection{}, &value.TypeError{Want: value.KindObject, Got: value.KindOf(v)}
	}
}

// ParseSaveSpec decodes a mapping of target path to selection.
func ParseSaveSpec(v any) (SaveSpec, error) {
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(*value.Object)
	if !ok {
		return nil, fmt.Errorf("save: %w", &value.TypeError{Want: value.KindObject, Got: value.KindOf(v)})
	}
	spec := make(SaveSpec, 0, obj.Len())
	for target, raw := range obj.All() {
		sel, err := ParseSelection(raw)
		if err != nil {
			return nil, fmt.Errorf("save %q: %w", target, err)
		}
		spec = append(spec, SaveEntry{Target: target, Selection: sel})
	}
	return spec, nil
}

// ParseAssertion decodes {select, pattern?, equal?, schema?}. When the
// mapping has no select, defaultSelect is used.
func ParseAssertion(v any, defaultSelect string) (Assertion, error) {
	obj, ok := v.(*value.Object)
	if !ok || obj == nil {
		return Assertion{}, &value.TypeError{Want: value.KindObject, Got: value.KindOf(v)}
	}

	var a Assertion
	if obj.Has("select") {
		sel, err := ParseSelection(obj)
		if err != nil {
			return a, err
		}
		a.Selection = sel
	} else {
		a.Select = defaultSelect
		if p, ok := obj.Get("pattern"); ok && p != nil {
			s, ok := p.(string)
			if !ok {
				return a, fmt.Errorf("pattern: %w", &value.TypeError{Want: value.KindString, Got: value.KindOf(p)})
			}
			a.Pattern = s
		}
	}
	if a.Select == "" {
		return a, fmt.Errorf("missing select")
	}

	if eq, ok := obj.Get("equal"); ok {
		if fields, isObj := eq.(*value.Object); isObj && fields != nil {
			a.Equal = &Expectation{Fields: fields}
		} else {
			a.Equal = &Expectation{Whole: eq, IsWhole: true}
		}
	}
	if s, ok := obj.Get("schema"); ok {
		a.Schema = s
	}
	return a, nil
}

// ParseAssertions decodes either a sequence of assertions or a mapping of
// select path to assertion.
func ParseAssertions(v any) ([]Assertion, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]Assertion, 0, len(t))
		for i, raw := range t {
			a, err := ParseAssertion(raw, "")
			if err != nil {
				return nil, fmt.Errorf("assert[%d]: %w", i, err)
			}
			out = append(out, a)
		}
		return out, nil
	case *value.Object:
		out := make([]Assertion, 0, t.Len())
		for sel, raw := range t.All() {
			a, err := ParseAssertion(raw, sel)
			if err != nil {
				return nil, fmt.Errorf("assert %q: %w", sel, err)
			}
			out = append(out, a)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("assert: %w", &value.TypeError{Want: value.KindObject, Got: value.KindOf(v)})
	}
}

// sectionAssertions collects the assertions of a response section: the
// explicit assert entries first, then every non-reserved key.
func sectionAssertions(sec *value.Object) ([]Assertion, error) {
	explicit, _ := sec.Get(KeyAssert)
	out, err := ParseAssertions(explicit)
	if err != nil {
		return nil, err
	}
	for key, raw := range sec.All() {
		switch key {
		case KeyStatus, KeySave, KeyAssert:
			continue
		}
		a, err := ParseAssertion(raw, key)
		if err != nil {
			return nil, fmt.Errorf("response.%s: %w", key, err)
		}
		out = append(out, a)
	}
	return out, nil
}
