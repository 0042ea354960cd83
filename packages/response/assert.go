package response

import (
	"slices"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// ViolationType names the kind of failed check.
type ViolationType string

const (
	ViolationEqual  ViolationType = "equal"
	ViolationSchema ViolationType = "schema"
	ViolationStatus ViolationType = "status"
)

// Violation describes one failed check.
type Violation struct {
	Type     ViolationType
	Select   string
	Key      string
	Expected any
	Actual   any
	Errors   []string
}

func (v Violation) MarshalJSON() ([]byte, error) {
	obj := value.NewObject()
	obj.Set("type", string(v.Type))
	obj.Set("select", v.Select)
	switch v.Type {
	case ViolationSchema:
		errs := make([]any, len(v.Errors))
		for i, e := range v.Errors {
			errs[i] = e
		}
		obj.Set("errors", errs)
	default:
		if v.Key != "" {
			obj.Set("key", v.Key)
		}
		obj.Set("expected", value.Normalize(v.Expected))
		obj.Set("actual", value.Normalize(v.Actual))
	}
	return obj.MarshalJSON()
}

// Expectation is the equal part of an assertion: either a mapping of field
// names to expected values, checked against the fields of the selection,
// or a single value compared with the whole selection.
type Expectation struct {
	Fields *value.Object
	Whole  any
	// IsWhole selects the whole-value form.
	IsWhole bool
}

// Assertion checks a selected value against a schema and/or expectations.
type Assertion struct {
	Selection
	Equal  *Expectation
	Schema any
}

// Validator checks a value against a JSON schema. It returns the
// validation errors, empty when the value conforms.
type Validator interface {
	Validate(v any, schema any) ([]string, error)
}

// Inspector evaluates assertions against response records.
type Inspector struct {
	validator Validator
}

type Option func(*Inspector)

// WithValidator sets the schema validator.
func WithValidator(v Validator) Option {
	return func(i *Inspector) {
		i.validator = v
	}
}

func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Assert evaluates a against rec. A schema violation, if any, comes first,
// followed by equal violations in the expectation's key order.
func (i *Inspector) Assert(a Assertion, rec *Record) ([]Violation, error) {
	return i.assert(a, rec.Tree())
}

func (i *Inspector) assert(a Assertion, tree *value.Object) ([]Violation, error) {
	selected, err := selectFrom(tree, a.Selection)
	if err != nil {
		return nil, err
	}

	violations := make([]Violation, 0)

	if a.Schema != nil {
		if errs := i.validate(selected, a.Schema); len(errs) > 0 {
			violations = append(violations, Violation{
				Type:   ViolationSchema,
				Select: a.Select,
				Errors: errs,
			})
		}
	}

	if a.Equal == nil {
		return violations, nil
	}

	if a.Equal.IsWhole {
		if !value.Equal(a.Equal.Whole, selected) {
			violations = append(violations, Violation{
				Type:     ViolationEqual,
				Select:   a.Select,
				Expected: a.Equal.Whole,
				Actual:   selected,
			})
		}
		return violations, nil
	}

	fields, _ := selected.(*value.Object)
	for key, expected := range a.Equal.Fields.All() {
		actual, _ := fields.Get(key)
		if !value.Equal(expected, actual) {
			violations = append(violations, Violation{
				Type:     ViolationEqual,
				Select:   a.Select,
				Key:      key,
				Expected: expected,
				Actual:   actual,
			})
		}
	}
	return violations, nil
}

func (i *Inspector) validate(v any, schema any) []string {
	if i.validator == nil {
		return []string{"no schema validator configured"}
	}
	errs, err := i.validator.Validate(v, schema)
	if err != nil {
		return []string{err.Error()}
	}
	return errs
}

// AssertAll checks the status code against expectedStatus, when any codes
// are given, then evaluates each assertion in order. The status violation
// comes first, followed by each assertion's violations.
func (i *Inspector) AssertAll(assertions []Assertion, rec *Record, expectedStatus []int) ([]Violation, error) {
	tree := rec.Tree()
	violations := make([]Violation, 0)

	if len(expectedStatus) > 0 && !slices.Contains(expectedStatus, rec.Status) {
		expected := make([]any, len(expectedStatus))
		for j, code := range expectedStatus {
			expected[j] = float64(code)
		}
		violations = append(violations, Violation{
			Type:     ViolationStatus,
			Select:   "status",
			Expected: expected,
			Actual:   float64(rec.Status),
		})
	}

	for _, a := range assertions {
		vs, err := i.assert(a, tree)
		if err != nil {
			return nil, err
		}
		violations = append(violations, vs...)
	}
	return violations, nil
}
