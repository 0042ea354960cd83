package response

import (
	"errors"
	"testing"

	"github.com/abdul-hamid-achik/hitcall/packages/apicall"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/abdul-hamid-achik/hitcall/packages/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obj(s string) *value.Object {
	return value.MustParse(s).(*value.Object)
}

func createRecord(status int, body string) *Record {
	return &Record{
		Status:  status,
		Headers: obj(`{"Content-Type": "application/json", "Location": "http://example.com/users/2"}`),
		Body:    value.MustParse(body),
	}
}

var res = createRecord(201, `{"user": {"id": 2, "name": "Joe"}}`)

const userSchema = `{
	"type": "object",
	"properties": {"id": {"type": "integer"}, "name": {"type": "string"}},
	"required": ["id", "name"],
	"additionalProperties": false
}`

func TestSelect(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
		want any
	}{
		{"mapping", Selection{Select: "body.user"}, value.MustParse(`{"id": 2, "name": "Joe"}`)},
		{"number", Selection{Select: "body.user.id"}, 2.0},
		{"string", Selection{Select: "body.user.name"}, "Joe"},
		{"header", Selection{Select: "headers.Location"}, "http://example.com/users/2"},
		{"status", Selection{Select: "status"}, 201.0},
		{"missing field", Selection{Select: "body.user.foo"}, nil},
		{"missing root", Selection{Select: "foo"}, nil},
		{"pattern group", Selection{Select: "headers.Location", Pattern: `(\d+)$`}, "2"},
		{"pattern whole match", Selection{Select: "headers.Location", Pattern: `example\.com`}, "example.com"},
		{"pattern on number", Selection{Select: "body.user.id", Pattern: `\d`}, "2"},
		{"pattern no match", Selection{Select: "headers.Location", Pattern: "foobar"}, nil},
		{"pattern missing value", Selection{Select: "foobar", Pattern: "foobar"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(res, tt.sel)
			require.NoError(t, err)
			assert.True(t, value.Equal(tt.want, got), "got %#v", got)
		})
	}
}

func TestSelect_InvalidPattern(t *testing.T) {
	_, err := Select(res, Selection{Select: "headers.Location", Pattern: "(unclosed"})
	require.Error(t, err)

	var perr *PatternError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, CodeInvalidPattern, perr.Code)
}

func TestSave(t *testing.T) {
	t.Run("saves selected values", func(t *testing.T) {
		data := value.NewObject()
		err := Save(SaveSpec{{Target: "user.new", Selection: Selection{Select: "body.user.id"}}}, res, data)
		require.NoError(t, err)
		assert.True(t, value.Equal(obj(`{"user": {"new": 2}}`), data))
	})

	t.Run("overwrites existing value", func(t *testing.T) {
		data := obj(`{"user": {"new": "foobar"}}`)
		err := Save(SaveSpec{{Target: "user.new", Selection: Selection{Select: "body.user.id"}}}, res, data)
		require.NoError(t, err)
		assert.True(t, value.Equal(obj(`{"user": {"new": 2}}`), data))
	})

	t.Run("writes null when selector does not match", func(t *testing.T) {
		data := value.NewObject()
		err := Save(SaveSpec{{Target: "user.new", Selection: Selection{Select: "foobar"}}}, res, data)
		require.NoError(t, err)
		assert.True(t, value.Equal(obj(`{"user": {"new": null}}`), data))
	})

	t.Run("saves multiple values", func(t *testing.T) {
		data := value.NewObject()
		err := Save(SaveSpec{
			{Target: "user.new.name", Selection: Selection{Select: "body.user.name"}},
			{Target: "user.new.id", Selection: Selection{Select: "headers.Location", Pattern: `(\d+)$`}},
		}, res, data)
		require.NoError(t, err)
		assert.True(t, value.Equal(obj(`{"user": {"new": {"id": "2", "name": "Joe"}}}`), data))
	})

	t.Run("invalid pattern leaves data untouched", func(t *testing.T) {
		data := obj(`{"keep": true}`)
		err := Save(SaveSpec{
			{Target: "a", Selection: Selection{Select: "body.user.id"}},
			{Target: "b", Selection: Selection{Select: "body.user.name", Pattern: "("}},
		}, res, data)

		var perr *PatternError
		require.True(t, errors.As(err, &perr))
		assert.True(t, value.Equal(obj(`{"keep": true}`), data), "data: %s", value.Format(data))
	})

	t.Run("invalid pattern on a missing path is reported", func(t *testing.T) {
		data := value.NewObject()
		err := Save(SaveSpec{{Target: "a", Selection: Selection{Select: "nothing", Pattern: "("}}}, res, data)
		assert.Error(t, err)
		assert.Equal(t, 0, data.Len())
	})

	t.Run("nil data", func(t *testing.T) {
		err := Save(SaveSpec{{Target: "a", Selection: Selection{Select: "body.user.id"}}}, res, nil)
		assert.ErrorIs(t, err, ErrNilData)
	})

	t.Run("saved values are copies", func(t *testing.T) {
		rec := createRecord(200, `{"user": {"id": 1}}`)
		data := value.NewObject()
		require.NoError(t, Save(SaveSpec{{Target: "u", Selection: Selection{Select: "body.user"}}}, rec, data))

		u, _ := data.Get("u")
		u.(*value.Object).Set("id", 9.0)

		id, _ := Select(rec, Selection{Select: "body.user.id"})
		assert.Equal(t, 1.0, id)
	})
}

func equalFields(s string) *Expectation {
	return &Expectation{Fields: obj(s)}
}

func TestAssert_Equal(t *testing.T) {
	i := NewInspector()

	tests := []struct {
		name     string
		a        Assertion
		expected []Violation
	}{
		{
			name:     "all fields match",
			a:        Assertion{Selection: Selection{Select: "body.user"}, Equal: equalFields(`{"id": 2, "name": "Joe"}`)},
			expected: []Violation{},
		},
		{
			name: "one field differs",
			a:    Assertion{Selection: Selection{Select: "body.user"}, Equal: equalFields(`{"id": 1, "name": "Joe"}`)},
			expected: []Violation{
				{Type: ViolationEqual, Select: "body.user", Key: "id", Expected: 1.0, Actual: 2.0},
			},
		},
		{
			name: "violations follow key order",
			a:    Assertion{Selection: Selection{Select: "body.user"}, Equal: equalFields(`{"name": "Peter", "id": 1}`)},
			expected: []Violation{
				{Type: ViolationEqual, Select: "body.user", Key: "name", Expected: "Peter", Actual: "Joe"},
				{Type: ViolationEqual, Select: "body.user", Key: "id", Expected: 1.0, Actual: 2.0},
			},
		},
		{
			name:     "object value matches",
			a:        Assertion{Selection: Selection{Select: "body"}, Equal: equalFields(`{"user": {"id": 2, "name": "Joe"}}`)},
			expected: []Violation{},
		},
		{
			name: "object value differs",
			a:    Assertion{Selection: Selection{Select: "body"}, Equal: equalFields(`{"user": {"id": 1, "name": "Joe"}}`)},
			expected: []Violation{
				{Type: ViolationEqual, Select: "body", Key: "user", Expected: value.MustParse(`{"id": 1, "name": "Joe"}`), Actual: value.MustParse(`{"id": 2, "name": "Joe"}`)},
			},
		},
		{
			name:     "whole value matches",
			a:        Assertion{Selection: Selection{Select: "body.user.name"}, Equal: &Expectation{Whole: "Joe", IsWhole: true}},
			expected: []Violation{},
		},
		{
			name: "whole value differs",
			a:    Assertion{Selection: Selection{Select: "status"}, Equal: &Expectation{Whole: 200.0, IsWhole: true}},
			expected: []Violation{
				{Type: ViolationEqual, Select: "status", Expected: 200.0, Actual: 201.0},
			},
		},
		{
			name:     "nothing to check",
			a:        Assertion{Selection: Selection{Select: "body.user"}},
			expected: []Violation{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := i.Assert(tt.a, res)
			require.NoError(t, err)
			require.Len(t, got, len(tt.expected))
			for j := range tt.expected {
				assertViolation(t, tt.expected[j], got[j])
			}
		})
	}
}

func assertViolation(t *testing.T, expected, actual Violation) {
	t.Helper()
	assert.Equal(t, expected.Type, actual.Type)
	assert.Equal(t, expected.Select, actual.Select)
	assert.Equal(t, expected.Key, actual.Key)
	assert.True(t, value.Equal(expected.Expected, actual.Expected), "expected %v, got %v", expected.Expected, actual.Expected)
	assert.True(t, value.Equal(expected.Actual, actual.Actual), "actual %v, got %v", expected.Actual, actual.Actual)
}

func TestAssert_Schema(t *testing.T) {
	i := NewInspector(WithValidator(schema.NewValidator()))
	schema1 := value.MustParse(userSchema)
	res1 := createRecord(201, `{"user": {"id": 2, "name": "Joe"}}`)
	res2 := createRecord(201, `{"user": {"foo": 2, "name": "Joe"}}`)

	t.Run("no errors", func(t *testing.T) {
		got, err := i.Assert(Assertion{Selection: Selection{Select: "body.user"}, Schema: schema1}, res1)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = i.Assert(Assertion{Selection: Selection{Select: "body.user"}, Schema: schema1, Equal: equalFields(`{"id": 2}`)}, res1)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = i.Assert(Assertion{Selection: Selection{Select: "status"}, Schema: value.MustParse(`{"type": "integer"}`)}, res1)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("schema does not match", func(t *testing.T) {
		got, err := i.Assert(Assertion{Selection: Selection{Select: "body.user"}, Schema: schema1}, res2)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ViolationSchema, got[0].Type)
		assert.NotEmpty(t, got[0].Errors)
	})

	t.Run("equal does not match", func(t *testing.T) {
		got, err := i.Assert(Assertion{Selection: Selection{Select: "body.user"}, Schema: schema1, Equal: equalFields(`{"id": 9}`)}, res1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ViolationEqual, got[0].Type)
	})

	t.Run("schema violation comes first", func(t *testing.T) {
		got, err := i.Assert(Assertion{Selection: Selection{Select: "body.user"}, Schema: schema1, Equal: equalFields(`{"name": "Peter"}`)}, res2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, ViolationSchema, got[0].Type)
		assert.NotEmpty(t, got[0].Errors)
		assertViolation(t, Violation{Type: ViolationEqual, Select: "body.user", Key: "name", Expected: "Peter", Actual: "Joe"}, got[1])
	})
}

func TestAssert_WithoutValidator(t *testing.T) {
	got, err := NewInspector().Assert(Assertion{Selection: Selection{Select: "body"}, Schema: value.MustParse(`{}`)}, res)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ViolationSchema, got[0].Type)
}

func TestAssertAll(t *testing.T) {
	i := NewInspector()
	assertions := []Assertion{
		{Selection: Selection{Select: "body.user"}, Equal: equalFields(`{"id": 1}`)},
		{Selection: Selection{Select: "headers"}, Equal: equalFields(`{"Content-Type": "text/html"}`)},
	}

	t.Run("status first then assertions in order", func(t *testing.T) {
		got, err := i.AssertAll(assertions, res, []int{200})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, ViolationStatus, got[0].Type)
		assert.True(t, value.Equal([]any{200.0}, got[0].Expected))
		assert.True(t, value.Equal(201.0, got[0].Actual))
		assert.Equal(t, "body.user", got[1].Select)
		assert.Equal(t, "headers", got[2].Select)
	})

	t.Run("accepted status", func(t *testing.T) {
		got, err := i.AssertAll(assertions[:1], res, []int{200, 201})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ViolationEqual, got[0].Type)
	})

	t.Run("no expected status", func(t *testing.T) {
		got, err := i.AssertAll(nil, res, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("concatenation is stable", func(t *testing.T) {
		all, err := i.AssertAll(assertions, res, nil)
		require.NoError(t, err)
		first, err := i.AssertAll(assertions[:1], res, nil)
		require.NoError(t, err)
		second, err := i.AssertAll(assertions[1:], res, nil)
		require.NoError(t, err)
		assert.Equal(t, append(first, second...), all)
	})

	t.Run("invalid pattern fails", func(t *testing.T) {
		_, err := i.AssertAll([]Assertion{{Selection: Selection{Select: "status", Pattern: "("}}}, res, nil)
		assert.Error(t, err)
	})
}

func TestProcess(t *testing.T) {
	i := NewInspector(WithValidator(schema.NewValidator()))
	d := apicall.NewDescriptor(obj(`{
		"request": {"url": "http://example.com/users"},
		"response": {
			"status": [200, 201],
			"save": {
				"users.created.id": {"select": "headers.Location", "pattern": "(\\d+)$"},
				"users.created.name": "body.user.name"
			},
			"assert": {
				"body.user": {"schema": ` + userSchema + `}
			},
			"body": {"equal": {"user": {"id": 2, "name": "Peter"}}}
		}
	}`))
	data := obj(`{"users": {"admin": {"id": 1}}}`)

	got, err := i.Process(d, res, data)
	require.NoError(t, err)

	assert.True(t, value.Equal(obj(`{"users": {"admin": {"id": 1}, "created": {"id": "2", "name": "Joe"}}}`), data), "data: %s", value.Format(data))

	require.Len(t, got, 1)
	assertViolation(t, Violation{
		Type:     ViolationEqual,
		Select:   "body",
		Key:      "user",
		Expected: value.MustParse(`{"id": 2, "name": "Peter"}`),
		Actual:   value.MustParse(`{"id": 2, "name": "Joe"}`),
	}, got[0])
}

func TestCheck(t *testing.T) {
	valid := apicall.NewDescriptor(obj(`{"response": {"status": 200, "save": {"id": "body.id"}, "body": {"equal": {"id": 1}}}}`))
	assert.NoError(t, Check(valid))

	badSave := apicall.NewDescriptor(obj(`{"response": {"save": {"id": 5}}}`))
	assert.ErrorContains(t, Check(badSave), "response.save")

	badStatus := apicall.NewDescriptor(obj(`{"response": {"status": "ok"}}`))
	assert.Error(t, Check(badStatus))
}

func TestParseAssertions(t *testing.T) {
	t.Run("sequence", func(t *testing.T) {
		got, err := ParseAssertions(value.MustParse(`[{"select": "body", "equal": 1}, {"select": "status", "pattern": "^2"}]`))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].Equal.IsWhole)
		assert.Equal(t, "^2", got[1].Pattern)
	})

	t.Run("mapping keyed by select", func(t *testing.T) {
		got, err := ParseAssertions(value.MustParse(`{"body.user": {"equal": {"id": 2}}, "headers": {"select": "headers.Location", "pattern": "\\d+"}}`))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "body.user", got[0].Select)
		assert.False(t, got[0].Equal.IsWhole)
		assert.Equal(t, "headers.Location", got[1].Select)
	})

	t.Run("missing select", func(t *testing.T) {
		_, err := ParseAssertions(value.MustParse(`[{"equal": 1}]`))
		assert.Error(t, err)
	})
}

func TestViolation_MarshalJSON(t *testing.T) {
	b, err := value.Marshal([]Violation{
		{Type: ViolationSchema, Select: "body", Errors: []string{"bad"}},
		{Type: ViolationEqual, Select: "body.user", Key: "id", Expected: 1, Actual: 2.0},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type": "schema", "select": "body", "errors": ["bad"]},
		{"type": "equal", "select": "body.user", "key": "id", "expected": 1, "actual": 2}
	]`, string(b))
}
