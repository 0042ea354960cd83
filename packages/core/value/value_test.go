package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesKeyOrder(t *testing.T) {
	v, err := Parse([]byte(`{"zeta": 1, "alpha": {"b": true, "a": null}, "mid": [1, "x"]}`))
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())

	alpha, _ := obj.Get("alpha")
	assert.Equal(t, []string{"b", "a"}, alpha.(*Object).Keys())

	mid, _ := obj.Get("mid")
	assert.Equal(t, []any{1.0, "x"}, mid)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"a": `))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestParseYAML(t *testing.T) {
	v, err := ParseYAML([]byte(`
request:
  method: PUT
  headers:
    - X-B: "2"
    - X-A: 1
response:
  status: [200, 201]
  ok: true
  nothing: ~
`))
	require.NoError(t, err)

	expected := MustParse(`{
		"request": {"method": "PUT", "headers": [{"X-B": "2"}, {"X-A": 1}]},
		"response": {"status": [200, 201], "ok": true, "nothing": null}
	}`)
	assert.True(t, Equal(expected, v), "got %s", Format(v))
	assert.Equal(t, []string{"request", "response"}, v.(*Object).Keys())
}

func TestObject_SetKeepsPosition(t *testing.T) {
	obj := NewObject()
	obj.Set("a", 1.0)
	obj.Set("b", 2.0)
	obj.Set("a", 3.0)

	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	v, _ := obj.Get("a")
	assert.Equal(t, 3.0, v)

	obj.Delete("a")
	assert.Equal(t, []string{"b"}, obj.Keys())
	assert.False(t, obj.Has("a"))
}

func TestObject_MarshalJSON(t *testing.T) {
	obj := MustParse(`{"b": 1, "a": {"d": [true, null], "c": "x"}}`)
	b, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":{"d":[true,null],"c":"x"}}`, string(b))
}

func TestObject_CloneIsDeep(t *testing.T) {
	orig := MustParse(`{"a": {"b": [1]}}`).(*Object)
	clone := orig.Clone()

	a, _ := clone.Get("a")
	a.(*Object).Set("b", "changed")

	origA, _ := orig.Get("a")
	b, _ := origA.(*Object).Get("b")
	assert.Equal(t, []any{1.0}, b)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  any
		equal bool
	}{
		{"int and float", 2, 2.0, true},
		{"different numbers", 1, 2.0, false},
		{"string vs number", "2", 2.0, false},
		{"nulls", nil, nil, true},
		{"key order ignored", MustParse(`{"a":1,"b":2}`), MustParse(`{"b":2,"a":1}`), true},
		{"go map vs object", map[string]any{"id": 2, "name": "Joe"}, MustParse(`{"name":"Joe","id":2}`), true},
		{"nested mismatch", MustParse(`{"a":{"b":1}}`), MustParse(`{"a":{"b":2}}`), false},
		{"array order matters", []any{1, 2}, []any{2, 1}, false},
		{"missing key", MustParse(`{"a":1}`), MustParse(`{"a":1,"b":null}`), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, Equal(tt.a, tt.b))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "404", Format(404.0))
	assert.Equal(t, "1.5", Format(1.5))
	assert.Equal(t, "7", Format(7))
	assert.Equal(t, "null", Format(nil))
	assert.Equal(t, "true", Format(true))
	assert.Equal(t, "Peter M", Format("Peter M"))
	assert.Equal(t, `{"b":1,"a":[2]}`, Format(MustParse(`{"b":1,"a":[2]}`)))
}

func TestNormalize(t *testing.T) {
	v := Normalize(map[string]any{"b": []int{1, 2}, "a": map[string]string{"x": "y"}})
	obj := v.(*Object)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())

	b, _ := obj.Get("b")
	assert.Equal(t, []any{1.0, 2.0}, b)
	assert.Equal(t, KindObject, KindOf(v))
}
