package value

import (
	"bytes"
	"iter"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Object is a string-keyed mapping that remembers insertion order.
// The zero value is ready to use.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Len returns the number of keys. A nil Object has no keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores v under key. An existing key keeps its position.
func (o *Object) Set(key string, v any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// All iterates over the entries in insertion order.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	out := &Object{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]any, len(o.values)),
	}
	copy(out.keys, o.keys)
	for k, v := range o.values {
		out.values[k] = Clone(v)
	}
	return out
}

// Map converts the Object into plain Go maps and slices, dropping key order.
func (o *Object) Map() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(o.keys))
	for k, v := range o.All() {
		out[k] = Plain(v)
	}
	return out
}

// MarshalJSON encodes the Object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the authored key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return &TypeError{Want: KindObject, Got: KindOf(v)}
	}
	*o = *obj
	return nil
}

// UnmarshalYAML decodes a YAML mapping, keeping the authored key order.
func (o *Object) UnmarshalYAML(node *yaml.Node) error {
	v, err := FromYAMLNode(node)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return &TypeError{Want: KindObject, Got: KindOf(v)}
	}
	*o = *obj
	return nil
}
