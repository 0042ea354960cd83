package value

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrInvalidJSON is returned by Parse for malformed input.
var ErrInvalidJSON = errors.New("invalid JSON")

// Parse decodes JSON into a Value, keeping object key order.
func Parse(data []byte) (any, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return FromGJSON(gjson.ParseBytes(data)), nil
}

// MustParse is like Parse but panics on malformed input. Intended for
// fixtures and package-level literals.
func MustParse(s string) any {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("value: MustParse(%q): %v", s, err))
	}
	return v
}

// FromGJSON converts a gjson result into a Value.
func FromGJSON(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num
	case gjson.String:
		return r.Str
	}
	if r.IsArray() {
		arr := make([]any, 0)
		r.ForEach(func(_, v gjson.Result) bool {
			arr = append(arr, FromGJSON(v))
			return true
		})
		return arr
	}
	if r.IsObject() {
		obj := NewObject()
		r.ForEach(func(k, v gjson.Result) bool {
			obj.Set(k.String(), FromGJSON(v))
			return true
		})
		return obj
	}
	return nil
}

// ParseYAML decodes a YAML document into a Value, keeping mapping key order.
// An empty document decodes to nil.
func ParseYAML(data []byte) (any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return FromYAMLNode(&node)
}

// FromYAMLNode converts a yaml.v3 node tree into a Value.
func FromYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return FromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(n.Alias)
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := FromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			val, err := FromYAMLNode(v)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, val)
		}
		return obj, nil
	case yaml.ScalarNode:
		return scalarFromYAML(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func scalarFromYAML(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	default:
		return n.Value, nil
	}
}
