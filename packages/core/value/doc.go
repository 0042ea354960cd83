// Package value defines the JSON-like trees hitcall works on.
//
// A Value is one of:
//   - nil (null)
//   - bool
//   - float64
//   - string
//   - []any (sequence)
//   - *Object (insertion-ordered mapping)
//
// Trees are decoded from JSON with gjson and from YAML with yaml.v3, both
// preserving the authored key order. Go literals can be brought into this
// form with Normalize.
package value
