package apicall

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// Descriptor is a fully built API call: request and response sections with
// defaults applied, placeholders resolved and fragments collapsed.
type Descriptor struct {
	tree *value.Object
}

// NewDescriptor wraps an already built tree.
func NewDescriptor(tree *value.Object) *Descriptor {
	if tree == nil {
		tree = value.NewObject()
	}
	return &Descriptor{tree: tree}
}

// Tree returns the underlying tree.
func (d *Descriptor) Tree() *value.Object {
	return d.tree
}

func (d *Descriptor) MarshalJSON() ([]byte, error) {
	return d.tree.MarshalJSON()
}

// Section returns the mapping stored under name ("request", "response"),
// or an empty mapping.
func (d *Descriptor) Section(name string) *value.Object {
	v, _ := d.tree.Get(name)
	if obj, ok := v.(*value.Object); ok && obj != nil {
		return obj
	}
	return value.NewObject()
}

// Request is the typed view of the request section handed to a transport.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Params  *value.Object
	Files   map[string]string
	Body    any
}

// Header returns a header value, matching the name case-insensitively.
func (r *Request) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Request decodes the request section.
func (d *Descriptor) Request() (*Request, error) {
	sec := d.Section("request")
	req := &Request{
		Method:  http.MethodGet,
		Headers: make(map[string]string),
		Files:   make(map[string]string),
	}

	if m, ok := sec.Get("method"); ok && m != nil {
		s, ok := m.(string)
		if !ok {
			return nil, fmt.Errorf("request.method: %w", &value.TypeError{Want: value.KindString, Got: value.KindOf(m)})
		}
		req.Method = strings.ToUpper(s)
	}

	if u, ok := sec.Get("url"); ok && u != nil {
		req.URL = value.Format(u)
	} else if p, ok := sec.Get("path"); ok && p != nil {
		req.URL = value.Format(p)
	}

	headers, err := stringMap(sec, "headers")
	if err != nil {
		return nil, err
	}
	req.Headers = headers

	files, err := stringMap(sec, "files")
	if err != nil {
		return nil, err
	}
	req.Files = files

	if p, ok := sec.Get("params"); ok && p != nil {
		params, ok := p.(*value.Object)
		if !ok {
			return nil, fmt.Errorf("request.params: %w", &value.TypeError{Want: value.KindObject, Got: value.KindOf(p)})
		}
		req.Params = params
	}

	if b, ok := sec.Get("body"); ok {
		req.Body = b
	}

	return req, nil
}

func stringMap(sec *value.Object, key string) (map[string]string, error) {
	out := make(map[string]string)
	v, ok := sec.Get(key)
	if !ok || v == nil {
		return out, nil
	}
	obj, ok := v.(*value.Object)
	if !ok {
		return nil, fmt.Errorf("request.%s: %w", key, &value.TypeError{Want: value.KindObject, Got: value.KindOf(v)})
	}
	for k, e := range obj.All() {
		if e == nil {
			continue
		}
		out[k] = value.Format(e)
	}
	return out, nil
}

// ExpectedStatus returns the accepted status codes from response.status,
// which may be a single number or a sequence of numbers. It returns nil
// when no status is declared.
func (d *Descriptor) ExpectedStatus() ([]int, error) {
	v, ok := d.Section("response").Get("status")
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case []any:
		codes := make([]int, 0, len(t))
		for i, e := range t {
			code, err := statusCode(e)
			if err != nil {
				return nil, fmt.Errorf("response.status[%d]: %w", i, err)
			}
			codes = append(codes, code)
		}
		return codes, nil
	default:
		code, err := statusCode(t)
		if err != nil {
			return nil, fmt.Errorf("response.status: %w", err)
		}
		return []int{code}, nil
	}
}

func statusCode(v any) (int, error) {
	f, ok := value.Normalize(v).(float64)
	if !ok || f != math.Trunc(f) || f < 100 || f > 599 {
		return 0, fmt.Errorf("invalid status code %s", value.Format(v))
	}
	return int(f), nil
}
