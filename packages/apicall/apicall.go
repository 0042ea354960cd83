// Package apicall builds API call descriptors from raw call specs.
//
// Building layers the configured defaults (context.config.defaults.api_call)
// under the raw spec, interpolates every string against the shared data
// accumulator and collapses fragment arrays such as lists of header
// mappings. The resulting descriptor is what the transport executes and
// what the response inspector checks against.
package apicall

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitcall/packages/core/interpolate"
	"github.com/abdul-hamid-achik/hitcall/packages/core/merge"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// DefaultsKey is the key under Config.Defaults holding the base descriptor.
const DefaultsKey = "api_call"

// Context carries the shared data accumulator and read-only configuration.
type Context struct {
	Data   *value.Object
	Config Config
}

// Config is the per-call read-only configuration.
type Config struct {
	Defaults *value.Object
}

// Parse builds the descriptor for spec, which must be a mapping.
func Parse(spec any, ctx Context) (*Descriptor, error) {
	raw, ok := spec.(*value.Object)
	if !ok || raw == nil {
		return nil, fmt.Errorf("api call must be a mapping, got %s", value.KindOf(spec))
	}

	base, _ := ctx.Config.Defaults.Get(DefaultsKey)
	baseObj, _ := base.(*value.Object)

	merged := merge.Cascade(baseObj, raw)
	interpolated := interpolate.DeepInterpolate(merged, ctx.Data)
	tree := merge.DeepArrayMerge(interpolated).(*value.Object)

	deriveURL(tree)

	return &Descriptor{tree: tree}, nil
}

// deriveURL replaces request.base_url and request.path by request.url
// when both are present and non-null.
func deriveURL(tree *value.Object) {
	r, _ := tree.Get("request")
	req, ok := r.(*value.Object)
	if !ok || req == nil {
		return
	}
	baseURL, hasBase := req.Get("base_url")
	path, hasPath := req.Get("path")
	if !hasBase || !hasPath || baseURL == nil || path == nil {
		return
	}
	req.Set("url", value.Format(baseURL)+value.Format(path))
	req.Delete("base_url")
	req.Delete("path")
}
