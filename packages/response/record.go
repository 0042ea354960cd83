package response

import (
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// Record is an executed call's response as the inspector sees it.
// Selections address it as {status, headers, body}.
type Record struct {
	Status   int
	Headers  *value.Object
	Body     any
	Duration time.Duration
}

// Tree returns the record as a value tree.
func (r *Record) Tree() *value.Object {
	t := value.NewObject()
	t.Set("status", float64(r.Status))
	headers := r.Headers
	if headers == nil {
		headers = value.NewObject()
	}
	t.Set("headers", headers)
	t.Set("body", r.Body)
	return t
}

// Header returns a header value, matching the name case-insensitively.
func (r *Record) Header(name string) string {
	for k, v := range r.Headers.All() {
		if strings.EqualFold(k, name) {
			return value.Format(v)
		}
	}
	return ""
}

// DurationMs returns the call duration in milliseconds.
func (r *Record) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

func (r *Record) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}
