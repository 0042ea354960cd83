package builtin

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/google/uuid"
)

// Prefix marks magic variable names.
const Prefix = "$"

// Func generates the current value of a magic variable. It must return a
// canonical value.
type Func func() any

type Registry struct {
	funcs map[string]Func
	now   func() time.Time
}

type Option func(*Registry)

// WithClock replaces time.Now, for deterministic output.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["uuid"] = funcUUID
	r.funcs["now"] = func() any { return r.now().UTC().Format(time.RFC3339) }
	r.funcs["date"] = func() any { return r.now().UTC().Format(time.DateOnly) }
	r.funcs["timestamp"] = func() any { return float64(r.now().Unix()) }
	r.funcs["timestampMs"] = func() any { return float64(r.now().UnixMilli()) }
	r.funcs["randomInt"] = funcRandomInt
	r.funcs["randomString"] = funcRandomString
	r.funcs["randomEmail"] = funcRandomEmail
}

// Register adds or replaces a magic variable. name excludes the prefix.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Names returns the registered names, prefixed and sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, Prefix+name)
	}
	slices.Sort(names)
	return names
}

// Seed writes a fresh value of every magic variable into data.
func (r *Registry) Seed(data *value.Object) {
	for _, name := range r.Names() {
		data.Set(name, r.funcs[name[len(Prefix):]]())
	}
}

func funcUUID() any {
	return uuid.New().String()
}

func funcRandomInt() any {
	return float64(rand.IntN(1000))
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func funcRandomString() any {
	return randomString(16, alphanumeric)
}

func funcRandomEmail() any {
	user := randomString(8, "abcdefghijklmnopqrstuvwxyz")
	domain := randomString(6, "abcdefghijklmnopqrstuvwxyz")
	return fmt.Sprintf("%s@%s.com", user, domain)
}

func randomString(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.IntN(len(charset))]
	}
	return string(b)
}
