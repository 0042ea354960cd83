// Package suite loads suite files: named, ordered lists of API calls that
// share one data accumulator.
//
// A suite file is YAML or JSON:
//
//	name: users
//	wait_for: http://localhost:8080/health
//	data:
//	  admin: {email: admin@example.com}
//	calls:
//	  - name: create user
//	    request: {method: POST, path: /users}
//	    response: {status: 201}
package suite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// Extensions lists the file suffixes recognized as suites.
var Extensions = []string{".calls.yaml", ".calls.yml", ".calls.json"}

// Suite is a parsed suite file.
type Suite struct {
	Path    string
	Name    string
	Data    *value.Object
	WaitFor *WaitFor
	Calls   []*Call
}

// WaitFor polls a URL before the first call until it answers with Status.
type WaitFor struct {
	URL      string
	Status   int
	Timeout  time.Duration
	Interval time.Duration
}

const (
	DefaultWaitTimeout  = 30 * time.Second
	DefaultWaitInterval = 500 * time.Millisecond
)

// Call is one API call of a suite. Spec is the call mapping without its
// name and skip keys, ready for apicall.Parse.
type Call struct {
	Name string
	// Skip is the reason the call is not run, empty when it runs.
	Skip string
	Spec *value.Object
}

// ParseFile reads and parses a suite file.
func ParseFile(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite %s: %w", path, err)
	}

	s, err := Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", path, err)
	}
	s.Path = path
	if s.Name == "" {
		s.Name = baseName(path)
	}
	return s, nil
}

// Parse decodes a suite document, as JSON when isJSON is set and as YAML
// otherwise.
func Parse(data []byte, isJSON bool) (*Suite, error) {
	var (
		doc any
		err error
	)
	if isJSON {
		doc, err = value.Parse(data)
	} else {
		doc, err = value.ParseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	root, ok := doc.(*value.Object)
	if !ok {
		return nil, fmt.Errorf("document: %w", &value.TypeError{Want: value.KindObject, Got: value.KindOf(doc)})
	}

	s := &Suite{Data: value.NewObject()}

	if n, ok := root.Get("name"); ok && n != nil {
		if s.Name, ok = n.(string); !ok {
			return nil, fmt.Errorf("name: %w", &value.TypeError{Want: value.KindString, Got: value.KindOf(n)})
		}
	}

	if d, ok := root.Get("data"); ok && d != nil {
		obj, ok := d.(*value.Object)
		if !ok {
			return nil, fmt.Errorf("data: %w", &value.TypeError{Want: value.KindObject, Got: value.KindOf(d)})
		}
		s.Data = obj
	}

	if w, ok := root.Get("wait_for"); ok && w != nil {
		wf, err := parseWaitFor(w)
		if err != nil {
			return nil, fmt.Errorf("wait_for: %w", err)
		}
		s.WaitFor = wf
	}

	raw, _ := root.Get("calls")
	calls, ok := raw.([]any)
	if !ok || len(calls) == 0 {
		return nil, fmt.Errorf("at least one call is required")
	}

	for i, c := range calls {
		call, err := parseCall(c, i)
		if err != nil {
			return nil, fmt.Errorf("calls[%d]: %w", i, err)
		}
		s.Calls = append(s.Calls, call)
	}
	return s, nil
}

func parseCall(raw any, index int) (*Call, error) {
	obj, ok := raw.(*value.Object)
	if !ok || obj == nil {
		return nil, &value.TypeError{Want: value.KindObject, Got: value.KindOf(raw)}
	}

	call := &Call{Name: fmt.Sprintf("call %d", index+1), Spec: obj.Clone()}
	if n, ok := obj.Get("name"); ok {
		s, ok := n.(string)
		if !ok {
			return nil, fmt.Errorf("name: %w", &value.TypeError{Want: value.KindString, Got: value.KindOf(n)})
		}
		call.Name = s
		call.Spec.Delete("name")
	}
	if sk, ok := obj.Get("skip"); ok {
		switch t := sk.(type) {
		case nil:
		case bool:
			if t {
				call.Skip = "skipped"
			}
		case string:
			call.Skip = t
		default:
			return nil, fmt.Errorf("skip: %w", &value.TypeError{Want: value.KindString, Got: value.KindOf(sk)})
		}
		call.Spec.Delete("skip")
	}
	return call, nil
}

// parseWaitFor decodes {url, status?, timeout?, interval?}; durations are
// in milliseconds. A bare string is the URL.
func parseWaitFor(raw any) (*WaitFor, error) {
	wf := &WaitFor{Status: 200, Timeout: DefaultWaitTimeout, Interval: DefaultWaitInterval}

	switch t := raw.(type) {
	case string:
		wf.URL = t
		return wf, nil
	case *value.Object:
		u, _ := t.Get("url")
		if wf.URL, _ = u.(string); wf.URL == "" {
			return nil, fmt.Errorf("url is required")
		}
		for key, dst := range map[string]*time.Duration{"timeout": &wf.Timeout, "interval": &wf.Interval} {
			if v, ok := t.Get(key); ok && v != nil {
				ms, ok := v.(float64)
				if !ok || ms <= 0 {
					return nil, fmt.Errorf("%s must be a positive number of milliseconds", key)
				}
				*dst = time.Duration(ms) * time.Millisecond
			}
		}
		if v, ok := t.Get("status"); ok && v != nil {
			code, ok := v.(float64)
			if !ok || code < 100 || code > 599 {
				return nil, fmt.Errorf("invalid status %s", value.Format(v))
			}
			wf.Status = int(code)
		}
		return wf, nil
	default:
		return nil, &value.TypeError{Want: value.KindObject, Got: value.KindOf(raw)}
	}
}

func baseName(path string) string {
	name := filepath.Base(path)
	for _, ext := range Extensions {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// IsSuiteFile reports whether path carries a suite extension.
func IsSuiteFile(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// CollectFiles expands files and directories into the suite files they
// contain. Explicitly named files are kept whatever their extension;
// directories are walked for suite extensions only.
func CollectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && IsSuiteFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}
