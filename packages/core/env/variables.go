package env

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// Key is the accumulator key the variables are stored under.
const Key = "$env"

// Options selects which variables are exposed.
type Options struct {
	// Prefix keeps only process variables starting with it, and strips it
	// from their names. Empty keeps everything.
	Prefix string
	// Files are .env files read in order; later files win. Missing files
	// are skipped. Process variables override file values.
	Files []string
}

// Variables returns the exposed variables as a mapping with sorted keys.
func Variables(opts Options) (*value.Object, error) {
	vars := make(map[string]any)

	for _, path := range opts.Files {
		fileVars, err := LoadDotEnv(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}

	for k, v := range systemEnv(opts.Prefix) {
		vars[k] = v
	}

	return value.Normalize(vars).(*value.Object), nil
}

func systemEnv(prefix string) map[string]string {
	result := make(map[string]string)
	for _, e := range os.Environ() {
		key, val, ok := strings.Cut(e, "=")
		if !ok || key == "" {
			continue
		}
		if prefix == "" {
			result[key] = val
		} else if name, found := strings.CutPrefix(key, prefix); found && name != "" {
			result[name] = val
		}
	}
	return result
}
