// Package schema validates values against JSON schemas with gojsonschema.
//
// A schema is either an inline tree or a string naming a schema file,
// resolved relative to the validator's base directory.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/xeipuuv/gojsonschema"
)

type Validator struct {
	baseDir string
}

type Option func(*Validator)

// WithBaseDir sets the directory schema file paths are resolved against.
// Paths escaping it are rejected.
func WithBaseDir(dir string) Option {
	return func(v *Validator) {
		v.baseDir = dir
	}
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate returns the validation errors of doc against schema.
func (v *Validator) Validate(doc any, schema any) ([]string, error) {
	schemaLoader, err := v.loader(schema)
	if err != nil {
		return nil, err
	}

	docJSON, err := value.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(docJSON))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return errs, nil
}

func (v *Validator) loader(schema any) (gojsonschema.JSONLoader, error) {
	path, ok := schema.(string)
	if !ok {
		data, err := value.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal schema: %w", err)
		}
		return gojsonschema.NewBytesLoader(data), nil
	}

	if !filepath.IsAbs(path) && v.baseDir != "" {
		path = filepath.Join(v.baseDir, path)
	}
	if err := validatePathWithinBase(path, v.baseDir); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return gojsonschema.NewBytesLoader(data), nil
}

// validatePathWithinBase checks that path stays within baseDir.
func validatePathWithinBase(path, baseDir string) error {
	if baseDir == "" {
		return nil
	}

	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}
	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}
	return nil
}
