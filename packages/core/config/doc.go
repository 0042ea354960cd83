// Package config handles configuration loading and management for hitcall.
//
// It provides functionality for:
//   - Loading configuration from .hitcall.json or hitcall.yaml files
//   - Default configuration values
//   - Layering CLI overrides on top of a file
//
// Besides transport settings a config carries two trees: defaults, whose
// api_call key is the base every call is built on, and data, the initial
// values of each suite's accumulator.
package config
