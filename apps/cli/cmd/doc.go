// Package cmd implements the hitcall CLI commands using Cobra.
//
// Available commands:
//   - run: Execute suite files against an API
//   - validate: Parse suites and build every call without sending it
//   - list: Display the calls defined in suite files
//   - init: Create a config file and an example suite
//   - version: Show hitcall version information
//   - completion: Generate shell completion scripts
//
// The CLI supports flags for filtering, output formatting, parallel
// execution, rate limiting, and watch mode for development workflows.
package cmd
