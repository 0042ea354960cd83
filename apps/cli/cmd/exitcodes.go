package cmd

import "fmt"

// Exit codes for hitcall CLI
const (
	// ExitSuccess indicates all calls passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more calls failed
	ExitTestFailure = 1

	// ExitParseError indicates a suite file could not be parsed or built
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, format string, args ...any) error {
	return &exitError{code: code, err: fmt.Errorf(format, args...)}
}
